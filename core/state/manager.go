// Package state provides the default host-side state backend for the reward
// engine: JSON-encoded records over a pluggable key-value database.
package state

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"pointsledger/core/types"
	"pointsledger/native/rewards"
	"pointsledger/storage"
)

const (
	rewardPrefix  = "rewards/"
	receiptPrefix = "receipts/"
	accountPrefix = "accounts/"
)

// Manager persists rewards, receipts and accounts in a storage.Database and
// satisfies the engine's state contract.
type Manager struct {
	db storage.Database
}

// NewManager creates a state manager over the given database.
func NewManager(db storage.Database) *Manager {
	return &Manager{db: db}
}

func rewardKey(id uuid.UUID) []byte  { return []byte(rewardPrefix + id.String()) }
func receiptKey(id uuid.UUID) []byte { return []byte(receiptPrefix + id.String()) }
func accountKey(addr types.Address) []byte {
	return []byte(accountPrefix + addr.String())
}

// RewardPut stores the reward record, overwriting any previous version.
func (m *Manager) RewardPut(r *rewards.Reward) error {
	if r == nil {
		return errors.New("state: nil reward")
	}
	encoded, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("state: encode reward: %w", err)
	}
	return m.db.Put(rewardKey(r.ID), encoded)
}

// RewardGet loads the reward record for the id.
func (m *Manager) RewardGet(id uuid.UUID) (*rewards.Reward, bool) {
	encoded, err := m.db.Get(rewardKey(id))
	if err != nil {
		return nil, false
	}
	reward := new(rewards.Reward)
	if err := json.Unmarshal(encoded, reward); err != nil {
		return nil, false
	}
	return reward, true
}

// ReceiptPut stores a redemption receipt. Receipts are write-once; an
// existing receipt is never overwritten.
func (m *Manager) ReceiptPut(rc *rewards.Receipt) error {
	if rc == nil {
		return errors.New("state: nil receipt")
	}
	if _, err := m.db.Get(receiptKey(rc.ID)); err == nil {
		return fmt.Errorf("state: receipt %s already exists", rc.ID)
	}
	encoded, err := json.Marshal(rc)
	if err != nil {
		return fmt.Errorf("state: encode receipt: %w", err)
	}
	return m.db.Put(receiptKey(rc.ID), encoded)
}

// ReceiptGet loads the receipt for the id.
func (m *Manager) ReceiptGet(id uuid.UUID) (*rewards.Receipt, bool) {
	encoded, err := m.db.Get(receiptKey(id))
	if err != nil {
		return nil, false
	}
	receipt := new(rewards.Receipt)
	if err := json.Unmarshal(encoded, receipt); err != nil {
		return nil, false
	}
	return receipt, true
}

// GetAccount loads the account for the address, returning a zero-balance
// account when none is stored yet.
func (m *Manager) GetAccount(addr types.Address) (*types.Account, error) {
	encoded, err := m.db.Get(accountKey(addr))
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return types.EnsureAccount(nil), nil
		}
		return nil, err
	}
	account := new(types.Account)
	if err := json.Unmarshal(encoded, account); err != nil {
		return nil, fmt.Errorf("state: decode account: %w", err)
	}
	return types.EnsureAccount(account), nil
}

// PutAccount stores the account for the address.
func (m *Manager) PutAccount(addr types.Address, account *types.Account) error {
	encoded, err := json.Marshal(types.EnsureAccount(account))
	if err != nil {
		return fmt.Errorf("state: encode account: %w", err)
	}
	return m.db.Put(accountKey(addr), encoded)
}

// Rewards returns a restartable sequence over every stored reward, suitable
// for the query layer. Records that fail to decode are skipped.
func (m *Manager) Rewards() rewards.Seq {
	return func(yield func(*rewards.Reward) bool) {
		_ = m.db.Iterate([]byte(rewardPrefix), func(_, value []byte) bool {
			reward := new(rewards.Reward)
			if err := json.Unmarshal(value, reward); err != nil {
				return true
			}
			return yield(reward)
		})
	}
}
