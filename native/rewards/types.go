package rewards

import (
	"github.com/google/uuid"
	"github.com/holiman/uint256"

	"pointsledger/core/types"
)

// Status captures the lifecycle position of a reward.
type Status uint8

const (
	StatusCreated Status = iota
	StatusValidated
	StatusRedeemed
)

// Valid reports whether the status value is within the supported range.
func (s Status) Valid() bool {
	switch s {
	case StatusCreated, StatusValidated, StatusRedeemed:
		return true
	default:
		return false
	}
}

// String returns the canonical lowercase name of the status.
func (s Status) String() string {
	switch s {
	case StatusCreated:
		return "created"
	case StatusValidated:
		return "validated"
	case StatusRedeemed:
		return "redeemed"
	default:
		return "unknown"
	}
}

// advance performs a normal-path transition. Normal transitions are strictly
// forward: created -> validated -> redeemed. It returns false when the
// requested step would move backwards or skip a state.
func (s Status) advance(next Status) (Status, bool) {
	if !next.Valid() || next != s+1 {
		return s, false
	}
	return next, true
}

// override performs an administrative transition. Overrides may move the
// status between any two valid states and exist solely as the admin escape
// hatch; they are never taken on the normal path.
func (s Status) override(next Status) (Status, bool) {
	if !next.Valid() {
		return s, false
	}
	return next, true
}

// Reward is the aggregate root tracked by the engine. All timestamps are unix
// milliseconds read from the host time source. The escrow balance uses an
// unsigned 256-bit integer, so a negative balance is unrepresentable.
type Reward struct {
	ID           uuid.UUID     `json:"id"`
	Customer     types.Address `json:"customer"`
	Points       uint64        `json:"points"`
	Escrow       *uint256.Int  `json:"escrow"`
	CreatedAt    int64         `json:"createdAt"`
	Deadline     int64         `json:"deadline"`
	Expiry       int64         `json:"expiry"`
	Tier         uint32        `json:"tier"`
	Transferable bool          `json:"transferable"`
	EventTrigger bool          `json:"eventTrigger"`
	ReferralUsed bool          `json:"referralUsed"`
	Status       Status        `json:"status"`
}

// Validated reports whether the reward has passed validation. Redeemed
// rewards were necessarily validated first.
func (r *Reward) Validated() bool {
	return r != nil && (r.Status == StatusValidated || r.Status == StatusRedeemed)
}

// Redeemed reports whether the reward has been redeemed.
func (r *Reward) Redeemed() bool {
	return r != nil && r.Status == StatusRedeemed
}

// Clone returns a deep copy of the reward so callers can safely mutate the
// copy without affecting the stored instance.
func (r *Reward) Clone() *Reward {
	if r == nil {
		return nil
	}
	clone := *r
	if r.Escrow != nil {
		clone.Escrow = new(uint256.Int).Set(r.Escrow)
	} else {
		clone.Escrow = uint256.NewInt(0)
	}
	return &clone
}

// Receipt proves a specific redemption event occurred. It is created exactly
// once per successful redemption, inside Engine.Redeem, and is never mutated
// after persistence.
type Receipt struct {
	ID             uuid.UUID     `json:"id"`
	RewardID       uuid.UUID     `json:"rewardId"`
	Customer       types.Address `json:"customer"`
	PointsRedeemed uint64        `json:"pointsRedeemed"`
	RedeemedAt     int64         `json:"redeemedAt"`
}

// Clone returns a copy of the receipt.
func (rc *Receipt) Clone() *Receipt {
	if rc == nil {
		return nil
	}
	clone := *rc
	return &clone
}
