package state

import (
	"testing"

	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"pointsledger/core/types"
	"pointsledger/native/rewards"
	"pointsledger/storage"
)

func testAddress(fill byte) types.Address {
	var addr types.Address
	for i := range addr {
		addr[i] = fill
	}
	return addr
}

func testReward(id string, customer types.Address) *rewards.Reward {
	return &rewards.Reward{
		ID:        uuid.MustParse(id),
		Customer:  customer,
		Points:    42,
		Escrow:    uint256.NewInt(7),
		CreatedAt: 1_000,
		Deadline:  2_000,
		Expiry:    3_000,
		Tier:      1,
		Status:    rewards.StatusValidated,
	}
}

func TestRewardRoundtrip(t *testing.T) {
	m := NewManager(storage.NewMemDB())
	customer := testAddress(0x01)
	r := testReward("00000000-0000-0000-0000-000000000001", customer)

	require.NoError(t, m.RewardPut(r))
	loaded, ok := m.RewardGet(r.ID)
	require.True(t, ok)
	require.Equal(t, r, loaded)

	_, ok = m.RewardGet(uuid.MustParse("00000000-0000-0000-0000-0000000000ff"))
	require.False(t, ok)
}

func TestReceiptsAreWriteOnce(t *testing.T) {
	m := NewManager(storage.NewMemDB())
	receipt := &rewards.Receipt{
		ID:             uuid.MustParse("00000000-0000-0000-0000-000000000010"),
		RewardID:       uuid.MustParse("00000000-0000-0000-0000-000000000001"),
		Customer:       testAddress(0x01),
		PointsRedeemed: 42,
		RedeemedAt:     1_500,
	}

	require.NoError(t, m.ReceiptPut(receipt))
	loaded, ok := m.ReceiptGet(receipt.ID)
	require.True(t, ok)
	require.Equal(t, receipt, loaded)

	clobber := receipt.Clone()
	clobber.PointsRedeemed = 9_999
	require.Error(t, m.ReceiptPut(clobber))

	loaded, ok = m.ReceiptGet(receipt.ID)
	require.True(t, ok)
	require.Equal(t, uint64(42), loaded.PointsRedeemed)
}

func TestAccountsDefaultToZeroBalance(t *testing.T) {
	m := NewManager(storage.NewMemDB())
	addr := testAddress(0x02)

	acc, err := m.GetAccount(addr)
	require.NoError(t, err)
	require.True(t, acc.Balance.IsZero())

	acc.Balance = uint256.NewInt(100)
	require.NoError(t, m.PutAccount(addr, acc))

	reloaded, err := m.GetAccount(addr)
	require.NoError(t, err)
	require.Equal(t, uint64(100), reloaded.Balance.Uint64())
}

func TestRewardsSequenceFeedsQueryLayer(t *testing.T) {
	m := NewManager(storage.NewMemDB())
	alice := testAddress(0x0A)
	bob := testAddress(0x0B)
	require.NoError(t, m.RewardPut(testReward("00000000-0000-0000-0000-000000000001", alice)))
	require.NoError(t, m.RewardPut(testReward("00000000-0000-0000-0000-000000000002", alice)))
	require.NoError(t, m.RewardPut(testReward("00000000-0000-0000-0000-000000000003", bob)))

	all := rewards.Collect(m.Rewards())
	require.Len(t, all, 3)

	mine := rewards.Collect(rewards.ByCustomer(m.Rewards(), alice))
	require.Len(t, mine, 2)

	valid := rewards.Collect(rewards.CurrentlyValid(m.Rewards(), 1_500))
	require.Len(t, valid, 3)
	expired := rewards.Collect(rewards.CurrentlyValid(m.Rewards(), 2_500))
	require.Empty(t, expired)
}

func TestEngineOverManager(t *testing.T) {
	m := NewManager(storage.NewMemDB())
	e := rewards.NewEngine()
	e.SetState(m)
	e.SetPolicy(rewards.Policy{SelfServiceCreate: true})
	e.SetNowFunc(func() int64 { return 1_000 })

	customer := testAddress(0x01)
	require.NoError(t, m.PutAccount(customer, &types.Account{Balance: uint256.NewInt(100)}))

	r, err := e.Create(customer, "", customer, 50, 1_000)
	require.NoError(t, err)
	require.NoError(t, e.Validate(r.ID, customer))
	require.NoError(t, e.Deposit(r.ID, customer, uint256.NewInt(100)))

	receipt, err := e.Redeem(r.ID, customer)
	require.NoError(t, err)

	stored, ok := m.RewardGet(r.ID)
	require.True(t, ok)
	require.True(t, stored.Redeemed())
	require.True(t, stored.Escrow.IsZero())

	persisted, ok := m.ReceiptGet(receipt.ID)
	require.True(t, ok)
	require.Equal(t, uint64(50), persisted.PointsRedeemed)

	acc, err := m.GetAccount(customer)
	require.NoError(t, err)
	require.Equal(t, uint64(100), acc.Balance.Uint64())
}
