package rewards

import (
	"errors"

	"github.com/holiman/uint256"
)

var errEscrowOverflow = errors.New("rewards: escrow balance overflow")

// creditEscrow adds amount to the reward's escrow balance. A zero amount is a
// no-op but not an error. The balance type is unsigned, so the ledger can
// never hold a negative amount; the only failure mode is overflow of the
// 256-bit width.
func creditEscrow(r *Reward, amount *uint256.Int) error {
	if r == nil {
		return ErrRewardNotFound
	}
	if r.Escrow == nil {
		r.Escrow = uint256.NewInt(0)
	}
	if amount == nil || amount.IsZero() {
		return nil
	}
	sum, carry := new(uint256.Int).AddOverflow(r.Escrow, amount)
	if carry {
		return errEscrowOverflow
	}
	r.Escrow = sum
	return nil
}

// withdrawAllEscrow drains the full escrow balance and returns it. Partial
// withdrawals do not exist; redemption always disburses the whole deposit.
// Only Engine.Redeem calls this, so the balance is unreachable outside the
// redemption flow.
func withdrawAllEscrow(r *Reward) (*uint256.Int, error) {
	if r == nil {
		return nil, ErrRewardNotFound
	}
	if r.Escrow == nil || r.Escrow.IsZero() {
		return nil, ErrInsufficientBalance
	}
	amount := new(uint256.Int).Set(r.Escrow)
	r.Escrow = uint256.NewInt(0)
	return amount, nil
}
