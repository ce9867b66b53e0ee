package rewards

import "errors"

var (
	// ErrNotOwner is returned when an owner-gated operation is attempted by
	// a caller other than the recorded customer.
	ErrNotOwner = errors.New("rewards: caller is not the reward owner")
	// ErrNotAdmin is returned when an admin-gated operation is attempted
	// without a verifiable admin capability.
	ErrNotAdmin = errors.New("rewards: caller lacks admin capability")
	// ErrNotValidated is returned when redemption is attempted before
	// validation, and doubles as the trigger-disabled signal for
	// event-triggered bonuses.
	ErrNotValidated = errors.New("rewards: reward not validated")
	// ErrAlreadyRedeemed is returned when a reward is redeemed twice.
	ErrAlreadyRedeemed = errors.New("rewards: reward already redeemed")
	// ErrDeadlinePassed is returned when redemption is attempted at or after
	// the deadline.
	ErrDeadlinePassed = errors.New("rewards: redemption deadline passed")
	// ErrRewardExpired is returned when redemption is attempted at or after
	// the expiry.
	ErrRewardExpired = errors.New("rewards: reward expired")
	// ErrInsufficientBalance covers an unfunded escrow at redemption, an
	// account without the funds to deposit, and a split larger than the
	// source point balance.
	ErrInsufficientBalance = errors.New("rewards: insufficient balance")
	// ErrInvalidPoints is returned for zero point allocations and for point
	// arithmetic that would overflow.
	ErrInvalidPoints = errors.New("rewards: invalid points")
	// ErrInvalidDuration is returned for non-positive durations and for
	// deadline arithmetic that would overflow.
	ErrInvalidDuration = errors.New("rewards: invalid duration")
	// ErrNotTransferable is returned when transfer is attempted on a reward
	// whose transferable flag is unset.
	ErrNotTransferable = errors.New("rewards: reward not transferable")
	// ErrReferralAlreadyUsed is returned when the one-time referral bonus is
	// claimed twice.
	ErrReferralAlreadyUsed = errors.New("rewards: referral bonus already used")
	// ErrRewardNotFound is returned when the requested reward id is unknown.
	ErrRewardNotFound = errors.New("rewards: reward not found")

	errNilState = errors.New("rewards: engine state not configured")
)
