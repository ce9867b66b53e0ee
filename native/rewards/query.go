package rewards

import (
	"iter"

	"pointsledger/core/types"
)

// Seq is a lazy, finite, restartable sequence of rewards. Filters compose by
// wrapping; nothing is evaluated until the sequence is ranged over, and
// ranging again restarts from the underlying source.
type Seq = iter.Seq[*Reward]

// FromSlice adapts a reward slice into a restartable sequence.
func FromSlice(rewards []*Reward) Seq {
	return func(yield func(*Reward) bool) {
		for _, r := range rewards {
			if r == nil {
				continue
			}
			if !yield(r) {
				return
			}
		}
	}
}

func filter(src Seq, keep func(*Reward) bool) Seq {
	return func(yield func(*Reward) bool) {
		if src == nil {
			return
		}
		src(func(r *Reward) bool {
			if !keep(r) {
				return true
			}
			return yield(r)
		})
	}
}

// ByCustomer narrows the sequence to rewards owned by the given identity.
func ByCustomer(src Seq, customer types.Address) Seq {
	return filter(src, func(r *Reward) bool { return r.Customer == customer })
}

// ByTier narrows the sequence to rewards carrying the given tier.
func ByTier(src Seq, tier uint32) Seq {
	return filter(src, func(r *Reward) bool { return r.Tier == tier })
}

// ExpiringBefore narrows the sequence to rewards whose expiry falls at or
// before the supplied timestamp.
func ExpiringBefore(src Seq, ts int64) Seq {
	return filter(src, func(r *Reward) bool { return r.Expiry <= ts })
}

// CurrentlyValid narrows the sequence to rewards that are redeemable at the
// supplied timestamp: validated, not yet redeemed and inside the deadline.
func CurrentlyValid(src Seq, now int64) Seq {
	return filter(src, func(r *Reward) bool {
		return r.Validated() && !r.Redeemed() && now < r.Deadline
	})
}

// Collect drains the sequence into a slice.
func Collect(src Seq) []*Reward {
	if src == nil {
		return nil
	}
	var out []*Reward
	src(func(r *Reward) bool {
		out = append(out, r)
		return true
	})
	return out
}
