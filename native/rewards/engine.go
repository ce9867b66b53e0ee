package rewards

import (
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/holiman/uint256"

	"pointsledger/core/events"
	"pointsledger/core/types"
	"pointsledger/native/common"
)

const moduleName = "rewards"

// engineState describes the persistence the reward engine needs from the
// hosting environment. The host guarantees serialized mutation per record;
// the engine performs no locking of its own.
type engineState interface {
	RewardPut(*Reward) error
	RewardGet(id uuid.UUID) (*Reward, bool)
	ReceiptPut(*Receipt) error
	GetAccount(addr types.Address) (*types.Account, error)
	PutAccount(addr types.Address, account *types.Account) error
}

// CapabilityVerifier validates an admin credential presented to the engine.
// The engine treats the token as opaque; forgery resistance is the verifier's
// concern.
type CapabilityVerifier interface {
	VerifyAdmin(token string) error
}

// Policy carries the host-configured knobs for reward issuance and bonuses.
type Policy struct {
	// SelfServiceCreate allows customers to issue rewards for themselves.
	// When false (the default), creation requires an admin capability.
	SelfServiceCreate bool
	// ReferralBonus is the point grant for the one-time referral bonus.
	ReferralBonus uint64
	// TriggerBonus is the point grant applied by an external event trigger.
	TriggerBonus uint64
	// TriggerValidationPhrase, when non-empty and matched by a trigger
	// payload, validates the reward instead of granting points.
	TriggerValidationPhrase string
}

// Engine wires the reward lifecycle logic with external state, credential
// verification and event emission.
type Engine struct {
	state     engineState
	emitter   events.Emitter
	authority CapabilityVerifier
	policy    Policy
	pauses    common.PauseView
	nowFn     func() int64
	newID     func() uuid.UUID
}

// NewEngine creates a reward engine with a no-op emitter and the wall clock
// as its millisecond time source. Callers wire state, policy and an emitter
// via the setters.
func NewEngine() *Engine {
	return &Engine{
		emitter: events.NoopEmitter{},
		nowFn:   func() int64 { return time.Now().UnixMilli() },
		newID:   uuid.New,
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetAuthority configures the verifier consulted for admin-gated operations.
// With a nil authority every admin-gated operation fails.
func (e *Engine) SetAuthority(authority CapabilityVerifier) { e.authority = authority }

// SetPolicy configures the issuance and bonus policy.
func (e *Engine) SetPolicy(policy Policy) { e.policy = policy }

// SetPauses configures the pause view consulted before every mutation. With a
// nil view the ledger is never paused.
func (e *Engine) SetPauses(p common.PauseView) { e.pauses = p }

// SetEmitter configures the event emitter used by the engine. Passing nil
// resets the emitter to a no-op implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the millisecond time source used by the engine.
// Primarily intended for tests to provide deterministic timestamps.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().UnixMilli() }
		return
	}
	e.nowFn = now
}

func (e *Engine) emit(event *types.Event) {
	if e == nil || e.emitter == nil || event == nil {
		return
	}
	e.emitter.Emit(rewardEvent{evt: event})
}

func (e *Engine) now() int64 {
	if e == nil || e.nowFn == nil {
		return time.Now().UnixMilli()
	}
	return e.nowFn()
}

func (e *Engine) loadReward(id uuid.UUID) (*Reward, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	reward, ok := e.state.RewardGet(id)
	if !ok {
		return nil, ErrRewardNotFound
	}
	return reward, nil
}

func (e *Engine) storeReward(r *Reward) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	return e.state.RewardPut(r)
}

func (e *Engine) requireOwner(r *Reward, caller types.Address) error {
	if r == nil || r.Customer != caller {
		return ErrNotOwner
	}
	return nil
}

func (e *Engine) requireAdmin(token string) error {
	if e == nil || e.authority == nil {
		return ErrNotAdmin
	}
	if err := e.authority.VerifyAdmin(token); err != nil {
		return ErrNotAdmin
	}
	return nil
}

func addPoints(current, grant uint64) (uint64, error) {
	if grant > math.MaxUint64-current {
		return 0, ErrInvalidPoints
	}
	return current + grant, nil
}

// Reward returns a copy of the stored reward so callers can read every field
// without being able to mutate engine state.
func (e *Engine) Reward(id uuid.UUID) (*Reward, error) {
	r, err := e.loadReward(id)
	if err != nil {
		return nil, err
	}
	return r.Clone(), nil
}

// Create allocates a new reward record for the customer. Creation is
// admin-gated unless the policy enables self-service, in which case a caller
// may only issue a reward to themselves. The deadline sits one duration after
// creation and the expiry two durations after, by documented policy.
func (e *Engine) Create(caller types.Address, adminToken string, customer types.Address, points uint64, duration int64) (*Reward, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if err := common.Guard(e.pauses, moduleName); err != nil {
		return nil, err
	}
	if e.policy.SelfServiceCreate {
		if caller != customer {
			return nil, ErrNotOwner
		}
	} else if err := e.requireAdmin(adminToken); err != nil {
		return nil, err
	}
	if points == 0 {
		return nil, ErrInvalidPoints
	}
	if duration <= 0 {
		return nil, ErrInvalidDuration
	}
	now := e.now()
	if duration > (math.MaxInt64-now)/2 {
		return nil, ErrInvalidDuration
	}
	r := &Reward{
		ID:        e.newID(),
		Customer:  customer,
		Points:    points,
		Escrow:    uint256.NewInt(0),
		CreatedAt: now,
		Deadline:  now + duration,
		Expiry:    now + 2*duration,
		Status:    StatusCreated,
	}
	if err := e.storeReward(r); err != nil {
		return nil, err
	}
	e.emit(newRewardEvent(EventTypeRewardCreated, r, now, map[string]string{
		"points":   strconv.FormatUint(points, 10),
		"deadline": strconv.FormatInt(r.Deadline, 10),
		"expiry":   strconv.FormatInt(r.Expiry, 10),
	}))
	return r.Clone(), nil
}

// Validate marks the reward as validated. Only the owner may validate; the
// operation is idempotent once validation has happened.
func (e *Engine) Validate(id uuid.UUID, caller types.Address) error {
	if err := common.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	r, err := e.loadReward(id)
	if err != nil {
		return err
	}
	if err := e.requireOwner(r, caller); err != nil {
		return err
	}
	if r.Validated() {
		return nil
	}
	status, ok := r.Status.advance(StatusValidated)
	if !ok {
		return ErrNotValidated
	}
	r.Status = status
	if err := e.storeReward(r); err != nil {
		return err
	}
	e.emit(newRewardEvent(EventTypeRewardValidated, r, e.now(), nil))
	return nil
}

// Deposit moves amount from the owner's account into the reward escrow. A
// zero amount is a no-op but not an error. There is no upper bound beyond the
// balance width.
func (e *Engine) Deposit(id uuid.UUID, caller types.Address, amount *uint256.Int) error {
	if err := common.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	r, err := e.loadReward(id)
	if err != nil {
		return err
	}
	if err := e.requireOwner(r, caller); err != nil {
		return err
	}
	if amount == nil || amount.IsZero() {
		return nil
	}
	acc, err := e.state.GetAccount(caller)
	if err != nil {
		return err
	}
	acc = types.EnsureAccount(acc)
	if acc.Balance.Lt(amount) {
		return ErrInsufficientBalance
	}
	if err := creditEscrow(r, amount); err != nil {
		return err
	}
	acc.Balance = new(uint256.Int).Sub(acc.Balance, amount)
	if err := e.state.PutAccount(caller, acc); err != nil {
		return err
	}
	if err := e.storeReward(r); err != nil {
		return err
	}
	e.emit(newRewardEvent(EventTypeRewardDeposited, r, e.now(), map[string]string{
		"amount": amount.Dec(),
	}))
	return nil
}

// Redeem disburses the full escrow to the owner, marks the reward redeemed
// and issues the redemption receipt. Preconditions are evaluated in a strict
// order so the first violated one determines the reported error: ownership,
// validation, redemption status, deadline, expiry, escrow balance.
func (e *Engine) Redeem(id uuid.UUID, caller types.Address) (*Receipt, error) {
	if err := common.Guard(e.pauses, moduleName); err != nil {
		return nil, err
	}
	r, err := e.loadReward(id)
	if err != nil {
		return nil, err
	}
	if err := e.requireOwner(r, caller); err != nil {
		return nil, err
	}
	if !r.Validated() {
		return nil, ErrNotValidated
	}
	if r.Redeemed() {
		return nil, ErrAlreadyRedeemed
	}
	now := e.now()
	if now >= r.Deadline {
		return nil, ErrDeadlinePassed
	}
	if now >= r.Expiry {
		return nil, ErrRewardExpired
	}
	amount, err := withdrawAllEscrow(r)
	if err != nil {
		return nil, err
	}
	acc, err := e.state.GetAccount(r.Customer)
	if err != nil {
		return nil, err
	}
	acc = types.EnsureAccount(acc)
	balance, carry := new(uint256.Int).AddOverflow(acc.Balance, amount)
	if carry {
		return nil, errEscrowOverflow
	}
	acc.Balance = balance
	status, ok := r.Status.advance(StatusRedeemed)
	if !ok {
		return nil, ErrAlreadyRedeemed
	}
	r.Status = status
	receipt := &Receipt{
		ID:             e.newID(),
		RewardID:       r.ID,
		Customer:       r.Customer,
		PointsRedeemed: r.Points,
		RedeemedAt:     now,
	}
	if err := e.state.PutAccount(r.Customer, acc); err != nil {
		return nil, err
	}
	if err := e.state.ReceiptPut(receipt); err != nil {
		return nil, err
	}
	if err := e.storeReward(r); err != nil {
		return nil, err
	}
	e.emit(newRewardEvent(EventTypeRewardRedeemed, r, now, map[string]string{
		"amount":    amount.Dec(),
		"receiptId": receipt.ID.String(),
		"points":    strconv.FormatUint(receipt.PointsRedeemed, 10),
	}))
	return receipt.Clone(), nil
}

func (e *Engine) updateOwnerField(id uuid.UUID, caller types.Address, field, value string, mutate func(*Reward)) error {
	if err := common.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	r, err := e.loadReward(id)
	if err != nil {
		return err
	}
	if err := e.requireOwner(r, caller); err != nil {
		return err
	}
	mutate(r)
	if err := e.storeReward(r); err != nil {
		return err
	}
	e.emit(newRewardEvent(EventTypeRewardUpdated, r, e.now(), map[string]string{
		"field": field,
		"value": value,
	}))
	return nil
}

// UpdatePoints replaces the point balance. Owner-gated.
func (e *Engine) UpdatePoints(id uuid.UUID, caller types.Address, points uint64) error {
	return e.updateOwnerField(id, caller, "points", strconv.FormatUint(points, 10), func(r *Reward) {
		r.Points = points
	})
}

// UpdateTier replaces the tier classification. Owner-gated; the value is
// free-form.
func (e *Engine) UpdateTier(id uuid.UUID, caller types.Address, tier uint32) error {
	return e.updateOwnerField(id, caller, "tier", strconv.FormatUint(uint64(tier), 10), func(r *Reward) {
		r.Tier = tier
	})
}

// SetTransferable toggles whether ownership may be reassigned. Owner-gated.
func (e *Engine) SetTransferable(id uuid.UUID, caller types.Address, transferable bool) error {
	return e.updateOwnerField(id, caller, "transferable", strconv.FormatBool(transferable), func(r *Reward) {
		r.Transferable = transferable
	})
}

// SetEventTrigger toggles the external event trigger gate. Owner-gated.
func (e *Engine) SetEventTrigger(id uuid.UUID, caller types.Address, enabled bool) error {
	return e.updateOwnerField(id, caller, "eventTrigger", strconv.FormatBool(enabled), func(r *Reward) {
		r.EventTrigger = enabled
	})
}

func (e *Engine) updateAdminField(id uuid.UUID, token, eventType, field, value string, mutate func(*Reward) error) error {
	if err := common.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	r, err := e.loadReward(id)
	if err != nil {
		return err
	}
	if err := e.requireAdmin(token); err != nil {
		return err
	}
	if err := mutate(r); err != nil {
		return err
	}
	if err := e.storeReward(r); err != nil {
		return err
	}
	e.emit(newRewardEvent(eventType, r, e.now(), map[string]string{
		"field": field,
		"value": value,
	}))
	return nil
}

// ExtendDeadline moves the redemption deadline forward. Admin-gated; the
// deadline can only be extended, never shortened.
func (e *Engine) ExtendDeadline(id uuid.UUID, token string, deadline int64) error {
	return e.updateAdminField(id, token, EventTypeRewardUpdated, "deadline", strconv.FormatInt(deadline, 10), func(r *Reward) error {
		if deadline < r.Deadline {
			return ErrInvalidDuration
		}
		r.Deadline = deadline
		return nil
	})
}

// ExtendExpiry moves the absolute expiry forward. Admin-gated; the expiry can
// only be extended, never shortened.
func (e *Engine) ExtendExpiry(id uuid.UUID, token string, expiry int64) error {
	return e.updateAdminField(id, token, EventTypeRewardUpdated, "expiry", strconv.FormatInt(expiry, 10), func(r *Reward) error {
		if expiry < r.Expiry {
			return ErrInvalidDuration
		}
		r.Expiry = expiry
		return nil
	})
}

// AdminSetValidated forces the validation flag via the administrative
// override transition set. Resetting validation on a redeemed reward also
// clears the redeemed status, since the states are ordered.
func (e *Engine) AdminSetValidated(id uuid.UUID, token string, validated bool) error {
	return e.updateAdminField(id, token, EventTypeAdminOverride, "validated", strconv.FormatBool(validated), func(r *Reward) error {
		target := StatusCreated
		if validated {
			if r.Validated() {
				return nil
			}
			target = StatusValidated
		}
		status, ok := r.Status.override(target)
		if !ok {
			return ErrNotValidated
		}
		r.Status = status
		return nil
	})
}

// AdminSetRedeemed forces the redeemed flag via the administrative override
// transition set. Clearing it returns the reward to the validated state.
func (e *Engine) AdminSetRedeemed(id uuid.UUID, token string, redeemed bool) error {
	return e.updateAdminField(id, token, EventTypeAdminOverride, "redeemed", strconv.FormatBool(redeemed), func(r *Reward) error {
		target := StatusValidated
		if redeemed {
			target = StatusRedeemed
		} else if !r.Redeemed() {
			return nil
		}
		status, ok := r.Status.override(target)
		if !ok {
			return ErrAlreadyRedeemed
		}
		r.Status = status
		return nil
	})
}

// Transfer reassigns ownership of a transferable reward. The previous owner
// loses owner-gated privileges immediately.
func (e *Engine) Transfer(id uuid.UUID, caller, newOwner types.Address) error {
	if err := common.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	r, err := e.loadReward(id)
	if err != nil {
		return err
	}
	if err := e.requireOwner(r, caller); err != nil {
		return err
	}
	if !r.Transferable {
		return ErrNotTransferable
	}
	previous := r.Customer
	r.Customer = newOwner
	if err := e.storeReward(r); err != nil {
		return err
	}
	e.emit(newRewardEvent(EventTypeRewardTransferred, r, e.now(), map[string]string{
		"from": previous.String(),
		"to":   newOwner.String(),
	}))
	return nil
}

// ReferralBonus applies the one-time referral point grant. Owner-gated and
// guarded by the referral flag, which transitions false to true exactly once.
func (e *Engine) ReferralBonus(id uuid.UUID, caller types.Address) error {
	if err := common.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	r, err := e.loadReward(id)
	if err != nil {
		return err
	}
	if err := e.requireOwner(r, caller); err != nil {
		return err
	}
	if r.ReferralUsed {
		return ErrReferralAlreadyUsed
	}
	points, err := addPoints(r.Points, e.policy.ReferralBonus)
	if err != nil {
		return err
	}
	r.Points = points
	r.ReferralUsed = true
	if err := e.storeReward(r); err != nil {
		return err
	}
	e.emit(newRewardEvent(EventTypeRewardReferral, r, e.now(), map[string]string{
		"bonus":  strconv.FormatUint(e.policy.ReferralBonus, 10),
		"points": strconv.FormatUint(r.Points, 10),
	}))
	return nil
}

// Split carves splitPoints out of the source reward into a new reward owned
// by the same customer. The child keeps the source's remaining redemption
// window (same absolute deadline and expiry) and starts unvalidated with an
// empty escrow. Debit and creation land together or not at all.
func (e *Engine) Split(id uuid.UUID, caller types.Address, splitPoints uint64) (*Reward, error) {
	if err := common.Guard(e.pauses, moduleName); err != nil {
		return nil, err
	}
	r, err := e.loadReward(id)
	if err != nil {
		return nil, err
	}
	if err := e.requireOwner(r, caller); err != nil {
		return nil, err
	}
	if splitPoints == 0 {
		return nil, ErrInvalidPoints
	}
	if splitPoints > r.Points {
		return nil, ErrInsufficientBalance
	}
	now := e.now()
	child := &Reward{
		ID:           e.newID(),
		Customer:     r.Customer,
		Points:       splitPoints,
		Escrow:       uint256.NewInt(0),
		CreatedAt:    now,
		Deadline:     r.Deadline,
		Expiry:       r.Expiry,
		Tier:         r.Tier,
		Transferable: r.Transferable,
		EventTrigger: r.EventTrigger,
		Status:       StatusCreated,
	}
	r.Points -= splitPoints
	if err := e.storeReward(child); err != nil {
		return nil, err
	}
	if err := e.storeReward(r); err != nil {
		return nil, err
	}
	e.emit(newRewardEvent(EventTypeRewardSplit, r, now, map[string]string{
		"childId":      child.ID.String(),
		"childPoints":  strconv.FormatUint(child.Points, 10),
		"sourcePoints": strconv.FormatUint(r.Points, 10),
	}))
	return child.Clone(), nil
}

// TriggerBonus applies an external-event-driven mutation. The only gate is
// the reward's own trigger flag; a disabled trigger reports ErrNotValidated.
// A payload matching the configured validation phrase validates the reward,
// any other payload grants the configured trigger bonus.
func (e *Engine) TriggerBonus(id uuid.UUID, payload string) error {
	if err := common.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	r, err := e.loadReward(id)
	if err != nil {
		return err
	}
	if !r.EventTrigger {
		return ErrNotValidated
	}
	attrs := map[string]string{}
	if phrase := e.policy.TriggerValidationPhrase; phrase != "" && payload == phrase {
		if !r.Validated() {
			status, ok := r.Status.advance(StatusValidated)
			if !ok {
				return ErrNotValidated
			}
			r.Status = status
		}
		attrs["effect"] = "validated"
	} else {
		points, err := addPoints(r.Points, e.policy.TriggerBonus)
		if err != nil {
			return err
		}
		r.Points = points
		attrs["effect"] = "bonus"
		attrs["bonus"] = strconv.FormatUint(e.policy.TriggerBonus, 10)
		attrs["points"] = strconv.FormatUint(r.Points, 10)
	}
	if err := e.storeReward(r); err != nil {
		return err
	}
	e.emit(newRewardEvent(EventTypeRewardTriggered, r, e.now(), attrs))
	return nil
}
