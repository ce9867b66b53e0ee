package rewards

import (
	"strconv"

	"pointsledger/core/types"
)

const (
	EventTypeRewardCreated     = "rewards.created"
	EventTypeRewardValidated   = "rewards.validated"
	EventTypeRewardDeposited   = "rewards.deposited"
	EventTypeRewardRedeemed    = "rewards.redeemed"
	EventTypeRewardUpdated     = "rewards.updated"
	EventTypeRewardTransferred = "rewards.transferred"
	EventTypeRewardReferral    = "rewards.referral_bonus"
	EventTypeRewardSplit       = "rewards.split"
	EventTypeRewardTriggered   = "rewards.triggered"
	EventTypeAdminOverride     = "rewards.admin_override"
)

// rewardEvent adapts a types.Event to the events.Event interface expected by
// emitters while keeping the structured payload reachable for observers that
// need the attributes.
type rewardEvent struct {
	evt *types.Event
}

func (e rewardEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

// Event returns the structured payload carried by the notification.
func (e rewardEvent) Event() *types.Event { return e.evt }

// newRewardEvent builds the canonical notification payload for a reward
// mutation. Every notification carries the reward identifier, the status and
// the timestamp read from the engine clock at the moment of the call.
func newRewardEvent(eventType string, r *Reward, ts int64, extra map[string]string) *types.Event {
	attrs := make(map[string]string, 4+len(extra))
	attrs["ts"] = strconv.FormatInt(ts, 10)
	if r != nil {
		attrs["id"] = r.ID.String()
		attrs["customer"] = r.Customer.String()
		attrs["status"] = r.Status.String()
	}
	for k, v := range extra {
		attrs[k] = v
	}
	return &types.Event{Type: eventType, Attributes: attrs}
}
