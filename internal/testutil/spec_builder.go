package testutil

import (
	"github.com/hupe1980/actormesh/core"
)

// TrafficLightSpec returns the canonical three-state cycling spec used in
// tests: red -> green -> yellow -> red on TICK, no guards, no actions.
func TrafficLightSpec() *core.ActorSpec {
	return &core.ActorSpec{
		ActorType: "traffic-light",
		Initial:   "red",
		States: map[string]core.StateNode{
			"red":    {On: map[string]core.Transition{"TICK": {Target: "green"}}},
			"green":  {On: map[string]core.Transition{"TICK": {Target: "yellow"}}},
			"yellow": {On: map[string]core.Transition{"TICK": {Target: "red"}}},
		},
	}
}

// ApprovalSpec returns a guarded two-step spec: SET_AMOUNT stores a numeric
// amount in context, APPROVE fires only while amount < 1000.
func ApprovalSpec() *core.ActorSpec {
	return &core.ActorSpec{
		ActorType: "approval",
		Initial:   "pending",
		States: map[string]core.StateNode{
			"pending": {On: map[string]core.Transition{
				"SET_AMOUNT": {Target: "pending", Action: "setAmount"},
				"APPROVE":    {Target: "approved", Guard: "canApprove"},
				"REJECT":     {Target: "rejected"},
			}},
			"approved": {},
			"rejected": {},
		},
		Guards: map[string]core.Guard{
			"canApprove": func(ctx core.Context) bool {
				amount, ok := ctx["amount"].(float64)
				return ok && amount < 1000
			},
		},
		Actions: map[string]core.Action{
			"setAmount": func(ctx core.Context, data map[string]any) (core.Context, error) {
				amount, ok := data["amount"].(float64)
				if !ok {
					return nil, core.Validationf("amount must be a number, got %T", data["amount"])
				}
				ctx["amount"] = amount
				return ctx, nil
			},
		},
	}
}
