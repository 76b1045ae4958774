package gateway

import (
	"context"
	"fmt"

	"concierge/internal/domain"
)

// Billing simulates the billing gateway. Charges always require approval.
type Billing struct{}

func NewBilling() *Billing { return &Billing{} }

func (b *Billing) Name() string { return "billing" }

func (b *Billing) Operations() []domain.CapabilityDefinition {
	return []domain.CapabilityDefinition{
		{
			Name:        "process_payment",
			Description: "Charge the customer's account. Requires user approval of the amount before it runs.",
			Arguments: []domain.ArgumentField{
				{Name: "amount", Type: "number", Required: true, Description: "Charge amount in dollars"},
				{Name: "description", Type: "string", Required: true, Description: "What the charge is for"},
			},
			Effect: domain.EffectApprovalRequired,
		},
	}
}

func (b *Billing) Call(ctx context.Context, op string, args map[string]any) (string, error) {
	if op != "process_payment" {
		return "", fmt.Errorf("billing gateway: unknown operation %q", op)
	}
	amount, _ := args["amount"].(float64)
	desc, _ := args["description"].(string)
	return fmt.Sprintf("Payment of $%.2f processed for %s. A receipt was sent to the account email.", amount, desc), nil
}
