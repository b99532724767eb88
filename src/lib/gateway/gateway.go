package gateway

import (
	"context"
	"fmt"

	"tixgate/src/config"
)

type State string

const (
	StatePending   State = "PENDING"
	StateCompleted State = "COMPLETED"
	StateFailed    State = "FAILED"
)

type CreateOrderParams struct {
	Reference   string
	Description string
	AmountCents int64
	Quantity    uint
	Currency    string
	SuccessURL  string
	CancelURL   string
	Metadata    map[string]string
}

type Order struct {
	Reference   string
	CheckoutURL string
	Meta        map[string]string
}

type OrderStatus struct {
	State       State
	AmountCents int64
	Meta        map[string]string
}

// Client is the narrow surface the pipeline needs from a payment provider.
// Implementations exist for hosted checkout, manual bank transfer and the
// sandbox used in synthetic runs.
type Client interface {
	Name() string
	CreateOrder(ctx context.Context, params *CreateOrderParams) (*Order, error)
	GetOrderStatus(ctx context.Context, reference string) (*OrderStatus, error)
	InitiateRefund(ctx context.Context, reference string, amountCents int64) error
}

// New selects the provider for the configured mode. The sandbox client is
// only ever returned when the mode names it explicitly; a bad mode is an
// error, never a silent fallback.
func New(cfg *config.Config) (Client, error) {
	switch cfg.GatewayMode {
	case "checkout", "sdk":
		return NewStripeGateway(), nil
	case "manual":
		return NewManualTransferGateway(cfg.BankAccountName, cfg.BankAccountNumber), nil
	case "sandbox":
		return NewSandboxGateway(), nil
	default:
		return nil, fmt.Errorf("unknown gateway mode [%s]", cfg.GatewayMode)
	}
}
