package gateway

import (
	"context"
	"sync"

	"tixgate/src/types"
)

// SandboxGateway is a synthetic provider for load tests and local demos. It
// only ever runs when GATEWAY_MODE=sandbox names it; production code paths
// never fall back to it.
type SandboxGateway struct {
	mu     sync.Mutex
	orders map[string]*OrderStatus
}

func NewSandboxGateway() *SandboxGateway {
	return &SandboxGateway{orders: make(map[string]*OrderStatus)}
}

func (g *SandboxGateway) Name() string {
	return "sandbox"
}

func (g *SandboxGateway) CreateOrder(ctx context.Context, params *CreateOrderParams) (*Order, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.orders[params.Reference] = &OrderStatus{
		State:       StateCompleted,
		AmountCents: params.AmountCents,
		Meta:        map[string]string{"synthetic": "true"},
	}
	return &Order{
		Reference:   params.Reference,
		CheckoutURL: "sandbox://" + params.Reference,
		Meta:        map[string]string{"synthetic": "true"},
	}, nil
}

func (g *SandboxGateway) GetOrderStatus(ctx context.Context, reference string) (*OrderStatus, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	status, ok := g.orders[reference]
	if !ok {
		return nil, &types.GatewayError{Code: "not_found", Status: 404, Message: "unknown order " + reference}
	}
	return status, nil
}

func (g *SandboxGateway) InitiateRefund(ctx context.Context, reference string, amountCents int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	status, ok := g.orders[reference]
	if !ok {
		return &types.GatewayError{Code: "not_found", Status: 404, Message: "unknown order " + reference}
	}
	status.Meta["refunded"] = "true"
	return nil
}
