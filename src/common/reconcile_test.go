package common

import (
	"context"
	"testing"
	"time"

	"tixgate/src/lib/gateway"
	"tixgate/src/types"

	"github.com/stretchr/testify/assert"
)

// scriptedGateway returns the queued answers in order and counts how often it
// was asked.
type scriptedGateway struct {
	answers []scriptedAnswer
	calls   int
}

type scriptedAnswer struct {
	state gateway.State
	err   error
}

func (g *scriptedGateway) Name() string { return "scripted" }

func (g *scriptedGateway) CreateOrder(ctx context.Context, params *gateway.CreateOrderParams) (*gateway.Order, error) {
	return nil, nil
}

func (g *scriptedGateway) GetOrderStatus(ctx context.Context, reference string) (*gateway.OrderStatus, error) {
	answer := g.answers[len(g.answers)-1]
	if g.calls < len(g.answers) {
		answer = g.answers[g.calls]
	}
	g.calls++
	if answer.err != nil {
		return nil, answer.err
	}
	return &gateway.OrderStatus{State: answer.state, AmountCents: 5000}, nil
}

func (g *scriptedGateway) InitiateRefund(ctx context.Context, reference string, amountCents int64) error {
	return nil
}

func noSleep(time.Duration) {}

func TestReconcilerStopsOnTerminalState(t *testing.T) {
	gw := &scriptedGateway{answers: []scriptedAnswer{
		{state: gateway.StatePending},
		{state: gateway.StatePending},
		{state: gateway.StateCompleted},
	}}
	r := NewReconcilerWithSleep(gw, 5, time.Second, noSleep)

	result, err := r.Run(context.Background(), "ref-1")
	assert.Nil(t, err)
	assert.Equal(t, gateway.StateCompleted, result.State)
	assert.Equal(t, 3, result.Attempts)
	assert.Equal(t, 3, gw.calls)
	assert.False(t, result.NeedsReconciliation)
}

func TestReconcilerStopsOnFailure(t *testing.T) {
	gw := &scriptedGateway{answers: []scriptedAnswer{
		{state: gateway.StateFailed},
	}}
	r := NewReconcilerWithSleep(gw, 5, time.Second, noSleep)

	result, err := r.Run(context.Background(), "ref-1")
	assert.Nil(t, err)
	assert.Equal(t, gateway.StateFailed, result.State)
	assert.Equal(t, 1, result.Attempts)
	assert.Equal(t, 1, gw.calls)
}

func TestReconcilerExhaustsAttemptBudget(t *testing.T) {
	gw := &scriptedGateway{answers: []scriptedAnswer{
		{state: gateway.StatePending},
	}}
	slept := 0
	r := NewReconcilerWithSleep(gw, 5, time.Second, func(time.Duration) { slept++ })

	result, err := r.Run(context.Background(), "ref-1")
	assert.Nil(t, err)
	assert.Equal(t, gateway.StatePending, result.State)
	assert.Equal(t, 5, result.Attempts)
	assert.Equal(t, 5, gw.calls)
	assert.Equal(t, 4, slept, "no sleep after the final attempt")
	assert.True(t, result.NeedsReconciliation)
}

func TestReconcilerAbortsOnNonRetryableError(t *testing.T) {
	gw := &scriptedGateway{answers: []scriptedAnswer{
		{err: &types.GatewayError{Code: "not_found", Status: 404, Message: "no such order"}},
	}}
	r := NewReconcilerWithSleep(gw, 5, time.Second, noSleep)

	result, err := r.Run(context.Background(), "ref-1")
	assert.NotNil(t, err)
	assert.Nil(t, result)
	assert.Equal(t, 1, gw.calls, "a client error must not be retried")
}

func TestReconcilerRetriesServerErrors(t *testing.T) {
	gw := &scriptedGateway{answers: []scriptedAnswer{
		{err: &types.GatewayError{Code: "unavailable", Status: 503, Message: "try later"}},
		{err: &types.GatewayError{Code: "timeout", Message: "connection reset"}},
		{state: gateway.StateCompleted},
	}}
	r := NewReconcilerWithSleep(gw, 5, time.Second, noSleep)

	result, err := r.Run(context.Background(), "ref-1")
	assert.Nil(t, err)
	assert.Equal(t, gateway.StateCompleted, result.State)
	assert.Equal(t, 3, result.Attempts)
}

func TestReconcilerHonorsContextCancel(t *testing.T) {
	gw := &scriptedGateway{answers: []scriptedAnswer{
		{state: gateway.StatePending},
	}}
	ctx, cancel := context.WithCancel(context.Background())
	r := NewReconcilerWithSleep(gw, 5, time.Second, func(time.Duration) { cancel() })

	result, err := r.Run(ctx, "ref-1")
	assert.NotNil(t, err)
	assert.Nil(t, result)
	assert.Equal(t, 1, gw.calls)
}
