package common

import (
	"context"
	"errors"
	"log"
	"time"

	"tixgate/src/lib/gateway"
	"tixgate/src/types"
)

// Reconciler polls the gateway for an order's final state when the webhook
// never arrived. The loop is strictly bounded: MaxAttempts queries with a
// fixed delay in between, then it hands the order back flagged for the
// retry queue. It keeps no state between runs.
type Reconciler struct {
	Gateway     gateway.Client
	MaxAttempts int
	Delay       time.Duration

	sleep func(time.Duration)
}

func NewReconciler(gw gateway.Client, maxAttempts int, delay time.Duration) *Reconciler {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &Reconciler{
		Gateway:     gw,
		MaxAttempts: maxAttempts,
		Delay:       delay,
		sleep:       time.Sleep,
	}
}

// NewReconcilerWithSleep is the test constructor; the sleep function stands
// in for real waiting.
func NewReconcilerWithSleep(gw gateway.Client, maxAttempts int, delay time.Duration, sleep func(time.Duration)) *Reconciler {
	r := NewReconciler(gw, maxAttempts, delay)
	if sleep != nil {
		r.sleep = sleep
	}
	return r
}

type ReconcileResult struct {
	State               gateway.State
	AmountCents         int64
	Attempts            int
	NeedsReconciliation bool
}

// Run polls until the gateway reports a terminal state, a non retryable
// error aborts, or the attempt budget runs out. Server side and transport
// failures count as an attempt and are retried like a pending answer.
func (r *Reconciler) Run(ctx context.Context, reference string) (*ReconcileResult, error) {
	result := &ReconcileResult{State: gateway.StatePending}
	for attempt := 1; attempt <= r.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		status, err := r.Gateway.GetOrderStatus(ctx, reference)
		result.Attempts = attempt
		if err != nil {
			var gerr *types.GatewayError
			if errors.As(err, &gerr) && !gerr.Retryable() {
				return nil, err
			}
			log.Printf("[reconcile] attempt %d for [%s] failed: %s\n", attempt, reference, err.Error())
		} else {
			result.State = status.State
			result.AmountCents = status.AmountCents
			if status.State == gateway.StateCompleted || status.State == gateway.StateFailed {
				return result, nil
			}
		}
		if attempt < r.MaxAttempts {
			r.sleep(r.Delay)
		}
	}
	result.NeedsReconciliation = true
	return result, nil
}
