package gateway

import (
	"context"
	"errors"
	"log"

	"tixgate/src/lib"
	"tixgate/src/types"

	"github.com/stripe/stripe-go/v82"
)

// StripeGateway drives the hosted redirect checkout flow. The order
// reference travels in the session metadata and comes back on the webhook.
type StripeGateway struct{}

func NewStripeGateway() *StripeGateway {
	return &StripeGateway{}
}

func (g *StripeGateway) Name() string {
	return "stripe"
}

func (g *StripeGateway) CreateOrder(ctx context.Context, params *CreateOrderParams) (*Order, error) {
	sc := lib.GetStripeClient()
	currency := params.Currency
	if currency == "" {
		currency = "usd"
	}
	md := map[string]string{"reference": params.Reference}
	for k, v := range params.Metadata {
		md[k] = v
	}
	sess, err := sc.V1CheckoutSessions.Create(ctx, &stripe.CheckoutSessionCreateParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionCreateLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
					Currency:   stripe.String(currency),
					UnitAmount: stripe.Int64(params.AmountCents / int64(params.Quantity)),
					ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
						Name: stripe.String(params.Description),
					},
				},
				Quantity: stripe.Int64(int64(params.Quantity)),
			},
		},
		ClientReferenceID: stripe.String(params.Reference),
		SuccessURL:        stripe.String(params.SuccessURL),
		CancelURL:         stripe.String(params.CancelURL),
		Metadata:          md,
	})
	if err != nil {
		return nil, wrapStripeError(err)
	}
	// The session id is what the status endpoint can be polled with, so it
	// becomes the order reference.
	return &Order{
		Reference:   sess.ID,
		CheckoutURL: sess.URL,
		Meta:        map[string]string{"client_reference": params.Reference},
	}, nil
}

func (g *StripeGateway) GetOrderStatus(ctx context.Context, reference string) (*OrderStatus, error) {
	sc := lib.GetStripeClient()
	sess, err := sc.V1CheckoutSessions.Retrieve(ctx, reference, nil)
	if err != nil {
		return nil, wrapStripeError(err)
	}
	status := &OrderStatus{
		State:       StatePending,
		AmountCents: sess.AmountTotal,
		Meta:        map[string]string{"checkout_session": sess.ID},
	}
	switch sess.Status {
	case stripe.CheckoutSessionStatusComplete:
		if sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid {
			status.State = StateCompleted
		}
	case stripe.CheckoutSessionStatusExpired:
		status.State = StateFailed
	}
	return status, nil
}

func (g *StripeGateway) InitiateRefund(ctx context.Context, reference string, amountCents int64) error {
	sc := lib.GetStripeClient()
	sess, err := sc.V1CheckoutSessions.Retrieve(ctx, reference, nil)
	if err != nil {
		return wrapStripeError(err)
	}
	if sess.PaymentIntent == nil {
		return &types.ConflictError{Reason: "order has no captured payment to refund"}
	}
	params := &stripe.RefundCreateParams{
		PaymentIntent: stripe.String(sess.PaymentIntent.ID),
	}
	if amountCents > 0 {
		params.Amount = stripe.Int64(amountCents)
	}
	_, err = sc.V1Refunds.Create(ctx, params)
	if err != nil {
		return wrapStripeError(err)
	}
	log.Printf("[stripe] Refund initiated for [%s]\n", reference)
	return nil
}

func wrapStripeError(err error) error {
	var serr *stripe.Error
	if errors.As(err, &serr) {
		return &types.GatewayError{
			Code:    string(serr.Code),
			Status:  serr.HTTPStatusCode,
			Message: serr.Msg,
		}
	}
	return &types.GatewayError{Code: "transport", Message: err.Error()}
}
