package gateway

import (
	"context"
	"fmt"

	"tixgate/src/db"
	"tixgate/src/models"
	"tixgate/src/types"
)

// ManualTransferGateway backs the bank transfer path. There is no external
// provider to call; the order state is whatever a reviewer decided on the
// matching verification request.
type ManualTransferGateway struct {
	accountName   string
	accountNumber string
}

func NewManualTransferGateway(accountName, accountNumber string) *ManualTransferGateway {
	return &ManualTransferGateway{
		accountName:   accountName,
		accountNumber: accountNumber,
	}
}

func (g *ManualTransferGateway) Name() string {
	return "manual"
}

func (g *ManualTransferGateway) CreateOrder(ctx context.Context, params *CreateOrderParams) (*Order, error) {
	instructions := fmt.Sprintf("Transfer %d to %s (%s) and quote reference %s", params.AmountCents, g.accountName, g.accountNumber, params.Reference)
	return &Order{
		Reference: params.Reference,
		Meta: map[string]string{
			"instructions":   instructions,
			"account_name":   g.accountName,
			"account_number": g.accountNumber,
		},
	}, nil
}

func (g *ManualTransferGateway) GetOrderStatus(ctx context.Context, reference string) (*OrderStatus, error) {
	var req models.PaymentVerificationRequest
	d := db.GetDb()
	if err := d.WithContext(ctx).
		Model(&models.PaymentVerificationRequest{}).
		Where("reference = ?", reference).
		First(&req).
		Error; err != nil {
		return nil, &types.NotFoundError{Resource: "verification request", ID: reference}
	}
	status := &OrderStatus{
		State:       StatePending,
		AmountCents: req.AmountCents,
	}
	switch req.Status {
	case types.VERIFICATION_APPROVED:
		status.State = StateCompleted
	case types.VERIFICATION_REJECTED:
		status.State = StateFailed
	}
	return status, nil
}

func (g *ManualTransferGateway) InitiateRefund(ctx context.Context, reference string, amountCents int64) error {
	return &types.GatewayError{
		Code:    "unsupported",
		Status:  400,
		Message: "manual transfers are refunded out of band",
	}
}
