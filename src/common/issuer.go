package common

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"tixgate/src/db"
	"tixgate/src/models"
	"tixgate/src/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Issuer turns a confirmed payment into tickets exactly once per payment
// reference. Every caller funnels through here: webhooks, reconciliation,
// manual verification approvals. The unique index on
// (payment_reference, batch_ordinal) is the arbiter when two callers race;
// the loser re-reads and returns the winner's batch.
type Issuer struct {
	notifier Notifier
}

func NewIssuer(n Notifier) *Issuer {
	if n == nil {
		n = NoopNotifier{}
	}
	return &Issuer{notifier: n}
}

type IssueParams struct {
	PaymentReference string
	EventID          uint
	UserID           uint
	PassID           *uint
	Quantity         uint
	AmountTotalCents int64
	Method           types.PaymentMethod
}

func (p *IssueParams) validate() error {
	if p.PaymentReference == "" {
		return &types.ValidationError{Field: "payment_reference", Reason: "must not be empty"}
	}
	if p.Quantity == 0 {
		return &types.ValidationError{Field: "qty", Reason: "must be at least 1"}
	}
	if p.AmountTotalCents < 0 {
		return &types.ValidationError{Field: "amount", Reason: "must not be negative"}
	}
	return nil
}

func (i *Issuer) Issue(ctx context.Context, params *IssueParams) ([]models.Ticket, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	d := db.GetDb()

	existing, err := ticketsByReference(d.WithContext(ctx), params.PaymentReference)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return existing, nil
	}

	tickets := buildBatch(params, time.Now())
	err = d.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event models.Event
		if err := tx.
			Model(&models.Event{}).
			Where("id = ?", params.EventID).
			First(&event).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &types.NotFoundError{Resource: "event", ID: params.EventID}
			}
			return err
		}
		if params.PassID != nil {
			if err := ReserveInventoryTx(tx, *params.PassID, params.Quantity); err != nil {
				return err
			}
		}
		if err := tx.Create(&tickets).Error; err != nil {
			return err
		}
		if err := PromoteWaitingTx(tx, params.UserID, params.EventID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		if isDuplicateKey(err) {
			// Another issuance with the same reference committed first.
			winners, lookupErr := ticketsByReference(d.WithContext(ctx), params.PaymentReference)
			if lookupErr != nil {
				return nil, lookupErr
			}
			if len(winners) > 0 {
				return winners, nil
			}
		}
		return nil, err
	}

	go func() {
		if err := models.TicketsIssuedProducer(params.PaymentReference, map[string]any{
			"reference": params.PaymentReference,
			"event_id":  params.EventID,
			"user_id":   params.UserID,
			"qty":       params.Quantity,
		}); err != nil {
			log.Printf("Error publishing tickets-issued for [%s]: %s\n", params.PaymentReference, err.Error())
		}
	}()
	i.notifier.Notify(ctx, &Notification{
		UserID:  params.UserID,
		Subject: "Your tickets are ready",
		Body:    fmt.Sprintf("Payment %s confirmed, %d ticket(s) issued.", params.PaymentReference, params.Quantity),
	})

	return tickets, nil
}

// buildBatch splits the paid amount over the tickets in integer cents. The
// division remainder lands on the first ticket so the batch always sums to
// the amount paid. Purchase times step by one microsecond per ordinal to
// keep them distinct within the batch.
func buildBatch(params *IssueParams, base time.Time) []models.Ticket {
	qty := int64(params.Quantity)
	per := params.AmountTotalCents / qty
	rem := params.AmountTotalCents - per*qty
	tickets := make([]models.Ticket, 0, params.Quantity)
	for n := uint(0); n < params.Quantity; n++ {
		amount := per
		if n == 0 {
			amount += rem
		}
		tickets = append(tickets, models.Ticket{
			EventID:          params.EventID,
			PassID:           params.PassID,
			UserID:           params.UserID,
			PaymentReference: params.PaymentReference,
			BatchOrdinal:     n,
			AmountCents:      amount,
			PurchasedAt:      base.Add(time.Duration(n) * time.Microsecond),
			Serial:           uuid.NewString(),
			Status:           types.TICKET_VALID,
		})
	}
	return tickets
}

func ticketsByReference(d *gorm.DB, reference string) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := d.
		Model(&models.Ticket{}).
		Where("payment_reference = ?", reference).
		Order("batch_ordinal asc").
		Find(&tickets).
		Error
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "SQLSTATE 23505")
}
