package models

import (
	"log"
	"time"

	"tixgate/src/lib"
	"tixgate/src/types"
)

type Ticket struct {
	ID               uint               `gorm:"primarykey" json:"id"`
	EventID          uint               `json:"event_id,omitempty"`
	PassID           *uint              `json:"pass_id,omitempty"`
	UserID           uint               `json:"user_id,omitempty"`
	PaymentReference string             `gorm:"uniqueIndex:idx_tickets_reference_ordinal" json:"payment_reference,omitempty"`
	BatchOrdinal     uint               `gorm:"uniqueIndex:idx_tickets_reference_ordinal" json:"batch_ordinal"`
	AmountCents      int64              `json:"amount_cents"`
	PurchasedAt      time.Time          `json:"purchased_at,omitempty"`
	Serial           string             `json:"serial,omitempty"`
	Status           types.TicketStatus `gorm:"default:'valid'" json:"status,omitempty"`
	Metadata         *types.JSONB       `gorm:"type:jsonb" json:"metadata,omitempty"`

	Event Event `json:"event,omitempty"`
	User  User  `json:"-"`

	types.Timestamps
}

func TicketsIssuedProducer(reference string, payload map[string]any) error {
	err := lib.KafkaProduceMessage("tickets_issued_producer", "tickets-issued", payload)
	if err != nil {
		log.Printf("Error on producing message for [%s]: %s\n", reference, err.Error())
		return err
	}
	return nil
}
