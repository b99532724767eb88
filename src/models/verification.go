package models

import (
	"tixgate/src/types"

	"github.com/google/uuid"
)

// PaymentVerificationRequest is the human gated record behind manual bank
// transfers. Approval is what releases tickets, never the upload itself.
type PaymentVerificationRequest struct {
	ID          uint                     `gorm:"primarykey" json:"id"`
	Reference   uuid.UUID                `gorm:"type:uuid;uniqueIndex" json:"reference"`
	EventID     uint                     `json:"event_id,omitempty"`
	UserID      uint                     `json:"user_id,omitempty"`
	Quantity    uint                     `json:"qty,omitempty"`
	AmountCents int64                    `json:"amount_cents"`
	SlipNote    *string                  `json:"slip_note,omitempty"`
	Status      types.VerificationStatus `gorm:"default:'pending'" json:"status,omitempty"`
	ReviewedBy  *uint                    `json:"reviewed_by,omitempty"`
	Metadata    *types.JSONB             `gorm:"type:jsonb" json:"metadata,omitempty"`

	Event Event `json:"-"`
	User  User  `json:"-"`

	types.Timestamps
}
