package models

import (
	"time"

	"tixgate/src/types"
)

type PaymentSession struct {
	ID           uint                `gorm:"primarykey" json:"id"`
	SessionID    string              `gorm:"uniqueIndex" json:"session_id"`
	UserID       uint                `json:"user_id,omitempty"`
	EventID      uint                `json:"event_id,omitempty"`
	PassID       *uint               `json:"pass_id,omitempty"`
	Quantity     uint                `json:"qty,omitempty"`
	AmountCents  int64               `json:"amount_cents"`
	Method       types.PaymentMethod `gorm:"default:'checkout'" json:"method,omitempty"`
	Status       types.SessionStatus `gorm:"default:'pending'" json:"status,omitempty"`
	SelectedDate *time.Time          `json:"selected_date,omitempty"`
	CouponCode   *string             `json:"coupon_code,omitempty"`
	ExpiresAt    time.Time           `json:"expires_at,omitempty"`
	Metadata     *types.JSONB        `gorm:"type:jsonb" json:"metadata,omitempty"`

	Event Event `json:"-"`
	User  User  `json:"-"`

	types.Timestamps
}
