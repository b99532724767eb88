package models

import (
	"time"

	"tixgate/src/types"
)

type WaitingListEntry struct {
	ID             uint                `gorm:"primarykey" json:"id"`
	EventID        uint                `json:"event_id,omitempty"`
	UserID         uint                `json:"user_id,omitempty"`
	PassID         *uint               `json:"pass_id,omitempty"`
	Status         types.WaitingStatus `gorm:"default:'waiting'" json:"status,omitempty"`
	OfferExpiresAt *time.Time          `json:"offer_expires_at,omitempty"`

	Event Event `json:"-"`
	User  User  `json:"-"`

	types.Timestamps
}
