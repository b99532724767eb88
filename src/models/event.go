package models

import (
	"time"

	"tixgate/src/types"
)

type Event struct {
	ID       uint              `gorm:"primarykey" json:"id"`
	Title    string            `json:"title,omitempty"`
	Location string            `json:"location,omitempty"`
	DateTime time.Time         `json:"date_time,omitempty"`
	Status   types.EventStatus `gorm:"default:'draft'" json:"status,omitempty"`

	Passes []Pass `json:"passes,omitempty"`

	types.Timestamps
}
