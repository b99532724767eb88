package models

import "tixgate/src/types"

// Pass is a sellable allotment for an event. SoldQuantity never exceeds
// TotalQuantity; the reservation path enforces that with a conditional
// update rather than a lock.
type Pass struct {
	ID            uint   `gorm:"primarykey" json:"id"`
	EventID       uint   `json:"event_id,omitempty"`
	Name          string `json:"name,omitempty"`
	PriceCents    int64  `json:"price_cents,omitempty"`
	TotalQuantity uint   `json:"total_quantity,omitempty"`
	SoldQuantity  uint   `gorm:"default:0" json:"sold_quantity"`

	Event Event `json:"-"`

	types.Timestamps
}

func (p *Pass) Remaining() uint {
	if p.SoldQuantity >= p.TotalQuantity {
		return 0
	}
	return p.TotalQuantity - p.SoldQuantity
}
