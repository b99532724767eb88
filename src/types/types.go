package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type JSONB map[string]any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

type Metadata map[string]any

type Environment string

const (
	Local      Environment = "local"
	Test       Environment = "test"
	Production Environment = "production"
)

type SessionStatus string

const (
	SESSION_PENDING   SessionStatus = "pending"
	SESSION_COMPLETED SessionStatus = "completed"
	SESSION_FAILED    SessionStatus = "failed"
	SESSION_EXPIRED   SessionStatus = "expired"
)

// Terminal reports whether a session can no longer change state.
func (s SessionStatus) Terminal() bool {
	return s == SESSION_COMPLETED || s == SESSION_FAILED || s == SESSION_EXPIRED
}

type TicketStatus string

const (
	TICKET_VALID    TicketStatus = "valid"
	TICKET_USED     TicketStatus = "used"
	TICKET_REFUNDED TicketStatus = "refunded"
)

type EventStatus string

const (
	EVENT_DRAFT     EventStatus = "draft"
	EVENT_OPEN      EventStatus = "open"
	EVENT_CLOSED    EventStatus = "closed"
	EVENT_COMPLETED EventStatus = "completed"
	EVENT_CANCELED  EventStatus = "canceled"
)

type WaitingStatus string

const (
	WAITING_LISTED    WaitingStatus = "waiting"
	WAITING_OFFERED   WaitingStatus = "offered"
	WAITING_PURCHASED WaitingStatus = "purchased"
	WAITING_EXPIRED   WaitingStatus = "expired"
)

type VerificationStatus string

const (
	VERIFICATION_PENDING  VerificationStatus = "pending"
	VERIFICATION_APPROVED VerificationStatus = "approved"
	VERIFICATION_REJECTED VerificationStatus = "rejected"
)

type PaymentMethod string

const (
	METHOD_CHECKOUT PaymentMethod = "checkout"
	METHOD_SDK      PaymentMethod = "sdk"
	METHOD_MANUAL   PaymentMethod = "manual"
)

type CreateCheckoutRequestBody struct {
	SessionID    string `json:"session_id" binding:"required"`
	EventID      uint   `json:"event" binding:"required"`
	PassID       *uint  `json:"pass,omitempty"`
	Quantity     uint   `json:"qty" binding:"required,min=1"`
	AmountCents  int64  `json:"amount" binding:"required,positiveamount"`
	Method       string `json:"method,omitempty"`
	SelectedDate string `json:"selected_date,omitempty"`
	CouponCode   string `json:"coupon_code,omitempty"`
}

type CreateVerificationRequestBody struct {
	EventID     uint   `json:"event" binding:"required"`
	Quantity    uint   `json:"qty" binding:"required,min=1"`
	AmountCents int64  `json:"amount" binding:"required,positiveamount"`
	SlipNote    string `json:"slip_note,omitempty"`
}

type RedeemTicketRequestBody struct {
	Code string `json:"code" binding:"required"`
}

type JoinWaitlistRequestBody struct {
	EventID uint  `json:"event" binding:"required"`
	PassID  *uint `json:"pass,omitempty"`
}

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type SessionURIParams struct {
	SessionID string `uri:"sessionId" binding:"required"`
}

type Claims struct {
	Username    string   `json:"username"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
	jwt.RegisteredClaims
}

type Handler func(payload string)
