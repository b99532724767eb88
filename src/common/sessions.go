package common

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"tixgate/src/db"
	"tixgate/src/lib"
	"tixgate/src/models"
	"tixgate/src/types"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SessionStore keeps payment sessions with a fixed TTL. Expiry is lazy:
// nothing reaps sessions on a timer for correctness, a pending session past
// its deadline flips to expired the moment it is read. The purge sweep only
// keeps the table small.
type SessionStore struct {
	ttl time.Duration
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &SessionStore{ttl: ttl}
}

type CreateSessionParams struct {
	SessionID    string
	UserID       uint
	EventID      uint
	PassID       *uint
	Quantity     uint
	AmountCents  int64
	Method       types.PaymentMethod
	SelectedDate *time.Time
	CouponCode   *string
}

// CreateSession is an idempotent upsert keyed on the session id. Repeating a
// create merges the fields, resets the status to pending and restarts the
// TTL clock.
func (s *SessionStore) CreateSession(params *CreateSessionParams) (*models.PaymentSession, error) {
	d := db.GetDb()
	session := models.PaymentSession{
		SessionID:    params.SessionID,
		UserID:       params.UserID,
		EventID:      params.EventID,
		PassID:       params.PassID,
		Quantity:     params.Quantity,
		AmountCents:  params.AmountCents,
		Method:       params.Method,
		Status:       types.SESSION_PENDING,
		SelectedDate: params.SelectedDate,
		CouponCode:   params.CouponCode,
		ExpiresAt:    time.Now().Add(s.ttl),
	}
	err := d.Transaction(func(tx *gorm.DB) error {
		return tx.
			Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "session_id"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"user_id", "event_id", "pass_id", "quantity", "amount_cents",
					"method", "status", "selected_date", "coupon_code", "expires_at", "updated_at",
				}),
			}).
			Create(&session).
			Error
	})
	if err != nil {
		return nil, err
	}
	s.cacheStatus(session.SessionID, session.Status)
	return &session, nil
}

// GetSession returns the session, expiring it first when a pending one has
// outlived its deadline. Terminal sessions keep their status no matter how
// old they are.
func (s *SessionStore) GetSession(sessionID string) (*models.PaymentSession, error) {
	d := db.GetDb()
	var session models.PaymentSession
	err := d.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("session_id = ?", sessionID).
			First(&session).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &types.NotFoundError{Resource: "payment session", ID: sessionID}
			}
			return err
		}
		if session.Status == types.SESSION_PENDING && session.ExpiresAt.Before(time.Now()) {
			if err := tx.
				Model(&models.PaymentSession{}).
				Where("session_id = ? AND status = ?", sessionID, types.SESSION_PENDING).
				Update("status", types.SESSION_EXPIRED).
				Error; err != nil {
				return err
			}
			session.Status = types.SESSION_EXPIRED
			s.cacheStatus(sessionID, session.Status)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// UpdateStatus records the outcome the gateway reported. It never issues
// tickets itself; issuance listens on its own path.
func (s *SessionStore) UpdateStatus(sessionID string, status types.SessionStatus) error {
	d := db.GetDb()
	err := d.Transaction(func(tx *gorm.DB) error {
		res := tx.
			Model(&models.PaymentSession{}).
			Where("session_id = ?", sessionID).
			Update("status", status)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &types.NotFoundError{Resource: "payment session", ID: sessionID}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.cacheStatus(sessionID, status)
	return nil
}

// PurgeExpired deletes sessions whose deadline passed, pending or already
// expired. Runs from the scheduler.
func (s *SessionStore) PurgeExpired() (int64, error) {
	d := db.GetDb()
	res := d.
		Unscoped().
		Where("status IN ?", []types.SessionStatus{types.SESSION_PENDING, types.SESSION_EXPIRED}).
		Where("expires_at < ?", time.Now()).
		Delete(&models.PaymentSession{})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		log.Printf("[sessions] purged %d expired sessions\n", res.RowsAffected)
	}
	return res.RowsAffected, nil
}

func (s *SessionStore) cacheStatus(sessionID string, status types.SessionStatus) {
	rd := lib.GetRedisClient()
	if rd == nil {
		return
	}
	go func() {
		key := fmt.Sprintf("payment:%s:status", sessionID)
		if err := rd.SetEx(context.Background(), key, string(status), s.ttl).Err(); err != nil {
			log.Printf("[redis] Failed to cache status for %s: %s\n", sessionID, err.Error())
		}
	}()
}
