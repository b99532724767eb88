package common

import (
	"testing"
	"time"

	"tixgate/src/db"
	"tixgate/src/types"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func sessionRows(status types.SessionStatus, expiresAt time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "session_id", "user_id", "event_id", "quantity", "amount_cents", "method", "status", "expires_at"}).
		AddRow(1, "sess-1", 1, 1, 2, 5000, "checkout", string(status), expiresAt)
}

func TestGetSessionExpiresOverduePending(t *testing.T) {
	d, mock := newMockDb(t)
	db.NewDB(d)
	store := NewSessionStore(30 * time.Minute)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "payment_sessions"`).
		WillReturnRows(sessionRows(types.SESSION_PENDING, time.Now().Add(-time.Minute)))
	mock.ExpectExec(`UPDATE "payment_sessions" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	session, err := store.GetSession("sess-1")
	assert.Nil(t, err)
	assert.Equal(t, types.SESSION_EXPIRED, session.Status)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestGetSessionLeavesLiveSessionAlone(t *testing.T) {
	d, mock := newMockDb(t)
	db.NewDB(d)
	store := NewSessionStore(30 * time.Minute)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "payment_sessions"`).
		WillReturnRows(sessionRows(types.SESSION_PENDING, time.Now().Add(10*time.Minute)))
	mock.ExpectCommit()

	session, err := store.GetSession("sess-1")
	assert.Nil(t, err)
	assert.Equal(t, types.SESSION_PENDING, session.Status)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestGetSessionKeepsTerminalStatus(t *testing.T) {
	d, mock := newMockDb(t)
	db.NewDB(d)
	store := NewSessionStore(30 * time.Minute)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "payment_sessions"`).
		WillReturnRows(sessionRows(types.SESSION_COMPLETED, time.Now().Add(-time.Hour)))
	mock.ExpectCommit()

	session, err := store.GetSession("sess-1")
	assert.Nil(t, err)
	assert.Equal(t, types.SESSION_COMPLETED, session.Status, "a settled session never expires")
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestGetSessionNotFound(t *testing.T) {
	d, mock := newMockDb(t)
	db.NewDB(d)
	store := NewSessionStore(30 * time.Minute)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "payment_sessions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := store.GetSession("nope")
	var nferr *types.NotFoundError
	assert.ErrorAs(t, err, &nferr)
}

func TestUpdateStatusUnknownSession(t *testing.T) {
	d, mock := newMockDb(t)
	db.NewDB(d)
	store := NewSessionStore(30 * time.Minute)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "payment_sessions" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := store.UpdateStatus("nope", types.SESSION_COMPLETED)
	var nferr *types.NotFoundError
	assert.ErrorAs(t, err, &nferr)
}

func TestPurgeExpired(t *testing.T) {
	d, mock := newMockDb(t)
	db.NewDB(d)
	store := NewSessionStore(30 * time.Minute)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "payment_sessions"`).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	purged, err := store.PurgeExpired()
	assert.Nil(t, err)
	assert.Equal(t, int64(3), purged)
}
