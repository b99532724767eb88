package common

import (
	"testing"
	"time"

	"tixgate/src/db"
	"tixgate/src/types"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestJoinWaitingListReturnsExistingEntry(t *testing.T) {
	d, mock := newMockDb(t)
	db.NewDB(d)

	rows := sqlmock.NewRows([]string{"id", "event_id", "user_id", "status"}).
		AddRow(7, 1, 1, "waiting")
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "waiting_list_entries"`).WillReturnRows(rows)
	mock.ExpectCommit()

	entry, err := JoinWaitingList(1, 1, nil)
	assert.Nil(t, err)
	assert.Equal(t, uint(7), entry.ID)
	assert.Nil(t, mock.ExpectationsWereMet(), "joining twice must not insert")
}

func TestJoinWaitingListCreatesEntry(t *testing.T) {
	d, mock := newMockDb(t)
	db.NewDB(d)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "waiting_list_entries"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`INSERT INTO "waiting_list_entries"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(8))
	mock.ExpectCommit()

	entry, err := JoinWaitingList(1, 1, nil)
	assert.Nil(t, err)
	assert.Equal(t, uint(8), entry.ID)
	assert.Equal(t, types.WAITING_LISTED, entry.Status)
}

func TestMarkOfferedRequiresWaitingState(t *testing.T) {
	d, mock := newMockDb(t)
	db.NewDB(d)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "waiting_list_entries" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := MarkOffered(7, 15*time.Minute)
	var cerr *types.ConflictError
	assert.ErrorAs(t, err, &cerr)
}

func TestPromoteWaitingScopesToUserAndEvent(t *testing.T) {
	d, mock := newMockDb(t)
	db.NewDB(d)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "waiting_list_entries" SET`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), uint(1), uint(2), "waiting", "offered").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := PromoteWaitingTx(d, 1, 2)
	assert.Nil(t, err)
	assert.Nil(t, mock.ExpectationsWereMet())
}

func TestExpireOverdueOffers(t *testing.T) {
	d, mock := newMockDb(t)
	db.NewDB(d)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "waiting_list_entries" SET`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	expired, err := ExpireOverdueOffers()
	assert.Nil(t, err)
	assert.Equal(t, int64(2), expired)
}
