package common

import (
	"testing"

	"tixgate/src/db"
	"tixgate/src/types"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func passRows(sold, total uint) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "event_id", "total_quantity", "sold_quantity"}).
		AddRow(1, 1, total, sold)
}

func TestReserveInventory(t *testing.T) {
	t.Run("reserves when capacity remains", func(t *testing.T) {
		d, mock := newMockDb(t)
		db.NewDB(d)

		mock.ExpectQuery(`SELECT (.+) FROM "passes"`).WillReturnRows(passRows(5, 10))
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "passes" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := ReserveInventory(1, 2)
		assert.Nil(t, err)
		assert.Nil(t, mock.ExpectationsWereMet())
	})

	t.Run("refuses to oversell", func(t *testing.T) {
		d, mock := newMockDb(t)
		db.NewDB(d)

		mock.ExpectQuery(`SELECT (.+) FROM "passes"`).WillReturnRows(passRows(9, 10))

		err := ReserveInventory(1, 2)
		assert.ErrorIs(t, err, ErrOversold)
		assert.Nil(t, mock.ExpectationsWereMet(), "an oversold reserve must not write")
	})

	t.Run("fills the last unit exactly", func(t *testing.T) {
		d, mock := newMockDb(t)
		db.NewDB(d)

		mock.ExpectQuery(`SELECT (.+) FROM "passes"`).WillReturnRows(passRows(9, 10))
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "passes" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := ReserveInventory(1, 1)
		assert.Nil(t, err)
	})

	t.Run("gives up after repeated lost races", func(t *testing.T) {
		d, mock := newMockDb(t)
		db.NewDB(d)

		for i := 0; i < reserveMaxAttempts; i++ {
			mock.ExpectQuery(`SELECT (.+) FROM "passes"`).WillReturnRows(passRows(5, 10))
			mock.ExpectBegin()
			mock.ExpectExec(`UPDATE "passes" SET`).WillReturnResult(sqlmock.NewResult(0, 0))
			mock.ExpectCommit()
		}

		err := ReserveInventory(1, 2)
		assert.ErrorIs(t, err, ErrInventoryContention)
		assert.Nil(t, mock.ExpectationsWereMet())
	})

	t.Run("reports a missing pass", func(t *testing.T) {
		d, mock := newMockDb(t)
		db.NewDB(d)

		mock.ExpectQuery(`SELECT (.+) FROM "passes"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		err := ReserveInventory(99, 1)
		var nferr *types.NotFoundError
		assert.ErrorAs(t, err, &nferr)
	})
}

func TestReleaseInventory(t *testing.T) {
	t.Run("releases reserved units", func(t *testing.T) {
		d, mock := newMockDb(t)
		db.NewDB(d)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "passes" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := ReleaseInventory(1, 2)
		assert.Nil(t, err)
	})

	t.Run("never drives the sold count negative", func(t *testing.T) {
		d, mock := newMockDb(t)
		db.NewDB(d)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "passes" SET`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		err := ReleaseInventory(1, 5)
		var cerr *types.ConflictError
		assert.ErrorAs(t, err, &cerr)
	})
}
