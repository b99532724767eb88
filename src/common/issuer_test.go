package common

import (
	"context"
	"errors"
	"testing"
	"time"

	"tixgate/src/db"
	"tixgate/src/types"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestBuildBatchConservesAmount(t *testing.T) {
	params := &IssueParams{
		PaymentReference: "ref-1",
		EventID:          1,
		UserID:           1,
		Quantity:         3,
		AmountTotalCents: 100,
	}
	tickets := buildBatch(params, time.Now())

	assert.Len(t, tickets, 3)
	assert.Equal(t, int64(34), tickets[0].AmountCents)
	assert.Equal(t, int64(33), tickets[1].AmountCents)
	assert.Equal(t, int64(33), tickets[2].AmountCents)

	var sum int64
	for _, ticket := range tickets {
		sum += ticket.AmountCents
	}
	assert.Equal(t, params.AmountTotalCents, sum)
}

func TestBuildBatchEvenSplit(t *testing.T) {
	params := &IssueParams{
		PaymentReference: "ref-1",
		EventID:          1,
		UserID:           1,
		Quantity:         4,
		AmountTotalCents: 2000,
	}
	tickets := buildBatch(params, time.Now())
	for _, ticket := range tickets {
		assert.Equal(t, int64(500), ticket.AmountCents)
	}
}

func TestBuildBatchDistinctPurchaseTimes(t *testing.T) {
	params := &IssueParams{
		PaymentReference: "ref-1",
		EventID:          1,
		UserID:           1,
		Quantity:         5,
		AmountTotalCents: 500,
	}
	base := time.Now()
	tickets := buildBatch(params, base)

	seen := map[int64]bool{}
	for n, ticket := range tickets {
		assert.Equal(t, uint(n), ticket.BatchOrdinal)
		assert.False(t, seen[ticket.PurchasedAt.UnixNano()], "purchase times must be distinct")
		seen[ticket.PurchasedAt.UnixNano()] = true
		assert.NotEmpty(t, ticket.Serial)
	}
	assert.Equal(t, base, tickets[0].PurchasedAt)
}

func TestIssueParamsValidation(t *testing.T) {
	issuer := NewIssuer(nil)

	_, err := issuer.Issue(context.Background(), &IssueParams{EventID: 1, UserID: 1, Quantity: 1, AmountTotalCents: 100})
	var verr *types.ValidationError
	assert.ErrorAs(t, err, &verr, "empty payment reference must be rejected")

	_, err = issuer.Issue(context.Background(), &IssueParams{PaymentReference: "ref-1", EventID: 1, UserID: 1, AmountTotalCents: 100})
	assert.ErrorAs(t, err, &verr, "zero quantity must be rejected")

	_, err = issuer.Issue(context.Background(), &IssueParams{PaymentReference: "ref-1", EventID: 1, UserID: 1, Quantity: 1, AmountTotalCents: -5})
	assert.ErrorAs(t, err, &verr, "negative amount must be rejected")
}

func TestIssueReturnsExistingBatch(t *testing.T) {
	d, mock := newMockDb(t)
	db.NewDB(d)

	rows := sqlmock.NewRows([]string{"id", "event_id", "user_id", "payment_reference", "batch_ordinal", "amount_cents", "status"}).
		AddRow(1, 1, 1, "ref-1", 0, 34, "valid").
		AddRow(2, 1, 1, "ref-1", 1, 33, "valid").
		AddRow(3, 1, 1, "ref-1", 2, 33, "valid")
	mock.ExpectQuery(`SELECT (.+) FROM "tickets" WHERE payment_reference`).
		WithArgs("ref-1").
		WillReturnRows(rows)

	issuer := NewIssuer(nil)
	tickets, err := issuer.Issue(context.Background(), &IssueParams{
		PaymentReference: "ref-1",
		EventID:          1,
		UserID:           1,
		Quantity:         3,
		AmountTotalCents: 100,
	})
	assert.Nil(t, err)
	assert.Len(t, tickets, 3)
	assert.Nil(t, mock.ExpectationsWereMet(), "a second issuance must not write anything")
}

func TestIsDuplicateKey(t *testing.T) {
	assert.True(t, isDuplicateKey(gorm.ErrDuplicatedKey))
	assert.True(t, isDuplicateKey(errors.New(`ERROR: duplicate key value violates unique constraint "idx_tickets_reference_ordinal" (SQLSTATE 23505)`)))
	assert.False(t, isDuplicateKey(errors.New("connection refused")))
}
