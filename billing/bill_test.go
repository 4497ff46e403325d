package billing_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/librento/librento/billing"
	"github.com/librento/librento/catalog"
	"github.com/librento/librento/directory"
	"github.com/librento/librento/ledger"
)

func billingFixture() (ledger.LoanRecord, catalog.Book, directory.Member, ledger.Policy) {
	borrowDate := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	record := ledger.BuildLoanRecord(
		uuid.New(), uuid.New(), uuid.New(), "ada@example.com",
		borrowDate, borrowDate.Add(14*24*time.Hour))

	book := catalog.Book{
		ID:    record.BookID,
		Title: "The Go Programming Language",
		Price: 39.99,
	}

	member := directory.Member{
		ID:    record.MemberID,
		Name:  "Ada Reader",
		Email: record.MemberEmail,
	}

	return record, book, member, ledger.DefaultPolicy()
}

func Test_Settle_OnTimeReturn_ChargesOnlyTheBookPrice(t *testing.T) {
	// arrange
	record, book, member, policy := billingFixture()
	now := record.DueDate.Add(-24 * time.Hour)

	// act
	bill := billing.Settle(record, book, member, policy, now)

	// assert
	assert.Equal(t, member.Name, bill.MemberName)
	assert.Equal(t, member.Email, bill.MemberEmail)
	assert.Equal(t, book.Title, bill.BookTitle)
	assert.InDelta(t, 39.99, bill.BookPrice, 0.0001)
	assert.InDelta(t, 0.0, bill.Fine, 0.0001)
	assert.InDelta(t, 39.99, bill.Total, 0.0001)
	assert.Equal(t, now, bill.ReturnDate)
}

func Test_Settle_LateReturn_AddsTheFineToTheTotal(t *testing.T) {
	// arrange
	record, book, member, policy := billingFixture()
	now := record.DueDate.Add(3 * 24 * time.Hour)

	// act
	bill := billing.Settle(record, book, member, policy, now)

	// assert
	assert.InDelta(t, 15.0, bill.Fine, 0.0001)
	assert.InDelta(t, 54.99, bill.Total, 0.0001)
}

func Test_Settle_UsesTheRecordsReturnDate_WhenAlreadyClosed(t *testing.T) {
	// arrange
	record, book, member, policy := billingFixture()
	returnedAt := record.DueDate.Add(-48 * time.Hour)
	record.ReturnDate = &returnedAt

	// act
	bill := billing.Settle(record, book, member, policy, record.DueDate)

	// assert
	assert.Equal(t, returnedAt, bill.ReturnDate)
}

func Test_Settle_IsDeterministic_ForIdenticalInputs(t *testing.T) {
	// arrange
	record, book, member, policy := billingFixture()
	now := record.DueDate.Add(36 * time.Hour)

	// act
	first := billing.Settle(record, book, member, policy, now)
	second := billing.Settle(record, book, member, policy, now)

	// assert
	assert.Equal(t, first, second)
}
