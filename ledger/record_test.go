package ledger_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/librento/librento/ledger"
)

func Test_DeriveStatus_ForAnOpenRecord(t *testing.T) {
	// arrange
	dueDate := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	record := ledger.BuildLoanRecord(
		uuid.New(), uuid.New(), uuid.New(), "reader@example.com",
		dueDate.Add(-14*24*time.Hour), dueDate)

	testCases := []struct {
		name           string
		now            time.Time
		expectedStatus ledger.Status
	}{
		{
			name:           "before the due date",
			now:            dueDate.Add(-time.Hour),
			expectedStatus: ledger.StatusBorrowed,
		},
		{
			name:           "exactly at the due date",
			now:            dueDate,
			expectedStatus: ledger.StatusBorrowed,
		},
		{
			name:           "after the due date",
			now:            dueDate.Add(time.Second),
			expectedStatus: ledger.StatusOverdue,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			status := ledger.DeriveStatus(record, tc.now)

			// assert
			assert.Equal(t, tc.expectedStatus, status)
		})
	}
}

func Test_DeriveStatus_ReturnedWinsOverOverdue(t *testing.T) {
	// arrange
	dueDate := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	returnedAt := dueDate.Add(5 * 24 * time.Hour)

	record := ledger.BuildLoanRecord(
		uuid.New(), uuid.New(), uuid.New(), "reader@example.com",
		dueDate.Add(-14*24*time.Hour), dueDate)
	record.ReturnDate = &returnedAt

	// act
	status := ledger.DeriveStatus(record, returnedAt.Add(24*time.Hour))

	// assert
	assert.Equal(t, ledger.StatusReturned, status)
}

func Test_AnnotateRecords_DerivesEveryStatusAtTheSameInstant(t *testing.T) {
	// arrange
	now := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)
	returnedAt := now.Add(-24 * time.Hour)

	open := ledger.BuildLoanRecord(
		uuid.New(), uuid.New(), uuid.New(), "open@example.com",
		now.Add(-time.Hour), now.Add(14*24*time.Hour))

	overdue := ledger.BuildLoanRecord(
		uuid.New(), uuid.New(), uuid.New(), "late@example.com",
		now.Add(-20*24*time.Hour), now.Add(-6*24*time.Hour))

	closed := ledger.BuildLoanRecord(
		uuid.New(), uuid.New(), uuid.New(), "done@example.com",
		now.Add(-10*24*time.Hour), now.Add(4*24*time.Hour))
	closed.ReturnDate = &returnedAt

	// act
	annotated := ledger.AnnotateRecords([]ledger.LoanRecord{open, overdue, closed}, now)

	// assert
	require.Len(t, annotated, 3)
	assert.Equal(t, ledger.StatusBorrowed, annotated[0].Status)
	assert.Equal(t, ledger.StatusOverdue, annotated[1].Status)
	assert.Equal(t, ledger.StatusReturned, annotated[2].Status)
}

func Test_LoanRecord_IsOpen(t *testing.T) {
	// arrange
	record := ledger.BuildLoanRecord(
		uuid.New(), uuid.New(), uuid.New(), "reader@example.com",
		time.Now(), time.Now().Add(14*24*time.Hour))

	// assert
	assert.True(t, record.IsOpen())

	returnedAt := time.Now()
	record.ReturnDate = &returnedAt
	assert.False(t, record.IsOpen())
}
