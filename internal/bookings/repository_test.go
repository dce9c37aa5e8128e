package bookings

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-rcs/site-coordination/internal/models"
)

var (
	transitionIfPending = regexp.QuoteMeta("UPDATE bookings SET status = $2 WHERE id = $1 AND status = $3")
	selectBooking       = regexp.QuoteMeta("FROM bookings WHERE id = $1")
)

func bookingRow(id int64, status string) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "email", "first_name", "last_name", "project", "timeslot_raw", "duration_weeks", "status", "created_at"}).
		AddRow(id, "ada@example.org", "Ada", "Lovelace", "Engines", "W12; Mo-Fr", 3, status, time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC))
}

func newMockRepo(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewRepository(mock), mock
}

func TestRepository_TransitionOnlyFromPending(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(transitionIfPending).
		WithArgs(int64(7), models.BookingStatusBooked, models.BookingStatusPending).
		WillReturnRows(bookingRow(7, models.BookingStatusBooked))
	b, err := repo.Transition(context.Background(), 7, models.BookingStatusBooked)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusBooked, b.Status)
	assert.Equal(t, 3, b.DurationWeeks)

	mock.ExpectQuery(transitionIfPending).
		WithArgs(int64(7), models.BookingStatusDenied, models.BookingStatusPending).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(selectBooking).WithArgs(int64(7)).WillReturnRows(bookingRow(7, models.BookingStatusBooked))
	_, err = repo.Transition(context.Background(), 7, models.BookingStatusDenied)
	assert.ErrorIs(t, err, models.ErrNotPending)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_TransitionMissing(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(transitionIfPending).WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(selectBooking).WithArgs(int64(99)).WillReturnError(pgx.ErrNoRows)

	_, err := repo.Transition(context.Background(), 99, models.BookingStatusBooked)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListNewestFirstWithBoundQuery(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("strpos(timeslot_raw, $1) > 0") + ".*" + regexp.QuoteMeta("ORDER BY created_at DESC")).
		WithArgs("W12").
		WillReturnRows(bookingRow(8, models.BookingStatusPending))

	list, err := repo.List(context.Background(), "W12")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(8), list[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
