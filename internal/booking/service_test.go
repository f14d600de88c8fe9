package booking

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediandina/SGC/internal/models"
	"github.com/mediandina/SGC/internal/store"
	"github.com/mediandina/SGC/internal/validate"
)

const ownerPhone = "5559876543"

// Fixed clock: Saturday 2024-06-01. All test dates are relative to it.
var testToday = time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

func newTestService(t *testing.T) *Service {
	t.Helper()
	logger := zerolog.New(io.Discard)
	resolver := store.NewResolver(t.TempDir(), "cupos.xlsx", store.BookingSchema, logger)
	bookings := store.NewBookingStore(resolver, store.NewLocker(2*time.Second), logger)

	svc := NewService(bookings, nil, logger)
	svc.now = func() time.Time { return testToday }
	return svc
}

func input(dateStr string, slot int) *validate.BookingInput {
	date, err := models.ParseDate(dateStr)
	if err != nil {
		panic(err)
	}
	return &validate.BookingInput{
		Date:         date,
		Slot:         slot,
		DriverName:   "Juan Pérez",
		VehicleType:  "Camión",
		ProviderName: "Fibras del Norte",
		Phone:        "5551234567",
		Plate:        "ABC-123",
		WeightKg:     12000,
		BaleCount:    40,
	}
}

func TestReserveCommitsBooking(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	// 2024-06-10 is a Monday: capacity 12.
	committed, err := svc.Reserve(ctx, input("2024-06-10", 12), ownerPhone)
	require.NoError(t, err)
	require.NotNil(t, committed)

	assert.Equal(t, "2024-06-10", committed.DateString())
	assert.Equal(t, 12, committed.Slot)
	assert.Equal(t, ownerPhone, committed.OwnerID)

	all, err := svc.bookings.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, ownerPhone, all[0].OwnerID)
}

func TestReserveOwnerComesFromSession(t *testing.T) {
	svc := newTestService(t)

	// The form phone differs from the session identity; the committed
	// owner must be the session's, never the client's.
	in := input("2024-06-10", 1)
	in.Phone = "5550001111"

	committed, err := svc.Reserve(context.Background(), in, ownerPhone)
	require.NoError(t, err)
	assert.Equal(t, ownerPhone, committed.OwnerID)
	assert.Equal(t, "5550001111", committed.Phone)
}

func TestReserveSlotTaken(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Reserve(ctx, input("2024-06-10", 12), ownerPhone)
	require.NoError(t, err)

	_, err = svc.Reserve(ctx, input("2024-06-10", 12), "5550000002")
	assert.ErrorIs(t, err, ErrSlotTaken)

	// A different slot on the same date is still free.
	_, err = svc.Reserve(ctx, input("2024-06-10", 11), "5550000002")
	assert.NoError(t, err)
}

func TestReservePastDate(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Reserve(context.Background(), input("2024-05-31", 1), ownerPhone)
	assert.ErrorIs(t, err, ErrPastDate)
}

func TestReserveSameDayAllowed(t *testing.T) {
	svc := newTestService(t)

	// Today (Saturday) is not a past date.
	_, err := svc.Reserve(context.Background(), input("2024-06-01", 1), ownerPhone)
	assert.NoError(t, err)
}

func TestReserveSameDayNonUTCClock(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	// A morning clock west of UTC: local midnight is after 00:00 UTC.
	// Booking for the clock's own calendar day must still be allowed.
	bogota := time.FixedZone("UTC-5", -5*3600)
	svc.now = func() time.Time { return time.Date(2024, 6, 10, 9, 30, 0, 0, bogota) }

	_, err := svc.Reserve(ctx, input("2024-06-10", 1), ownerPhone)
	assert.NoError(t, err)

	// The previous weekday is still a past date.
	_, err = svc.Reserve(ctx, input("2024-06-07", 1), ownerPhone)
	assert.ErrorIs(t, err, ErrPastDate)

	// Late evening east of UTC: the local day is already tomorrow in UTC
	// terms, and that local day is what counts.
	tokyo := time.FixedZone("UTC+9", 9*3600)
	svc.now = func() time.Time { return time.Date(2024, 6, 11, 23, 30, 0, 0, tokyo) }

	_, err = svc.Reserve(ctx, input("2024-06-11", 2), ownerPhone)
	assert.NoError(t, err)
	_, err = svc.Reserve(ctx, input("2024-06-10", 2), ownerPhone)
	assert.ErrorIs(t, err, ErrPastDate)
}

func TestReserveClosedSunday(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	// 2024-06-09 is a Sunday: closed regardless of slot.
	for _, slot := range []int{1, 5, 12} {
		_, err := svc.Reserve(ctx, input("2024-06-09", slot), ownerPhone)
		assert.ErrorIs(t, err, ErrClosedDay)
	}
}

func TestReserveCapacityBounds(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		date string
		slot int
		err  error
	}{
		{name: "weekday slot 1 ok", date: "2024-06-10", slot: 1},
		{name: "weekday slot 12 ok", date: "2024-06-11", slot: 12},
		{name: "weekday slot 0 rejected", date: "2024-06-12", slot: 0, err: ErrSlotOutOfRange},
		{name: "weekday slot 13 rejected", date: "2024-06-13", slot: 13, err: ErrSlotOutOfRange},
		{name: "saturday slot 5 ok", date: "2024-06-15", slot: 5},
		{name: "saturday slot 6 rejected", date: "2024-06-15", slot: 6, err: ErrSlotOutOfRange},
		{name: "saturday slot 0 rejected", date: "2024-06-15", slot: 0, err: ErrSlotOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Reserve(ctx, input(tt.date, tt.slot), ownerPhone)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestReserveRejectedDateSkipsStore(t *testing.T) {
	logger := zerolog.New(io.Discard)

	// The store directory does not exist, so any store access would
	// surface ErrStorageUnavailable. Calendar rejections come first and
	// never trigger a store read.
	resolver := store.NewResolver("/nonexistent/sgc-data", "cupos.xlsx", store.BookingSchema, logger)
	bookings := store.NewBookingStore(resolver, store.NewLocker(time.Second), logger)

	svc := NewService(bookings, nil, logger)
	svc.now = func() time.Time { return testToday }

	_, err := svc.Reserve(context.Background(), input("2024-05-01", 1), ownerPhone)
	assert.ErrorIs(t, err, ErrPastDate)

	_, err = svc.Reserve(context.Background(), input("2024-06-09", 1), ownerPhone)
	assert.ErrorIs(t, err, ErrClosedDay)

	// A slot inside capacity does reach the store and fails there.
	_, err = svc.Reserve(context.Background(), input("2024-06-10", 1), ownerPhone)
	assert.ErrorIs(t, err, store.ErrStorageUnavailable)
}

func TestReserveConcurrentSameSlot(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	const workers = 8
	results := make(chan error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Reserve(ctx, input("2024-06-10", 12), ownerPhone)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var committed, taken int
	for err := range results {
		switch {
		case err == nil:
			committed++
		case errors.Is(err, ErrSlotTaken):
			taken++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	// Exactly one winner; everyone else observed the conflict.
	assert.Equal(t, 1, committed)
	assert.Equal(t, workers-1, taken)

	all, err := svc.bookings.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestOccupiedSlots(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for _, slot := range []int{7, 2, 4} {
		_, err := svc.Reserve(ctx, input("2024-06-10", slot), ownerPhone)
		require.NoError(t, err)
	}
	_, err := svc.Reserve(ctx, input("2024-06-11", 1), ownerPhone)
	require.NoError(t, err)

	date, _ := models.ParseDate("2024-06-10")
	slots, err := svc.OccupiedSlots(ctx, date)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4, 7}, slots)

	empty, _ := models.ParseDate("2024-06-12")
	slots, err = svc.OccupiedSlots(ctx, empty)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestRejectionErrors(t *testing.T) {
	assert.True(t, IsRejection(ErrSlotTaken))
	assert.True(t, IsRejection(ErrPastDate))
	assert.False(t, IsRejection(errors.New("boom")))
	assert.False(t, IsRejection(store.ErrStorageUnavailable))

	assert.Equal(t, "El cupo seleccionado ya está ocupado", ErrSlotTaken.Error())
}
