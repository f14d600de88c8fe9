// Package booking implements the slot allocation engine: admission
// control and the conflict-free commit of one reservation.
package booking

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/mediandina/SGC/internal/events"
	"github.com/mediandina/SGC/internal/metrics"
	"github.com/mediandina/SGC/internal/models"
	"github.com/mediandina/SGC/internal/store"
	"github.com/mediandina/SGC/internal/validate"
)

// Service decides whether a reservation is admissible and commits it.
type Service struct {
	bookings *store.BookingStore
	bus      *events.Bus
	logger   zerolog.Logger
	now      func() time.Time
}

// NewService creates the allocation engine over a booking store.
func NewService(bookings *store.BookingStore, bus *events.Bus, logger zerolog.Logger) *Service {
	return &Service{
		bookings: bookings,
		bus:      bus,
		logger:   logger.With().Str("component", "booking").Logger(),
		now:      time.Now,
	}
}

// Reserve commits one booking for the authenticated owner.
//
// The calendar checks run before any store access, so a rejected date
// never triggers a table read. The conflict check and the append run
// inside the store's critical section: of two concurrent calls for the
// same (date, slot), exactly one commits and the other gets ErrSlotTaken.
func (s *Service) Reserve(ctx context.Context, input *validate.BookingInput, ownerID string) (*models.Booking, error) {
	// input.Date is a parsed calendar day at UTC midnight; take today as
	// the clock's local calendar day at UTC midnight so the comparison is
	// day against day, independent of the server's timezone offset.
	y, m, d := s.now().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	if input.Date.Before(today) {
		metrics.IncReservation(ErrPastDate.Code)
		return nil, ErrPastDate
	}
	if models.IsClosedDay(input.Date) {
		metrics.IncReservation(ErrClosedDay.Code)
		return nil, ErrClosedDay
	}

	capacity := models.CapacityFor(input.Date)
	if input.Slot < 1 || input.Slot > capacity {
		metrics.IncReservation(ErrSlotOutOfRange.Code)
		return nil, ErrSlotOutOfRange
	}

	committed := &models.Booking{
		Date:         input.Date,
		DriverName:   input.DriverName,
		VehicleType:  input.VehicleType,
		Slot:         input.Slot,
		ProviderName: input.ProviderName,
		Phone:        input.Phone,
		Plate:        input.Plate,
		WeightKg:     input.WeightKg,
		BaleCount:    input.BaleCount,
		// Owner identity comes from the session, never from the form.
		OwnerID: ownerID,
	}

	err := s.bookings.Append(ctx, committed, func(existing []models.Booking) error {
		for i := range existing {
			if committed.SameSlot(&existing[i]) {
				return ErrSlotTaken
			}
		}
		return nil
	})
	if err != nil {
		if rej, ok := err.(*RejectionError); ok {
			metrics.IncReservation(rej.Code)
		} else {
			metrics.IncReservation("storage_error")
		}
		return nil, err
	}

	metrics.IncReservation("committed")
	s.logger.Info().
		Str("fecha", committed.DateString()).
		Int("cupo", committed.Slot).
		Str("owner", committed.OwnerID).
		Msg("slot reserved")

	if s.bus != nil {
		s.bus.Publish(events.BookingCreated, committed)
	}
	return committed, nil
}

// OccupiedSlots returns the slot numbers already committed for a date,
// in ascending order. The answer is advisory: a client uses it to gray
// out taken slots, but Reserve re-checks conflicts authoritatively.
func (s *Service) OccupiedSlots(ctx context.Context, date time.Time) ([]int, error) {
	all, err := s.bookings.List(ctx)
	if err != nil {
		return nil, err
	}

	day := date.Format(models.DateLayout)
	var slots []int
	for i := range all {
		if all[i].DateString() == day {
			slots = append(slots, all[i].Slot)
		}
	}
	sort.Ints(slots)
	return slots, nil
}
