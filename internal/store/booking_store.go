package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mediandina/SGC/internal/models"
)

// BookingStore owns all reads and writes of the booking table. The table
// on disk is the single source of truth: nothing is cached across calls,
// and every access re-resolves the canonical file first.
type BookingStore struct {
	resolver *Resolver
	locker   *Locker
	logger   zerolog.Logger
}

// NewBookingStore creates a store over the given resolver and locker.
func NewBookingStore(resolver *Resolver, locker *Locker, logger zerolog.Logger) *BookingStore {
	return &BookingStore{
		resolver: resolver,
		locker:   locker,
		logger:   logger.With().Str("component", "booking_store").Logger(),
	}
}

// List returns every committed booking.
func (s *BookingStore) List(ctx context.Context) ([]models.Booking, error) {
	release, err := s.locker.Acquire(ctx, s.resolver.CanonicalPath())
	if err != nil {
		return nil, err
	}
	defer release()

	bookings, _, err := s.load()
	return bookings, err
}

// Append commits one booking. The admit callback runs inside the critical
// section with the freshly loaded table, so a conflict check made there
// cannot race with a concurrent Append: exactly one of two competing
// commits for the same (date, slot) observes the other.
func (s *BookingStore) Append(ctx context.Context, b *models.Booking, admit func(existing []models.Booking) error) error {
	release, err := s.locker.Acquire(ctx, s.resolver.CanonicalPath())
	if err != nil {
		return err
	}
	defer release()

	existing, unparsed, err := s.load()
	if err != nil {
		return err
	}
	if admit != nil {
		if err := admit(existing); err != nil {
			return err
		}
	}

	rows := make([][]any, 0, len(existing)+len(unparsed)+1)
	for i := range existing {
		rows = append(rows, encodeBooking(&existing[i]))
	}
	// Rows that no longer decode are still someone's data: carry them
	// through the rewrite verbatim instead of silently erasing them.
	for _, raw := range unparsed {
		rows = append(rows, rawRow(raw))
	}
	rows = append(rows, encodeBooking(b))

	if err := writeTable(s.resolver.CanonicalPath(), BookingSchema, rows); err != nil {
		return fmt.Errorf("persist bookings: %v: %w", err, ErrStorageUnavailable)
	}
	return nil
}

// load decodes the table. Rows that fail to decode are excluded from the
// booking list but returned raw, so a rewrite can preserve them on disk.
func (s *BookingStore) load() ([]models.Booking, [][]string, error) {
	path, err := s.resolver.Resolve()
	if err != nil {
		return nil, nil, err
	}
	_, rows, err := readTable(path)
	if err != nil {
		return nil, nil, fmt.Errorf("load bookings: %v: %w", err, ErrStorageUnavailable)
	}

	bookings := make([]models.Booking, 0, len(rows))
	var unparsed [][]string
	for i, row := range rows {
		b, err := decodeBooking(row)
		if err != nil {
			// A hand-edited row that no longer decodes cannot block the
			// rest of the table.
			s.logger.Warn().Int("row", i+2).Err(err).Msg("undecodable booking row")
			unparsed = append(unparsed, row)
			continue
		}
		bookings = append(bookings, b)
	}
	return bookings, unparsed, nil
}

func rawRow(row []string) []any {
	cells := make([]any, len(row))
	for i, cell := range row {
		cells[i] = cell
	}
	return cells
}

func encodeBooking(b *models.Booking) []any {
	return []any{
		b.DateString(),
		b.DriverName,
		b.VehicleType,
		b.Slot,
		b.ProviderName,
		b.Phone,
		b.OwnerID,
		b.WeightKg,
		b.BaleCount,
	}
}

func decodeBooking(row []string) (models.Booking, error) {
	date, err := models.ParseDate(strings.TrimSpace(row[0]))
	if err != nil {
		return models.Booking{}, fmt.Errorf("fecha %q: %w", row[0], err)
	}
	slot, err := cellInt(row[3])
	if err != nil {
		return models.Booking{}, fmt.Errorf("cupo %q: %w", row[3], err)
	}
	weight, err := cellInt(row[7])
	if err != nil {
		return models.Booking{}, fmt.Errorf("kilos %q: %w", row[7], err)
	}
	bales, err := cellInt(row[8])
	if err != nil {
		return models.Booking{}, fmt.Errorf("pacas %q: %w", row[8], err)
	}
	return models.Booking{
		Date:         date,
		DriverName:   row[1],
		VehicleType:  row[2],
		Slot:         slot,
		ProviderName: row[4],
		Phone:        cellText(row[5]),
		OwnerID:      cellText(row[6]),
		WeightKg:     weight,
		BaleCount:    bales,
	}, nil
}

// cellText trims a cell that may have round-tripped through a numeric
// Excel type, dropping a spurious ".0" suffix.
func cellText(s string) string {
	return strings.TrimSuffix(strings.TrimSpace(s), ".0")
}

func cellInt(s string) (int, error) {
	return strconv.Atoi(cellText(s))
}
