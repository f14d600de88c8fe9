package models

import "time"

// DateLayout is the wire and storage format for booking dates.
// Dates carry no time component; they compare as calendar days.
const DateLayout = "2006-01-02"

// Booking represents one reserved loading slot for a calendar date.
// Committed bookings are immutable: there is no edit or cancel path.
type Booking struct {
	Date         time.Time `json:"fecha"`
	DriverName   string    `json:"nombre"`
	VehicleType  string    `json:"tipo"`
	Slot         int       `json:"cupo"`
	ProviderName string    `json:"proveedor"`
	Phone        string    `json:"telefono"`
	Plate        string    `json:"placa,omitempty"`
	WeightKg     int       `json:"kilos"`
	BaleCount    int       `json:"pacas"`

	// OwnerID is the authenticated provider's normalized phone, captured
	// from the session at commit time. It occupies the Placa column on
	// disk; it is never taken from client-supplied fields.
	OwnerID string `json:"-"`
}

// DateString returns the booking date in YYYY-MM-DD form.
func (b *Booking) DateString() string {
	return b.Date.Format(DateLayout)
}

// SameSlot reports whether two bookings claim the same (date, slot) pair.
// Conflict detection is exact-match; there is no fuzzy matching.
func (b *Booking) SameSlot(other *Booking) bool {
	return b.Slot == other.Slot && b.DateString() == other.DateString()
}

// ParseDate parses a YYYY-MM-DD date string.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
