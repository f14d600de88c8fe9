// Package validate is the admission gate for booking submissions. It
// checks every inbound field before any store access and reports all
// problems at once rather than failing on the first.
package validate

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mediandina/SGC/internal/models"
)

const maxNameLength = 30

var digitsOnly = regexp.MustCompile(`^\d+$`)

// FieldError is one human-readable validation failure.
type FieldError struct {
	Field   string `json:"campo"`
	Message string `json:"mensaje"`
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// BookingForm carries the raw decoded strings of a booking submission.
// The transport layer fills it; nothing here has been parsed yet.
type BookingForm struct {
	Date         string
	Slot         string
	DriverName   string
	VehicleType  string
	ProviderName string
	Phone        string
	Plate        string
	WeightKg     string
	BaleCount    string
}

// BookingInput is the strict typed result of a successful validation.
// The allocation engine only ever sees this, never raw strings.
type BookingInput struct {
	Date         time.Time
	Slot         int
	DriverName   string
	VehicleType  string
	ProviderName string
	Phone        string
	Plate        string
	WeightKg     int
	BaleCount    int
}

// BookingRequest validates a submission against the authenticated owner
// phone. It returns the typed input and an empty slice when admissible,
// or nil and the ordered list of every field-level failure. It has no
// side effects and touches no store.
func BookingRequest(form BookingForm, ownerPhone string) (*BookingInput, []FieldError) {
	var errs []FieldError
	input := BookingInput{
		DriverName:   strings.TrimSpace(form.DriverName),
		VehicleType:  strings.TrimSpace(form.VehicleType),
		ProviderName: strings.TrimSpace(form.ProviderName),
		Plate:        strings.TrimSpace(form.Plate),
	}

	// Name length is in characters, not bytes: accented names count the
	// same as plain ASCII ones.
	if input.DriverName == "" || utf8.RuneCountInString(input.DriverName) > maxNameLength {
		errs = append(errs, FieldError{Field: "nombre", Message: "Nombre inválido"})
	}
	if input.ProviderName == "" || utf8.RuneCountInString(input.ProviderName) > maxNameLength {
		errs = append(errs, FieldError{Field: "proveedor", Message: "Proveedor inválido"})
	}

	date, err := models.ParseDate(strings.TrimSpace(form.Date))
	if err != nil {
		errs = append(errs, FieldError{Field: "fecha", Message: "Fecha inválida"})
	} else {
		input.Date = date
	}

	slotRaw := strings.TrimSpace(form.Slot)
	if !digitsOnly.MatchString(slotRaw) {
		errs = append(errs, FieldError{Field: "cupo", Message: "Cupo inválido"})
	} else if slot, err := strconv.Atoi(slotRaw); err != nil || slot < 1 || slot > models.MaxSlotNumber {
		// Coarse sanity bound only; the weekday capacity rule is the
		// allocation engine's concern.
		errs = append(errs, FieldError{Field: "cupo", Message: "Cupo fuera de rango"})
	} else {
		input.Slot = slot
	}

	phone := models.NormalizePhone(form.Phone)
	if !models.IsValidPhone(phone) {
		errs = append(errs, FieldError{Field: "telefono", Message: "Teléfono inválido"})
	} else {
		input.Phone = phone
	}

	// The authenticated identity itself must already be well-formed.
	if !models.IsValidPhone(ownerPhone) {
		errs = append(errs, FieldError{Field: "sesion", Message: "Teléfono inválido"})
	}

	if weight, ok := intField(form.WeightKg); !ok {
		errs = append(errs, FieldError{Field: "kilos", Message: "Kilos inválidos"})
	} else if weight < 1 || weight > 50000 {
		errs = append(errs, FieldError{Field: "kilos", Message: "Kilos fuera de rango"})
	} else {
		input.WeightKg = weight
	}

	if bales, ok := intField(form.BaleCount); !ok {
		errs = append(errs, FieldError{Field: "pacas", Message: "Pacas inválidas"})
	} else if bales < 1 || bales > 80 {
		errs = append(errs, FieldError{Field: "pacas", Message: "Pacas fuera de rango"})
	} else {
		input.BaleCount = bales
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return &input, nil
}

func intField(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return n, true
}
