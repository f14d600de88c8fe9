package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sessionPhone = "5559876543"

func validForm() BookingForm {
	return BookingForm{
		Date:         "2024-06-10",
		Slot:         "3",
		DriverName:   "Juan Pérez",
		VehicleType:  "Camión",
		ProviderName: "Fibras del Norte",
		Phone:        "5551234567",
		Plate:        "ABC-123",
		WeightKg:     "12000",
		BaleCount:    "40",
	}
}

func TestBookingRequestValid(t *testing.T) {
	input, errs := BookingRequest(validForm(), sessionPhone)
	require.Empty(t, errs)
	require.NotNil(t, input)

	assert.Equal(t, "2024-06-10", input.Date.Format("2006-01-02"))
	assert.Equal(t, 3, input.Slot)
	assert.Equal(t, "5551234567", input.Phone)
	assert.Equal(t, 12000, input.WeightKg)
	assert.Equal(t, 40, input.BaleCount)
}

func TestBookingRequestNormalizesPhone(t *testing.T) {
	form := validForm()
	form.Phone = "555-123-4567"

	input, errs := BookingRequest(form, sessionPhone)
	require.Empty(t, errs)
	assert.Equal(t, "5551234567", input.Phone)
}

func TestBookingRequestFieldRules(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*BookingForm)
		field   string
		message string
	}{
		{name: "empty driver name", mutate: func(f *BookingForm) { f.DriverName = "  " }, field: "nombre", message: "Nombre inválido"},
		{name: "driver name too long", mutate: func(f *BookingForm) { f.DriverName = strings.Repeat("a", 31) }, field: "nombre", message: "Nombre inválido"},
		{name: "empty provider", mutate: func(f *BookingForm) { f.ProviderName = "" }, field: "proveedor", message: "Proveedor inválido"},
		{name: "provider too long", mutate: func(f *BookingForm) { f.ProviderName = strings.Repeat("p", 31) }, field: "proveedor", message: "Proveedor inválido"},
		{name: "bad date format", mutate: func(f *BookingForm) { f.Date = "06/10/2024" }, field: "fecha", message: "Fecha inválida"},
		{name: "missing date", mutate: func(f *BookingForm) { f.Date = "" }, field: "fecha", message: "Fecha inválida"},
		{name: "slot not numeric", mutate: func(f *BookingForm) { f.Slot = "abc" }, field: "cupo", message: "Cupo inválido"},
		{name: "slot negative", mutate: func(f *BookingForm) { f.Slot = "-1" }, field: "cupo", message: "Cupo inválido"},
		{name: "slot zero", mutate: func(f *BookingForm) { f.Slot = "0" }, field: "cupo", message: "Cupo fuera de rango"},
		{name: "slot above coarse bound", mutate: func(f *BookingForm) { f.Slot = "101" }, field: "cupo", message: "Cupo fuera de rango"},
		{name: "phone too short", mutate: func(f *BookingForm) { f.Phone = "12345" }, field: "telefono", message: "Teléfono inválido"},
		{name: "phone too long", mutate: func(f *BookingForm) { f.Phone = "55512345678" }, field: "telefono", message: "Teléfono inválido"},
		{name: "weight not numeric", mutate: func(f *BookingForm) { f.WeightKg = "mucho" }, field: "kilos", message: "Kilos inválidos"},
		{name: "weight zero", mutate: func(f *BookingForm) { f.WeightKg = "0" }, field: "kilos", message: "Kilos fuera de rango"},
		{name: "weight above max", mutate: func(f *BookingForm) { f.WeightKg = "50001" }, field: "kilos", message: "Kilos fuera de rango"},
		{name: "bales not numeric", mutate: func(f *BookingForm) { f.BaleCount = "" }, field: "pacas", message: "Pacas inválidas"},
		{name: "bales zero", mutate: func(f *BookingForm) { f.BaleCount = "0" }, field: "pacas", message: "Pacas fuera de rango"},
		{name: "bales above max", mutate: func(f *BookingForm) { f.BaleCount = "81" }, field: "pacas", message: "Pacas fuera de rango"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validForm()
			tt.mutate(&form)

			input, errs := BookingRequest(form, sessionPhone)
			assert.Nil(t, input)
			require.Len(t, errs, 1)
			assert.Equal(t, tt.field, errs[0].Field)
			assert.Equal(t, tt.message, errs[0].Message)
		})
	}
}

func TestBookingRequestSessionPhone(t *testing.T) {
	input, errs := BookingRequest(validForm(), "not-a-phone")
	assert.Nil(t, input)
	require.Len(t, errs, 1)
	assert.Equal(t, "sesion", errs[0].Field)
}

func TestBookingRequestAggregatesErrors(t *testing.T) {
	// Every rule is reported at once, not just the first failure.
	form := BookingForm{}
	input, errs := BookingRequest(form, "")
	assert.Nil(t, input)
	assert.Len(t, errs, 8)

	fields := make([]string, len(errs))
	for i, e := range errs {
		fields[i] = e.Field
	}
	assert.Equal(t, []string{"nombre", "proveedor", "fecha", "cupo", "telefono", "sesion", "kilos", "pacas"}, fields)
}

func TestBookingRequestBoundaryValues(t *testing.T) {
	form := validForm()
	form.Slot = "100"
	form.WeightKg = "50000"
	form.BaleCount = "80"

	input, errs := BookingRequest(form, sessionPhone)
	require.Empty(t, errs)
	assert.Equal(t, 100, input.Slot)
	assert.Equal(t, 50000, input.WeightKg)
	assert.Equal(t, 80, input.BaleCount)

	form.Slot = "1"
	form.WeightKg = "1"
	form.BaleCount = "1"
	input, errs = BookingRequest(form, sessionPhone)
	require.Empty(t, errs)
	assert.Equal(t, 1, input.Slot)
}

func TestBookingRequestNameLengthInCharacters(t *testing.T) {
	// 30 accented characters exceed 30 bytes in UTF-8 but are still a
	// valid name; the limit counts characters.
	form := validForm()
	form.DriverName = strings.Repeat("á", 30)
	form.ProviderName = strings.Repeat("ñ", 30)

	input, errs := BookingRequest(form, sessionPhone)
	require.Empty(t, errs)
	assert.Equal(t, strings.Repeat("á", 30), input.DriverName)

	form.DriverName = strings.Repeat("á", 31)
	input, errs = BookingRequest(form, sessionPhone)
	assert.Nil(t, input)
	require.Len(t, errs, 1)
	assert.Equal(t, "nombre", errs[0].Field)
}
