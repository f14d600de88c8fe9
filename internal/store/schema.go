package store

// Column describes one column of a persisted table.
type Column struct {
	Title string
	// Text marks columns that must be stored with the Excel text number
	// format. Phone-bearing columns are text so a leading zero or a
	// float round-trip can never corrupt the digits.
	Text bool
}

// Schema is the typed description of a table file's layout. Candidate
// files qualify as a store only when their header row matches exactly.
type Schema struct {
	Sheet   string
	Columns []Column
}

// BookingSchema describes the bookings workbook. The Placa column holds
// the owner identity (the session phone) and is therefore text.
var BookingSchema = Schema{
	Sheet: "Sheet1",
	Columns: []Column{
		{Title: "Fecha"},
		{Title: "Nombre del conductor"},
		{Title: "Tipo de vehículo"},
		{Title: "Cupo"},
		{Title: "Proveedor"},
		{Title: "Telefono", Text: true},
		{Title: "Placa", Text: true},
		{Title: "Kilos aproximados"},
		{Title: "Pacas"},
	},
}

// AccountSchema describes the accounts workbook.
var AccountSchema = Schema{
	Sheet: "Sheet1",
	Columns: []Column{
		{Title: "Nombre"},
		{Title: "Telefono", Text: true},
		{Title: "Proveedor"},
		{Title: "Password"},
	},
}

// Titles returns the column titles in order.
func (s Schema) Titles() []string {
	titles := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		titles[i] = c.Title
	}
	return titles
}

// Matches reports whether a header row is exactly this schema: same
// column count, same titles, same order.
func (s Schema) Matches(header []string) bool {
	if len(header) != len(s.Columns) {
		return false
	}
	for i, c := range s.Columns {
		if header[i] != c.Title {
			return false
		}
	}
	return true
}
