package booking

// RejectionError is a terminal business-rule rejection. It carries a
// stable machine code and the message shown to the provider. Retrying
// the same input can never succeed; this is deliberately distinct from
// transient storage failures.
type RejectionError struct {
	Code    string
	Message string
}

func (e *RejectionError) Error() string {
	return e.Message
}

var (
	// ErrPastDate rejects reservations for dates before today.
	ErrPastDate = &RejectionError{
		Code:    "fecha_pasada",
		Message: "No se pueden registrar cupos para fechas pasadas",
	}

	// ErrClosedDay rejects reservations on Sundays.
	ErrClosedDay = &RejectionError{
		Code:    "dia_cerrado",
		Message: "No se pueden registrar cupos los domingos",
	}

	// ErrSlotOutOfRange rejects slot numbers outside the weekday capacity.
	ErrSlotOutOfRange = &RejectionError{
		Code:    "cupo_fuera_de_rango",
		Message: "El número de cupo no es válido para ese día",
	}

	// ErrSlotTaken rejects a (date, slot) pair that is already committed.
	ErrSlotTaken = &RejectionError{
		Code:    "cupo_ocupado",
		Message: "El cupo seleccionado ya está ocupado",
	}
)

// IsRejection reports whether err is a business-rule rejection.
func IsRejection(err error) bool {
	_, ok := err.(*RejectionError)
	return ok
}
