package account

// IdentityError is a terminal identity failure. The message never leaks
// more about a credential pair than "not found" versus "wrong password".
type IdentityError struct {
	Code    string
	Message string
}

func (e *IdentityError) Error() string {
	return e.Message
}

var (
	// ErrPhoneAlreadyRegistered rejects a second registration of the
	// same normalized phone, however the submission was formatted.
	ErrPhoneAlreadyRegistered = &IdentityError{
		Code:    "telefono_registrado",
		Message: "El teléfono ya está registrado",
	}

	// ErrAccountNotFound rejects a login for an unknown phone.
	ErrAccountNotFound = &IdentityError{
		Code:    "usuario_no_encontrado",
		Message: "Usuario no encontrado",
	}

	// ErrInvalidCredentials rejects a login whose password does not verify.
	ErrInvalidCredentials = &IdentityError{
		Code:    "credenciales_invalidas",
		Message: "Contraseña incorrecta",
	}
)

// IsIdentityError reports whether err is a terminal identity failure.
func IsIdentityError(err error) bool {
	_, ok := err.(*IdentityError)
	return ok
}
