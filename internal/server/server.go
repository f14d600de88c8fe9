// Package server exposes the reservation system over HTTP. It is the
// outer boundary: it decodes form fields, resolves sessions and maps
// structured outcomes to status codes. No business rule lives here.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/mediandina/SGC/internal/account"
	"github.com/mediandina/SGC/internal/booking"
	"github.com/mediandina/SGC/internal/models"
	"github.com/mediandina/SGC/internal/session"
	"github.com/mediandina/SGC/internal/store"
	"github.com/mediandina/SGC/internal/validate"
)

// Server is the SGC HTTP server.
type Server struct {
	accounts *account.Service
	bookings *booking.Service
	sessions *session.Manager
	limiter  *credentialLimiter
	logger   zerolog.Logger
}

// New creates the HTTP server over the core services.
func New(accounts *account.Service, bookings *booking.Service, sessions *session.Manager, loginPerMinute, burst int, logger zerolog.Logger) *Server {
	return &Server{
		accounts: accounts,
		bookings: bookings,
		sessions: sessions,
		limiter:  newCredentialLimiter(loginPerMinute, burst),
		logger:   logger.With().Str("component", "http").Logger(),
	}
}

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(noCache)
	r.Use(s.withSession)

	r.Post("/registro", s.limit(s.handleRegister))
	r.Post("/login", s.limit(s.handleLogin))
	r.Post("/logout", s.handleLogout)
	r.Get("/cupos_ocupados", s.handleOccupied)
	r.Post("/guardar", s.handleReserve)

	return r
}

type errorBody struct {
	Code    string `json:"error"`
	Message string `json:"mensaje"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Code: "solicitud_invalida", Message: "Solicitud inválida"})
		return
	}

	token, err := s.accounts.Register(r.Context(),
		r.PostFormValue("nombre"),
		r.PostFormValue("telefono"),
		r.PostFormValue("proveedor"),
		r.PostFormValue("password"),
	)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	setSessionCookie(w, token)
	writeJSON(w, http.StatusCreated, map[string]bool{"ok": true})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Code: "solicitud_invalida", Message: "Solicitud inválida"})
		return
	}

	token, err := s.accounts.Login(r.Context(), r.PostFormValue("telefono"), r.PostFormValue("password"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := sessionToken(r); token != "" {
		if err := s.accounts.Logout(r.Context(), token); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleOccupied reports the slot numbers already taken for a date. The
// answer is advisory for graying out a client's slot picker; the commit
// path re-checks conflicts authoritatively.
func (s *Server) handleOccupied(w http.ResponseWriter, r *http.Request) {
	empty := map[string][]int{"ocupadas": {}}

	if owner(r) == "" {
		writeJSON(w, http.StatusOK, empty)
		return
	}

	fecha := r.URL.Query().Get("fecha")
	date, err := models.ParseDate(fecha)
	if err != nil {
		writeJSON(w, http.StatusOK, empty)
		return
	}

	slots, err := s.bookings.OccupiedSlots(r.Context(), date)
	if err != nil {
		// Advisory endpoint: degrade to "nothing taken" rather than fail.
		s.logger.Warn().Err(err).Str("fecha", fecha).Msg("occupied slots query failed")
		writeJSON(w, http.StatusOK, empty)
		return
	}
	if slots == nil {
		slots = []int{}
	}
	writeJSON(w, http.StatusOK, map[string][]int{"ocupadas": slots})
}

func (s *Server) handleReserve(w http.ResponseWriter, r *http.Request) {
	ownerID := owner(r)
	if ownerID == "" {
		s.writeError(w, r, session.ErrUnauthenticated)
		return
	}

	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Code: "solicitud_invalida", Message: "Solicitud inválida"})
		return
	}

	form := validate.BookingForm{
		Date:         r.PostFormValue("fecha"),
		Slot:         r.PostFormValue("cupo"),
		DriverName:   r.PostFormValue("nombre"),
		VehicleType:  r.PostFormValue("tipo"),
		ProviderName: r.PostFormValue("proveedor"),
		Phone:        r.PostFormValue("telefono"),
		Plate:        r.PostFormValue("placa"),
		WeightKg:     r.PostFormValue("kilos"),
		BaleCount:    r.PostFormValue("pacas"),
	}

	input, fieldErrs := validate.BookingRequest(form, ownerID)
	if len(fieldErrs) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":   "datos_invalidos",
			"mensaje": "Datos inválidos enviados al sistema",
			"errores": fieldErrs,
		})
		return
	}

	committed, err := s.bookings.Reserve(r.Context(), input, ownerID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, committed)
}

// writeError maps structured outcomes to HTTP statuses. Unexpected
// errors are logged with detail and surfaced as a generic failure.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var rejection *booking.RejectionError
	var identity *account.IdentityError

	switch {
	case errors.Is(err, session.ErrUnauthenticated):
		writeJSON(w, http.StatusUnauthorized, errorBody{Code: "no_autenticado", Message: "Sesión no iniciada"})

	case errors.As(err, &rejection):
		status := http.StatusBadRequest
		if rejection == booking.ErrSlotTaken {
			status = http.StatusConflict
		}
		writeJSON(w, status, errorBody{Code: rejection.Code, Message: rejection.Message})

	case errors.As(err, &identity):
		status := http.StatusConflict
		switch identity {
		case account.ErrAccountNotFound:
			status = http.StatusNotFound
		case account.ErrInvalidCredentials:
			status = http.StatusUnauthorized
		}
		writeJSON(w, status, errorBody{Code: identity.Code, Message: identity.Message})

	case store.IsUnavailable(err):
		writeJSON(w, http.StatusServiceUnavailable, errorBody{
			Code:    "archivo_bloqueado",
			Message: "El sistema se encuentra actualmente ocupado. Por favor, espere un momento.",
		})

	default:
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("unexpected error")
		writeJSON(w, http.StatusInternalServerError, errorBody{
			Code:    "error_interno",
			Message: "Ocurrió un error inesperado. Intente más tarde.",
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}
