// Package account manages provider identity: registration and login over
// the account table, sessions as the trust anchor for booking ownership.
package account

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/mediandina/SGC/internal/events"
	"github.com/mediandina/SGC/internal/metrics"
	"github.com/mediandina/SGC/internal/models"
	"github.com/mediandina/SGC/internal/session"
	"github.com/mediandina/SGC/internal/store"
)

// Service implements the account registry.
type Service struct {
	accounts *store.AccountStore
	sessions *session.Manager
	bus      *events.Bus
	logger   zerolog.Logger
}

// NewService creates the registry over an account store and session manager.
func NewService(accounts *store.AccountStore, sessions *session.Manager, bus *events.Bus, logger zerolog.Logger) *Service {
	return &Service{
		accounts: accounts,
		sessions: sessions,
		bus:      bus,
		logger:   logger.With().Str("component", "account").Logger(),
	}
}

// Register creates an account keyed by the normalized phone and
// establishes a session for it. The duplicate check runs inside the
// store's critical section, so two concurrent registrations of the same
// phone cannot both commit. The password is stored only as a bcrypt hash.
func (s *Service) Register(ctx context.Context, name, phone, providerName, password string) (string, error) {
	normalized := models.NormalizePhone(phone)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	acct := &models.Account{
		Name:         name,
		Phone:        normalized,
		ProviderName: providerName,
		PasswordHash: string(hash),
	}

	err = s.accounts.Append(ctx, acct, func(existing []models.Account) error {
		for i := range existing {
			if existing[i].Phone == normalized {
				return ErrPhoneAlreadyRegistered
			}
		}
		return nil
	})
	if err != nil {
		if IsIdentityError(err) {
			metrics.IncRegistration("duplicate")
		} else {
			metrics.IncRegistration("storage_error")
		}
		return "", err
	}

	token, err := s.sessions.Create(ctx, normalized)
	if err != nil {
		return "", err
	}

	metrics.IncRegistration("registered")
	s.logger.Info().Str("telefono", normalized).Msg("provider registered")
	if s.bus != nil {
		s.bus.Publish(events.AccountRegistered, acct)
	}
	return token, nil
}

// Login verifies the credential pair and establishes a session. An
// unknown phone and a wrong password are reported distinctly, but
// nothing beyond that split is ever revealed.
func (s *Service) Login(ctx context.Context, phone, password string) (string, error) {
	normalized := models.NormalizePhone(phone)

	acct, err := s.accounts.FindByPhone(ctx, normalized)
	if err != nil {
		metrics.IncLogin("storage_error")
		return "", err
	}
	if acct == nil {
		metrics.IncLogin("not_found")
		return "", ErrAccountNotFound
	}

	if bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)) != nil {
		metrics.IncLogin("bad_password")
		return "", ErrInvalidCredentials
	}

	token, err := s.sessions.Create(ctx, normalized)
	if err != nil {
		return "", err
	}

	metrics.IncLogin("ok")
	s.logger.Info().Str("telefono", normalized).Msg("provider logged in")
	return token, nil
}

// Logout invalidates the session token.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.sessions.Destroy(ctx, token)
}
