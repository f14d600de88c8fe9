package store

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mediandina/SGC/internal/models"
)

// AccountStore owns all reads and writes of the provider account table.
type AccountStore struct {
	resolver *Resolver
	locker   *Locker
	logger   zerolog.Logger
}

// NewAccountStore creates a store over the given resolver and locker.
func NewAccountStore(resolver *Resolver, locker *Locker, logger zerolog.Logger) *AccountStore {
	return &AccountStore{
		resolver: resolver,
		locker:   locker,
		logger:   logger.With().Str("component", "account_store").Logger(),
	}
}

// FindByPhone returns the account registered under the normalized phone,
// or nil when no such account exists.
func (s *AccountStore) FindByPhone(ctx context.Context, phone string) (*models.Account, error) {
	release, err := s.locker.Acquire(ctx, s.resolver.CanonicalPath())
	if err != nil {
		return nil, err
	}
	defer release()

	accounts, err := s.load()
	if err != nil {
		return nil, err
	}
	for i := range accounts {
		if accounts[i].Phone == phone {
			return &accounts[i], nil
		}
	}
	return nil, nil
}

// Append commits one account. The admit callback runs inside the critical
// section, which is what prevents two concurrent registrations of the
// same phone from both passing the duplicate check.
func (s *AccountStore) Append(ctx context.Context, a *models.Account, admit func(existing []models.Account) error) error {
	release, err := s.locker.Acquire(ctx, s.resolver.CanonicalPath())
	if err != nil {
		return err
	}
	defer release()

	existing, err := s.load()
	if err != nil {
		return err
	}
	if admit != nil {
		if err := admit(existing); err != nil {
			return err
		}
	}

	rows := make([][]any, 0, len(existing)+1)
	for i := range existing {
		rows = append(rows, encodeAccount(&existing[i]))
	}
	rows = append(rows, encodeAccount(a))

	if err := writeTable(s.resolver.CanonicalPath(), AccountSchema, rows); err != nil {
		return fmt.Errorf("persist accounts: %v: %w", err, ErrStorageUnavailable)
	}
	return nil
}

func (s *AccountStore) load() ([]models.Account, error) {
	path, err := s.resolver.Resolve()
	if err != nil {
		return nil, err
	}
	_, rows, err := readTable(path)
	if err != nil {
		return nil, fmt.Errorf("load accounts: %v: %w", err, ErrStorageUnavailable)
	}

	accounts := make([]models.Account, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, models.Account{
			Name:         row[0],
			Phone:        cellText(row[1]),
			ProviderName: row[2],
			PasswordHash: row[3],
		})
	}
	return accounts, nil
}

func encodeAccount(a *models.Account) []any {
	return []any{a.Name, a.Phone, a.ProviderName, a.PasswordHash}
}
