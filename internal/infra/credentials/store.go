package credentials

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"autopost/internal/infra"
	"autopost/internal/sqlinline"
)

// Provider names under which secrets are stored.
const (
	ProviderStability = "stability"
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
	ProviderInstagram = "instagram"
	ProviderThreads   = "threads"
)

// KnownProviders lists the providers the service reads secrets for.
var KnownProviders = []string{
	ProviderStability,
	ProviderOpenAI,
	ProviderGemini,
	ProviderInstagram,
	ProviderThreads,
}

// IsKnownProvider reports whether name is one of KnownProviders.
func IsKnownProvider(name string) bool {
	for _, p := range KnownProviders {
		if p == name {
			return true
		}
	}
	return false
}

// Entry describes a stored secret without exposing it.
type Entry struct {
	Provider  string
	UpdatedAt time.Time
}

// Store reads and writes provider secrets in Postgres.
type Store struct {
	sql infra.SQLExecutor
}

func NewStore(sql infra.SQLExecutor) *Store {
	return &Store{sql: sql}
}

// Token returns the stored secret for provider, or "" when none is stored.
func (s *Store) Token(ctx context.Context, provider string) (string, error) {
	row := s.sql.QueryRow(ctx, sqlinline.QSelectProviderCredential, provider)
	var token string
	if err := row.Scan(&token); err != nil {
		if infra.IsNoRows(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(token), nil
}

// Resolve prefers the configured value and falls back to the stored secret.
func (s *Store) Resolve(ctx context.Context, provider, configured string) (string, error) {
	if v := strings.TrimSpace(configured); v != "" {
		return v, nil
	}
	if s == nil {
		return "", nil
	}
	return s.Token(ctx, provider)
}

// Set stores secret for provider, replacing any previous value.
func (s *Store) Set(ctx context.Context, provider, secret string, props map[string]any) error {
	provider = strings.ToLower(strings.TrimSpace(provider))
	secret = strings.TrimSpace(secret)
	if !IsKnownProvider(provider) {
		return fmt.Errorf("unknown provider %q", provider)
	}
	if secret == "" {
		return fmt.Errorf("%s secret is required", provider)
	}
	if props == nil {
		props = map[string]any{}
	}
	raw, err := json.Marshal(props)
	if err != nil {
		return err
	}
	_, err = s.sql.Exec(ctx, sqlinline.QUpsertProviderCredential, provider, secret, raw)
	return err
}

// Delete removes the stored secret for provider.
func (s *Store) Delete(ctx context.Context, provider string) error {
	_, err := s.sql.Exec(ctx, sqlinline.QDeleteProviderCredential, provider)
	return err
}

// List returns the providers that have a stored secret.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.sql.Query(ctx, sqlinline.QListProviderCredentials)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Provider, &e.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
