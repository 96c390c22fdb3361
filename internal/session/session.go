// Package session holds the client-side proof of login: a bearer
// credential and a role, persisted in a Storage and obfuscated by a Codec.
//
// A Session is loaded once per navigation (or per command) and answers
// admission questions from that snapshot without any network call. A stored
// value that fails to decode is treated exactly like a missing one.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/erazemk/zaloga/internal/model"
)

// ErrEmptyCredential is returned when establishing a session without a
// credential.
var ErrEmptyCredential = errors.New("session: empty credential")

// Session is the loaded session state bound to its storage.
type Session struct {
	storage Storage
	codec   Codec

	credential string
	role       string
}

// Load reads and decodes the persisted session. It never fails: storage
// and decode errors are logged and degrade to a logged-out session.
func Load(ctx context.Context, storage Storage, codec Codec) *Session {
	s := &Session{storage: storage, codec: codec}

	entries, err := storage.Load(ctx, KeyCredential, KeyRole)
	if err != nil {
		slog.Warn("session storage unreadable, treating as logged out", "error", err)
		return s
	}

	s.credential = s.decode(KeyCredential, entries[KeyCredential])
	if s.credential == "" {
		return s
	}
	s.role = s.decode(KeyRole, entries[KeyRole])
	return s
}

func (s *Session) decode(key, raw string) string {
	if raw == "" {
		return ""
	}
	v, err := s.codec.Decode(key, raw)
	if err != nil {
		slog.Warn("discarding undecodable session entry", "key", key, "error", err)
		return ""
	}
	return v
}

// IsAuthenticated reports whether a non-empty credential is stored.
func (s *Session) IsAuthenticated() bool {
	return s != nil && s.credential != ""
}

// IsAdmin reports whether the session is authenticated with the ADMIN role.
func (s *Session) IsAdmin() bool {
	return s.IsAuthenticated() && s.role == model.RoleAdmin
}

// Credential returns the bearer credential, or "" when logged out.
func (s *Session) Credential() string {
	if s == nil {
		return ""
	}
	return s.credential
}

// Role returns the stored role, or "" when logged out or unset.
func (s *Session) Role() string {
	if !s.IsAuthenticated() {
		return ""
	}
	return s.role
}

// Establish persists credential and role together. Both values are encoded
// before anything is written and the storage writes them in one Save, so a
// failure leaves the previous session untouched. An empty role reads back
// as authenticated but not admin.
func (s *Session) Establish(ctx context.Context, credential, role string) error {
	if credential == "" {
		return ErrEmptyCredential
	}

	encCredential, err := s.codec.Encode(KeyCredential, credential)
	if err != nil {
		return fmt.Errorf("establishing session: %w", err)
	}
	encRole, err := s.codec.Encode(KeyRole, role)
	if err != nil {
		return fmt.Errorf("establishing session: %w", err)
	}

	err = s.storage.Save(ctx, map[string]string{
		KeyCredential: encCredential,
		KeyRole:       encRole,
	})
	if err != nil {
		return fmt.Errorf("establishing session: %w", err)
	}

	s.credential = credential
	s.role = role
	return nil
}

// Clear removes both entries. It is safe to call when already logged out.
// The in-memory state is cleared even if the storage write fails.
func (s *Session) Clear(ctx context.Context) error {
	s.credential = ""
	s.role = ""
	if err := s.storage.Delete(ctx, KeyCredential, KeyRole); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	return nil
}
