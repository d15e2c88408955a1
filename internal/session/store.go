// Package session persists the bearer token shared by the contacts client and
// the route guard.
package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

// TokenSource yields the current bearer token, "" when signed out.
type TokenSource interface {
	Token() (string, error)
}

// Store owns the single process-wide token.
type Store interface {
	TokenSource
	SetToken(token string) error
	Clear() error
	Close() error
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	// TTL bounds how long a written token stays readable. Zero keeps it forever.
	TTL time.Duration
	Now func() time.Time
}

const (
	TypeBolt   = "bbolt"
	TypeMemory = "memory"
	TypeNone   = "none"
)

// ErrDisabled is returned when writing to a store that keeps nothing.
var ErrDisabled = errors.New("token storage is disabled")

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", TypeNone, "disabled":
		return noopStore{}, nil
	case TypeMemory:
		return NewMemoryStore(opts), nil
	case TypeBolt:
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported token store type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.TTL < 0 {
		opts.TTL = 0
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return opts
}

// Present reports whether src currently holds a non-empty token. Read failures
// count as absent.
func Present(src TokenSource) bool {
	if src == nil {
		return false
	}
	token, err := src.Token()
	return err == nil && token != ""
}

func expiryFor(now time.Time, ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return now.Add(ttl)
}

func expired(expiry, now time.Time) bool {
	return !expiry.IsZero() && !expiry.After(now)
}

// memoryStore keeps the token for the lifetime of the process.
type memoryStore struct {
	mu     sync.RWMutex
	token  string
	expiry time.Time
	opts   Options
}

// NewMemoryStore returns an in-process Store.
func NewMemoryStore(opts Options) Store {
	return &memoryStore{opts: normalizeOptions(opts)}
}

func (m *memoryStore) Token() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if expired(m.expiry, m.opts.Now()) {
		return "", nil
	}
	return m.token, nil
}

func (m *memoryStore) SetToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return m.Clear()
	}
	m.mu.Lock()
	m.token = token
	m.expiry = expiryFor(m.opts.Now(), m.opts.TTL)
	m.mu.Unlock()
	return nil
}

func (m *memoryStore) Clear() error {
	m.mu.Lock()
	m.token = ""
	m.expiry = time.Time{}
	m.mu.Unlock()
	return nil
}

func (m *memoryStore) Close() error { return nil }

type noopStore struct{}

func (noopStore) Close() error           { return nil }
func (noopStore) Token() (string, error) { return "", nil }
func (noopStore) SetToken(string) error  { return ErrDisabled }
func (noopStore) Clear() error           { return nil }
