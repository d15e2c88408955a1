package session

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	sessionBucket    = "session"
	tokenKey         = "token"
	expiryValueBytes = 8
)

// boltStore implements a Store backed by BoltDB.
// Stored value layout: 8-byte big-endian unix expiry (0 = none) followed by the token.
type boltStore struct {
	db   *bolt.DB
	opts Options
}

// openBolt initializes a BoltDB-backed Store.
func openBolt(path string, opts Options) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	opts = normalizeOptions(opts)
	if err := db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(sessionBucket))
		if err != nil {
			return err
		}
		return pruneExpired(bucket, opts.Now())
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	return &boltStore{db: db, opts: opts}, nil
}

// pruneExpired drops a stored token that is expired or unreadable.
func pruneExpired(bucket *bolt.Bucket, now time.Time) error {
	value := bucket.Get([]byte(tokenKey))
	if value == nil {
		return nil
	}
	expiry, _, ok := decodeToken(value)
	if ok && !expired(expiry, now) {
		return nil
	}
	return bucket.Delete([]byte(tokenKey))
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Token returns the stored token. An expired token reads as absent but stays
// on disk until the next open, SetToken or Clear.
func (b *boltStore) Token() (string, error) {
	if b == nil || b.db == nil {
		return "", nil
	}

	var token string
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(sessionBucket))
		if bucket == nil {
			return fmt.Errorf("session bucket missing")
		}

		value := bucket.Get([]byte(tokenKey))
		if value == nil {
			return nil
		}

		expiry, stored, ok := decodeToken(value)
		if !ok || expired(expiry, b.opts.Now()) {
			return nil
		}

		token = stored
		return nil
	})
	return token, err
}

// SetToken persists token, replacing any previous one. An empty token clears.
func (b *boltStore) SetToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return b.Clear()
	}
	if b == nil || b.db == nil {
		return ErrDisabled
	}

	value := encodeToken(expiryFor(b.opts.Now(), b.opts.TTL), token)
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(sessionBucket))
		if bucket == nil {
			return fmt.Errorf("session bucket missing")
		}
		return bucket.Put([]byte(tokenKey), value)
	})
}

// Clear removes the stored token.
func (b *boltStore) Clear() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(sessionBucket))
		if bucket == nil {
			return fmt.Errorf("session bucket missing")
		}
		return bucket.Delete([]byte(tokenKey))
	})
}

func encodeToken(expiry time.Time, token string) []byte {
	buf := make([]byte, expiryValueBytes+len(token))
	var unix int64
	if !expiry.IsZero() {
		unix = expiry.Unix()
	}
	binary.BigEndian.PutUint64(buf, uint64(unix))
	copy(buf[expiryValueBytes:], token)
	return buf
}

// decodeToken splits a stored value into expiry and token.
func decodeToken(value []byte) (time.Time, string, bool) {
	if len(value) <= expiryValueBytes {
		return time.Time{}, "", false
	}
	unix := int64(binary.BigEndian.Uint64(value[:expiryValueBytes]))
	if unix < 0 {
		return time.Time{}, "", false
	}
	var expiry time.Time
	if unix > 0 {
		expiry = time.Unix(unix, 0)
	}
	return expiry, string(value[expiryValueBytes:]), true
}
