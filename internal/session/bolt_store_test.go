package session

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	bolt "go.etcd.io/bbolt"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func TestBoltStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.db")

	store, err := openBolt(path, Options{})
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	if tok, err := store.Token(); err != nil || tok != "" {
		t.Fatalf("expected empty token, got %q err=%v", tok, err)
	}
	if err := store.SetToken("abc.def"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := openBolt(path, Options{})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	tok, err := reopened.Token()
	if err != nil || tok != "abc.def" {
		t.Fatalf("expected persisted token, got %q err=%v", tok, err)
	}
	if !Present(reopened) {
		t.Fatalf("Present should report true")
	}

	if err := reopened.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if Present(reopened) {
		t.Fatalf("Present should report false after Clear")
	}
}

func TestBoltStoreExpiresTokens(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	storeRaw, err := openBolt(filepath.Join(t.TempDir(), "session.db"), Options{
		TTL: time.Minute,
		Now: clock.Now,
	})
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	store := storeRaw.(*boltStore)
	defer store.Close()

	if err := store.SetToken("tok"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}
	clock.now = clock.now.Add(30 * time.Second)
	if tok, _ := store.Token(); tok != "tok" {
		t.Fatalf("token should still be valid, got %q", tok)
	}

	clock.now = clock.now.Add(31 * time.Second)
	tok, err := store.Token()
	if err != nil {
		t.Fatalf("Token after expiry: %v", err)
	}
	if tok != "" {
		t.Fatalf("expected token to expire, got %q", tok)
	}
}

func TestBoltTokenReadDoesNotDeleteExpired(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	path := filepath.Join(t.TempDir(), "session.db")
	opts := Options{TTL: time.Minute, Now: clock.Now}

	store, err := openBolt(path, opts)
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	if err := store.SetToken("tok"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}
	clock.now = clock.now.Add(2 * time.Minute)
	if Present(store) {
		t.Fatalf("expired token should read as absent")
	}

	raw := store.(*boltStore)
	var stored []byte
	if err := raw.db.View(func(tx *bolt.Tx) error {
		stored = append(stored, tx.Bucket([]byte(sessionBucket)).Get([]byte(tokenKey))...)
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
	if len(stored) == 0 {
		t.Fatalf("reading the token must not delete it")
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := openBolt(path, opts)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if err := reopened.(*boltStore).db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket([]byte(sessionBucket)).Get([]byte(tokenKey)); v != nil {
			t.Fatalf("expired token should be pruned on open")
		}
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestSetEmptyTokenClears(t *testing.T) {
	store, err := NewStore(TypeBolt, filepath.Join(t.TempDir(), "s.db"), Options{})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer store.Close()

	_ = store.SetToken("x")
	if err := store.SetToken("   "); err != nil {
		t.Fatalf("SetToken blank: %v", err)
	}
	if Present(store) {
		t.Fatalf("blank token should clear the store")
	}
}

func TestEncodeDecodeToken(t *testing.T) {
	exp := time.Unix(1_800_000_000, 0)
	gotExp, tok, ok := decodeToken(encodeToken(exp, "t0k"))
	if !ok || tok != "t0k" || !gotExp.Equal(exp) {
		t.Fatalf("round trip failed: %v %q %v", gotExp, tok, ok)
	}

	gotExp, _, ok = decodeToken(encodeToken(time.Time{}, "t"))
	if !ok || !gotExp.IsZero() {
		t.Fatalf("zero expiry should decode as none, got %v", gotExp)
	}

	if _, _, ok := decodeToken([]byte{1, 2, 3}); ok {
		t.Fatalf("short value should not decode")
	}
}

func TestNewStoreTypes(t *testing.T) {
	store, err := NewStore("none", "", Options{})
	if err != nil {
		t.Fatalf("NewStore none: %v", err)
	}
	if err := store.SetToken("x"); !errors.Is(err, ErrDisabled) {
		t.Fatalf("noop store SetToken = %v want ErrDisabled", err)
	}
	if Present(store) {
		t.Fatalf("noop store never holds a token")
	}

	if _, err := NewStore("bbolt", " ", Options{}); err == nil {
		t.Fatalf("expected error for bbolt without path")
	}
	if _, err := NewStore("redis", "", Options{}); err == nil {
		t.Fatalf("expected error for unknown type")
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Unix(100, 0)}
	store := NewMemoryStore(Options{TTL: time.Second, Now: clock.Now})

	if err := store.SetToken("mem"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}
	if !Present(store) {
		t.Fatalf("expected token present")
	}
	clock.now = clock.now.Add(2 * time.Second)
	if Present(store) {
		t.Fatalf("expected token to expire")
	}
}

type failingSource struct{}

func (failingSource) Token() (string, error) { return "tok", errors.New("disk gone") }

func TestPresentTreatsErrorsAsAbsent(t *testing.T) {
	if Present(failingSource{}) {
		t.Fatalf("read error should count as absent")
	}
	if Present(nil) {
		t.Fatalf("nil source should count as absent")
	}
}

func TestInspectJWT(t *testing.T) {
	exp := time.Unix(1_900_000_000, 0)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"id":  "64f0",
		"exp": exp.Unix(),
	}).SignedString([]byte("irrelevant"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	info, ok := Inspect(signed)
	if !ok {
		t.Fatalf("expected JWT to be inspected")
	}
	if info.Subject != "user-1" || info.UserID != "64f0" {
		t.Fatalf("unexpected info %+v", info)
	}
	if info.ExpiresAt == nil || !info.ExpiresAt.Equal(exp) {
		t.Fatalf("ExpiresAt = %v", info.ExpiresAt)
	}
	if info.Expired(exp.Add(-time.Second)) || !info.Expired(exp) {
		t.Fatalf("Expired boundary mismatch")
	}

	if _, ok := Inspect("opaque-token"); ok {
		t.Fatalf("opaque token should not inspect")
	}
}
