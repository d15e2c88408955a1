package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/Adda-Baaj/contacts-client/internal/app"
	"github.com/Adda-Baaj/contacts-client/internal/router"
	"github.com/Adda-Baaj/contacts-client/pkg/contacts"
)

// fakeCommander records calls made by execute.
type fakeCommander struct {
	navigated string
	created   contacts.NewContact
	updatedID string
	patch     contacts.Patch
	deleted   string
	token     string
	signedOut bool
	listErr   error
}

func (f *fakeCommander) Navigate(path string) (router.Navigation, error) {
	f.navigated = path
	return router.Navigation{Requested: path, Path: router.PathSignIn, Outcome: router.RedirectToSignIn}, nil
}

func (f *fakeCommander) ListContacts(context.Context) ([]contacts.Contact, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return []contacts.Contact{{ID: "1", Name: "A"}}, nil
}

func (f *fakeCommander) CreateContact(_ context.Context, in contacts.NewContact) (*contacts.Contact, error) {
	f.created = in
	return &contacts.Contact{ID: "new", Name: in.Name}, nil
}

func (f *fakeCommander) UpdateContact(_ context.Context, id string, patch contacts.Patch) (*contacts.Contact, error) {
	f.updatedID = id
	f.patch = patch
	return &contacts.Contact{ID: id}, nil
}

func (f *fakeCommander) DeleteContact(_ context.Context, id string) error {
	f.deleted = id
	return nil
}

func (f *fakeCommander) SetToken(token string) error {
	f.token = token
	return nil
}

func (f *fakeCommander) SignOut() error {
	f.signedOut = true
	return nil
}

func (f *fakeCommander) TokenInfo() (app.TokenStatus, error) {
	return app.TokenStatus{Present: f.token != ""}, nil
}

func runCLI(t *testing.T, fake *fakeCommander, args ...string) (string, error) {
	t.Helper()
	in, err := parseArgs(args)
	if err != nil {
		return "", err
	}
	var out bytes.Buffer
	err = execute(context.Background(), fake, in, &out)
	return out.String(), err
}

func TestOpenPrintsNavigation(t *testing.T) {
	fake := &fakeCommander{}
	out, err := runCLI(t, fake, "open", "/contacts")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if fake.navigated != "/contacts" {
		t.Fatalf("navigated to %q", fake.navigated)
	}
	var nav map[string]any
	if err := json.Unmarshal([]byte(out), &nav); err != nil {
		t.Fatalf("decode output: %v (%s)", err, out)
	}
	if nav["path"] != router.PathSignIn || nav["outcome"] != router.RedirectToSignIn.String() {
		t.Fatalf("unexpected output %v", nav)
	}
}

func TestCreateBuildsFullPayload(t *testing.T) {
	fake := &fakeCommander{}
	if _, err := runCLI(t, fake, "create", "--name", "A", "--surname", "B"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if fake.created.Name != "A" || fake.created.Surname != "B" || fake.created.DateOfBirth != nil {
		t.Fatalf("unexpected payload %+v", fake.created)
	}

	if _, err := runCLI(t, fake, "create", "--name", "A", "--dob", "1990-01-01"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if fake.created.DateOfBirth == nil || *fake.created.DateOfBirth != "1990-01-01" {
		t.Fatalf("dob not set: %+v", fake.created)
	}
}

func TestUpdateOnlySendsGivenFlags(t *testing.T) {
	fake := &fakeCommander{}
	if _, err := runCLI(t, fake, "update", "abc", "--phone", "123", "--email", ""); err != nil {
		t.Fatalf("update: %v", err)
	}
	if fake.updatedID != "abc" {
		t.Fatalf("updated id %q", fake.updatedID)
	}
	if fake.patch.Phone == nil || *fake.patch.Phone != "123" {
		t.Fatalf("phone not patched: %+v", fake.patch)
	}
	if fake.patch.Email == nil || *fake.patch.Email != "" {
		t.Fatalf("explicit empty email should be patched: %+v", fake.patch)
	}
	if fake.patch.Name != nil || fake.patch.Address != nil {
		t.Fatalf("unexpected fields in patch: %+v", fake.patch)
	}
}

func TestTokenAndSignOutCommands(t *testing.T) {
	fake := &fakeCommander{}
	out, err := runCLI(t, fake, "token", "set", "abc")
	if err != nil {
		t.Fatalf("token set: %v", err)
	}
	if fake.token != "abc" || !strings.Contains(out, `"present": true`) {
		t.Fatalf("token set output %s", out)
	}
	if strings.Contains(out, "abc") {
		t.Fatalf("token must not be echoed: %s", out)
	}

	if _, err := runCLI(t, fake, "signout"); err != nil {
		t.Fatalf("signout: %v", err)
	}
	if !fake.signedOut {
		t.Fatalf("signout not called")
	}
}

func TestDeleteCommand(t *testing.T) {
	fake := &fakeCommander{}
	if _, err := runCLI(t, fake, "delete", "x1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if fake.deleted != "x1" {
		t.Fatalf("deleted %q", fake.deleted)
	}
}

func TestUsageErrors(t *testing.T) {
	fake := &fakeCommander{}
	cases := [][]string{
		{"open"},
		{"update"},
		{"delete", "a", "b"},
		{"token"},
		{"token", "set"},
		{"token", "rotate"},
		{"frobnicate"},
	}
	for _, args := range cases {
		if _, err := runCLI(t, fake, args...); !errors.Is(err, errUsage) {
			t.Fatalf("%v: expected usage error, got %v", args, err)
		}
	}
}

func TestListPropagatesErrors(t *testing.T) {
	fake := &fakeCommander{listErr: app.ErrSignInRequired}
	if _, err := runCLI(t, fake, "list"); !errors.Is(err, app.ErrSignInRequired) {
		t.Fatalf("expected ErrSignInRequired, got %v", err)
	}
}

func TestConfigFlagsBindIntoViper(t *testing.T) {
	in, err := parseArgs([]string{"--api-base-url", "http://api.test", "--token-store", "memory", "list"})
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if got := in.viper.GetString("api_base_url"); got != "http://api.test" {
		t.Fatalf("api_base_url = %q", got)
	}
	if got := in.viper.GetString("token_store_type"); got != "memory" {
		t.Fatalf("token_store_type = %q", got)
	}
	if in.viper.IsSet("routes_file") {
		t.Fatalf("unset flags must not be bound")
	}
}
