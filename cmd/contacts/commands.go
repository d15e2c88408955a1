package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Adda-Baaj/contacts-client/internal/app"
	"github.com/Adda-Baaj/contacts-client/internal/router"
	"github.com/Adda-Baaj/contacts-client/pkg/contacts"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const usage = `usage: contacts [flags] <command>

commands:
  open <path>          resolve a screen path through the route guard
  list                 list contacts
  create               create a contact from --name, --surname, ...
  update <id>          update the fields given as flags
  delete <id>          delete a contact
  token set <value>    store the bearer token returned by sign-in
  token show           report whether a token is stored
  signout              clear the stored token

flags:
`

// errUsage marks malformed command lines.
var errUsage = errors.New("invalid usage")

// commander is the part of the client runtime the CLI drives.
type commander interface {
	Navigate(path string) (router.Navigation, error)
	ListContacts(ctx context.Context) ([]contacts.Contact, error)
	CreateContact(ctx context.Context, in contacts.NewContact) (*contacts.Contact, error)
	UpdateContact(ctx context.Context, id string, patch contacts.Patch) (*contacts.Contact, error)
	DeleteContact(ctx context.Context, id string) error
	SetToken(token string) error
	SignOut() error
	TokenInfo() (app.TokenStatus, error)
}

// config flags bound into viper, keyed by viper key.
var configFlags = map[string]string{
	"api_base_url":            "api-base-url",
	"request_timeout_seconds": "timeout",
	"log_level":               "log-level",
	"token_store_type":        "token-store",
	"token_store_path":        "token-store-path",
	"token_ttl_seconds":       "token-ttl",
	"routes_file":             "routes-file",
	"notifiers_file":          "notifiers-file",
}

// contact field flags, in payload order.
var contactFields = []string{
	"name", "surname", "nickname", "phone", "email",
	"company", "education", "dob", "address",
}

type cli struct {
	viper *viper.Viper
	flags *pflag.FlagSet
	args  []string
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("contacts", pflag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		fs.PrintDefaults()
	}

	fs.String("api-base-url", "", "contacts API base URL")
	fs.Int64("timeout", 0, "request timeout in seconds")
	fs.String("log-level", "", "log level (debug, info, warn, error)")
	fs.String("token-store", "", "token store type (bbolt, memory, none)")
	fs.String("token-store-path", "", "bbolt token store path")
	fs.Int64("token-ttl", 0, "stored token lifetime in seconds (0 = never expires)")
	fs.String("routes-file", "", "route table YAML/JSON file")
	fs.String("notifiers-file", "", "change notifiers YAML/JSON file")

	fs.String("name", "", "contact name")
	fs.String("surname", "", "contact surname")
	fs.String("nickname", "", "contact nickname")
	fs.String("phone", "", "contact phone")
	fs.String("email", "", "contact email")
	fs.String("company", "", "contact company")
	fs.String("education", "", "contact education")
	fs.String("dob", "", "contact date of birth (YYYY-MM-DD)")
	fs.String("address", "", "contact address")
	return fs
}

func parseArgs(args []string) (*cli, error) {
	fs := newFlagSet()
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	for key, name := range configFlags {
		if !fs.Changed(name) {
			continue
		}
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			return nil, fmt.Errorf("bind flag %s: %w", name, err)
		}
	}

	if fs.NArg() == 0 {
		fs.Usage()
		return nil, fmt.Errorf("%w: missing command", errUsage)
	}
	return &cli{viper: v, flags: fs, args: fs.Args()}, nil
}

func execute(ctx context.Context, c commander, in *cli, out io.Writer) error {
	cmd, rest := in.args[0], in.args[1:]
	switch cmd {
	case "open":
		if len(rest) != 1 {
			return fmt.Errorf("%w: open <path>", errUsage)
		}
		nav, err := c.Navigate(rest[0])
		if err != nil {
			return err
		}
		return writeJSON(out, nav)

	case "list":
		list, err := c.ListContacts(ctx)
		if err != nil {
			return err
		}
		return writeJSON(out, list)

	case "create":
		created, err := c.CreateContact(ctx, newContactFromFlags(in.flags))
		if err != nil {
			return err
		}
		return writeJSON(out, created)

	case "update":
		if len(rest) != 1 {
			return fmt.Errorf("%w: update <id>", errUsage)
		}
		updated, err := c.UpdateContact(ctx, rest[0], patchFromFlags(in.flags))
		if err != nil {
			return err
		}
		return writeJSON(out, updated)

	case "delete":
		if len(rest) != 1 {
			return fmt.Errorf("%w: delete <id>", errUsage)
		}
		if err := c.DeleteContact(ctx, rest[0]); err != nil {
			return err
		}
		return writeJSON(out, map[string]any{"deleted": rest[0]})

	case "token":
		return tokenCommand(c, rest, out)

	case "signout":
		if err := c.SignOut(); err != nil {
			return err
		}
		return writeJSON(out, map[string]any{"signed_out": true})

	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func tokenCommand(c commander, args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: token set <value> | token show", errUsage)
	}
	switch args[0] {
	case "set":
		if len(args) != 2 || strings.TrimSpace(args[1]) == "" {
			return fmt.Errorf("%w: token set <value>", errUsage)
		}
		if err := c.SetToken(strings.TrimSpace(args[1])); err != nil {
			return err
		}
		status, err := c.TokenInfo()
		if err != nil {
			return err
		}
		return writeJSON(out, status)
	case "show":
		status, err := c.TokenInfo()
		if err != nil {
			return err
		}
		return writeJSON(out, status)
	default:
		return fmt.Errorf("%w: unknown token command %q", errUsage, args[0])
	}
}

// newContactFromFlags builds the full create payload; an absent --dob is sent as null.
func newContactFromFlags(fs *pflag.FlagSet) contacts.NewContact {
	get := func(name string) string {
		v, _ := fs.GetString(name)
		return v
	}
	in := contacts.NewContact{
		Name:      get("name"),
		Surname:   get("surname"),
		Nickname:  get("nickname"),
		Phone:     get("phone"),
		Email:     get("email"),
		Company:   get("company"),
		Education: get("education"),
		Address:   get("address"),
	}
	if dob := get("dob"); dob != "" {
		in.DateOfBirth = &dob
	}
	return in
}

// patchFromFlags includes only the flags given on the command line.
func patchFromFlags(fs *pflag.FlagSet) contacts.Patch {
	var p contacts.Patch
	targets := map[string]**string{
		"name":      &p.Name,
		"surname":   &p.Surname,
		"nickname":  &p.Nickname,
		"phone":     &p.Phone,
		"email":     &p.Email,
		"company":   &p.Company,
		"education": &p.Education,
		"dob":       &p.DateOfBirth,
		"address":   &p.Address,
	}
	for _, name := range contactFields {
		if !fs.Changed(name) {
			continue
		}
		v, _ := fs.GetString(name)
		*targets[name] = &v
	}
	return p
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
