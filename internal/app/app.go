package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Adda-Baaj/contacts-client/internal/config"
	"github.com/Adda-Baaj/contacts-client/internal/logger"
	"github.com/Adda-Baaj/contacts-client/internal/router"
	"github.com/Adda-Baaj/contacts-client/internal/session"
	"github.com/Adda-Baaj/contacts-client/pkg/contacts"
	"github.com/Adda-Baaj/contacts-client/pkg/httpclient"
	"github.com/Adda-Baaj/contacts-client/pkg/notify"
)

// ErrSignInRequired is returned when the guard sends a contacts command to sign-in.
var ErrSignInRequired = errors.New("sign in required")

// App wires the token store, route guard, API client and contact service.
type App struct {
	cfg      *config.Config
	log      logger.Logger
	store    session.Store
	router   *router.Router
	contacts *contacts.Service
	notifier *notify.Dispatcher
}

// NewApp builds the client runtime from config.
func NewApp(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	store, err := session.NewStore(cfg.TokenStoreType, cfg.TokenStorePath, session.Options{TTL: cfg.TokenTTL})
	if err != nil {
		return nil, fmt.Errorf("init token store: %w", err)
	}
	log.InfoObj("token store initialized", "token_store", map[string]any{
		"type":        cfg.TokenStoreType,
		"path":        cfg.TokenStorePath,
		"ttl_seconds": int(cfg.TokenTTL.Seconds()),
	})

	var routes []router.Route
	if cfg.RoutesFile != "" {
		routes, err = router.LoadRoutes(cfg.RoutesFile)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("load routes: %w", err)
		}
	}

	dispatcher, err := notify.LoadDispatcher(ctx, cfg.NotifiersFile, cfg.AppName, log)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("init notifiers: %w", err)
	}

	client := httpclient.New(cfg.APIBaseURL, cfg.RequestTimeout, httpclient.WithLogger(log))

	a, err := newApp(cfg, log, store, routes, client, dispatcher)
	if err != nil {
		dispatcher.Close()
		store.Close()
		return nil, err
	}
	return a, nil
}

// newApp assembles an App from already-built collaborators.
func newApp(cfg *config.Config, log logger.Logger, store session.Store, routes []router.Route, client httpclient.JSONClient, dispatcher *notify.Dispatcher) (*App, error) {
	rt, err := router.New(routes, store, log)
	if err != nil {
		return nil, fmt.Errorf("build router: %w", err)
	}

	var notifier contacts.Notifier
	if dispatcher != nil {
		notifier = dispatcher
	}

	log.InfoObj("route table loaded", "routes_meta", map[string]any{
		"count": len(rt.Routes()),
		"file":  cfg.RoutesFile,
	})

	return &App{
		cfg:      cfg,
		log:      log,
		store:    store,
		router:   rt,
		contacts: contacts.NewService(client, store, notifier, log),
		notifier: dispatcher,
	}, nil
}

// Navigate asks the guard where path resolves to.
func (a *App) Navigate(path string) (router.Navigation, error) {
	return a.router.Navigate(path)
}

// ListContacts lists the signed-in user's contacts.
func (a *App) ListContacts(ctx context.Context) ([]contacts.Contact, error) {
	if err := a.requireContacts(); err != nil {
		return nil, err
	}
	list, err := a.contacts.List(ctx)
	return list, a.handleAuthFailure(err)
}

// CreateContact creates a contact.
func (a *App) CreateContact(ctx context.Context, in contacts.NewContact) (*contacts.Contact, error) {
	if err := a.requireContacts(); err != nil {
		return nil, err
	}
	created, err := a.contacts.Create(ctx, in)
	return created, a.handleAuthFailure(err)
}

// UpdateContact applies a partial update.
func (a *App) UpdateContact(ctx context.Context, id string, patch contacts.Patch) (*contacts.Contact, error) {
	if err := a.requireContacts(); err != nil {
		return nil, err
	}
	updated, err := a.contacts.Update(ctx, id, patch)
	return updated, a.handleAuthFailure(err)
}

// DeleteContact deletes a contact.
func (a *App) DeleteContact(ctx context.Context, id string) error {
	if err := a.requireContacts(); err != nil {
		return err
	}
	return a.handleAuthFailure(a.contacts.Delete(ctx, id))
}

// SetToken stores the bearer token obtained by signing in.
func (a *App) SetToken(token string) error {
	if err := a.store.SetToken(token); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	a.log.InfoObj("token stored", "session", map[string]any{"present": session.Present(a.store)})
	return nil
}

// SignOut clears the stored token.
func (a *App) SignOut() error {
	if err := a.store.Clear(); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	a.log.InfoObj("signed out", "session", map[string]any{"present": false})
	return nil
}

// TokenStatus is what `token show` prints. The token itself is never echoed.
type TokenStatus struct {
	Present bool               `json:"present"`
	Claims  *session.TokenInfo `json:"claims,omitempty"`
	Expired bool               `json:"expired,omitempty"`
}

// TokenInfo reports whether a token is stored and, for JWTs, its claims.
func (a *App) TokenInfo() (TokenStatus, error) {
	token, err := a.store.Token()
	if err != nil {
		return TokenStatus{}, fmt.Errorf("read token: %w", err)
	}
	status := TokenStatus{Present: token != ""}
	if info, ok := session.Inspect(token); ok {
		status.Claims = &info
		status.Expired = info.Expired(time.Now())
	}
	return status, nil
}

// Close releases the token store and notifier connections.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	var errs []error
	if a.notifier != nil {
		if err := a.notifier.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// requireContacts runs the guard for the contacts screen.
func (a *App) requireContacts() error {
	nav, err := a.router.Navigate(router.PathContacts)
	if err != nil {
		return err
	}
	if nav.Path != router.PathContacts {
		return fmt.Errorf("%w: redirected to %s", ErrSignInRequired, nav.Path)
	}
	return nil
}

// handleAuthFailure forces a sign-out when the API rejects the token.
func (a *App) handleAuthFailure(err error) error {
	if err == nil || !httpclient.IsStatus(err, http.StatusUnauthorized) {
		return err
	}
	if clearErr := a.store.Clear(); clearErr != nil {
		a.log.ErrorObj("clear rejected token failed", "error", clearErr)
		return err
	}
	a.log.WarnObj("api rejected token; signed out", "session", map[string]any{"present": false})
	return fmt.Errorf("%w: %w", ErrSignInRequired, err)
}
