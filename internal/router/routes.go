package router

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// RedirectRoot marks a route whose destination is computed by ResolveRoot.
const RedirectRoot = "root"

// Route is a single navigable screen.
type Route struct {
	Name     string `json:"name" yaml:"name"`
	Path     string `json:"path" yaml:"path"`
	Meta     Meta   `json:"meta" yaml:"meta"`
	Redirect string `json:"redirect,omitempty" yaml:"redirect,omitempty"`
}

type routesFile struct {
	Routes []Route `json:"routes" yaml:"routes"`
}

// DefaultRoutes is the built-in table.
func DefaultRoutes() []Route {
	return []Route{
		{Name: "Home", Path: PathRoot, Redirect: RedirectRoot},
		{Name: "SignIn", Path: PathSignIn, Meta: Meta{HideForAuth: true}},
		{Name: "SignUp", Path: PathSignUp, Meta: Meta{HideForAuth: true}},
		{Name: "Contacts", Path: PathContacts, Meta: Meta{RequiresAuth: true}},
	}
}

// LoadRoutes reads a route table from a YAML/JSON file.
func LoadRoutes(path string) ([]Route, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("routes file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open routes file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read routes file: %w", err)
	}

	parsed, err := parseRoutes(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(parsed.Routes) == 0 {
		return nil, errors.New("routes file contains no routes entries")
	}
	return parsed.Routes, nil
}

func parseRoutes(data []byte, ext string) (routesFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var out routesFile
		if err := d.fn(data, &out); err == nil {
			return out, nil
		}
	}

	return routesFile{}, errors.New("routes file format not recognized (expected YAML or JSON)")
}

func sanitizeRoute(r Route) Route {
	r.Name = strings.TrimSpace(r.Name)
	r.Path = normalizePath(r.Path)
	r.Redirect = strings.TrimSpace(r.Redirect)
	return r
}

func validateRoute(r Route) error {
	if r.Path == "" {
		return errors.New("path is required")
	}
	if r.Meta.RequiresAuth && r.Meta.HideForAuth {
		return fmt.Errorf("route %q cannot both require auth and hide for auth", r.Path)
	}
	if r.Redirect != "" && r.Redirect != RedirectRoot && !strings.HasPrefix(r.Redirect, "/") {
		return fmt.Errorf("route %q redirect must be %q or an absolute path", r.Path, RedirectRoot)
	}
	return nil
}

// normalizePath trims whitespace, query and trailing slashes: "/contacts/?x" -> "/contacts".
func normalizePath(p string) string {
	p = strings.TrimSpace(p)
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if p == "" {
		return ""
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
		if p == "" {
			p = PathRoot
		}
	}
	return p
}
