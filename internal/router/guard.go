package router

// Outcome is where a navigation attempt actually lands.
type Outcome int

const (
	Proceed Outcome = iota
	RedirectToContacts
	RedirectToSignIn
)

const (
	PathRoot     = "/"
	PathSignIn   = "/signin"
	PathSignUp   = "/signup"
	PathContacts = "/contacts"
)

func (o Outcome) String() string {
	switch o {
	case RedirectToContacts:
		return "redirect_to_contacts"
	case RedirectToSignIn:
		return "redirect_to_signin"
	default:
		return "proceed"
	}
}

// MarshalText lets outcomes appear by name in logs and JSON output.
func (o Outcome) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

// Target returns the redirect path for the outcome, "" for Proceed.
func (o Outcome) Target() string {
	switch o {
	case RedirectToContacts:
		return PathContacts
	case RedirectToSignIn:
		return PathSignIn
	default:
		return ""
	}
}

// Meta declares a route's auth requirements.
type Meta struct {
	RequiresAuth bool `json:"requires_auth" yaml:"requires_auth"`
	HideForAuth  bool `json:"hide_for_auth" yaml:"hide_for_auth"`
}

// Decide picks the navigation outcome for a destination. First matching rule wins.
func Decide(meta Meta, tokenPresent bool) Outcome {
	switch {
	case meta.HideForAuth && tokenPresent:
		return RedirectToContacts
	case meta.RequiresAuth && !tokenPresent:
		return RedirectToSignIn
	default:
		return Proceed
	}
}

// ResolveRoot is the redirect rule for "/".
func ResolveRoot(tokenPresent bool) string {
	if tokenPresent {
		return PathContacts
	}
	return PathSignIn
}
