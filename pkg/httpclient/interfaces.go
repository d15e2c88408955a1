package httpclient

import "context"

// JSONClient abstracts the authenticated JSON verbs so callers can inject fakes.
// An empty token sends no Authorization header. out may be nil when the caller
// does not care about the response body; it is still parsed.
type JSONClient interface {
	Get(ctx context.Context, path, token string, out any) error
	Post(ctx context.Context, path string, body any, token string, out any) error
	Put(ctx context.Context, path string, body any, token string, out any) error
	Delete(ctx context.Context, path, token string, out any) error
}

// Logger defines the logging surface the client relies on.
type Logger interface {
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
}

type noopLogger struct{}

func (noopLogger) DebugObj(string, string, interface{}) {}
func (noopLogger) WarnObj(string, string, interface{})  {}

func ensureLogger(log Logger) Logger {
	if log == nil {
		return noopLogger{}
	}
	return log
}
