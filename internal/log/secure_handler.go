package log

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"strings"
)

// MaskValue replaces every redacted value.
const MaskValue = "***REDACTED***"

// requestIDKey is the attribute added for contexts built by WithRequestID.
const requestIDKey = "request_id"

// credentialKeys are masked whatever their value. Keys are compared in lower case.
var credentialKeys = map[string]struct{}{
	"authorization": {}, "proxy-authorization": {}, "set-cookie": {},
	"x-api-key": {}, "x-auth-token": {}, "x-csrftoken": {}, "csrftoken": {},
	"api_key": {}, "apikey": {}, "api-key": {},
	"session": {}, "session_id": {}, "sessionid": {}, "sid": {},
}

// credentialFragments mask any key that contains one of them.
// A bare "key" is not listed: it would match question_key.
var credentialFragments = []string{
	"password", "passwd", "secret", "token", "auth", "credential", "private", "cookie",
}

// answerKeys carry respondent data and are masked unless answers are shown.
var answerKeys = map[string]struct{}{
	"answer": {}, "answers": {}, "origin": {}, "origins": {}, "keyword": {},
}

// secretValue matches values that look like credentials under any key:
// JWTs, bearer and basic auth, long opaque ids, admin session cookies and
// PEM private keys.
var secretValue = regexp.MustCompile(strings.Join([]string{
	`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`,
	`(?i:^bearer\s+.+)`,
	`(?i:^basic\s+[A-Za-z0-9+/=]+$)`,
	`^[a-zA-Z0-9]{32,}$`,
	`(?i:(sessionid|csrftoken)=[^;\s]+)`,
	`(?i:-----BEGIN.*(PRIVATE|SECRET).*KEY-----)`,
}, "|"))

type contextKey struct{}

// WithRequestID returns a context whose log records carry requestID.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextKey{}, requestID)
}

// RequestID returns the request id stored by WithRequestID, if any.
func RequestID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(contextKey{}).(string)
	return id, ok && id != ""
}

// SecureHandler is an slog.Handler that masks credentials and, by default,
// respondent answers before records reach the wrapped handler.
type SecureHandler struct {
	next        slog.Handler
	showAnswers bool
}

// HandlerOption configures a SecureHandler.
type HandlerOption func(*SecureHandler)

// WithAnswers logs answers and keywords as-is. Credentials stay masked.
func WithAnswers(show bool) HandlerOption {
	return func(h *SecureHandler) {
		h.showAnswers = show
	}
}

// NewSecureHandler wraps next, or slog.Default().Handler() when next is nil.
func NewSecureHandler(next slog.Handler, opts ...HandlerOption) *SecureHandler {
	if next == nil {
		next = slog.Default().Handler()
	}
	h := &SecureHandler{next: next}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Enabled implements slog.Handler.
func (h *SecureHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle implements slog.Handler. A request id in ctx is added first.
func (h *SecureHandler) Handle(ctx context.Context, r slog.Record) error {
	out := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	if id, ok := RequestID(ctx); ok {
		out.AddAttrs(slog.String(requestIDKey, id))
	}
	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(h.redact(a))
		return true
	})
	return h.next.Handle(ctx, out)
}

// WithAttrs implements slog.Handler; the attributes are redacted once here.
func (h *SecureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, 0, len(attrs))
	for _, a := range attrs {
		redacted = append(redacted, h.redact(a))
	}
	clone := *h
	clone.next = h.next.WithAttrs(redacted)
	return &clone
}

// WithGroup implements slog.Handler.
func (h *SecureHandler) WithGroup(name string) slog.Handler {
	clone := *h
	clone.next = h.next.WithGroup(name)
	return &clone
}

// redact returns a with its value masked if the key or value calls for it.
// Groups are redacted member by member.
func (h *SecureHandler) redact(a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() == slog.KindGroup {
		members := a.Value.Group()
		redacted := make([]slog.Attr, 0, len(members))
		for _, m := range members {
			redacted = append(redacted, h.redact(m))
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(redacted...)}
	}

	key := strings.ToLower(a.Key)
	switch {
	case isCredentialKey(key):
		return slog.String(a.Key, MaskValue)
	case !h.showAnswers && isAnswerKey(key):
		return slog.String(a.Key, MaskValue)
	case a.Value.Kind() == slog.KindString && looksSecret(a.Value.String()):
		return slog.String(a.Key, MaskValue)
	}
	return a
}

// isCredentialKey reports whether a lower-case key names a credential.
func isCredentialKey(key string) bool {
	if _, ok := credentialKeys[key]; ok {
		return true
	}
	for _, f := range credentialFragments {
		if strings.Contains(key, f) {
			return true
		}
	}
	return false
}

// isAnswerKey reports whether a lower-case key names respondent data.
func isAnswerKey(key string) bool {
	_, ok := answerKeys[key]
	return ok
}

// looksSecret reports whether a value looks like a credential.
func looksSecret(value string) bool {
	return secretValue.MatchString(value)
}

// levelFor maps verbose to Debug, otherwise Warn.
func levelFor(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}

// NewSecureLogger returns a text logger writing to w through a SecureHandler.
// verbose lowers the level from Warn to Debug.
func NewSecureLogger(w io.Writer, verbose bool, opts ...HandlerOption) *slog.Logger {
	return slog.New(NewSecureHandler(
		slog.NewTextHandler(w, &slog.HandlerOptions{Level: levelFor(verbose)}), opts...))
}

// NewSecureJSONLogger is NewSecureLogger with JSON output.
func NewSecureJSONLogger(w io.Writer, verbose bool, opts ...HandlerOption) *slog.Logger {
	return slog.New(NewSecureHandler(
		slog.NewJSONHandler(w, &slog.HandlerOptions{Level: levelFor(verbose)}), opts...))
}
