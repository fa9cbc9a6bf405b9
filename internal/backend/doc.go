// Package backend fetches survey analysis payloads from the survey backend's
// admin API.
//
// The only endpoint used is
//
//	GET <endpoint>/{surveyID}/analysis/[?date_start=YYYY-MM-DD&date_end=YYYY-MM-DD]
//
// which answers {"sum": n, "result": [...]}. One request is made per load and
// nothing is retried; failures are classified as model.ErrNetwork or
// model.ErrMalformedResponse so callers can decide on their own policy.
//
// Every request carries a fresh X-Request-ID plus the cookie and headers
// configured for the backend. Requests may optionally go through a SOCKS5
// proxy.
package backend
