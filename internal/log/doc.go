// Package log provides secure logging functionality with automatic sanitization
// of sensitive information, built on top of the standard slog package.
//
// This package extends slog to provide:
//   - Automatic sanitization of credentials (cookies, tokens, secrets)
//   - Redaction of respondent answers and search keywords
//   - Request ids carried through context.Context
//
// # Security Features
//
// The SecureHandler sanitizes sensitive information in log output:
//   - HTTP headers (Authorization, Cookie, Set-Cookie, X-CSRFToken)
//   - Secret values detected by pattern matching (bearer tokens, JWTs, keys)
//   - Session identifiers of the survey admin console
//
// Survey answers are personal data. Attributes named answer, answers,
// origin or keyword are masked unless the handler is built WithAnswers(true),
// which the CLI does for --show-answers.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, true) // verbose=true
//
//	logger.Info("request sent",
//	    "cookie", "sessionid=abc123", // masked
//	    "url", "https://example.com/admin/paper/42/analysis/",
//	)
//
//	slog.SetDefault(logger)
package log
