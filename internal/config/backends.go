package config

import (
	"strings"
	"time"
)

// BackendConfig holds settings for one survey backend.
type BackendConfig struct {
	// Cookie is an HTTP cookie sent with every request, usually the admin
	// session. Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are custom HTTP headers to include in requests,
	// e.g. a CSRF token.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Timeout overrides the global request timeout, e.g. "45s".
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// File represents the structure of the .paperstat configuration file.
type File struct {
	// Endpoint is used when no endpoint is given on the command line
	// or in the environment.
	Endpoint string `yaml:"endpoint,omitempty"`

	// Backends maps endpoint URLs to their settings.
	// A trailing slash on the key is ignored.
	Backends map[string]BackendConfig `yaml:"backends,omitempty"`

	// Defaults apply to every backend unless overridden.
	Defaults BackendConfig `yaml:"defaults,omitempty"`
}

// GetBackendConfig returns the configuration for one endpoint, merged over
// the defaults. Headers are merged key by key; the other fields replace the
// default when set.
func (cf *File) GetBackendConfig(endpoint string) BackendConfig {
	result := cf.Defaults
	if len(cf.Defaults.Headers) > 0 {
		result.Headers = make(map[string]string, len(cf.Defaults.Headers))
		for k, v := range cf.Defaults.Headers {
			result.Headers[k] = v
		}
	}

	bc, ok := cf.lookup(endpoint)
	if !ok {
		return result
	}

	if bc.Cookie != "" {
		result.Cookie = bc.Cookie
	}
	if bc.Timeout > 0 {
		result.Timeout = bc.Timeout
	}
	if len(bc.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string)
		}
		for k, v := range bc.Headers {
			result.Headers[k] = v
		}
	}

	return result
}

func (cf *File) lookup(endpoint string) (BackendConfig, bool) {
	if bc, ok := cf.Backends[endpoint]; ok {
		return bc, true
	}
	want := strings.TrimRight(endpoint, "/")
	for k, bc := range cf.Backends {
		if strings.TrimRight(k, "/") == want {
			return bc, true
		}
	}
	return BackendConfig{}, false
}
