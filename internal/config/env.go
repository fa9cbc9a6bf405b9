package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables read by ApplyEnv.
const (
	EnvEndpoint = "PAPERSTAT_ENDPOINT"
	EnvCookie   = "PAPERSTAT_COOKIE"
	EnvProxy    = "PAPERSTAT_PROXY"
)

// DefaultEnvFile is the dotenv file loaded from the current directory.
const DefaultEnvFile = ".env"

// LoadEnvFile loads variables from a dotenv file into the process
// environment. Variables that are already set are not overridden.
// A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		path = DefaultEnvFile
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}

// ApplyEnv fills empty connection fields of c from the environment.
// Values already set (by flags) win.
func (c *Config) ApplyEnv() {
	if c.Endpoint == "" {
		c.Endpoint = os.Getenv(EnvEndpoint)
	}
	if c.Cookie == "" {
		c.Cookie = os.Getenv(EnvCookie)
	}
	if c.Proxy == "" {
		c.Proxy = os.Getenv(EnvProxy)
	}
}
