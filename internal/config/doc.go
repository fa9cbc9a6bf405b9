// Package config provides configuration structures and utilities for paperstat.
// It defines the backend connection options, report and export preferences,
// and the per-backend settings read from the .paperstat file and .env.
package config
