// Package config loads service settings from the environment, optionally
// seeded from a .env file in the working directory.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// LoadDotEnv reads the given files (".env" when none are named) into the
// process environment. Variables already set win. A missing file is not an
// error; the returned bool reports whether anything was loaded.
func LoadDotEnv(files ...string) (bool, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	loaded := false
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return loaded, err
		}
		loaded = true
	}
	return loaded, nil
}

func String(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func Int(k string, def int) int {
	v, err := strconv.Atoi(String(k, ""))
	if err != nil {
		return def
	}
	return v
}

func Bool(k string, def bool) bool {
	v, err := strconv.ParseBool(String(k, ""))
	if err != nil {
		return def
	}
	return v
}

func Duration(k string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(String(k, ""))
	if err != nil {
		return def
	}
	return v
}

func Decimal(k string, def decimal.Decimal) decimal.Decimal {
	v, err := decimal.NewFromString(String(k, ""))
	if err != nil {
		return def
	}
	return v
}

// List splits a comma separated value, dropping empty entries.
func List(k string, def []string) []string {
	raw := String(k, "")
	if raw == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
