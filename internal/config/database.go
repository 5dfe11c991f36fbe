package config

import (
	"errors"
	"net/url"
)

// DatabaseURL reads DB_URL and DB_BINARY_PARAMETERS without the rest of the
// server config. The migration tool uses it.
func DatabaseURL() (string, error) {
	var env envReader
	raw := env.str("DB_URL", "")
	binary := env.boolean("DB_BINARY_PARAMETERS", true)
	if err := errors.Join(env.errs...); err != nil {
		return "", err
	}
	return PostgresDSN(raw, binary), nil
}

// PostgresDSN turns on lib/pq binary parameters unless the URL already sets
// them. Key/value DSNs are returned untouched.
func PostgresDSN(raw string, binaryParameters bool) string {
	if !binaryParameters {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return raw
	}
	q := u.Query()
	if q.Has("binary_parameters") {
		return raw
	}
	q.Set("binary_parameters", "yes")
	u.RawQuery = q.Encode()
	return u.String()
}
