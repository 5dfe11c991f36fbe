package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
)

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func int64PtrToNull(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func nullToInt64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	out := v.Int64
	return &out
}

func float64PtrToNull(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullToFloat64Ptr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	out := v.Float64
	return &out
}

func stringToNull(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

// encodeJSON renders v for a JSONB column. lib/pq sends []byte as bytea, so
// JSON travels as text.
func encodeJSON(v any) (string, error) {
	raw, err := sonic.MarshalString(v)
	if err != nil {
		return "", fmt.Errorf("encode json column: %w", err)
	}
	return raw, nil
}

func decodeJSON(raw string, out any) error {
	if raw == "" {
		return nil
	}
	if err := sonic.UnmarshalString(raw, out); err != nil {
		return fmt.Errorf("decode json column: %w", err)
	}
	return nil
}

func joinColumns(columns []string) string {
	return strings.Join(columns, ", ")
}
