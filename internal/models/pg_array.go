package models

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
)

// StringArray is a helper type to handle string arrays in Postgres (TEXT[])
type StringArray []string

// Scan implements the sql.Scanner interface
func (a *StringArray) Scan(src interface{}) error {
	if src == nil {
		*a = nil
		return nil
	}
	switch v := src.(type) {
	case []byte:
		// PostgreSQL returns arrays as strings like "{value1,value2,value3}"
		return a.parsePostgresArray(string(v))
	case string:
		return a.parsePostgresArray(v)
	default:
		return errors.New("type assertion failed for StringArray")
	}
}

// parsePostgresArray parses PostgreSQL array format: {value1,"value,2",value3}.
// Commas inside quoted elements are element content, not separators, and
// backslash escapes inside quotes are unescaped.
func (a *StringArray) parsePostgresArray(s string) error {
	if s == "{}" || s == "" {
		*a = []string{}
		return nil
	}

	s = strings.TrimPrefix(s, "{")
	s = strings.TrimSuffix(s, "}")

	if s == "" {
		*a = []string{}
		return nil
	}

	var result []string
	var elem strings.Builder
	inQuotes := false
	escaped := false
	for _, r := range s {
		switch {
		case escaped:
			elem.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			result = append(result, elem.String())
			elem.Reset()
		default:
			elem.WriteRune(r)
		}
	}
	if inQuotes || escaped {
		return fmt.Errorf("malformed array literal: %q", s)
	}
	result = append(result, elem.String())
	*a = result
	return nil
}

// Value implements the driver.Valuer interface
// Returns PostgreSQL array format: {value1,value2,value3}
func (a StringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "{}", nil
	}

	quoted := make([]string, len(a))
	for i, v := range a {
		if strings.ContainsAny(v, `,"\{} `) {
			escaped := strings.ReplaceAll(v, `\`, `\\`)
			escaped = strings.ReplaceAll(escaped, `"`, `\"`)
			quoted[i] = fmt.Sprintf(`"%s"`, escaped)
		} else {
			quoted[i] = v
		}
	}
	return fmt.Sprintf("{%s}", strings.Join(quoted, ",")), nil
}
