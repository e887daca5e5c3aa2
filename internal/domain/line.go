package domain

import (
	"errors"
	"fmt"
	"strings"
)

// FieldSeparator separates the fields of a record line. Values are written verbatim,
// so a value containing the separator cannot be represented.
const FieldSeparator = ","

var (
	// ErrMalformedLine is returned when a record line cannot be parsed.
	ErrMalformedLine = errors.New("malformed line")
	// ErrDelimiterInField is returned when a value would break the line format.
	ErrDelimiterInField = errors.New("field contains delimiter")
)

// ContainsDelimiter reports whether value contains the field separator or a line break.
func ContainsDelimiter(value string) bool {
	return strings.ContainsAny(value, FieldSeparator+"\r\n")
}

func joinFields(fields ...string) (string, error) {
	for i, field := range fields {
		if ContainsDelimiter(field) {
			return "", fmt.Errorf("%w: field %d %q", ErrDelimiterInField, i, field)
		}
	}

	return strings.Join(fields, FieldSeparator), nil
}

func splitFields(line string) []string {
	fields := strings.Split(line, FieldSeparator)
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	return fields
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedLine, fmt.Sprintf(format, args...))
}
