package gomap

import (
	"fmt"
	"strings"
	"unicode"
)

// ParseStructTag parses a struct tag value into key-value pairs.
// Parts are separated by commas or spaces: `conf:"key1=value1,key2=value2,flag"`.
// Values may be quoted to hold separators: `conf:"comment='listen port'"`.
// Flags map to the empty string.
func ParseStructTag(tag string) (map[string]string, error) {
	result := make(map[string]string)
	if tag == "" {
		return result, nil
	}

	var parts []string
	var current strings.Builder
	inSingleQuote := false
	inDoubleQuote := false
	flush := func() {
		if part := strings.TrimSpace(current.String()); part != "" {
			parts = append(parts, part)
		}
		current.Reset()
	}
	for i := 0; i < len(tag); i++ {
		c := tag[i]
		switch {
		case c == '\'' && !inDoubleQuote:
			inSingleQuote = !inSingleQuote
			current.WriteByte(c)
		case c == '"' && !inSingleQuote:
			inDoubleQuote = !inDoubleQuote
			current.WriteByte(c)
		case (c == ',' || c == ' ') && !inSingleQuote && !inDoubleQuote:
			flush()
		default:
			current.WriteByte(c)
		}
	}
	if inSingleQuote || inDoubleQuote {
		return nil, fmt.Errorf("invalid tag: unterminated quote in %q", tag)
	}
	flush()

	for _, part := range parts {
		idx := strings.Index(part, "=")
		if idx == -1 {
			result[part] = ""
			continue
		}
		key := strings.TrimSpace(part[:idx])
		if key == "" {
			return nil, fmt.Errorf("invalid tag: empty key in %q", part)
		}
		result[key] = unquoteValue(strings.TrimSpace(part[idx+1:]))
	}
	return result, nil
}

// unquoteValue removes surrounding single or double quotes from a value.
func unquoteValue(value string) string {
	if len(value) >= 2 {
		first, last := value[0], value[len(value)-1]
		if (first == '\'' || first == '"') && first == last {
			return value[1 : len(value)-1]
		}
	}
	return value
}

// Dashed converts a Go field name to lower case words separated by
// dashes: MaxPlayers becomes max-players, HTTPPort becomes http-port.
func Dashed(name string) string {
	rs := []rune(name)
	var b strings.Builder
	for i, r := range rs {
		if i > 0 && unicode.IsUpper(r) {
			prev := rs[i-1]
			nextLower := i+1 < len(rs) && unicode.IsLower(rs[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteByte('-')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
