package loader

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Format names a text format a tree can be read from or written to.
type Format int

const (
	YAML Format = iota
	JSON
	TOML
)

var ErrBadFormat = errors.New("bad format")

// ParseFormat parses a format name or its one letter abbreviation.
func ParseFormat(v string) (Format, error) {
	f, ok := map[string]Format{
		"y":    YAML,
		"yaml": YAML,
		"yml":  YAML,
		"j":    JSON,
		"json": JSON,
		"t":    TOML,
		"toml": TOML,
	}[strings.ToLower(v)]
	if ok {
		return f, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrBadFormat, v)
}

// FormatOf returns the format of a file from its extension.
func FormatOf(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return 0, fmt.Errorf("%w: %q has no extension", ErrBadFormat, path)
	}
	return ParseFormat(ext)
}

func (f Format) String() string {
	d, err := f.MarshalText()
	if err != nil {
		return err.Error()
	}
	return string(d)
}

func (f Format) MarshalText() ([]byte, error) {
	switch f {
	case YAML:
		return []byte("yaml"), nil
	case JSON:
		return []byte("json"), nil
	case TOML:
		return []byte("toml"), nil
	default:
		return nil, fmt.Errorf("<err: %d is not a format>", f)
	}
}

func (f *Format) UnmarshalText(d []byte) error {
	pf, err := ParseFormat(string(d))
	if err != nil {
		return err
	}
	*f = pf
	return nil
}
