package loader

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/signadot/confnode/node"
)

// Decode parses data in format f into a new tree. Empty input yields an
// empty root.
func Decode(data []byte, f Format, opts ...Option) (*node.Node, error) {
	o := newOptions(opts)
	if len(bytes.TrimSpace(data)) == 0 {
		return node.NewRoot(), nil
	}
	var (
		n   *node.Node
		err error
	)
	switch f {
	case YAML:
		n, err = decodeYAML(data, o)
	case JSON:
		n, err = decodeJSON(data)
	case TOML:
		n, err = decodeTOML(data)
	default:
		return nil, fmt.Errorf("%w: %d", ErrBadFormat, f)
	}
	if err != nil {
		return nil, fmt.Errorf("error decoding %s: %w", f, err)
	}
	return n, nil
}

// Encode renders n in format f.
func Encode(n *node.Node, f Format, opts ...Option) ([]byte, error) {
	o := newOptions(opts)
	var (
		d   []byte
		err error
	)
	switch f {
	case YAML:
		d, err = encodeYAML(n, o)
	case JSON:
		d, err = encodeJSON(n, o)
	case TOML:
		d, err = encodeTOML(n, o)
	default:
		return nil, fmt.Errorf("%w: %d", ErrBadFormat, f)
	}
	if err != nil {
		return nil, fmt.Errorf("error encoding %s: %w", f, err)
	}
	return d, nil
}

// Read decodes all of r.
func Read(r io.Reader, f Format, opts ...Option) (*node.Node, error) {
	d, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading: %w", err)
	}
	return Decode(d, f, opts...)
}

// Write encodes n to w.
func Write(w io.Writer, n *node.Node, f Format, opts ...Option) error {
	d, err := Encode(n, f, opts...)
	if err != nil {
		return err
	}
	_, err = w.Write(d)
	return err
}

// ReadFile decodes the file at path, in the format of its extension unless
// WithFormat is given.
func ReadFile(path string, opts ...Option) (*node.Node, error) {
	f, err := fileFormat(path, opts)
	if err != nil {
		return nil, err
	}
	d, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	n, err := Decode(d, f, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return n, nil
}

// WriteFile encodes n to the file at path, in the format of its extension
// unless WithFormat is given.
func WriteFile(path string, n *node.Node, opts ...Option) error {
	f, err := fileFormat(path, opts)
	if err != nil {
		return err
	}
	d, err := Encode(n, f, opts...)
	if err != nil {
		return err
	}
	return os.WriteFile(path, d, 0644)
}

func fileFormat(path string, opts []Option) (Format, error) {
	if o := newOptions(opts); o.format != nil {
		return *o.format, nil
	}
	return FormatOf(path)
}
