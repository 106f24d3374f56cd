package loader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/signadot/confnode/node"
)

func decodeJSON(data []byte) (*node.Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	root := node.NewRoot()
	if err := jsonValue(dec, root); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("offset %d: trailing data after document", dec.InputOffset())
	}
	return root, nil
}

// jsonValue reads one value from dec's token stream into n, keeping the
// order of object keys.
func jsonValue(dec *json.Decoder, n *node.Node) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			if err := n.Set(node.EmptyMap()); err != nil {
				return err
			}
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return err
				}
				key, _ := kt.(string)
				if err := jsonValue(dec, n.Node(node.Field(key))); err != nil {
					return err
				}
			}
		case '[':
			if err := n.Set(node.EmptyList()); err != nil {
				return err
			}
			for dec.More() {
				if err := jsonValue(dec, n.AppendListChild()); err != nil {
					return err
				}
			}
		}
		// closing delimiter
		_, err := dec.Token()
		return err
	case json.Number:
		if i, err := strconv.ParseInt(string(t), 10, 64); err == nil {
			return n.Set(i)
		}
		f, err := t.Float64()
		if err != nil {
			return fmt.Errorf("offset %d: %w", dec.InputOffset(), err)
		}
		return n.Set(f)
	case nil:
		return n.Set(nil)
	default:
		return n.Set(t)
	}
}

func encodeJSON(n *node.Node, o *options) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, n); err != nil {
		return nil, err
	}
	if o.indent <= 0 {
		buf.WriteByte('\n')
		return buf.Bytes(), nil
	}
	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", strings.Repeat(" ", o.indent)); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, n *node.Node) error {
	v := n.Value()
	switch n.Kind() {
	case node.MapKind:
		buf.WriteByte('{')
		i := 0
		for k, c := range n.Entries() {
			if i > 0 {
				buf.WriteByte(',')
			}
			i++
			kd, _ := json.Marshal(k)
			buf.Write(kd)
			buf.WriteByte(':')
			if err := writeJSON(buf, c); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil
	case node.ListKind:
		buf.WriteByte('[')
		for i, c := range n.ChildrenList() {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, c); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	case node.FloatKind:
		f, _ := v.AsFloat()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%s: %v is not representable in json", n.Path(), f)
		}
		buf.WriteString(floatText(f))
		return nil
	}
	d, err := json.Marshal(v.Interface())
	if err != nil {
		return fmt.Errorf("%s: %w", n.Path(), err)
	}
	buf.Write(d)
	return nil
}

// floatText formats f so that it reads back as a float.
func floatText(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}
