package loader

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/signadot/confnode/node"
)

func decodeTOML(data []byte) (*node.Node, error) {
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return node.New(fromTOML(doc))
}

// fromTOML replaces the date and time values of a decoded document with
// their text.
func fromTOML(v any) any {
	switch x := v.(type) {
	case map[string]any:
		for k, c := range x {
			x[k] = fromTOML(c)
		}
		return x
	case []any:
		for i, c := range x {
			x[i] = fromTOML(c)
		}
		return x
	case time.Time:
		return x.Format(time.RFC3339Nano)
	case toml.LocalDate:
		return x.String()
	case toml.LocalTime:
		return x.String()
	case toml.LocalDateTime:
		return x.String()
	}
	return v
}

func encodeTOML(n *node.Node, o *options) ([]byte, error) {
	if !n.IsMap() && !n.IsNull() {
		return nil, fmt.Errorf("toml documents are tables, got %s", n.Kind())
	}
	doc, err := toTOML(n)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		doc = map[string]any{}
	}
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	if o.indent > 0 {
		enc.SetIndentTables(true)
		enc.SetIndentSymbol(strings.Repeat(" ", o.indent))
	}
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func toTOML(n *node.Node) (any, error) {
	switch n.Kind() {
	case node.MapKind:
		res := make(map[string]any, len(n.Keys()))
		for k, c := range n.Entries() {
			v, err := toTOML(c)
			if err != nil {
				return nil, err
			}
			res[k] = v
		}
		return res, nil
	case node.ListKind:
		cs := n.ChildrenList()
		res := make([]any, len(cs))
		for i, c := range cs {
			if c.IsNull() {
				return nil, fmt.Errorf("%s: toml has no null", c.Path())
			}
			v, err := toTOML(c)
			if err != nil {
				return nil, err
			}
			res[i] = v
		}
		return res, nil
	case node.BytesKind:
		b, _ := n.Value().AsBytes()
		return base64.StdEncoding.EncodeToString(b), nil
	}
	return n.Value().Interface(), nil
}
