package loader

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/signadot/confnode/node"
)

func decodeYAML(data []byte, o *options) (*node.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	root := node.NewRoot()
	d := &yamlDecoder{comments: o.comments}
	if err := d.load(&doc, root); err != nil {
		return nil, err
	}
	return root, nil
}

type yamlDecoder struct {
	comments bool
}

func (d *yamlDecoder) load(y *yaml.Node, n *node.Node) error {
	switch y.Kind {
	case yaml.DocumentNode:
		if len(y.Content) == 0 {
			return nil
		}
		if err := d.load(y.Content[0], n); err != nil {
			return err
		}
		d.comment(n, y, y.Content[0])
		return nil
	case yaml.AliasNode:
		return d.load(y.Alias, n)
	case yaml.MappingNode:
		if err := n.Set(node.EmptyMap()); err != nil {
			return err
		}
		for i := 0; i+1 < len(y.Content); i += 2 {
			k, v := y.Content[i], y.Content[i+1]
			if k.ShortTag() == "!!merge" {
				if err := d.merge(v, n); err != nil {
					return err
				}
				continue
			}
			c := n.Node(node.Field(k.Value))
			if err := d.load(v, c); err != nil {
				return fmt.Errorf("line %d: %w", v.Line, err)
			}
			d.comment(c, k, v)
		}
		return nil
	case yaml.SequenceNode:
		if err := n.Set(node.EmptyList()); err != nil {
			return err
		}
		for _, v := range y.Content {
			c := n.AppendListChild()
			if err := d.load(v, c); err != nil {
				return fmt.Errorf("line %d: %w", v.Line, err)
			}
			d.comment(c, v)
		}
		return nil
	case yaml.ScalarNode:
		return d.scalar(y, n)
	}
	return fmt.Errorf("line %d: unexpected yaml node kind %d", y.Line, y.Kind)
}

// merge applies a "<<" entry: keys of the merged maps not already set in
// n are added.
func (d *yamlDecoder) merge(v *yaml.Node, n *node.Node) error {
	srcs := []*yaml.Node{v}
	if v.Kind == yaml.SequenceNode {
		srcs = v.Content
	}
	for _, src := range srcs {
		tmp := node.NewRoot()
		if err := d.load(src, tmp); err != nil {
			return err
		}
		if !tmp.IsMap() {
			return fmt.Errorf("line %d: merge of non mapping", v.Line)
		}
		for k, c := range tmp.Entries() {
			if n.HasChild(node.Field(k)) {
				continue
			}
			if err := n.Node(node.Field(k)).Set(c); err != nil {
				return err
			}
		}
	}
	return nil
}

func (d *yamlDecoder) scalar(y *yaml.Node, n *node.Node) error {
	switch y.ShortTag() {
	case "!!null":
		return n.Set(nil)
	case "!!bool":
		var b bool
		if err := y.Decode(&b); err != nil {
			return err
		}
		return n.Set(b)
	case "!!int":
		var i int64
		if err := y.Decode(&i); err == nil {
			return n.Set(i)
		}
		var f float64
		if err := y.Decode(&f); err != nil {
			return err
		}
		return n.Set(f)
	case "!!float":
		var f float64
		if err := y.Decode(&f); err != nil {
			return err
		}
		return n.Set(f)
	case "!!binary":
		b, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(y.Value), ""))
		if err != nil {
			return fmt.Errorf("line %d: %w", y.Line, err)
		}
		return n.Set(b)
	}
	return n.Set(y.Value)
}

// comment sets the comment of n from the head and line comments of the
// yaml nodes it was read from.
func (d *yamlDecoder) comment(n *node.Node, ys ...*yaml.Node) {
	if !d.comments || n.IsVirtual() {
		return
	}
	var lines []string
	for _, y := range ys {
		lines = append(lines, commentLines(y.HeadComment)...)
	}
	for _, y := range ys {
		lines = append(lines, commentLines(y.LineComment)...)
	}
	if len(lines) != 0 {
		n.SetComment(strings.Join(lines, "\n"))
	}
}

func commentLines(c string) []string {
	if c == "" {
		return nil
	}
	var res []string
	for _, line := range strings.Split(c, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = strings.TrimPrefix(line, "#")
		res = append(res, strings.TrimPrefix(line, " "))
	}
	return res
}

func encodeYAML(n *node.Node, o *options) ([]byte, error) {
	e := &yamlEncoder{comments: o.comments}
	y, err := e.node(n)
	if err != nil {
		return nil, err
	}
	doc := &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{y}}
	if e.comments {
		doc.HeadComment = y.HeadComment
		y.HeadComment = ""
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	if o.indent > 0 {
		enc.SetIndent(o.indent)
	}
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type yamlEncoder struct {
	comments bool
}

func (e *yamlEncoder) node(n *node.Node) (*yaml.Node, error) {
	var res *yaml.Node
	switch n.Kind() {
	case node.MapKind:
		res = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for k, c := range n.Entries() {
			v, err := e.node(c)
			if err != nil {
				return nil, err
			}
			kn := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}
			kn.HeadComment, v.HeadComment = v.HeadComment, ""
			res.Content = append(res.Content, kn, v)
		}
	case node.ListKind:
		res = &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, c := range n.ChildrenList() {
			v, err := e.node(c)
			if err != nil {
				return nil, err
			}
			res.Content = append(res.Content, v)
		}
	default:
		res = yamlScalar(n.Value())
	}
	if e.comments && n.Comment() != "" {
		res.HeadComment = commentText(n.Comment())
	}
	return res, nil
}

func yamlScalar(v node.Value) *yaml.Node {
	res := &yaml.Node{Kind: yaml.ScalarNode}
	switch v.Kind() {
	case node.NullKind:
		res.Tag, res.Value = "!!null", "null"
	case node.StringKind:
		s, _ := v.AsString()
		res.Tag, res.Value = "!!str", s
	case node.BoolKind:
		b, _ := v.AsBool()
		res.Tag, res.Value = "!!bool", strconv.FormatBool(b)
	case node.IntKind:
		i, _ := v.AsInt()
		res.Tag, res.Value = "!!int", strconv.FormatInt(i, 10)
	case node.FloatKind:
		f, _ := v.AsFloat()
		res.Tag = "!!float"
		switch {
		case math.IsNaN(f):
			res.Value = ".nan"
		case math.IsInf(f, 1):
			res.Value = ".inf"
		case math.IsInf(f, -1):
			res.Value = "-.inf"
		default:
			res.Value = floatText(f)
		}
	case node.BytesKind:
		b, _ := v.AsBytes()
		res.Tag, res.Value = "!!binary", base64.StdEncoding.EncodeToString(b)
	}
	return res
}

func commentText(c string) string {
	lines := strings.Split(c, "\n")
	for i, line := range lines {
		lines[i] = "# " + line
	}
	return strings.Join(lines, "\n")
}
