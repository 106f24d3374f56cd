package node

import "fmt"

// Kind is the tag of a Value.
type Kind int

const (
	NullKind Kind = iota
	StringKind
	BoolKind
	IntKind
	FloatKind
	BytesKind
	ListKind
	MapKind
)

var kindNames = map[Kind]string{
	NullKind:   "Null",
	StringKind: "String",
	BoolKind:   "Bool",
	IntKind:    "Int",
	FloatKind:  "Float",
	BytesKind:  "Bytes",
	ListKind:   "List",
	MapKind:    "Map",
}

func (k Kind) String() string {
	s, ok := kindNames[k]
	if ok {
		return s
	}
	return "<unknown kind>"
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(d []byte) error {
	for kk, s := range kindNames {
		if s == string(d) {
			*k = kk
			return nil
		}
	}
	return fmt.Errorf("unrecognized kind %q", d)
}

// IsScalar reports whether values of kind k carry no children.
func (k Kind) IsScalar() bool {
	switch k {
	case StringKind, BoolKind, IntKind, FloatKind, BytesKind:
		return true
	default:
		return false
	}
}

// IsContainer reports whether values of kind k hold child nodes.
func (k Kind) IsContainer() bool {
	return k == ListKind || k == MapKind
}
