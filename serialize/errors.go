package serialize

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/signadot/confnode/node"
)

var (
	// ErrNoSuitableSerializer is reported when no registry binding matches a
	// requested type, including nested element and field types.
	ErrNoSuitableSerializer = errors.New("no suitable serializer")

	// ErrRequiredValueAbsent is reported when a required value resolves to
	// a virtual node.
	ErrRequiredValueAbsent = errors.New("required value absent")

	// ErrTypeCoercion is reported when a node value cannot be converted to
	// the target type, including numeric overflow and unknown enum names.
	ErrTypeCoercion = errors.New("type coercion failure")

	// ErrCyclicStructure is reported when a load or save re-enters a
	// (type, instance) pair already being processed.
	ErrCyclicStructure = errors.New("cyclic structure")

	// ErrConstraintViolation is reported when a loaded field value fails
	// its declared constraint.
	ErrConstraintViolation = errors.New("constraint violation")
)

// Error is the error type returned by Session loads and saves. Kind is one
// of the sentinel errors of this package or node.ErrStructuralMismatch and
// is matched by errors.Is.
type Error struct {
	Kind    error
	Path    node.Path    // absolute path of the failing node
	Type    reflect.Type // type being loaded or saved, if known
	Message string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Kind != nil {
		b.WriteString(e.Kind.Error())
	} else {
		b.WriteString("serialization error")
	}
	if len(e.Path) == 0 {
		b.WriteString(" at root")
	} else {
		fmt.Fprintf(&b, " at %s", e.Path)
	}
	if e.Type != nil {
		fmt.Fprintf(&b, " (%s)", e.Type)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		msg := e.Err.Error()
		if e.Kind != nil {
			msg = strings.TrimPrefix(msg, e.Kind.Error())
			msg = strings.TrimPrefix(msg, ": ")
		}
		if msg != "" {
			b.WriteString(": ")
			b.WriteString(msg)
		}
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	res := make([]error, 0, 2)
	if e.Kind != nil {
		res = append(res, e.Kind)
	}
	if e.Err != nil {
		res = append(res, e.Err)
	}
	return res
}

var kinds = []error{
	ErrNoSuitableSerializer,
	ErrRequiredValueAbsent,
	ErrTypeCoercion,
	ErrCyclicStructure,
	ErrConstraintViolation,
	node.ErrStructuralMismatch,
}

// kindOf returns the sentinel err matches, or def.
func kindOf(err error, def error) error {
	for _, k := range kinds {
		if errors.Is(err, k) {
			return k
		}
	}
	return def
}
