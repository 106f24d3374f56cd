package node

import (
	"errors"
	"fmt"
)

var (
	// ErrStructuralMismatch is returned when a write would turn a node
	// holding real content into a container of a different kind.
	ErrStructuralMismatch = errors.New("structural mismatch")

	// ErrUnsupportedValue is returned by Set for Go values with no tree
	// representation.
	ErrUnsupportedValue = errors.New("unsupported value")

	ErrBadPath = errors.New("bad path")
)

// MismatchError reports a write through a node whose parent holds content
// incompatible with the key used to reach it.
type MismatchError struct {
	Path   Path
	Have   Kind
	Want   Kind
	Reason string
}

func (e *MismatchError) Error() string {
	msg := e.Reason
	if msg == "" {
		msg = fmt.Sprintf("cannot use %s node as %s", e.Have, e.Want)
	}
	if len(e.Path) == 0 {
		return fmt.Sprintf("structural mismatch at root: %s", msg)
	}
	return fmt.Sprintf("structural mismatch at %s: %s", e.Path, msg)
}

func (e *MismatchError) Unwrap() error {
	return ErrStructuralMismatch
}
