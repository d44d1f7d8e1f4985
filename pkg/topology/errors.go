package topology

import (
	"errors"
	"fmt"
)

// ErrMalformedMesh is the sentinel matched by every MalformedMeshError.
var ErrMalformedMesh = errors.New("malformed mesh")

// ElementKind names the kind of mesh element a finding refers to.
type ElementKind int

const (
	ElementVertex ElementKind = iota
	ElementEdge
	ElementFace
)

func (k ElementKind) String() string {
	switch k {
	case ElementVertex:
		return "vertex"
	case ElementEdge:
		return "edge"
	case ElementFace:
		return "face"
	default:
		return fmt.Sprintf("ElementKind(%d)", int(k))
	}
}

// MalformedMeshError reports a referential-integrity violation that makes
// the mesh impossible to index: a face or edge referencing a nonexistent
// vertex, an edge without two distinct endpoints, or a duplicated ID.
type MalformedMeshError struct {
	Kind    ElementKind
	ID      int
	Message string
}

func (e *MalformedMeshError) Error() string {
	return fmt.Sprintf("%s: %s %d: %s", ErrMalformedMesh, e.Kind, e.ID, e.Message)
}

// Unwrap lets errors.Is match ErrMalformedMesh.
func (e *MalformedMeshError) Unwrap() error {
	return ErrMalformedMesh
}

func malformed(kind ElementKind, id int, format string, args ...any) error {
	return &MalformedMeshError{Kind: kind, ID: id, Message: fmt.Sprintf(format, args...)}
}
