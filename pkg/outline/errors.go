package outline

import "errors"

// Sentinel error kinds, matching spec.md §7. Callers compare with
// errors.Is; these are not exception classes, just typed causes, grounded
// on the teacher's var ErrNotFound = errors.New(...) style
// (_examples/straga-Mimir_lite/nornicdb/pkg/storage/types.go).
var (
	// ErrNodeMissing is returned when a referenced NodeID is unknown.
	ErrNodeMissing = errors.New("outline: node missing")
	// ErrEdgeMissing is returned when a referenced EdgeID is unknown.
	ErrEdgeMissing = errors.New("outline: edge missing")
	// ErrParentMissing is returned when a referenced parent NodeID is unknown.
	ErrParentMissing = errors.New("outline: parent missing")
	// ErrAlreadyExists is returned on an explicit id collision on create.
	ErrAlreadyExists = errors.New("outline: already exists")
	// ErrWouldCycle is returned when a requested parentage would create a cycle.
	ErrWouldCycle = errors.New("outline: would create a cycle")
	// ErrInvalidArgument covers malformed input that is not a missing-id or
	// cycle condition (empty or reserved tag label, invalid trigger, heading
	// level outside the configured bound, unsupported inline or colour
	// mark). Where the spec says an invalid segment index degrades to
	// a no-op instead, no error is returned at all.
	ErrInvalidArgument = errors.New("outline: invalid argument")
)
