// Package ids mints the opaque identifiers the outline graph is built on:
// node ids, canonical edge ids, and the derived edge-instance ids used only
// inside snapshots.
//
// Canonical ids are backed by github.com/google/uuid so that two processes
// minting ids concurrently never collide. Instance ids are a pure,
// deterministic function of an ancestor projection id and a canonical child
// edge id; they must never collide with a freshly-minted canonical id, so
// they carry a recognizable "mi:" prefix no UUID string can produce.
package ids

import (
	"crypto/sha256"
	"encoding/base64"

	"github.com/google/uuid"
)

// NodeID uniquely identifies a node record.
type NodeID string

// EdgeID identifies a placement of a node under a parent. It is either a
// canonical id (minted by NewEdgeID) or a synthetic instance id (minted by
// EdgeInstanceID) recognizable by its "mi:" prefix.
type EdgeID string

// instancePrefix marks an EdgeID as synthetic. A UUID's canonical textual
// form is 36 characters of hex digits and hyphens and can never start with
// this prefix, so canonical and instance ids never collide.
const instancePrefix = "mi:"

// NewNodeID mints a fresh, globally unique node id.
func NewNodeID() NodeID {
	return NodeID(uuid.New().String())
}

// NewEdgeID mints a fresh, globally unique canonical edge id.
func NewEdgeID() EdgeID {
	return EdgeID(uuid.New().String())
}

// IsInstance reports whether id was produced by EdgeInstanceID rather than
// NewEdgeID.
func IsInstance(id EdgeID) bool {
	return len(id) > len(instancePrefix) && string(id[:len(instancePrefix)]) == instancePrefix
}

// EdgeInstanceID deterministically derives a synthetic edge-instance id from
// an ancestor projection id and a canonical child edge id. The composition
// is injective over (ancestorProjectionID, canonicalChildID) pairs: the two
// components are separated by a byte (0x00) that cannot appear in either
// input's UTF-8 encoding of a well-formed id, so no two distinct pairs can
// hash to the same pre-image collision class by construction, only by the
// (practically negligible) collision resistance of SHA-256 itself.
//
// The result is stable: given the same two inputs, two independent processes
// always produce the same output, satisfying the snapshot determinism
// requirement (spec §4.7, P7).
func EdgeInstanceID(ancestorProjectionID EdgeID, canonicalChildID EdgeID) EdgeID {
	h := sha256.New()
	h.Write([]byte(ancestorProjectionID))
	h.Write([]byte{0})
	h.Write([]byte(canonicalChildID))
	sum := h.Sum(nil)
	return EdgeID(instancePrefix + base64.RawURLEncoding.EncodeToString(sum))
}
