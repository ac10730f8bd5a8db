package graph

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// NodeID identifies a node. It is the SHA-256 of the node's construction
// path, so re-evaluating the same source yields the same IDs.
type NodeID [32]byte

// ZeroID is the unset NodeID.
var ZeroID NodeID

// NewNodeID derives a NodeID from a construction path such as "defpart/base".
func NewNodeID(path string) NodeID {
	return NodeID(sha256.Sum256([]byte(path)))
}

func (id NodeID) String() string { return hex.EncodeToString(id[:]) }

// Short returns the first 12 hex characters, for messages.
func (id NodeID) Short() string { return id.String()[:12] }

func (id NodeID) IsZero() bool { return id == ZeroID }

func (id NodeID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *NodeID) UnmarshalText(b []byte) error {
	return decodeHash((*[32]byte)(id), b)
}

// ContentHash summarizes a node's geometry-relevant content together with
// the content of everything below it.
type ContentHash [32]byte

func (h ContentHash) String() string { return hex.EncodeToString(h[:]) }
func (h ContentHash) Short() string  { return h.String()[:12] }
func (h ContentHash) IsZero() bool   { return h == ContentHash{} }

func (h ContentHash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *ContentHash) UnmarshalText(b []byte) error {
	return decodeHash((*[32]byte)(h), b)
}

func decodeHash(dst *[32]byte, b []byte) error {
	if len(b) != hex.EncodedLen(len(dst)) {
		return fmt.Errorf("graph: hash must be %d hex characters, got %d", hex.EncodedLen(len(dst)), len(b))
	}
	_, err := hex.Decode(dst[:], b)
	return err
}
