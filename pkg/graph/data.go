package graph

import "github.com/chazu/joinery/pkg/join"

// ---------------------------------------------------------------------------
// Primitives
// ---------------------------------------------------------------------------

// BoxData is an axis-aligned box with its minimum corner at the origin.
type BoxData struct {
	Size Vec3 `json:"size"`
}

func (BoxData) nodeData() {}

// CylinderData is a Z-aligned cylinder centered on the origin.
type CylinderData struct {
	Height   float64 `json:"height"`
	Radius   float64 `json:"radius"`
	Segments int     `json:"segments,omitempty"`
}

func (CylinderData) nodeData() {}

// SphereData is a sphere centered on the origin.
type SphereData struct {
	Radius float64 `json:"radius"`
}

func (SphereData) nodeData() {}

// ---------------------------------------------------------------------------
// Transform
// ---------------------------------------------------------------------------

// TransformData represents a spatial transformation applied to a child node.
// Created by the (place ...) form. Rotation is applied before translation.
type TransformData struct {
	Translation *Vec3 `json:"translation,omitempty"`
	Rotation    *Vec3 `json:"rotation,omitempty"` // Euler angles in degrees
}

func (TransformData) nodeData() {}

// ---------------------------------------------------------------------------
// Group
// ---------------------------------------------------------------------------

// GroupData represents a logical grouping. Its solid is the compound of
// its children. Created by the (assembly ...) form.
type GroupData struct {
	Description string `json:"description,omitempty"`
}

func (GroupData) nodeData() {}

// ---------------------------------------------------------------------------
// Join
// ---------------------------------------------------------------------------

// JoinData holds the parameters of a join feature. Base and Tool are also
// the node's first and second children.
type JoinData struct {
	Mode       join.Mode             `json:"mode"`
	Base       NodeID                `json:"base"`
	Tool       NodeID                `json:"tool"`
	Refine     bool                  `json:"refine"`
	Degenerate join.DegeneratePolicy `json:"degenerate"`
}

func (JoinData) nodeData() {}
