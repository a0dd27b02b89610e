// Package navmap implements the robot's navigation memory map: a quad tree
// spatial index streamed from the robot as it explores, classifying terrain
// cells (clear, cliff, obstacle and so on) and answering point queries
// against the latest complete map snapshot.
package navmap

import (
	"github.com/golang/geo/r3"
)

// OriginID identifies the coordinate frame a map was built in. A map and a
// robot pose are only spatially comparable when their origin IDs are equal;
// callers must check this before overlaying data from different sources.
type OriginID uint32

// LeafWrite is one entry of an update message's flat leaf list: the content
// to write and the depth at which the write terminates as a leaf. Position
// is implicit from stream order, so entries must never be reordered.
type LeafWrite struct {
	Content ContentType
	Depth   int
}

// Update is one navigation map message as deserialized by the transport
// layer: the map's coordinate frame, the root cell's metadata and the
// depth-first preorder leaf sequence of the complete quad tree.
type Update struct {
	OriginID   OriginID
	RootDepth  int
	RootSize   float64
	RootCenter r3.Vector
	Writes     []LeafWrite
}

// Grid is one complete navigation map snapshot. It owns a reconstructed
// quad tree and is immutable after construction, so a reference to a Grid
// may be queried concurrently with feed processing.
type Grid struct {
	originID OriginID
	root     *GridNode
}

// OriginID returns the coordinate frame the map was built in.
func (g *Grid) OriginID() OriginID {
	return g.originID
}

// Root returns the root node of the map's quad tree.
func (g *Grid) Root() *GridNode {
	return g.root
}

// Size returns the side length of the full map square in millimeters.
func (g *Grid) Size() float64 {
	return g.root.size
}

// Center returns the center of the full map square.
func (g *Grid) Center() r3.Vector {
	return g.root.center
}

// ContainsPoint reports whether (x, y) falls within the map's bounds.
func (g *Grid) ContainsPoint(x, y float64) bool {
	return g.root.ContainsPoint(x, y)
}

// NodeAt returns the leaf whose square contains (x, y), or nil if the point
// lies outside the map.
func (g *Grid) NodeAt(x, y float64) *GridNode {
	return g.root.NodeAt(x, y)
}

// ContentAt returns the classification of the cell containing (x, y), or
// ContentUnknown if the point lies outside the map.
func (g *Grid) ContentAt(x, y float64) ContentType {
	return g.root.ContentAt(x, y)
}
