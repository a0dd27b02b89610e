package navmap

import (
	"math"

	"github.com/golang/geo/r3"
)

// GridNode is one square cell of a navigation map quad tree. A node is
// either a leaf carrying a content classification or an internal node with
// exactly four children covering its quadrants. Children are kept in a fixed
// order matching the wire layout: index 0 is the (+X,+Y) quadrant, 1 is
// (+X,-Y), 2 is (-X,+Y) and 3 is (-X,-Y), relative to this node's center.
//
// Nodes are immutable once their Grid is built and are safe for concurrent
// reads.
type GridNode struct {
	depth    int
	size     float64
	center   r3.Vector
	content  ContentType
	children []*GridNode // nil for leaves, otherwise exactly 4
	parent   *GridNode   // non-owning back reference, nil at the root
}

// Depth returns the node's depth, 0 being the finest resolution and
// increasing toward the root.
func (n *GridNode) Depth() int {
	return n.depth
}

// Size returns the side length of the node's square in millimeters.
func (n *GridNode) Size() float64 {
	return n.size
}

// Center returns the center of the node's square. The Z component is only a
// display offset for rendering and plays no part in spatial queries.
func (n *GridNode) Center() r3.Vector {
	return n.center
}

// Content returns the cell classification for a leaf node. Internal nodes
// and leaves the stream never wrote report ContentUnknown.
func (n *GridNode) Content() ContentType {
	return n.content
}

// IsLeaf reports whether the node has no children.
func (n *GridNode) IsLeaf() bool {
	return n.children == nil
}

// Children returns the node's four children in quadrant order, or nil for a
// leaf. The returned slice must be treated as read-only.
func (n *GridNode) Children() []*GridNode {
	return n.children
}

// Parent returns the node one level up, or nil at the root.
func (n *GridNode) Parent() *GridNode {
	return n.parent
}

// ContainsPoint reports whether (x, y) falls within the node's square.
// Edges are inclusive.
func (n *GridNode) ContainsPoint(x, y float64) bool {
	halfSize := n.size / 2
	return math.Abs(n.center.X-x) <= halfSize && math.Abs(n.center.Y-y) <= halfSize
}

// NodeAt returns the leaf whose square contains (x, y), or nil if the point
// lies outside this node's square.
func (n *GridNode) NodeAt(x, y float64) *GridNode {
	return n.nodeAt(x, y, false)
}

func (n *GridNode) nodeAt(x, y float64, assumedInBounds bool) *GridNode {
	if !assumedInBounds && !n.ContainsPoint(x, y) {
		return nil
	}
	if n.children == nil {
		return n
	}
	// Exactly one child lies on the correct side of the center in each axis,
	// and once the parent contains the point that child contains it by
	// construction, so the containment check is skipped on the way down.
	idx := 0
	if x < n.center.X {
		idx += 2
	}
	if y < n.center.Y {
		idx++
	}
	return n.children[idx].nodeAt(x, y, true)
}

// ContentAt returns the classification of the leaf containing (x, y), or
// ContentUnknown if the point lies outside this node's square.
func (n *GridNode) ContentAt(x, y float64) ContentType {
	node := n.NodeAt(x, y)
	if node == nil {
		return ContentUnknown
	}
	return node.content
}
