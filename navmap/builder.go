package navmap

import (
	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// nodeBuilder carries the construction-phase state for one node while a
// Grid is reconstructed from a flat write list: which quadrant child is
// still accepting writes and whether a leaf's content was already assigned.
// None of this survives onto the finished tree; once every write has been
// consumed the GridNode tree is logically immutable.
type nodeBuilder struct {
	node       *GridNode
	children   [4]*nodeBuilder
	nextChild  int
	contentSet bool
}

// addWrite routes one leaf write into the subtree rooted at this node,
// materializing children on demand. It reports whether the subtree is now
// full and its parent should stop routing writes here. Malformed entries
// are returned as errors but never corrupt the tree: a clobbered leaf takes
// the last write, anything else is dropped.
func (b *nodeBuilder) addWrite(w LeafWrite) (bool, error) {
	n := b.node
	if w.Depth > n.depth {
		// A write can only terminate at or below the node it reaches; in a
		// well-formed stream this never happens.
		return false, errors.Errorf("write depth %d exceeds node depth %d", w.Depth, n.depth)
	}

	if w.Depth == n.depth {
		var err error
		if b.contentSet {
			err = errors.Errorf("clobbering content %s of leaf at (%.1f, %.1f) with %s",
				n.content, n.center.X, n.center.Y, w.Content)
		}
		n.content = w.Content
		b.contentSet = true
		return true, err
	}

	if n.children == nil {
		if b.contentSet {
			// already terminated as a leaf; a leaf never subdivides
			return true, errors.Errorf("more writes than a complete quad tree holds at depth %d node (%.1f, %.1f)",
				n.depth, n.center.X, n.center.Y)
		}
		b.split()
	}
	if b.nextChild > 3 {
		return true, errors.Errorf("more writes than a complete quad tree holds at depth %d node (%.1f, %.1f)",
			n.depth, n.center.X, n.center.Y)
	}

	full, err := b.children[b.nextChild].addWrite(w)
	if full {
		b.nextChild++
	}
	return b.nextChild > 3, err
}

// split materializes the node's four children at half its size, centers
// offset by a quarter of its size per the fixed quadrant ordering.
func (b *nodeBuilder) split() {
	n := b.node
	childDepth := n.depth - 1
	childSize := n.size / 2
	offset := n.size / 4

	quadrants := [4]r3.Vector{
		{X: n.center.X + offset, Y: n.center.Y + offset, Z: n.center.Z},
		{X: n.center.X + offset, Y: n.center.Y - offset, Z: n.center.Z},
		{X: n.center.X - offset, Y: n.center.Y + offset, Z: n.center.Z},
		{X: n.center.X - offset, Y: n.center.Y - offset, Z: n.center.Z},
	}

	n.children = make([]*GridNode, len(quadrants))
	for i, center := range quadrants {
		child := &GridNode{
			depth:  childDepth,
			size:   childSize,
			center: center,
			parent: n,
		}
		n.children[i] = child
		b.children[i] = &nodeBuilder{node: child}
	}
}

// BuildGrid reconstructs an immutable Grid from one update message by
// feeding every leaf write through the quad tree in stream order. The write
// list is the depth-first preorder leaf sequence of a complete quad tree,
// so the implicit position of each write depends on the cumulative fill
// state of its ancestors; order is load bearing.
//
// Malformed entries (a write deeper in the stream than its node allows, an
// overflowing quadrant cursor, a leaf written twice) are logged and
// collected, and reconstruction continues with the last write winning. The
// returned Grid is usable even when the returned error is non-nil; a nil
// Grid is only returned for invalid root metadata.
func BuildGrid(u *Update, logger golog.Logger) (*Grid, error) {
	if u.RootSize <= 0 {
		return nil, errors.Errorf("invalid side length (%.2f) for nav map grid", u.RootSize)
	}
	if u.RootDepth < 0 {
		return nil, errors.Errorf("invalid root depth (%d) for nav map grid", u.RootDepth)
	}

	root := &GridNode{
		depth:  u.RootDepth,
		size:   u.RootSize,
		center: u.RootCenter,
	}
	builder := &nodeBuilder{node: root}

	var anomalies error
	for i, w := range u.Writes {
		if _, err := builder.addWrite(w); err != nil {
			logger.Warnf("malformed nav map update entry %d: %s", i, err)
			anomalies = multierr.Append(anomalies, errors.Wrapf(err, "entry %d", i))
		}
	}

	return &Grid{originID: u.OriginID, root: root}, anomalies
}
