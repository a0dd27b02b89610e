package navmap

import (
	"testing"

	"go.viam.com/test"
)

// The numeric codes are transmitted by the robot, not computed, so they are
// part of the wire contract and may never drift.
func TestContentTypeWireCodes(t *testing.T) {
	test.That(t, ContentUnknown, test.ShouldEqual, ContentType(0))
	test.That(t, ContentClearOfObstacle, test.ShouldEqual, ContentType(1))
	test.That(t, ContentClearOfCliff, test.ShouldEqual, ContentType(2))
	test.That(t, ContentObstacleCube, test.ShouldEqual, ContentType(3))
	test.That(t, ContentObstacleProximity, test.ShouldEqual, ContentType(4))
	test.That(t, ContentObstacleProximityExplored, test.ShouldEqual, ContentType(5))
	test.That(t, ContentObstacleUnrecognized, test.ShouldEqual, ContentType(6))
	test.That(t, ContentCliff, test.ShouldEqual, ContentType(7))
	test.That(t, ContentInterestingEdge, test.ShouldEqual, ContentType(8))
	test.That(t, ContentNonInterestingEdge, test.ShouldEqual, ContentType(9))
}

func TestContentTypeNames(t *testing.T) {
	test.That(t, ContentCliff.String(), test.ShouldEqual, "Cliff")
	test.That(t, ContentObstacleProximityExplored.String(), test.ShouldEqual, "ObstacleProximityExplored")
	test.That(t, ContentType(200).String(), test.ShouldEqual, "ContentType(?)")

	test.That(t, ContentUnknown.Valid(), test.ShouldBeTrue)
	test.That(t, ContentNonInterestingEdge.Valid(), test.ShouldBeTrue)
	test.That(t, ContentType(10).Valid(), test.ShouldBeFalse)
}
