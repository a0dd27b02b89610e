package navmap

// ContentType classifies what the robot believes occupies one map cell. The
// numeric codes are part of the robot's wire protocol and are transmitted
// as-is, so they are pinned here explicitly and must never be renumbered.
type ContentType uint8

// All known cell classifications.
const (
	ContentUnknown                   = ContentType(0)
	ContentClearOfObstacle           = ContentType(1)
	ContentClearOfCliff              = ContentType(2)
	ContentObstacleCube              = ContentType(3)
	ContentObstacleProximity         = ContentType(4)
	ContentObstacleProximityExplored = ContentType(5)
	ContentObstacleUnrecognized      = ContentType(6)
	ContentCliff                     = ContentType(7)
	ContentInterestingEdge           = ContentType(8)
	ContentNonInterestingEdge        = ContentType(9)
)

var contentTypeNames = map[ContentType]string{
	ContentUnknown:                   "Unknown",
	ContentClearOfObstacle:           "ClearOfObstacle",
	ContentClearOfCliff:              "ClearOfCliff",
	ContentObstacleCube:              "ObstacleCube",
	ContentObstacleProximity:         "ObstacleProximity",
	ContentObstacleProximityExplored: "ObstacleProximityExplored",
	ContentObstacleUnrecognized:      "ObstacleUnrecognized",
	ContentCliff:                     "Cliff",
	ContentInterestingEdge:           "InterestingEdge",
	ContentNonInterestingEdge:        "NonInterestingEdge",
}

// Valid reports whether the code is a known cell classification.
func (c ContentType) Valid() bool {
	_, ok := contentTypeNames[c]
	return ok
}

func (c ContentType) String() string {
	if name, ok := contentTypeNames[c]; ok {
		return name
	}
	return "ContentType(?)"
}
