package l2field

import "fmt"

// MarkerID identifies a fixed landmark on or around the pitch.
type MarkerID int

const (
	MarkerUnknown MarkerID = iota

	GoalL
	GoalR

	FlagC
	FlagCT
	FlagCB

	FlagLT
	FlagLB
	FlagRT
	FlagRB

	FlagPLT
	FlagPLC
	FlagPLB
	FlagPRT
	FlagPRC
	FlagPRB

	FlagGLT
	FlagGLB
	FlagGRT
	FlagGRB

	FlagTL50
	FlagTL40
	FlagTL30
	FlagTL20
	FlagTL10
	FlagT0
	FlagTR10
	FlagTR20
	FlagTR30
	FlagTR40
	FlagTR50

	FlagBL50
	FlagBL40
	FlagBL30
	FlagBL20
	FlagBL10
	FlagB0
	FlagBR10
	FlagBR20
	FlagBR30
	FlagBR40
	FlagBR50

	FlagLT30
	FlagLT20
	FlagLT10
	FlagL0
	FlagLB10
	FlagLB20
	FlagLB30

	FlagRT30
	FlagRT20
	FlagRT10
	FlagR0
	FlagRB10
	FlagRB20
	FlagRB30

	markerCount
)

// MarkerCount is the number of identified landmarks (MarkerUnknown excluded).
const MarkerCount = int(markerCount) - 1

var markerNames = [markerCount]string{
	MarkerUnknown: "f",

	GoalL: "g l",
	GoalR: "g r",

	FlagC:  "f c",
	FlagCT: "f c t",
	FlagCB: "f c b",

	FlagLT: "f l t",
	FlagLB: "f l b",
	FlagRT: "f r t",
	FlagRB: "f r b",

	FlagPLT: "f p l t",
	FlagPLC: "f p l c",
	FlagPLB: "f p l b",
	FlagPRT: "f p r t",
	FlagPRC: "f p r c",
	FlagPRB: "f p r b",

	FlagGLT: "f g l t",
	FlagGLB: "f g l b",
	FlagGRT: "f g r t",
	FlagGRB: "f g r b",

	FlagTL50: "f t l 50",
	FlagTL40: "f t l 40",
	FlagTL30: "f t l 30",
	FlagTL20: "f t l 20",
	FlagTL10: "f t l 10",
	FlagT0:   "f t 0",
	FlagTR10: "f t r 10",
	FlagTR20: "f t r 20",
	FlagTR30: "f t r 30",
	FlagTR40: "f t r 40",
	FlagTR50: "f t r 50",

	FlagBL50: "f b l 50",
	FlagBL40: "f b l 40",
	FlagBL30: "f b l 30",
	FlagBL20: "f b l 20",
	FlagBL10: "f b l 10",
	FlagB0:   "f b 0",
	FlagBR10: "f b r 10",
	FlagBR20: "f b r 20",
	FlagBR30: "f b r 30",
	FlagBR40: "f b r 40",
	FlagBR50: "f b r 50",

	FlagLT30: "f l t 30",
	FlagLT20: "f l t 20",
	FlagLT10: "f l t 10",
	FlagL0:   "f l 0",
	FlagLB10: "f l b 10",
	FlagLB20: "f l b 20",
	FlagLB30: "f l b 30",

	FlagRT30: "f r t 30",
	FlagRT20: "f r t 20",
	FlagRT10: "f r t 10",
	FlagR0:   "f r 0",
	FlagRB10: "f r b 10",
	FlagRB20: "f r b 20",
	FlagRB30: "f r b 30",
}

var markerByName = func() map[string]MarkerID {
	m := make(map[string]MarkerID, markerCount)
	for id, name := range markerNames {
		m[name] = MarkerID(id)
	}
	m["g"] = MarkerUnknown
	m["F"] = MarkerUnknown
	m["G"] = MarkerUnknown
	return m
}()

// String returns the simulator name, e.g. "f r 0".
func (id MarkerID) String() string {
	if id < 0 || id >= markerCount {
		return fmt.Sprintf("MarkerID(%d)", int(id))
	}
	return markerNames[id]
}

// Valid reports whether id names a known landmark.
func (id MarkerID) Valid() bool {
	return id > MarkerUnknown && id < markerCount
}

// IsGoal reports whether id is one of the two goal landmarks.
func (id MarkerID) IsGoal() bool {
	return id == GoalL || id == GoalR
}

// ParseMarkerID maps a simulator object name to a MarkerID. Unidentified
// flag or goal names ("f", "g", "F", "G") map to MarkerUnknown.
func ParseMarkerID(name string) (MarkerID, error) {
	id, ok := markerByName[name]
	if !ok {
		return MarkerUnknown, fmt.Errorf("%w: %q", ErrUnknownMarker, name)
	}
	return id, nil
}

// LineID identifies one of the four boundary lines.
type LineID int

const (
	LineUnknown LineID = iota
	LineLeft
	LineRight
	LineTop
	LineBottom
)

var lineNames = map[LineID]string{
	LineUnknown: "l",
	LineLeft:    "l l",
	LineRight:   "l r",
	LineTop:     "l t",
	LineBottom:  "l b",
}

func (id LineID) String() string {
	if s, ok := lineNames[id]; ok {
		return s
	}
	return fmt.Sprintf("LineID(%d)", int(id))
}

// ParseLineID maps a simulator line name ("l l", "l r", "l t", "l b").
func ParseLineID(name string) (LineID, error) {
	for id, s := range lineNames {
		if s == name && id != LineUnknown {
			return id, nil
		}
	}
	return LineUnknown, fmt.Errorf("unknown line %q", name)
}
