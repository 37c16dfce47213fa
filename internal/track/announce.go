package track

import (
	"regexp"
	"strings"
)

// snapshotPattern matches a full player-list announcement: an optional
// leading count, "player"/"players"/"player(s)" wording, then a
// comma-separated name list. Matching is case-insensitive.
var snapshotPattern = regexp.MustCompile(`(?i)^(?:\d+\s+)?(?:connected\s+)?player(?:s|\(s\))?\s*:\s*(.*)$`)

// ParseSnapshot extracts the player names from a full-roster line.
// ok=false means the line is not a snapshot announcement.
func ParseSnapshot(line string) (names []string, ok bool) {
	m := snapshotPattern.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}
	list := strings.ReplaceAll(m[1], " ", "")
	for _, name := range strings.Split(list, ",") {
		if name != "" {
			names = append(names, name)
		}
	}
	return names, true
}

// ParseEvent extracts a single join/leave announcement of the form
// "*** <name> joined ..." / "*** <name> left ...".
func ParseEvent(line string) (name string, joined, ok bool) {
	if !strings.HasPrefix(line, "*** ") {
		return "", false, false
	}
	parts := strings.SplitN(line, " ", 4)
	if len(parts) < 3 {
		return "", false, false
	}
	switch parts[2] {
	case "joined":
		return parts[1], true, true
	case "left":
		return parts[1], false, true
	}
	return "", false, false
}
