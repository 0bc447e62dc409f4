package hostenv

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is an interpreter release number.
type Version struct {
	Major int
	Minor int
	Patch int
}

// MinimumInterpreter is the oldest interpreter the application runs on.
var MinimumInterpreter = Version{Major: 3, Minor: 7}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Less reports whether v sorts before o.
func (v Version) Less(o Version) bool {
	if v.Major != o.Major {
		return v.Major < o.Major
	}
	if v.Minor != o.Minor {
		return v.Minor < o.Minor
	}
	return v.Patch < o.Patch
}

// ParseVersion extracts a version from interpreter output such as
// "Python 3.11.4" or a bare "3.9".
func ParseVersion(text string) (Version, error) {
	parts := numericParts(firstLine(strings.TrimSpace(text)))
	if len(parts) < 2 {
		return Version{}, fmt.Errorf("parse version %q: expected major.minor", strings.TrimSpace(text))
	}
	v := Version{Major: parts[0], Minor: parts[1]}
	if len(parts) > 2 {
		v.Patch = parts[2]
	}
	return v, nil
}

func firstLine(text string) string {
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		return text[:idx]
	}
	return text
}

func numericParts(version string) []int {
	var parts []int
	current := strings.Builder{}
	for _, r := range version {
		if r >= '0' && r <= '9' {
			current.WriteRune(r)
			continue
		}
		if current.Len() > 0 {
			val, _ := strconv.Atoi(current.String())
			parts = append(parts, val)
			current.Reset()
		}
	}
	if current.Len() > 0 {
		val, _ := strconv.Atoi(current.String())
		parts = append(parts, val)
	}
	return parts
}
