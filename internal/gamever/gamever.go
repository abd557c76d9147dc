// Package gamever defines the target game version enum and the lightweight
// comment sniffer that resolves it from source text. The analysis core only
// consumes the enum; the sniffer runs before the pipeline.
package gamever

import "regexp"

// Version selects which engine's built-in tables are in effect.
type Version int

const (
	Both Version = iota // no tag found: accept the union of both games
	K1                  // Knights of the Old Republic
	K2                  // The Sith Lords
)

func (v Version) String() string {
	switch v {
	case K1:
		return "kotor1"
	case K2:
		return "kotor2"
	default:
		return "both"
	}
}

// Includes reports whether a built-in available in avail is visible when
// analyzing for v.
func (v Version) Includes(avail Version) bool {
	if v == Both || avail == Both {
		return true
	}
	return v == avail
}

// Comment tags accepted anywhere in the file, e.g.:
//
//	// KOTOR:1
//	// kotor2
//	// target: tsl
var (
	k1Pattern = regexp.MustCompile(`(?im)^\s*//.*\b(?:kotor\s*:?\s*1|k1)\b`)
	k2Pattern = regexp.MustCompile(`(?im)^\s*//.*\b(?:kotor\s*:?\s*2|k2|tsl)\b`)
)

// Sniff scans source comments for a target-version tag. When both tags (or
// neither) appear, the result is Both.
func Sniff(source string) Version {
	k1 := k1Pattern.MatchString(source)
	k2 := k2Pattern.MatchString(source)
	switch {
	case k1 && !k2:
		return K1
	case k2 && !k1:
		return K2
	default:
		return Both
	}
}
