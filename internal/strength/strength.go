// Package strength scores candidate passwords for the strength meter.
package strength

import (
	"strings"
	"unicode/utf8"
)

// Label classifies a score.
type Label int

const (
	None Label = iota
	Weak
	Medium
	Strong
	VeryStrong
)

// String returns the text shown next to the meter.
func (l Label) String() string {
	switch l {
	case Weak:
		return "Weak"
	case Medium:
		return "Medium"
	case Strong:
		return "Strong"
	case VeryStrong:
		return "Very Strong"
	default:
		return "None"
	}
}

// Score is the derived strength of a candidate.
type Score struct {
	Percent int
	Label   Label
}

const (
	lengthShort   = 8
	lengthLong    = 12
	pointsShort   = 25
	pointsLong    = 15
	pointsClass   = 15
	maxPercent    = 100
	mediumAtLeast = 40
	strongAtLeast = 70
	veryAtLeast   = 90
)

// Of scores candidate. It is pure and cheap enough to run on every keystroke.
//
// The raw sum can reach 115; it is clamped to 100 and the label is derived
// from the clamped value.
func Of(candidate string) Score {
	if candidate == "" {
		return Score{Percent: 0, Label: None}
	}

	points := 0
	n := utf8.RuneCountInString(candidate)
	if n >= lengthShort {
		points += pointsShort
	}
	if n >= lengthLong {
		points += pointsLong
	}

	var lower, upper, digit, other bool
	for _, r := range candidate {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		default:
			other = true
		}
	}
	for _, has := range []bool{lower, upper, digit, other} {
		if has {
			points += pointsClass
		}
	}

	points = min(points, maxPercent)
	return Score{Percent: points, Label: labelFor(points)}
}

func labelFor(percent int) Label {
	switch {
	case percent < mediumAtLeast:
		return Weak
	case percent < strongAtLeast:
		return Medium
	case percent < veryAtLeast:
		return Strong
	default:
		return VeryStrong
	}
}

// Bar renders the percentage as a fixed-width meter, e.g. "██████░░░░".
func (s Score) Bar(width int) string {
	if width <= 0 {
		return ""
	}
	filled := s.Percent * width / maxPercent
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// String formats the score like the dashboard label.
func (s Score) String() string {
	return "Password Strength: " + s.Label.String()
}
