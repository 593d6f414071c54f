package dom

import (
	"strconv"
	"strings"
)

// Capacity is a parsed "current / max" source counter.
type Capacity struct {
	Current int
	Max     int
}

// Full reports whether no more sources can be added.
func (c Capacity) Full() bool {
	return c.Current >= c.Max
}

// ParseCapacity reads a counter such as "50 / 50" or "12/50 sources".
// Each side is stripped of non-digits; ok is false when the text does not
// split into exactly two sides or either side has no digits.
func ParseCapacity(text string) (Capacity, bool) {
	parts := strings.Split(text, "/")
	if len(parts) != 2 {
		return Capacity{}, false
	}
	current, ok := digits(parts[0])
	if !ok {
		return Capacity{}, false
	}
	max, ok := digits(parts[1])
	if !ok {
		return Capacity{}, false
	}
	return Capacity{Current: current, Max: max}, true
}

func digits(s string) (int, bool) {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(b.String())
	if err != nil {
		return 0, false
	}
	return n, true
}
