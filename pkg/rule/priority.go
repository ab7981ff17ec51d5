package rule

import (
	"fmt"
	"strconv"
	"strings"
)

// Priority orders rules by severity. Numerically lower is more severe.
type Priority int

// Priority bounds.
const (
	HighestPriority Priority = 1
	LowestPriority  Priority = 5
)

// Valid reports whether p lies within the supported range.
func (p Priority) Valid() bool {
	return p >= HighestPriority && p <= LowestPriority
}

func (p Priority) String() string {
	return strconv.Itoa(int(p))
}

// ParsePriority parses the integer text of a <priority> element. Values
// outside HighestPriority..LowestPriority are rejected.
func ParsePriority(s string) (Priority, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid priority %q: %w", s, err)
	}
	p := Priority(n)
	if !p.Valid() {
		return 0, fmt.Errorf("priority %d out of range %d-%d", n, int(HighestPriority), int(LowestPriority))
	}
	return p, nil
}
