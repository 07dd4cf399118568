package index

import (
	"fmt"
	"strings"
)

type DocumentStatus int

const (
	StatusActual DocumentStatus = iota
	StatusIrrelevant
	StatusBanned
	StatusRemoved
)

var statusNames = [...]string{
	StatusActual:     "ACTUAL",
	StatusIrrelevant: "IRRELEVANT",
	StatusBanned:     "BANNED",
	StatusRemoved:    "REMOVED",
}

func (s DocumentStatus) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("DocumentStatus(%d)", int(s))
	}
	return statusNames[s]
}

// ParseStatus maps a status name (case-insensitive) to its value. An empty
// name is ACTUAL.
func ParseStatus(name string) (DocumentStatus, error) {
	if name == "" {
		return StatusActual, nil
	}
	upper := strings.ToUpper(name)
	for i, n := range statusNames {
		if n == upper {
			return DocumentStatus(i), nil
		}
	}
	return StatusActual, fmt.Errorf("unknown document status %q", name)
}

func (s DocumentStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *DocumentStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// DocumentRecord is the per-document data kept next to the postings.
type DocumentRecord struct {
	Rating int
	Status DocumentStatus
}

// AverageRating is the integer mean of ratings, truncated toward zero.
func AverageRating(ratings []int) int {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	return sum / len(ratings)
}
