package lov

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// RowIDs hands out client-only row identifiers for one form session.
type RowIDs interface {
	Next() string
}

// UUIDRowIDs allocates random row identifiers. They stay unique across
// requests, which matters because rows survive form round-trips.
type UUIDRowIDs struct{}

// Next returns a fresh identifier.
func (UUIDRowIDs) Next() string {
	return "row-" + uuid.NewString()
}

// SequenceRowIDs allocates monotonic identifiers with a fixed prefix.
type SequenceRowIDs struct {
	Prefix string
	seq    atomic.Int64
}

// Next returns the next identifier in the sequence.
func (s *SequenceRowIDs) Next() string {
	prefix := s.Prefix
	if prefix == "" {
		prefix = "row-"
	}
	return prefix + strconv.FormatInt(s.seq.Add(1), 10)
}
