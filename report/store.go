package report

import (
	"encoding/binary"
	"errors"
	"slices"

	"github.com/named-data/lfq/bench"
)

var ErrEmptyKind = errors.New("report kind must not be empty")

// Store keeps the history of benchmark reports.
type Store interface {
	// Put appends a report to the history of its kind
	Put(r *bench.Report) error
	// List returns up to limit reports of a kind, newest first.
	// An empty kind lists every report; limit <= 0 means no limit.
	List(kind string, limit int) ([]*bench.Report, error)
	// Close releases the store
	Close() error
}

// startBytes is the length of the encoded start time in a key.
const startBytes = 8

// reportKey is kind/<start time>, so that keys of one kind sort by start
// time. The time is big-endian nanoseconds with the sign bit flipped, which
// keeps times before the epoch in order too.
func reportKey(r *bench.Report) ([]byte, error) {
	if r.Kind == "" {
		return nil, ErrEmptyKind
	}
	key := make([]byte, 0, len(r.Kind)+1+startBytes)
	key = append(key, r.Kind...)
	key = append(key, '/')
	key = binary.BigEndian.AppendUint64(key, uint64(r.Start.UnixNano())^(1<<63))
	return key, nil
}

// kindPrefix is the key prefix shared by every report of kind.
func kindPrefix(kind string) []byte {
	if kind == "" {
		return nil
	}
	return append([]byte(kind), '/')
}

// lastKey is the largest key a report of kind can have.
func lastKey(kind string) []byte {
	key := kindPrefix(kind)
	for range startBytes {
		key = append(key, 0xFF)
	}
	return key
}

func sortNewestFirst(reports []*bench.Report) {
	slices.SortStableFunc(reports, func(a, b *bench.Report) int {
		return b.Start.Compare(a.Start)
	})
}
