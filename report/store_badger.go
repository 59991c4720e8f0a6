package report

import (
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/named-data/lfq/bench"
	"github.com/named-data/lfq/std/log"
)

// BadgerStore is a Store persisted with badger.
type BadgerStore struct {
	db *badger.DB
}

func NewBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(badgerLogger{})
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) String() string {
	return "badger-store"
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func (s *BadgerStore) Put(r *bench.Report) error {
	key, err := reportKey(r)
	if err != nil {
		return err
	}
	val, err := json.Marshal(r)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, val)
	})
}

func (s *BadgerStore) List(kind string, limit int) (out []*bench.Report, err error) {
	prefix := kindPrefix(kind)
	out = []*bench.Report{}

	err = s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true // newest first
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		// reverse iteration starts at the last key not after the seek key;
		// without a kind it starts at the very last key
		if kind == "" {
			it.Rewind()
		} else {
			it.Seek(lastKey(kind))
		}
		for ; it.ValidForPrefix(prefix); it.Next() {
			r := &bench.Report{}
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, r)
			})
			if err != nil {
				return fmt.Errorf("corrupt report %q: %w", it.Item().Key(), err)
			}
			out = append(out, r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// an empty kind spans several prefixes, each sorted on its own
	if kind == "" {
		sortNewestFirst(out)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// badgerLogger forwards badger messages to the default logger.
type badgerLogger struct{}

func (badgerLogger) String() string {
	return "badger"
}

func (l badgerLogger) Errorf(f string, v ...any) {
	log.Error(l, fmt.Sprintf(f, v...))
}

func (l badgerLogger) Warningf(f string, v ...any) {
	log.Warn(l, fmt.Sprintf(f, v...))
}

func (l badgerLogger) Infof(f string, v ...any) {
	log.Debug(l, fmt.Sprintf(f, v...))
}

func (l badgerLogger) Debugf(f string, v ...any) {
	log.Trace(l, fmt.Sprintf(f, v...))
}
