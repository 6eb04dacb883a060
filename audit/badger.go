package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// Badger stores entries in a BadgerDB under "msg:{channel}:{id}" with the id
// zero-padded to 20 digits, so a prefix scan yields a channel in id order.
type Badger struct {
	db *badger.DB
}

// OpenBadger opens (or creates) a Badger sink in dir.
func OpenBadger(dir string) (*Badger, error) {
	db, err := badger.Open(badger.DefaultOptions(dir).WithLoggingLevel(badger.ERROR))
	if err != nil {
		return nil, fmt.Errorf("opening badger: %w", err)
	}
	return NewBadger(db), nil
}

// NewBadger wraps an already open database. Close closes db.
func NewBadger(db *badger.DB) *Badger {
	return &Badger{db: db}
}

func badgerKey(channel string, id int64) []byte {
	return fmt.Appendf(nil, "msg:%s:%020d", channel, id)
}

func (b *Badger) Record(_ context.Context, e Entry) error {
	value, err := json.Marshal(newRecord(e))
	if err != nil {
		return fmt.Errorf("encoding audit record: %w", err)
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(badgerKey(e.Message.Channel, e.Message.ID), value)
	})
}

// Entries returns the audited entries of channel in ascending id order.
func (b *Badger) Entries(channel string) ([]Entry, error) {
	var entries []Entry
	err := b.db.View(func(txn *badger.Txn) error {
		prefix := fmt.Appendf(nil, "msg:%s:", channel)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var r record
				if err := json.Unmarshal(val, &r); err != nil {
					return err
				}
				// "msg:a:" also prefixes keys of a channel named "a:b".
				if r.Target == channel {
					entries = append(entries, r.entry())
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading audit entries: %w", err)
	}
	return entries, nil
}

func (b *Badger) Close() error {
	return b.db.Close()
}
