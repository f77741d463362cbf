package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	badger "github.com/dgraph-io/badger/v4"
)

const badgerSep = ":"

// Badger is a Store backed by BadgerDB v4, the local on-disk cache.
type Badger struct {
	db *badger.DB
}

// BadgerOptions configures the BadgerDB store.
type BadgerOptions struct {
	// Dir is the directory for BadgerDB data files. Required unless
	// InMemory is set.
	Dir string

	// InMemory runs BadgerDB without disk persistence. Useful for testing
	// against the real engine.
	InMemory bool

	// Logger receives badger's internal log output. Defaults to
	// slog.Default.
	Logger *slog.Logger
}

// NewBadger opens a BadgerDB-backed Store.
func NewBadger(opts BadgerOptions) (*Badger, error) {
	if !opts.InMemory && opts.Dir == "" {
		return nil, errors.New("cache: BadgerOptions.Dir is required for on-disk mode")
	}
	dbOpts := badger.DefaultOptions(opts.Dir)
	if opts.InMemory {
		dbOpts = dbOpts.WithInMemory(true)
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	dbOpts = dbOpts.WithLogger(badgerLogger{log: log})
	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, err
	}
	return &Badger{db: db}, nil
}

func (b *Badger) Get(_ context.Context, key Key) ([]byte, error) {
	k := []byte(key.join(badgerSep))
	var val []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(k)
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrMiss
	}
	return val, err
}

func (b *Badger) Put(_ context.Context, key Key, audio []byte) error {
	k := []byte(key.join(badgerSep))
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(k, audio)
	})
}

func (b *Badger) Delete(_ context.Context, key Key) error {
	k := []byte(key.join(badgerSep))
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(k)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	return err
}

func (b *Badger) EvictSection(_ context.Context, document, section string) error {
	prefix := []byte(sectionPrefix(document, section, badgerSep))
	var keys [][]byte
	err := b.db.View(func(txn *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.PrefetchValues = false
		iterOpts.Prefix = prefix
		it := txn.NewIterator(iterOpts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return err
	}

	wb := b.db.NewWriteBatch()
	defer wb.Cancel()
	for _, k := range keys {
		if err := wb.Delete(k); err != nil {
			return err
		}
	}
	return wb.Flush()
}

func (b *Badger) Close() error {
	return b.db.Close()
}

// badgerLogger adapts slog to badger.Logger. Badger formats include a
// trailing newline, stripped here.
type badgerLogger struct {
	log *slog.Logger
}

func (l badgerLogger) msg(format string, args ...interface{}) string {
	return strings.TrimRight(fmt.Sprintf(format, args...), "\n")
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.log.Error(l.msg(format, args...), "source", "badger")
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.log.Warn(l.msg(format, args...), "source", "badger")
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.log.Debug(l.msg(format, args...), "source", "badger")
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.log.Debug(l.msg(format, args...), "source", "badger")
}

var _ Store = (*Badger)(nil)
