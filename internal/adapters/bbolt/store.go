// Package bbolt implements the ports.AuditLog interface using bbolt (embedded B+ tree).
// Degraded geocode loads are appended to a single "degraded" bucket keyed by
// sequence number. Writes are transactional: a crash mid-write cannot
// corrupt previously committed entries.
package bbolt

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/geonovis/geonovis/internal/ports"
	bolt "go.etcd.io/bbolt"
)

var bucketDegraded = []byte("degraded")

// Store implements ports.AuditLog backed by bbolt.
type Store struct {
	db   *bolt.DB
	keep int
}

// NewStore opens (or creates) a bbolt database at the given path, creating
// parent directories as needed. keep bounds the number of retained entries;
// 0 keeps everything.
func NewStore(path string, keep int) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("bbolt dir: %w", err)
	}
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketDegraded)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("bbolt init: %w", err)
	}
	return &Store{db: db, keep: keep}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record appends an entry and prunes the oldest ones beyond keep.
func (s *Store) Record(d ports.Degradation) error {
	return s.RecordBatch([]ports.Degradation{d})
}

// RecordBatch appends entries in order within a single transaction, then
// prunes the oldest ones beyond keep.
func (s *Store) RecordBatch(ds []ports.Degradation) error {
	if len(ds) == 0 {
		return nil
	}
	values := make([][]byte, len(ds))
	for i, d := range ds {
		data, err := encodeEntry(d)
		if err != nil {
			return err
		}
		values[i] = data
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketDegraded)
		for _, data := range values {
			seq, err := b.NextSequence()
			if err != nil {
				return err
			}
			if err := b.Put(seqKey(seq), data); err != nil {
				return err
			}
		}
		if s.keep <= 0 {
			return nil
		}

		excess := countKeys(b) - s.keep
		c := b.Cursor()
		for k, _ := c.First(); k != nil && excess > 0; k, _ = c.First() {
			if err := c.Delete(); err != nil {
				return err
			}
			excess--
		}
		return nil
	})
}

// Recent returns up to n entries, newest first. n <= 0 returns all.
func (s *Store) Recent(n int) ([]ports.Degradation, error) {
	var out []ports.Degradation
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketDegraded).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if n > 0 && len(out) >= n {
				break
			}
			if _, err := keySeq(k); err != nil {
				return err
			}
			d, err := decodeEntry(v)
			if err != nil {
				return err
			}
			out = append(out, d)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Count returns the number of retained entries.
func (s *Store) Count() (int, error) {
	var n int
	err := s.db.View(func(tx *bolt.Tx) error {
		n = countKeys(tx.Bucket(bucketDegraded))
		return nil
	})
	return n, err
}

// Clear removes every entry. Idempotent.
func (s *Store) Clear() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketDegraded); err != nil && err != bolt.ErrBucketNotFound {
			return err
		}
		_, err := tx.CreateBucket(bucketDegraded)
		return err
	})
}

// countKeys walks the bucket; Stats() does not see uncommitted writes.
func countKeys(b *bolt.Bucket) int {
	n := 0
	c := b.Cursor()
	for k, _ := c.First(); k != nil; k, _ = c.Next() {
		n++
	}
	return n
}
