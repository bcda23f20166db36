package catalog

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/bastiangx/addrserve/pkg/region"
	"github.com/vmihailenco/msgpack/v5"
	bolt "go.etcd.io/bbolt"
)

var (
	bucketRegions = []byte("regions")
	bucketMeta    = []byte("meta")
	keyVersion    = []byte("version")
	keyImported   = []byte("imported_at")
)

// BoltStore keeps region records in a bbolt database, one key per region.
// Keys are big-endian ids so a cursor walks them in id order.
type BoltStore struct {
	db *bolt.DB
}

// OpenBoltStore opens (or creates) the store at path.
func OpenBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	return &BoltStore{db: db}, nil
}

// OpenBoltStoreReadOnly opens an existing store without taking the write lock.
func OpenBoltStoreReadOnly(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second, ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func regionKey(id int64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(id))
	return key
}

// Save replaces the stored catalog with records in one transaction.
func (s *BoltStore) Save(records []region.Record) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketRegions); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return fmt.Errorf("bbolt reset regions: %w", err)
		}
		b, err := tx.CreateBucket(bucketRegions)
		if err != nil {
			return fmt.Errorf("bbolt create regions: %w", err)
		}
		for _, rec := range records {
			value, err := msgpack.Marshal(toWire(rec))
			if err != nil {
				return fmt.Errorf("encode region %d: %w", rec.ID, err)
			}
			if err := b.Put(regionKey(rec.ID), value); err != nil {
				return fmt.Errorf("bbolt put region %d: %w", rec.ID, err)
			}
		}

		meta, err := tx.CreateBucketIfNotExists(bucketMeta)
		if err != nil {
			return fmt.Errorf("bbolt create meta: %w", err)
		}
		version := make([]byte, 8)
		binary.BigEndian.PutUint64(version, SnapshotVersion)
		if err := meta.Put(keyVersion, version); err != nil {
			return err
		}
		return meta.Put(keyImported, []byte(time.Now().UTC().Format(time.RFC3339)))
	})
}

// Load returns every stored record in id order.
func (s *BoltStore) Load(ctx context.Context) ([]region.Record, error) {
	var records []region.Record
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketRegions)
		if b == nil {
			return ErrEmptySource
		}
		records = make([]region.Record, 0, b.Stats().KeyN)
		return b.ForEach(func(k, v []byte) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var w wireRecord
			if err := msgpack.Unmarshal(v, &w); err != nil {
				return fmt.Errorf("decode region %d: %w", binary.BigEndian.Uint64(k), err)
			}
			rec, err := w.record()
			if err != nil {
				return err
			}
			records = append(records, rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Count returns the number of stored regions.
func (s *BoltStore) Count() (int, error) {
	n := 0
	err := s.db.View(func(tx *bolt.Tx) error {
		if b := tx.Bucket(bucketRegions); b != nil {
			n = b.Stats().KeyN
		}
		return nil
	})
	return n, err
}

// ImportedAt returns when Save last ran, or the zero time.
func (s *BoltStore) ImportedAt() (time.Time, error) {
	var at time.Time
	err := s.db.View(func(tx *bolt.Tx) error {
		meta := tx.Bucket(bucketMeta)
		if meta == nil {
			return nil
		}
		raw := meta.Get(keyImported)
		if raw == nil {
			return nil
		}
		var err error
		at, err = time.Parse(time.RFC3339, string(raw))
		return err
	})
	return at, err
}

// BoltSource loads a catalog from a bbolt file and closes it afterwards.
type BoltSource struct {
	Path string
}

func (s *BoltSource) Load(ctx context.Context) ([]region.Record, error) {
	store, err := OpenBoltStoreReadOnly(s.Path)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.Load(ctx)
}
