package bolt

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/streamblocks/cal2am/core"
	"github.com/streamblocks/cal2am/storage"

	bolt "go.etcd.io/bbolt"
)

// DefaultBucket holds the snapshots.
var DefaultBucket = []byte("machines")

func JS(x interface{}) string {
	js, err := json.Marshal(&x)
	if err != nil {
		panic(err)
	}
	return string(js)
}

// Storage keeps JSON snapshots in a single BoltDB bucket.
type Storage struct {
	Debug bool

	// Bucket defaults to DefaultBucket.
	Bucket []byte

	filename string
	db       *bolt.DB
}

func NewStorage(filename string) (*Storage, error) {
	return &Storage{
		filename: filename,
		Bucket:   DefaultBucket,
	}, nil
}

func (s *Storage) Open(ctx context.Context) error {
	opts := &bolt.Options{
		Timeout: time.Second,
	}

	db, err := bolt.Open(s.filename, 0644, opts)
	if err != nil {
		return err
	}
	s.db = db

	return s.db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(s.Bucket)
		return err
	})
}

func (s *Storage) Close(ctx context.Context) error {
	return s.db.Close()
}

func (s *Storage) logf(format string, args ...interface{}) {
	if s.Debug {
		log.Printf("BoltDB Storage."+format, args...)
	}
}

func (s *Storage) Get(ctx context.Context, key string) (*core.Snapshot, error) {
	s.logf("Get %s", key)
	var snap *core.Snapshot
	err := s.db.View(func(tx *bolt.Tx) error {
		bs := tx.Bucket(s.Bucket).Get([]byte(key))
		if bs == nil {
			return storage.NotFound
		}
		snap = &core.Snapshot{}
		return json.Unmarshal(bs, snap)
	})
	if err != nil {
		return nil, err
	}
	s.logf("Get %s found %d states", key, len(snap.States))
	return snap, nil
}

func (s *Storage) Put(ctx context.Context, key string, snap *core.Snapshot) error {
	s.logf("Put %s %s", key, snap.Name)
	js, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.Bucket).Put([]byte(key), js)
	})
}

func (s *Storage) Remove(ctx context.Context, key string) error {
	s.logf("Remove %s", key)
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.Bucket).Delete([]byte(key))
	})
}

func (s *Storage) Keys(ctx context.Context) ([]string, error) {
	acc := make([]string, 0, 32)
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(s.Bucket).Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			acc = append(acc, string(k))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logf("Keys found %s", JS(acc))
	return acc, nil
}
