package pyramid

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/blang/semver"
	badger "github.com/dgraph-io/badger/v3"

	"github.com/janelia-flyem/voxview/voxview"
)

// Semantic version of the badger-backed chunk store format.  Bump the major
// version on any key or payload encoding change.
func StoreSemVer() semver.Version {
	return semver.MustParse("1.0.0")
}

// BadgerStore is a ChunkStore backed by a local badger key-value database.
type BadgerStore struct {
	directory string
	options   *badger.Options
	bdp       *badger.DB
	compress  Compression
}

// OpenBadger opens (creating if necessary) a badger-backed chunk store at the
// given directory.
func OpenBadger(path string) (*BadgerStore, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		voxview.Infof("Database not already at path (%s). Creating directory...\n", path)
		if err := os.MkdirAll(path, 0744); err != nil {
			return nil, fmt.Errorf("can't make directory at %s: %v", path, err)
		}
	}
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	opts.NumVersionsToKeep = 1
	opts.SyncWrites = false
	opts.ValueThreshold = 100

	voxview.Infof("Opening badger @ path %s (store format %s)\n", path, StoreSemVer())
	bdp, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &BadgerStore{
		directory: path,
		options:   &opts,
		bdp:       bdp,
		compress:  Snappy,
	}, nil
}

func (db *BadgerStore) String() string {
	return fmt.Sprintf("badger chunk store @ %s", db.directory)
}

// get returns a value copy for a key, or nil if the key is absent.
func (db *BadgerStore) get(key []byte) (value []byte, err error) {
	err = db.bdp.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	return
}

func (db *BadgerStore) put(key, value []byte) error {
	return db.bdp.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

func (db *BadgerStore) ReadMeta(group string) (GroupMeta, error) {
	var meta GroupMeta
	b, err := db.get(metaKey(group))
	if err != nil {
		return meta, err
	}
	if b == nil {
		return meta, ErrBadGroup
	}
	if err := json.Unmarshal(b, &meta); err != nil {
		return meta, fmt.Errorf("bad metadata record for volume group %q: %v", group, err)
	}
	return meta, nil
}

func (db *BadgerStore) WriteMeta(meta GroupMeta) error {
	if err := ValidGroupName(meta.Group); err != nil {
		return err
	}
	b, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return db.put(metaKey(meta.Group), b)
}

func (db *BadgerStore) Groups() (groups []string, err error) {
	err = db.bdp.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte{metaTag}
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			group, err := groupFromMetaKey(it.Item().KeyCopy(nil))
			if err != nil {
				return err
			}
			groups = append(groups, group)
		}
		return nil
	})
	return
}

func (db *BadgerStore) ReadChunk(group string, level uint8, pt ChunkPoint) ([]byte, error) {
	b, err := db.get(chunkKey(group, level, pt))
	if err != nil || b == nil {
		return nil, err
	}
	return deserializeChunk(b)
}

func (db *BadgerStore) WriteChunk(group string, level uint8, pt ChunkPoint, voxels []byte) error {
	b, err := serializeChunk(voxels, db.compress)
	if err != nil {
		return err
	}
	return db.put(chunkKey(group, level, pt), b)
}

// Close checks if a lingering badger database needs to be flushed and closed.
func (db *BadgerStore) Close() {
	if db.bdp != nil {
		if err := db.bdp.Close(); err != nil {
			voxview.Errorf("Error closing badger @ %s: %v\n", db.directory, err)
		}
		db.bdp = nil
	}
}
