package query

import (
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/peterbourgon/diskv"
	"github.com/pkg/errors"
)

// Store persists query results across restarts.
type Store interface {
	Read(key string, v interface{}) (bool, error)
	Write(key string, v interface{}) error
	Delete(key string) error
}

type storedEntry struct {
	Data      json.RawMessage `json:"data"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type StoreConfig struct {
	// Path is the cache directory. An empty path disables the disk store.
	Path string `toml:"path"`
	// MemorySize is the size of the in-memory cache in front of the disk, such
	// as "1MB".
	MemorySize string `toml:"memorySize"`

	memorySize datasize.ByteSize
}

func NewStoreConfig() StoreConfig {
	return StoreConfig{
		Path:       filepath.Join(os.TempDir(), "chainfront-queries"),
		MemorySize: "1MB",
	}
}

func (c *StoreConfig) Validate() error {
	if c.MemorySize == "" {
		c.memorySize = 0
		return nil
	}

	if err := c.memorySize.UnmarshalText([]byte(c.MemorySize)); err != nil {
		return errors.Wrap(err, "invalid `memorySize'")
	}

	return nil
}

// DiskStore is a Store that writes JSON files.
type DiskStore struct {
	d *diskv.Diskv
}

var _ Store = (*DiskStore)(nil)

// NewDiskStore creates a disk store at the path in the config.
func NewDiskStore(cfg StoreConfig) (*DiskStore, error) {
	if cfg.Path == "" {
		return nil, errors.New("missing store path")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.Path, 0755); err != nil {
		return nil, errors.Wrap(err, "Failed to create store directory")
	}

	d := diskv.New(diskv.Options{
		BasePath: cfg.Path,
		Transform: func(s string) []string {
			return nil
		},
		CacheSizeMax: cfg.memorySize.Bytes(),
	})

	return &DiskStore{d}, nil
}

// fileKey makes arbitrary query keys safe to use as file names.
func fileKey(key string) string {
	return hex.EncodeToString([]byte(key)) + ".json"
}

func (s *DiskStore) Read(key string, v interface{}) (bool, error) {
	k := fileKey(key)

	if !s.d.Has(k) {
		return false, nil
	}

	b, err := s.d.Read(k)
	if err != nil {
		return false, errors.Wrap(err, "Failed to read")
	}

	if err := json.Unmarshal(b, v); err != nil {
		return false, errors.Wrap(err, "Failed to decode")
	}

	return true, nil
}

func (s *DiskStore) Write(key string, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "Failed to encode")
	}

	return s.d.Write(fileKey(key), b)
}

func (s *DiskStore) Delete(key string) error {
	k := fileKey(key)

	if !s.d.Has(k) {
		return nil
	}

	return s.d.Erase(k)
}
