package itemstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/erazemk/lostfound/internal/model"
)

// lockRetryDelay is how often a blocked writer retries the file lock.
const lockRetryDelay = 50 * time.Millisecond

// JSONFile stores the collection as a JSON array in a single file.
//
// Writers hold an exclusive advisory lock on a sibling ".lock" file so that
// several processes sharing the file still update it one at a time. The new
// snapshot is written to a temporary file and renamed over the old one, so
// readers never see a partial write.
type JSONFile struct {
	path string
	mu   sync.RWMutex
	lock *flock.Flock
}

// OpenJSONFile opens (creating if needed) a JSON item file at path.
func OpenJSONFile(path string) (*JSONFile, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating item directory: %w", err)
	}

	s := &JSONFile{
		path: path,
		lock: flock.New(path + ".lock"),
	}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := s.write(nil); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, fmt.Errorf("checking item file: %w", err)
	}

	return s, nil
}

// Path returns the location of the item file.
func (s *JSONFile) Path() string {
	return s.path
}

// Load implements Store.
func (s *JSONFile) Load(ctx context.Context) ([]model.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read()
}

// Update implements Store.
func (s *JSONFile) Update(ctx context.Context, fn UpdateFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	locked, err := s.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("locking item file: %w", err)
	}
	if !locked {
		return fmt.Errorf("locking item file: lock not acquired")
	}
	defer s.lock.Unlock()

	items, err := s.read()
	if err != nil {
		return err
	}

	next, err := fn(slices.Clone(items))
	if err != nil {
		return err
	}
	return s.write(next)
}

func (s *JSONFile) read() ([]model.Item, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading item file: %w", err)
	}

	var items []model.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decoding item file: %w", err)
	}
	return items, nil
}

func (s *JSONFile) write(items []model.Item) error {
	if items == nil {
		items = []model.Item{}
	}
	data, err := json.MarshalIndent(items, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding items: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp item file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp item file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing temp item file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp item file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing item file: %w", err)
	}
	return nil
}
