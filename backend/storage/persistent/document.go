package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"time"
)

const (
	defaultDirPerm  = 0o755
	defaultFilePerm = 0o644
)

// DocumentOptions tune how a Document treats its file.
type DocumentOptions struct {
	// Strict makes a corrupt file a hard error. Otherwise the file is moved aside and the
	// document reads as empty.
	Strict bool
	Logger *slog.Logger
}

// Document is a single JSON file holding the full state of one collection. Every write
// replaces the whole file.
type Document[T any] struct {
	path   string
	empty  func() T
	strict bool
	logger *slog.Logger

	mu sync.Mutex
}

// NewDocument opens the document at path, creating the file with the empty container when
// it does not exist yet.
//
// It accepts three arguments:
// - path: The location of the JSON file.
// - empty: A constructor for the empty container (an empty list or map).
// - opts: Corruption handling and logging options.
func NewDocument[T any](path string, empty func() T, opts DocumentOptions) (*Document[T], error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	if empty == nil {
		return nil, errors.New("storage: nil empty constructor")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	d := &Document[T]{
		path:   filepath.Clean(path),
		empty:  empty,
		strict: opts.Strict,
		logger: logger,
	}
	if _, err := os.Stat(d.path); errors.Is(err, os.ErrNotExist) {
		if err := d.write(empty()); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, fmt.Errorf("stat %s: %w", d.path, err)
	}
	return d, nil
}

// Path returns the location of the backing file.
func (d *Document[T]) Path() string {
	return d.path
}

// Load returns the current document.
func (d *Document[T]) Load(ctx context.Context) (T, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.read()
}

// Save replaces the document with doc.
func (d *Document[T]) Save(ctx context.Context, doc T) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return withFileLock(ctx, d.lockPath(), func() error {
		return d.write(doc)
	})
}

// Update runs a read-modify-write cycle under the document's locks. The callback mutates
// the loaded document in place; returning ErrNoChange skips the write, any other error
// aborts the update and is returned unchanged.
func (d *Document[T]) Update(ctx context.Context, fn func(doc *T) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return withFileLock(ctx, d.lockPath(), func() error {
		doc, err := d.read()
		if err != nil {
			return err
		}
		if err := fn(&doc); err != nil {
			if errors.Is(err, ErrNoChange) {
				return nil
			}
			return err
		}
		return d.write(doc)
	})
}

func (d *Document[T]) lockPath() string {
	return d.path + ".lck"
}

func (d *Document[T]) read() (T, error) {
	data, err := os.ReadFile(d.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return d.empty(), nil
		}
		var zero T
		return zero, fmt.Errorf("read %s: %w", d.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return d.empty(), nil
	}
	out := d.empty()
	if err := json.Unmarshal(data, &out); err != nil {
		return d.corrupt(err)
	}
	if isNilContainer(out) {
		return d.empty(), nil
	}
	return out, nil
}

func (d *Document[T]) corrupt(cause error) (T, error) {
	if d.strict {
		d.logger.Error("store_corrupt", "path", d.path, "err", cause.Error())
		var zero T
		return zero, fmt.Errorf("%w: %s: %v", ErrCorrupt, d.path, cause)
	}
	quarantine := fmt.Sprintf("%s.corrupt-%d", d.path, time.Now().Unix())
	if err := os.Rename(d.path, quarantine); err != nil {
		d.logger.Error("store_quarantine_failed", "path", d.path, "err", err.Error())
	} else {
		d.logger.Warn("store_corrupt_quarantined", "path", d.path, "moved_to", quarantine, "err", cause.Error())
	}
	return d.empty(), nil
}

func (d *Document[T]) write(doc T) error {
	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrEncodeFailed, d.path, err)
	}
	data = append(data, '\n')
	return writeAtomic(d.path, data)
}

func isNilContainer(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map:
		return rv.IsNil()
	default:
		return false
	}
}

func writeAtomic(path string, content []byte) error {
	parentDir := filepath.Dir(path)
	if err := os.MkdirAll(parentDir, defaultDirPerm); err != nil {
		return fmt.Errorf("storage ensure dir %s: %w", parentDir, err)
	}

	tmp, err := os.CreateTemp(parentDir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("%w: create temp for %s: %v", ErrAtomicWriteFailed, path, err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("%w: write temp for %s: %v", ErrAtomicWriteFailed, path, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("%w: sync temp for %s: %v", ErrAtomicWriteFailed, path, err)
	}
	if err := tmp.Chmod(defaultFilePerm); err != nil {
		return fmt.Errorf("%w: chmod temp for %s: %v", ErrAtomicWriteFailed, path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close temp for %s: %v", ErrAtomicWriteFailed, path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("%w: rename temp for %s: %v", ErrAtomicWriteFailed, path, err)
	}
	return nil
}
