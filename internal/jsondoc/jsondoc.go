package jsondoc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrMalformed is matched by every *MalformedError.
var ErrMalformed = errors.New("malformed document")

// MalformedError reports a document that could not be decoded, or a record
// that decoded but failed validation.
type MalformedError struct {
	Path string
	// Index is the offending record, or -1 when the document as a whole
	// failed to parse.
	Index int
	Err   error
}

func (e *MalformedError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("malformed document %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("malformed document %s: record %d: %v", e.Path, e.Index, e.Err)
}

func (e *MalformedError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrMalformed) true.
func (e *MalformedError) Is(target error) bool {
	return target == ErrMalformed
}

// Load decodes the array stored at path. A missing file yields an empty,
// non-nil slice.
func Load[T any](path string) ([]T, error) {
	raw, err := os.ReadFile(path) //nolint:gosec // G304: path is built from the data directory
	if err != nil {
		if os.IsNotExist(err) {
			return []T{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &MalformedError{Path: path, Index: -1, Err: err}
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Mutate loads the document at path, applies transform and persists its
// result. When transform fails, its error is returned as is and nothing is
// written.
func Mutate[T any](path string, transform func([]T) ([]T, error)) ([]T, error) {
	items, err := Load[T](path)
	if err != nil {
		return nil, err
	}
	next, err := transform(items)
	if err != nil {
		return nil, err
	}
	if next == nil {
		next = []T{}
	}
	if err := write(path, next); err != nil {
		return nil, err
	}
	return next, nil
}

// Encode renders items the way documents are stored on disk.
func Encode[T any](items []T) ([]byte, error) {
	var buf bytes.Buffer
	e := json.NewEncoder(&buf)
	e.SetIndent("", "  ")
	e.SetEscapeHTML(false)
	if err := e.Encode(items); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func write[T any](path string, items []T) error {
	data, err := Encode(items)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:gosec // G301: data directories are world readable
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}
	tmp := f.Name()
	defer func() {
		// No-op once the rename succeeded.
		_ = os.Remove(tmp)
	}()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to sync %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Chmod(tmp, 0o644); err != nil { //nolint:gosec // G302: documents are not secret
		return fmt.Errorf("failed to chmod %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// Doc binds a document path to a record type.
type Doc[T any] struct {
	path string
}

// Open returns a Doc for the array stored at path. The file does not need
// to exist.
func Open[T any](path string) *Doc[T] {
	return &Doc[T]{path: path}
}

// Path returns the document's file path.
func (d *Doc[T]) Path() string {
	return d.path
}

// Load is Load(d.Path()).
func (d *Doc[T]) Load() ([]T, error) {
	return Load[T](d.path)
}

// Mutate is Mutate(d.Path(), transform).
func (d *Doc[T]) Mutate(transform func([]T) ([]T, error)) ([]T, error) {
	return Mutate(d.path, transform)
}
