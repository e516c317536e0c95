// Package storage implements the flat-file persistence of the portal: one
// JSON array file per entity kind, one markdown side-car file per content
// entry, and one upload folder per content kind.
package storage

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"
)

// File is a JSON array file holding all records of one entity kind. Every
// mutation runs a full read-modify-write cycle; the mutex serializes those
// cycles so concurrent requests cannot lose each other's writes. A crash
// between a body-file write and the index write still leaves the two out of
// sync; that failure mode is accepted.
type File[T any] struct {
	path string
	mu   sync.Mutex
}

func NewFile[T any](path string) *File[T] {
	return &File[T]{path: path}
}

func (f *File[T]) Path() string {
	return f.path
}

// Load reads and decodes the whole file. A missing file decodes as an empty
// list so a fresh data folder needs no seeding.
func (f *File[T]) Load() ([]T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.load()
}

func (f *File[T]) load() ([]T, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return []T{}, nil
	}
	if err != nil {
		return nil, err
	}
	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Save encodes and writes the whole file, creating parent folders on demand.
func (f *File[T]) Save(records []T) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.save(records)
}

func (f *File[T]) save(records []T) error {
	if records == nil {
		records = []T{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(f.path, data, 0o640)
}

// Update runs fn inside the file lock: load, mutate, save. fn returns the new
// record list; returning an error aborts without writing.
func (f *File[T]) Update(fn func(records []T) ([]T, error)) ([]T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	records, err := f.load()
	if err != nil {
		return nil, err
	}
	updated, err := fn(records)
	if err != nil {
		return nil, err
	}
	if err := f.save(updated); err != nil {
		return nil, err
	}
	return updated, nil
}
