// Package filedb is a file-backed event store.
//
// Every message is kept in its own gzip-compressed JSON document at
//
//	<root>/<bucket>/<eventStreamId>/<eventMessageId>.gz
//
// Documents are written to a pending file in the target directory and renamed
// into place, so a reader never observes a partially written message.
package filedb

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"
	"github.com/kapivara/eventhub/eventstore"
	"golang.org/x/sync/errgroup"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644

	// DefaultReadConcurrency is the default number of files read in parallel
	// by ListAndReadAll.
	DefaultReadConcurrency = 16
)

// ErrNotFound is returned when a file or directory does not exist.
var ErrNotFound = errors.New("not found")

// File is a fully written file read from storage.
type File struct {
	Name    string
	Content []byte
}

// Storage is the byte-level storage used by the repositories. Paths are
// slash-separated and relative to the storage root.
type Storage interface {
	// WriteAtomic replaces the content of the file at path. Concurrent readers
	// see either the previous state or the complete new content. Missing
	// parent directories are created.
	WriteAtomic(ctx context.Context, path string, content []byte) error

	// Read returns the content of the file at path.
	Read(ctx context.Context, path string) ([]byte, error)

	// ListAndReadAll returns every file in dir whose name ends with ext, as of
	// the time of listing. It returns ErrNotFound if dir does not exist.
	ListAndReadAll(ctx context.Context, dir, ext string) ([]File, error)
}

// FileDatabase is a Storage rooted at a directory of the local filesystem.
type FileDatabase struct {
	root            string
	readConcurrency int
}

// NewFileDatabase returns a FileDatabase rooted at root, creating the
// directory if necessary.
func NewFileDatabase(root string, readConcurrency int) (*FileDatabase, error) {
	if root == "" {
		return nil, errors.New("storage root must not be empty")
	}
	if readConcurrency < 1 {
		return nil, fmt.Errorf("read concurrency must be at least 1, got %d", readConcurrency)
	}

	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(root, dirPerm); err != nil {
		return nil, &eventstore.IOError{Op: "mkdir", Path: root, Err: err}
	}

	return &FileDatabase{
		root:            root,
		readConcurrency: readConcurrency,
	}, nil
}

// Root returns the absolute path of the storage root.
func (d *FileDatabase) Root() string {
	return d.root
}

// WriteAtomic implements Storage.
func (d *FileDatabase) WriteAtomic(ctx context.Context, name string, content []byte) error {
	p, err := d.abs(name)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return &eventstore.IOError{Op: "mkdir", Path: dir, Err: err}
	}

	f, err := renameio.NewPendingFile(
		p,
		renameio.WithTempDir(dir),
		renameio.WithPermissions(filePerm),
	)
	if err != nil {
		return &eventstore.IOError{Op: "create", Path: p, Err: err}
	}
	defer f.Cleanup()

	if _, err := f.Write(content); err != nil {
		return &eventstore.IOError{Op: "write", Path: p, Err: err}
	}

	// Nothing is visible until the rename, so a cancelled write simply
	// discards the pending file.
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := f.CloseAtomicallyReplace(); err != nil {
		return &eventstore.IOError{Op: "rename", Path: p, Err: err}
	}

	return nil
}

// Read implements Storage.
func (d *FileDatabase) Read(ctx context.Context, name string) ([]byte, error) {
	p, err := d.abs(name)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		return nil, &eventstore.IOError{Op: "read", Path: p, Err: err}
	}

	return content, nil
}

// ListAndReadAll implements Storage.
//
// Pending files left behind by interrupted writes are dot-prefixed and never
// carry the bare extension, so they are not listed.
func (d *FileDatabase) ListAndReadAll(ctx context.Context, dir, ext string) ([]File, error) {
	p, err := d.abs(dir)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", dir, ErrNotFound)
		}
		return nil, &eventstore.IOError{Op: "list", Path: p, Err: err}
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if !e.Type().IsRegular() ||
			strings.HasPrefix(name, ".") ||
			!strings.HasSuffix(name, ext) {
			continue
		}
		names = append(names, name)
	}

	files := make([]File, len(names))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.readConcurrency)

	for i, name := range names {
		i, name := i, name

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			fp := filepath.Join(p, name)
			content, err := os.ReadFile(fp)
			if err != nil {
				return &eventstore.IOError{Op: "read", Path: fp, Err: err}
			}

			files[i] = File{Name: name, Content: content}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return files, nil
}

// abs returns the absolute path of a slash-separated path relative to the
// root.
func (d *FileDatabase) abs(name string) (string, error) {
	local := filepath.FromSlash(name)
	if !filepath.IsLocal(local) {
		return "", fmt.Errorf("path %q is not within the storage root", name)
	}
	return filepath.Join(d.root, local), nil
}
