// Package fsbackend contains an implementation of the backend.Backend
// interface for the filesystem
package fsbackend

import (
	"path/filepath"
	"sync"

	"github.com/elewis/gitgo/backend"
	"github.com/elewis/gitgo/internal/cache"
	"github.com/elewis/gitgo/internal/gitpath"
	"github.com/elewis/gitgo/internal/syncutil"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// we make sure the struct implements the interface
var _ backend.Backend = (*Backend)(nil)

// defaultCacheSize is the number of objects kept in memory to avoid
// re-reading and re-inflating the same loose object repeatedly
const defaultCacheSize = 256

// defaultMutexPoolSize is the number of stripes used by the backend's
// per-object lock. Using a prime reduces collisions between hashes
// that happen to share small factors.
const defaultMutexPoolSize = 97

// Backend is a Backend implementation that uses the filesystem to
// store data. Packfiles are never kept around: a fetch decodes a pack
// in memory and every object it contains is persisted here as a loose
// object, so this backend only ever has loose objects to serve.
type Backend struct {
	root string
	fs   afero.Fs

	cache    *cache.LRU
	objectMu *syncutil.NamedMutex

	// looseObjects tracks which Oids have been persisted as loose
	// objects, populated at Init/Open time and kept up to date by
	// WriteObject, so HasObject/Object don't need to stat the
	// filesystem on every call.
	looseObjects sync.Map
}

// New returns a new Backend object
func New(dotGitPath string) *Backend {
	return &Backend{
		root:     dotGitPath,
		fs:       afero.NewOsFs(),
		cache:    cache.NewLRU(defaultCacheSize),
		objectMu: syncutil.NewNamedMutex(defaultMutexPoolSize),
	}
}

// Init initializes a repository
func (b *Backend) Init() error {
	// Create the directories
	dirs := []string{
		gitpath.ObjectsPath,
		gitpath.RefsTagsPath,
		gitpath.RefsHeadsPath,
		gitpath.ObjectsInfoPath,
		gitpath.ObjectsPackPath,
	}
	for _, d := range dirs {
		if err := b.fs.MkdirAll(b.join(d), 0o750); err != nil {
			return xerrors.Errorf("could not create directory %s: %w", d, err)
		}
	}

	// Create the files with the default content
	// (taken from a repo created on github)
	files := []struct {
		path    string
		content []byte
	}{
		{
			path:    gitpath.DescriptionPath,
			content: []byte("Unnamed repository; edit this file 'description' to name the repository.\n"),
		},
	}
	for _, f := range files {
		if err := afero.WriteFile(b.fs, b.join(f.path), f.content, 0o644); err != nil {
			return xerrors.Errorf("could not create file %s: %w", f.path, err)
		}
	}

	err := b.setDefaultCfg()
	if err != nil {
		return xerrors.Errorf("could not set the default config: %w", err)
	}

	return b.loadLooseObject()
}

// Open loads the backend's in-memory bookkeeping (the loose object
// index) for an already-initialized repository
func (b *Backend) Open() error {
	return b.loadLooseObject()
}

// Close releases any resource held by the backend
func (b *Backend) Close() error {
	b.cache.Clear()
	return nil
}

// join joins a path relative to the repository's .git directory
func (b *Backend) join(p string) string {
	return filepath.Join(b.root, p)
}
