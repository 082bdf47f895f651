// Package git contains the plumbing needed to create, read, and clone
// a git repository: the object store, the tree/commit builders, the
// packfile decoder, the fetch client, and checkout.
package git

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/elewis/gitgo/backend"
	"github.com/elewis/gitgo/backend/fsbackend"
	"github.com/elewis/gitgo/ginternals"
	"github.com/elewis/gitgo/ginternals/config"
	"github.com/elewis/gitgo/internal/gitpath"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// Errors returned by Repository
var (
	// ErrRepositoryNotExist is returned when trying to open a
	// repository that doesn't exist
	ErrRepositoryNotExist = errors.New("repository does not exist")
	// ErrRepositoryExists is returned when trying to init a repository
	// that already exists
	ErrRepositoryExists = errors.New("repository already exists")
)

// Repository represents a git repository: the .git/ directory
// (the "dot-git", served by a Backend) and, unless the repo is bare,
// the working tree it's checked out into.
type Repository struct {
	// Config is the resolved configuration used to locate and
	// interpret this repository
	Config *config.Config

	dotGit backend.Backend
	wt     afero.Fs
}

// InitOptions contains the optional params used to initialize a
// repository
type InitOptions struct {
	// IsBare represents whether a bare repository will be created or not
	IsBare bool
	// InitialBranchName is the name given to the branch HEAD will point
	// to. Defaults to ginternals.Master.
	InitialBranchName string
	// Symlink, when true and the repository isn't bare, writes a
	// ".git" file at the root of the working tree pointing at
	// Config.GitDirPath instead of storing the repository data
	// directly under ".git". Mirrors git init --separate-git-dir.
	Symlink bool
	// GitBackend represents the underlying backend to use to init the
	// repository and interact with the odb.
	// By default the filesystem will be used
	GitBackend backend.Backend
	// WorkingTreeBackend represents the underlying backend to use to
	// interact with the working tree.
	// By default the filesystem will be used. Setting this is useless
	// if IsBare is set to true
	WorkingTreeBackend afero.Fs
}

// InitRepositoryWithParams initializes a new git repository using an
// already-resolved config, creating the .git directory and its
// subdirectories, and materializing HEAD as a symbolic ref to the
// initial branch.
func InitRepositoryWithParams(cfg *config.Config, opts InitOptions) (*Repository, error) {
	r := &Repository{Config: cfg}

	r.dotGit = opts.GitBackend
	if r.dotGit == nil {
		r.dotGit = fsbackend.New(cfg.GitDirPath)
	}

	if !opts.IsBare {
		r.wt = opts.WorkingTreeBackend
		if r.wt == nil {
			r.wt = afero.NewOsFs()
		}
	}

	if err := r.dotGit.Init(); err != nil {
		return nil, xerrors.Errorf("could not init backend: %w", err)
	}

	branch := opts.InitialBranchName
	if branch == "" {
		branch = ginternals.Master
	}
	ref := ginternals.NewSymbolicReference(ginternals.Head, ginternals.LocalBranchFullName(branch))
	if err := r.dotGit.WriteReferenceSafe(ref); err != nil {
		if xerrors.Is(err, ginternals.ErrRefExists) {
			return nil, ErrRepositoryExists
		}
		return nil, xerrors.Errorf("could not write HEAD: %w", err)
	}

	if opts.Symlink && !opts.IsBare && cfg.WorkTreePath != "" {
		link := fmt.Sprintf("gitdir: %s\n", cfg.GitDirPath)
		gitFile := filepath.Join(cfg.WorkTreePath, gitpath.DotGitPath)
		if err := afero.WriteFile(r.wt, gitFile, []byte(link), 0o644); err != nil {
			return nil, xerrors.Errorf("could not write %s: %w", gitFile, err)
		}
	}

	return r, nil
}

// OpenOptions contains the optional params used to open an existing
// repository
type OpenOptions struct {
	// IsBare represents whether the repository is bare or not
	IsBare bool
	// GitBackend represents the underlying backend to use to interact
	// with the odb. By default the filesystem will be used
	GitBackend backend.Backend
	// WorkingTreeBackend represents the underlying backend to use to
	// interact with the working tree. By default the filesystem will
	// be used. Setting this is useless if IsBare is set to true
	WorkingTreeBackend afero.Fs
}

// OpenRepositoryWithParams loads an existing git repository using an
// already-resolved config and returns a Repository instance
func OpenRepositoryWithParams(cfg *config.Config, opts OpenOptions) (*Repository, error) {
	r := &Repository{Config: cfg}

	r.dotGit = opts.GitBackend
	if r.dotGit == nil {
		r.dotGit = fsbackend.New(cfg.GitDirPath)
	}

	if !opts.IsBare {
		r.wt = opts.WorkingTreeBackend
		if r.wt == nil {
			r.wt = afero.NewOsFs()
		}
	}

	type opener interface {
		Open() error
	}
	if o, ok := r.dotGit.(opener); ok {
		if err := o.Open(); err != nil {
			return nil, xerrors.Errorf("could not open backend: %w", err)
		}
	}

	// since we can't check if the directory exists on disk to
	// validate if the repo exists, we instead check if HEAD exists,
	// since it should always be there
	if _, err := r.dotGit.Reference(ginternals.Head); err != nil {
		return nil, ErrRepositoryNotExist
	}

	return r, nil
}

// IsBare returns whether the repository has no working tree
func (r *Repository) IsBare() bool {
	return r.wt == nil
}

// Close releases any resource held by the repository
func (r *Repository) Close() error {
	return r.dotGit.Close()
}
