package main

import (
	"errors"
	"fmt"
	"io"

	git "github.com/elewis/gitgo"
	"github.com/elewis/gitgo/ginternals"
	"github.com/elewis/gitgo/ginternals/config"
	"github.com/elewis/gitgo/internal/gitpath"
	"golang.org/x/xerrors"
)

func loadRepository(cfg *globalFlags) (*git.Repository, error) {
	p, err := config.LoadConfig(cfg.env, config.LoadConfigOptions{
		WorkingDirectory: cfg.C.String(),
		GitDirPath:       cfg.GitDir,
		WorkTreePath:     cfg.WorkTree,
		IsBare:           cfg.Bare,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create param: %w", err)
	}

	// run the command
	return git.OpenRepositoryWithParams(p, git.OpenOptions{
		IsBare: cfg.Bare,
	})
}

func fprintln(quiet bool, out io.Writer, msg ...interface{}) {
	if !quiet {
		fmt.Fprintln(out, msg...)
	}
}

func fprintf(quiet bool, out io.Writer, format string, a ...interface{}) {
	if !quiet {
		fmt.Fprintf(out, format, a...)
	}
}

// resolveObjectName resolves name to an Oid, trying it first as a raw
// 40-hex object id, then as a ref name (HEAD, refs/heads/master,
// heads/master, master, tag names).
func resolveObjectName(r *git.Repository, name string) (ginternals.Oid, error) {
	oid, err := ginternals.NewOidFromStr(name)
	if err == nil {
		return oid, nil
	}

	toTry := []string{
		// catches stuff like HEAD or refs/heads/master
		name,
		// catches heads/master
		gitpath.Ref(name),
		// catches local branch names
		gitpath.LocalBranch(name),
		// catches local tag names
		gitpath.LocalTag(name),
	}

	for _, refName := range toTry {
		ref, err := r.GetReference(refName)
		if err == nil {
			return ref.Target(), nil
		}
		if !errors.Is(err, ginternals.ErrRefNotFound) {
			return ginternals.NullOid, xerrors.Errorf("could not check if ref %s exists: %w", refName, err)
		}
	}

	return ginternals.NullOid, xerrors.Errorf("not a valid object name %s", name)
}
