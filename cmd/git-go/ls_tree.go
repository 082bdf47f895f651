package main

import (
	"fmt"
	"io"
	"path/filepath"

	git "github.com/elewis/gitgo"
	"github.com/elewis/gitgo/ginternals/object"
	"github.com/elewis/gitgo/internal/errutil"
	"github.com/spf13/cobra"
	"golang.org/x/xerrors"
)

func newLsTreeCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls-tree TREE-ISH",
		Short: "List the contents of a tree object",
		Args:  cobra.ExactArgs(1),
	}

	recurse := cmd.Flags().BoolP("r", "r", false, "Recurse into sub-trees.")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return lsTreeCmd(cmd.OutOrStdout(), cfg, args[0], *recurse)
	}

	return cmd
}

func lsTreeCmd(out io.Writer, cfg *globalFlags, treeIsh string, recurse bool) (err error) {
	r, err := loadRepository(cfg)
	if err != nil {
		return err
	}
	defer errutil.Close(r, &err)

	oid, err := resolveObjectName(r, treeIsh)
	if err != nil {
		return err
	}

	o, err := r.GetObject(oid)
	if err != nil {
		return err
	}

	// a tree-ish may also be a commit, in which case we walk its root tree
	if o.Type() == object.TypeCommit {
		c, err := o.AsCommit()
		if err != nil {
			return xerrors.Errorf("could not get commit %s: %w", oid.String(), err)
		}
		o, err = r.GetObject(c.TreeID())
		if err != nil {
			return xerrors.Errorf("could not get tree %s: %w", c.TreeID().String(), err)
		}
	}

	tree, err := o.AsTree()
	if err != nil {
		return xerrors.Errorf("%s is not a tree-ish: %w", treeIsh, err)
	}

	return lsTreeEntries(out, r, tree, "", recurse)
}

func lsTreeEntries(out io.Writer, r *git.Repository, tree *object.Tree, prefix string, recurse bool) error {
	for _, e := range tree.Entries() {
		path := filepath.Join(prefix, e.Path)

		if recurse && e.Mode.IsDir() {
			sub, err := r.Tree(e.ID)
			if err != nil {
				return xerrors.Errorf("could not get tree %s: %w", e.ID.String(), err)
			}
			if err := lsTreeEntries(out, r, sub, path, recurse); err != nil {
				return err
			}
			continue
		}

		fmt.Fprintf(out, "%06o %s %s\t%s\n", e.Mode, e.Mode.ObjectType().String(), e.ID.String(), path)
	}
	return nil
}
