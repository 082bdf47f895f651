package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/elewis/gitgo/internal/errutil"
	"github.com/spf13/cobra"
	"golang.org/x/xerrors"
)

func newWriteTreeCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "write-tree",
		Short: "Create a tree object from the working directory",
		Args:  cobra.NoArgs,
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return writeTreeCmd(cmd.OutOrStdout(), cfg)
	}

	return cmd
}

func writeTreeCmd(out io.Writer, cfg *globalFlags) (err error) {
	r, err := loadRepository(cfg)
	if err != nil {
		return err
	}
	defer errutil.Close(r, &err)

	if r.IsBare() {
		return errors.New("this operation must be run in a work tree")
	}

	tree, err := r.WriteTree(r.Config.WorkTreePath)
	if err != nil {
		return xerrors.Errorf("could not write tree: %w", err)
	}

	fmt.Fprintln(out, tree.ID().String())
	return nil
}
