package main

import (
	"fmt"
	"io"
	"os"

	"github.com/elewis/gitgo/ginternals/object"
	"github.com/elewis/gitgo/internal/errutil"
	"github.com/spf13/cobra"
	"golang.org/x/xerrors"
)

func newHashObjectCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hash-object FILE",
		Short: "Compute object ID and optionally creates a blob from a file",
		Args:  cobra.ExactArgs(1),
	}

	typ := cmd.Flags().StringP("type", "t", "blob", "Specify the type")
	write := cmd.Flags().BoolP("write", "w", false, "Actually write the object into the object database.")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return hashObjectCmd(cmd.OutOrStdout(), cfg, args[0], *typ, *write)
	}

	return cmd
}

func hashObjectCmd(out io.Writer, cfg *globalFlags, filePath, typ string, write bool) (err error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	t, err := object.NewTypeFromString(typ)
	if err != nil {
		return xerrors.Errorf("unsupported object type %s: %w", typ, err)
	}

	o := object.New(t, content)
	switch t {
	case object.TypeCommit:
		if _, err = o.AsCommit(); err != nil {
			return xerrors.Errorf("invalid commit file: %w", err)
		}
	case object.TypeTree:
		if _, err = o.AsTree(); err != nil {
			return xerrors.Errorf("invalid tree file: %w", err)
		}
	}

	if write {
		r, err := loadRepository(cfg)
		if err != nil {
			return err
		}
		defer errutil.Close(r, &err)

		if _, err := r.WriteObject(o); err != nil {
			return xerrors.Errorf("could not write object: %w", err)
		}
	}

	fmt.Fprintln(out, o.ID().String())
	return nil
}
