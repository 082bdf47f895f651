package main

import (
	"context"
	"errors"
	"io"
	"net/url"
	"path/filepath"
	"strings"

	git "github.com/elewis/gitgo"
	"github.com/elewis/gitgo/ginternals/config"
	"github.com/spf13/cobra"
	"golang.org/x/xerrors"
)

type cloneCmdFlags struct {
	bare  bool
	quiet bool
}

func newCloneCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clone REPOSITORY [DIRECTORY]",
		Short: "Clone a repository into a new directory",
		Args:  cobra.RangeArgs(1, 2),
	}

	flags := cloneCmdFlags{}
	cmd.Flags().BoolVar(&flags.bare, "bare", false, "Make a bare Git repository.")
	cmd.Flags().BoolVarP(&flags.quiet, "quiet", "q", false, "Operate quietly.")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		directory := ""
		if len(args) == 2 {
			directory = args[1]
		}
		return cloneCmd(cmd.Context(), cmd.OutOrStdout(), cfg, flags, args[0], directory)
	}

	return cmd
}

func cloneCmd(ctx context.Context, out io.Writer, cfg *globalFlags, flags cloneCmdFlags, repoURL, directory string) (err error) {
	if directory == "" {
		directory, err = directoryFromURL(repoURL)
		if err != nil {
			return xerrors.Errorf("could not infer a target directory: %w", err)
		}
	}
	directory = filepath.Join(cfg.C.String(), directory)

	p, err := config.LoadConfig(cfg.env, config.LoadConfigOptions{
		WorkingDirectory: directory,
		GitDirPath:       cfg.GitDir,
		WorkTreePath:     cfg.WorkTree,
		IsBare:           flags.bare || cfg.Bare,
		SkipGitDirLookUp: true,
	})
	if err != nil {
		return xerrors.Errorf("could not create param: %w", err)
	}

	r, err := git.CloneRepository(ctx, p, repoURL, git.CloneOptions{
		IsBare: flags.bare || cfg.Bare,
	})
	if err != nil {
		return xerrors.Errorf("could not clone %s: %w", repoURL, err)
	}
	defer func() {
		if cErr := r.Close(); err == nil {
			err = cErr
		}
	}()

	fprintln(flags.quiet, out, "Cloning into", "'"+directory+"'...")
	return nil
}

// directoryFromURL derives the default clone target directory from a
// repository URL, mirroring git's own "basename, minus .git" rule.
func directoryFromURL(repoURL string) (string, error) {
	u, err := url.Parse(repoURL)
	if err != nil {
		return "", err
	}
	name := strings.TrimSuffix(filepath.Base(u.Path), ".git")
	if name == "" || name == "." || name == "/" {
		return "", errors.New("could not determine a directory name from the URL")
	}
	return name, nil
}
