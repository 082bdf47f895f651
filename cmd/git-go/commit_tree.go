package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	git "github.com/elewis/gitgo"
	"github.com/elewis/gitgo/ginternals"
	"github.com/elewis/gitgo/ginternals/config"
	"github.com/elewis/gitgo/ginternals/object"
	"github.com/elewis/gitgo/internal/errutil"
	"github.com/spf13/cobra"
	"golang.org/x/xerrors"
)

type commitTreeFlags struct {
	parents []string
	message string
}

func newCommitTreeCmd(cfg *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "commit-tree TREE",
		Short: "Create a new commit object",
		Args:  cobra.ExactArgs(1),
	}

	flags := commitTreeFlags{}
	cmd.Flags().StringArrayVarP(&flags.parents, "parent", "p", nil, "Each -p indicates the id of a parent commit object.")
	cmd.Flags().StringVarP(&flags.message, "message", "m", "", "A paragraph in the commit log message.")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return commitTreeCmd(cmd.OutOrStdout(), cfg, flags, args[0])
	}

	return cmd
}

func commitTreeCmd(out io.Writer, cfg *globalFlags, flags commitTreeFlags, treeIsh string) (err error) {
	r, err := loadRepository(cfg)
	if err != nil {
		return err
	}
	defer errutil.Close(r, &err)

	treeID, err := resolveObjectName(r, treeIsh)
	if err != nil {
		return err
	}
	if _, err := r.Tree(treeID); err != nil {
		return xerrors.Errorf("%s is not a tree: %w", treeIsh, err)
	}

	parents := make([]ginternals.Oid, 0, len(flags.parents))
	for _, p := range flags.parents {
		id, err := resolveObjectName(r, p)
		if err != nil {
			return xerrors.Errorf("invalid parent %s: %w", p, err)
		}
		parents = append(parents, id)
	}

	message := flags.message
	if message == "" {
		return errors.New("commit message required, use -m")
	}
	if !strings.HasSuffix(message, "\n") {
		message += "\n"
	}

	author, err := identityFromEnv(cfg, "AUTHOR")
	if err != nil {
		return err
	}
	committer, err := identityFromEnv(cfg, "COMMITTER")
	if err != nil {
		committer = author
	}

	c, err := r.NewCommit(treeID, author, object.CommitOptions{
		Message:   message,
		Committer: committer,
		ParentsID: parents,
	})
	if err != nil {
		return xerrors.Errorf("could not create commit: %w", err)
	}

	fmt.Fprintln(out, c.ID().String())
	return nil
}

// identityFromEnv resolves an author or committer identity (role is
// "AUTHOR" or "COMMITTER") from GIT_<role>_NAME/EMAIL/DATE, falling
// back to user.name/user.email in the config files. Returns
// config.ErrConfigError, never a placeholder, when no name or email
// can be found.
func identityFromEnv(cfg *globalFlags, role string) (object.Signature, error) {
	name := cfg.env.Get("GIT_" + role + "_NAME")
	email := cfg.env.Get("GIT_" + role + "_EMAIL")

	if name == "" || email == "" {
		p, err := config.LoadConfig(cfg.env, config.LoadConfigOptions{
			WorkingDirectory: cfg.C.String(),
			GitDirPath:       cfg.GitDir,
			WorkTreePath:     cfg.WorkTree,
			IsBare:           cfg.Bare,
		})
		if err == nil && p.Files() != nil {
			if name == "" {
				name, _ = p.Files().UserName()
			}
			if email == "" {
				email, _ = p.Files().UserEmail()
			}
		}
	}

	if name == "" || email == "" {
		return object.Signature{}, xerrors.Errorf("could not resolve %s identity: %w", strings.ToLower(role), config.ErrConfigError)
	}

	t := time.Now()
	if raw := cfg.env.Get("GIT_" + role + "_DATE"); raw != "" {
		parsed, err := parseIdentityDate(raw)
		if err != nil {
			return object.Signature{}, xerrors.Errorf("invalid GIT_%s_DATE %q: %w", role, raw, err)
		}
		t = parsed
	}

	return object.Signature{Name: name, Email: email, Time: t}, nil
}

// parseIdentityDate parses a "<unix-seconds> <±HHMM>" timestamp, the
// same format git writes into commit/tag headers.
func parseIdentityDate(raw string) (time.Time, error) {
	parts := strings.SplitN(raw, " ", 2)
	sec, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return time.Time{}, xerrors.Errorf("invalid timestamp: %w", err)
	}
	if len(parts) == 1 {
		return time.Unix(sec, 0).UTC(), nil
	}
	loc, err := time.Parse("-0700", parts[1])
	if err != nil {
		return time.Time{}, xerrors.Errorf("invalid timezone: %w", err)
	}
	return time.Unix(sec, 0).In(loc.Location()), nil
}
