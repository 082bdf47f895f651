package git

import (
	"context"
	"net/http"
	"strings"

	"github.com/elewis/gitgo/ginternals"
	"github.com/elewis/gitgo/ginternals/config"
	"github.com/elewis/gitgo/ginternals/packfile"
	"github.com/elewis/gitgo/ginternals/transport"
	"golang.org/x/xerrors"
)

// CloneOptions contains the optional params used to clone a repository
type CloneOptions struct {
	// IsBare, when true, skips checking out a working tree
	IsBare bool
	// Client is the http.Client used for ref discovery and the
	// upload-pack negotiation. Defaults to http.DefaultClient.
	Client *http.Client
}

// CloneRepository clones repoURL into a repository rooted at cfg
// (already resolved by config.LoadConfig): it discovers the remote's
// refs, negotiates and decodes a packfile over smart-HTTP, persists
// every object it contains, materializes refs/heads/<branch> for the
// branch HEAD points to, points HEAD at it, and checks out the
// working tree unless the repository is bare. Writing
// refs/heads/<branch> is required: without it the new repository's
// HEAD points at a branch with nothing on disk to resolve it.
func CloneRepository(ctx context.Context, cfg *config.Config, repoURL string, opts CloneOptions) (*Repository, error) {
	adv, err := transport.DiscoverRefs(ctx, opts.Client, repoURL)
	if err != nil {
		return nil, xerrors.Errorf("could not discover refs: %w", err)
	}
	if len(adv.Refs) == 0 {
		return nil, xerrors.Errorf("remote repository has no refs: %w", ginternals.ErrProtocolError)
	}

	branch := headBranchName(adv)

	r, err := InitRepositoryWithParams(cfg, InitOptions{
		IsBare:            opts.IsBare,
		InitialBranchName: branch,
	})
	if err != nil {
		return nil, xerrors.Errorf("could not init repository: %w", err)
	}

	wants := make([]ginternals.Oid, 0, len(adv.Refs))
	seen := map[ginternals.Oid]struct{}{}
	for _, ref := range adv.Refs {
		if _, ok := seen[ref.Oid]; ok {
			continue
		}
		seen[ref.Oid] = struct{}{}
		wants = append(wants, ref.Oid)
	}

	packBody, err := transport.Fetch(ctx, opts.Client, repoURL, wants)
	if err != nil {
		return nil, xerrors.Errorf("could not fetch pack: %w", err)
	}
	defer packBody.Close() //nolint:errcheck // best-effort close, the read already happened

	pack, err := packfile.Decode(packBody, r.GetObject)
	if err != nil {
		return nil, xerrors.Errorf("could not decode pack: %w", err)
	}

	for _, o := range pack.Objects() {
		if _, err := r.WriteObject(o); err != nil {
			return nil, xerrors.Errorf("could not persist object %s: %w", o.ID().String(), err)
		}
	}

	for _, ref := range adv.Refs {
		if !strings.HasPrefix(ref.Name, "refs/heads/") {
			continue
		}
		if _, err := r.NewReference(ref.Name, ref.Oid); err != nil {
			return nil, xerrors.Errorf("could not write %s: %w", ref.Name, err)
		}
	}

	if _, err := r.NewSymbolicReference(ginternals.Head, ginternals.LocalBranchFullName(branch)); err != nil {
		return nil, xerrors.Errorf("could not update HEAD: %w", err)
	}

	if !opts.IsBare {
		if err := r.Checkout(adv.Head, cfg.WorkTreePath); err != nil {
			return nil, xerrors.Errorf("could not checkout working tree: %w", err)
		}
	}

	return r, nil
}

// headBranchName returns the short name of the local branch the
// remote's HEAD points to, falling back to ginternals.Master if no
// advertised refs/heads/* ref shares HEAD's Oid.
func headBranchName(adv *transport.RefAdvertisement) string {
	for _, ref := range adv.Refs {
		if ref.Oid == adv.Head && strings.HasPrefix(ref.Name, "refs/heads/") {
			return ginternals.LocalBranchShortName(ref.Name)
		}
	}
	return ginternals.Master
}
