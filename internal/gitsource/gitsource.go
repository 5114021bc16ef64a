// Package gitsource syncs the content tree from a remote Git repository into
// a local workspace, so builds can run against content that lives outside the
// local filesystem.
package gitsource

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
	blderrors "git.home.luguber.info/inful/blogbuilder/internal/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
)

// Client clones and updates the configured content repository.
type Client struct {
	repo         config.Repository
	workspaceDir string
}

// NewClient creates a client cloning into workspaceDir.
func NewClient(repo config.Repository, workspaceDir string) *Client {
	return &Client{repo: repo, workspaceDir: filepath.Clean(workspaceDir)}
}

// ContentDir returns the directory that holds the content tree after a
// successful Sync, honoring the configured subdirectory.
func (c *Client) ContentDir() string {
	if c.repo.Path != "" {
		return filepath.Join(c.checkoutDir(), filepath.FromSlash(c.repo.Path))
	}
	return c.checkoutDir()
}

func (c *Client) checkoutDir() string {
	return filepath.Join(c.workspaceDir, "content-repo")
}

// Sync clones the repository on first use and fast-forwards it afterwards.
func (c *Client) Sync(ctx context.Context) error {
	dir := c.checkoutDir()
	if _, err := os.Stat(filepath.Join(dir, ".git")); err != nil {
		return c.clone(ctx, dir)
	}
	return c.update(ctx, dir)
}

func (c *Client) clone(ctx context.Context, dir string) error {
	slog.Info("cloning content repository",
		logfields.URL(c.repo.URL), slog.String("branch", c.repo.Branch))
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove stale checkout: %w", err)
	}
	if err := os.MkdirAll(c.workspaceDir, 0o750); err != nil {
		return fmt.Errorf("create workspace: %w", err)
	}

	opts := &git.CloneOptions{URL: c.repo.URL}
	if c.repo.Branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(c.repo.Branch)
		opts.SingleBranch = true
	}
	auth, err := c.auth()
	if err != nil {
		return err
	}
	opts.Auth = auth

	repository, err := git.PlainCloneContext(ctx, dir, false, opts)
	if err != nil {
		return blderrors.Wrap(err, blderrors.CategoryGit, blderrors.SeverityFatal,
			"clone content repository").WithContext("url", c.repo.URL)
	}
	if ref, herr := repository.Head(); herr == nil {
		slog.Info("content repository cloned",
			logfields.URL(c.repo.URL),
			slog.String("commit", ref.Hash().String()[:8]))
	}
	return nil
}

func (c *Client) update(ctx context.Context, dir string) error {
	repository, err := git.PlainOpen(dir)
	if err != nil {
		return fmt.Errorf("open checkout: %w", err)
	}

	auth, err := c.auth()
	if err != nil {
		return err
	}

	fetchOpts := &git.FetchOptions{Auth: auth}
	if err := repository.FetchContext(ctx, fetchOpts); err != nil && err != git.NoErrAlreadyUpToDate {
		return blderrors.Wrap(err, blderrors.CategoryGit, blderrors.SeverityFatal,
			"fetch content repository").WithContext("url", c.repo.URL)
	}

	remoteRef, err := repository.Reference(
		plumbing.NewRemoteReferenceName("origin", c.branch()), true)
	if err != nil {
		return fmt.Errorf("resolve remote branch %s: %w", c.branch(), err)
	}

	wt, err := repository.Worktree()
	if err != nil {
		return fmt.Errorf("worktree: %w", err)
	}
	if err := wt.Reset(&git.ResetOptions{Commit: remoteRef.Hash(), Mode: git.HardReset}); err != nil {
		return fmt.Errorf("reset to remote: %w", err)
	}

	slog.Info("content repository updated",
		slog.String("branch", c.branch()),
		slog.String("commit", remoteRef.Hash().String()[:8]))
	return nil
}

func (c *Client) branch() string {
	if c.repo.Branch != "" {
		return c.repo.Branch
	}
	return "main"
}

// auth builds the go-git auth method from the repository config. Returns nil
// for anonymous access.
func (c *Client) auth() (transport.AuthMethod, error) {
	a := c.repo.Auth
	if a == nil {
		return nil, nil
	}
	switch a.Type {
	case "token":
		if a.Token == "" {
			return nil, fmt.Errorf("token authentication requires a token")
		}
		// Forges accept the literal username "token" with a PAT password.
		return &http.BasicAuth{Username: "token", Password: a.Token}, nil
	case "basic":
		if a.Username == "" || a.Password == "" {
			return nil, fmt.Errorf("basic authentication requires username and password")
		}
		return &http.BasicAuth{Username: a.Username, Password: a.Password}, nil
	default:
		return nil, fmt.Errorf("unsupported authentication type: %s", a.Type)
	}
}
