// Package vcs reads source files as they were at a git revision, so a walk
// can match the firmware build its values were sampled from.
package vcs

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// ErrNotInRepository is returned for paths outside the repository worktree.
var ErrNotInRepository = errors.New("path is outside the repository")

// Repository is an opened git repository.
type Repository struct {
	repo *git.Repository
	root string
}

// Open opens the repository containing path, searching parent directories.
func Open(path string) (*Repository, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open repository at %s: %w", path, err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to open worktree: %w", err)
	}

	root, err := filepath.Abs(wt.Filesystem.Root())
	if err != nil {
		return nil, err
	}
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}

	return &Repository{repo: repo, root: root}, nil
}

// Root returns the worktree root.
func (r *Repository) Root() string {
	return r.root
}

// Commit resolves a revision such as "HEAD~2", a tag or a hash.
func (r *Repository) Commit(rev string) (*object.Commit, error) {
	hash, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", rev, err)
	}
	commit, err := r.repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("failed to load commit %s: %w", hash, err)
	}
	return commit, nil
}

// RelPath converts a filesystem path to the slash-separated path git stores.
func (r *Repository) RelPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	} else if dir, err := filepath.EvalSymlinks(filepath.Dir(abs)); err == nil {
		abs = filepath.Join(dir, filepath.Base(abs))
	}

	rel, err := filepath.Rel(r.root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrNotInRepository, path)
	}
	if rel == "." {
		return "", nil
	}
	return filepath.ToSlash(rel), nil
}

// Tree returns the root tree of the commit rev resolves to.
func (r *Repository) Tree(rev string) (*object.Tree, error) {
	commit, err := r.Commit(rev)
	if err != nil {
		return nil, err
	}
	return commit.Tree()
}

// ListPaths expands paths against the tree at rev. Files named directly are
// always listed; directories expand to the files beneath them that keep
// accepts. Results are filesystem paths below the worktree root.
func (r *Repository) ListPaths(rev string, paths []string, keep func(path string) bool) ([]string, error) {
	tree, err := r.Tree(rev)
	if err != nil {
		return nil, err
	}

	var files []string
	seen := make(map[string]bool)
	add := func(name string) {
		path := filepath.Join(r.root, filepath.FromSlash(name))
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, p := range paths {
		prefix, err := r.RelPath(p)
		if err != nil {
			return nil, err
		}

		if prefix != "" {
			if entry, err := tree.FindEntry(prefix); err == nil && entry.Mode.IsFile() {
				add(prefix)
				continue
			}
		}

		found := false
		err = tree.Files().ForEach(func(f *object.File) error {
			if prefix != "" && !strings.HasPrefix(f.Name, prefix+"/") {
				return nil
			}
			found = true
			if keep == nil || keep(filepath.Join(r.root, filepath.FromSlash(f.Name))) {
				add(f.Name)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, fmt.Errorf("%s at %s: %w", p, rev, object.ErrFileNotFound)
		}
	}

	sort.Strings(files)
	return files, nil
}
