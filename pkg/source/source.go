// Package source abstracts where file content comes from: the working tree,
// a git revision or memory.
package source

import (
	"fmt"
	"os"
	"sync"

	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/panbanda/livewalk/internal/vcs"
)

// ContentSource provides file content from a specific source.
type ContentSource interface {
	// Read returns the content of the file at path.
	Read(path string) ([]byte, error)
}

// FilesystemSource reads files from the local filesystem.
type FilesystemSource struct{}

// NewFilesystem creates a source that reads from the filesystem.
func NewFilesystem() *FilesystemSource {
	return &FilesystemSource{}
}

// Read implements ContentSource.
func (f *FilesystemSource) Read(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// RevisionSource reads worktree paths as they were at a git revision.
// It is safe for concurrent use by multiple goroutines.
type RevisionSource struct {
	repo *vcs.Repository
	rev  string
	tree *object.Tree
	mu   sync.Mutex
}

// NewRevision resolves rev once and reads every later path from its tree.
func NewRevision(repo *vcs.Repository, rev string) (*RevisionSource, error) {
	tree, err := repo.Tree(rev)
	if err != nil {
		return nil, err
	}
	return &RevisionSource{repo: repo, rev: rev, tree: tree}, nil
}

// Rev returns the revision the source was opened at.
func (r *RevisionSource) Rev() string {
	return r.rev
}

// Read implements ContentSource.
// It is safe for concurrent use.
func (r *RevisionSource) Read(path string) ([]byte, error) {
	rel, err := r.repo.RelPath(path)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := r.tree.File(rel)
	if err != nil {
		return nil, fmt.Errorf("%s at %s: %w", rel, r.rev, err)
	}
	content, err := f.Contents()
	if err != nil {
		return nil, err
	}
	return []byte(content), nil
}

// MemorySource serves content held in memory, keyed by path.
type MemorySource map[string][]byte

// Read implements ContentSource.
func (m MemorySource) Read(path string) ([]byte, error) {
	content, ok := m[path]
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, os.ErrNotExist)
	}
	return content, nil
}
