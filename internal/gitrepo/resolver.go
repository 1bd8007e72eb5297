package gitrepo

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/local-mcps/gitrepo-mcp/internal/common"
)

// Resolver confines repository access to one canonicalized root directory.
// It is the only component allowed to turn a caller-supplied name into a
// filesystem path.
type Resolver struct {
	root string
}

// NewResolver canonicalizes the root once at construction. The root must
// exist; everything after that is checked per call.
func NewResolver(root string) (*Resolver, error) {
	if root == "" {
		return nil, common.NewToolError(common.KindInternalError, "repository root is not configured")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, common.NewToolError(common.KindInternalError, "repository root is not resolvable")
	}
	canonical, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, common.NewToolError(common.KindInternalError, "repository root does not exist")
	}
	return &Resolver{root: canonical}, nil
}

func (r *Resolver) Root() string {
	return r.root
}

// Resolve validates repoName and returns a handle whose canonical path is a
// descendant of the root and contains a .git marker. The prefix check runs
// on the canonical form so symlink and dot-dot escapes both fail it.
func (r *Resolver) Resolve(repoName string) (RepoHandle, error) {
	name := strings.TrimSpace(repoName)
	if name == "" {
		return RepoHandle{}, common.NewToolError(common.KindInvalidArgument, "repository name is required")
	}
	if filepath.IsAbs(name) || strings.HasPrefix(name, "~") {
		return RepoHandle{}, common.NewToolError(common.KindAccessDenied, "repository name must be relative to the repository root")
	}
	if strings.ContainsRune(name, '\\') || hasDotDotElement(name) {
		return RepoHandle{}, common.NewToolError(common.KindAccessDenied, "repository name must not traverse outside the repository root")
	}

	joined := filepath.Join(r.root, name)
	canonical, err := filepath.EvalSymlinks(joined)
	if err != nil {
		// Deliberately drops the underlying error; it would leak the
		// host path of whatever the name pointed at.
		return RepoHandle{}, common.NewToolError(common.KindInvalidRepository, "repository not found: %s", name)
	}

	if canonical != r.root && !strings.HasPrefix(canonical, r.root+string(filepath.Separator)) {
		return RepoHandle{}, common.NewToolError(common.KindAccessDenied, "repository name must not traverse outside the repository root")
	}

	if !hasGitMarker(canonical) {
		return RepoHandle{}, common.NewToolError(common.KindInvalidRepository, "not a git repository: %s", name)
	}

	return RepoHandle{Name: name, Path: canonical}, nil
}

func hasDotDotElement(name string) bool {
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return true
		}
	}
	return false
}

// hasGitMarker accepts both layouts: a .git directory for ordinary clones
// and a .git file for worktrees and submodules.
func hasGitMarker(path string) bool {
	info, err := os.Stat(filepath.Join(path, ".git"))
	return err == nil && (info.IsDir() || info.Mode().IsRegular())
}
