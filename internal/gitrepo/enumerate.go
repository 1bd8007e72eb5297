package gitrepo

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/local-mcps/gitrepo-mcp/internal/common"
)

// ListRepositories walks one level under the root and returns the names of
// entries carrying a git marker, sorted lexicographically. Symlinked entries
// whose canonical target escapes the root are skipped. The optional filter
// is a case-insensitive substring match on the name.
func (r *Resolver) ListRepositories(filter string) ([]string, error) {
	entries, err := os.ReadDir(r.root)
	if err != nil {
		return nil, common.NewToolError(common.KindInternalError, "repository root is not readable")
	}

	filter = strings.ToLower(strings.TrimSpace(filter))

	var repos []string
	for _, entry := range entries {
		candidate := filepath.Join(r.root, entry.Name())

		canonical, err := filepath.EvalSymlinks(candidate)
		if err != nil {
			continue
		}
		if canonical != r.root && !strings.HasPrefix(canonical, r.root+string(filepath.Separator)) {
			continue
		}

		info, err := os.Stat(canonical)
		if err != nil || !info.IsDir() {
			continue
		}
		if !hasGitMarker(canonical) {
			continue
		}
		if filter != "" && !strings.Contains(strings.ToLower(entry.Name()), filter) {
			continue
		}
		repos = append(repos, entry.Name())
	}

	sort.Strings(repos)
	return repos, nil
}
