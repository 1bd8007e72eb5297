package gitrepo

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/local-mcps/gitrepo-mcp/internal/common"
)

// makeRepoDir creates a bare-bones repository marker without needing the
// git binary: a directory containing a .git subdirectory.
func makeRepoDir(t *testing.T, root, name string) string {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git"), 0o755))
	return dir
}

func TestNewResolver(t *testing.T) {
	t.Run("missing root", func(t *testing.T) {
		_, err := NewResolver(filepath.Join(t.TempDir(), "does-not-exist"))
		assert.Error(t, err)
	})

	t.Run("empty root", func(t *testing.T) {
		_, err := NewResolver("")
		assert.Error(t, err)
	})

	t.Run("root is canonicalized", func(t *testing.T) {
		root := t.TempDir()
		r, err := NewResolver(root)
		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(r.Root()))
	})
}

func TestResolve(t *testing.T) {
	root := t.TempDir()
	makeRepoDir(t, root, "alpha")

	r, err := NewResolver(root)
	require.NoError(t, err)

	t.Run("valid repository", func(t *testing.T) {
		handle, err := r.Resolve("alpha")
		require.NoError(t, err)
		assert.Equal(t, "alpha", handle.Name)
		assert.True(t, strings.HasPrefix(handle.Path, r.Root()))
	})

	t.Run("traversal attempts are denied", func(t *testing.T) {
		names := []string{
			"..",
			"../alpha",
			"alpha/../..",
			"../../etc",
			"/etc",
			"~/repos",
			`..\..\alpha`,
		}
		for _, name := range names {
			_, err := r.Resolve(name)
			require.Error(t, err, "expected %q to be rejected", name)
			assert.Equal(t, common.KindAccessDenied, common.KindOf(err), "name %q", name)
		}
	})

	t.Run("empty name", func(t *testing.T) {
		_, err := r.Resolve("  ")
		assert.Equal(t, common.KindInvalidArgument, common.KindOf(err))
	})

	t.Run("unknown repository", func(t *testing.T) {
		_, err := r.Resolve("missing")
		assert.Equal(t, common.KindInvalidRepository, common.KindOf(err))
		// Error text must not leak the host path of the root.
		assert.NotContains(t, err.Error(), root)
	})

	t.Run("directory without git marker", func(t *testing.T) {
		require.NoError(t, os.MkdirAll(filepath.Join(root, "plain"), 0o755))
		_, err := r.Resolve("plain")
		assert.Equal(t, common.KindInvalidRepository, common.KindOf(err))
	})

	t.Run("worktree marker file qualifies", func(t *testing.T) {
		dir := filepath.Join(root, "worktree")
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".git"), []byte("gitdir: elsewhere\n"), 0o644))
		handle, err := r.Resolve("worktree")
		require.NoError(t, err)
		assert.Equal(t, "worktree", handle.Name)
	})
}

func TestResolveSymlinkEscape(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(outside, ".git"), 0o755))
	require.NoError(t, os.Symlink(outside, filepath.Join(root, "escape")))

	r, err := NewResolver(root)
	require.NoError(t, err)

	_, err = r.Resolve("escape")
	require.Error(t, err)
	assert.Equal(t, common.KindAccessDenied, common.KindOf(err))
	assert.NotContains(t, err.Error(), outside)
}

func TestListRepositories(t *testing.T) {
	root := t.TempDir()
	// Created out of order to prove the listing sorts.
	makeRepoDir(t, root, "c")
	makeRepoDir(t, root, "a")
	makeRepoDir(t, root, "b")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "d"), 0o755)) // no marker
	require.NoError(t, os.WriteFile(filepath.Join(root, "file.txt"), nil, 0o644))

	r, err := NewResolver(root)
	require.NoError(t, err)

	t.Run("lexicographic order, non-git entries excluded", func(t *testing.T) {
		repos, err := r.ListRepositories("")
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, repos)
	})

	t.Run("stable across calls", func(t *testing.T) {
		first, err := r.ListRepositories("")
		require.NoError(t, err)
		second, err := r.ListRepositories("")
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("case-insensitive filter", func(t *testing.T) {
		makeRepoDir(t, root, "Backend")
		repos, err := r.ListRepositories("back")
		require.NoError(t, err)
		assert.Equal(t, []string{"Backend"}, repos)
	})

	t.Run("symlink escaping the root is excluded", func(t *testing.T) {
		outside := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(outside, ".git"), 0o755))
		require.NoError(t, os.Symlink(outside, filepath.Join(root, "0-escape")))

		repos, err := r.ListRepositories("")
		require.NoError(t, err)
		assert.NotContains(t, repos, "0-escape")
	})
}
