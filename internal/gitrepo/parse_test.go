package gitrepo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/local-mcps/gitrepo-mcp/internal/common"
)

func TestParseStatus(t *testing.T) {
	t.Run("mixed changes", func(t *testing.T) {
		out := &Outcome{Stdout: strings.Join([]string{
			"## main...origin/main [ahead 1]",
			"M  staged.go",
			" M edited.go",
			"A  added.go",
			" D removed.go",
			"?? new.txt",
			"R  old.go -> renamed.go",
			"",
		}, "\n")}

		result, err := parseStatus(out)
		require.NoError(t, err)
		assert.Equal(t, "main", result.Branch)
		assert.Equal(t, []string{"staged.go", "added.go", "renamed.go"}, result.Staged)
		assert.Equal(t, []string{"edited.go", "removed.go"}, result.Unstaged)
		assert.Equal(t, []string{"new.txt"}, result.Untracked)
		assert.False(t, result.Clean)
	})

	t.Run("clean tree", func(t *testing.T) {
		result, err := parseStatus(&Outcome{Stdout: "## main\n"})
		require.NoError(t, err)
		assert.Equal(t, "main", result.Branch)
		assert.True(t, result.Clean)
		assert.Empty(t, result.Staged)
	})

	t.Run("detached head header", func(t *testing.T) {
		result, err := parseStatus(&Outcome{Stdout: "## HEAD (no branch)\n"})
		require.NoError(t, err)
		assert.Equal(t, "HEAD", result.Branch)
	})

	t.Run("unborn branch header", func(t *testing.T) {
		result, err := parseStatus(&Outcome{Stdout: "## No commits yet on main\n"})
		require.NoError(t, err)
		assert.Equal(t, "main", result.Branch)
	})

	t.Run("malformed entry", func(t *testing.T) {
		_, err := parseStatus(&Outcome{Stdout: "## main\nxx\n"})
		require.Error(t, err)
		assert.Equal(t, common.KindParseError, common.KindOf(err))
	})
}

func TestParseLog(t *testing.T) {
	t.Run("well-formed records", func(t *testing.T) {
		out := &Outcome{Stdout: strings.Join([]string{
			"f00dfeedf00dfeedf00dfeedf00dfeedf00dfeed|Alice <alice@example.com>|2026-08-01T10:00:00+00:00|Fix parser",
			"cafebabecafebabecafebabecafebabecafebabe|Bob <bob@example.com>|2026-07-30T09:00:00+00:00|Add tool | with pipe",
			"",
		}, "\n")}

		result, err := parseLog(out)
		require.NoError(t, err)
		require.Len(t, result.Commits, 2)
		assert.Equal(t, "Alice <alice@example.com>", result.Commits[0].Author)
		assert.Equal(t, "Fix parser", result.Commits[0].Subject)
		// Pipes in the subject survive because the subject is the last field.
		assert.Equal(t, "Add tool | with pipe", result.Commits[1].Subject)
	})

	t.Run("empty history", func(t *testing.T) {
		result, err := parseLog(&Outcome{Stdout: ""})
		require.NoError(t, err)
		assert.Empty(t, result.Commits)
	})

	t.Run("malformed record", func(t *testing.T) {
		_, err := parseLog(&Outcome{Stdout: "not-a-log-line\n"})
		require.Error(t, err)
		assert.Equal(t, common.KindParseError, common.KindOf(err))
	})

	t.Run("parse error excerpt is bounded", func(t *testing.T) {
		long := strings.Repeat("x", 500)
		_, err := parseLog(&Outcome{Stdout: long + "\n"})
		require.Error(t, err)
		assert.Less(t, len(err.Error()), 200)
	})
}

func TestParseBranches(t *testing.T) {
	t.Run("current marked with asterisk", func(t *testing.T) {
		out := &Outcome{Stdout: "  dev\n* main\n  release/1.0\n"}
		result, err := parseBranches(out)
		require.NoError(t, err)
		assert.Equal(t, "main", result.Current)
		assert.Equal(t, []string{"dev", "release/1.0"}, result.Others)
	})

	t.Run("detached head has no current", func(t *testing.T) {
		result, err := parseBranches(&Outcome{Stdout: "* (HEAD detached at a4b9f4a)\n  main\n"})
		require.NoError(t, err)
		assert.Empty(t, result.Current)
		assert.Equal(t, []string{"main"}, result.Others)
	})
}

func TestParseDiff(t *testing.T) {
	t.Run("numstat summary", func(t *testing.T) {
		raw := &Outcome{Stdout: "diff --git a/x b/x\n"}
		numstat := &Outcome{Stdout: "10\t2\tmain.go\n3\t0\tutil.go\n-\t-\timg.png\n"}

		result, err := parseDiff(raw, numstat)
		require.NoError(t, err)
		assert.Equal(t, 3, result.FilesChanged)
		assert.Equal(t, 13, result.Insertions)
		assert.Equal(t, 2, result.Deletions)
		assert.Equal(t, "diff --git a/x b/x\n", result.Diff)
	})

	t.Run("empty diff", func(t *testing.T) {
		result, err := parseDiff(&Outcome{}, &Outcome{})
		require.NoError(t, err)
		assert.Equal(t, 0, result.FilesChanged)
		assert.Empty(t, result.Diff)
	})
}

func TestParseRemotes(t *testing.T) {
	t.Run("fetch and push urls", func(t *testing.T) {
		out := &Outcome{Stdout: strings.Join([]string{
			"origin\thttps://example.com/a.git (fetch)",
			"origin\thttps://example.com/a.git (push)",
			"mirror\tgit@example.com:b.git (fetch)",
			"mirror\tgit@example.com:b-push.git (push)",
			"",
		}, "\n")}

		result, err := parseRemotes(out)
		require.NoError(t, err)
		require.Len(t, result.Remotes, 2)
		assert.Equal(t, "https://example.com/a.git", result.Remotes["origin"].FetchURL)
		assert.Equal(t, "git@example.com:b-push.git", result.Remotes["mirror"].PushURL)
	})

	t.Run("no remotes", func(t *testing.T) {
		result, err := parseRemotes(&Outcome{Stdout: ""})
		require.NoError(t, err)
		assert.Empty(t, result.Remotes)
	})
}

func TestParseShowCommit(t *testing.T) {
	t.Run("header and diff", func(t *testing.T) {
		stdout := "abc123" + showFieldSep +
			"Alice <alice@example.com>" + showFieldSep +
			"2026-08-01T10:00:00+00:00" + showFieldSep +
			"Fix parser\n\nLonger body.\n" + showRecordSep +
			"\ndiff --git a/x b/x\n"

		result, err := parseShowCommit(&Outcome{Stdout: stdout})
		require.NoError(t, err)
		assert.Equal(t, "abc123", result.Hash)
		assert.Equal(t, "Fix parser\n\nLonger body.", result.Message)
		assert.Equal(t, "diff --git a/x b/x\n", result.Diff)
	})

	t.Run("missing separator", func(t *testing.T) {
		_, err := parseShowCommit(&Outcome{Stdout: "garbage"})
		require.Error(t, err)
		assert.Equal(t, common.KindParseError, common.KindOf(err))
	})
}

func TestParseSearch(t *testing.T) {
	t.Run("matches with colons in text", func(t *testing.T) {
		out := &Outcome{Stdout: "main.go:12:\t// TODO: fix this\nutil.go:3:x := map[string]int{}\n"}
		result, err := parseSearch(out)
		require.NoError(t, err)
		require.Len(t, result.Matches, 2)
		assert.Equal(t, "main.go", result.Matches[0].Path)
		assert.Equal(t, 12, result.Matches[0].LineNumber)
		assert.Equal(t, "\t// TODO: fix this", result.Matches[0].LineText)
		assert.Equal(t, "x := map[string]int{}", result.Matches[1].LineText)
	})

	t.Run("malformed line", func(t *testing.T) {
		_, err := parseSearch(&Outcome{Stdout: "no-line-number\n"})
		require.Error(t, err)
		assert.Equal(t, common.KindParseError, common.KindOf(err))
	})
}

func TestParseStats(t *testing.T) {
	commits := &Outcome{Stdout: "42\n"}
	branches := &Outcome{Stdout: "main\ndev\norigin/main\n"}
	shortlog := &Outcome{Stdout: "    30\tAlice\n    10\tBob\n     2\tCarol\n"}

	result, err := parseStats(commits, branches, shortlog)
	require.NoError(t, err)
	assert.Equal(t, 42, result.CommitCount)
	assert.Equal(t, 3, result.BranchCount)
	assert.Equal(t, 3, result.ContributorCount)
	require.Len(t, result.TopContributors, 3)
	assert.Equal(t, Contributor{Name: "Alice", Commits: 30}, result.TopContributors[0])

	t.Run("detached pseudo-entry does not count as a branch", func(t *testing.T) {
		detached := &Outcome{Stdout: "(HEAD detached at a4b9f4a)\nmain\ndev\n"}
		result, err := parseStats(commits, detached, shortlog)
		require.NoError(t, err)
		assert.Equal(t, 2, result.BranchCount)
	})

	t.Run("bad commit count", func(t *testing.T) {
		_, err := parseStats(&Outcome{Stdout: "fatal: oops\n"}, branches, shortlog)
		require.Error(t, err)
		assert.Equal(t, common.KindParseError, common.KindOf(err))
	})
}
