package gitrepo

import (
	"strconv"
	"strings"

	"github.com/local-mcps/gitrepo-mcp/internal/common"
)

// Parsers turn one git invocation's Outcome into the structured payload of
// the matching tool. They assume LC_ALL=C output; anything that does not
// match the expected shape becomes a ParseError carrying a bounded excerpt
// of the offending line, never the whole output.

const excerptLimit = 80

func excerpt(line string) string {
	if len(line) > excerptLimit {
		return line[:excerptLimit] + "..."
	}
	return line
}

func parseErrorf(line string) error {
	return common.NewToolError(common.KindParseError, "unexpected git output: %q", excerpt(line))
}

// parseStatus consumes `status --porcelain --branch`. The header line names
// the branch; entry lines carry a two-column XY code followed by the path.
func parseStatus(out *Outcome) (*StatusResult, error) {
	result := &StatusResult{
		Staged:    []string{},
		Unstaged:  []string{},
		Untracked: []string{},
	}

	for _, line := range strings.Split(out.Stdout, "\n") {
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "## ") {
			result.Branch = parseStatusBranch(line[3:])
			continue
		}
		if len(line) < 4 {
			return nil, parseErrorf(line)
		}

		index, worktree := line[0], line[1]
		path := line[3:]
		// Renames report "old -> new"; the new path is the one callers
		// care about.
		if i := strings.Index(path, " -> "); i >= 0 {
			path = path[i+4:]
		}

		if index == '?' && worktree == '?' {
			result.Untracked = append(result.Untracked, path)
			continue
		}
		if strings.ContainsRune("MADRC", rune(index)) {
			result.Staged = append(result.Staged, path)
		}
		if strings.ContainsRune("MD", rune(worktree)) {
			result.Unstaged = append(result.Unstaged, path)
		}
	}

	result.Clean = len(result.Staged) == 0 && len(result.Unstaged) == 0 && len(result.Untracked) == 0
	return result, nil
}

func parseStatusBranch(header string) string {
	if strings.HasPrefix(header, "No commits yet on ") {
		return strings.TrimPrefix(header, "No commits yet on ")
	}
	if strings.HasPrefix(header, "HEAD ") {
		return "HEAD"
	}
	if i := strings.Index(header, "..."); i >= 0 {
		return header[:i]
	}
	if i := strings.Index(header, " ["); i >= 0 {
		return header[:i]
	}
	return header
}

// logFormat is the delimited record layout shared by repo_log and
// repo_file_history. The subject is last so embedded pipes survive SplitN.
const logFormat = "%H|%an <%ae>|%aI|%s"

func parseLog(out *Outcome) (*LogResult, error) {
	result := &LogResult{Commits: []Commit{}, Truncated: out.Truncated}
	for _, line := range strings.Split(out.Stdout, "\n") {
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "|", 4)
		if len(parts) != 4 {
			return nil, parseErrorf(line)
		}
		result.Commits = append(result.Commits, Commit{
			Hash:    parts[0],
			Author:  parts[1],
			Date:    parts[2],
			Subject: parts[3],
		})
	}
	return result, nil
}

// parseBranches consumes `branch --format=%(HEAD) %(refname:short)` where
// the first column is "*" for the checked-out branch. On a detached HEAD git
// emits a "* (HEAD detached at <hash>)" pseudo-entry instead of a branch;
// that entry is skipped so Current stays empty.
func parseBranches(out *Outcome) (*BranchesResult, error) {
	result := &BranchesResult{Others: []string{}}
	for _, line := range strings.Split(out.Stdout, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if len(line) < 2 {
			return nil, parseErrorf(line)
		}
		name := strings.TrimSpace(line[1:])
		if name == "" {
			return nil, parseErrorf(line)
		}
		if strings.HasPrefix(name, "(") {
			continue
		}
		if line[0] == '*' {
			result.Current = name
		} else {
			result.Others = append(result.Others, name)
		}
	}
	return result, nil
}

// parseDiff combines the raw diff text with a `--numstat` summary. Binary
// files report "-" counts; they still count as changed files.
func parseDiff(raw, numstat *Outcome) (*DiffResult, error) {
	result := &DiffResult{Diff: raw.Stdout, Truncated: raw.Truncated || numstat.Truncated}
	for _, line := range strings.Split(numstat.Stdout, "\n") {
		if line == "" {
			continue
		}
		fields := strings.SplitN(line, "\t", 3)
		if len(fields) != 3 {
			return nil, parseErrorf(line)
		}
		result.FilesChanged++
		if ins, err := strconv.Atoi(fields[0]); err == nil {
			result.Insertions += ins
		}
		if del, err := strconv.Atoi(fields[1]); err == nil {
			result.Deletions += del
		}
	}
	return result, nil
}

// parseRemotes consumes `remote -v`: one line per direction in the form
// "name<TAB>url (fetch|push)".
func parseRemotes(out *Outcome) (*RemotesResult, error) {
	result := &RemotesResult{Remotes: map[string]Remote{}}
	for _, line := range strings.Split(out.Stdout, "\n") {
		if line == "" {
			continue
		}
		fields := strings.SplitN(line, "\t", 2)
		if len(fields) != 2 {
			return nil, parseErrorf(line)
		}
		name := fields[0]
		remote := result.Remotes[name]
		switch {
		case strings.HasSuffix(fields[1], " (fetch)"):
			remote.FetchURL = strings.TrimSuffix(fields[1], " (fetch)")
		case strings.HasSuffix(fields[1], " (push)"):
			remote.PushURL = strings.TrimSuffix(fields[1], " (push)")
		default:
			return nil, parseErrorf(line)
		}
		result.Remotes[name] = remote
	}
	return result, nil
}

// showFieldSep and showRecordSep delimit the commit header produced for
// repo_show_commit; the unified diff follows the record separator.
const (
	showFieldSep  = "\x1f"
	showRecordSep = "\x1e"
	showFormat    = "%H" + showFieldSep + "%an <%ae>" + showFieldSep + "%aI" + showFieldSep + "%B" + showRecordSep
)

func parseShowCommit(out *Outcome) (*CommitDetail, error) {
	header, diff, found := strings.Cut(out.Stdout, showRecordSep)
	if !found {
		return nil, parseErrorf(out.Stdout)
	}
	fields := strings.SplitN(header, showFieldSep, 4)
	if len(fields) != 4 {
		return nil, parseErrorf(header)
	}
	return &CommitDetail{
		Hash:    fields[0],
		Author:  fields[1],
		Date:    fields[2],
		Message: strings.TrimSpace(fields[3]),
		Diff:    strings.TrimPrefix(diff, "\n"),
	}, nil
}

// parseSearch consumes `grep -n` output: "path:line:text". Exit code 1 with
// empty output is a legitimate empty result, handled by the dispatcher
// before this parser runs.
func parseSearch(out *Outcome) (*SearchResult, error) {
	result := &SearchResult{Matches: []SearchMatch{}, Truncated: out.Truncated}
	for _, line := range strings.Split(out.Stdout, "\n") {
		if line == "" {
			continue
		}
		fields := strings.SplitN(line, ":", 3)
		if len(fields) != 3 {
			return nil, parseErrorf(line)
		}
		lineNumber, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, parseErrorf(line)
		}
		result.Matches = append(result.Matches, SearchMatch{
			Path:       fields[0],
			LineNumber: lineNumber,
			LineText:   fields[2],
		})
	}
	return result, nil
}

const topContributorCount = 5

// parseStats folds three invocations into one summary: `rev-list --count
// HEAD`, a branch listing over local and remote refs, and `shortlog -sn
// --all` for contributors.
func parseStats(commits, branches, shortlog *Outcome) (*StatsResult, error) {
	result := &StatsResult{TopContributors: []Contributor{}}

	countText := strings.TrimSpace(commits.Stdout)
	count, err := strconv.Atoi(countText)
	if err != nil {
		return nil, parseErrorf(countText)
	}
	result.CommitCount = count

	for _, line := range strings.Split(branches.Stdout, "\n") {
		name := strings.TrimSpace(line)
		// The detached-HEAD pseudo-entry is not a branch.
		if name != "" && !strings.HasPrefix(name, "(") {
			result.BranchCount++
		}
	}

	for _, line := range strings.Split(shortlog.Stdout, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.SplitN(strings.TrimSpace(line), "\t", 2)
		if len(fields) != 2 {
			return nil, parseErrorf(line)
		}
		commitCount, err := strconv.Atoi(strings.TrimSpace(fields[0]))
		if err != nil {
			return nil, parseErrorf(line)
		}
		result.ContributorCount++
		if len(result.TopContributors) < topContributorCount {
			result.TopContributors = append(result.TopContributors, Contributor{
				Name:    fields[1],
				Commits: commitCount,
			})
		}
	}

	return result, nil
}
