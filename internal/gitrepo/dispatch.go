package gitrepo

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/local-mcps/gitrepo-mcp/config"
	"github.com/local-mcps/gitrepo-mcp/internal/common"
	"github.com/local-mcps/gitrepo-mcp/pkg/mcp"
)

// ToolName is a closed enumeration: adding a tool means adding a constant
// and a case to Dispatch, a compile-visible change rather than a runtime
// string lookup.
type ToolName string

const (
	ToolListRepos     ToolName = "list_repos"
	ToolStatus        ToolName = "repo_status"
	ToolLog           ToolName = "repo_log"
	ToolBranches      ToolName = "repo_branches"
	ToolDiff          ToolName = "repo_diff"
	ToolRemote        ToolName = "repo_remote"
	ToolCurrentBranch ToolName = "repo_current_branch"
	ToolShowCommit    ToolName = "repo_show_commit"
	ToolFileHistory   ToolName = "repo_file_history"
	ToolSearch        ToolName = "repo_search"
	ToolStats         ToolName = "repo_stats"
)

type ToolCall struct {
	Name string
	Args mcp.Arguments
}

// Dispatcher routes one tool call through validation, path resolution,
// execution, and parsing. It holds no per-call state; calls are independent
// and may run concurrently.
type Dispatcher struct {
	cfg      *config.GitConfig
	resolver *Resolver
	runner   Runner
	logger   *common.Logger
}

func NewDispatcher(cfg *config.GitConfig, resolver *Resolver, runner Runner, logger *common.Logger) *Dispatcher {
	return &Dispatcher{
		cfg:      cfg,
		resolver: resolver,
		runner:   runner,
		logger:   logger,
	}
}

// Dispatch returns exactly one of a structured payload or a ToolError; it
// never returns both and never panics across the boundary.
func (d *Dispatcher) Dispatch(ctx context.Context, call ToolCall) (interface{}, error) {
	switch ToolName(call.Name) {
	case ToolListRepos:
		return d.listRepos(call.Args)
	case ToolStatus:
		return d.repoStatus(ctx, call.Args)
	case ToolLog:
		return d.repoLog(ctx, call.Args)
	case ToolBranches:
		return d.repoBranches(ctx, call.Args)
	case ToolDiff:
		return d.repoDiff(ctx, call.Args)
	case ToolRemote:
		return d.repoRemote(ctx, call.Args)
	case ToolCurrentBranch:
		return d.repoCurrentBranch(ctx, call.Args)
	case ToolShowCommit:
		return d.repoShowCommit(ctx, call.Args)
	case ToolFileHistory:
		return d.repoFileHistory(ctx, call.Args)
	case ToolSearch:
		return d.repoSearch(ctx, call.Args)
	case ToolStats:
		return d.repoStats(ctx, call.Args)
	default:
		return nil, common.NewToolError(common.KindUnknownTool, "unknown tool: %s", call.Name)
	}
}

func invalidArg(err error) error {
	return common.WrapToolError(common.KindInvalidArgument, err, "%s", err.Error())
}

func (d *Dispatcher) resolveArg(args mcp.Arguments) (RepoHandle, error) {
	repoName, err := args.String("repo_name")
	if err != nil {
		return RepoHandle{}, invalidArg(err)
	}
	return d.resolver.Resolve(repoName)
}

var commitHashPattern = regexp.MustCompile(`^[0-9a-fA-F]{4,64}$`)

func validateCommitHash(hash string) error {
	if !commitHashPattern.MatchString(hash) {
		return common.NewToolError(common.KindInvalidArgument, "commit hash must be 4-64 hex characters")
	}
	return nil
}

// validateRelPath guards file arguments that become git pathspecs. They are
// always preceded by "--" on the command line, but a leading dash or a
// traversal sequence is still rejected outright.
func validateRelPath(path string) error {
	if path == "" {
		return common.NewToolError(common.KindInvalidArgument, "path must not be empty")
	}
	if strings.HasPrefix(path, "-") || filepath.IsAbs(path) || strings.ContainsRune(path, '\\') {
		return common.NewToolError(common.KindInvalidArgument, "path must be relative and must not start with a dash")
	}
	if hasDotDotElement(path) {
		return common.NewToolError(common.KindInvalidArgument, "path must not traverse outside the repository")
	}
	return nil
}

func (d *Dispatcher) clampLimit(args mcp.Arguments) (int, error) {
	limit, err := args.Int("limit", d.cfg.DefaultLogLimit)
	if err != nil {
		return 0, invalidArg(err)
	}
	if limit < 1 {
		limit = d.cfg.DefaultLogLimit
	}
	if limit > d.cfg.MaxLogLimit {
		limit = d.cfg.MaxLogLimit
	}
	return limit, nil
}

// execFailure maps a failed Outcome to the caller-facing error for tools
// where a non-zero exit has no benign reading. The message stays generic:
// git's stderr can carry host paths.
func execFailure(o *Outcome, subcommand string) error {
	if o.TimedOut {
		return common.NewToolError(common.KindExecutionTimeout, "git %s did not finish within the configured timeout", subcommand)
	}
	if o.Busy() {
		return common.NewToolError(common.KindRepositoryBusy, "repository is locked by another git process")
	}
	if o.ExitCode != 0 {
		return common.NewToolError(common.KindInternalError, "git %s exited with status %d", subcommand, o.ExitCode)
	}
	return nil
}

func (d *Dispatcher) listRepos(args mcp.Arguments) (interface{}, error) {
	filter, err := args.OptionalString("filter")
	if err != nil {
		return nil, invalidArg(err)
	}
	repos, err := d.resolver.ListRepositories(filter)
	if err != nil {
		return nil, err
	}
	return &ListReposResult{Repositories: repos, Count: len(repos)}, nil
}

func (d *Dispatcher) repoStatus(ctx context.Context, args mcp.Arguments) (interface{}, error) {
	repo, err := d.resolveArg(args)
	if err != nil {
		return nil, err
	}
	out, err := d.runner.Run(ctx, repo, "status", "--porcelain", "--branch")
	if err != nil {
		return nil, err
	}
	if err := execFailure(out, "status"); err != nil {
		return nil, err
	}
	return parseStatus(out)
}

func (d *Dispatcher) repoLog(ctx context.Context, args mcp.Arguments) (interface{}, error) {
	repo, err := d.resolveArg(args)
	if err != nil {
		return nil, err
	}
	limit, err := d.clampLimit(args)
	if err != nil {
		return nil, err
	}
	out, err := d.runner.Run(ctx, repo, "log", fmt.Sprintf("-n%d", limit), "--format="+logFormat)
	if err != nil {
		return nil, err
	}
	if err := execFailure(out, "log"); err != nil {
		return nil, err
	}
	return parseLog(out)
}

func (d *Dispatcher) repoBranches(ctx context.Context, args mcp.Arguments) (interface{}, error) {
	repo, err := d.resolveArg(args)
	if err != nil {
		return nil, err
	}
	out, err := d.runner.Run(ctx, repo, "branch", "--format=%(HEAD) %(refname:short)")
	if err != nil {
		return nil, err
	}
	if err := execFailure(out, "branch"); err != nil {
		return nil, err
	}
	return parseBranches(out)
}

func (d *Dispatcher) repoDiff(ctx context.Context, args mcp.Arguments) (interface{}, error) {
	repo, err := d.resolveArg(args)
	if err != nil {
		return nil, err
	}

	commitA, err := args.OptionalString("commit_a")
	if err != nil {
		return nil, invalidArg(err)
	}
	commitB, err := args.OptionalString("commit_b")
	if err != nil {
		return nil, invalidArg(err)
	}
	path, err := args.OptionalString("path")
	if err != nil {
		return nil, invalidArg(err)
	}

	var diffArgs []string
	if commitA != "" {
		if err := validateCommitHash(commitA); err != nil {
			return nil, err
		}
		diffArgs = append(diffArgs, commitA)
	}
	if commitB != "" {
		if commitA == "" {
			return nil, common.NewToolError(common.KindInvalidArgument, "commit_b requires commit_a")
		}
		if err := validateCommitHash(commitB); err != nil {
			return nil, err
		}
		diffArgs = append(diffArgs, commitB)
	}
	if path != "" {
		if err := validateRelPath(path); err != nil {
			return nil, err
		}
		diffArgs = append(diffArgs, "--", path)
	}

	raw, err := d.runner.Run(ctx, repo, "diff", diffArgs...)
	if err != nil {
		return nil, err
	}
	if raw.ExitCode != 0 {
		if err := execFailure(raw, "diff"); err != nil {
			if common.KindOf(err) == common.KindInternalError && commitA != "" {
				return nil, common.NewToolError(common.KindInvalidArgument, "unknown commit")
			}
			return nil, err
		}
	}

	numstat, err := d.runner.Run(ctx, repo, "diff", append([]string{"--numstat"}, diffArgs...)...)
	if err != nil {
		return nil, err
	}
	if err := execFailure(numstat, "diff"); err != nil {
		return nil, err
	}

	return parseDiff(raw, numstat)
}

func (d *Dispatcher) repoRemote(ctx context.Context, args mcp.Arguments) (interface{}, error) {
	repo, err := d.resolveArg(args)
	if err != nil {
		return nil, err
	}
	out, err := d.runner.Run(ctx, repo, "remote", "-v")
	if err != nil {
		return nil, err
	}
	if err := execFailure(out, "remote"); err != nil {
		return nil, err
	}
	return parseRemotes(out)
}

func (d *Dispatcher) repoCurrentBranch(ctx context.Context, args mcp.Arguments) (interface{}, error) {
	repo, err := d.resolveArg(args)
	if err != nil {
		return nil, err
	}
	out, err := d.runner.Run(ctx, repo, "branch", "--show-current")
	if err != nil {
		return nil, err
	}
	if err := execFailure(out, "branch"); err != nil {
		return nil, err
	}

	branch := strings.TrimSpace(out.Stdout)
	if branch != "" {
		return &CurrentBranchResult{Branch: branch}, nil
	}

	// Empty output means detached HEAD; report the commit instead.
	head, err := d.runner.Run(ctx, repo, "rev-parse", "HEAD")
	if err != nil {
		return nil, err
	}
	if err := execFailure(head, "rev-parse"); err != nil {
		return nil, err
	}
	return &CurrentBranchResult{Detached: true, Hash: strings.TrimSpace(head.Stdout)}, nil
}

func (d *Dispatcher) repoShowCommit(ctx context.Context, args mcp.Arguments) (interface{}, error) {
	repo, err := d.resolveArg(args)
	if err != nil {
		return nil, err
	}
	hash, err := args.String("commit_hash")
	if err != nil {
		return nil, invalidArg(err)
	}
	if err := validateCommitHash(hash); err != nil {
		return nil, err
	}

	out, err := d.runner.Run(ctx, repo, "show", "--no-color", "--pretty=format:"+showFormat, hash)
	if err != nil {
		return nil, err
	}
	if out.ExitCode != 0 {
		if out.TimedOut || out.Busy() {
			return nil, execFailure(out, "show")
		}
		return nil, common.NewToolError(common.KindInvalidArgument, "unknown commit: %s", hash)
	}
	return parseShowCommit(out)
}

func (d *Dispatcher) repoFileHistory(ctx context.Context, args mcp.Arguments) (interface{}, error) {
	repo, err := d.resolveArg(args)
	if err != nil {
		return nil, err
	}
	path, err := args.String("path")
	if err != nil {
		return nil, invalidArg(err)
	}
	if err := validateRelPath(path); err != nil {
		return nil, err
	}
	limit, err := d.clampLimit(args)
	if err != nil {
		return nil, err
	}

	out, err := d.runner.Run(ctx, repo, "log",
		fmt.Sprintf("-n%d", limit), "--format="+logFormat, "--follow", "--", path)
	if err != nil {
		return nil, err
	}
	if err := execFailure(out, "log"); err != nil {
		return nil, err
	}
	return parseLog(out)
}

func (d *Dispatcher) repoSearch(ctx context.Context, args mcp.Arguments) (interface{}, error) {
	repo, err := d.resolveArg(args)
	if err != nil {
		return nil, err
	}
	pattern, err := args.String("pattern")
	if err != nil {
		return nil, invalidArg(err)
	}
	if strings.TrimSpace(pattern) == "" {
		return nil, common.NewToolError(common.KindInvalidArgument, "search pattern must not be empty")
	}
	glob, err := args.OptionalString("path_glob")
	if err != nil {
		return nil, invalidArg(err)
	}

	// -e keeps a pattern that starts with a dash from being read as an
	// option; the search covers tracked files only.
	grepArgs := []string{"-n", "-e", pattern}
	if glob != "" {
		if strings.HasPrefix(glob, "-") || strings.ContainsRune(glob, '\\') || hasDotDotElement(glob) {
			return nil, common.NewToolError(common.KindInvalidArgument, "path_glob must be a relative pathspec")
		}
		grepArgs = append(grepArgs, "--", glob)
	}

	out, err := d.runner.Run(ctx, repo, "grep", grepArgs...)
	if err != nil {
		return nil, err
	}
	// grep exit 1 means no matches, a legitimate empty result.
	if out.ExitCode == 1 && out.Stdout == "" {
		return &SearchResult{Matches: []SearchMatch{}}, nil
	}
	if err := execFailure(out, "grep"); err != nil {
		return nil, err
	}
	return parseSearch(out)
}

func (d *Dispatcher) repoStats(ctx context.Context, args mcp.Arguments) (interface{}, error) {
	repo, err := d.resolveArg(args)
	if err != nil {
		return nil, err
	}

	commits, err := d.runner.Run(ctx, repo, "rev-list", "--count", "HEAD")
	if err != nil {
		return nil, err
	}
	if err := execFailure(commits, "rev-list"); err != nil {
		return nil, err
	}

	branches, err := d.runner.Run(ctx, repo, "branch", "-a", "--format=%(refname:short)")
	if err != nil {
		return nil, err
	}
	if err := execFailure(branches, "branch"); err != nil {
		return nil, err
	}

	shortlog, err := d.runner.Run(ctx, repo, "shortlog", "-sn", "--all", "HEAD")
	if err != nil {
		return nil, err
	}
	if err := execFailure(shortlog, "shortlog"); err != nil {
		return nil, err
	}

	return parseStats(commits, branches, shortlog)
}
