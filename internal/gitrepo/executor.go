package gitrepo

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/local-mcps/gitrepo-mcp/internal/common"
)

// Runner abstracts git execution so the dispatcher can be exercised without
// a git binary or real repositories.
type Runner interface {
	Run(ctx context.Context, repo RepoHandle, subcommand string, args ...string) (*Outcome, error)
}

// allowedSubcommands is the closed set of git subcommands this server will
// ever spawn. Everything in it is read-only with respect to repository state.
var allowedSubcommands = map[string]bool{
	"status":        true,
	"log":           true,
	"branch":        true,
	"diff":          true,
	"remote":        true,
	"show":          true,
	"grep":          true,
	"rev-parse":     true,
	"rev-list":      true,
	"shortlog":      true,
	"count-objects": true,
}

type GitRunner struct {
	timeout   time.Duration
	maxOutput int
	logger    *common.Logger
}

func NewGitRunner(timeout time.Duration, maxOutput int, logger *common.Logger) *GitRunner {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if maxOutput <= 0 {
		maxOutput = 100000
	}
	return &GitRunner{timeout: timeout, maxOutput: maxOutput, logger: logger}
}

// Run spawns git with an argument vector; caller-derived values are always
// discrete argv entries, never interpolated into a shell string. The
// environment is reduced so global config, aliases, and hooks cannot
// redirect execution.
func (g *GitRunner) Run(ctx context.Context, repo RepoHandle, subcommand string, args ...string) (*Outcome, error) {
	if !allowedSubcommands[subcommand] {
		return nil, common.NewToolError(common.KindInternalError, "git subcommand not in whitelist: %s", subcommand)
	}
	if repo.Path == "" {
		return nil, common.NewToolError(common.KindInternalError, "git invoked without a resolved repository")
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	argv := append([]string{subcommand}, args...)
	cmd := exec.CommandContext(ctx, "git", argv...)
	cmd.Dir = repo.Path
	cmd.Env = gitEnv()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()

	outcome := &Outcome{}
	outcome.Stdout, outcome.Truncated = truncate(stdout.String(), g.maxOutput)
	outcome.Stderr, _ = truncate(stderr.String(), g.maxOutput)

	if err != nil {
		var exitErr *exec.ExitError
		switch {
		case ctx.Err() == context.DeadlineExceeded:
			outcome.ExitCode = -1
			outcome.TimedOut = true
		case errors.As(err, &exitErr):
			outcome.ExitCode = exitErr.ExitCode()
		default:
			return nil, common.WrapToolError(common.KindInternalError, err, "git execution failed")
		}
	}

	if g.logger != nil {
		g.logger.WithFields(map[string]interface{}{
			"repo":        repo.Name,
			"subcommand":  subcommand,
			"exit_code":   outcome.ExitCode,
			"duration_ms": time.Since(start).Milliseconds(),
		}).Debug("git invocation finished")
	}

	return outcome, nil
}

// gitEnv keeps only PATH and pins git into a no-config, no-prompt mode.
// LC_ALL=C holds output in the untranslated form the parsers expect.
func gitEnv() []string {
	return []string{
		"PATH=" + os.Getenv("PATH"),
		"HOME=/dev/null",
		"GIT_TERMINAL_PROMPT=0",
		"GIT_CONFIG_GLOBAL=/dev/null",
		"GIT_CONFIG_SYSTEM=/dev/null",
		"GIT_CONFIG_NOSYSTEM=1",
		"GIT_OPTIONAL_LOCKS=0",
		"LC_ALL=C",
	}
}

// Busy reports whether git lost a race on its own lock files, which callers
// are expected to retry rather than treat as a failure.
func (o *Outcome) Busy() bool {
	if o.ExitCode == 0 {
		return false
	}
	s := strings.ToLower(o.Stderr)
	return strings.Contains(s, "index.lock") || strings.Contains(s, "unable to create") && strings.Contains(s, ".lock")
}

// truncate bounds output at max bytes, cutting back to the last complete
// line so line-oriented parsers never see a partial record.
func truncate(s string, max int) (string, bool) {
	if len(s) <= max {
		return s, false
	}
	cut := s[:max]
	if i := strings.LastIndexByte(cut, '\n'); i >= 0 {
		return cut[:i+1], true
	}
	return "", true
}
