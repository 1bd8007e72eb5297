package gitrepo

import (
	"context"
	"errors"
	"time"

	"github.com/local-mcps/gitrepo-mcp/config"
	"github.com/local-mcps/gitrepo-mcp/internal/common"
	"github.com/local-mcps/gitrepo-mcp/pkg/mcp"
)

// Server wires the dispatcher into the MCP tool registry. All tools are
// read-only: nothing registered here can mutate repository state.
type Server struct {
	config     *config.GitConfig
	dispatcher *Dispatcher
	logger     *common.Logger
}

func NewServer(cfg *config.GitConfig, logger *common.Logger) (*Server, error) {
	resolver, err := NewResolver(cfg.RepositoryRoot)
	if err != nil {
		return nil, err
	}
	runner := NewGitRunner(time.Duration(cfg.TimeoutSeconds)*time.Second, cfg.MaxOutputBytes, logger)
	return &Server{
		config:     cfg,
		dispatcher: NewDispatcher(cfg, resolver, runner, logger),
		logger:     logger,
	}, nil
}

func (s *Server) RegisterTools(server *mcp.Server) {
	server.RegisterTool(s.tool(ToolListRepos,
		"List git repositories under the configured root, optionally filtered by name",
		mcp.BuildInputSchema(map[string]interface{}{
			"filter": mcp.StringProperty("Case-insensitive substring filter on repository names"),
		}, nil)))

	server.RegisterTool(s.tool(ToolStatus,
		"Get working tree status: current branch plus staged, unstaged, and untracked files",
		repoSchema(nil, nil)))

	server.RegisterTool(s.tool(ToolLog,
		"Get commit history, most recent first",
		repoSchema(map[string]interface{}{
			"limit": mcp.IntProperty("Maximum commits to return (default 10, capped)"),
		}, nil)))

	server.RegisterTool(s.tool(ToolBranches,
		"List local branches and which one is checked out",
		repoSchema(nil, nil)))

	server.RegisterTool(s.tool(ToolDiff,
		"Show uncommitted changes, or the diff between two commits, with a change summary",
		repoSchema(map[string]interface{}{
			"commit_a": mcp.StringProperty("Older commit hash; with no commits the working tree diff is shown"),
			"commit_b": mcp.StringProperty("Newer commit hash; requires commit_a"),
			"path":     mcp.StringProperty("Limit the diff to one file or directory"),
		}, nil)))

	server.RegisterTool(s.tool(ToolRemote,
		"Show configured remotes with fetch and push URLs",
		repoSchema(nil, nil)))

	server.RegisterTool(s.tool(ToolCurrentBranch,
		"Get the checked-out branch, or the commit hash when HEAD is detached",
		repoSchema(nil, nil)))

	server.RegisterTool(s.tool(ToolShowCommit,
		"Show one commit: header, full message, and diff",
		repoSchema(map[string]interface{}{
			"commit_hash": mcp.StringProperty("Commit hash (4-64 hex characters)"),
		}, []string{"commit_hash"})))

	server.RegisterTool(s.tool(ToolFileHistory,
		"Get commit history for a single file, following renames",
		repoSchema(map[string]interface{}{
			"path":  mcp.StringProperty("File path relative to the repository root"),
			"limit": mcp.IntProperty("Maximum commits to return (default 10, capped)"),
		}, []string{"path"})))

	server.RegisterTool(s.tool(ToolSearch,
		"Search tracked files for a pattern using git grep",
		repoSchema(map[string]interface{}{
			"pattern":   mcp.StringProperty("Text or regular expression to search for"),
			"path_glob": mcp.StringProperty("Optional pathspec glob narrowing the search, e.g. *.go"),
		}, []string{"pattern"})))

	server.RegisterTool(s.tool(ToolStats,
		"Get repository statistics: commit, branch, and contributor counts",
		repoSchema(nil, nil)))
}

// repoSchema builds a schema with the repo_name argument every
// repository-scoped tool shares.
func repoSchema(extra map[string]interface{}, required []string) map[string]interface{} {
	properties := map[string]interface{}{
		"repo_name": mcp.StringProperty("Repository name relative to the configured root"),
	}
	for k, v := range extra {
		properties[k] = v
	}
	return mcp.BuildInputSchema(properties, append([]string{"repo_name"}, required...))
}

func (s *Server) tool(name ToolName, description string, schema map[string]interface{}) *mcp.Tool {
	return &mcp.Tool{
		Name:        string(name),
		Description: description,
		InputSchema: schema,
		Handler: func(ctx context.Context, args mcp.Arguments) (*mcp.ToolResult, error) {
			payload, err := s.dispatcher.Dispatch(ctx, ToolCall{Name: string(name), Args: args})
			if err != nil {
				return s.failure(name, err), nil
			}
			return mcp.JSONResult(payload)
		},
	}
}

// failure converts any dispatch error into the structured {kind, message}
// payload. Unexpected errors collapse to internal_error with a fixed
// message so nothing unvetted reaches the caller.
func (s *Server) failure(name ToolName, err error) *mcp.ToolResult {
	var te *common.ToolError
	if !errors.As(err, &te) {
		s.logger.WithFields(map[string]interface{}{
			"tool":  string(name),
			"error": err.Error(),
		}).Error("unexpected dispatch error")
		return mcp.FailureResult(string(common.KindInternalError), "internal error")
	}
	return mcp.FailureResult(string(te.Kind), te.Message)
}
