package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/local-mcps/gitrepo-mcp/internal/common"
)

// Server speaks newline-delimited JSON-RPC on stdin/stdout. Tool calls run
// concurrently under a weighted semaphore; everything else is handled inline
// on the read loop.
type Server struct {
	name    string
	version string

	mu    sync.RWMutex
	tools map[string]*Tool

	input   io.Reader
	output  io.Writer
	writeMu sync.Mutex

	calls  *semaphore.Weighted
	wg     sync.WaitGroup
	logger *common.Logger
}

type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
	Handler     ToolHandler            `json:"-"`
}

type ToolHandler func(ctx context.Context, args Arguments) (*ToolResult, error)

type ToolResult struct {
	Content []ContentBlock `json:"content"`
	IsError bool           `json:"isError,omitempty"`
}

type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type Response struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *RPCError   `json:"error,omitempty"`
}

type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func NewServer(name, version string, maxConcurrentCalls int64, logger *common.Logger) *Server {
	if maxConcurrentCalls < 1 {
		maxConcurrentCalls = 1
	}
	if logger == nil {
		logger = common.NewLogger(common.LogLevelInfo, common.LogFormatJSON, nil, name)
	}
	return &Server{
		name:    name,
		version: version,
		tools:   make(map[string]*Tool),
		input:   os.Stdin,
		output:  os.Stdout,
		calls:   semaphore.NewWeighted(maxConcurrentCalls),
		logger:  logger,
	}
}

func (s *Server) SetIO(input io.Reader, output io.Writer) {
	s.input = input
	s.output = output
}

func (s *Server) RegisterTool(tool *Tool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tools[tool.Name] = tool
}

func (s *Server) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.input)
	scanner.Buffer(make([]byte, 1024*1024), 10*1024*1024)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			return ctx.Err()
		default:
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			s.sendError(nil, -32700, "Parse error", err.Error())
			continue
		}

		s.handleRequest(ctx, &req)
	}

	s.wg.Wait()
	return scanner.Err()
}

func (s *Server) handleRequest(ctx context.Context, req *Request) {
	switch req.Method {
	case "initialize":
		s.handleInitialize(req)
	case "tools/list":
		s.handleToolsList(req)
	case "tools/call":
		s.handleToolsCall(ctx, req)
	case "notifications/initialized":
		// Acknowledged, no response needed
	default:
		s.sendError(req.ID, -32601, "Method not found", req.Method)
	}
}

func (s *Server) handleInitialize(req *Request) {
	result := map[string]interface{}{
		"protocolVersion": "2024-11-05",
		"capabilities": map[string]interface{}{
			"tools": map[string]interface{}{},
		},
		"serverInfo": map[string]interface{}{
			"name":    s.name,
			"version": s.version,
		},
	}
	s.sendResult(req.ID, result)
}

func (s *Server) handleToolsList(req *Request) {
	s.mu.RLock()
	names := make([]string, 0, len(s.tools))
	for name := range s.tools {
		names = append(names, name)
	}
	sort.Strings(names)

	tools := make([]map[string]interface{}, 0, len(names))
	for _, name := range names {
		tool := s.tools[name]
		tools = append(tools, map[string]interface{}{
			"name":        tool.Name,
			"description": tool.Description,
			"inputSchema": tool.InputSchema,
		})
	}
	s.mu.RUnlock()

	s.sendResult(req.ID, map[string]interface{}{"tools": tools})
}

func (s *Server) handleToolsCall(ctx context.Context, req *Request) {
	var params struct {
		Name      string                 `json:"name"`
		Arguments map[string]interface{} `json:"arguments"`
	}

	if err := json.Unmarshal(req.Params, &params); err != nil {
		s.sendError(req.ID, -32602, "Invalid params", err.Error())
		return
	}

	s.mu.RLock()
	tool, ok := s.tools[params.Name]
	s.mu.RUnlock()

	if !ok {
		s.sendError(req.ID, -32602, "Unknown tool", params.Name)
		return
	}

	if err := s.calls.Acquire(ctx, 1); err != nil {
		s.sendError(req.ID, -32000, "Server shutting down", err.Error())
		return
	}

	callID := uuid.New().String()
	logger := s.logger.WithFields(map[string]interface{}{
		"call_id": callID,
		"tool":    params.Name,
	})

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.calls.Release(1)

		logger.Debug("tool call started")

		result, err := tool.Handler(ctx, Arguments(params.Arguments))
		if err != nil {
			logger.WithField("error", err.Error()).Warn("tool call failed")
			s.sendResult(req.ID, &ToolResult{
				Content: []ContentBlock{{Type: "text", Text: err.Error()}},
				IsError: true,
			})
			return
		}

		logger.Debug("tool call completed")
		s.sendResult(req.ID, result)
	}()
}

func (s *Server) sendResult(id interface{}, result interface{}) {
	s.send(Response{JSONRPC: "2.0", ID: id, Result: result})
}

func (s *Server) sendError(id interface{}, code int, message, data string) {
	s.send(Response{
		JSONRPC: "2.0",
		ID:      id,
		Error: &RPCError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	})
}

func (s *Server) send(resp Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	fmt.Fprintln(s.output, string(data))
}

func TextResult(text string) *ToolResult {
	return &ToolResult{
		Content: []ContentBlock{{Type: "text", Text: text}},
	}
}

func JSONResult(v interface{}) (*ToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return TextResult(string(data)), nil
}

// FailureResult renders a structured {kind, message} error payload so the
// calling agent can branch on the kind without scraping text.
func FailureResult(kind, message string) *ToolResult {
	data, _ := json.Marshal(map[string]interface{}{
		"error": map[string]string{
			"kind":    kind,
			"message": message,
		},
	})
	return &ToolResult{
		Content: []ContentBlock{{Type: "text", Text: string(data)}},
		IsError: true,
	}
}

func BuildInputSchema(properties map[string]interface{}, required []string) map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

func StringProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

func IntProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": description,
	}
}

func BoolProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "boolean",
		"description": description,
	}
}
