package mcp

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Aman-CERP/notemcp/internal/config"
	noteerrors "github.com/Aman-CERP/notemcp/internal/errors"
	"github.com/Aman-CERP/notemcp/internal/index"
	"github.com/Aman-CERP/notemcp/pkg/notebook"
	"github.com/Aman-CERP/notemcp/pkg/version"
)

// Server is the MCP server for notemcp.
// It exposes a notebook's search, listing, and reading over MCP. The
// notebook serializes Setup against the handlers.
type Server struct {
	mcp    *mcp.Server
	nb     *notebook.Notebook
	name   string
	logger *slog.Logger
}

// Option configures the server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a new MCP server over nb.
func NewServer(nb *notebook.Notebook, opts ...Option) (*Server, error) {
	if nb == nil {
		return nil, errors.New("notebook is required")
	}

	s := &Server{
		nb:     nb,
		name:   nb.Config().Server.Name,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.name == "" {
		s.name = config.NewConfig().Server.Name
	}

	s.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    s.name,
			Version: version.Version,
		},
		nil, // capabilities are inferred from what is registered
	)

	s.registerTools()
	s.registerResources()
	s.registerPrompts()

	return s, nil
}

// MCPServer returns the underlying MCP server instance.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// Info returns the server name and version.
func (s *Server) Info() (name, ver string) {
	return s.name, version.Version
}

// Setup registers sources and scans them. Handlers wait for it to finish.
func (s *Server) Setup(ctx context.Context, sources []config.SourceConfig, progress index.ProgressFunc) error {
	return s.nb.Setup(ctx, sources, progress)
}

// Serve starts the server with the specified transport.
func (s *Server) Serve(ctx context.Context, transport string) error {
	s.logger.Info("Starting MCP server",
		slog.String("name", s.name),
		slog.String("transport", transport))

	switch transport {
	case "stdio":
		err := s.mcp.Run(ctx, &mcp.StdioTransport{})
		if err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("MCP server stopped with error", slog.String("error", err.Error()))
		} else {
			s.logger.Info("MCP server stopped gracefully")
		}
		return err
	default:
		return fmt.Errorf("unknown transport: %s (supported: stdio)", transport)
	}
}

// registerTools registers all tools with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        ToolSearch,
		Description: "Search all indexed notes for a literal phrase. Returns at most one match per note with its line number and surrounding lines.",
	}, s.mcpSearchHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        ToolList,
		Description: "List note ids, optionally only those whose id contains the query (case-insensitive). Ids look like source:relative/path.md.",
	}, s.mcpListHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        ToolRead,
		Description: "Read the full content of a note by id.",
	}, s.mcpReadHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        ToolInfo,
		Description: "Summarize the notes index: total notes, extensions, sources, and the search backends in use.",
	}, s.mcpInfoHandler)

	s.logger.Debug("MCP tools registered", slog.Int("count", 4))
}

// handleSearch validates input and runs the search.
func (s *Server) handleSearch(ctx context.Context, input SearchInput) (SearchOutput, error) {
	if strings.TrimSpace(input.Query) == "" {
		return SearchOutput{}, NewInvalidParamsError("query cannot be empty or whitespace only")
	}

	maxResults := clampLimit(input.MaxResults, DefaultMaxResults, 1, MaxResultsLimit)
	contextLines := clampLimit(input.ContextLines, DefaultContextLines, 0, 50)

	requestID := generateRequestID()
	start := time.Now()
	s.logger.Info("search started",
		slog.String("request_id", requestID),
		slog.String("query", input.Query),
		slog.Int("max_results", maxResults))

	results, err := s.nb.Search(ctx, input.Query, maxResults, contextLines)
	if err != nil {
		s.logger.Warn("search interrupted",
			slog.String("request_id", requestID),
			slog.String("error", err.Error()))
		return SearchOutput{}, MapError(err)
	}

	s.logger.Info("search completed",
		slog.String("request_id", requestID),
		slog.Duration("duration", time.Since(start)),
		slog.Int("result_count", len(results)))

	return SearchOutput{Results: results}, nil
}

func (s *Server) handleList(input ListInput) ListOutput {
	ids := s.nb.List(input.Query)
	if ids == nil {
		ids = []string{}
	}
	return ListOutput{NoteIDs: ids}
}

func (s *Server) handleRead(input ReadInput) (ReadOutput, error) {
	if input.NoteID == "" {
		return ReadOutput{}, NewInvalidParamsError("note_id is required")
	}
	content, err := s.nb.Read(input.NoteID)
	if err != nil {
		s.logger.Debug("note read failed",
			append([]any{slog.String("note_id", input.NoteID)}, noteerrors.LogAttrs(err)...)...)
		return ReadOutput{}, MapError(err)
	}
	return ReadOutput{NoteID: input.NoteID, Content: content}, nil
}

func (s *Server) handleInfo() InfoOutput {
	info := s.nb.Info()
	return InfoOutput{
		TotalNotes: info.TotalNotes,
		Extensions: info.Extensions,
		Sources:    info.Sources,
		Capability: s.nb.Probe().Capability.String(),
		Chain:      s.nb.Chain(),
	}
}

func (s *Server) mcpSearchHandler(ctx context.Context, _ *mcp.CallToolRequest, input SearchInput) (
	*mcp.CallToolResult,
	SearchOutput,
	error,
) {
	out, err := s.handleSearch(ctx, input)
	if err != nil {
		return nil, SearchOutput{}, err
	}
	return nil, out, nil
}

func (s *Server) mcpListHandler(_ context.Context, _ *mcp.CallToolRequest, input ListInput) (
	*mcp.CallToolResult,
	ListOutput,
	error,
) {
	return nil, s.handleList(input), nil
}

func (s *Server) mcpReadHandler(_ context.Context, _ *mcp.CallToolRequest, input ReadInput) (
	*mcp.CallToolResult,
	ReadOutput,
	error,
) {
	out, err := s.handleRead(input)
	if err != nil {
		return nil, ReadOutput{}, err
	}
	return nil, out, nil
}

func (s *Server) mcpInfoHandler(_ context.Context, _ *mcp.CallToolRequest, _ InfoInput) (
	*mcp.CallToolResult,
	InfoOutput,
	error,
) {
	return nil, s.handleInfo(), nil
}

// generateRequestID creates a short unique request ID for log correlation.
func generateRequestID() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
