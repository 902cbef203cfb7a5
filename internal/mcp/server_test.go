package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/notemcp/internal/config"
	"github.com/Aman-CERP/notemcp/pkg/notebook"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	resolved, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	return resolved
}

// newTestServer serves one "docs" source through the in-memory backend.
func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	root := writeTree(t, map[string]string{
		"a.md":          "line1\nhello world\nline3\n",
		"journal/b.org": "* Hello again\n",
		"c.txt":         "nothing\n",
	})
	nb := notebook.New(nil,
		notebook.WithLogger(quietLogger()),
		notebook.WithLookPath(func(string) (string, error) { return "", os.ErrNotExist }))

	s, err := NewServer(nb, WithLogger(quietLogger()))
	require.NoError(t, err)
	require.NoError(t, s.Setup(context.Background(), []config.SourceConfig{{Path: root, Name: "docs"}}, nil))
	return s, root
}

func intPtr(v int) *int { return &v }

func TestNewServer_RequiresNotebook(t *testing.T) {
	s, err := NewServer(nil)

	assert.Error(t, err)
	assert.Nil(t, s)
}

func TestServer_Info(t *testing.T) {
	s, _ := newTestServer(t)

	name, ver := s.Info()

	assert.Equal(t, "Notebook", name)
	assert.NotEmpty(t, ver)
	assert.NotNil(t, s.MCPServer())
}

func TestHandleSearch_ReturnsMatches(t *testing.T) {
	// Given: an indexed source
	s, _ := newTestServer(t)

	// When: searching case-insensitively with default limits
	out, err := s.handleSearch(context.Background(), SearchInput{Query: "hello"})

	// Then: one result per matching note, in index order
	require.NoError(t, err)
	require.Len(t, out.Results, 2)
	assert.Equal(t, "docs:a.md", out.Results[0].NoteID)
	assert.Equal(t, 2, out.Results[0].LineNumber)
	assert.Contains(t, out.Results[0].Context, "hello world")
	assert.Equal(t, "docs:journal/b.org", out.Results[1].NoteID)
}

func TestHandleSearch_RejectsBlankQuery(t *testing.T) {
	s, _ := newTestServer(t)

	for _, q := range []string{"", "   ", "\t\n"} {
		_, err := s.handleSearch(context.Background(), SearchInput{Query: q})

		var mcpErr *MCPError
		require.ErrorAs(t, err, &mcpErr)
		assert.Equal(t, ErrCodeInvalidParams, mcpErr.Code)
	}
}

func TestHandleSearch_ClampsMaxResults(t *testing.T) {
	s, _ := newTestServer(t)

	zero, err := s.handleSearch(context.Background(), SearchInput{Query: "hello", MaxResults: intPtr(0)})
	require.NoError(t, err)
	assert.Len(t, zero.Results, 1, "max_results below 1 is raised to 1")

	huge, err := s.handleSearch(context.Background(), SearchInput{Query: "hello", MaxResults: intPtr(10_000)})
	require.NoError(t, err)
	assert.Len(t, huge.Results, 2)
}

func TestHandleSearch_NoMatchesIsEmptyArray(t *testing.T) {
	s, _ := newTestServer(t)

	out, err := s.handleSearch(context.Background(), SearchInput{Query: "absent"})

	require.NoError(t, err)
	data, err := json.Marshal(out)
	require.NoError(t, err)
	assert.JSONEq(t, `{"results":[]}`, string(data))
}

func TestHandleSearch_Canceled(t *testing.T) {
	s, _ := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.handleSearch(ctx, SearchInput{Query: "hello"})

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrCodeTimeout, mcpErr.Code)
}

func TestHandleList(t *testing.T) {
	s, _ := newTestServer(t)

	all := s.handleList(ListInput{})
	filtered := s.handleList(ListInput{Query: "JOURNAL"})
	none := s.handleList(ListInput{Query: "zzz"})

	assert.Equal(t, []string{"docs:a.md", "docs:c.txt", "docs:journal/b.org"}, all.NoteIDs)
	assert.Equal(t, []string{"docs:journal/b.org"}, filtered.NoteIDs)
	assert.NotNil(t, none.NoteIDs)
	assert.Empty(t, none.NoteIDs)
}

func TestHandleRead(t *testing.T) {
	s, root := newTestServer(t)

	out, err := s.handleRead(ReadInput{NoteID: "docs:a.md"})
	require.NoError(t, err)
	assert.Equal(t, "line1\nhello world\nline3\n", out.Content)

	_, err = s.handleRead(ReadInput{NoteID: "docs:missing.md"})
	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrCodeNoteNotFound, mcpErr.Code)

	_, err = s.handleRead(ReadInput{})
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrCodeInvalidParams, mcpErr.Code)

	// A note deleted after indexing is a read failure.
	require.NoError(t, os.Remove(filepath.Join(root, "c.txt")))
	_, err = s.handleRead(ReadInput{NoteID: "docs:c.txt"})
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrCodeReadFailed, mcpErr.Code)
}

func TestHandleInfo(t *testing.T) {
	s, root := newTestServer(t)

	out := s.handleInfo()

	assert.Equal(t, 3, out.TotalNotes)
	assert.Equal(t, []string{"md", "org", "txt"}, out.Extensions)
	require.Len(t, out.Sources, 1)
	assert.Equal(t, root, out.Sources[0].Root)
	assert.Equal(t, "none", out.Capability)
	assert.Equal(t, []string{"memory"}, out.Chain)
}

func TestResources(t *testing.T) {
	s, root := newTestServer(t)
	ctx := context.Background()
	read := func(h mcp.ResourceHandler, uri string) (*mcp.ReadResourceResult, error) {
		return h(ctx, &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: uri}})
	}

	list, err := read(s.handleListResource, ResourceList)
	require.NoError(t, err)
	assert.Equal(t, "docs:a.md\ndocs:c.txt\ndocs:journal/b.org", list.Contents[0].Text)

	info, err := read(s.handleInfoResource, ResourceInfo)
	require.NoError(t, err)
	assert.Contains(t, info.Contents[0].Text, "total notes: 3")
	assert.Contains(t, info.Contents[0].Text, "  - docs: 3 notes ("+root+")")

	note, err := read(s.handleNoteResource, NoteURI("docs:journal/b.org"))
	require.NoError(t, err)
	assert.Equal(t, "* Hello again\n", note.Contents[0].Text)
	assert.Equal(t, "text/org", note.Contents[0].MIMEType)

	_, err = read(s.handleNoteResource, NoteURI("docs:nope.md"))
	assert.Error(t, err)
}

func TestNoteIDFromURI(t *testing.T) {
	id, ok := NoteIDFromURI("note://docs:a/b.md")
	assert.True(t, ok)
	assert.Equal(t, "docs:a/b.md", id)

	id, ok = NoteIDFromURI("note://docs%3Amy%20note.md")
	assert.True(t, ok)
	assert.Equal(t, "docs:my note.md", id)

	_, ok = NoteIDFromURI("file:///x")
	assert.False(t, ok)
	_, ok = NoteIDFromURI("note://")
	assert.False(t, ok)
}

func TestServer_OverInMemoryTransport(t *testing.T) {
	// Given: a client connected to the server
	s, _ := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clientT, serverT := mcp.NewInMemoryTransports()
	serverSession, err := s.MCPServer().Connect(ctx, serverT, nil)
	require.NoError(t, err)
	defer serverSession.Close()

	client := mcp.NewClient(&mcp.Implementation{Name: "test", Version: "0"}, nil)
	session, err := client.Connect(ctx, clientT, nil)
	require.NoError(t, err)
	defer session.Close()

	// When: listing tools and prompts
	tools, err := session.ListTools(ctx, nil)
	require.NoError(t, err)
	prompts, err := session.ListPrompts(ctx, nil)
	require.NoError(t, err)

	// Then: everything is registered
	var toolNames, promptNames []string
	for _, tool := range tools.Tools {
		toolNames = append(toolNames, tool.Name)
	}
	for _, p := range prompts.Prompts {
		promptNames = append(promptNames, p.Name)
	}
	assert.ElementsMatch(t, []string{ToolSearch, ToolList, ToolRead, ToolInfo}, toolNames)
	assert.ElementsMatch(t, []string{"search_notes", "browse_notes", "analyze_notes", "daily_notes_review"}, promptNames)

	// And: a tool call round-trips structured output
	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      ToolSearch,
		Arguments: map[string]any{"query": "hello", "max_results": 1},
	})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	data, err := json.Marshal(res.StructuredContent)
	require.NoError(t, err)
	var out SearchOutput
	require.NoError(t, json.Unmarshal(data, &out))
	require.Len(t, out.Results, 1)
	assert.Equal(t, "docs:a.md", out.Results[0].NoteID)

	// And: the note template resolves ids containing ':' and '/'
	rr, err := session.ReadResource(ctx, &mcp.ReadResourceParams{URI: NoteURI("docs:journal/b.org")})
	require.NoError(t, err)
	assert.Equal(t, "* Hello again\n", rr.Contents[0].Text)
}
