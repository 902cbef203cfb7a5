package mcp

import (
	"context"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	noteerrors "github.com/Aman-CERP/notemcp/internal/errors"
)

// Resource URIs.
const (
	ResourceList   = "notes://list"
	ResourceInfo   = "notes://info"
	NoteURIPrefix  = "note://"
	NoteURIPattern = "note://{+note_id}"
)

// registerResources registers the collection resources and the per-note
// template.
func (s *Server) registerResources() {
	s.mcp.AddResource(&mcp.Resource{
		Name:        "notes-list",
		URI:         ResourceList,
		Description: "All note ids, one per line",
		MIMEType:    "text/plain",
	}, s.handleListResource)

	s.mcp.AddResource(&mcp.Resource{
		Name:        "notes-info",
		URI:         ResourceInfo,
		Description: "Summary of the indexed notes",
		MIMEType:    "text/plain",
	}, s.handleInfoResource)

	s.mcp.AddResourceTemplate(&mcp.ResourceTemplate{
		Name:        "note",
		URITemplate: NoteURIPattern,
		Description: "The full content of one note",
	}, s.handleNoteResource)
}

func (s *Server) handleListResource(_ context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	return textResource(req.Params.URI, "text/plain", strings.Join(s.nb.List(""), "\n")), nil
}

func (s *Server) handleInfoResource(_ context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	return textResource(req.Params.URI, "text/plain", FormatInfo(s.nb.Info())), nil
}

func (s *Server) handleNoteResource(_ context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := req.Params.URI
	id, ok := NoteIDFromURI(uri)
	if !ok {
		return nil, mcp.ResourceNotFoundError(uri)
	}

	content, err := s.nb.Read(id)
	if err != nil {
		if noteerrors.IsNotFound(err) {
			return nil, mcp.ResourceNotFoundError(uri)
		}
		return nil, MapError(err)
	}
	return textResource(uri, MimeTypeForPath(id), content), nil
}

// NoteIDFromURI extracts the note id from a note:// URI. Percent-encoded
// ids are decoded.
func NoteIDFromURI(uri string) (string, bool) {
	raw, ok := strings.CutPrefix(uri, NoteURIPrefix)
	if !ok || raw == "" {
		return "", false
	}
	id, err := url.PathUnescape(raw)
	if err != nil {
		return "", false
	}
	return id, true
}

// NoteURI builds the resource URI for a note id.
func NoteURI(id string) string {
	return NoteURIPrefix + id
}

func textResource(uri, mimeType, text string) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: mimeType,
				Text:     text,
			},
		},
	}
}
