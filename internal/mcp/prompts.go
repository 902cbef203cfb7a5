package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// registerPrompts registers canned prompts for common note workflows.
func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(&mcp.Prompt{
		Name:        "search_notes",
		Description: "Search the notes for a query and summarize what is found",
		Arguments: []*mcp.PromptArgument{
			{Name: "query", Description: "what to look for", Required: true},
		},
	}, promptSearchNotes)

	s.mcp.AddPrompt(&mcp.Prompt{
		Name:        "browse_notes",
		Description: "Browse the notes collection, optionally around a topic",
		Arguments: []*mcp.PromptArgument{
			{Name: "topic", Description: "optional topic to focus on"},
		},
	}, promptBrowseNotes)

	s.mcp.AddPrompt(&mcp.Prompt{
		Name:        "analyze_notes",
		Description: "Analyze themes, connections, and gaps in notes about a topic",
		Arguments: []*mcp.PromptArgument{
			{Name: "query", Description: "topic to analyze", Required: true},
		},
	}, promptAnalyzeNotes)

	s.mcp.AddPrompt(&mcp.Prompt{
		Name:        "daily_notes_review",
		Description: "Review recent daily notes for key points and follow-ups",
	}, promptDailyReview)
}

func promptArg(req *mcp.GetPromptRequest, name string) string {
	if req == nil || req.Params == nil {
		return ""
	}
	return req.Params.Arguments[name]
}

func userMessage(text string) *mcp.PromptMessage {
	return &mcp.PromptMessage{Role: "user", Content: &mcp.TextContent{Text: text}}
}

func assistantMessage(text string) *mcp.PromptMessage {
	return &mcp.PromptMessage{Role: "assistant", Content: &mcp.TextContent{Text: text}}
}

func promptSearchNotes(_ context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	query := promptArg(req, "query")
	if query == "" {
		return nil, NewInvalidParamsError("query is required")
	}
	return &mcp.GetPromptResult{
		Description: "Search notes",
		Messages: []*mcp.PromptMessage{userMessage(fmt.Sprintf(
			"Please search my notes for information about %q.\n"+
				"Use the %s tool with this query, then read the most relevant notes with %s.\n"+
				"Summarize what you find and cite notes by their id.",
			query, ToolSearch, ToolRead))},
	}, nil
}

func promptBrowseNotes(_ context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	instruction := "Please help me browse through my notes collection."
	if topic := promptArg(req, "topic"); topic != "" {
		instruction = fmt.Sprintf("Please help me browse my notes about %s.", topic)
	}
	return &mcp.GetPromptResult{
		Description: "Browse notes",
		Messages: []*mcp.PromptMessage{
			userMessage(instruction),
			assistantMessage("I'll help you browse your notes. First, let me get information about your notes collection."),
			assistantMessage("To browse your notes, I can:\n" +
				"1. list all notes or filter them by a keyword\n" +
				"2. search for specific content\n" +
				"3. read specific notes in full\n" +
				"What would you like to do?"),
		},
	}, nil
}

func promptAnalyzeNotes(_ context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	query := promptArg(req, "query")
	if query == "" {
		return nil, NewInvalidParamsError("query is required")
	}
	return &mcp.GetPromptResult{
		Description: "Analyze notes",
		Messages: []*mcp.PromptMessage{userMessage(fmt.Sprintf(
			"Please analyze my notes about %q.\n\n"+
				"1. Search for relevant notes using the %s tool.\n"+
				"2. Read the most relevant notes in full using %s.\n"+
				"3. Analyze key themes, concepts, and connections.\n"+
				"4. Identify gaps in my notes or areas to explore further.\n"+
				"5. Summarize your findings in a structured way.",
			query, ToolSearch, ToolRead))},
	}, nil
}

func promptDailyReview(_ context.Context, _ *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return &mcp.GetPromptResult{
		Description: "Daily notes review",
		Messages: []*mcp.PromptMessage{userMessage(fmt.Sprintf(
			"Please help me review my recent notes:\n\n"+
				"1. Use %s to find notes whose ids contain today's date or \"daily\".\n"+
				"2. Read the most recent of them.\n"+
				"3. Summarize key points, tasks, and insights.\n"+
				"4. Identify follow-up actions or connected ideas.",
			ToolList))},
	}, nil
}
