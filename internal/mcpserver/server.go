// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes imgbackup tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/imgbackup/internal/catalog"
	"github.com/starford/imgbackup/internal/models"
	"github.com/starford/imgbackup/internal/storage"
)

const cardFormatURI = "imgbackup://card-format"

// Runner performs a sync run.
type Runner interface {
	Run(ctx context.Context, sel models.Selection) (*models.Report, error)
}

// Server wraps the MCP server with imgbackup tools.
type Server struct {
	mcp    *server.MCPServer
	index  catalog.Index
	store  storage.Transport
	runner Runner
}

// New creates a new MCP server with all imgbackup tools registered.
func New(index catalog.Index, store storage.Transport, runner Runner) *Server {
	s := &Server{index: index, store: store, runner: runner}

	s.mcp = server.NewMCPServer(
		"imgbackup",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_characters",
		mcp.WithDescription("List the names of all indexed characters."),
	), s.listCharacters)

	s.mcp.AddTool(mcp.NewTool("list_images",
		mcp.WithDescription("List the image files already backed up for a character."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Character name as returned by list_characters")),
	), s.listImages)

	s.mcp.AddTool(mcp.NewTool("sync_images",
		mcp.WithDescription("Back up every image linked from the selected characters' greetings. "+
			"Files that already exist are skipped. Returns the run report as JSON."),
		mcp.WithString("names", mcp.Description("Comma-separated character names")),
		mcp.WithBoolean("all", mcp.Description("Sync every indexed character")),
	), s.syncImages)

	s.mcp.AddResource(
		mcp.NewResource(cardFormatURI, "Character Card Format",
			mcp.WithResourceDescription("Accepted character card layouts and link extraction rules."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readCardFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listCharacters(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	names, err := s.index.Names(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(names) == 0 {
		return mcp.NewToolResultText("no characters indexed"), nil
	}
	return mcp.NewToolResultText(strings.Join(names, "\n")), nil
}

func (s *Server) listImages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	files, err := s.store.List(ctx, name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(files) == 0 {
		return mcp.NewToolResultText("no images stored"), nil
	}
	return mcp.NewToolResultText(strings.Join(files, "\n")), nil
}

func (s *Server) syncImages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sel := models.Selection{
		Names: splitNames(req.GetString("names", "")),
		All:   req.GetBool("all", false),
	}
	report, err := s.runner.Run(ctx, sel)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(report, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readCardFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      cardFormatURI,
			MIMEType: "text/markdown",
			Text:     CardFormatContract,
		},
	}, nil
}

func splitNames(raw string) []string {
	var out []string
	for _, n := range strings.Split(raw, ",") {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}
