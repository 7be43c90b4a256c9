// CLAUDE:SUMMARY MCP tool surface — run the ingestion pipeline over local files.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewMCPServer builds an MCP server exposing the engine's tools.
func (e *Engine) NewMCPServer(version string) *mcp.Server {
	srv := mcp.NewServer(&mcp.Implementation{Name: "docgrid", Version: version}, nil)
	e.RegisterMCP(srv)
	return srv
}

// RegisterMCP registers docgrid tools on an MCP server.
func (e *Engine) RegisterMCP(srv *mcp.Server) {
	e.registerProcessTool(srv)
	e.registerFormatsTool(srv)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

type processReq struct {
	Path string `json:"path"`
}

func (e *Engine) registerProcessTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "docgrid_process",
		Description: "Convert a document file into retrieval-ready documents (table snapshots, row-level KV docs, text fallback).",
		InputSchema: inputSchema(map[string]any{
			"path": map[string]any{"type": "string", "description": "File path to process"},
		}, []string{"path"}),
	}

	srv.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var r processReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return toolError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		data, err := os.ReadFile(r.Path)
		if err != nil {
			return toolError(fmt.Sprintf("read %s: %v", r.Path, err)), nil
		}

		source := filepath.Base(r.Path)
		var docs any
		if strings.EqualFold(filepath.Ext(r.Path), ".pdf") {
			docs, err = e.pipe.ProcessPDF(ctx, data, source, "application/pdf")
			if err != nil {
				return toolError(fmt.Sprintf("process %s: %v", source, err)), nil
			}
		} else {
			docs = e.pipe.ProcessText(data, source, "")
		}

		out, err := json.Marshal(docs)
		if err != nil {
			return nil, err
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(out)}},
		}, nil
	})
}

func (e *Engine) registerFormatsTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "docgrid_formats",
		Description: "List the document formats docgrid emits.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	srv.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		out, err := json.Marshal(map[string]any{
			"formats": []string{"table_md", "row_kv", "fallback_text", "basic_text"},
		})
		if err != nil {
			return nil, err
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(out)}},
		}, nil
	})
}

func toolError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: msg}},
		IsError: true,
	}
}
