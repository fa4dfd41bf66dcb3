// Package mcpagent exposes a paying agent.Client as an MCP tool, so an
// MCP-speaking model can fetch x402-gated resources without the calling
// process ever handling a private key or a 402 response itself.
//
// Grounded on the teacher's mcp/server package, which wraps the other
// direction — an MCP *server*'s tools behind payment requirements. This
// package wraps an MCP *client*-side capability (paid fetch) as a tool
// instead, reusing the same mcp-go server/tool registration idiom.
package mcpagent

import (
	"context"
	"fmt"
	"io"
	"net/http"

	mcpproto "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/402labs/facilitator/agent"
)

// ToolName is the name of the single tool this package registers.
const ToolName = "pay_and_fetch"

// NewServer builds an MCP server exposing client as the pay_and_fetch
// tool: given a URL, it fetches the resource, paying any x402 challenge
// along the way, and returns the response body as the tool result.
func NewServer(name, version string, client *agent.Client) *mcpserver.MCPServer {
	s := mcpserver.NewMCPServer(name, version)

	tool := mcpproto.NewTool(ToolName,
		mcpproto.WithDescription("Fetch a URL, automatically paying any x402 payment challenge it returns"),
		mcpproto.WithString("url",
			mcpproto.Required(),
			mcpproto.Description("The resource URL to fetch"),
		),
	)

	s.AddTool(tool, payAndFetchHandler(client))
	return s
}

func payAndFetchHandler(client *agent.Client) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpproto.CallToolRequest) (*mcpproto.CallToolResult, error) {
		reqURL, err := req.RequireString("url")
		if err != nil {
			return mcpproto.NewToolResultError(err.Error()), nil
		}

		resp, err := client.Fetch(ctx, reqURL, nil)
		if err != nil {
			return mcpproto.NewToolResultError(fmt.Sprintf("pay_and_fetch: %v", err)), nil
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return mcpproto.NewToolResultError(fmt.Sprintf("pay_and_fetch: read body: %v", err)), nil
		}
		if resp.StatusCode >= http.StatusBadRequest {
			return mcpproto.NewToolResultError(fmt.Sprintf("pay_and_fetch: upstream returned %d: %s", resp.StatusCode, body)), nil
		}

		return mcpproto.NewToolResultText(string(body)), nil
	}
}

// ServeStdio runs s over stdio, the transport MCP clients expect when
// launching this process directly.
func ServeStdio(s *mcpserver.MCPServer) error {
	return mcpserver.ServeStdio(s)
}
