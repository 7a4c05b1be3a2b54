// Package mcpadapter exposes the parser and advisor as MCP tools over
// stdio, so agent hosts can call them without the HTTP surface.
package mcpadapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/pharmlane/rx-pack-advisor/internal/core/domain"
	"github.com/pharmlane/rx-pack-advisor/internal/core/ports"
	"github.com/pharmlane/rx-pack-advisor/internal/core/quantity"
)

type Server struct {
	mcpServer *server.MCPServer
}

func NewServer(parser ports.SigParser, advisor ports.PackageAdvisor, version string) *Server {
	mcpServer := server.NewMCPServer("rx-pack-advisor", version,
		server.WithToolCapabilities(false),
	)

	parseTool := mcp.NewTool("parse_sig",
		mcp.WithDescription("Parse a free-text prescription instruction (sig) into a structured dosing schedule."),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("The instruction text, e.g. 'take 1 tablet twice daily'."),
		),
	)
	mcpServer.AddTool(parseTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := request.RequireString("text")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		parsed, err := parser.ParseSig(ctx, text)
		if err != nil {
			if domain.IsKind(err, domain.ErrNoParse) {
				return mcp.NewToolResultError("instruction could not be parsed"), nil
			}
			return nil, err
		}
		return jsonResult(parsed)
	})

	quantityTool := mcp.NewTool("calculate_quantity",
		mcp.WithDescription("Parse an instruction and compute the total dispense quantity for a days supply."),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("The instruction text."),
		),
		mcp.WithNumber("days_supply",
			mcp.Required(),
			mcp.Description("Days supply to cover, must be positive."),
		),
	)
	mcpServer.AddTool(quantityTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := request.RequireString("text")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		daysSupply, err := request.RequireInt("days_supply")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		parsed, err := parser.ParseSig(ctx, text)
		if err != nil {
			if domain.IsKind(err, domain.ErrNoParse) {
				return mcp.NewToolResultError("instruction could not be parsed"), nil
			}
			return nil, err
		}

		result, err := quantity.Calculate(*parsed, daysSupply)
		if err != nil {
			if domain.IsKind(err, domain.ErrInvalidInput) {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return nil, err
		}
		return jsonResult(struct {
			Instruction *domain.ParsedInstruction `json:"instruction"`
			Required    domain.QuantityResult     `json:"required"`
		}{parsed, result})
	})

	recommendTool := mcp.NewTool("recommend_packages",
		mcp.WithDescription("Recommend drug packages covering an instruction for a days supply, ranked by fit."),
		mcp.WithString("instruction",
			mcp.Required(),
			mcp.Description("The instruction text."),
		),
		mcp.WithNumber("days_supply",
			mcp.Required(),
			mcp.Description("Days supply to cover."),
		),
		mcp.WithString("drug_query",
			mcp.Required(),
			mcp.Description("Drug name to search the package directory for."),
		),
		mcp.WithString("preferred_ndc",
			mcp.Description("Optional NDC to prefer among equally ranked packages."),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum candidates to return."),
		),
	)
	mcpServer.AddTool(recommendTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		instruction, err := request.RequireString("instruction")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		daysSupply, err := request.RequireInt("days_supply")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		drugQuery, err := request.RequireString("drug_query")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		recommendation, err := advisor.Recommend(ctx, domain.RecommendationRequest{
			Instruction:  instruction,
			DaysSupply:   daysSupply,
			DrugQuery:    drugQuery,
			PreferredNDC: request.GetString("preferred_ndc", ""),
			Limit:        request.GetInt("limit", 0),
		})
		if err != nil {
			if domain.IsKind(err, domain.ErrInvalidInput) || domain.IsKind(err, domain.ErrNoParse) {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return nil, err
		}
		return jsonResult(recommendation)
	})

	return &Server{mcpServer: mcpServer}
}

// ServeStdio blocks serving the MCP protocol on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func jsonResult(payload any) (*mcp.CallToolResult, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal tool result: %w", err)
	}
	return mcp.NewToolResultText(string(raw)), nil
}
