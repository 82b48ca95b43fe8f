// Package tools provides MCP tool implementations for clarify-engine.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/hintlane/clarify-engine/pkg/logging"
	"github.com/hintlane/clarify-engine/pkg/models"
	"github.com/hintlane/clarify-engine/pkg/services"
)

// ClarifyToolDeps contains dependencies for clarification tools.
type ClarifyToolDeps struct {
	ClarificationService services.ClarificationService
	Logger               *zap.Logger
}

// RegisterClarifyTools registers the clarification MCP tools.
func RegisterClarifyTools(s *server.MCPServer, deps *ClarifyToolDeps) {
	registerSuggestClarificationsTool(s, deps)
	registerSubmitAnswersTool(s, deps)
	registerGetSessionTool(s, deps)
	registerRefreshCatalogTool(s, deps)
	registerListReferenceQueriesTool(s, deps)
}

// getOptionalString extracts an optional string argument from the request.
func getOptionalString(req mcp.CallToolRequest, key string) string {
	args, ok := req.Params.Arguments.(map[string]any)
	if !ok {
		return ""
	}
	val, ok := args[key].(string)
	if !ok {
		return ""
	}
	return val
}

// getOptionalBool extracts an optional boolean argument from the request.
func getOptionalBool(req mcp.CallToolRequest, key string) bool {
	args, ok := req.Params.Arguments.(map[string]any)
	if !ok {
		return false
	}
	val, ok := args[key].(bool)
	if !ok {
		return false
	}
	return val
}

// getAnswers extracts the answers argument as structured records. The MCP
// transport delivers it as []any, so it round-trips through JSON.
func getAnswers(req mcp.CallToolRequest) ([]models.ClarificationAnswer, error) {
	args, ok := req.Params.Arguments.(map[string]any)
	if !ok {
		return nil, nil
	}
	raw, ok := args["answers"]
	if !ok || raw == nil {
		return nil, nil
	}

	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to encode answers: %w", err)
	}

	var answers []models.ClarificationAnswer
	if err := json.Unmarshal(encoded, &answers); err != nil {
		return nil, fmt.Errorf("invalid answers payload: %w", err)
	}
	return answers, nil
}

func marshalToolResult(v any) (*mcp.CallToolResult, error) {
	jsonResult, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(jsonResult)), nil
}

// registerSuggestClarificationsTool adds the suggest_clarifications tool.
// It runs the matching engine against a business request and opens or updates
// a clarification session.
func registerSuggestClarificationsTool(s *server.MCPServer, deps *ClarifyToolDeps) {
	tool := mcp.NewTool(
		"suggest_clarifications",
		mcp.WithDescription(
			"Analyze an ambiguous business request and suggest targeted follow-up questions. "+
				"Returns pending clarification questions with selectable options, values that were "+
				"auto-applied from reference data defaults, and a session id for submitting answers. "+
				"Pass the session_id on follow-up calls to keep refining the same request.",
		),
		mcp.WithString(
			"user_query",
			mcp.Required(),
			mcp.Description("The natural-language business request to analyze."),
		),
		mcp.WithString(
			"module_hint",
			mcp.Description("Optional business module name (e.g. 'Purchasing') to boost module-specific questions."),
		),
		mcp.WithString(
			"session_id",
			mcp.Description("Existing session id to update instead of creating a new session."),
		),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		userQuery, err := req.RequireString("user_query")
		if err != nil {
			return nil, err
		}

		state, err := deps.ClarificationService.Evaluate(models.ClarificationRequest{
			UserQuery:  userQuery,
			ModuleHint: getOptionalString(req, "module_hint"),
			SessionID:  getOptionalString(req, "session_id"),
		})
		if err != nil {
			deps.Logger.Error("suggest_clarifications failed",
				zap.String("user_query", logging.TruncateQuery(userQuery)),
				zap.Error(err))
			return nil, fmt.Errorf("failed to evaluate clarifications: %w", err)
		}

		return marshalToolResult(state)
	})
}

// registerSubmitAnswersTool adds the submit_clarification_answers tool.
func registerSubmitAnswersTool(s *server.MCPServer, deps *ClarifyToolDeps) {
	tool := mcp.NewTool(
		"submit_clarification_answers",
		mcp.WithDescription(
			"Record answers for pending clarification questions on an existing session. "+
				"Each answer names a question_id and the selected_values chosen by the user. "+
				"Set accept_defaults to true to accept the suggested defaults and mark the "+
				"session ready without answering the remaining questions.",
		),
		mcp.WithString(
			"session_id",
			mcp.Required(),
			mcp.Description("The clarification session to update."),
		),
		mcp.WithArray(
			"answers",
			mcp.Description("Answers as objects with question_id and selected_values fields."),
		),
		mcp.WithBoolean(
			"accept_defaults",
			mcp.Description("Accept suggested defaults for any unanswered questions."),
		),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sessionID, err := req.RequireString("session_id")
		if err != nil {
			return nil, err
		}

		answers, err := getAnswers(req)
		if err != nil {
			return nil, err
		}

		state, err := deps.ClarificationService.SubmitAnswers(models.AnswerRequest{
			SessionID:      sessionID,
			Answers:        answers,
			AcceptDefaults: getOptionalBool(req, "accept_defaults"),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to submit answers: %w", err)
		}

		return marshalToolResult(state)
	})
}

// registerGetSessionTool adds the get_clarification_session tool.
func registerGetSessionTool(s *server.MCPServer, deps *ClarifyToolDeps) {
	tool := mcp.NewTool(
		"get_clarification_session",
		mcp.WithDescription(
			"Fetch the current state of a clarification session: pending questions, "+
				"recorded answers, auto-applied defaults, and the resolved context.",
		),
		mcp.WithString(
			"session_id",
			mcp.Required(),
			mcp.Description("The clarification session to inspect."),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sessionID, err := req.RequireString("session_id")
		if err != nil {
			return nil, err
		}

		state, err := deps.ClarificationService.GetSession(sessionID)
		if err != nil {
			return nil, fmt.Errorf("failed to load session: %w", err)
		}

		return marshalToolResult(state)
	})
}

// registerRefreshCatalogTool adds the refresh_clarification_catalog tool.
func registerRefreshCatalogTool(s *server.MCPServer, deps *ClarifyToolDeps) {
	tool := mcp.NewTool(
		"refresh_clarification_catalog",
		mcp.WithDescription(
			"Reload the clarification catalog and reference snapshots from their source files. "+
				"In-flight evaluations keep the previous dataset until the reload completes.",
		),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := deps.ClarificationService.Refresh(); err != nil {
			deps.Logger.Error("refresh_clarification_catalog failed", zap.Error(err))
			return nil, fmt.Errorf("failed to refresh catalog: %w", err)
		}

		return mcp.NewToolResultText(`{"success":true,"message":"Clarification catalog reloaded"}`), nil
	})
}

// registerListReferenceQueriesTool adds the list_reference_queries tool.
func registerListReferenceQueriesTool(s *server.MCPServer, deps *ClarifyToolDeps) {
	tool := mcp.NewTool(
		"list_reference_queries",
		mcp.WithDescription(
			"List the reference query definitions that feed default suggestions, "+
				"along with any cached snapshot results currently loaded.",
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return marshalToolResult(deps.ClarificationService.ListCatalog())
	})
}
