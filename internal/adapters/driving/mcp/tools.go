package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/zenji/internal/core/domain"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string            `json:"question" jsonschema:"the question to answer from the indexed documents"`
	Where    map[string]string `json:"where,omitempty" jsonschema:"metadata filter on source and page"`
	K        int               `json:"k,omitempty" jsonschema:"number of passages to retrieve (default top_k)"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer    string            `json:"answer"`
	Citations []domain.Citation `json:"citations"`
}

// IngestFolderInput is the input schema for the ingest_folder tool.
type IngestFolderInput struct {
	Path string `json:"path" jsonschema:"folder to ingest recursively"`
}

// StartSessionInput is the (empty) input schema for the start_session tool.
type StartSessionInput struct{}

// SendMessageInput is the input schema for the send_message tool.
type SendMessageInput struct {
	SessionID string `json:"session_id" jsonschema:"id returned by start_session"`
	Message   string `json:"message" jsonschema:"the user's message"`
}

// registerTools registers all tool handlers with the MCP server.
// Tools whose port is not configured are left out.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question about flower essences using only the indexed documents, with citations",
	}, s.handleAsk)

	if s.ports.Ingest != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ingest_folder",
			Description: "Ingest every supported document under a local folder into the index",
		}, s.handleIngestFolder)
	}

	if s.ports.Dialog != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "start_session",
			Description: "Start a guided intake conversation and return its greeting",
		}, s.handleStartSession)

		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "send_message",
			Description: "Send the user's message to an intake session and return the reply and stage",
		}, s.handleSendMessage)
	}
}

func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.ports.Ask.Ask(ctx, domain.AskRequest{
		Question: input.Question,
		Where:    domain.MetadataFilter(input.Where),
		K:        input.K,
	})
	if err != nil {
		return nil, AskOutput{}, err
	}

	citations := answer.Citations
	if citations == nil {
		citations = []domain.Citation{}
	}
	return nil, AskOutput{Answer: answer.Answer, Citations: citations}, nil
}

func (s *Server) handleIngestFolder(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestFolderInput,
) (*mcp.CallToolResult, domain.IngestResponse, error) {
	res, err := s.ports.Ingest.IngestFolder(ctx, input.Path)
	if err != nil {
		return nil, domain.IngestResponse{}, err
	}
	return nil, res.Response(), nil
}

func (s *Server) handleStartSession(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ StartSessionInput,
) (*mcp.CallToolResult, domain.SessionStart, error) {
	start, err := s.ports.Dialog.StartSession(ctx)
	if err != nil {
		return nil, domain.SessionStart{}, err
	}
	return nil, start, nil
}

func (s *Server) handleSendMessage(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SendMessageInput,
) (*mcp.CallToolResult, domain.TurnReply, error) {
	reply, err := s.ports.Dialog.SubmitTurn(ctx, input.SessionID, input.Message)
	if err != nil {
		return nil, domain.TurnReply{}, err
	}
	return nil, reply, nil
}
