package briefing

import (
	"context"

	"github.com/sells-group/briefing-cli/pkg/anthropic"
)

// mockModelClient implements anthropic.Client with scripted per-call
// responses for testing retry behavior.
type mockModelClient struct {
	responses []*anthropic.MessageResponse
	errs      []error
	calls     int
	gotReqs   []anthropic.MessageRequest
}

func (m *mockModelClient) CreateMessage(_ context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	idx := m.calls
	m.calls++
	m.gotReqs = append(m.gotReqs, req)

	if idx < len(m.errs) && m.errs[idx] != nil {
		return nil, m.errs[idx]
	}
	if idx < len(m.responses) {
		return m.responses[idx], nil
	}
	return textResponse(""), nil
}

// textResponse builds a single-text-block response with token usage.
func textResponse(text string) *anthropic.MessageResponse {
	return &anthropic.MessageResponse{
		ID:         "msg_test",
		Model:      "claude-haiku-4-5-20251001",
		Content:    []anthropic.ContentBlock{{Type: "text", Text: text}},
		StopReason: "end_turn",
		Usage:      anthropic.TokenUsage{InputTokens: 800, OutputTokens: 400},
	}
}
