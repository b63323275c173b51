package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"roadreport/internal/config"
	"roadreport/internal/engine"
	"roadreport/internal/model"
)

const phrasingSystemPrompt = "You are a professional vehicle safety complaint assistant. " +
	"Rewrite the assistant's message to be natural and friendly while keeping " +
	"ALL important information intact. Be concise and professional. " +
	"Keep responses under 80 words. Do not add extra questions."

// PhrasingRequest is what the dialogue layer hands to the phrasing API.
type PhrasingRequest struct {
	UserInput  string
	BaseText   string
	PriorTurns []model.ConversationTurn
	TargetSlot *model.SlotID
	Hint       engine.StatusHint
}

// PhrasingResult carries the text to show the user. Fallback is routine,
// expected behavior (timeout, error, unconfigured key), not an exceptional
// condition, so it is a field rather than an error.
type PhrasingResult struct {
	Text     string
	Fallback bool
	Reason   string
}

// PhrasingService rewrites templated replies via a hosted chat-completion
// API. Single attempt, bounded timeout; any failure falls back to the
// caller's templated text.
type PhrasingService struct {
	config *config.PhrasingConfig
	client *http.Client
}

// NewPhrasingService creates a new phrasing service.
func NewPhrasingService() *PhrasingService {
	cfg := config.DefaultPhrasingConfig()
	return &PhrasingService{
		config: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
		},
	}
}

// NewPhrasingServiceWith creates a phrasing service with explicit config,
// for tests and the console driver.
func NewPhrasingServiceWith(cfg *config.PhrasingConfig) *PhrasingService {
	return &PhrasingService{
		config: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
		},
	}
}

// Rephrase produces the user-facing reply for a turn. The base text is
// always a complete, usable reply on its own.
func (s *PhrasingService) Rephrase(ctx context.Context, req PhrasingRequest) PhrasingResult {
	base := req.BaseText
	if base == "" {
		base = "Thank you. Please continue with the details."
	}

	if !s.config.IsEnabled() {
		return PhrasingResult{Text: base, Fallback: true, Reason: "api key not configured"}
	}

	text, err := s.callChatCompletion(ctx, req, base)
	if err != nil {
		return PhrasingResult{Text: base, Fallback: true, Reason: err.Error()}
	}
	if text == "" {
		return PhrasingResult{Text: base, Fallback: true, Reason: "empty completion"}
	}
	return PhrasingResult{Text: text}
}

func (s *PhrasingService) callChatCompletion(ctx context.Context, req PhrasingRequest, base string) (string, error) {
	var sb strings.Builder
	for _, t := range recentTurns(req.PriorTurns, 6) {
		fmt.Fprintf(&sb, "%s: %s\n", t.Role, t.Text)
	}
	if req.TargetSlot != nil {
		fmt.Fprintf(&sb, "Currently asking about: %s (%s)\n", *req.TargetSlot, req.Hint)
	}
	fmt.Fprintf(&sb, "User said: '%s'\n\nRewrite naturally: %s", req.UserInput, base)

	reqBody := map[string]interface{}{
		"model": s.config.Model,
		"messages": []map[string]string{
			{"role": "system", "content": phrasingSystemPrompt},
			{"role": "user", "content": sb.String()},
		},
		"temperature": 0.7,
		"max_tokens":  120,
		"top_p":       0.9,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", s.config.Endpoint(), bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Authorization", "Bearer "+s.config.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("phrasing API error %d", resp.StatusCode)
	}

	var completion struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &completion); err != nil {
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("empty response from phrasing API")
	}
	return strings.TrimSpace(completion.Choices[0].Message.Content), nil
}

func recentTurns(turns []model.ConversationTurn, n int) []model.ConversationTurn {
	if len(turns) <= n {
		return turns
	}
	return turns[len(turns)-n:]
}
