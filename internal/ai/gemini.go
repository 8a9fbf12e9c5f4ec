// Package ai adapts the Gemini API to the chat.Responder contract.
package ai

import (
	"context"
	"fmt"

	"github.com/pskhi/smartstudent/internal/chat"
	"github.com/pskhi/smartstudent/internal/domain"
	"google.golang.org/genai"
)

// configErrorReply is surfaced as a visible assistant message when no API
// key is configured. Fatal to the turn only, never to the session.
const configErrorReply = "⚠️ LỖI CẤU HÌNH: Hệ thống chưa nhận được API Key. Bạn hãy kiểm tra biến môi trường 'GEMINI_API_KEY' rồi khởi động lại máy chủ nhé!"

// Gemini implements chat.Responder against the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates the adapter. An empty apiKey is not an error: the
// adapter then answers every request with the configuration-error reply so
// the conversation stays usable.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return &Gemini{model: model}, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &Gemini{client: client, model: model}, nil
}

// Respond sends the message plus the trailing history window and parses the
// structured reply. Transport failures are returned as errors for the
// controller's fallback handling; an unparseable payload degrades to the
// raw text with a GREEN risk level.
func (g *Gemini) Respond(ctx context.Context, req chat.Request) (*chat.Reply, error) {
	if g.client == nil {
		return &chat.Reply{Text: configErrorReply, Risk: domain.RiskGreen}, nil
	}

	persona, ok := domain.PersonaByID(req.Persona)
	if !ok {
		return nil, fmt.Errorf("unknown persona %q", req.Persona)
	}

	contents := make([]*genai.Content, 0, len(req.History)+1)
	for _, turn := range req.History {
		role := genai.Role(genai.RoleModel)
		if turn.Role == domain.RoleUser {
			role = genai.RoleUser
		}
		contents = append(contents, genai.NewContentFromText(turn.Content, role))
	}
	contents = append(contents, genai.NewContentFromText(req.Message, genai.RoleUser))

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(buildSystemPrompt(persona), genai.RoleUser),
		ResponseMIMEType:  "application/json",
	}

	res, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini generate content: %w", err)
	}

	text := res.Text()
	if text == "" {
		return nil, fmt.Errorf("gemini returned empty text")
	}

	return parseReply(text), nil
}
