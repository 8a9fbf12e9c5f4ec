package ai

import (
	"encoding/json"
	"strings"

	"github.com/pskhi/smartstudent/internal/chat"
	"github.com/pskhi/smartstudent/internal/domain"
)

// rawReply is the JSON shape the model is instructed to return.
type rawReply struct {
	Reply           string `json:"reply"`
	RiskLevel       string `json:"riskLevel"`
	Reason          string `json:"reason"`
	DetectedEmotion string `json:"detectedEmotion"`
}

// parseReply decodes the model output. Markdown code fences are stripped
// first since models wrap JSON in them despite the response MIME type. A
// payload that is not the expected JSON degrades to the raw text with a
// GREEN risk level rather than failing the turn.
func parseReply(text string) *chat.Reply {
	clean := strings.ReplaceAll(text, "```json", "")
	clean = strings.ReplaceAll(clean, "```", "")
	clean = strings.TrimSpace(clean)

	var raw rawReply
	if err := json.Unmarshal([]byte(clean), &raw); err != nil || raw.Reply == "" {
		return &chat.Reply{Text: strings.TrimSpace(text), Risk: domain.RiskGreen}
	}

	return &chat.Reply{
		Text:            raw.Reply,
		Risk:            domain.ParseRiskLevel(raw.RiskLevel),
		Reason:          raw.Reason,
		DetectedEmotion: raw.DetectedEmotion,
	}
}
