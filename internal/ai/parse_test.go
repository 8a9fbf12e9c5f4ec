package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pskhi/smartstudent/internal/domain"
)

func TestParseReply(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		wantText string
		wantRisk domain.RiskLevel
	}{
		{
			name:     "plain json",
			input:    `{"reply":"Mình hiểu mà","riskLevel":"YELLOW","reason":"áp lực học tập","detectedEmotion":"mệt mỏi"}`,
			wantText: "Mình hiểu mà",
			wantRisk: domain.RiskYellow,
		},
		{
			name:     "fenced json",
			input:    "```json\n{\"reply\":\"Cô đây\",\"riskLevel\":\"RED\"}\n```",
			wantText: "Cô đây",
			wantRisk: domain.RiskRed,
		},
		{
			name:     "fence without language tag",
			input:    "```\n{\"reply\":\"ổn mà\",\"riskLevel\":\"GREEN\"}\n```",
			wantText: "ổn mà",
			wantRisk: domain.RiskGreen,
		},
		{
			name:     "unknown risk level falls back to green",
			input:    `{"reply":"chào bạn","riskLevel":"PURPLE"}`,
			wantText: "chào bạn",
			wantRisk: domain.RiskGreen,
		},
		{
			name:     "missing risk level",
			input:    `{"reply":"chào bạn"}`,
			wantText: "chào bạn",
			wantRisk: domain.RiskGreen,
		},
		{
			name:     "non-json degrades to raw text",
			input:    "  Xin lỗi, mình chưa hiểu ý bạn.  ",
			wantText: "Xin lỗi, mình chưa hiểu ý bạn.",
			wantRisk: domain.RiskGreen,
		},
		{
			name:     "json with empty reply degrades to raw text",
			input:    `{"riskLevel":"ORANGE","reason":"?"}`,
			wantText: `{"riskLevel":"ORANGE","reason":"?"}`,
			wantRisk: domain.RiskGreen,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := parseReply(tt.input)
			require.NotNil(t, got)
			assert.Equal(t, tt.wantText, got.Text)
			assert.Equal(t, tt.wantRisk, got.Risk)
		})
	}
}

func TestParseReplyCarriesAssessmentFields(t *testing.T) {
	t.Parallel()

	got := parseReply(`{"reply":"Bình tĩnh nhé","riskLevel":"ORANGE","reason":"ý định bỏ nhà","detectedEmotion":"tuyệt vọng"}`)
	require.NotNil(t, got)
	assert.Equal(t, domain.RiskOrange, got.Risk)
	assert.Equal(t, "ý định bỏ nhà", got.Reason)
	assert.Equal(t, "tuyệt vọng", got.DetectedEmotion)
}

func TestBuildSystemPrompt(t *testing.T) {
	t.Parallel()

	p, ok := domain.PersonaByID(domain.PersonaTeacher)
	require.True(t, ok)

	prompt := buildSystemPrompt(p)
	assert.Contains(t, prompt, p.Name)
	assert.Contains(t, prompt, p.Role)
	assert.NotContains(t, prompt, "{persona_name}")
	assert.NotContains(t, prompt, "{persona_role}")
}
