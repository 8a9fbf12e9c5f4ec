package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pskhi/smartstudent/internal/chat"
	"github.com/pskhi/smartstudent/internal/domain"
)

func TestNewGeminiWithoutAPIKey(t *testing.T) {
	t.Parallel()

	g, err := NewGemini(context.Background(), "", "gemini-3-flash-preview")
	require.NoError(t, err)
	require.NotNil(t, g)

	reply, err := g.Respond(context.Background(), chat.Request{
		Message: "xin chào",
		Persona: domain.PersonaFriend,
	})
	require.NoError(t, err)
	assert.Equal(t, configErrorReply, reply.Text)
	assert.Equal(t, domain.RiskGreen, reply.Risk)
}
