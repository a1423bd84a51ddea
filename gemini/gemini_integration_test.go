//go:build integration

package gemini_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/fwojciec/initbot"
	"github.com/fwojciec/initbot/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func newClient(t *testing.T, ctx context.Context) *genai.Client {
	t.Helper()

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		t.Skip("GEMINI_API_KEY not set")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	require.NoError(t, err)
	return client
}

func TestSummarizer_Integration_ReturnsSummary(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	s := gemini.NewSummarizer(newClient(t, ctx))

	summary, err := s.Summarize(ctx, &initbot.Initiative{
		ID:       "vis462",
		Title:    "Für verantwortungsvolle Unternehmen – zum Schutz von Mensch und Umwelt",
		FullText: "Der Bund trifft Massnahmen zur Stärkung der Respektierung der Menschenrechte und der Umwelt durch die Wirtschaft. Unternehmen mit Sitz in der Schweiz haben eine Sorgfaltsprüfung durchzuführen.",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, summary.Text)
	assert.NotEmpty(t, summary.Keywords)
}

func TestOpinionAnalyzer_Integration_ReturnsOpinion(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	a := gemini.NewOpinionAnalyzer(newClient(t, ctx), "")

	opinion, err := a.Analyze(ctx, &initbot.Initiative{ID: "vis462", Title: "Konzernverantwortung"}, []string{
		"Endlich Verantwortung für Konzerne!",
		"Ich finde die Initiative richtig und wichtig.",
	})

	require.NoError(t, err)
	assert.GreaterOrEqual(t, opinion.Score, -1.0)
	assert.LessOrEqual(t, opinion.Score, 1.0)
	assert.NotEmpty(t, opinion.Label)
}
