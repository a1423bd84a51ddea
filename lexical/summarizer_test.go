package lexical_test

import (
	"context"
	"testing"

	"github.com/fwojciec/initbot"
	"github.com/fwojciec/initbot/lexical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizer_Summarize(t *testing.T) {
	t.Parallel()

	t.Run("returns lead sentences and keywords", func(t *testing.T) {
		t.Parallel()

		s := lexical.NewSummarizer()
		initiative := &initbot.Initiative{
			ID:    "vis462",
			Title: "Für verantwortungsvolle Unternehmen",
			FullText: "Unternehmen respektieren Menschenrechte. Unternehmen schützen die Umwelt.\n" +
				"Unternehmen haften für Schäden. Dieser Satz fehlt in der Zusammenfassung.",
		}

		got, err := s.Summarize(context.Background(), initiative)

		require.NoError(t, err)
		assert.Equal(t, "Unternehmen respektieren Menschenrechte. Unternehmen schützen die Umwelt. Unternehmen haften für Schäden.", got.Text)
		require.NotEmpty(t, got.Keywords)
		assert.Equal(t, "unternehmen", got.Keywords[0])
		assert.NotContains(t, got.Keywords, "die")
	})

	t.Run("returns EINVALID without text", func(t *testing.T) {
		t.Parallel()

		_, err := lexical.NewSummarizer().Summarize(context.Background(), &initbot.Initiative{ID: "vis1", Title: "Title"})

		assert.Equal(t, initbot.EINVALID, initbot.ErrorCode(err))
	})

	t.Run("returns context error when cancelled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := lexical.NewSummarizer().Summarize(ctx, &initbot.Initiative{ID: "vis1", Title: "Title", FullText: "Text."})

		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestLeadSentences(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		n    int
		want string
	}{
		{name: "takes first sentences", text: "Eins ist gut. Zwei ist besser! Drei?", n: 2, want: "Eins ist gut. Zwei ist besser!"},
		{name: "keeps whole text when shorter", text: "Nur ein Satz ohne Punkt", n: 3, want: "Nur ein Satz ohne Punkt"},
		{name: "collapses whitespace", text: "Erste\n\nZeile.   Zweite Zeile.", n: 1, want: "Erste Zeile."},
		{name: "does not split after article abbreviation", text: "Gemäss Art. 197 gilt folgendes. Danach mehr.", n: 1, want: "Gemäss Art. 197 gilt folgendes."},
		{name: "skips consecutive abbreviations", text: "Art. 197 Ziff. 12 Abs. 1 wird aufgehoben. Danach mehr.", n: 1, want: "Art. 197 Ziff. 12 Abs. 1 wird aufgehoben."},
		{name: "does not split after ordinals", text: "Ab dem 1. Januar gilt es. Danach mehr.", n: 1, want: "Ab dem 1. Januar gilt es."},
		{name: "zero returns everything", text: "A b. C d.", n: 0, want: "A b. C d."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, lexical.LeadSentences(tt.text, tt.n))
		})
	}
}

func TestKeywords(t *testing.T) {
	t.Parallel()

	t.Run("orders by frequency then first appearance", func(t *testing.T) {
		t.Parallel()

		got := lexical.Keywords("Wasser Energie Wasser Klima Energie Wasser", 2)

		assert.Equal(t, []string{"wasser", "energie"}, got)
	})

	t.Run("drops stop words in all languages", func(t *testing.T) {
		t.Parallel()

		got := lexical.Keywords("über dans avec perché through Landwirtschaft", 10)

		assert.Equal(t, []string{"landwirtschaft"}, got)
	})

	t.Run("drops short words and numbers", func(t *testing.T) {
		t.Parallel()

		got := lexical.Keywords("AHV 2024 Renten", 10)

		assert.Equal(t, []string{"renten"}, got)
	})
}

func TestIsStopWord(t *testing.T) {
	t.Parallel()

	for _, w := range []string{"und", "les", "della", "the", "bundesverfassung"} {
		assert.True(t, lexical.IsStopWord(w), w)
	}
	assert.False(t, lexical.IsStopWord("landwirtschaft"))
}
