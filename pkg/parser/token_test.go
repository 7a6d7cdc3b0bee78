package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"hoopla/pkg/errs"
)

func TestTokenize(t *testing.T) {
	tok := NewTokenizer(NewStopWords("the", "a", "of"))

	cases := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "", []string{}},
		{"only stop words", "The a OF", []string{}},
		{"stems", "Brave Merida the archer", []string{"brave", "merida", "archer"}},
		{"racing", "Racing", []string{"race"}},
		{"punctuation removed without gap", "don't sci-fi", []string{"dont", "scifi"}},
		{"whitespace runs", "  cars\t\nracing  ", []string{"car", "race"}},
		{"repeats kept", "cars cars", []string{"car", "car"}},
		{"stop word after punctuation", "(the) end.", []string{"end"}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			require.Equal(t, c.want, tok.Tokenize(c.text))
		})
	}
}

func TestTokenizeDeterministic(t *testing.T) {
	tok := NewTokenizer(nil)
	text := "Running runners run through the running streams"
	require.Equal(t, tok.Tokenize(text), tok.Tokenize(text))
}

func TestSingleToken(t *testing.T) {
	tok := NewTokenizer(NewStopWords("the"))

	token, err := tok.SingleToken("Merida")
	require.NoError(t, err)
	require.Equal(t, "merida", token)

	token, err = tok.SingleToken("racing!")
	require.NoError(t, err)
	require.Equal(t, "race", token)

	_, err = tok.SingleToken("brave racing")
	require.ErrorIs(t, err, errs.ErrValidation)

	var verr *errs.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, []string{"brave", "race"}, verr.Tokens)

	_, err = tok.SingleToken("the")
	require.ErrorIs(t, err, errs.ErrValidation)

	_, err = tok.SingleToken("")
	require.ErrorIs(t, err, errs.ErrValidation)
}

func TestMarkupStripping(t *testing.T) {
	sw := NewStopWords("the")
	plain := NewTokenizer(sw)
	stripped := NewTokenizer(sw, WithMarkupStripping())

	text := "<b>Merida</b> &amp; the <i>archer</i>"
	require.NotEqual(t, stripped.Tokenize(text), plain.Tokenize(text))
	require.Equal(t, []string{"merida", "archer"}, stripped.Tokenize(text))
}

func TestLoadStopWords(t *testing.T) {
	sw, err := LoadStopWords(strings.NewReader("the\n  A \n\nof\r\n"))
	require.NoError(t, err)
	require.Len(t, sw, 3)
	require.True(t, sw.Contains("the"))
	require.True(t, sw.Contains("a"))
	require.True(t, sw.Contains("of"))
	require.False(t, sw.Contains(""))
}

func TestSanitize(t *testing.T) {
	require.Equal(t, "wall·e café", Sanitize("WALL·E, Café!"))
}
