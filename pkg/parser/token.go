package parser

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/surgebase/porter2"

	"hoopla/pkg/errs"
)

const punctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// Tokenizer turns raw text into stemmed, stop-word filtered terms. A single
// value is shared by indexing and querying so both sides normalise alike.
type Tokenizer struct {
	stopWords StopWords
	stem      func(string) string
	markup    *bluemonday.Policy
}

type TokenizerOption func(*Tokenizer)

// WithMarkupStripping removes HTML tags and unescapes entities before the
// punctuation pass.
func WithMarkupStripping() TokenizerOption {
	return func(t *Tokenizer) {
		t.markup = bluemonday.StripTagsPolicy()
	}
}

func NewTokenizer(stopWords StopWords, opts ...TokenizerOption) *Tokenizer {
	if stopWords == nil {
		stopWords = StopWords{}
	}
	t := &Tokenizer{
		stopWords: stopWords,
		stem:      porter2.Stem,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tokenizer) Tokenize(text string) []string {
	if t.markup != nil {
		text = html.UnescapeString(t.markup.Sanitize(text))
	}
	words := ParseTokens(Sanitize(text))

	tokens := make([]string, 0, len(words))
	for _, word := range words {
		if t.stopWords.Contains(word) {
			continue
		}
		if token := t.stem(word); token != "" {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

// SingleToken normalises a term argument that must map to exactly one token.
func (t *Tokenizer) SingleToken(term string) (string, error) {
	tokens := t.Tokenize(term)
	if len(tokens) != 1 {
		return "", &errs.ValidationError{Term: term, Tokens: tokens}
	}
	return tokens[0], nil
}

// Sanitize drops ASCII punctuation without leaving a gap and lowercases.
func Sanitize(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if r < 0x80 && strings.ContainsRune(punctuation, r) {
			continue
		}
		sb.WriteRune(r)
	}
	return strings.ToLower(sb.String())
}

func ParseTokens(s string) []string {
	return strings.Fields(s)
}
