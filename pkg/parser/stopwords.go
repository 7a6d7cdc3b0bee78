package parser

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// StopWords is an immutable set of lowercase words ignored by the Tokenizer.
type StopWords map[string]struct{}

func NewStopWords(words ...string) StopWords {
	sw := StopWords{}
	for _, w := range words {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			sw[w] = struct{}{}
		}
	}
	return sw
}

func (sw StopWords) Contains(word string) bool {
	_, ok := sw[word]
	return ok
}

// LoadStopWords reads one word per line. Blank lines are skipped.
func LoadStopWords(r io.Reader) (StopWords, error) {
	sw := StopWords{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		w := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if w == "" {
			continue
		}
		sw[w] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read stop words: %w", err)
	}
	return sw, nil
}

func ReadStopWordsFile(path string) (StopWords, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open stop words: %w", err)
	}
	defer f.Close()
	return LoadStopWords(f)
}
