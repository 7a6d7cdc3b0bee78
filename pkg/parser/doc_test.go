package parser

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"hoopla/pkg/errs"
)

func TestDecodeCorpus(t *testing.T) {
	corpus := `{"movies": [
		{"id": 7, "title": "Brave", "description": "Merida the archer", "year": 2012},
		{"id": 2, "title": "Cars", "description": "Racing"}
	]}`

	docs, err := DecodeCorpus(strings.NewReader(corpus))
	require.NoError(t, err)
	require.Len(t, docs, 2)

	require.Equal(t, DocID(7), docs[0].ID)
	require.Equal(t, "Brave", docs[0].Title)
	require.Equal(t, "Brave Merida the archer", docs[0].Text())
	require.Equal(t, json.RawMessage("2012"), docs[0].Extra["year"])

	require.Equal(t, DocID(2), docs[1].ID)
	require.Nil(t, docs[1].Extra)
}

func TestDecodeCorpusPositionFallback(t *testing.T) {
	corpus := `{"movies": [
		{"title": "Up", "description": "Balloons"},
		{"id": null, "title": "Coco", "description": "Music"}
	]}`

	docs, err := DecodeCorpus(strings.NewReader(corpus))
	require.NoError(t, err)
	require.Equal(t, DocID(1), docs[0].ID)
	require.Equal(t, DocID(2), docs[1].ID)
}

func TestDecodeCorpusInvalid(t *testing.T) {
	cases := map[string]string{
		"not json":       `{"movies": [`,
		"missing list":   `{"films": []}`,
		"zero id":        `{"movies": [{"id": 0, "title": "A"}]}`,
		"negative id":    `{"movies": [{"id": -3, "title": "A"}]}`,
		"id too large":   `{"movies": [{"id": 4294967296, "title": "A"}]}`,
		"duplicate id":   `{"movies": [{"id": 1, "title": "A"}, {"id": 1, "title": "B"}]}`,
		"position clash": `{"movies": [{"id": 2, "title": "A"}, {"title": "B"}]}`,
		"bad title":      `{"movies": [{"id": 1, "title": 5}]}`,
	}

	for name, corpus := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeCorpus(strings.NewReader(corpus))
			require.ErrorIs(t, err, errs.ErrInvalidCorpus)
		})
	}
}

func TestReadCorpusFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movies.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"movies": []}`), 0o644))

	docs, err := ReadCorpusFile(path)
	require.NoError(t, err)
	require.Empty(t, docs)

	_, err = ReadCorpusFile(filepath.Join(t.TempDir(), "missing.json"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestDocumentProducer(t *testing.T) {
	p := NewDocumentProducer([]Document{{ID: 1}, {ID: 2}})

	doc, ok := p.Produce()
	require.True(t, ok)
	require.Equal(t, DocID(1), doc.ID)

	doc, ok = p.Produce()
	require.True(t, ok)
	require.Equal(t, DocID(2), doc.ID)

	_, ok = p.Produce()
	require.False(t, ok)
}
