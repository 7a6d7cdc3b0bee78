package parser

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"

	"hoopla/pkg/errs"
	"hoopla/pkg/utils/stream"
)

type DocID uint32

// Document is one corpus record. Extra holds every field other than id,
// title and description, undecoded.
type Document struct {
	ID          DocID
	Title       string
	Description string
	Extra       map[string]json.RawMessage
}

// Text is the indexed content of the document.
func (doc Document) Text() string {
	return doc.Title + " " + doc.Description
}

type rawCorpus struct {
	Movies []json.RawMessage `json:"movies"`
}

type rawMovie struct {
	ID          *int64 `json:"id" validate:"omitempty,gt=0,lte=4294967295"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

var validate = validator.New()

// DecodeCorpus reads a {"movies": [...]} document. Records without an id get
// their 1-based position; explicit ids must be positive and unique.
func DecodeCorpus(r io.Reader) ([]Document, error) {
	var corpus rawCorpus
	if err := json.NewDecoder(r).Decode(&corpus); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidCorpus, err)
	}
	if corpus.Movies == nil {
		return nil, fmt.Errorf("%w: missing movies list", errs.ErrInvalidCorpus)
	}

	docs := make([]Document, 0, len(corpus.Movies))
	seen := make(map[DocID]int, len(corpus.Movies))
	for i, raw := range corpus.Movies {
		doc, err := ParseDoc(raw, i+1)
		if err != nil {
			return nil, fmt.Errorf("movie #%d: %w", i+1, err)
		}
		if prev, ok := seen[doc.ID]; ok {
			return nil, fmt.Errorf("%w: movie #%d reuses id %d of movie #%d",
				errs.ErrInvalidCorpus, i+1, doc.ID, prev)
		}
		seen[doc.ID] = i + 1
		docs = append(docs, doc)
	}
	return docs, nil
}

func ReadCorpusFile(path string) ([]Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus: %w", err)
	}
	defer f.Close()
	return DecodeCorpus(f)
}

func ParseDoc(raw json.RawMessage, position int) (Document, error) {
	var movie rawMovie
	if err := json.Unmarshal(raw, &movie); err != nil {
		return Document{}, fmt.Errorf("%w: %v", errs.ErrInvalidCorpus, err)
	}
	if err := validate.Struct(movie); err != nil {
		return Document{}, fmt.Errorf("%w: %v", errs.ErrInvalidCorpus, err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Document{}, fmt.Errorf("%w: %v", errs.ErrInvalidCorpus, err)
	}
	delete(fields, "id")
	delete(fields, "title")
	delete(fields, "description")
	if len(fields) == 0 {
		fields = nil
	}

	id := DocID(position)
	if movie.ID != nil {
		id = DocID(*movie.ID)
	}
	return Document{
		ID:          id,
		Title:       movie.Title,
		Description: movie.Description,
		Extra:       fields,
	}, nil
}

func NewDocumentProducer(docs []Document) stream.Producer[Document] {
	return stream.NewArrayProducer(docs)
}
