package engine

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	prompt "github.com/c-bata/go-prompt"

	"hoopla/pkg/parser"
)

var ErrUnknownCommand = errors.New("unknown command")

var suggestions = []prompt.Suggest{
	{Text: "search", Description: "search <query>: titles matching any query term"},
	{Text: "tf", Description: "tf <doc_id> <term>: term frequency in a document"},
	{Text: "idf", Description: "idf <term>: inverse document frequency"},
	{Text: "docs", Description: "docs <term>: ids of documents containing the term"},
	{Text: "doc", Description: "doc <doc_id>: show a document"},
	{Text: "exit", Description: "leave the prompt"},
}

// Run starts an interactive prompt over the loaded index.
func (eg *Engine) Run(out io.Writer) {
	executor := func(in string) {
		if err := eg.Execute(out, in); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}
	}
	completer := func(d prompt.Document) []prompt.Suggest {
		if strings.Contains(d.TextBeforeCursor(), " ") {
			return nil
		}
		return prompt.FilterHasPrefix(suggestions, d.GetWordBeforeCursor(), true)
	}

	p := prompt.New(
		executor,
		completer,
		prompt.OptionTitle("hoopla"),
		prompt.OptionPrefix("hoopla> "),
		prompt.OptionSetExitCheckerOnInput(func(in string, breakline bool) bool {
			return breakline && isExit(in)
		}),
	)
	p.Run()
}

func isExit(in string) bool {
	switch strings.TrimSpace(in) {
	case "exit", "quit":
		return true
	}
	return false
}

// Execute runs one command line and writes its result to out.
func (eg *Engine) Execute(out io.Writer, line string) error {
	cmd, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	rest = strings.TrimSpace(rest)

	switch cmd {
	case "", "exit", "quit":
		return nil

	case "search":
		fmt.Fprintf(out, "Searching for: %s\n", rest)
		titles, err := eg.Search(rest)
		if err != nil {
			return err
		}
		for i, title := range titles {
			fmt.Fprintf(out, "%d. %s\n", i+1, title)
		}
		return nil

	case "tf":
		idArg, term, _ := strings.Cut(rest, " ")
		docID, err := ParseDocID(idArg)
		if err != nil {
			return err
		}
		term = strings.TrimSpace(term)
		n, err := eg.TF(docID, term)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Term frequency of '%s' in document %d: %d\n", term, docID, n)
		return nil

	case "idf":
		idf, err := eg.IDF(rest)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Inverse document frequency of '%s': %.2f\n", rest, idf)
		return nil

	case "docs":
		ids, err := eg.Documents(rest)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			fmt.Fprintf(out, "No documents contain '%s'\n", rest)
			return nil
		}
		strs := make([]string, 0, len(ids))
		for _, id := range ids {
			strs = append(strs, strconv.FormatUint(uint64(id), 10))
		}
		fmt.Fprintf(out, "Documents containing '%s': %s\n", rest, strings.Join(strs, ", "))
		return nil

	case "doc":
		docID, err := ParseDocID(rest)
		if err != nil {
			return err
		}
		doc, err := eg.Document(docID)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%d. %s\n%s\n", doc.ID, doc.Title, doc.Description)
		return nil

	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd)
	}
}

// ParseDocID parses a positive document id argument.
func ParseDocID(s string) (parser.DocID, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid document id %q", s)
	}
	return parser.DocID(id), nil
}
