package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"hoopla/pkg/config"
	"hoopla/pkg/engine"
	"hoopla/pkg/indexer"
	"hoopla/pkg/logger"
	"hoopla/pkg/metrics"
	"hoopla/pkg/parser"
	"hoopla/pkg/store"
	"hoopla/pkg/utils/sys"
)

const usage = `usage: hoopla [-config path] <command> [args]

commands:
  build                 index the corpus and save the snapshot
  search <query>        titles of documents matching any query term
  tf <doc_id> <term>    occurrences of term in a document
  idf <term>            inverse document frequency of term
  docs <term>           ids of documents containing term
  doc <doc_id>          show one document
  repl                  interactive prompt
`

func main() {
	_ = godotenv.Load()
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("hoopla", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfgPath := fs.String("config", config.DefaultPath, "path to YAML config file (defaults apply when missing)")
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	logger.SetupWriter(stderr, cfg.Logging.Level, cfg.Logging.Format)
	log := logger.WithComponent("cli")

	m := metrics.New()
	defer func() {
		if cfg.Metrics.Textfile == "" {
			return
		}
		if err := m.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			log.Warn("failed to write metrics", "path", cfg.Metrics.Textfile, "error", err)
		}
	}()

	if err := dispatch(cfg, m, fs.Args(), stdout); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func dispatch(cfg *config.Config, m *metrics.Metrics, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stdout, usage)
		return nil
	}

	switch args[0] {
	case "build":
		return build(cfg, m)
	case "search", "tf", "idf", "docs", "doc":
		return query(cfg, m, func(eg *engine.Engine) error {
			return eg.Execute(stdout, strings.Join(args, " "))
		})
	case "repl":
		return query(cfg, m, func(eg *engine.Engine) error {
			eg.Run(stdout)
			return nil
		})
	default:
		fmt.Fprint(stdout, usage)
		return nil
	}
}

func build(cfg *config.Config, m *metrics.Metrics) error {
	log := logger.WithComponent("cli")

	tok, err := newTokenizer(cfg)
	if err != nil {
		return err
	}
	docs, err := parser.ReadCorpusFile(cfg.Data.Corpus)
	if err != nil {
		return err
	}

	builder := indexer.NewBuilder(tok, indexer.WithMetrics(m))
	snap, stats, err := builder.Build(parser.NewDocumentProducer(docs))
	if err != nil {
		return err
	}

	st, closeStore, err := openStore(cfg, m)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := st.Save(snap); err != nil {
		return fmt.Errorf("save index: %w", err)
	}
	log.Info("index saved",
		"build_id", snap.BuildID,
		"backend", cfg.Store.Backend,
		"avg_tokens_per_doc", stats.AvgTokensPerDoc(),
	)
	sys.LogMemoryUsage(log)
	return nil
}

func query(cfg *config.Config, m *metrics.Metrics, fn func(*engine.Engine) error) error {
	tok, err := newTokenizer(cfg)
	if err != nil {
		return err
	}
	st, closeStore, err := openStore(cfg, m)
	if err != nil {
		return err
	}
	defer closeStore()

	eg := engine.NewEngine(tok, st,
		engine.WithSearchLimit(cfg.Search.Limit),
		engine.WithCacheSize(cfg.Search.CacheSize),
		engine.WithMetrics(m),
	)
	if err := eg.Load(); err != nil {
		return err
	}
	return fn(eg)
}

func newTokenizer(cfg *config.Config) (*parser.Tokenizer, error) {
	stopWords, err := parser.ReadStopWordsFile(cfg.Data.StopWords)
	if err != nil {
		return nil, err
	}
	var opts []parser.TokenizerOption
	if cfg.Tokenizer.StripMarkup {
		opts = append(opts, parser.WithMarkupStripping())
	}
	return parser.NewTokenizer(stopWords, opts...), nil
}

func openStore(cfg *config.Config, m *metrics.Metrics) (store.Store, func(), error) {
	switch cfg.Store.Backend {
	case "redis":
		rs, err := store.NewRedisStore(store.RedisOptions{
			Addr:     cfg.Store.Redis.Addr,
			Password: cfg.Store.Redis.Password,
			DB:       cfg.Store.Redis.DB,
			Prefix:   cfg.Store.Redis.Prefix,
			Timeout:  cfg.Store.Redis.Timeout,
		})
		if err != nil {
			return nil, nil, err
		}
		return store.Observed(rs, m), func() { rs.Close() }, nil
	default:
		return store.Observed(store.NewFileStore(cfg.Store.Dir), m), func() {}, nil
	}
}
