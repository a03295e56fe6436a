// Package main is the sotay CLI entry point.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/unihelp/sotay/internal/classify"
	"github.com/unihelp/sotay/internal/config"
	"github.com/unihelp/sotay/internal/embedding"
	"github.com/unihelp/sotay/internal/extract"
	"github.com/unihelp/sotay/internal/ingest"
	"github.com/unihelp/sotay/internal/llm"
	"github.com/unihelp/sotay/internal/retrieval"
	"github.com/unihelp/sotay/internal/server"
	"github.com/unihelp/sotay/internal/storage"
	"github.com/unihelp/sotay/internal/vector"
	"github.com/unihelp/sotay/internal/watcher"
	"github.com/unihelp/sotay/internal/websearch"
	"github.com/unihelp/sotay/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/sotay/config.yaml"

// loadConfig loads config from path. When path is the default, a config.yaml
// in the current directory takes precedence, so running from the project dir
// uses the project's config.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "ingest":
		runIngest()
	case "ask":
		runAsk()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("sotay version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Usage: sotay <command> [flags]

Commands:
  server    Start the HTTP API and chat page
  ingest    Ingest documents from the raw data directory
  ask       Ask a single question from the command line
  status    Show document, chunk, and vector counts
  version   Print version`)
}

// Components holds the initialized application services.
type Components struct {
	Storage  storage.Storage
	Embedder embedding.Embedder
	Store    *vector.Store
	Answerer *retrieval.Answerer
	Ingester *ingest.Ingester
	Logger   *zap.Logger
}

// Close releases component resources.
func (c *Components) Close() {
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	st, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("initialize storage: %w", err)
	}

	embedder, err := embedding.NewEmbedder(&cfg.Embedding, cfg.LLM.BaseURL)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("initialize embedder: %w", err)
	}

	store, err := vector.Open(cfg.Storage.VectorStoreDir, cfg.Storage.VectorStoreName, cfg.Embedding.Dimensions)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("open vector store: %w", err)
	}
	logger.Info("vector store opened",
		zap.String("dir", cfg.Storage.VectorStoreDir),
		zap.Int("vectors", store.Count()))

	chatClient := llm.NewClient(cfg.LLM.BaseURL, cfg.LLM.ChatModel,
		time.Duration(cfg.LLM.TimeoutSeconds)*time.Second)

	var classifier classify.Classifier
	if cfg.Retrieval.Classifier == "rules" {
		classifier = classify.NewRuleClassifier()
	} else {
		classifier = classify.NewModelClassifier(chatClient, logger)
	}

	webClient := websearch.NewClient(cfg.WebSearch.APIKey)
	if !webClient.Configured() {
		logger.Warn("TAVILY_API_KEY not set, web search returns a placeholder")
	}

	builder := retrieval.NewBuilder(store, embedder, webClient, classifier,
		&cfg.Retrieval, cfg.WebSearch.MaxResults, logger)
	answerer := retrieval.NewAnswerer(builder, chatClient, logger)

	ingester := ingest.NewIngester(st, embedder, store, extract.NewExtractor(), &cfg.Ingest, logger)

	return &Components{
		Storage:  st,
		Embedder: embedder,
		Store:    store,
		Answerer: answerer,
		Ingester: ingester,
		Logger:   logger,
	}, nil
}

func setup(args []string) (*config.Config, *zap.Logger, string) {
	fs := flag.NewFlagSet(args[0], flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(args[1:])

	cfg, resolvedPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug || *debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.Info("config loaded", zap.String("config_path", resolvedPath))
	return cfg, logger, resolvedPath
}

func runServer() {
	cfg, logger, _ := setup(os.Args[1:])
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	if cfg.Ingest.Watch && cfg.Ingest.RawDir != "" {
		ing := components.Ingester
		w := watcher.NewWatcher(cfg.Ingest.RawDir, cfg.Ingest.Extensions, func(path string) {
			if err := ing.IngestFile(context.Background(), path); err != nil {
				logger.Warn("watch ingest failed", zap.String("path", path), zap.Error(err))
			}
		}, logger)
		if err := w.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		defer w.Stop()
	}

	srv := server.NewServer(components.Answerer, components.Storage, components.Store, cfg, logger)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func runIngest() {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	dir := fs.String("dir", "", "directory to ingest (default: raw_dir from config)")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug || *debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	target := *dir
	if target == "" {
		target = cfg.Ingest.RawDir
	}
	if target == "" {
		fmt.Println("No directory given: pass -dir or set ingest.raw_dir in the config")
		os.Exit(1)
	}

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	n, err := components.Ingester.IngestDirectory(context.Background(), target)
	if err != nil {
		logger.Fatal("Ingest failed", zap.Error(err))
	}
	fmt.Printf("Ingested %d files from %s\n", n, target)
}

func runAsk() {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	source := fs.String("source", "auto", "evidence source: auto, local, web, both")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	question := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if question == "" {
		fmt.Println("Usage: sotay ask [flags] <question>")
		os.Exit(1)
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug || *debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	answer, usedSources, err := components.Answerer.Answer(context.Background(), question, *source)
	if err != nil {
		logger.Fatal("Ask failed", zap.Error(err))
	}
	fmt.Println(answer)
	if len(usedSources) > 0 {
		fmt.Printf("\n(nguồn: %s)\n", strings.Join(usedSources, ", "))
	}
}

func runStatus() {
	cfg, logger, _ := setup(os.Args[1:])
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	ctx := context.Background()
	docs, err := components.Storage.CountDocuments(ctx)
	if err != nil {
		logger.Fatal("Count documents failed", zap.Error(err))
	}
	chunks, err := components.Storage.CountChunks(ctx)
	if err != nil {
		logger.Fatal("Count chunks failed", zap.Error(err))
	}
	fmt.Printf("Documents: %d\nChunks:    %d\nVectors:   %d\n", docs, chunks, components.Store.Count())
}
