// Package main is the askdoc CLI entry point.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/paperstack/askdoc/internal/answer"
	"github.com/paperstack/askdoc/internal/catalog"
	"github.com/paperstack/askdoc/internal/config"
	"github.com/paperstack/askdoc/internal/embedding"
	"github.com/paperstack/askdoc/internal/extract"
	"github.com/paperstack/askdoc/internal/retrieval"
	"github.com/paperstack/askdoc/internal/server"
	"github.com/paperstack/askdoc/internal/vector"
	"github.com/paperstack/askdoc/pkg/utils"
)

var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	// .env is optional; environment variables win over file values.
	_ = godotenv.Load()

	switch os.Args[1] {
	case "server":
		runServer()
	case "ingest":
		runIngest()
	case "query":
		runQuery()
	case "ask":
		runAsk()
	case "remove":
		runRemove()
	case "list":
		runList()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("askdoc version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`askdoc - document retrieval and question answering

Usage:
  askdoc server  [-config path]                 start the HTTP API server
  askdoc ingest  [-config path] <files...>      ingest documents
  askdoc query   [-config path] [-k n] <text>   retrieve relevant chunks
  askdoc ask     [-config path] [-k n] <text>   retrieve and answer
  askdoc remove  [-config path] <filename>      remove a document from the catalog
  askdoc list    [-config path]                 list ingested documents
  askdoc status  [-config path]                 show index statistics
  askdoc version                                print version`)
}

// loadConfig loads the config file when given, otherwise falls back to
// config.yaml in the working directory, otherwise to built-in defaults
// rooted at ./data.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	if _, err := os.Stat("config.yaml"); err == nil {
		return config.Load("config.yaml")
	}
	return config.Default("data"), nil
}

// buildService assembles the retrieval pipeline from config. The ONNX
// embedder is used when a model path is configured and present; otherwise the
// deterministic mock embedder keeps the pipeline functional without a model.
func buildService(cfg *config.Config, logger *zap.Logger) (*retrieval.Service, error) {
	var emb embedding.Embedder
	useMock := cfg.Embedding.UseMock || cfg.Embedding.ModelPath == ""
	if !useMock {
		if _, err := os.Stat(cfg.Embedding.ModelPath); err != nil {
			logger.Warn("embedding model not found, using mock embedder",
				zap.String("path", cfg.Embedding.ModelPath))
			useMock = true
		}
	}
	if useMock {
		emb = embedding.NewMockEmbedder(cfg.Embedding.Dimensions)
	} else {
		onnx, err := embedding.NewONNXEmbedder(embedding.Options{
			ModelPath:  cfg.Embedding.ModelPath,
			Dimensions: cfg.Embedding.Dimensions,
			MaxTokens:  cfg.Embedding.MaxTokens,
			CacheSize:  cfg.Embedding.CacheSize,
		})
		if err != nil {
			return nil, err
		}
		emb = onnx
	}

	idx, err := vector.New(emb.Dimensions())
	if err != nil {
		return nil, err
	}
	cat, err := catalog.Open(cfg.Storage.CatalogPath)
	if err != nil {
		return nil, err
	}
	svc, err := retrieval.New(emb, idx, cat, extract.NewExtractor(), cfg, retrieval.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	if err := svc.Load(); err != nil {
		return nil, err
	}
	return svc, nil
}

// buildGenerator returns the answer generator, or nil when no API key is set.
func buildGenerator(cfg *config.Config) (answer.Generator, error) {
	apiKey := os.Getenv(cfg.LLM.APIKeyEnv)
	if apiKey == "" {
		return nil, nil
	}
	return answer.NewOpenAIGenerator(answer.Options{
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		APIKey:  apiKey,
	})
}

func setup(configPath string) (*config.Config, *retrieval.Service, *zap.Logger) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	svc, err := buildService(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return cfg, svc, logger
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	_ = fs.Parse(os.Args[2:])

	cfg, svc, logger := setup(*configPath)
	defer svc.Close()

	gen, err := buildGenerator(cfg)
	if err != nil {
		logger.Fatal("failed to create answer generator", zap.Error(err))
	}
	if gen == nil {
		logger.Info("no LLM API key set, ask endpoint disabled",
			zap.String("env", cfg.LLM.APIKeyEnv))
	}

	srv := server.New(svc, gen, &cfg.Server, logger)

	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-done
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Stop(ctx); err != nil {
			logger.Error("shutdown failed", zap.Error(err))
		}
	}()

	if err := srv.Start(); err != nil {
		logger.Info("server stopped", zap.Error(err))
	}
}

func runIngest() {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	_ = fs.Parse(os.Args[2:])
	if fs.NArg() == 0 {
		fmt.Println("Usage: askdoc ingest [-config path] <files...>")
		os.Exit(1)
	}

	_, svc, _ := setup(*configPath)
	defer svc.Close()

	reports := svc.IngestFiles(context.Background(), fs.Args())
	failed := 0
	for _, r := range reports {
		if r.Error != "" {
			failed++
			fmt.Printf("FAIL  %s: %s\n", r.Filename, r.Error)
			continue
		}
		fmt.Printf("OK    %s (%d chunks)\n", r.Filename, r.Metadata.ChunkCount)
	}
	fmt.Printf("\nIngested %d/%d documents\n", len(reports)-failed, len(reports))
	if failed > 0 {
		os.Exit(1)
	}
}

func runQuery() {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	k := fs.Int("k", 0, "number of results (default from config)")
	_ = fs.Parse(os.Args[2:])
	if fs.NArg() == 0 {
		fmt.Println("Usage: askdoc query [-config path] [-k n] <text>")
		os.Exit(1)
	}

	_, svc, _ := setup(*configPath)
	defer svc.Close()

	results, err := svc.Query(context.Background(), fs.Arg(0), *k)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(results) == 0 {
		fmt.Println("No results.")
		return
	}
	for i, r := range results {
		fmt.Printf("%d. [%s] distance=%.4f\n   %s\n", i+1, r.Metadata.Filename, r.Distance, utils.Truncate(r.Text, 200))
	}
}

func runAsk() {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	k := fs.Int("k", 0, "number of context chunks (default from config)")
	_ = fs.Parse(os.Args[2:])
	if fs.NArg() == 0 {
		fmt.Println("Usage: askdoc ask [-config path] [-k n] <text>")
		os.Exit(1)
	}

	cfg, svc, _ := setup(*configPath)
	defer svc.Close()

	gen, err := buildGenerator(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if gen == nil {
		fmt.Fprintf(os.Stderr, "Error: no LLM API key in %s\n", cfg.LLM.APIKeyEnv)
		os.Exit(1)
	}

	ctx := context.Background()
	query := fs.Arg(0)
	results, err := svc.Query(ctx, query, *k)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	ans, err := gen.Generate(ctx, query, results, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(ans.Text)
	if len(results) > 0 {
		fmt.Println("\nSources:")
		for i, r := range results {
			fmt.Printf("  [%d] %s\n", i+1, r.Metadata.Filename)
		}
	}
}

func runRemove() {
	fs := flag.NewFlagSet("remove", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	_ = fs.Parse(os.Args[2:])
	if fs.NArg() == 0 {
		fmt.Println("Usage: askdoc remove [-config path] <filename>")
		os.Exit(1)
	}

	_, svc, _ := setup(*configPath)
	defer svc.Close()

	removed, err := svc.Remove(context.Background(), fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if !removed {
		fmt.Printf("Document not found: %s\n", fs.Arg(0))
		os.Exit(1)
	}
	fmt.Printf("Removed %s from the catalog (vectors remain until the index is rebuilt)\n", fs.Arg(0))
}

func runList() {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	_ = fs.Parse(os.Args[2:])

	_, svc, _ := setup(*configPath)
	defer svc.Close()

	docs, err := svc.List(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(docs) == 0 {
		fmt.Println("No documents ingested.")
		return
	}
	for _, d := range docs {
		fmt.Printf("%-40s %-6s %4d chunks\n", d.Filename, d.Extension, d.ChunkCount)
	}
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	_ = fs.Parse(os.Args[2:])

	_, svc, _ := setup(*configPath)
	defer svc.Close()

	stats, err := svc.Stats(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Documents:  %d\n", stats.Documents)
	fmt.Printf("Chunks:     %d\n", stats.Chunks)
	fmt.Printf("Dimensions: %d\n", stats.Dimensions)
	fmt.Printf("Formats:    %v\n", svc.SupportedFormats())
}
