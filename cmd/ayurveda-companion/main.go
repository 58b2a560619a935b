// Command ayurveda-companion builds the Ayurveda vector index and serves
// the question-answering API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/redis/go-redis/v9"

	companion "github.com/aqua777/ayurveda-companion"
	"github.com/aqua777/ayurveda-companion/retrieval"
	"github.com/aqua777/ayurveda-companion/server"
	"github.com/aqua777/ayurveda-companion/sessionstore"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	var err error
	switch os.Args[1] {
	case "index":
		err = runIndex(os.Args[2:], logger)
	case "serve":
		err = runServe(os.Args[2:], logger)
	default:
		usage()
		os.Exit(1)
	}

	if err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: ayurveda-companion <command> [flags]")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  index   build the vector index from a directory of PDFs")
	fmt.Fprintln(os.Stderr, "  serve   run the HTTP API")
}

func runIndex(args []string, logger *slog.Logger) error {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	pdfDir := fs.String("pdf-dir", "data", "directory of source PDF files")
	indexPath := fs.String("index", "index", "directory for the persisted vector index")
	collection := fs.String("collection", companion.DefaultCollectionName, "collection name")
	chunkSize := fs.Int("chunk-size", 0, "chunk size in tokens (0 for default)")
	chunkOverlap := fs.Int("chunk-overlap", 0, "chunk overlap in tokens (0 for default)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := companion.Config{
		IndexPath:      *indexPath,
		CollectionName: *collection,
		ChunkSize:      *chunkSize,
		ChunkOverlap:   *chunkOverlap,
		Logger:         logger,
	}

	logger.Info("building index", "pdf_dir", *pdfDir, "index", *indexPath)
	return companion.BuildIndex(context.Background(), cfg, *pdfDir)
}

func runServe(args []string, logger *slog.Logger) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", ":8000", "listen address")
	indexPath := fs.String("index", "index", "directory of the persisted vector index")
	collection := fs.String("collection", companion.DefaultCollectionName, "collection name")
	topK := fs.Int("top-k", 0, "chunks retrieved per question (0 for default)")
	redisAddr := fs.String("redis", os.Getenv("REDIS_ADDR"), "redis address for session storage (empty for in-memory)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var sessions sessionstore.SessionStore
	if *redisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: *redisAddr})
		sessions = sessionstore.NewRedisSessionStore(client)
		logger.Info("using redis session store", "addr", *redisAddr)
	}

	c, err := companion.New(companion.Config{
		IndexPath:      *indexPath,
		CollectionName: *collection,
		TopK:           *topK,
		Sessions:       sessions,
		Logger:         logger,
	})
	if errors.Is(err, retrieval.ErrIndexNotFound) {
		return fmt.Errorf("%w; run 'ayurveda-companion index' first", err)
	}
	if err != nil {
		return err
	}

	logger.Info("listening", "addr", *addr)
	return http.ListenAndServe(*addr, server.New(c, server.WithLogger(logger)))
}
