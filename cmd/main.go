package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"

	"docchat/internal/config"
	"docchat/internal/embedding"
	"docchat/internal/index"
	"docchat/internal/ingest"
	"docchat/internal/llmservice"
	"docchat/internal/responder"
	"docchat/internal/server"
	"docchat/internal/session"
)

const configFilePath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	configPath := flag.String("config", configFilePath, "Path to the config file")
	addr := flag.String("addr", "", "Listen address (overrides config)")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	log.Debug().Interface("rag", cfg.RAG).Str("addr", cfg.Server.Addr).Msg("Loaded config")

	embedder, err := embedding.NewEmbedder(&cfg.EmbedLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}

	var db *bun.DB
	if cfg.RAG.Backend == "postgres" {
		db, err = index.ConnectDB(&cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("Error connecting to database")
		}
		defer db.Close()
	}

	llm := llmservice.NewClient(&cfg.LLM)
	builder := ingest.NewBuilder(embedder, cfg, db)
	sessions := session.NewStore()

	srv, err := server.NewServer(server.ServerConfig{
		Logger:   log.Logger,
		Builder:  builder,
		Sessions: sessions,
		NewResponder: func(idx index.Index) *responder.Responder {
			return responder.New(idx, embedder, llm, cfg.RAG.TopK)
		},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Error creating server")
	}

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("Listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Info().Msg("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Shutdown error")
	}
}
