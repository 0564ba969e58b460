// Command loaddata imports the CSV fixtures from DATA_DIR (or -dir) into
// MongoDB. Records that already exist are skipped, so it can be re-run.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/yamdb/yamdb-api/internal/infrastructure/config"
	mongodb "github.com/yamdb/yamdb-api/internal/infrastructure/db/mongo"
	"github.com/yamdb/yamdb-api/internal/loader"
	"github.com/yamdb/yamdb-api/pkg/logger"
)

func main() {
	dir := flag.String("dir", "", "directory holding the CSV fixtures (defaults to DATA_DIR)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := logger.Bootstrap("yamdb-loaddata")
		boot.Fatal().Err(err).Msg("config error")
	}
	log := logger.New(logger.Options{Service: "yamdb-loaddata", Level: cfg.LogLevel, Pretty: cfg.Log.Pretty})

	if *dir == "" {
		*dir = cfg.DataDir
	}

	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("mongo indexes")
	}

	seqs := mongodb.NewSequences(db)
	l := loader.New(loader.Stores{
		Users:      mongodb.NewUserRepository(db, seqs),
		Categories: mongodb.NewCategoryRepository(db),
		Genres:     mongodb.NewGenreRepository(db),
		Titles:     mongodb.NewTitleRepository(db, seqs),
		Reviews:    mongodb.NewReviewRepository(db, seqs),
		Comments:   mongodb.NewCommentRepository(db, seqs),
	}, log)

	stats, err := l.Run(ctx, *dir)
	if err != nil {
		log.Error().Err(err).Str("dir", *dir).Msg("load aborted")
		_ = client.Disconnect(context.Background())
		os.Exit(1)
	}

	var loaded, skipped int
	for _, st := range stats {
		loaded += st.Loaded
		skipped += st.Skipped
	}
	log.Info().Str("dir", *dir).Int("loaded", loaded).Int("skipped", skipped).Msg("data loaded")
}
