// @title        YaMDb API
// @version      1.0
// @description  Reviews of films, books and music with passwordless signup.
// @BasePath     /api/v1
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	_ "github.com/yamdb/yamdb-api/docs"
	"github.com/yamdb/yamdb-api/internal/api"
	"github.com/yamdb/yamdb-api/internal/api/handler"
	"github.com/yamdb/yamdb-api/internal/core/credentials"
	"github.com/yamdb/yamdb-api/internal/core/ports"
	"github.com/yamdb/yamdb-api/internal/core/service"
	"github.com/yamdb/yamdb-api/internal/infrastructure/config"
	mongodb "github.com/yamdb/yamdb-api/internal/infrastructure/db/mongo"
	redisdb "github.com/yamdb/yamdb-api/internal/infrastructure/db/redis"
	"github.com/yamdb/yamdb-api/internal/infrastructure/mail"
	"github.com/yamdb/yamdb-api/internal/infrastructure/queue"
	"github.com/yamdb/yamdb-api/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := logger.Bootstrap("yamdb-api")
		boot.Fatal().Err(err).Msg("config error")
	}

	log := logger.New(logger.Options{
		Service: "yamdb-api",
		Level:   cfg.LogLevel,
		Pretty:  cfg.Log.Pretty,
		File: logger.File{
			Path:       cfg.Log.File,
			MaxSizeMB:  cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
		},
	})

	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("mongo disconnect")
		}
	}()
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("mongo indexes")
	}

	readiness := map[string]handler.DependencyCheck{"mongodb": handler.MongoCheck(db)}

	var rdb *redis.Client
	if cfg.Mail.Queue == config.MailQueueRedis {
		rdb, err = redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("redis connection failed")
		}
		defer rdb.Close()
		readiness["redis"] = handler.RedisCheck(rdb)
	}

	mailer, mailDone, err := newMailer(ctx, cfg, rdb, log)
	if err != nil {
		log.Fatal().Err(err).Msg("mail setup failed")
	}

	codes, err := credentials.NewCodeGenerator(cfg.Auth.SecretKey, cfg.Auth.ConfirmationCodeTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("confirmation codes")
	}
	tokens, err := credentials.NewTokenIssuer(cfg.Auth.SecretKey, cfg.Auth.Issuer, cfg.Auth.AccessTokenTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("access tokens")
	}

	seqs := mongodb.NewSequences(db)
	users := mongodb.NewUserRepository(db, seqs)
	categories := mongodb.NewCategoryRepository(db)
	genres := mongodb.NewGenreRepository(db)
	titles := mongodb.NewTitleRepository(db, seqs)
	reviews := mongodb.NewReviewRepository(db, seqs)
	comments := mongodb.NewCommentRepository(db, seqs)

	e := api.NewRouter(api.Deps{
		Log:        log,
		Tokens:     tokens,
		Users:      users,
		Auth:       service.NewAuthService(users, codes, tokens, mailer, cfg.Mail.From, log),
		UserAdmin:  service.NewUserService(users, reviews, comments, log),
		Categories: service.NewCategoryService(categories, titles, log),
		Genres:     service.NewGenreService(genres, titles, log),
		Titles:     service.NewTitleService(titles, categories, genres, reviews, comments, log),
		Reviews:    service.NewReviewService(titles, reviews, comments, log),
		Readiness:  readiness,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server started")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server crashed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown error")
	}

	select {
	case <-mailDone:
	case <-shutdownCtx.Done():
		log.Warn().Msg("mail dispatcher did not stop in time")
	}
}

// newMailer picks the delivery transport and, with MAIL_QUEUE=redis, puts
// the outbox in front of it with a dispatcher draining into the transport.
// The returned channel closes once the dispatcher has handed undelivered
// mail back to the outbox.
func newMailer(ctx context.Context, cfg *config.Config, rdb *redis.Client, log zerolog.Logger) (ports.Mailer, <-chan struct{}, error) {
	done := make(chan struct{})

	var transport ports.Mailer = mail.NewLogTransport(log)
	if cfg.Mail.Backend == config.MailBackendSMTP {
		smtpTransport, err := mail.NewSMTPTransport(mail.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			TLS:      cfg.SMTP.TLS,
			Timeout:  cfg.SMTP.Timeout,
		})
		if err != nil {
			return nil, nil, err
		}
		transport = smtpTransport
	}

	if cfg.Mail.Queue != config.MailQueueRedis {
		close(done)
		return transport, done, nil
	}

	outbox := redisdb.NewMailOutbox(rdb, "")
	dispatcher := queue.NewMailDispatcher(cfg.Mail.Workers, transport, outbox, log)
	go func() {
		defer close(done)
		dispatcher.Run(ctx)
	}()
	return outbox, done, nil
}
