package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/joshfermano/perpsbot/server/internal/auth"
	"github.com/joshfermano/perpsbot/server/internal/config"
	"github.com/joshfermano/perpsbot/server/internal/handler"
	"github.com/joshfermano/perpsbot/server/internal/service/account"
	"github.com/joshfermano/perpsbot/server/internal/service/ai"
	chatservice "github.com/joshfermano/perpsbot/server/internal/service/chat"
	mongostore "github.com/joshfermano/perpsbot/server/internal/store/mongo"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// An unreachable database at boot is fatal.
	db, err := mongostore.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		log.Fatalf("failed to connect to MongoDB: %v", err)
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Disconnect(disconnectCtx); err != nil {
			log.Printf("warning: failed to disconnect from MongoDB: %v", err)
		}
	}()
	log.Println("MongoDB connection successful")

	generator, err := ai.NewService(ctx, cfg.AI)
	if err != nil {
		log.Fatalf("failed to initialize generation service: %v", err)
	}

	tokens := auth.NewTokens(cfg.Auth.TokenSecret, cfg.Auth.TokenTTL)
	accounts := account.NewService(db.UserStore(), cfg.Auth.BcryptCost)
	chatSvc := chatservice.NewService(db.ConversationStore(), generator)

	router := handler.NewRouter(handler.RouterConfig{
		Accounts:       accounts,
		Chat:           chatSvc,
		Tokens:         tokens,
		AllowedOrigins: []string{cfg.Server.ClientURL, "http://localhost:5173"},
		Environment:    cfg.Server.Environment,
		Production:     cfg.Server.Production(),
	})

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("Server running in %s mode on %s", serverCfg.Environment, serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
