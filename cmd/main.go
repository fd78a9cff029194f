package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"collabhub/ai"
	"collabhub/api/handlers"
	"collabhub/auth"
	"collabhub/collaborator"
	"collabhub/moderation"
	"collabhub/repositories"
	"collabhub/runtime"
	"collabhub/runtime/workers"
	"collabhub/services"
	"collabhub/transport/ws"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// This pattern is preferred over calling os.Exit or panic directly because:
// 1. It ensures all 'defer' statements (like database cleanup) are executed before the program exits.
// 2. It improves testability by decoupling the initialization logic from the main entry point.
// 3. It provides a structured way to handle graceful shutdowns for the HTTP server and background workers.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Storage (BadgerDB + Bluge index)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.INFO))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	blugeWriter, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		return fmt.Errorf("search index opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing search index...")
		_ = blugeWriter.Close()
	}()

	// 3. Moderation
	replacement, err := CharacterRune(config.CharReplacement)
	if err != nil {
		return err
	}
	moderator, err := moderation.NewModerator(strings.Split(config.CensoredWords, ","), replacement)
	if err != nil {
		return fmt.Errorf("moderator build failed: %w", err)
	}

	// 4. Supervision & Orchestration
	sup := workers.NewSupervisor(log, config.RestartInterval)
	registry := runtime.NewRegistry()
	messageRepository := repositories.NewMessageRepository(db, log, config.LimitMessages)
	searchRepository := repositories.NewSearchRepository(blugeWriter, log)

	orchestrator := runtime.NewOrchestrator(
		log, sup, registry, moderator,
		messageRepository, searchRepository,
		config.NumberOfWorkers, config.BufferSize,
		config.DeliveryTimeout, config.TelemetryInterval,
	)

	// 5. AI bridge (completions re-enter through the orchestrator)
	generator := ai.NewClaude(config.AnthropicAPIKey, config.AnthropicModel, config.GenerationMaxTokens)
	bridge := ai.NewBridge(log, generator, orchestrator, config.GenerationTimeout)
	orchestrator.SetInvoker(bridge)

	// 6. Authentication (membership gate only with a configured project API)
	tokens := auth.NewTokenManager(config.JWTSecret, config.AuthTokenDuration)
	var membership auth.MembershipChecker
	if config.ProjectAPIBaseURL != "" {
		membership = collaborator.NewClient(config.ProjectAPIBaseURL, config.ProjectAPITimeout, log)
		log.Info("Membership gate active", "base_url", config.ProjectAPIBaseURL)
	}
	authenticator := auth.NewAuthenticator(tokens, membership, log)

	// 7. Transport
	chatService := services.NewChatService(orchestrator, config.MaxContentLength)
	wsHandler := ws.NewHandler(authenticator, chatService, log, config.ConnectionBufferSize)
	messagesHandler := handlers.NewMessagesHandler(chatService)
	aiHandler := handlers.NewAIHandler(generator, log)
	router := handlers.NewRouter(log, tokens, wsHandler, messagesHandler, aiHandler)

	// 8. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 9. Start the Engine
	if err = orchestrator.Start(ctx); err != nil {
		return fmt.Errorf("orchestrator failed to start: %w", err)
	}

	// 10. HTTP Server
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{Addr: address, Handler: router}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// 11. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 12. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
	bridge.Wait()
	orchestrator.Stop()
	log.Info("Program stopped cleanly")

	return nil
}
