/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the Orbit Reward Engine server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Load reward configuration (coefficient table)
  3. Initialize SQLite store and wallet ledger
  4. Register reward strategies
  5. Configure HTTP router
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: 8080)
  -db      SQLite database path (default: rewards.db)
           Use ":memory:" for an in-memory database
  -config  JSON reward configuration path (optional; built-in default
           coefficient table when omitted)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/rewards.db"

  # Run with custom coefficients
  ./server -config="./config/rewards.json"

SEE ALSO:
  - api/server.go: Router configuration
  - factory/config.go: Configuration format
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/orbit/reward-engine/api"
	"github.com/orbit/reward-engine/estimate"
	"github.com/orbit/reward-engine/factory"
	"github.com/orbit/reward-engine/ledger"
	"github.com/orbit/reward-engine/reward"
	"github.com/orbit/reward-engine/store/sqlite"
)

func main() {
	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "rewards.db", "SQLite database path")
	configPath := flag.String("config", "", "JSON reward configuration path")
	flag.Parse()

	// Configuration
	cfg := factory.DefaultConfig()
	if *configPath != "" {
		loaded, err := factory.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}

	// Store and ledger
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	walletLedger := ledger.NewWalletLedger(store)

	// Collaborators: standalone server uses the map-backed lookups and a
	// logging grant service. Production embeds this engine behind the admin
	// backend, which supplies real implementations.
	lookup := reward.NewStaticLookup()
	grants := reward.LogGrantService{}

	// Strategies
	registry := reward.NewRegistry()
	registry.Register(reward.KindCoin, reward.NewCoinStrategy(walletLedger, cfg.Coefficients))
	registry.Register(reward.KindExternalRole, reward.NewRoleStrategy(cfg.RoleProvider, lookup, lookup, grants))

	handler := api.NewHandler(
		walletLedger,
		estimate.NewCalculator(cfg.Coefficients, lookup),
		reward.NewDispatcher(registry),
	)
	router := api.NewRouter(handler)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		log.Printf("Orbit Reward Engine listening on :%d (db: %s)", *port, *dbPath)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
