package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"convohub/infrastructure"
	"convohub/internal"
	"convohub/observability"
	"convohub/repositories"
	"convohub/runtime/workers"
	"convohub/services"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the lifecycle, and centralizes
// error reporting so every defer (database cleanup included) executes
// before the process exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return err
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Conversation store (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.INFO))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 4. Membership index (external account subsystem, Postgres)
	pg, err := infrastructure.NewPostgresClient(ctx, config.PostgresURL)
	if err != nil {
		return fmt.Errorf("membership index unavailable: %w", err)
	}
	defer pg.Close()

	// 5. Engine wiring
	monitoring := observability.NewMonitoringManager(log)
	memberships := services.NewCachedMembershipIndex(
		repositories.NewPostgresMembershipIndex(pg.Pool, log),
		config.MembershipCacheTTL,
		log,
	)
	conversations := repositories.NewConversationRepository(db, log)
	resolver := services.NewResolverService(conversations, memberships, monitoring, log)
	visibility := services.NewVisibilityService(
		conversations,
		services.NewBulkMembershipResolver(memberships, log),
		monitoring,
		log,
	)

	// 6. Supervision & diagnostics
	supervisor := workers.NewSupervisor(log, config.RestartInterval)
	supervisor.Add(workers.NewStatsReporterWorker(log, monitoring, config.StatsInterval))
	go supervisor.Run(ctx)

	internal.StartDebugServer(log, db, config.DebugPort,
		conversationMapper, monitoring.StatsMap, resolver, visibility)

	log.Info("Engine started", "debug_port", config.DebugPort, "at", time.Now().UTC())

	// 7. Wait for stop
	<-ctx.Done()
	log.Info("Shutting down gracefully...")
	supervisor.Stop()
	log.Info("Program stopped cleanly")

	return nil
}

// conversationMapper renders a stored record for the inspect dashboard.
// Undecodable values fall back to the raw row instead of breaking the page.
func conversationMapper(key string, val []byte) internal.InspectRow {
	conv, err := repositories.DecodeConversation(val)
	if err != nil {
		return internal.DefaultMapper(key, val)
	}
	return internal.InspectRow{
		Key:          key,
		Kind:         string(conv.Kind),
		Tenant:       strconv.FormatInt(int64(conv.TenantID), 10),
		CreatedAt:    conv.CreatedAt.Format("2006-01-02 15:04:05"),
		Participants: strconv.Itoa(len(conv.Participants)),
		Detail:       conv.ID.String(),
	}
}
