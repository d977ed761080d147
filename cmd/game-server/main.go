package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"

	"poker-platform/internal/api"
	"poker-platform/internal/auth"
	"poker-platform/internal/broadcast"
	"poker-platform/internal/config"
	"poker-platform/internal/engine"
	"poker-platform/internal/events"
	"poker-platform/internal/obslog"
	"poker-platform/internal/storage"
	"poker-platform/internal/storage/postgres"
	"poker-platform/pkg/money"
	"poker-platform/pkg/rng"
)

// defaultTableConfig seeds every table lazily created by the command
// gateway (spec.md §1 scopes table admin/CRUD out; this is the stand-in
// the teacher's own handleWebSocket used for the same reason).
var defaultTableConfig = engine.Config{
	SmallBlind: money.New(1),
	BigBlind:   money.New(2),
	MinBuyIn:   money.New(40),
	MaxBuyIn:   money.New(400),
	MaxSeats:   9,
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatalf("failed to reach database: %v", err)
	}

	ctx := context.Background()

	players := postgres.NewPlayerPostgresStorage(db)
	if err := players.CreatePlayerTable(ctx); err != nil {
		log.Fatalf("failed to migrate players table: %v", err)
	}
	tables := postgres.NewTablePostgresStorage(db)
	if err := tables.CreateTablesTable(ctx); err != nil {
		log.Fatalf("failed to migrate tables table: %v", err)
	}
	hands := postgres.NewHandPostgresStorage(db)
	if err := hands.CreateHandRecordTable(ctx); err != nil {
		log.Fatalf("failed to migrate hand_records table: %v", err)
	}
	summaries := postgres.NewSummaryPostgresStorage(db)
	if err := summaries.CreateGameSummaryTable(ctx); err != nil {
		log.Fatalf("failed to migrate game_summaries table: %v", err)
	}

	chPort, err := strconv.Atoi(cfg.ClickHousePort)
	if err != nil {
		log.Fatalf("invalid CLICKHOUSE_PORT %q: %v", cfg.ClickHousePort, err)
	}
	analytics, err := storage.NewAnalyticsSink(ctx, storage.ClickHouseConfig{
		Host:         cfg.ClickHouseHost,
		Port:         chPort,
		Database:     cfg.ClickHouseDB,
		Username:     cfg.ClickHouseUser,
		Password:     cfg.ClickHousePass,
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		ConnTimeout:  5 * time.Second,
	})
	if err != nil {
		log.Printf("analytics sink unavailable, continuing without it: %v", err)
		analytics = nil
	} else if err := analytics.CreateTables(ctx); err != nil {
		log.Printf("failed to migrate analytics tables: %v", err)
	}

	var publisher *events.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		publisher, err = events.NewPublisher(cfg.KafkaBrokers)
		if err != nil {
			log.Printf("event publisher unavailable, continuing without it: %v", err)
			publisher = nil
		}
	}

	rngSystem, err := rng.NewSystem()
	if err != nil {
		log.Fatalf("failed to initialize RNG: %v", err)
	}
	audit := rng.NewAuditLogger(func(evt rng.AuditEvent) {
		log.Printf("shuffle audit: table=%s hand=%d algorithm=%s prng=%s seedHash=%s",
			evt.TableID, evt.HandNumber, evt.Algorithm, evt.PRNG, evt.SeedHash)
	})

	server := api.NewServer(api.Dependencies{
		DefaultConfig: defaultTableConfig,
		RNG:           rngSystem,
		Audit:         audit,
		Players:       players,
		Tables:        tables,
		Hands:         hands,
		Summaries:     summaries,
		Broadcaster:   broadcast.New(),
		Publisher:     publisher,
		Analytics:     analytics,
		Logger:        obslog.New(),
		Authenticator: auth.NewHMACAuthenticator(cfg.JWTSigningKey),
	})

	router := gin.Default()
	server.RegisterRoutes(router)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("shutting down server...")
		if publisher != nil {
			_ = publisher.Close()
		}
		if analytics != nil {
			_ = analytics.Close()
		}
		os.Exit(0)
	}()

	log.Printf("game server starting on port %s", cfg.GameServerPort)
	if err := router.Run(":" + cfg.GameServerPort); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
