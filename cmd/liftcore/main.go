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

	"github.com/redis/go-redis/v9"

	"liftcore/config"
	"liftcore/engine"
	"liftcore/liftstate"
	"liftcore/messaging"
	"liftcore/protocol"
	"liftcore/store"
	"liftcore/www"
)

var Version = "dev"

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "liftcore.yaml", "path to config file")
	flag.Parse()

	if *showVersion {
		fmt.Println("liftcore", Version)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Database
	db, err := store.Open(&cfg.Database)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()
	log.Printf("liftcore: database open (%s)", db.Driver())

	// Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("liftcore: redis not available (%v), running without cache", err)
	} else {
		log.Printf("liftcore: redis connected (%s)", cfg.Redis.Address)
	}
	cancel()
	defer redisClient.Close()

	// Messaging client
	var msgClient *messaging.Client
	if cfg.Messaging.Backend != "" {
		msgClient = messaging.NewClient(&cfg.Messaging)
		if err := msgClient.Connect(); err != nil {
			log.Printf("liftcore: messaging connect failed (%v)", err)
		} else {
			log.Printf("liftcore: messaging connected (%s)", cfg.Messaging.Backend)
		}
		defer msgClient.Close()
	} else {
		log.Printf("liftcore: messaging disabled")
	}

	// Engine
	eng, err := engine.New(engine.Config{
		AppConfig: cfg,
		DB:        db,
		Redis:     liftstate.NewRedisStore(redisClient),
		MsgClient: msgClient,
	})
	if err != nil {
		log.Fatalf("engine: %v", err)
	}
	eng.Start()
	defer eng.Stop()

	if msgClient != nil {
		// Protocol ingestor (inbound lift requests)
		handler := messaging.NewRequestHandler(eng.Dispatcher(), db, cfg.Messaging.StationID, cfg.Messaging.EventsTopic)
		ingestor := protocol.NewIngestor(handler, protocol.StationFilter(cfg.Messaging.StationID))
		if err := msgClient.Subscribe(cfg.Messaging.RequestsTopic, func(_ string, data []byte) {
			ingestor.HandleRaw(data)
		}); err != nil {
			log.Printf("liftcore: protocol ingestor subscribe failed: %v", err)
		} else {
			log.Printf("liftcore: protocol ingestor listening on %s", cfg.Messaging.RequestsTopic)
		}

		// Outbox drainer (outbound lift events)
		drainer := messaging.NewOutboxDrainer(db, msgClient, cfg.Messaging.OutboxDrainInterval)
		drainer.Start()
		defer drainer.Stop()
	}

	// Web server
	handler, stopWeb := www.NewRouter(eng)

	addr := fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		log.Printf("liftcore: web server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("web server: %v", err)
		}
	}()

	log.Printf("liftcore: ready")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Printf("liftcore: shutting down...")
	stopWeb()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	srv.Shutdown(shutdownCtx)

	log.Printf("liftcore: stopped")
}
