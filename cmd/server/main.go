package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/adelmas/galerie/internal/config"
	"github.com/adelmas/galerie/internal/db"
	"github.com/adelmas/galerie/internal/server"
)

func main() {
	migrateOnly := flag.Bool("migrate-only", false, "run schema migration and exit")
	seedOnly := flag.Bool("seed-only", false, "run migration and seeding and exit")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("could not load .env: %v", err)
	}
	cfg := config.Load()

	gdb, err := db.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("database connect failed: %v", err)
	}

	if err := db.Migrate(gdb); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	if *migrateOnly {
		log.Println("migration complete")
		return
	}
	if err := db.Seed(gdb); err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	if *seedOnly {
		log.Println("seeding complete")
		return
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      server.New(cfg, gdb),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("listening on :%s (%s)", cfg.Port, cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
