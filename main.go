package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/mbolis/quick-inspect/app"
	"github.com/mbolis/quick-inspect/config"
	"github.com/mbolis/quick-inspect/database"
	"github.com/mbolis/quick-inspect/httpx"
	"github.com/mbolis/quick-inspect/inspection"
	"github.com/mbolis/quick-inspect/log"
	"github.com/mbolis/quick-inspect/routes"
)

func main() {
	cfg, err := config.ParseFlags()
	if err != nil {
		log.Fatal("main.config:", err)
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal("main.db.open:", err)
	}

	remote := httpx.NewClient(cfg.APIUrl, cfg.Timeout)
	store := inspection.NewStore(db, remote)
	if err = store.LoadAll(context.Background()); err != nil {
		log.Warn("main.load_inspections:", err)
	}

	app := app.App{
		Auth:        httpx.NewAuthenticator(remote),
		Inspections: store,
		Config:      cfg,
	}

	handler := routes.Wire(app)

	err = runServer(cfg, handler)
	if !errors.Is(err, http.ErrServerClosed) {
		err = multierror.Append(err, db.Close())
		log.Fatal("main.server:", err)
	}
	if err = db.Close(); err != nil {
		log.Error("main.db.close:", err)
	}
}

func runServer(cfg config.Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.Timeout + 10*time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	shutdown := make(chan struct{})
	go func() {
		defer close(shutdown)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("main.server.shutdown:", err)
		}
	}()

	log.Info("Listening on " + cfg.Url())
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		// wait for in-flight requests before the caller closes the database
		<-shutdown
	}
	return err
}
