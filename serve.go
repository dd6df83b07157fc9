package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Kush-Patel15/KDS-system/api"
	"github.com/Kush-Patel15/KDS-system/client"
	"github.com/Kush-Patel15/KDS-system/config"
	"github.com/Kush-Patel15/KDS-system/domain"
	"github.com/Kush-Patel15/KDS-system/feed"
	"github.com/Kush-Patel15/KDS-system/state"
)

func newServeCommand() *cobra.Command {
	var cfgPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the reconciliation core and display gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cfgPath)
		},
	}

	cmd.Flags().StringVarP(&cfgPath, "config", "c", "kds.yaml", "config file path")

	return cmd
}

func runServe(cfgPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	flow, err := domain.FlowPreset(cfg.FlowPreset)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend := client.New(cfg.BackendBaseURL, cfg.RequestTimeout)
	store := state.NewStore()

	loadCtx, cancelLoad := context.WithTimeout(ctx, 30*time.Second)
	defer cancelLoad()
	items, err := backend.FetchMenuItems(loadCtx)
	if err != nil {
		return fmt.Errorf("load menu: %w", err)
	}
	store.LoadMenu(items)
	orders, err := backend.FetchActiveOrders(loadCtx)
	if err != nil {
		return fmt.Errorf("load orders: %w", err)
	}
	store.LoadOrders(orders)
	log.WithFields(log.Fields{
		"menu_items": len(items),
		"orders":     len(orders),
	}).Info("initial snapshot loaded")

	rc := redis.NewClient(&redis.Options{Addr: cfg.FeedAddr})
	sub := feed.Subscribe(ctx, rc, store, feed.Options{
		MenuTopic:    cfg.MenuTopic,
		OrdersTopic:  cfg.OrdersTopic,
		HighlightTTL: cfg.HighlightTTL,
	})

	mutator := state.NewMutator(store, backend, state.NewTempIDSource(), flow)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, "X-Role"},
	}))
	api.Register(e, store, mutator, backend, sub.Recency(), flow)

	go func() {
		if err := e.Start(cfg.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("gateway stopped")
			stop()
		}
	}()
	log.WithField("addr", cfg.ListenAddr).Info("gateway listening")

	<-ctx.Done()
	log.Info("shutting down")

	// Teardown order matters: close the store first so in-flight mutation
	// resolutions are discarded instead of landing on a dead mirror.
	store.Close()
	sub.Unsubscribe()
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("gateway shutdown")
	}
	if err := rc.Close(); err != nil {
		log.WithError(err).Warn("feed close")
	}
	return nil
}
