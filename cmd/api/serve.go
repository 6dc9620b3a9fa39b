package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"huronportal/internal/database"
	"huronportal/internal/handler"
	"huronportal/internal/logger"
	"huronportal/internal/service"
	"huronportal/internal/websocket"
)

const shutdownTimeout = 10 * time.Second

var autoMigrate bool

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE:  runServe,
	}
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "Run database migrations before serving")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx, true)
	if err != nil {
		return err
	}
	defer func() { _ = a.close() }()

	if autoMigrate {
		db, _ := a.connector.DB()
		if err := database.Migrate(db); err != nil {
			return err
		}
		a.log.Info("database migrated")
	}

	if a.cfg.Server.IsRelease() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Set up WebSocket Hub
	wsHub := websocket.NewHub(a.cfg.Server.AllowedOrigins)
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go wsHub.Run(hubCtx)

	// Set up dependencies (Repository -> Service -> Handler)
	authService := service.NewAuthService(a.users, a.hasher, a.sessions, a.revocations)
	userService := service.NewUserService(a.users, a.txManager, a.hasher, a.revocations, wsHub)
	machineTypeService := service.NewMachineTypeService(a.machineTypes, a.machines, a.txManager, wsHub)

	secureCookie := a.cfg.Server.IsRelease()
	router := handler.NewRouter(handler.RouterConfig{
		AllowedOrigins: a.cfg.Server.AllowedOrigins,
		Logger:         logger.WithComponent("http"),
		Hub:            wsHub,
	}, authService,
		handler.NewAuthHandler(authService, a.sessions.TTL(), secureCookie),
		handler.NewClientHandler(a.clientService(wsHub)),
		handler.NewMachineHandler(a.machineService(wsHub)),
		handler.NewMachineTypeHandler(machineTypeService),
		handler.NewUserHandler(userService),
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("server listening", "addr", srv.Addr, "mode", a.cfg.Server.Mode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	a.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	stopHub()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server forced to shutdown", "error", err)
		return err
	}
	a.log.Info("server exited gracefully")
	return nil
}
