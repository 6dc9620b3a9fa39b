package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"huronportal/internal/auth"
	"huronportal/internal/config"
	"huronportal/internal/database"
	"huronportal/internal/logger"
	"huronportal/internal/repository"
	"huronportal/internal/service"
)

// app holds the dependencies shared by every subcommand.
type app struct {
	cfg       *config.Config
	log       *slog.Logger
	connector *database.Connector
	redis     *redis.Client

	users        repository.UserRepository
	clients      repository.ClientRepository
	machines     repository.MachineRepository
	machineTypes repository.MachineTypeRepository
	txManager    repository.TransactionManager

	hasher      *auth.BcryptHasher
	sessions    *auth.SessionManager
	revocations auth.RevocationStore
}

// bootstrap loads configuration, initializes logging and opens the database.
// With connectRedis set it also wires the session revocation store.
func bootstrap(ctx context.Context, connectRedis bool) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Init(cfg.Logger); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	a := &app{
		cfg:         cfg,
		log:         logger.WithComponent("main"),
		connector:   database.NewConnector(cfg.Database),
		hasher:      auth.NewBcryptHasher(cfg.Auth.BcryptCost),
		sessions:    auth.NewSessionManager(cfg.Auth.SessionSecret, cfg.Auth.SessionTTL()),
		revocations: auth.NopRevocationStore{},
	}

	db, err := a.connector.DB()
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	a.log.Info("connected to database", "driver", cfg.Database.Driver)

	a.users = repository.NewUserRepository(db)
	a.clients = repository.NewClientRepository(db)
	a.machines = repository.NewMachineRepository(db)
	a.machineTypes = repository.NewMachineTypeRepository(db)
	a.txManager = repository.NewTransactionManager(db)

	if connectRedis {
		if cfg.Redis.URL == "" {
			a.log.Warn("redis not configured, sessions stay valid until they expire")
		} else {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			client, err := auth.ConnectRedis(pingCtx, cfg.Redis.URL)
			if err != nil {
				_ = a.close()
				return nil, err
			}
			a.redis = client
			a.revocations = auth.NewRedisRevocationStore(client, cfg.Auth.SessionTTL())
			a.log.Info("connected to redis")
		}
	}

	return a, nil
}

func (a *app) clientService(n service.ChangeNotifier) service.ClientService {
	return service.NewClientService(a.clients, a.machines, a.txManager, n)
}

func (a *app) machineService(n service.ChangeNotifier) service.MachineService {
	return service.NewMachineService(a.machines, a.clients, a.machineTypes, a.txManager, n)
}

func (a *app) close() error {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Warn("failed to close redis", "error", err)
		}
	}
	return a.connector.Close()
}
