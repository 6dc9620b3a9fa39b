package service

import (
	"context"
	"fmt"
	"log/slog"

	"huronportal/internal/apperror"
	"huronportal/internal/logger"
	"huronportal/internal/model"
	"huronportal/internal/repository"
	"huronportal/internal/validation"
)

type CreateClientRequest struct {
	CompanyName string `json:"companyName" validate:"required,max=200"`
	Address     string `json:"address" validate:"required,max=300"`
	Province    string `json:"province" validate:"required,province"`
	PostalCode  string `json:"postalCode" validate:"required,postal_code"`
}

// UpdateClientRequest is a partial update: nil fields keep their stored value.
type UpdateClientRequest struct {
	CompanyName *string `json:"companyName" validate:"omitnil,min=1,max=200"`
	Address     *string `json:"address" validate:"omitnil,min=1,max=300"`
	Province    *string `json:"province" validate:"omitnil,province"`
	PostalCode  *string `json:"postalCode" validate:"omitnil,postal_code"`
	Version     *uint64 `json:"version,omitempty"`
}

// Apply merges the patch onto c.
func (r UpdateClientRequest) Apply(c *model.Client) {
	if r.CompanyName != nil {
		c.CompanyName = *r.CompanyName
	}
	if r.Address != nil {
		c.Address = *r.Address
	}
	if r.Province != nil {
		c.Province = *r.Province
	}
	if r.PostalCode != nil {
		c.PostalCode = validation.NormalizePostalCode(*r.PostalCode)
	}
}

type ListClientsQuery struct {
	Search string
	Page   repository.PageRequest
}

type ClientService interface {
	CreateClient(ctx context.Context, actor *Actor, req CreateClientRequest) (*model.Client, error)
	GetClient(ctx context.Context, id string) (*model.Client, error)
	UpdateClient(ctx context.Context, actor *Actor, id string, req UpdateClientRequest) (*model.Client, error)
	DeleteClient(ctx context.Context, actor *Actor, id string) error
	ListClients(ctx context.Context, q ListClientsQuery) (repository.Page[model.Client], error)
}

type clientService struct {
	clients   repository.ClientRepository
	machines  repository.MachineRepository
	txManager repository.TransactionManager
	notifier  ChangeNotifier
	log       *slog.Logger
}

func NewClientService(
	clients repository.ClientRepository,
	machines repository.MachineRepository,
	txManager repository.TransactionManager,
	notifier ChangeNotifier,
) ClientService {
	return &clientService{
		clients:   clients,
		machines:  machines,
		txManager: txManager,
		notifier:  notifierOrNop(notifier),
		log:       logger.WithComponent("client-service"),
	}
}

func (s *clientService) CreateClient(ctx context.Context, actor *Actor, req CreateClientRequest) (*model.Client, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	client := &model.Client{
		CompanyName: req.CompanyName,
		Address:     req.Address,
		Province:    req.Province,
		PostalCode:  validation.NormalizePostalCode(req.PostalCode),
	}
	if err := s.clients.Create(ctx, client); err != nil {
		return nil, repoError(err, "Client")
	}

	s.log.Info("client created", "client_id", client.ID, "by", actorName(actor))
	s.notifier.Notify(EntityClient, ActionCreated, client.ID)
	return client, nil
}

func (s *clientService) GetClient(ctx context.Context, id string) (*model.Client, error) {
	client, err := s.clients.GetByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "Client")
	}
	if client == nil {
		return nil, apperror.NewNotFound("Client")
	}
	return client, nil
}

func (s *clientService) UpdateClient(ctx context.Context, actor *Actor, id string, req UpdateClientRequest) (*model.Client, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	var client *model.Client
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		current, err := s.clients.GetByID(txCtx, id)
		if err != nil {
			return repoError(err, "Client")
		}
		if current == nil {
			return apperror.NewNotFound("Client")
		}
		if err := checkVersion(req.Version, current.Version, "Client"); err != nil {
			return err
		}

		previousName := current.CompanyName
		req.Apply(current)
		if err := s.clients.Update(txCtx, current); err != nil {
			return repoError(err, "Client")
		}

		if current.CompanyName != previousName {
			if err := s.machines.RenameClient(txCtx, current.ID, current.CompanyName); err != nil {
				return repoError(fmt.Errorf("propagate client name: %w", err), "Machine")
			}
		}
		client = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("client updated", "client_id", client.ID, "version", client.Version, "by", actorName(actor))
	s.notifier.Notify(EntityClient, ActionUpdated, client.ID)
	return client, nil
}

// DeleteClient refuses to remove a client still referenced by machines.
func (s *clientService) DeleteClient(ctx context.Context, actor *Actor, id string) error {
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		client, err := s.clients.GetByID(txCtx, id)
		if err != nil {
			return repoError(err, "Client")
		}
		if client == nil {
			return apperror.NewNotFound("Client")
		}

		n, err := s.machines.CountByClient(txCtx, id)
		if err != nil {
			return repoError(err, "Machine")
		}
		if n > 0 {
			return apperror.NewConflict(apperror.CodeInUse,
				fmt.Sprintf("Client has %d associated machine(s); reassign or delete them first", n))
		}

		return repoError(s.clients.Delete(txCtx, id), "Client")
	})
	if err != nil {
		return err
	}

	s.log.Info("client deleted", "client_id", id, "by", actorName(actor))
	s.notifier.Notify(EntityClient, ActionDeleted, id)
	return nil
}

func (s *clientService) ListClients(ctx context.Context, q ListClientsQuery) (repository.Page[model.Client], error) {
	page, err := s.clients.List(ctx, repository.ClientFilter{Search: q.Search}, q.Page)
	if err != nil {
		return page, repoError(err, "Client")
	}
	return page, nil
}
