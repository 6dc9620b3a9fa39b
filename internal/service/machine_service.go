package service

import (
	"context"
	"log/slog"

	"huronportal/internal/apperror"
	"huronportal/internal/logger"
	"huronportal/internal/model"
	"huronportal/internal/repository"
	"huronportal/internal/validation"
)

type CreateMachineRequest struct {
	NumeroOL      string  `json:"numeroOL" validate:"required,max=50,numero_ol"`
	Type          string  `json:"type" validate:"required,max=200"`
	ClientID      string  `json:"clientId" validate:"required,uuid"`
	MachineTypeID *string `json:"machineTypeId,omitempty" validate:"omitnil,uuid_or_empty"`
}

// UpdateMachineRequest is a partial update. An empty MachineTypeID clears the
// catalogue link.
type UpdateMachineRequest struct {
	NumeroOL      *string `json:"numeroOL" validate:"omitnil,min=1,max=50,numero_ol"`
	Type          *string `json:"type" validate:"omitnil,min=1,max=200"`
	ClientID      *string `json:"clientId" validate:"omitnil,uuid"`
	MachineTypeID *string `json:"machineTypeId" validate:"omitnil,uuid_or_empty"`
	Version       *uint64 `json:"version,omitempty"`
}

type ListMachinesQuery struct {
	Search   string
	ClientID string
	NumeroOL string
	Page     repository.PageRequest
}

type MachineService interface {
	CreateMachine(ctx context.Context, actor *Actor, req CreateMachineRequest) (*model.Machine, error)
	GetMachine(ctx context.Context, id string) (*model.Machine, error)
	UpdateMachine(ctx context.Context, actor *Actor, id string, req UpdateMachineRequest) (*model.Machine, error)
	DeleteMachine(ctx context.Context, actor *Actor, id string) error
	ListMachines(ctx context.Context, q ListMachinesQuery) (repository.Page[model.Machine], error)
}

type machineService struct {
	machines     repository.MachineRepository
	clients      repository.ClientRepository
	machineTypes repository.MachineTypeRepository
	txManager    repository.TransactionManager
	notifier     ChangeNotifier
	log          *slog.Logger
}

func NewMachineService(
	machines repository.MachineRepository,
	clients repository.ClientRepository,
	machineTypes repository.MachineTypeRepository,
	txManager repository.TransactionManager,
	notifier ChangeNotifier,
) MachineService {
	return &machineService{
		machines:     machines,
		clients:      clients,
		machineTypes: machineTypes,
		txManager:    txManager,
		notifier:     notifierOrNop(notifier),
		log:          logger.WithComponent("machine-service"),
	}
}

func duplicateNumeroOL() error {
	return apperror.NewDuplicate("A machine with this OL number already exists", "numeroOL")
}

func (s *machineService) resolveClient(ctx context.Context, id string) (*model.Client, error) {
	client, err := s.clients.GetByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "Client")
	}
	if client == nil {
		return nil, apperror.NewReferenceNotFound(apperror.CodeClientNotFound, "Client not found")
	}
	return client, nil
}

func (s *machineService) checkMachineType(ctx context.Context, id string) error {
	mt, err := s.machineTypes.GetByID(ctx, id)
	if err != nil {
		return repoError(err, "Machine type")
	}
	if mt == nil {
		return apperror.NewReferenceNotFound(apperror.CodeMachineTypeNotFound, "Machine type not found")
	}
	return nil
}

func (s *machineService) CreateMachine(ctx context.Context, actor *Actor, req CreateMachineRequest) (*model.Machine, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	var machine *model.Machine
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		existing, err := s.machines.GetByNumeroOL(txCtx, req.NumeroOL)
		if err != nil {
			return repoError(err, "Machine")
		}
		if existing != nil {
			return duplicateNumeroOL()
		}

		client, err := s.resolveClient(txCtx, req.ClientID)
		if err != nil {
			return err
		}

		m := &model.Machine{
			NumeroOL:   req.NumeroOL,
			Type:       req.Type,
			ClientID:   client.ID,
			ClientName: client.CompanyName,
			CreatedBy:  actorName(actor),
		}
		if req.MachineTypeID != nil && *req.MachineTypeID != "" {
			if err := s.checkMachineType(txCtx, *req.MachineTypeID); err != nil {
				return err
			}
			id := *req.MachineTypeID
			m.MachineTypeID = &id
		}

		if err := s.machines.Create(txCtx, m); err != nil {
			if apperror.Is(repoError(err, "Machine"), apperror.TypeDuplicate) {
				return duplicateNumeroOL()
			}
			return repoError(err, "Machine")
		}
		if err := s.clients.RefreshMachineCount(txCtx, client.ID); err != nil {
			return repoError(err, "Client")
		}
		machine = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("machine created", "machine_id", machine.ID, "numero_ol", machine.NumeroOL, "by", actorName(actor))
	s.notifier.Notify(EntityMachine, ActionCreated, machine.ID)
	return machine, nil
}

func (s *machineService) GetMachine(ctx context.Context, id string) (*model.Machine, error) {
	machine, err := s.machines.GetByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "Machine")
	}
	if machine == nil {
		return nil, apperror.NewNotFound("Machine")
	}
	return machine, nil
}

func (s *machineService) UpdateMachine(ctx context.Context, actor *Actor, id string, req UpdateMachineRequest) (*model.Machine, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	var machine *model.Machine
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		current, err := s.machines.GetByID(txCtx, id)
		if err != nil {
			return repoError(err, "Machine")
		}
		if current == nil {
			return apperror.NewNotFound("Machine")
		}
		if err := checkVersion(req.Version, current.Version, "Machine"); err != nil {
			return err
		}

		if req.NumeroOL != nil && *req.NumeroOL != current.NumeroOL {
			other, err := s.machines.GetByNumeroOL(txCtx, *req.NumeroOL)
			if err != nil {
				return repoError(err, "Machine")
			}
			if other != nil {
				return duplicateNumeroOL()
			}
			current.NumeroOL = *req.NumeroOL
		}
		if req.Type != nil {
			current.Type = *req.Type
		}

		previousClientID := current.ClientID
		if req.ClientID != nil && *req.ClientID != current.ClientID {
			client, err := s.resolveClient(txCtx, *req.ClientID)
			if err != nil {
				return err
			}
			current.ClientID = client.ID
		}

		if req.MachineTypeID != nil {
			if *req.MachineTypeID == "" {
				current.MachineTypeID = nil
			} else {
				if err := s.checkMachineType(txCtx, *req.MachineTypeID); err != nil {
					return err
				}
				mtID := *req.MachineTypeID
				current.MachineTypeID = &mtID
			}
		}

		if err := s.machines.Update(txCtx, current); err != nil {
			if apperror.Is(repoError(err, "Machine"), apperror.TypeDuplicate) {
				return duplicateNumeroOL()
			}
			return repoError(err, "Machine")
		}

		if current.ClientID != previousClientID {
			for _, clientID := range []string{previousClientID, current.ClientID} {
				if err := s.clients.RefreshMachineCount(txCtx, clientID); err != nil {
					return repoError(err, "Client")
				}
			}
		}
		machine = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("machine updated", "machine_id", machine.ID, "version", machine.Version, "by", actorName(actor))
	s.notifier.Notify(EntityMachine, ActionUpdated, machine.ID)
	return machine, nil
}

func (s *machineService) DeleteMachine(ctx context.Context, actor *Actor, id string) error {
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		machine, err := s.machines.GetByID(txCtx, id)
		if err != nil {
			return repoError(err, "Machine")
		}
		if machine == nil {
			return apperror.NewNotFound("Machine")
		}
		if err := s.machines.Delete(txCtx, id); err != nil {
			return repoError(err, "Machine")
		}
		return repoError(s.clients.RefreshMachineCount(txCtx, machine.ClientID), "Client")
	})
	if err != nil {
		return err
	}

	s.log.Info("machine deleted", "machine_id", id, "by", actorName(actor))
	s.notifier.Notify(EntityMachine, ActionDeleted, id)
	return nil
}

func (s *machineService) ListMachines(ctx context.Context, q ListMachinesQuery) (repository.Page[model.Machine], error) {
	filter := repository.MachineFilter{Search: q.Search, ClientID: q.ClientID, NumeroOL: q.NumeroOL}
	page, err := s.machines.List(ctx, filter, q.Page)
	if err != nil {
		return page, repoError(err, "Machine")
	}
	return page, nil
}
