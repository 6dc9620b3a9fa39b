package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"huronportal/internal/apperror"
	"huronportal/internal/logger"
	"huronportal/internal/model"
	"huronportal/internal/repository"
	"huronportal/internal/validation"
)

const maxMachineTypeNameLen = 200

type CreateMachineTypeRequest struct {
	MachineTypeID   int             `json:"machineTypeId" validate:"gte=0"`
	MachineTypeName string          `json:"machineTypeName" validate:"required,max=200"`
	Manufacturer    string          `json:"manufacturer" validate:"required,max=200"`
	Description     string          `json:"description" validate:"max=500"`
	X               int             `json:"x" validate:"gte=0,lte=10000"`
	Y               int             `json:"y" validate:"gte=0,lte=10000"`
	Z               int             `json:"z" validate:"gte=0,lte=10000"`
	A               decimal.Decimal `json:"a" validate:"rotation"`
	B               decimal.Decimal `json:"b" validate:"rotation"`
	C               decimal.Decimal `json:"c" validate:"rotation"`
}

type UpdateMachineTypeRequest struct {
	MachineTypeID   *int             `json:"machineTypeId" validate:"omitnil,gte=0"`
	MachineTypeName *string          `json:"machineTypeName" validate:"omitnil,min=1,max=200"`
	Manufacturer    *string          `json:"manufacturer" validate:"omitnil,min=1,max=200"`
	Description     *string          `json:"description" validate:"omitnil,max=500"`
	X               *int             `json:"x" validate:"omitnil,gte=0,lte=10000"`
	Y               *int             `json:"y" validate:"omitnil,gte=0,lte=10000"`
	Z               *int             `json:"z" validate:"omitnil,gte=0,lte=10000"`
	A               *decimal.Decimal `json:"a" validate:"omitnil,rotation"`
	B               *decimal.Decimal `json:"b" validate:"omitnil,rotation"`
	C               *decimal.Decimal `json:"c" validate:"omitnil,rotation"`
	Version         *uint64          `json:"version,omitempty"`
}

// Apply merges the patch onto mt.
func (r UpdateMachineTypeRequest) Apply(mt *model.MachineType) {
	if r.MachineTypeID != nil {
		mt.MachineTypeID = *r.MachineTypeID
	}
	if r.MachineTypeName != nil {
		mt.Name = *r.MachineTypeName
	}
	if r.Manufacturer != nil {
		mt.Manufacturer = *r.Manufacturer
	}
	if r.Description != nil {
		mt.Description = *r.Description
	}
	if r.X != nil {
		mt.X = *r.X
	}
	if r.Y != nil {
		mt.Y = *r.Y
	}
	if r.Z != nil {
		mt.Z = *r.Z
	}
	if r.A != nil {
		mt.A = *r.A
	}
	if r.B != nil {
		mt.B = *r.B
	}
	if r.C != nil {
		mt.C = *r.C
	}
}

type ListMachineTypesQuery struct {
	Search string
	Page   repository.PageRequest
}

type MachineTypeService interface {
	CreateMachineType(ctx context.Context, actor *Actor, req CreateMachineTypeRequest) (*model.MachineType, error)
	GetMachineType(ctx context.Context, id string) (*model.MachineType, error)
	UpdateMachineType(ctx context.Context, actor *Actor, id string, req UpdateMachineTypeRequest) (*model.MachineType, error)
	DeleteMachineType(ctx context.Context, actor *Actor, id string) error
	DuplicateMachineType(ctx context.Context, actor *Actor, id string) (*model.MachineType, error)
	ListMachineTypes(ctx context.Context, q ListMachineTypesQuery) (repository.Page[model.MachineType], error)
	ExportMachineTypes(ctx context.Context, format ExportFormat) (*ExportFile, error)
}

type machineTypeService struct {
	machineTypes repository.MachineTypeRepository
	machines     repository.MachineRepository
	txManager    repository.TransactionManager
	notifier     ChangeNotifier
	log          *slog.Logger
	now          func() time.Time
}

func NewMachineTypeService(
	machineTypes repository.MachineTypeRepository,
	machines repository.MachineRepository,
	txManager repository.TransactionManager,
	notifier ChangeNotifier,
) MachineTypeService {
	return &machineTypeService{
		machineTypes: machineTypes,
		machines:     machines,
		txManager:    txManager,
		notifier:     notifierOrNop(notifier),
		log:          logger.WithComponent("machine-type-service"),
		now:          time.Now,
	}
}

func duplicateMachineTypeName() error {
	return apperror.NewDuplicate("A machine type with this name already exists", "machineTypeName")
}

func (s *machineTypeService) CreateMachineType(ctx context.Context, actor *Actor, req CreateMachineTypeRequest) (*model.MachineType, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	exists, err := s.machineTypes.NameExists(ctx, req.MachineTypeName, "")
	if err != nil {
		return nil, repoError(err, "Machine type")
	}
	if exists {
		return nil, duplicateMachineTypeName()
	}

	mt := &model.MachineType{
		MachineTypeID: req.MachineTypeID,
		Name:          req.MachineTypeName,
		Manufacturer:  req.Manufacturer,
		Description:   req.Description,
		X:             req.X,
		Y:             req.Y,
		Z:             req.Z,
		A:             req.A,
		B:             req.B,
		C:             req.C,
		CreatedBy:     actorID(actor),
		UpdatedBy:     actorID(actor),
	}
	if err := s.create(ctx, mt); err != nil {
		return nil, err
	}

	s.log.Info("machine type created", "machine_type_id", mt.ID, "name", mt.Name, "by", actorName(actor))
	s.notifier.Notify(EntityMachineType, ActionCreated, mt.ID)
	return mt, nil
}

// create inserts mt; the unique name index is authoritative when two writers
// pass the pre-check concurrently.
func (s *machineTypeService) create(ctx context.Context, mt *model.MachineType) error {
	if err := s.machineTypes.Create(ctx, mt); err != nil {
		if errors.Is(err, apperror.ErrDuplicate) {
			return duplicateMachineTypeName()
		}
		return repoError(err, "Machine type")
	}
	return nil
}

func (s *machineTypeService) GetMachineType(ctx context.Context, id string) (*model.MachineType, error) {
	mt, err := s.machineTypes.GetByID(ctx, id)
	if err != nil {
		return nil, repoError(err, "Machine type")
	}
	if mt == nil {
		return nil, apperror.NewNotFound("Machine type")
	}
	return mt, nil
}

func (s *machineTypeService) UpdateMachineType(ctx context.Context, actor *Actor, id string, req UpdateMachineTypeRequest) (*model.MachineType, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	mt, err := s.GetMachineType(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkVersion(req.Version, mt.Version, "Machine type"); err != nil {
		return nil, err
	}

	if req.MachineTypeName != nil && *req.MachineTypeName != mt.Name {
		exists, err := s.machineTypes.NameExists(ctx, *req.MachineTypeName, mt.ID)
		if err != nil {
			return nil, repoError(err, "Machine type")
		}
		if exists {
			return nil, duplicateMachineTypeName()
		}
	}

	req.Apply(mt)
	mt.UpdatedBy = actorID(actor)
	if err := s.machineTypes.Update(ctx, mt); err != nil {
		if errors.Is(err, apperror.ErrDuplicate) {
			return nil, duplicateMachineTypeName()
		}
		return nil, repoError(err, "Machine type")
	}

	s.log.Info("machine type updated", "machine_type_id", mt.ID, "version", mt.Version, "by", actorName(actor))
	s.notifier.Notify(EntityMachineType, ActionUpdated, mt.ID)
	return mt, nil
}

// DeleteMachineType refuses to remove a type referenced by any machine.
func (s *machineTypeService) DeleteMachineType(ctx context.Context, actor *Actor, id string) error {
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		mt, err := s.machineTypes.GetByID(txCtx, id)
		if err != nil {
			return repoError(err, "Machine type")
		}
		if mt == nil {
			return apperror.NewNotFound("Machine type")
		}

		n, err := s.machines.CountByMachineType(txCtx, id)
		if err != nil {
			return repoError(err, "Machine")
		}
		if n > 0 {
			return apperror.NewConflict(apperror.CodeInUse,
				fmt.Sprintf("Machine type is used by %d machine(s) and cannot be deleted", n))
		}
		return repoError(s.machineTypes.Delete(txCtx, id), "Machine type")
	})
	if err != nil {
		return err
	}

	s.log.Info("machine type deleted", "machine_type_id", id, "by", actorName(actor))
	s.notifier.Notify(EntityMachineType, ActionDeleted, id)
	return nil
}

// DuplicateMachineType copies a machine type under the first free name of
// "<name> (Copy)", "<name> (Copy 2)", "<name> (Copy 3)", ...
func (s *machineTypeService) DuplicateMachineType(ctx context.Context, actor *Actor, id string) (*model.MachineType, error) {
	source, err := s.GetMachineType(ctx, id)
	if err != nil {
		return nil, err
	}

	const maxAttempts = 3
	for attempt := 0; ; attempt++ {
		name, err := s.nextCopyName(ctx, source.Name)
		if err != nil {
			return nil, err
		}

		dup := &model.MachineType{
			MachineTypeID: source.MachineTypeID,
			Name:          name,
			Manufacturer:  source.Manufacturer,
			Description:   source.Description,
			X:             source.X,
			Y:             source.Y,
			Z:             source.Z,
			A:             source.A,
			B:             source.B,
			C:             source.C,
			CreatedBy:     actorID(actor),
			UpdatedBy:     actorID(actor),
		}
		err = s.create(ctx, dup)
		if err == nil {
			s.log.Info("machine type duplicated", "source_id", source.ID, "machine_type_id", dup.ID, "name", dup.Name)
			s.notifier.Notify(EntityMachineType, ActionDuplicated, dup.ID)
			return dup, nil
		}
		// Another writer took the probed name between the check and the insert.
		if !apperror.Is(err, apperror.TypeDuplicate) || attempt+1 >= maxAttempts {
			return nil, err
		}
	}
}

func (s *machineTypeService) nextCopyName(ctx context.Context, base string) (string, error) {
	name := base + " (Copy)"
	for n := 2; ; n++ {
		if utf8.RuneCountInString(name) > maxMachineTypeNameLen {
			return "", apperror.NewValidation("Invalid data", apperror.FieldError{
				Field:   "machineTypeName",
				Message: "machineTypeName of the copy would exceed 200 characters",
			})
		}
		exists, err := s.machineTypes.NameExists(ctx, name, "")
		if err != nil {
			return "", repoError(err, "Machine type")
		}
		if !exists {
			return name, nil
		}
		name = fmt.Sprintf("%s (Copy %d)", base, n)
	}
}

func (s *machineTypeService) ListMachineTypes(ctx context.Context, q ListMachineTypesQuery) (repository.Page[model.MachineType], error) {
	page, err := s.machineTypes.List(ctx, repository.MachineTypeFilter{Search: q.Search}, q.Page)
	if err != nil {
		return page, repoError(err, "Machine type")
	}
	return page, nil
}
