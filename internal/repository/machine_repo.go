package repository

import (
	"context"

	"gorm.io/gorm"

	"huronportal/internal/model"
)

type MachineFilter struct {
	Search   string
	ClientID string
	NumeroOL string
}

// MachineRepository defines data access for Machine entities.
type MachineRepository interface {
	Create(ctx context.Context, machine *model.Machine) error
	GetByID(ctx context.Context, id string) (*model.Machine, error)
	GetByNumeroOL(ctx context.Context, numeroOL string) (*model.Machine, error)
	Update(ctx context.Context, machine *model.Machine) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter MachineFilter, page PageRequest) (Page[model.Machine], error)
	CountByClient(ctx context.Context, clientID string) (int64, error)
	CountByMachineType(ctx context.Context, machineTypeID string) (int64, error)
	// RenameClient rewrites the denormalized client name on every machine of clientID.
	RenameClient(ctx context.Context, clientID, companyName string) error
}

type machineRepository struct {
	db *gorm.DB
}

func NewMachineRepository(db *gorm.DB) MachineRepository {
	return &machineRepository{db: db}
}

func (r *machineRepository) Create(ctx context.Context, machine *model.Machine) error {
	return translate(GetDB(ctx, r.db).Create(machine).Error)
}

func (r *machineRepository) GetByID(ctx context.Context, id string) (*model.Machine, error) {
	var machine model.Machine
	found, err := first(GetDB(ctx, r.db).Where("id = ?", id), &machine)
	if err != nil || !found {
		return nil, err
	}
	return &machine, nil
}

func (r *machineRepository) GetByNumeroOL(ctx context.Context, numeroOL string) (*model.Machine, error) {
	var machine model.Machine
	found, err := first(GetDB(ctx, r.db).Where("numero_ol = ?", numeroOL), &machine)
	if err != nil || !found {
		return nil, err
	}
	return &machine, nil
}

// Update never writes client_name from the entity. The column is copied from
// the owning client's current name instead, so a concurrent rename survives.
func (r *machineRepository) Update(ctx context.Context, machine *model.Machine) error {
	db := GetDB(ctx, r.db)
	if err := updateVersioned(db, machine, "client_name"); err != nil {
		return err
	}
	err := db.Model(&model.Machine{}).
		Where("id = ?", machine.ID).
		UpdateColumn("client_name", gorm.Expr("(SELECT company_name FROM clients WHERE clients.id = machines.client_id)")).
		Error
	if err != nil {
		return translate(err)
	}
	return reload(db, machine)
}

func (r *machineRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(GetDB(ctx, r.db), &model.Machine{}, id)
}

func (r *machineRepository) List(ctx context.Context, filter MachineFilter, page PageRequest) (Page[model.Machine], error) {
	q := GetDB(ctx, r.db).Model(&model.Machine{})
	if filter.ClientID != "" {
		q = q.Where("client_id = ?", filter.ClientID)
	}
	q = containsAny(q, filter.NumeroOL, "numero_ol")
	q = containsAny(q, filter.Search, "numero_ol", "type", "client_name")
	return fetchPage(q, "numero_ol", page,
		func(m *model.Machine) string { return m.NumeroOL },
		func(m *model.Machine) string { return m.ID })
}

func (r *machineRepository) CountByClient(ctx context.Context, clientID string) (int64, error) {
	var n int64
	err := GetDB(ctx, r.db).Model(&model.Machine{}).Where("client_id = ?", clientID).Count(&n).Error
	return n, err
}

func (r *machineRepository) CountByMachineType(ctx context.Context, machineTypeID string) (int64, error) {
	var n int64
	err := GetDB(ctx, r.db).Model(&model.Machine{}).Where("machine_type_id = ?", machineTypeID).Count(&n).Error
	return n, err
}

func (r *machineRepository) RenameClient(ctx context.Context, clientID, companyName string) error {
	return GetDB(ctx, r.db).
		Model(&model.Machine{}).
		Where("client_id = ?", clientID).
		UpdateColumn("client_name", companyName).
		Error
}
