package repository

import (
	"context"

	"gorm.io/gorm"

	"huronportal/internal/model"
)

type MachineTypeFilter struct {
	Search string
}

// MachineTypeRepository defines data access for the machine type catalogue.
// Names are unique ignoring case through the name_key column.
type MachineTypeRepository interface {
	Create(ctx context.Context, mt *model.MachineType) error
	GetByID(ctx context.Context, id string) (*model.MachineType, error)
	Update(ctx context.Context, mt *model.MachineType) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter MachineTypeFilter, page PageRequest) (Page[model.MachineType], error)
	// NameExists reports whether another machine type already uses name,
	// ignoring case. excludeID, when set, is left out of the check.
	NameExists(ctx context.Context, name, excludeID string) (bool, error)
}

type machineTypeRepository struct {
	db *gorm.DB
}

func NewMachineTypeRepository(db *gorm.DB) MachineTypeRepository {
	return &machineTypeRepository{db: db}
}

func (r *machineTypeRepository) Create(ctx context.Context, mt *model.MachineType) error {
	mt.NameKey = model.NameKey(mt.Name)
	return translate(GetDB(ctx, r.db).Create(mt).Error)
}

func (r *machineTypeRepository) GetByID(ctx context.Context, id string) (*model.MachineType, error) {
	var mt model.MachineType
	found, err := first(GetDB(ctx, r.db).Where("id = ?", id), &mt)
	if err != nil || !found {
		return nil, err
	}
	return &mt, nil
}

func (r *machineTypeRepository) Update(ctx context.Context, mt *model.MachineType) error {
	mt.NameKey = model.NameKey(mt.Name)
	return updateVersioned(GetDB(ctx, r.db), mt)
}

func (r *machineTypeRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(GetDB(ctx, r.db), &model.MachineType{}, id)
}

func (r *machineTypeRepository) List(ctx context.Context, filter MachineTypeFilter, page PageRequest) (Page[model.MachineType], error) {
	q := GetDB(ctx, r.db).Model(&model.MachineType{})
	q = containsAny(q, filter.Search, "machine_type_name", "manufacturer")
	return fetchPage(q, "name_key", page,
		func(mt *model.MachineType) string { return mt.NameKey },
		func(mt *model.MachineType) string { return mt.ID })
}

func (r *machineTypeRepository) NameExists(ctx context.Context, name, excludeID string) (bool, error) {
	q := GetDB(ctx, r.db).Model(&model.MachineType{}).Where("name_key = ?", model.NameKey(name))
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}
