package repository

import (
	"context"

	"gorm.io/gorm"

	"huronportal/internal/model"
)

type ClientFilter struct {
	Search string
}

// ClientRepository defines data access for Client entities.
type ClientRepository interface {
	Create(ctx context.Context, client *model.Client) error
	GetByID(ctx context.Context, id string) (*model.Client, error)
	Update(ctx context.Context, client *model.Client) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ClientFilter, page PageRequest) (Page[model.Client], error)
	// RefreshMachineCount recomputes machine_count from the machines table
	// without touching the client's version.
	RefreshMachineCount(ctx context.Context, clientID string) error
}

type clientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) Create(ctx context.Context, client *model.Client) error {
	return translate(GetDB(ctx, r.db).Create(client).Error)
}

func (r *clientRepository) GetByID(ctx context.Context, id string) (*model.Client, error) {
	var client model.Client
	found, err := first(GetDB(ctx, r.db).Where("id = ?", id), &client)
	if err != nil || !found {
		return nil, err
	}
	return &client, nil
}

// Update leaves machine_count to RefreshMachineCount.
func (r *clientRepository) Update(ctx context.Context, client *model.Client) error {
	return updateVersioned(GetDB(ctx, r.db), client, "machine_count")
}

func (r *clientRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(GetDB(ctx, r.db), &model.Client{}, id)
}

func (r *clientRepository) List(ctx context.Context, filter ClientFilter, page PageRequest) (Page[model.Client], error) {
	q := GetDB(ctx, r.db).Model(&model.Client{})
	q = containsAny(q, filter.Search, "company_name")
	return fetchPage(q, "company_name", page,
		func(c *model.Client) string { return c.CompanyName },
		func(c *model.Client) string { return c.ID })
}

func (r *clientRepository) RefreshMachineCount(ctx context.Context, clientID string) error {
	return GetDB(ctx, r.db).
		Model(&model.Client{}).
		Where("id = ?", clientID).
		UpdateColumn("machine_count", gorm.Expr("(SELECT COUNT(*) FROM machines WHERE machines.client_id = ?)", clientID)).
		Error
}
