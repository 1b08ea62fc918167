package residents

import (
	"context"

	"github.com/donazulmira/moradores-backend/internal/repo"
	"github.com/donazulmira/moradores-backend/pkg/db/models"
	"github.com/donazulmira/moradores-backend/pkg/pagination"
	"gorm.io/gorm"
)

type Repository struct {
	base repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{base: repo.NewBase(db)}
}

func (r *Repository) Create(ctx context.Context, resident *models.Resident) error {
	return r.base.DB(ctx).Omit("Registrar").Create(resident).Error
}

func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Resident, error) {
	var resident models.Resident
	if err := r.base.DB(ctx).Preload("Registrar").First(&resident, "id_morador = ?", id).Error; err != nil {
		return nil, err
	}
	return &resident, nil
}

func (r *Repository) FindByCPF(ctx context.Context, cpf string) (*models.Resident, error) {
	var resident models.Resident
	if err := r.base.DB(ctx).Where("cpf = ?", cpf).First(&resident).Error; err != nil {
		return nil, err
	}
	return &resident, nil
}

func (r *Repository) List(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.Resident, int64, error) {
	return repo.Page[models.Resident](ctx, r.base, repo.PageQuery{
		Scope:    filter.scope,
		Order:    "id_morador asc",
		Preloads: []string{"Registrar"},
		Params:   params,
	})
}

func (r *Repository) Update(ctx context.Context, id int64, columns map[string]any) error {
	if len(columns) == 0 {
		return nil
	}
	return r.base.DB(ctx).Model(&models.Resident{}).Where("id_morador = ?", id).Updates(columns).Error
}

func (r *Repository) Delete(ctx context.Context, id int64) (bool, error) {
	res := r.base.DB(ctx).Where("id_morador = ?", id).Delete(&models.Resident{})
	return res.RowsAffected > 0, res.Error
}
