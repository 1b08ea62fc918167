package medications

import (
	"context"
	"strings"

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

func (r *Repository) Create(ctx context.Context, m *models.Medication) error {
	return r.base.DB(ctx).Create(m).Error
}

func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Medication, error) {
	var m models.Medication
	if err := r.base.DB(ctx).First(&m, "id_medicamento = ?", id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// FindByName compares names case-insensitively.
func (r *Repository) FindByName(ctx context.Context, name string) (*models.Medication, error) {
	var m models.Medication
	err := r.base.DB(ctx).Where("LOWER(nome_medicamento) = ?", strings.ToLower(name)).First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *Repository) List(ctx context.Context, name string, params pagination.Params) ([]models.Medication, int64, error) {
	return repo.Page[models.Medication](ctx, r.base, repo.PageQuery{
		Scope: func(db *gorm.DB) *gorm.DB {
			if v := strings.TrimSpace(name); v != "" {
				db = db.Where("LOWER(nome_medicamento) LIKE ?", "%"+strings.ToLower(v)+"%")
			}
			return db
		},
		Order:  "id_medicamento asc",
		Params: params,
	})
}

func (r *Repository) Update(ctx context.Context, id int64, columns map[string]any) error {
	if len(columns) == 0 {
		return nil
	}
	return r.base.DB(ctx).Model(&models.Medication{}).Where("id_medicamento = ?", id).Updates(columns).Error
}

func (r *Repository) Delete(ctx context.Context, id int64) (bool, error) {
	res := r.base.DB(ctx).Where("id_medicamento = ?", id).Delete(&models.Medication{})
	return res.RowsAffected > 0, res.Error
}
