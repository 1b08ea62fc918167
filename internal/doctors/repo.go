package doctors

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

func (r *Repository) Create(ctx context.Context, doctor *models.Doctor) error {
	return r.base.DB(ctx).Create(doctor).Error
}

func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Doctor, error) {
	var doctor models.Doctor
	if err := r.base.DB(ctx).First(&doctor, "id_medico = ?", id).Error; err != nil {
		return nil, err
	}
	return &doctor, nil
}

func (r *Repository) FindByCRM(ctx context.Context, crm string) (*models.Doctor, error) {
	var doctor models.Doctor
	if err := r.base.DB(ctx).Where("UPPER(crm) = ?", strings.ToUpper(crm)).First(&doctor).Error; err != nil {
		return nil, err
	}
	return &doctor, nil
}

func (r *Repository) List(ctx context.Context, name string, params pagination.Params) ([]models.Doctor, int64, error) {
	return repo.Page[models.Doctor](ctx, r.base, repo.PageQuery{
		Scope: func(db *gorm.DB) *gorm.DB {
			if v := strings.TrimSpace(name); v != "" {
				db = db.Where("LOWER(nome_completo) LIKE ?", "%"+strings.ToLower(v)+"%")
			}
			return db
		},
		Order:  "nome_completo asc, id_medico asc",
		Params: params,
	})
}

func (r *Repository) Update(ctx context.Context, id int64, columns map[string]any) error {
	if len(columns) == 0 {
		return nil
	}
	return r.base.DB(ctx).Model(&models.Doctor{}).Where("id_medico = ?", id).Updates(columns).Error
}

func (r *Repository) Delete(ctx context.Context, id int64) (bool, error) {
	res := r.base.DB(ctx).Where("id_medico = ?", id).Delete(&models.Doctor{})
	return res.RowsAffected > 0, res.Error
}
