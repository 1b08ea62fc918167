package doses

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

func (r *Repository) ItemExists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.base.DB(ctx).Model(&models.PrescriptionItem{}).Where("id_medicamento_prescricao = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *Repository) Create(ctx context.Context, dose *models.MedicationDose) error {
	return r.base.DB(ctx).Omit("PrescriptionItem", "Administrator").Create(dose).Error
}

func (r *Repository) FindByID(ctx context.Context, id int64) (*models.MedicationDose, error) {
	var dose models.MedicationDose
	err := r.base.DB(ctx).
		Preload("PrescriptionItem").
		Preload("PrescriptionItem.Medication").
		Preload("Administrator").
		First(&dose, "id_medicacao = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &dose, nil
}

func (r *Repository) List(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.MedicationDose, int64, error) {
	return repo.Page[models.MedicationDose](ctx, r.base, repo.PageQuery{
		Scope:    filter.scope,
		Order:    "data_hora desc, id_medicacao desc",
		Preloads: []string{"PrescriptionItem", "PrescriptionItem.Medication", "Administrator"},
		Params:   params,
	})
}

func (r *Repository) Update(ctx context.Context, id int64, columns map[string]any) error {
	if len(columns) == 0 {
		return nil
	}
	return r.base.DB(ctx).Model(&models.MedicationDose{}).Where("id_medicacao = ?", id).Updates(columns).Error
}

func (r *Repository) Delete(ctx context.Context, id int64) (bool, error) {
	res := r.base.DB(ctx).Where("id_medicacao = ?", id).Delete(&models.MedicationDose{})
	return res.RowsAffected > 0, res.Error
}
