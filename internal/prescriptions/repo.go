package prescriptions

import (
	"context"

	"github.com/donazulmira/moradores-backend/internal/repo"
	"github.com/donazulmira/moradores-backend/pkg/db/models"
	"github.com/donazulmira/moradores-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository persists prescriptions and their medication items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	ResidentExists(ctx context.Context, id int64) (bool, error)
	DoctorExists(ctx context.Context, id int64) (bool, error)
	CountMedications(ctx context.Context, ids []int64) (int64, error)

	Create(ctx context.Context, p *models.Prescription) error
	FindByID(ctx context.Context, id int64) (*models.Prescription, error)
	List(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.Prescription, int64, error)
	ListAll(ctx context.Context, filter ListFilter) ([]models.Prescription, error)
	Update(ctx context.Context, id int64, columns map[string]any) error
	Delete(ctx context.Context, id int64) (bool, error)

	CreateItems(ctx context.Context, items []models.PrescriptionItem) error
	FindItem(ctx context.Context, id int64) (*models.PrescriptionItem, error)
	ListItems(ctx context.Context, prescriptionID *int64, params pagination.Params) ([]models.PrescriptionItem, int64, error)
	UpdateItem(ctx context.Context, id int64, columns map[string]any) error
	DeleteItem(ctx context.Context, id int64) (bool, error)
}

type repository struct {
	base repo.Base
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{base: repo.NewBase(tx)}
}

func (r *repository) exists(ctx context.Context, model any, column string, id int64) (bool, error) {
	var count int64
	err := r.base.DB(ctx).Model(model).Where(column+" = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *repository) ResidentExists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, &models.Resident{}, "id_morador", id)
}

func (r *repository) DoctorExists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, &models.Doctor{}, "id_medico", id)
}

func (r *repository) CountMedications(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int64
	err := r.base.DB(ctx).Model(&models.Medication{}).Where("id_medicamento IN ?", ids).Count(&count).Error
	return count, err
}

func (r *repository) Create(ctx context.Context, p *models.Prescription) error {
	return r.base.DB(ctx).Omit("Resident", "Doctor", "Items").Create(p).Error
}

// detailed preloads everything the prescription views render, newest dose
// first on every item.
func detailed(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Resident").
		Preload("Doctor").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id_medicamento_prescricao asc") }).
		Preload("Items.Medication").
		Preload("Items.LinkedBy").
		Preload("Items.Doses", func(db *gorm.DB) *gorm.DB { return db.Order("data_hora desc") }).
		Preload("Items.Doses.Administrator")
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.Prescription, error) {
	var p models.Prescription
	if err := detailed(r.base.DB(ctx)).First(&p, "id_prescricao = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.Prescription, int64, error) {
	return repo.Page[models.Prescription](ctx, r.base, repo.PageQuery{
		Scope:  filter.scope,
		Load:   detailed,
		Order:  "id_prescricao desc",
		Params: params,
	})
}

func (r *repository) ListAll(ctx context.Context, filter ListFilter) ([]models.Prescription, error) {
	var rows []models.Prescription
	err := detailed(filter.scope(r.base.DB(ctx))).Order("id_prescricao desc").Find(&rows).Error
	return rows, err
}

func (r *repository) Update(ctx context.Context, id int64, columns map[string]any) error {
	if len(columns) == 0 {
		return nil
	}
	return r.base.DB(ctx).Model(&models.Prescription{}).Where("id_prescricao = ?", id).Updates(columns).Error
}

// Delete removes the prescription together with its items and their doses.
func (r *repository) Delete(ctx context.Context, id int64) (bool, error) {
	var deleted bool
	err := r.base.DB(ctx).Transaction(func(tx *gorm.DB) error {
		items := tx.Model(&models.PrescriptionItem{}).Select("id_medicamento_prescricao").Where("id_prescricao = ?", id)
		if err := tx.Where("id_medicamento_prescricao IN (?)", items).Delete(&models.MedicationDose{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id_prescricao = ?", id).Delete(&models.PrescriptionItem{}).Error; err != nil {
			return err
		}
		res := tx.Where("id_prescricao = ?", id).Delete(&models.Prescription{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	return deleted, err
}

func (r *repository) CreateItems(ctx context.Context, items []models.PrescriptionItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.base.DB(ctx).Omit("Medication", "Prescription", "LinkedBy", "Doses").Create(&items).Error
}

func (r *repository) FindItem(ctx context.Context, id int64) (*models.PrescriptionItem, error) {
	var item models.PrescriptionItem
	err := r.base.DB(ctx).
		Preload("Medication").
		Preload("Prescription").
		Preload("Doses", func(db *gorm.DB) *gorm.DB { return db.Order("data_hora desc") }).
		First(&item, "id_medicamento_prescricao = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) ListItems(ctx context.Context, prescriptionID *int64, params pagination.Params) ([]models.PrescriptionItem, int64, error) {
	return repo.Page[models.PrescriptionItem](ctx, r.base, repo.PageQuery{
		Scope: func(db *gorm.DB) *gorm.DB {
			if prescriptionID != nil {
				db = db.Where("id_prescricao = ?", *prescriptionID)
			}
			return db
		},
		Order:    "id_medicamento_prescricao asc",
		Preloads: []string{"Medication", "Prescription"},
		Params:   params,
	})
}

func (r *repository) UpdateItem(ctx context.Context, id int64, columns map[string]any) error {
	if len(columns) == 0 {
		return nil
	}
	return r.base.DB(ctx).Model(&models.PrescriptionItem{}).Where("id_medicamento_prescricao = ?", id).Updates(columns).Error
}

func (r *repository) DeleteItem(ctx context.Context, id int64) (bool, error) {
	var deleted bool
	err := r.base.DB(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id_medicamento_prescricao = ?", id).Delete(&models.MedicationDose{}).Error; err != nil {
			return err
		}
		res := tx.Where("id_medicamento_prescricao = ?", id).Delete(&models.PrescriptionItem{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	return deleted, err
}
