package evolutions

import (
	"context"
	"errors"

	"github.com/donazulmira/moradores-backend/internal/repo"
	"github.com/donazulmira/moradores-backend/pkg/db/models"
	"github.com/donazulmira/moradores-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository exposes evolution entry persistence.
type Repository struct {
	base repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{base: repo.NewBase(db)}
}

func (r *Repository) ResidentExists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.base.DB(ctx).Model(&models.Resident{}).Where("id_morador = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *Repository) Create(ctx context.Context, entry *models.EvolutionEntry) error {
	return r.base.DB(ctx).Omit("Resident", "Author").Create(entry).Error
}

func (r *Repository) FindByID(ctx context.Context, id int64) (*models.EvolutionEntry, error) {
	var entry models.EvolutionEntry
	err := r.base.DB(ctx).
		Preload("Resident").
		Preload("Author").
		First(&entry, "id_evolucao_individual = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *Repository) List(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.EvolutionEntry, int64, error) {
	return repo.Page[models.EvolutionEntry](ctx, r.base, repo.PageQuery{
		Scope:    filter.scope,
		Order:    "data_hora desc, id_evolucao_individual desc",
		Preloads: []string{"Resident", "Author"},
		Params:   params,
	})
}

// Update writes the given columns. The author column is never touched.
func (r *Repository) Update(ctx context.Context, id int64, columns map[string]any) error {
	delete(columns, "id_usuario")
	if len(columns) == 0 {
		return nil
	}
	return r.base.DB(ctx).
		Model(&models.EvolutionEntry{}).
		Where("id_evolucao_individual = ?", id).
		Updates(columns).Error
}

// ErrSoleReportEntry is returned when the entry is the only one a report
// still points at.
var ErrSoleReportEntry = errors.New("entry is the only link of a report")

// Delete removes the entry and its report links. Reports whose legacy column
// points at the entry are moved to their lowest remaining link.
func (r *Repository) Delete(ctx context.Context, id int64) (bool, error) {
	var deleted bool
	err := r.base.DB(ctx).Transaction(func(tx *gorm.DB) error {
		var reports []models.DailyReport
		if err := tx.Where("id_evolucao_individual = ?", id).Find(&reports).Error; err != nil {
			return err
		}
		for _, report := range reports {
			var next models.ReportEntry
			err := tx.Where("id_relatorio_diario_geral = ? AND id_evolucao_individual <> ?", report.ID, id).
				Order("id_evolucao_individual").
				First(&next).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSoleReportEntry
			}
			if err != nil {
				return err
			}
			if err := tx.Model(&models.DailyReport{}).
				Where("id_relatorio_diario_geral = ?", report.ID).
				Update("id_evolucao_individual", next.EvolutionEntryID).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("id_evolucao_individual = ?", id).Delete(&models.ReportEntry{}).Error; err != nil {
			return err
		}
		res := tx.Where("id_evolucao_individual = ?", id).Delete(&models.EvolutionEntry{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	return deleted, err
}
