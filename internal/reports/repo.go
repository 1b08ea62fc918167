package reports

import (
	"context"
	"errors"
	"time"

	"github.com/donazulmira/moradores-backend/internal/repo"
	"github.com/donazulmira/moradores-backend/pkg/db/models"
	"github.com/donazulmira/moradores-backend/pkg/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists daily reports together with their evolution links.
// The legacy id_evolucao_individual column and the relatorio_evolucao rows
// are always written in the same transaction.
type Repository struct {
	base repo.Base
}

// NewRepository constructs a reports repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{base: repo.NewBase(db)}
}

// Changes holds the scalar columns of an update; nil fields are kept.
type Changes struct {
	Notes      *string
	OccurredAt *time.Time
}

// UserExists reports whether the author exists.
func (r *Repository) UserExists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.base.DB(ctx).Model(&models.User{}).Where("id_usuario = ?", id).Count(&count).Error
	return count > 0, err
}

// ErrEntriesNotFound is returned when a link target does not exist.
var ErrEntriesNotFound = errors.New("evolution entries not found")

// ensureEntries fails with ErrEntriesNotFound unless every id exists.
func ensureEntries(tx *gorm.DB, ids []int64) error {
	var count int64
	err := tx.Model(&models.EvolutionEntry{}).
		Where("id_evolucao_individual IN ?", ids).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count != int64(len(ids)) {
		return ErrEntriesNotFound
	}
	return nil
}

// CreateWithLinks checks the entry ids, then inserts the report and one join
// row per id. The legacy column receives entryIDs[0].
func (r *Repository) CreateWithLinks(ctx context.Context, report *models.DailyReport, entryIDs []int64) error {
	if len(entryIDs) == 0 {
		return errors.New("at least one evolution entry is required")
	}
	return r.base.DB(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureEntries(tx, entryIDs); err != nil {
			return err
		}
		report.EvolutionEntryID = entryIDs[0]
		if err := tx.Omit(clause.Associations).Create(report).Error; err != nil {
			return err
		}
		return insertLinks(tx, report.ID, entryIDs)
	})
}

// UpdateWithLinks applies the scalar changes and, when entryIDs is non-nil,
// replaces every link and resets the legacy column to entryIDs[0].
func (r *Repository) UpdateWithLinks(ctx context.Context, id int64, changes Changes, entryIDs []int64) error {
	if entryIDs != nil && len(entryIDs) == 0 {
		return errors.New("at least one evolution entry is required")
	}
	return r.base.DB(ctx).Transaction(func(tx *gorm.DB) error {
		if entryIDs != nil {
			if err := ensureEntries(tx, entryIDs); err != nil {
				return err
			}
		}
		columns := map[string]any{}
		if changes.Notes != nil {
			columns["observacoes"] = *changes.Notes
		}
		if changes.OccurredAt != nil {
			columns["data_hora"] = *changes.OccurredAt
		}
		if entryIDs != nil {
			columns["id_evolucao_individual"] = entryIDs[0]
		}
		if len(columns) > 0 {
			res := tx.Model(&models.DailyReport{}).Where("id_relatorio_diario_geral = ?", id).Updates(columns)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
		}
		if entryIDs == nil {
			return nil
		}
		if err := tx.Where("id_relatorio_diario_geral = ?", id).Delete(&models.ReportEntry{}).Error; err != nil {
			return err
		}
		return insertLinks(tx, id, entryIDs)
	})
}

// DeleteWithLinks removes the join rows and then the report. It reports
// false when the report did not exist.
func (r *Repository) DeleteWithLinks(ctx context.Context, id int64) (bool, error) {
	var deleted bool
	err := r.base.DB(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id_relatorio_diario_geral = ?", id).Delete(&models.ReportEntry{}).Error; err != nil {
			return err
		}
		res := tx.Where("id_relatorio_diario_geral = ?", id).Delete(&models.DailyReport{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	return deleted, err
}

// FindByID loads a report with its author.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.DailyReport, error) {
	var report models.DailyReport
	err := r.base.DB(ctx).
		Preload("Author").
		First(&report, "id_relatorio_diario_geral = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// List returns one page of reports, newest first.
func (r *Repository) List(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.DailyReport, int64, error) {
	return repo.Page[models.DailyReport](ctx, r.base, repo.PageQuery{
		Scope:    filter.scope,
		Order:    "data_hora desc, id_relatorio_diario_geral desc",
		Preloads: []string{"Author"},
		Params:   params,
	})
}

// LinkedEntries loads the evolution entries of each report, with their
// authors, ordered by entry id.
func (r *Repository) LinkedEntries(ctx context.Context, reportIDs []int64) (map[int64][]models.EvolutionEntry, error) {
	out := make(map[int64][]models.EvolutionEntry, len(reportIDs))
	if len(reportIDs) == 0 {
		return out, nil
	}

	var links []models.ReportEntry
	err := r.base.DB(ctx).
		Where("id_relatorio_diario_geral IN ?", reportIDs).
		Order("id_evolucao_individual asc").
		Find(&links).Error
	if err != nil {
		return nil, err
	}
	if len(links) == 0 {
		return out, nil
	}

	entryIDs := make([]int64, 0, len(links))
	seen := make(map[int64]struct{}, len(links))
	for _, l := range links {
		if _, ok := seen[l.EvolutionEntryID]; ok {
			continue
		}
		seen[l.EvolutionEntryID] = struct{}{}
		entryIDs = append(entryIDs, l.EvolutionEntryID)
	}

	var entries []models.EvolutionEntry
	err = r.base.DB(ctx).
		Preload("Author").
		Where("id_evolucao_individual IN ?", entryIDs).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]models.EvolutionEntry, len(entries))
	for _, e := range entries {
		byID[e.ID] = e
	}
	for _, l := range links {
		if e, ok := byID[l.EvolutionEntryID]; ok {
			out[l.ReportID] = append(out[l.ReportID], e)
		}
	}
	return out, nil
}

func insertLinks(tx *gorm.DB, reportID int64, entryIDs []int64) error {
	rows := make([]models.ReportEntry, 0, len(entryIDs))
	for _, entryID := range entryIDs {
		rows = append(rows, models.ReportEntry{ReportID: reportID, EvolutionEntryID: entryID})
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}
