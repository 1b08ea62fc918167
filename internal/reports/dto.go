package reports

import (
	"time"

	"github.com/donazulmira/moradores-backend/pkg/db/models"
	"github.com/donazulmira/moradores-backend/pkg/types"
	"gorm.io/gorm"
)

// CreateReportRequest is the body of POST /relatorio-geral. Either
// ids_evolucoes or the legacy id_evolucao_individual must name an entry.
type CreateReportRequest struct {
	EvolutionIDs      []int64          `json:"ids_evolucoes" validate:"omitempty,dive,gt=0"`
	LegacyEvolutionID int64            `json:"id_evolucao_individual" validate:"omitempty,gt=0"`
	Notes             string           `json:"observacoes"`
	OccurredAt        *types.Timestamp `json:"data_hora"`
}

// UpdateReportRequest is the body of PATCH /relatorio-geral/{id}. A nil
// EvolutionIDs keeps the current links; an empty list is rejected.
type UpdateReportRequest struct {
	EvolutionIDs      []int64          `json:"ids_evolucoes" validate:"omitempty,dive,gt=0"`
	LegacyEvolutionID *int64           `json:"id_evolucao_individual" validate:"omitempty,gt=0"`
	Notes             *string          `json:"observacoes"`
	OccurredAt        *types.Timestamp `json:"data_hora"`
}

// ListFilter narrows GET /relatorio-geral.
type ListFilter struct {
	UserID *int64
	From   *types.Timestamp
	To     *types.Timestamp
}

func (f ListFilter) scope(db *gorm.DB) *gorm.DB {
	if f.UserID != nil {
		db = db.Where("id_usuario = ?", *f.UserID)
	}
	if f.From != nil {
		db = db.Where("data_hora >= ?", f.From.Time.UTC())
	}
	if f.To != nil {
		db = db.Where("data_hora <= ?", f.To.EndOfDay().UTC())
	}
	return db
}

type AuthorDTO struct {
	ID       int64   `json:"id_usuario"`
	FullName string  `json:"nome_completo"`
	Email    *string `json:"email,omitempty"`
}

type EntryDTO struct {
	ID         int64      `json:"id_evolucao_individual"`
	Notes      string     `json:"observacoes"`
	OccurredAt time.Time  `json:"data_hora"`
	Author     *AuthorDTO `json:"usuario"`
}

// ReportDTO is a report with its author and every linked entry.
type ReportDTO struct {
	ID               int64      `json:"id_relatorio_diario_geral"`
	UserID           int64      `json:"id_usuario"`
	EvolutionEntryID int64      `json:"id_evolucao_individual"`
	Notes            string     `json:"observacoes"`
	OccurredAt       time.Time  `json:"data_hora"`
	Author           *AuthorDTO `json:"usuario"`
	Entries          []EntryDTO `json:"evolucoes"`
}

// MutationResult carries the confirmation message of create and update.
type MutationResult struct {
	Message string     `json:"message"`
	Report  *ReportDTO `json:"relatorio"`
}

type MessageResult struct {
	Message string `json:"message"`
}

func authorFromModel(u *models.User, withEmail bool) *AuthorDTO {
	if u == nil {
		return nil
	}
	a := &AuthorDTO{ID: u.ID, FullName: u.FullName}
	if withEmail {
		a.Email = u.Email
	}
	return a
}

// FromModel builds the DTO from a report and its loaded entries.
func FromModel(r *models.DailyReport, entries []models.EvolutionEntry) *ReportDTO {
	if r == nil {
		return nil
	}
	out := &ReportDTO{
		ID:               r.ID,
		UserID:           r.UserID,
		EvolutionEntryID: r.EvolutionEntryID,
		Notes:            r.Notes,
		OccurredAt:       r.OccurredAt,
		Author:           authorFromModel(r.Author, true),
		Entries:          make([]EntryDTO, 0, len(entries)),
	}
	for _, e := range entries {
		out.Entries = append(out.Entries, EntryDTO{
			ID:         e.ID,
			Notes:      e.Notes,
			OccurredAt: e.OccurredAt,
			Author:     authorFromModel(e.Author, false),
		})
	}
	return out
}
