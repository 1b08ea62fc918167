package evolutions

import (
	"strings"
	"time"

	"github.com/donazulmira/moradores-backend/pkg/db/models"
	"github.com/donazulmira/moradores-backend/pkg/types"
	"gorm.io/gorm"
)

type CreateEntryRequest struct {
	ResidentID int64            `json:"id_morador" validate:"required,gt=0"`
	Notes      string           `json:"observacoes" validate:"required"`
	OccurredAt *types.Timestamp `json:"data_hora"`
}

// UpdateEntryRequest changes an entry; the author is not editable.
type UpdateEntryRequest struct {
	ResidentID *int64           `json:"id_morador" validate:"omitempty,gt=0"`
	Notes      *string          `json:"observacoes"`
	OccurredAt *types.Timestamp `json:"data_hora"`
}

type ListFilter struct {
	ResidentID *int64
	UserID     *int64
	From       *types.Timestamp
	To         *types.Timestamp
	Notes      string
}

func (f ListFilter) scope(db *gorm.DB) *gorm.DB {
	if f.ResidentID != nil {
		db = db.Where("id_morador = ?", *f.ResidentID)
	}
	if f.UserID != nil {
		db = db.Where("id_usuario = ?", *f.UserID)
	}
	if f.From != nil {
		db = db.Where("data_hora >= ?", f.From.Time.UTC())
	}
	if f.To != nil {
		db = db.Where("data_hora <= ?", f.To.EndOfDay().UTC())
	}
	if v := strings.TrimSpace(f.Notes); v != "" {
		db = db.Where("observacoes LIKE ?", "%"+v+"%")
	}
	return db
}

type ResidentRef struct {
	ID       int64  `json:"id_morador"`
	FullName string `json:"nome_completo"`
}

type AuthorRef struct {
	ID       int64  `json:"id_usuario"`
	Username string `json:"nome_usuario"`
}

type EntryDTO struct {
	ID         int64        `json:"id_evolucao_individual"`
	ResidentID int64        `json:"id_morador"`
	UserID     int64        `json:"id_usuario"`
	Notes      string       `json:"observacoes"`
	OccurredAt time.Time    `json:"data_hora"`
	Resident   *ResidentRef `json:"morador,omitempty"`
	Author     *AuthorRef   `json:"usuario,omitempty"`
}

type UpdateResult struct {
	Message string    `json:"message"`
	Entry   *EntryDTO `json:"evolucao"`
}

type MessageResult struct {
	Message string `json:"message"`
}

func FromModel(e *models.EvolutionEntry) *EntryDTO {
	if e == nil {
		return nil
	}
	out := &EntryDTO{
		ID:         e.ID,
		ResidentID: e.ResidentID,
		UserID:     e.UserID,
		Notes:      e.Notes,
		OccurredAt: e.OccurredAt,
	}
	if e.Resident != nil {
		out.Resident = &ResidentRef{ID: e.Resident.ID, FullName: e.Resident.FullName}
	}
	if e.Author != nil {
		out.Author = &AuthorRef{ID: e.Author.ID, Username: e.Author.Username}
	}
	return out
}

func fromModelValue(e models.EvolutionEntry) EntryDTO {
	return *FromModel(&e)
}
