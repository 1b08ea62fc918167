package evolutions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/donazulmira/moradores-backend/pkg/db/models"
	pkgerrors "github.com/donazulmira/moradores-backend/pkg/errors"
	"github.com/donazulmira/moradores-backend/pkg/pagination"
	"github.com/donazulmira/moradores-backend/pkg/textutil"
	"gorm.io/gorm"
)

const (
	// MaxNotesLength caps observacoes, in runes.
	MaxNotesLength = 1000
	// ByResidentLimit is the page size of the per-resident timeline.
	ByResidentLimit = 100
)

const (
	msgResidentNotFound = "Morador não encontrado"
	msgEntryNotFound    = "Evolução individual não encontrada."
	msgEmptyNotes       = "Observações são obrigatórias."
	msgUpdated          = "Evolução individual atualizada com sucesso."
	msgRemoved          = "Evolução individual removida com sucesso."
	msgSoleReportEntry  = "Evolução é a única vinculada a um relatório."
)

// Service manages clinical evolution entries.
type Service interface {
	Create(ctx context.Context, req CreateEntryRequest, authorID int64) (*EntryDTO, error)
	List(ctx context.Context, filter ListFilter, params pagination.Params) (pagination.Result[EntryDTO], error)
	ListByResident(ctx context.Context, residentID int64) (pagination.Result[EntryDTO], error)
	Get(ctx context.Context, id int64) (*EntryDTO, error)
	Update(ctx context.Context, id int64, req UpdateEntryRequest) (*UpdateResult, error)
	Delete(ctx context.Context, id int64) (*MessageResult, error)
}

type entryRepository interface {
	ResidentExists(ctx context.Context, id int64) (bool, error)
	Create(ctx context.Context, entry *models.EvolutionEntry) error
	FindByID(ctx context.Context, id int64) (*models.EvolutionEntry, error)
	List(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.EvolutionEntry, int64, error)
	Update(ctx context.Context, id int64, columns map[string]any) error
	Delete(ctx context.Context, id int64) (bool, error)
}

type service struct {
	repo entryRepository
	now  func() time.Time
}

type ServiceParams struct {
	Repo entryRepository
	Now  func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("evolution repository is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{repo: params.Repo, now: now}, nil
}

func (s *service) Create(ctx context.Context, req CreateEntryRequest, authorID int64) (*EntryDTO, error) {
	if err := s.ensureResident(ctx, req.ResidentID); err != nil {
		return nil, err
	}
	notes := textutil.Sanitize(req.Notes, MaxNotesLength)
	if notes == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msgEmptyNotes)
	}
	occurredAt := s.now().UTC()
	if req.OccurredAt != nil {
		occurredAt = req.OccurredAt.Time.UTC()
	}
	entry := &models.EvolutionEntry{
		ResidentID: req.ResidentID,
		UserID:     authorID,
		Notes:      notes,
		OccurredAt: occurredAt,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create evolution entry")
	}
	return s.Get(ctx, entry.ID)
}

func (s *service) List(ctx context.Context, filter ListFilter, params pagination.Params) (pagination.Result[EntryDTO], error) {
	rows, total, err := s.repo.List(ctx, filter, params)
	if err != nil {
		return pagination.Result[EntryDTO]{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list evolution entries")
	}
	return pagination.Map(pagination.NewResult(rows, total, params), fromModelValue), nil
}

func (s *service) ListByResident(ctx context.Context, residentID int64) (pagination.Result[EntryDTO], error) {
	return s.List(ctx, ListFilter{ResidentID: &residentID}, pagination.Params{Page: 1, Limit: ByResidentLimit})
}

func (s *service) Get(ctx context.Context, id int64) (*EntryDTO, error) {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgEntryNotFound)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load evolution entry")
	}
	return FromModel(entry), nil
}

func (s *service) Update(ctx context.Context, id int64, req UpdateEntryRequest) (*UpdateResult, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	columns := map[string]any{}
	if req.ResidentID != nil {
		if err := s.ensureResident(ctx, *req.ResidentID); err != nil {
			return nil, err
		}
		columns["id_morador"] = *req.ResidentID
	}
	if req.Notes != nil {
		notes := textutil.Sanitize(*req.Notes, MaxNotesLength)
		if notes == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, msgEmptyNotes)
		}
		columns["observacoes"] = notes
	}
	if req.OccurredAt != nil {
		columns["data_hora"] = req.OccurredAt.Time.UTC()
	}
	if err := s.repo.Update(ctx, id, columns); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update evolution entry")
	}
	updated, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &UpdateResult{Message: msgUpdated, Entry: updated}, nil
}

func (s *service) Delete(ctx context.Context, id int64) (*MessageResult, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if errors.Is(err, ErrSoleReportEntry) {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, msgSoleReportEntry)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete evolution entry")
	}
	if !deleted {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgEntryNotFound)
	}
	return &MessageResult{Message: msgRemoved}, nil
}

func (s *service) ensureResident(ctx context.Context, id int64) error {
	exists, err := s.repo.ResidentExists(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check resident")
	}
	if !exists {
		return pkgerrors.New(pkgerrors.CodeNotFound, msgResidentNotFound)
	}
	return nil
}
