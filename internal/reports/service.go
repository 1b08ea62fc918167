package reports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/donazulmira/moradores-backend/pkg/db/models"
	pkgerrors "github.com/donazulmira/moradores-backend/pkg/errors"
	"github.com/donazulmira/moradores-backend/pkg/ids"
	"github.com/donazulmira/moradores-backend/pkg/pagination"
	"github.com/donazulmira/moradores-backend/pkg/textutil"
	"gorm.io/gorm"
)

// MaxNotesLength caps observacoes, in runes.
const MaxNotesLength = 8000

const (
	msgAuthorNotFound  = "Usuário não encontrado"
	msgNoEntries       = "Informe pelo menos uma evolução (ids_evolucoes ou id_evolucao_individual legado)."
	msgEntriesNotFound = "Uma ou mais evoluções não encontradas"
	msgReportNotFound  = "Relatório não encontrado"
	msgCreated         = "Relatório criado com sucesso"
	msgUpdated         = "Relatório atualizado com sucesso"
	msgRemoved         = "Relatório removido com sucesso"
)

// Service manages daily reports and their links to evolution entries.
type Service interface {
	Create(ctx context.Context, req CreateReportRequest, authorID int64) (*MutationResult, error)
	List(ctx context.Context, filter ListFilter, params pagination.Params) (pagination.Result[ReportDTO], error)
	Get(ctx context.Context, id int64) (*ReportDTO, error)
	Update(ctx context.Context, id int64, req UpdateReportRequest) (*MutationResult, error)
	Delete(ctx context.Context, id int64) (*MessageResult, error)
}

type reportRepository interface {
	UserExists(ctx context.Context, id int64) (bool, error)
	CreateWithLinks(ctx context.Context, report *models.DailyReport, entryIDs []int64) error
	UpdateWithLinks(ctx context.Context, id int64, changes Changes, entryIDs []int64) error
	DeleteWithLinks(ctx context.Context, id int64) (bool, error)
	FindByID(ctx context.Context, id int64) (*models.DailyReport, error)
	List(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.DailyReport, int64, error)
	LinkedEntries(ctx context.Context, reportIDs []int64) (map[int64][]models.EvolutionEntry, error)
}

type service struct {
	repo reportRepository
	now  func() time.Time
}

// ServiceParams bundles the dependencies required to build a reports service.
type ServiceParams struct {
	Repo reportRepository
	Now  func() time.Time
}

// NewService constructs a reports service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("report repository is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{repo: params.Repo, now: now}, nil
}

func (s *service) Create(ctx context.Context, req CreateReportRequest, authorID int64) (*MutationResult, error) {
	exists, err := s.repo.UserExists(ctx, authorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check author")
	}
	if !exists {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgAuthorNotFound)
	}

	var entryIDs []int64
	switch {
	case len(req.EvolutionIDs) > 0:
		entryIDs = ids.Unique(req.EvolutionIDs)
	case req.LegacyEvolutionID > 0:
		entryIDs = []int64{req.LegacyEvolutionID}
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msgNoEntries)
	}
	occurredAt := s.now().UTC()
	if req.OccurredAt != nil {
		occurredAt = req.OccurredAt.Time.UTC()
	}
	report := &models.DailyReport{
		UserID:     authorID,
		Notes:      textutil.Sanitize(req.Notes, MaxNotesLength),
		OccurredAt: occurredAt,
	}
	if err := s.repo.CreateWithLinks(ctx, report, entryIDs); err != nil {
		if errors.Is(err, ErrEntriesNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgEntriesNotFound)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create report")
	}

	dto, err := s.Get(ctx, report.ID)
	if err != nil {
		return nil, err
	}
	return &MutationResult{Message: msgCreated, Report: dto}, nil
}

func (s *service) List(ctx context.Context, filter ListFilter, params pagination.Params) (pagination.Result[ReportDTO], error) {
	rows, total, err := s.repo.List(ctx, filter, params)
	if err != nil {
		return pagination.Result[ReportDTO]{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list reports")
	}
	reportIDs := make([]int64, 0, len(rows))
	for _, r := range rows {
		reportIDs = append(reportIDs, r.ID)
	}
	entries, err := s.repo.LinkedEntries(ctx, reportIDs)
	if err != nil {
		return pagination.Result[ReportDTO]{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load report entries")
	}
	out := make([]ReportDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i], entries[rows[i].ID]))
	}
	return pagination.NewResult(out, total, params), nil
}

func (s *service) Get(ctx context.Context, id int64) (*ReportDTO, error) {
	report, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	entries, err := s.repo.LinkedEntries(ctx, []int64{id})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load report entries")
	}
	return FromModel(report, entries[id]), nil
}

func (s *service) Update(ctx context.Context, id int64, req UpdateReportRequest) (*MutationResult, error) {
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}

	var entryIDs []int64
	switch {
	case req.EvolutionIDs != nil:
		if len(req.EvolutionIDs) == 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, msgNoEntries)
		}
		entryIDs = ids.Unique(req.EvolutionIDs)
	case req.LegacyEvolutionID != nil:
		entryIDs = []int64{*req.LegacyEvolutionID}
	}

	var changes Changes
	if req.Notes != nil {
		notes := textutil.Sanitize(*req.Notes, MaxNotesLength)
		changes.Notes = &notes
	}
	if req.OccurredAt != nil {
		at := req.OccurredAt.Time.UTC()
		changes.OccurredAt = &at
	}
	if err := s.repo.UpdateWithLinks(ctx, id, changes, entryIDs); err != nil {
		if errors.Is(err, ErrEntriesNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgEntriesNotFound)
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgReportNotFound)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update report")
	}

	dto, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &MutationResult{Message: msgUpdated, Report: dto}, nil
}

func (s *service) Delete(ctx context.Context, id int64) (*MessageResult, error) {
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}
	deleted, err := s.repo.DeleteWithLinks(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete report")
	}
	if !deleted {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgReportNotFound)
	}
	return &MessageResult{Message: msgRemoved}, nil
}

func (s *service) load(ctx context.Context, id int64) (*models.DailyReport, error) {
	report, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgReportNotFound)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load report")
	}
	return report, nil
}
