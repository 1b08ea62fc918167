package ai

import (
	"context"
	"fmt"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/donazulmira/moradores-backend/pkg/db/models"
	"github.com/donazulmira/moradores-backend/pkg/enums"
	pkgerrors "github.com/donazulmira/moradores-backend/pkg/errors"
	"github.com/donazulmira/moradores-backend/pkg/gemini"
	"github.com/donazulmira/moradores-backend/pkg/ids"
	"github.com/donazulmira/moradores-backend/pkg/logger"
	"github.com/donazulmira/moradores-backend/pkg/metrics"
	"gorm.io/gorm"
)

// MaxEntries caps how many evolution entries one draft may consolidate.
const MaxEntries = 30

const (
	msgNotConfigured   = "Serviço de IA não configurado"
	msgEmptyIDs        = "ids_evolucoes vazio"
	msgTooMany         = "Máximo de 30 evoluções por geração"
	msgEntriesNotFound = "Uma ou mais evoluções não encontradas"
	msgInvalidMode     = "modo deve ser resumo ou detalhado"
	msgGenerateFailed  = "Falha ao gerar relatório"
)

type GenerateRequest struct {
	EvolutionIDs []int64 `json:"ids_evolucoes" validate:"required,dive,gt=0"`
	Mode         string  `json:"modo" validate:"omitempty,oneof=resumo detalhado"`
	ReportDate   string  `json:"data_relatorio"`
}

type GenerateResult struct {
	Text  string `json:"texto"`
	Model string `json:"modelo"`
	Chars int    `json:"chars"`
}

// Service drafts daily report text from evolution entries.
type Service interface {
	GenerateReport(ctx context.Context, userID int64, req GenerateRequest) (*GenerateResult, error)
}

type entryLoader interface {
	FindEntries(ctx context.Context, ids []int64) ([]models.EvolutionEntry, error)
}

type service struct {
	entries   entryLoader
	generator gemini.Generator
	metrics   *metrics.Metrics
	logg      *logger.Logger
	loc       *time.Location
}

type ServiceParams struct {
	Entries entryLoader
	// Generator may be nil when no API key is configured; every call then
	// fails with an internal error.
	Generator gemini.Generator
	Metrics   *metrics.Metrics
	Logger    *logger.Logger
	Location  *time.Location
}

func NewService(params ServiceParams) (Service, error) {
	if params.Entries == nil {
		return nil, fmt.Errorf("entry loader is required")
	}
	loc := params.Location
	if loc == nil {
		loc = time.UTC
	}
	return &service{
		entries:   params.Entries,
		generator: params.Generator,
		metrics:   params.Metrics,
		logg:      params.Logger,
		loc:       loc,
	}, nil
}

func (s *service) GenerateReport(ctx context.Context, userID int64, req GenerateRequest) (*GenerateResult, error) {
	if s.generator == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, msgNotConfigured).Public()
	}
	entryIDs := ids.Unique(req.EvolutionIDs)
	if len(entryIDs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msgEmptyIDs)
	}
	if len(entryIDs) > MaxEntries {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msgTooMany)
	}
	mode, err := enums.ParseReportMode(req.Mode)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, msgInvalidMode)
	}

	rows, err := s.entries.FindEntries(ctx, entryIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load evolution entries")
	}
	if len(rows) != len(entryIDs) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msgEntriesNotFound)
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].OccurredAt.Before(rows[j].OccurredAt) })
	entries := make([]promptEntry, 0, len(rows))
	for _, row := range rows {
		e := promptEntry{At: row.OccurredAt, Notes: row.Notes}
		if row.Resident != nil {
			e.Resident = row.Resident.FullName
		}
		entries = append(entries, e)
	}
	prompt, err := buildPrompt(entries, mode, req.ReportDate, s.loc)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render prompt")
	}

	start := time.Now()
	raw, err := s.generator.Generate(ctx, prompt)
	s.metrics.ObserveAI(time.Since(start), err == nil)
	if err != nil {
		if s.logg != nil {
			lctx := s.logg.WithFields(ctx, map[string]any{"entries": len(entryIDs), "model": s.generator.Model(), "user_id": userID})
			s.logg.Error(lctx, "ai.generate_failed", err)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, msgGenerateFailed).Public()
	}

	text := cleanAnswer(raw)
	return &GenerateResult{Text: text, Model: s.generator.Model(), Chars: utf8.RuneCountInString(text)}, nil
}

// EntryRepository loads entries with their resident for prompt building.
type EntryRepository struct {
	db *gorm.DB
}

func NewEntryRepository(db *gorm.DB) *EntryRepository {
	return &EntryRepository{db: db}
}

func (r *EntryRepository) FindEntries(ctx context.Context, ids []int64) ([]models.EvolutionEntry, error) {
	var rows []models.EvolutionEntry
	err := r.db.WithContext(ctx).
		Preload("Resident").
		Where("id_evolucao_individual IN ?", ids).
		Find(&rows).Error
	return rows, err
}
