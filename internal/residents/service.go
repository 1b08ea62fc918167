package residents

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/donazulmira/moradores-backend/pkg/cpf"
	"github.com/donazulmira/moradores-backend/pkg/db"
	"github.com/donazulmira/moradores-backend/pkg/db/models"
	pkgerrors "github.com/donazulmira/moradores-backend/pkg/errors"
	"github.com/donazulmira/moradores-backend/pkg/pagination"
	"gorm.io/gorm"
)

const (
	msgCPFConflict = "CPF já cadastrado para outro morador."
	msgInvalidCPF  = "CPF inválido."
)

// Service manages resident records.
type Service interface {
	Create(ctx context.Context, req CreateResidentRequest, registrarID int64) (*ResidentDTO, error)
	List(ctx context.Context, filter ListFilter, params pagination.Params) (pagination.Result[ResidentDTO], error)
	Get(ctx context.Context, id int64) (*ResidentDTO, error)
	Update(ctx context.Context, id int64, req UpdateResidentRequest) (*ResidentDTO, error)
	Delete(ctx context.Context, id int64) error
}

type residentRepository interface {
	Create(ctx context.Context, resident *models.Resident) error
	FindByID(ctx context.Context, id int64) (*models.Resident, error)
	FindByCPF(ctx context.Context, cpf string) (*models.Resident, error)
	List(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.Resident, int64, error)
	Update(ctx context.Context, id int64, columns map[string]any) error
	Delete(ctx context.Context, id int64) (bool, error)
}

type service struct {
	repo residentRepository
}

type ServiceParams struct {
	Repo residentRepository
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("resident repository is required")
	}
	return &service{repo: params.Repo}, nil
}

func (s *service) Create(ctx context.Context, req CreateResidentRequest, registrarID int64) (*ResidentDTO, error) {
	digits := cpf.Normalize(req.CPF)
	if !cpf.Valid(digits) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msgInvalidCPF)
	}
	if err := s.ensureCPFAvailable(ctx, digits, 0); err != nil {
		return nil, err
	}

	resident := &models.Resident{
		FullName: strings.TrimSpace(req.FullName),
		CPF:      digits,
		Active:   req.Active == nil || *req.Active,
		UserID:   registrarID,
	}
	if rg := strings.TrimSpace(req.RG); rg != "" {
		resident.RG = &rg
	}
	if req.RegisteredAt != nil {
		resident.RegisteredAt = req.RegisteredAt.Time.UTC()
	}
	if err := s.repo.Create(ctx, resident); err != nil {
		return nil, mapWriteError(err, "create resident")
	}
	return s.Get(ctx, resident.ID)
}

func (s *service) List(ctx context.Context, filter ListFilter, params pagination.Params) (pagination.Result[ResidentDTO], error) {
	if filter.CPF != "" {
		filter.CPF = cpf.Normalize(filter.CPF)
	}
	rows, total, err := s.repo.List(ctx, filter, params)
	if err != nil {
		return pagination.Result[ResidentDTO]{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list residents")
	}
	return pagination.Map(pagination.NewResult(rows, total, params), fromModelValue), nil
}

func (s *service) Get(ctx context.Context, id int64) (*ResidentDTO, error) {
	resident, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(resident), nil
}

func (s *service) Update(ctx context.Context, id int64, req UpdateResidentRequest) (*ResidentDTO, error) {
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}

	columns := map[string]any{}
	if req.FullName != nil {
		columns["nome_completo"] = strings.TrimSpace(*req.FullName)
	}
	if req.CPF != nil {
		digits := cpf.Normalize(*req.CPF)
		if !cpf.Valid(digits) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, msgInvalidCPF)
		}
		if err := s.ensureCPFAvailable(ctx, digits, id); err != nil {
			return nil, err
		}
		columns["cpf"] = digits
	}
	if req.RG != nil {
		columns["rg"] = strings.TrimSpace(*req.RG)
	}
	if req.Active != nil {
		columns["situacao"] = *req.Active
	}
	if req.RegisteredAt != nil {
		columns["data_cadastro"] = req.RegisteredAt.Time.UTC()
	}
	if err := s.repo.Update(ctx, id, columns); err != nil {
		return nil, mapWriteError(err, "update resident")
	}
	return s.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id int64) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete resident")
	}
	if !deleted {
		return notFound(id)
	}
	return nil
}

func (s *service) load(ctx context.Context, id int64) (*models.Resident, error) {
	resident, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(id)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load resident")
	}
	return resident, nil
}

func (s *service) ensureCPFAvailable(ctx context.Context, digits string, selfID int64) error {
	existing, err := s.repo.FindByCPF(ctx, digits)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil
	case err != nil:
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check cpf")
	case existing.ID != selfID:
		return pkgerrors.New(pkgerrors.CodeConflict, msgCPFConflict)
	}
	return nil
}

func notFound(id int64) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("Morador com ID %d não encontrado.", id))
}

func mapWriteError(err error, step string) error {
	if db.IsUniqueViolationOn(err, "morador", "cpf") {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, msgCPFConflict)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, step)
}
