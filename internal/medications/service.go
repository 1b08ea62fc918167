package medications

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/donazulmira/moradores-backend/pkg/db"
	"github.com/donazulmira/moradores-backend/pkg/db/models"
	pkgerrors "github.com/donazulmira/moradores-backend/pkg/errors"
	"github.com/donazulmira/moradores-backend/pkg/pagination"
	"gorm.io/gorm"
)

const (
	msgNameConflict = "Medicamento já cadastrado."
	msgRemoved      = "Medicamento removido com sucesso."
)

type CreateMedicationRequest struct {
	Name   string `json:"nome_medicamento" validate:"required"`
	Active *bool  `json:"situacao" validate:"required"`
}

type UpdateMedicationRequest struct {
	Name   *string `json:"nome_medicamento" validate:"omitempty,min=1"`
	Active *bool   `json:"situacao"`
}

type MedicationDTO struct {
	ID     int64  `json:"id_medicamento"`
	Name   string `json:"nome_medicamento"`
	Active bool   `json:"situacao"`
}

type MessageResult struct {
	Message string `json:"message"`
}

func FromModel(m *models.Medication) *MedicationDTO {
	return &MedicationDTO{ID: m.ID, Name: m.Name, Active: m.Active}
}

func fromModelValue(m models.Medication) MedicationDTO { return *FromModel(&m) }

// Service manages the medication catalog.
type Service interface {
	Create(ctx context.Context, req CreateMedicationRequest) (*MedicationDTO, error)
	List(ctx context.Context, name string, params pagination.Params) (pagination.Result[MedicationDTO], error)
	Get(ctx context.Context, id int64) (*MedicationDTO, error)
	Update(ctx context.Context, id int64, req UpdateMedicationRequest) (*MedicationDTO, error)
	Delete(ctx context.Context, id int64) (*MessageResult, error)
}

type medicationRepository interface {
	Create(ctx context.Context, m *models.Medication) error
	FindByID(ctx context.Context, id int64) (*models.Medication, error)
	FindByName(ctx context.Context, name string) (*models.Medication, error)
	List(ctx context.Context, name string, params pagination.Params) ([]models.Medication, int64, error)
	Update(ctx context.Context, id int64, columns map[string]any) error
	Delete(ctx context.Context, id int64) (bool, error)
}

type service struct {
	repo medicationRepository
}

type ServiceParams struct {
	Repo medicationRepository
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("medication repository is required")
	}
	return &service{repo: params.Repo}, nil
}

func (s *service) Create(ctx context.Context, req CreateMedicationRequest) (*MedicationDTO, error) {
	name := strings.TrimSpace(req.Name)
	if err := s.ensureNameAvailable(ctx, name, 0); err != nil {
		return nil, err
	}
	m := &models.Medication{Name: name, Active: req.Active == nil || *req.Active}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, mapWriteError(err, "create medication")
	}
	return FromModel(m), nil
}

func (s *service) List(ctx context.Context, name string, params pagination.Params) (pagination.Result[MedicationDTO], error) {
	rows, total, err := s.repo.List(ctx, name, params)
	if err != nil {
		return pagination.Result[MedicationDTO]{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list medications")
	}
	return pagination.Map(pagination.NewResult(rows, total, params), fromModelValue), nil
}

func (s *service) Get(ctx context.Context, id int64) (*MedicationDTO, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(id)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load medication")
	}
	return FromModel(m), nil
}

func (s *service) Update(ctx context.Context, id int64, req UpdateMedicationRequest) (*MedicationDTO, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	columns := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if err := s.ensureNameAvailable(ctx, name, id); err != nil {
			return nil, err
		}
		columns["nome_medicamento"] = name
	}
	if req.Active != nil {
		columns["situacao"] = *req.Active
	}
	if err := s.repo.Update(ctx, id, columns); err != nil {
		return nil, mapWriteError(err, "update medication")
	}
	return s.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id int64) (*MessageResult, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete medication")
	}
	if !deleted {
		return nil, notFound(id)
	}
	return &MessageResult{Message: msgRemoved}, nil
}

func (s *service) ensureNameAvailable(ctx context.Context, name string, selfID int64) error {
	existing, err := s.repo.FindByName(ctx, name)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil
	case err != nil:
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check medication name")
	case existing.ID != selfID:
		return pkgerrors.New(pkgerrors.CodeConflict, msgNameConflict)
	}
	return nil
}

func notFound(id int64) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("Medicamento com ID %d não encontrado.", id))
}

func mapWriteError(err error, step string) error {
	if db.IsUniqueViolationOn(err, "medicamento", "nome_medicamento") {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, msgNameConflict)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, step)
}
