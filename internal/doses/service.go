package doses

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/donazulmira/moradores-backend/pkg/db/models"
	pkgerrors "github.com/donazulmira/moradores-backend/pkg/errors"
	"github.com/donazulmira/moradores-backend/pkg/pagination"
	"gorm.io/gorm"
)

const (
	msgDoseNotFound = "Medicação não encontrada"
	msgItemNotFound = "Medicamento da prescrição não encontrado"
	msgRemoved      = "Medicação removida com sucesso"
)

// Service records medication administrations.
type Service interface {
	Create(ctx context.Context, req CreateDoseRequest, userID int64) (*DoseDTO, error)
	List(ctx context.Context, filter ListFilter, params pagination.Params) (pagination.Result[DoseDTO], error)
	Get(ctx context.Context, id int64) (*DoseDTO, error)
	Update(ctx context.Context, id int64, req UpdateDoseRequest) (*DoseDTO, error)
	Delete(ctx context.Context, id int64) (*MessageResult, error)
}

type doseRepository interface {
	ItemExists(ctx context.Context, id int64) (bool, error)
	Create(ctx context.Context, dose *models.MedicationDose) error
	FindByID(ctx context.Context, id int64) (*models.MedicationDose, error)
	List(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.MedicationDose, int64, error)
	Update(ctx context.Context, id int64, columns map[string]any) error
	Delete(ctx context.Context, id int64) (bool, error)
}

type service struct {
	repo doseRepository
	now  func() time.Time
}

type ServiceParams struct {
	Repo doseRepository
	Now  func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("dose repository is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{repo: params.Repo, now: now}, nil
}

func (s *service) Create(ctx context.Context, req CreateDoseRequest, userID int64) (*DoseDTO, error) {
	if err := s.ensureItem(ctx, req.PrescriptionItemID); err != nil {
		return nil, err
	}
	at := s.now().UTC()
	if req.AdministeredAt != nil {
		at = req.AdministeredAt.Time.UTC()
	}
	dose := &models.MedicationDose{
		PrescriptionItemID: req.PrescriptionItemID,
		UserID:             userID,
		AdministeredAt:     at,
	}
	if err := s.repo.Create(ctx, dose); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create dose")
	}
	return s.Get(ctx, dose.ID)
}

func (s *service) List(ctx context.Context, filter ListFilter, params pagination.Params) (pagination.Result[DoseDTO], error) {
	rows, total, err := s.repo.List(ctx, filter, params)
	if err != nil {
		return pagination.Result[DoseDTO]{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list doses")
	}
	return pagination.Map(pagination.NewResult(rows, total, params), fromModelValue), nil
}

func (s *service) Get(ctx context.Context, id int64) (*DoseDTO, error) {
	dose, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgDoseNotFound)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load dose")
	}
	return FromModel(dose), nil
}

func (s *service) Update(ctx context.Context, id int64, req UpdateDoseRequest) (*DoseDTO, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	columns := map[string]any{}
	if req.PrescriptionItemID != nil {
		if err := s.ensureItem(ctx, *req.PrescriptionItemID); err != nil {
			return nil, err
		}
		columns["id_medicamento_prescricao"] = *req.PrescriptionItemID
	}
	if req.AdministeredAt != nil {
		columns["data_hora"] = req.AdministeredAt.Time.UTC()
	}
	if err := s.repo.Update(ctx, id, columns); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update dose")
	}
	return s.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id int64) (*MessageResult, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete dose")
	}
	if !deleted {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgDoseNotFound)
	}
	return &MessageResult{Message: msgRemoved}, nil
}

func (s *service) ensureItem(ctx context.Context, id int64) error {
	ok, err := s.repo.ItemExists(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check prescription item")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, msgItemNotFound)
	}
	return nil
}
