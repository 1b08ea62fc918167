package doctors

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

const msgCRMConflict = "CRM já cadastrado."

type CreateDoctorRequest struct {
	FullName string `json:"nome_completo" validate:"required"`
	CRM      string `json:"crm" validate:"required"`
	Active   *bool  `json:"situacao" validate:"required"`
}

type UpdateDoctorRequest struct {
	FullName *string `json:"nome_completo" validate:"omitempty,min=1"`
	CRM      *string `json:"crm" validate:"omitempty,min=1"`
	Active   *bool   `json:"situacao"`
}

type DoctorDTO struct {
	ID       int64  `json:"id_medico"`
	FullName string `json:"nome_completo"`
	CRM      string `json:"crm"`
	Active   bool   `json:"situacao"`
	UserID   *int64 `json:"id_usuario"`
}

func FromModel(m *models.Doctor) *DoctorDTO {
	return &DoctorDTO{ID: m.ID, FullName: m.FullName, CRM: m.CRM, Active: m.Active, UserID: m.UserID}
}

func fromModelValue(m models.Doctor) DoctorDTO { return *FromModel(&m) }

// Service manages the registry of prescribing doctors.
type Service interface {
	Create(ctx context.Context, req CreateDoctorRequest, userID int64) (*DoctorDTO, error)
	List(ctx context.Context, name string, params pagination.Params) (pagination.Result[DoctorDTO], error)
	Get(ctx context.Context, id int64) (*DoctorDTO, error)
	Update(ctx context.Context, id int64, req UpdateDoctorRequest) (*DoctorDTO, error)
	Delete(ctx context.Context, id int64) error
}

type doctorRepository interface {
	Create(ctx context.Context, doctor *models.Doctor) error
	FindByID(ctx context.Context, id int64) (*models.Doctor, error)
	FindByCRM(ctx context.Context, crm string) (*models.Doctor, error)
	List(ctx context.Context, name string, params pagination.Params) ([]models.Doctor, int64, error)
	Update(ctx context.Context, id int64, columns map[string]any) error
	Delete(ctx context.Context, id int64) (bool, error)
}

type service struct {
	repo doctorRepository
}

type ServiceParams struct {
	Repo doctorRepository
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("doctor repository is required")
	}
	return &service{repo: params.Repo}, nil
}

func (s *service) Create(ctx context.Context, req CreateDoctorRequest, userID int64) (*DoctorDTO, error) {
	crm := normalizeCRM(req.CRM)
	if err := s.ensureCRMAvailable(ctx, crm, 0); err != nil {
		return nil, err
	}
	doctor := &models.Doctor{
		FullName: strings.TrimSpace(req.FullName),
		CRM:      crm,
		Active:   req.Active == nil || *req.Active,
	}
	if userID > 0 {
		doctor.UserID = &userID
	}
	if err := s.repo.Create(ctx, doctor); err != nil {
		return nil, mapWriteError(err, "create doctor")
	}
	return FromModel(doctor), nil
}

func (s *service) List(ctx context.Context, name string, params pagination.Params) (pagination.Result[DoctorDTO], error) {
	rows, total, err := s.repo.List(ctx, name, params)
	if err != nil {
		return pagination.Result[DoctorDTO]{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list doctors")
	}
	return pagination.Map(pagination.NewResult(rows, total, params), fromModelValue), nil
}

func (s *service) Get(ctx context.Context, id int64) (*DoctorDTO, error) {
	doctor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(id)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load doctor")
	}
	return FromModel(doctor), nil
}

func (s *service) Update(ctx context.Context, id int64, req UpdateDoctorRequest) (*DoctorDTO, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	columns := map[string]any{}
	if req.FullName != nil {
		columns["nome_completo"] = strings.TrimSpace(*req.FullName)
	}
	if req.CRM != nil {
		crm := normalizeCRM(*req.CRM)
		if err := s.ensureCRMAvailable(ctx, crm, id); err != nil {
			return nil, err
		}
		columns["crm"] = crm
	}
	if req.Active != nil {
		columns["situacao"] = *req.Active
	}
	if err := s.repo.Update(ctx, id, columns); err != nil {
		return nil, mapWriteError(err, "update doctor")
	}
	return s.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id int64) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete doctor")
	}
	if !deleted {
		return notFound(id)
	}
	return nil
}

func (s *service) ensureCRMAvailable(ctx context.Context, crm string, selfID int64) error {
	existing, err := s.repo.FindByCRM(ctx, crm)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil
	case err != nil:
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check crm")
	case existing.ID != selfID:
		return pkgerrors.New(pkgerrors.CodeConflict, msgCRMConflict)
	}
	return nil
}

// normalizeCRM upper-cases the state suffix ("12345/sp" -> "12345/SP").
func normalizeCRM(crm string) string {
	return strings.ToUpper(strings.TrimSpace(crm))
}

func notFound(id int64) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("Médico com ID %d não encontrado.", id))
}

func mapWriteError(err error, step string) error {
	if db.IsUniqueViolationOn(err, "medico", "crm") {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, msgCRMConflict)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, step)
}
