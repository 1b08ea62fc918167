package prescriptions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/donazulmira/moradores-backend/pkg/db/models"
	pkgerrors "github.com/donazulmira/moradores-backend/pkg/errors"
	"github.com/donazulmira/moradores-backend/pkg/pagination"
	"gorm.io/gorm"
)

const (
	msgPrescriptionNotFound = "Prescrição não encontrada"
	msgItemNotFound         = "Medicamento da prescrição não encontrado"
	msgResidentNotFound     = "Morador não encontrado"
	msgDoctorNotFound       = "Médico não encontrado"
	msgMedicationNotFound   = "Medicamento não encontrado"
	msgPrescriptionRemoved  = "Prescrição removida com sucesso"
	msgItemRemoved          = "Medicamento removido da prescrição com sucesso"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages monthly prescriptions.
type Service interface {
	Create(ctx context.Context, req CreatePrescriptionRequest) (*PrescriptionDTO, error)
	CreateComplete(ctx context.Context, req CreateCompleteRequest, userID int64) (*PrescriptionDTO, error)
	List(ctx context.Context, filter ListFilter, params pagination.Params) (pagination.Result[PrescriptionDTO], error)
	Analytic(ctx context.Context, filter ListFilter, params pagination.Params) (pagination.Result[AnalyticRow], error)
	Get(ctx context.Context, id int64) (*PrescriptionDTO, error)
	Update(ctx context.Context, id int64, req UpdatePrescriptionRequest) (*PrescriptionDTO, error)
	Delete(ctx context.Context, id int64) (*MessageResult, error)
}

type service struct {
	tx   txRunner
	repo Repository
}

type ServiceParams struct {
	Tx   txRunner
	Repo Repository
}

func NewService(params ServiceParams) (Service, error) {
	if params.Tx == nil {
		return nil, fmt.Errorf("tx runner is required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("prescription repository is required")
	}
	return &service{tx: params.Tx, repo: params.Repo}, nil
}

func (s *service) Create(ctx context.Context, req CreatePrescriptionRequest) (*PrescriptionDTO, error) {
	if err := checkReferences(ctx, s.repo, &req.ResidentID, &req.DoctorID); err != nil {
		return nil, err
	}
	p := &models.Prescription{
		ResidentID: req.ResidentID,
		DoctorID:   req.DoctorID,
		Month:      req.Month,
		Year:       req.Year,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create prescription")
	}
	return s.Get(ctx, p.ID)
}

// CreateComplete writes the prescription and every item in one transaction;
// items are stamped with the user that linked them.
func (s *service) CreateComplete(ctx context.Context, req CreateCompleteRequest, userID int64) (*PrescriptionDTO, error) {
	var id int64
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := checkReferences(ctx, repo, &req.ResidentID, &req.DoctorID); err != nil {
			return err
		}
		medIDs := make([]int64, 0, len(req.Items))
		for _, item := range req.Items {
			medIDs = append(medIDs, item.MedicationID)
		}
		if err := checkMedications(ctx, repo, medIDs); err != nil {
			return err
		}

		p := &models.Prescription{
			ResidentID: req.ResidentID,
			DoctorID:   req.DoctorID,
			Month:      req.Month,
			Year:       req.Year,
		}
		if err := repo.Create(ctx, p); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create prescription")
		}
		items := make([]models.PrescriptionItem, 0, len(req.Items))
		for _, in := range req.Items {
			item := models.PrescriptionItem{
				MedicationID:   in.MedicationID,
				PrescriptionID: p.ID,
				Dosage:         strings.TrimSpace(in.Dosage),
			}
			if userID > 0 {
				linker := userID
				item.UserID = &linker
			}
			items = append(items, item)
		}
		if err := repo.CreateItems(ctx, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create prescription items")
		}
		id = p.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *service) List(ctx context.Context, filter ListFilter, params pagination.Params) (pagination.Result[PrescriptionDTO], error) {
	rows, total, err := s.repo.List(ctx, filter, params)
	if err != nil {
		return pagination.Result[PrescriptionDTO]{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list prescriptions")
	}
	return pagination.Map(pagination.NewResult(rows, total, params), fromModelValue), nil
}

// Analytic flattens prescriptions into item rows and pages the flat list. A
// page past the end is clamped to the last page.
func (s *service) Analytic(ctx context.Context, filter ListFilter, params pagination.Params) (pagination.Result[AnalyticRow], error) {
	list, err := s.repo.ListAll(ctx, filter)
	if err != nil {
		return pagination.Result[AnalyticRow]{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list prescription rows")
	}
	var flat []AnalyticRow
	for i := range list {
		flat = append(flat, analyticRows(&list[i])...)
	}

	params = params.Normalize()
	total := int64(len(flat))
	last := pagination.NewResult[AnalyticRow](nil, total, params).LastPage
	if params.Page > last {
		params.Page = last
	}
	start := params.Offset()
	end := min(start+params.Limit, len(flat))
	if start > end {
		start = end
	}
	return pagination.NewResult(flat[start:end], total, params), nil
}

func (s *service) Get(ctx context.Context, id int64) (*PrescriptionDTO, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgPrescriptionNotFound)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load prescription")
	}
	return FromModel(p), nil
}

func (s *service) Update(ctx context.Context, id int64, req UpdatePrescriptionRequest) (*PrescriptionDTO, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := checkReferences(ctx, s.repo, req.ResidentID, req.DoctorID); err != nil {
		return nil, err
	}
	columns := map[string]any{}
	if req.ResidentID != nil {
		columns["id_morador"] = *req.ResidentID
	}
	if req.DoctorID != nil {
		columns["id_medico"] = *req.DoctorID
	}
	if req.Month != nil {
		columns["mes"] = *req.Month
	}
	if req.Year != nil {
		columns["ano"] = *req.Year
	}
	if err := s.repo.Update(ctx, id, columns); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update prescription")
	}
	return s.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id int64) (*MessageResult, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete prescription")
	}
	if !deleted {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgPrescriptionNotFound)
	}
	return &MessageResult{Message: msgPrescriptionRemoved}, nil
}

func checkReferences(ctx context.Context, repo Repository, residentID, doctorID *int64) error {
	if residentID != nil {
		ok, err := repo.ResidentExists(ctx, *residentID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check resident")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeNotFound, msgResidentNotFound)
		}
	}
	if doctorID != nil {
		ok, err := repo.DoctorExists(ctx, *doctorID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check doctor")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeNotFound, msgDoctorNotFound)
		}
	}
	return nil
}

func checkMedications(ctx context.Context, repo Repository, ids []int64) error {
	unique := make(map[int64]struct{}, len(ids))
	list := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, seen := unique[id]; !seen {
			unique[id] = struct{}{}
			list = append(list, id)
		}
	}
	if len(list) == 0 {
		return nil
	}
	found, err := repo.CountMedications(ctx, list)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check medications")
	}
	if found != int64(len(list)) {
		return pkgerrors.New(pkgerrors.CodeNotFound, msgMedicationNotFound)
	}
	return nil
}
