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

// ItemService manages the medications linked to a prescription.
type ItemService interface {
	Create(ctx context.Context, req CreateItemRequest, userID int64) (*ItemDTO, error)
	List(ctx context.Context, prescriptionID *int64, params pagination.Params) (pagination.Result[ItemDTO], error)
	Get(ctx context.Context, id int64) (*ItemDTO, error)
	Update(ctx context.Context, id int64, req UpdateItemRequest) (*ItemDTO, error)
	Delete(ctx context.Context, id int64) (*MessageResult, error)
}

type itemService struct {
	repo Repository
}

func NewItemService(repo Repository) (ItemService, error) {
	if repo == nil {
		return nil, fmt.Errorf("prescription repository is required")
	}
	return &itemService{repo: repo}, nil
}

func (s *itemService) Create(ctx context.Context, req CreateItemRequest, userID int64) (*ItemDTO, error) {
	if err := s.checkPrescription(ctx, req.PrescriptionID); err != nil {
		return nil, err
	}
	if err := checkMedications(ctx, s.repo, []int64{req.MedicationID}); err != nil {
		return nil, err
	}
	item := models.PrescriptionItem{
		MedicationID:   req.MedicationID,
		PrescriptionID: req.PrescriptionID,
		Dosage:         strings.TrimSpace(req.Dosage),
	}
	if userID > 0 {
		item.UserID = &userID
	}
	items := []models.PrescriptionItem{item}
	if err := s.repo.CreateItems(ctx, items); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create prescription item")
	}
	return s.Get(ctx, items[0].ID)
}

func (s *itemService) List(ctx context.Context, prescriptionID *int64, params pagination.Params) (pagination.Result[ItemDTO], error) {
	rows, total, err := s.repo.ListItems(ctx, prescriptionID, params)
	if err != nil {
		return pagination.Result[ItemDTO]{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list prescription items")
	}
	return pagination.Map(pagination.NewResult(rows, total, params), itemFromModelValue), nil
}

func (s *itemService) Get(ctx context.Context, id int64) (*ItemDTO, error) {
	item, err := s.repo.FindItem(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgItemNotFound)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load prescription item")
	}
	return ItemFromModel(item), nil
}

func (s *itemService) Update(ctx context.Context, id int64, req UpdateItemRequest) (*ItemDTO, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	columns := map[string]any{}
	if req.PrescriptionID != nil {
		if err := s.checkPrescription(ctx, *req.PrescriptionID); err != nil {
			return nil, err
		}
		columns["id_prescricao"] = *req.PrescriptionID
	}
	if req.MedicationID != nil {
		if err := checkMedications(ctx, s.repo, []int64{*req.MedicationID}); err != nil {
			return nil, err
		}
		columns["id_medicamento"] = *req.MedicationID
	}
	if req.Dosage != nil {
		columns["posologia"] = strings.TrimSpace(*req.Dosage)
	}
	if err := s.repo.UpdateItem(ctx, id, columns); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update prescription item")
	}
	return s.Get(ctx, id)
}

func (s *itemService) Delete(ctx context.Context, id int64) (*MessageResult, error) {
	deleted, err := s.repo.DeleteItem(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete prescription item")
	}
	if !deleted {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgItemNotFound)
	}
	return &MessageResult{Message: msgItemRemoved}, nil
}

func (s *itemService) checkPrescription(ctx context.Context, id int64) error {
	_, err := s.repo.FindByID(ctx, id)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return pkgerrors.New(pkgerrors.CodeNotFound, msgPrescriptionNotFound)
	case err != nil:
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load prescription")
	}
	return nil
}
