package doses

import (
	"time"

	"github.com/donazulmira/moradores-backend/pkg/db/models"
	"github.com/donazulmira/moradores-backend/pkg/types"
	"gorm.io/gorm"
)

// CreateDoseRequest never carries the administering user; it comes from the
// access token.
type CreateDoseRequest struct {
	PrescriptionItemID int64            `json:"id_medicamento_prescricao" validate:"required,gt=0"`
	AdministeredAt     *types.Timestamp `json:"data_hora"`
}

type UpdateDoseRequest struct {
	PrescriptionItemID *int64           `json:"id_medicamento_prescricao" validate:"omitempty,gt=0"`
	AdministeredAt     *types.Timestamp `json:"data_hora"`
}

type ListFilter struct {
	PrescriptionItemID *int64
	UserID             *int64
	From               *types.Timestamp
	To                 *types.Timestamp
}

func (f ListFilter) scope(db *gorm.DB) *gorm.DB {
	if f.PrescriptionItemID != nil {
		db = db.Where("id_medicamento_prescricao = ?", *f.PrescriptionItemID)
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
	return db
}

type ItemRef struct {
	ID             int64   `json:"id_medicamento_prescricao"`
	PrescriptionID int64   `json:"id_prescricao"`
	Dosage         string  `json:"posologia"`
	MedicationName *string `json:"nome_medicamento,omitempty"`
}

type UserRef struct {
	ID       int64  `json:"id_usuario"`
	Username string `json:"nome_usuario"`
	FullName string `json:"nome_completo"`
}

type DoseDTO struct {
	ID                 int64     `json:"id_medicacao"`
	PrescriptionItemID int64     `json:"id_medicamento_prescricao"`
	UserID             int64     `json:"id_usuario"`
	AdministeredAt     time.Time `json:"data_hora"`
	PrescriptionItem   *ItemRef  `json:"medicamentoprescricao,omitempty"`
	Administrator      *UserRef  `json:"usuario,omitempty"`
}

type MessageResult struct {
	Message string `json:"message"`
}

func FromModel(m *models.MedicationDose) *DoseDTO {
	out := &DoseDTO{
		ID:                 m.ID,
		PrescriptionItemID: m.PrescriptionItemID,
		UserID:             m.UserID,
		AdministeredAt:     m.AdministeredAt,
	}
	if item := m.PrescriptionItem; item != nil {
		out.PrescriptionItem = &ItemRef{ID: item.ID, PrescriptionID: item.PrescriptionID, Dosage: item.Dosage}
		if item.Medication != nil {
			name := item.Medication.Name
			out.PrescriptionItem.MedicationName = &name
		}
	}
	if u := m.Administrator; u != nil {
		out.Administrator = &UserRef{ID: u.ID, Username: u.Username, FullName: u.FullName}
	}
	return out
}

func fromModelValue(m models.MedicationDose) DoseDTO { return *FromModel(&m) }
