package prescriptions

import (
	"time"

	"github.com/donazulmira/moradores-backend/pkg/db/models"
	"gorm.io/gorm"
)

type CreatePrescriptionRequest struct {
	ResidentID int64  `json:"id_morador" validate:"required,gt=0"`
	DoctorID   int64  `json:"id_medico" validate:"required,gt=0"`
	Month      string `json:"mes" validate:"required,month"`
	Year       string `json:"ano" validate:"required,len=4,numeric"`
}

type ItemInput struct {
	MedicationID int64  `json:"id_medicamento" validate:"required,gt=0"`
	Dosage       string `json:"posologia" validate:"required"`
}

// CreateCompleteRequest creates a prescription and its items at once.
type CreateCompleteRequest struct {
	CreatePrescriptionRequest
	Items []ItemInput `json:"itens" validate:"dive"`
}

type UpdatePrescriptionRequest struct {
	ResidentID *int64  `json:"id_morador" validate:"omitempty,gt=0"`
	DoctorID   *int64  `json:"id_medico" validate:"omitempty,gt=0"`
	Month      *string `json:"mes" validate:"omitempty,month"`
	Year       *string `json:"ano" validate:"omitempty,len=4,numeric"`
}

type CreateItemRequest struct {
	MedicationID   int64  `json:"id_medicamento" validate:"required,gt=0"`
	PrescriptionID int64  `json:"id_prescricao" validate:"required,gt=0"`
	Dosage         string `json:"posologia" validate:"required"`
}

type UpdateItemRequest struct {
	MedicationID   *int64  `json:"id_medicamento" validate:"omitempty,gt=0"`
	PrescriptionID *int64  `json:"id_prescricao" validate:"omitempty,gt=0"`
	Dosage         *string `json:"posologia" validate:"omitempty,min=1"`
}

type ListFilter struct {
	ResidentID     *int64
	PrescriptionID *int64
}

func (f ListFilter) scope(db *gorm.DB) *gorm.DB {
	if f.ResidentID != nil {
		db = db.Where("id_morador = ?", *f.ResidentID)
	}
	if f.PrescriptionID != nil {
		db = db.Where("id_prescricao = ?", *f.PrescriptionID)
	}
	return db
}

type NamedRef struct {
	ID       int64  `json:"id"`
	FullName string `json:"nome_completo"`
}

type MedicationRef struct {
	ID   int64  `json:"id_medicamento"`
	Name string `json:"nome_medicamento"`
}

type ItemDTO struct {
	ID             int64          `json:"id_medicamento_prescricao"`
	MedicationID   int64          `json:"id_medicamento"`
	PrescriptionID int64          `json:"id_prescricao"`
	Dosage         string         `json:"posologia"`
	UserID         *int64         `json:"id_usuario"`
	Medication     *MedicationRef `json:"medicamento,omitempty"`
	LinkedBy       *string        `json:"vinculado_por,omitempty"`
	LastDoseAt     *time.Time     `json:"ultima_aplicacao,omitempty"`
}

// PrescriptionDTO carries the latest administration across all items.
type PrescriptionDTO struct {
	ID             int64      `json:"id_prescricao"`
	ResidentID     int64      `json:"id_morador"`
	DoctorID       int64      `json:"id_medico"`
	Month          string     `json:"mes"`
	Year           string     `json:"ano"`
	Resident       *NamedRef  `json:"morador,omitempty"`
	Doctor         *NamedRef  `json:"medico,omitempty"`
	Items          []ItemDTO  `json:"medicamentoprescricao"`
	Administrator  *string    `json:"aplicador"`
	AdministeredAt *time.Time `json:"data_hora_aplicacao"`
}

// AnalyticRow is one line per prescription item; prescriptions without items
// yield a single row with the item columns empty.
type AnalyticRow struct {
	PrescriptionID     int64      `json:"id_prescricao"`
	Month              string     `json:"mes"`
	Year               string     `json:"ano"`
	ResidentName       *string    `json:"morador_nome"`
	DoctorName         *string    `json:"medico_nome"`
	MedicationName     *string    `json:"nome_medicamento"`
	Dosage             *string    `json:"posologia"`
	LinkedBy           *string    `json:"vinculado_por"`
	AdministeredAt     *time.Time `json:"aplicacao_data_hora"`
	Administrator      *string    `json:"aplicador"`
	PrescriptionItemID *int64     `json:"id_medicamento_prescricao"`
	MedicationID       *int64     `json:"id_medicamento"`
}

type MessageResult struct {
	Message string `json:"message"`
}

func displayName(u *models.User) *string {
	if u == nil {
		return nil
	}
	name := u.Username
	if name == "" {
		name = u.FullName
	}
	return &name
}

func latestDose(item *models.PrescriptionItem) *models.MedicationDose {
	var latest *models.MedicationDose
	for i := range item.Doses {
		if latest == nil || item.Doses[i].AdministeredAt.After(latest.AdministeredAt) {
			latest = &item.Doses[i]
		}
	}
	return latest
}

func ItemFromModel(m *models.PrescriptionItem) *ItemDTO {
	out := &ItemDTO{
		ID:             m.ID,
		MedicationID:   m.MedicationID,
		PrescriptionID: m.PrescriptionID,
		Dosage:         m.Dosage,
		UserID:         m.UserID,
		LinkedBy:       displayName(m.LinkedBy),
	}
	if m.Medication != nil {
		out.Medication = &MedicationRef{ID: m.Medication.ID, Name: m.Medication.Name}
	}
	if dose := latestDose(m); dose != nil {
		at := dose.AdministeredAt
		out.LastDoseAt = &at
	}
	return out
}

func itemFromModelValue(m models.PrescriptionItem) ItemDTO { return *ItemFromModel(&m) }

func FromModel(p *models.Prescription) *PrescriptionDTO {
	out := &PrescriptionDTO{
		ID:         p.ID,
		ResidentID: p.ResidentID,
		DoctorID:   p.DoctorID,
		Month:      p.Month,
		Year:       p.Year,
		Items:      make([]ItemDTO, 0, len(p.Items)),
	}
	if p.Resident != nil {
		out.Resident = &NamedRef{ID: p.Resident.ID, FullName: p.Resident.FullName}
	}
	if p.Doctor != nil {
		out.Doctor = &NamedRef{ID: p.Doctor.ID, FullName: p.Doctor.FullName}
	}
	var latest *models.MedicationDose
	for i := range p.Items {
		out.Items = append(out.Items, *ItemFromModel(&p.Items[i]))
		if dose := latestDose(&p.Items[i]); dose != nil && (latest == nil || dose.AdministeredAt.After(latest.AdministeredAt)) {
			latest = dose
		}
	}
	if latest != nil {
		at := latest.AdministeredAt.UTC()
		out.AdministeredAt = &at
		out.Administrator = displayName(latest.Administrator)
	}
	return out
}

func fromModelValue(p models.Prescription) PrescriptionDTO { return *FromModel(&p) }

func analyticRows(p *models.Prescription) []AnalyticRow {
	base := AnalyticRow{PrescriptionID: p.ID, Month: p.Month, Year: p.Year}
	if p.Resident != nil {
		name := p.Resident.FullName
		base.ResidentName = &name
	}
	if p.Doctor != nil {
		name := p.Doctor.FullName
		base.DoctorName = &name
	}
	if len(p.Items) == 0 {
		return []AnalyticRow{base}
	}
	rows := make([]AnalyticRow, 0, len(p.Items))
	for i := range p.Items {
		item := &p.Items[i]
		row := base
		itemID, dosage := item.ID, item.Dosage
		row.PrescriptionItemID = &itemID
		row.Dosage = &dosage
		row.LinkedBy = displayName(item.LinkedBy)
		if item.Medication != nil {
			medID, medName := item.Medication.ID, item.Medication.Name
			row.MedicationID = &medID
			row.MedicationName = &medName
		}
		if dose := latestDose(item); dose != nil {
			at := dose.AdministeredAt.UTC()
			row.AdministeredAt = &at
			row.Administrator = displayName(dose.Administrator)
		}
		rows = append(rows, row)
	}
	return rows
}
