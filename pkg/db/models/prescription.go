package models

// Prescription groups the medication a doctor prescribed for a resident in a
// given month.
type Prescription struct {
	ID         int64  `gorm:"column:id_prescricao;primaryKey;autoIncrement"`
	ResidentID int64  `gorm:"column:id_morador;not null;index"`
	DoctorID   int64  `gorm:"column:id_medico;not null;index"`
	Month      string `gorm:"column:mes;type:varchar(2);not null"`
	Year       string `gorm:"column:ano;type:varchar(4);not null"`

	Resident *Resident          `gorm:"foreignKey:ResidentID;references:ID"`
	Doctor   *Doctor            `gorm:"foreignKey:DoctorID;references:ID"`
	Items    []PrescriptionItem `gorm:"foreignKey:PrescriptionID;references:ID"`
}

func (Prescription) TableName() string { return "prescricao" }

// PrescriptionItem links a medication and its dosage to a prescription.
type PrescriptionItem struct {
	ID             int64  `gorm:"column:id_medicamento_prescricao;primaryKey;autoIncrement"`
	MedicationID   int64  `gorm:"column:id_medicamento;not null;index"`
	PrescriptionID int64  `gorm:"column:id_prescricao;not null;index"`
	Dosage         string `gorm:"column:posologia;not null"`
	UserID         *int64 `gorm:"column:id_usuario"`

	Medication   *Medication      `gorm:"foreignKey:MedicationID;references:ID"`
	Prescription *Prescription    `gorm:"foreignKey:PrescriptionID;references:ID"`
	LinkedBy     *User            `gorm:"foreignKey:UserID;references:ID"`
	Doses        []MedicationDose `gorm:"foreignKey:PrescriptionItemID;references:ID"`
}

func (PrescriptionItem) TableName() string { return "medicamentoprescricao" }
