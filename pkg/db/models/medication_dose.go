package models

import "time"

// MedicationDose records one administration of a prescription item.
type MedicationDose struct {
	ID                 int64     `gorm:"column:id_medicacao;primaryKey;autoIncrement"`
	PrescriptionItemID int64     `gorm:"column:id_medicamento_prescricao;not null;index"`
	UserID             int64     `gorm:"column:id_usuario;not null;index"`
	AdministeredAt     time.Time `gorm:"column:data_hora;not null"`

	PrescriptionItem *PrescriptionItem `gorm:"foreignKey:PrescriptionItemID;references:ID"`
	Administrator    *User             `gorm:"foreignKey:UserID;references:ID"`
}

func (MedicationDose) TableName() string { return "medicacao" }
