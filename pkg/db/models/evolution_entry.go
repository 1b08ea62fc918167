package models

import "time"

// EvolutionEntry is a clinical note about one resident.
type EvolutionEntry struct {
	ID         int64     `gorm:"column:id_evolucao_individual;primaryKey;autoIncrement"`
	ResidentID int64     `gorm:"column:id_morador;not null;index"`
	UserID     int64     `gorm:"column:id_usuario;not null;index"`
	Notes      string    `gorm:"column:observacoes;type:varchar(1000);not null"`
	OccurredAt time.Time `gorm:"column:data_hora;not null;index"`

	Resident *Resident `gorm:"foreignKey:ResidentID;references:ID"`
	Author   *User     `gorm:"foreignKey:UserID;references:ID"`
}

func (EvolutionEntry) TableName() string { return "evolucaoindividual" }
