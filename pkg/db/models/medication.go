package models

type Medication struct {
	ID     int64  `gorm:"column:id_medicamento;primaryKey;autoIncrement"`
	Name   string `gorm:"column:nome_medicamento;not null;uniqueIndex"`
	Active bool   `gorm:"column:situacao;not null"`
}

func (Medication) TableName() string { return "medicamento" }
