package models

import "time"

// Resident is a person living at the facility.
type Resident struct {
	ID           int64     `gorm:"column:id_morador;primaryKey;autoIncrement"`
	FullName     string    `gorm:"column:nome_completo;not null"`
	CPF          string    `gorm:"column:cpf;not null;uniqueIndex"`
	RG           *string   `gorm:"column:rg"`
	Active       bool      `gorm:"column:situacao;not null"`
	RegisteredAt time.Time `gorm:"column:data_cadastro;autoCreateTime"`
	UserID       int64     `gorm:"column:id_usuario;not null;index"`

	Registrar *User `gorm:"foreignKey:UserID;references:ID"`
}

func (Resident) TableName() string { return "morador" }
