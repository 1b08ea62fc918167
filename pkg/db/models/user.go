package models

import (
	"time"

	"github.com/donazulmira/moradores-backend/pkg/enums"
)

// User is a staff account.
type User struct {
	ID               int64      `gorm:"column:id_usuario;primaryKey;autoIncrement"`
	Username         string     `gorm:"column:nome_usuario;not null"`
	FullName         string     `gorm:"column:nome_completo;not null"`
	CPF              string     `gorm:"column:cpf;not null;uniqueIndex"`
	Email            *string    `gorm:"column:email;uniqueIndex"`
	PasswordHash     string     `gorm:"column:senha_hash;not null"`
	Role             enums.Role `gorm:"column:funcao;type:varchar(40);not null"`
	Active           bool       `gorm:"column:situacao;not null"`
	ResetToken       *string    `gorm:"column:reset_token;uniqueIndex"`
	ResetTokenExpiry *time.Time `gorm:"column:reset_token_expira"`
	CreatedAt        time.Time  `gorm:"column:criado_em;autoCreateTime"`
	UpdatedAt        time.Time  `gorm:"column:atualizado_em;autoUpdateTime"`
}

func (User) TableName() string { return "usuario" }

// EmailValue returns the e-mail or an empty string.
func (u User) EmailValue() string {
	if u.Email == nil {
		return ""
	}
	return *u.Email
}
