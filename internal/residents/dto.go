package residents

import (
	"strings"
	"time"

	"github.com/donazulmira/moradores-backend/pkg/db/models"
	"github.com/donazulmira/moradores-backend/pkg/types"
	"gorm.io/gorm"
)

type CreateResidentRequest struct {
	FullName     string           `json:"nome_completo" validate:"required"`
	CPF          string           `json:"cpf" validate:"required,cpf"`
	RG           string           `json:"rg" validate:"required"`
	Active       *bool            `json:"situacao" validate:"required"`
	RegisteredAt *types.Timestamp `json:"data_cadastro"`
}

// UpdateResidentRequest never moves the registering user.
type UpdateResidentRequest struct {
	FullName     *string          `json:"nome_completo" validate:"omitempty,min=1"`
	CPF          *string          `json:"cpf" validate:"omitempty,cpf"`
	RG           *string          `json:"rg"`
	Active       *bool            `json:"situacao"`
	RegisteredAt *types.Timestamp `json:"data_cadastro"`
}

type ListFilter struct {
	FullName string
	CPF      string
	Active   *bool
}

func (f ListFilter) scope(db *gorm.DB) *gorm.DB {
	if v := strings.TrimSpace(f.FullName); v != "" {
		db = db.Where("LOWER(nome_completo) LIKE ?", "%"+strings.ToLower(v)+"%")
	}
	if v := strings.TrimSpace(f.CPF); v != "" {
		db = db.Where("cpf = ?", v)
	}
	if f.Active != nil {
		db = db.Where("situacao = ?", *f.Active)
	}
	return db
}

type ResidentDTO struct {
	ID           int64     `json:"id_morador"`
	FullName     string    `json:"nome_completo"`
	CPF          string    `json:"cpf"`
	RG           *string   `json:"rg"`
	Active       bool      `json:"situacao"`
	RegisteredAt time.Time `json:"data_cadastro"`
	UserID       int64     `json:"id_usuario"`
	// RegistrarCPF is the CPF of the staff member who registered the resident.
	RegistrarCPF string `json:"cpf_usuario_cadastro,omitempty"`
}

func FromModel(m *models.Resident) *ResidentDTO {
	if m == nil {
		return nil
	}
	out := &ResidentDTO{
		ID:           m.ID,
		FullName:     m.FullName,
		CPF:          m.CPF,
		RG:           m.RG,
		Active:       m.Active,
		RegisteredAt: m.RegisteredAt,
		UserID:       m.UserID,
	}
	if m.Registrar != nil {
		out.RegistrarCPF = m.Registrar.CPF
	}
	return out
}

func fromModelValue(m models.Resident) ResidentDTO {
	return *FromModel(&m)
}
