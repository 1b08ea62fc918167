package users

import (
	"strings"
	"time"

	"github.com/donazulmira/moradores-backend/pkg/db/models"
	"github.com/donazulmira/moradores-backend/pkg/enums"
	"gorm.io/gorm"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID        int64      `json:"id_usuario"`
	Username  string     `json:"nome_usuario"`
	FullName  string     `json:"nome_completo"`
	CPF       string     `json:"cpf"`
	Email     *string    `json:"email"`
	Role      enums.Role `json:"funcao"`
	Active    bool       `json:"situacao"`
	CreatedAt time.Time  `json:"criado_em"`
	UpdatedAt time.Time  `json:"atualizado_em"`
}

// CreateUserRequest is the body of POST /usuario.
type CreateUserRequest struct {
	Username string `json:"nome_usuario" validate:"required"`
	Password string `json:"senha" validate:"required,min=6"`
	FullName string `json:"nome_completo" validate:"required"`
	CPF      string `json:"cpf" validate:"required,cpf"`
	Email    string `json:"email" validate:"required,email"`
	Role     string `json:"funcao" validate:"required,role"`
	Active   *bool  `json:"situacao"`
}

// UpdateUserRequest is the body of PATCH /usuario/{id}; absent fields are kept.
type UpdateUserRequest struct {
	Username *string `json:"nome_usuario" validate:"omitempty,min=1"`
	Password *string `json:"senha" validate:"omitempty,min=6"`
	FullName *string `json:"nome_completo" validate:"omitempty,min=1"`
	CPF      *string `json:"cpf" validate:"omitempty,cpf"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Role     *string `json:"funcao" validate:"omitempty,role"`
	Active   *bool   `json:"situacao"`
}

// UpdateResult lists the changed fields alongside the stored user.
type UpdateResult struct {
	Message string   `json:"message"`
	User    *UserDTO `json:"usuario"`
}

// ListFilter narrows GET /usuario.
type ListFilter struct {
	FullName string
	CPF      string
	Email    string
	Role     string
	Active   *bool
}

func (f ListFilter) scope(db *gorm.DB) *gorm.DB {
	if v := strings.TrimSpace(f.FullName); v != "" {
		db = db.Where("nome_completo LIKE ?", "%"+v+"%")
	}
	if v := strings.TrimSpace(f.CPF); v != "" {
		db = db.Where("cpf = ?", v)
	}
	if v := strings.TrimSpace(f.Email); v != "" {
		db = db.Where("LOWER(email) LIKE ?", "%"+strings.ToLower(v)+"%")
	}
	if v := strings.TrimSpace(f.Role); v != "" {
		db = db.Where("funcao LIKE ?", "%"+v+"%")
	}
	if f.Active != nil {
		db = db.Where("situacao = ?", *f.Active)
	}
	return db
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:        u.ID,
		Username:  u.Username,
		FullName:  u.FullName,
		CPF:       u.CPF,
		Email:     u.Email,
		Role:      u.Role,
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func fromModelValue(u models.User) UserDTO {
	return *FromModel(&u)
}
