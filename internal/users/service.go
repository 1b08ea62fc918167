package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/donazulmira/moradores-backend/pkg/config"
	"github.com/donazulmira/moradores-backend/pkg/cpf"
	"github.com/donazulmira/moradores-backend/pkg/db"
	"github.com/donazulmira/moradores-backend/pkg/db/models"
	"github.com/donazulmira/moradores-backend/pkg/enums"
	pkgerrors "github.com/donazulmira/moradores-backend/pkg/errors"
	"github.com/donazulmira/moradores-backend/pkg/pagination"
	"github.com/donazulmira/moradores-backend/pkg/security"
	"gorm.io/gorm"
)

const (
	notFoundMessage      = "Usuário não encontrado"
	cpfConflictMessage   = "Usuario cadastrado no sistema"
	emailConflictMessage = "Email já cadastrado no sistema"
	noChangesMessage     = "Nenhuma alteração detectada"
	invalidCPFMessage    = "CPF inválido."
	invalidRoleMessage   = "Função inválida."
)

// Service manages staff accounts.
type Service interface {
	Create(ctx context.Context, req CreateUserRequest) (*UserDTO, error)
	List(ctx context.Context, filter ListFilter, params pagination.Params) (pagination.Result[UserDTO], error)
	Get(ctx context.Context, id int64) (*UserDTO, error)
	Lookup(ctx context.Context, lookup Lookup) (*UserDTO, error)
	Update(ctx context.Context, id int64, req UpdateUserRequest) (*UpdateResult, error)
	Delete(ctx context.Context, id int64) error
}

type userRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id int64) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByCPF(ctx context.Context, cpf string) (*models.User, error)
	FindFirstByRole(ctx context.Context, role string) (*models.User, error)
	List(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.User, int64, error)
	Update(ctx context.Context, id int64, columns map[string]any) error
	Delete(ctx context.Context, id int64) (bool, error)
}

type service struct {
	repo     userRepository
	password config.PasswordConfig
}

// ServiceParams bundles the dependencies required to build a users service.
type ServiceParams struct {
	Repo           userRepository
	PasswordConfig config.PasswordConfig
}

// NewService constructs a users service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	return &service{repo: params.Repo, password: params.PasswordConfig}, nil
}

func (s *service) Create(ctx context.Context, req CreateUserRequest) (*UserDTO, error) {
	cpfDigits := cpf.Normalize(req.CPF)
	if !cpf.Valid(cpfDigits) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, invalidCPFMessage)
	}
	role, err := enums.ParseRole(req.Role)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, invalidRoleMessage)
	}
	email := normalizeEmail(req.Email)

	if err := s.ensureCPFAvailable(ctx, cpfDigits, 0); err != nil {
		return nil, err
	}
	if err := s.ensureEmailAvailable(ctx, email, 0); err != nil {
		return nil, err
	}

	hash, err := security.HashPassword(req.Password, s.password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	user := &models.User{
		Username:     strings.TrimSpace(req.Username),
		FullName:     strings.TrimSpace(req.FullName),
		CPF:          cpfDigits,
		Email:        &email,
		PasswordHash: hash,
		Role:         role,
		Active:       active,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, mapUniqueViolation(err, "create user")
	}
	return FromModel(user), nil
}

func (s *service) List(ctx context.Context, filter ListFilter, params pagination.Params) (pagination.Result[UserDTO], error) {
	if filter.CPF != "" {
		filter.CPF = cpf.Normalize(filter.CPF)
	}
	rows, total, err := s.repo.List(ctx, filter, params)
	if err != nil {
		return pagination.Result[UserDTO]{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list users")
	}
	return pagination.Map(pagination.NewResult(rows, total, params), fromModelValue), nil
}

func (s *service) Get(ctx context.Context, id int64) (*UserDTO, error) {
	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(user), nil
}

func (s *service) Lookup(ctx context.Context, lookup Lookup) (*UserDTO, error) {
	var (
		user *models.User
		err  error
	)
	switch l := lookup.(type) {
	case ByCPF:
		user, err = s.repo.FindByCPF(ctx, l.CPF)
	case ByEmail:
		user, err = s.repo.FindByEmail(ctx, l.Email)
	case ByRole:
		user, err = s.repo.FindFirstByRole(ctx, l.Role.String())
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, lookupArgsMessage)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	return FromModel(user), nil
}

func (s *service) Update(ctx context.Context, id int64, req UpdateUserRequest) (*UpdateResult, error) {
	current, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	columns := map[string]any{}
	var changed []string

	if req.Username != nil {
		v := strings.TrimSpace(*req.Username)
		if v != current.Username {
			columns["nome_usuario"] = v
			changed = append(changed, "nome_usuario")
		}
	}
	if req.FullName != nil {
		v := strings.TrimSpace(*req.FullName)
		if v != current.FullName {
			columns["nome_completo"] = v
			changed = append(changed, "nome_completo")
		}
	}
	if req.CPF != nil {
		v := cpf.Normalize(*req.CPF)
		if !cpf.Valid(v) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, invalidCPFMessage)
		}
		if v != current.CPF {
			if err := s.ensureCPFAvailable(ctx, v, id); err != nil {
				return nil, err
			}
			columns["cpf"] = v
			changed = append(changed, "cpf")
		}
	}
	if req.Email != nil {
		v := normalizeEmail(*req.Email)
		if v != strings.ToLower(current.EmailValue()) {
			if err := s.ensureEmailAvailable(ctx, v, id); err != nil {
				return nil, err
			}
			columns["email"] = v
			changed = append(changed, "email")
		}
	}
	if req.Role != nil {
		role, err := enums.ParseRole(*req.Role)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, invalidRoleMessage)
		}
		if role != current.Role {
			columns["funcao"] = role
			changed = append(changed, "funcao")
		}
	}
	if req.Active != nil && *req.Active != current.Active {
		columns["situacao"] = *req.Active
		changed = append(changed, "situacao")
	}
	if req.Password != nil && *req.Password != "" {
		hash, err := security.HashPassword(*req.Password, s.password)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
		}
		columns["senha_hash"] = hash
		changed = append(changed, "senha")
	}

	if err := s.repo.Update(ctx, id, columns); err != nil {
		return nil, mapUniqueViolation(err, "update user")
	}
	updated, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return &UpdateResult{Message: changeMessage(changed), User: FromModel(updated)}, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete user")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage)
	}
	return nil
}

func (s *service) load(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	return user, nil
}

func (s *service) ensureCPFAvailable(ctx context.Context, cpfDigits string, selfID int64) error {
	existing, err := s.repo.FindByCPF(ctx, cpfDigits)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil
	case err != nil:
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check cpf")
	case existing.ID != selfID:
		return pkgerrors.New(pkgerrors.CodeConflict, cpfConflictMessage)
	}
	return nil
}

func (s *service) ensureEmailAvailable(ctx context.Context, email string, selfID int64) error {
	existing, err := s.repo.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil
	case err != nil:
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check email")
	case existing.ID != selfID:
		return pkgerrors.New(pkgerrors.CodeConflict, emailConflictMessage)
	}
	return nil
}

func mapUniqueViolation(err error, step string) error {
	switch {
	case db.IsUniqueViolationOn(err, "usuario", "cpf"):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, cpfConflictMessage)
	case db.IsUniqueViolationOn(err, "usuario", "email"):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, emailConflictMessage)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, step)
}

func changeMessage(fields []string) string {
	if len(fields) == 0 {
		return noChangesMessage
	}
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+" alterado com sucesso")
	}
	return strings.Join(parts, " | ")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
