package users

import (
	"context"
	"strings"
	"time"

	"github.com/donazulmira/moradores-backend/internal/repo"
	"github.com/donazulmira/moradores-backend/pkg/db/models"
	"github.com/donazulmira/moradores-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository exposes user-related persistence operations.
type Repository struct {
	base repo.Base
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{base: repo.NewBase(db)}
}

// Create inserts a new user.
func (r *Repository) Create(ctx context.Context, user *models.User) error {
	return r.base.DB(ctx).Create(user).Error
}

// FindByID loads a user by id.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := r.base.DB(ctx).First(&user, "id_usuario = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail matches the e-mail case-insensitively.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.base.DB(ctx).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByCPF loads the user registered with the given digits-only CPF.
func (r *Repository) FindByCPF(ctx context.Context, cpf string) (*models.User, error) {
	var user models.User
	if err := r.base.DB(ctx).Where("cpf = ?", cpf).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindFirstByRole returns the lowest id holding the role.
func (r *Repository) FindFirstByRole(ctx context.Context, role string) (*models.User, error) {
	var user models.User
	err := r.base.DB(ctx).
		Where("funcao = ?", role).
		Order("id_usuario asc").
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByResetToken loads the user holding an outstanding reset token.
func (r *Repository) FindByResetToken(ctx context.Context, token string) (*models.User, error) {
	var user models.User
	if err := r.base.DB(ctx).Where("reset_token = ?", token).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// List returns one page of users matching the filter.
func (r *Repository) List(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.User, int64, error) {
	return repo.Page[models.User](ctx, r.base, repo.PageQuery{
		Scope:  filter.scope,
		Order:  "id_usuario asc",
		Params: params,
	})
}

// Update writes the given columns.
func (r *Repository) Update(ctx context.Context, id int64, columns map[string]any) error {
	if len(columns) == 0 {
		return nil
	}
	return r.base.DB(ctx).
		Model(&models.User{}).
		Where("id_usuario = ?", id).
		Updates(columns).Error
}

// Delete removes the user. It reports false when no row matched.
func (r *Repository) Delete(ctx context.Context, id int64) (bool, error) {
	res := r.base.DB(ctx).Where("id_usuario = ?", id).Delete(&models.User{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// SetResetToken stores a reset token, replacing any previous one.
func (r *Repository) SetResetToken(ctx context.Context, id int64, token string, expiresAt time.Time) error {
	return r.Update(ctx, id, map[string]any{
		"reset_token":        token,
		"reset_token_expira": expiresAt,
	})
}

// ClearResetTokenIf drops the reset token only while it is still token, so a
// newer token issued in the meantime survives.
func (r *Repository) ClearResetTokenIf(ctx context.Context, id int64, token string) (bool, error) {
	res := r.base.DB(ctx).
		Model(&models.User{}).
		Where("id_usuario = ? AND reset_token = ?", id, token).
		Updates(map[string]any{
			"reset_token":        gorm.Expr("NULL"),
			"reset_token_expira": gorm.Expr("NULL"),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ResetPassword stores the new hash and clears the token only if the token
// still matches. It reports false when another request consumed it first.
func (r *Repository) ResetPassword(ctx context.Context, id int64, token, passwordHash string) (bool, error) {
	res := r.base.DB(ctx).
		Model(&models.User{}).
		Where("id_usuario = ? AND reset_token = ?", id, token).
		Updates(map[string]any{
			"senha_hash":         passwordHash,
			"reset_token":        gorm.Expr("NULL"),
			"reset_token_expira": gorm.Expr("NULL"),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
