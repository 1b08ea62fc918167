package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	pkgAuth "github.com/donazulmira/moradores-backend/pkg/auth"
	"github.com/donazulmira/moradores-backend/pkg/auth/session"
	"github.com/donazulmira/moradores-backend/pkg/config"
	"github.com/donazulmira/moradores-backend/pkg/db/models"
	"github.com/donazulmira/moradores-backend/pkg/enums"
	pkgerrors "github.com/donazulmira/moradores-backend/pkg/errors"
	"github.com/donazulmira/moradores-backend/pkg/logger"
	"github.com/donazulmira/moradores-backend/pkg/mailer"
	"github.com/donazulmira/moradores-backend/pkg/metrics"
	"github.com/donazulmira/moradores-backend/pkg/security"
	"gorm.io/gorm"
)

const (
	msgNoSuchAccount   = "Pessoa não autorizada!"
	msgInactive        = "Usuário não autorizado!"
	msgBadCredentials  = "Senha inválida!"
	msgNoEmail         = "Usuário sem e-mail cadastrado!"
	msgInvalidRefresh  = "Refresh token inválido ou expirado"
	msgLoggedOut       = "Sessão encerrada com sucesso"
	msgForgotGeneric   = "Se o e-mail estiver cadastrado, você receberá as instruções para redefinir sua senha."
	msgSendFailed      = "Não foi possível enviar o e-mail de recuperação. Tente novamente."
	msgInvalidReset    = "Token inválido ou expirado."
	msgExpiredReset    = "Token expirado. Solicite uma nova recuperação de senha."
	msgPasswordTooWeak = "A senha deve ter no mínimo 6 caracteres"
	msgPasswordReset   = "Senha redefinida com sucesso."

	minPasswordLength = 6
	defaultResetTTL   = time.Hour
	defaultMailWait   = 15 * time.Second
)

// Service defines the behavior needed by the auth controller.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*TokenResponse, error)
	Refresh(ctx context.Context, req RefreshRequest) (*TokenResponse, error)
	Logout(ctx context.Context, req LogoutRequest) (*MessageResponse, error)
	ForgotPassword(ctx context.Context, req ForgotPasswordRequest) (*MessageResponse, error)
	ResetPassword(ctx context.Context, req ResetPasswordRequest) (*MessageResponse, error)
}

type userRepository interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByResetToken(ctx context.Context, token string) (*models.User, error)
	SetResetToken(ctx context.Context, id int64, token string, expiresAt time.Time) error
	ClearResetTokenIf(ctx context.Context, id int64, token string) (bool, error)
	ResetPassword(ctx context.Context, id int64, token, passwordHash string) (bool, error)
}

// SessionManager tracks live refresh tokens. It is optional.
type SessionManager interface {
	Register(ctx context.Context, userID int64) (string, error)
	Rotate(ctx context.Context, userID int64, oldJTI string) (string, error)
	Revoke(ctx context.Context, userID int64, jti string) error
}

type service struct {
	users       userRepository
	sessions    SessionManager
	mail        mailer.Sender
	metrics     *metrics.Metrics
	logg        *logger.Logger
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
	resetTTL    time.Duration
	mailTimeout time.Duration
	now         func() time.Time
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	UserRepo       userRepository
	SessionManager SessionManager
	Mailer         mailer.Sender
	Metrics        *metrics.Metrics
	Logger         *logger.Logger
	JWTConfig      config.JWTConfig
	PasswordConfig config.PasswordConfig
	ResetConfig    config.PasswordResetConfig
	MailConfig     config.MailConfig
	Now            func() time.Time
}

// NewService constructs the auth service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.Mailer == nil {
		return nil, fmt.Errorf("mailer is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	resetTTL := params.ResetConfig.TokenTTL
	if resetTTL <= 0 {
		resetTTL = defaultResetTTL
	}
	mailTimeout := params.MailConfig.Timeout
	if mailTimeout <= 0 {
		mailTimeout = defaultMailWait
	}
	return &service{
		users:       params.UserRepo,
		sessions:    params.SessionManager,
		mail:        params.Mailer,
		metrics:     params.Metrics,
		logg:        logg,
		jwtCfg:      params.JWTConfig,
		passwordCfg: params.PasswordConfig,
		resetTTL:    resetTTL,
		mailTimeout: mailTimeout,
		now:         now,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (resp *TokenResponse, err error) {
	defer func() { s.metrics.AuthEvent("login", err == nil) }()

	user, err := s.users.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, msgNoSuchAccount)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	if !user.Active {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, msgInactive)
	}
	if !security.CheckPassword(req.Password, user.PasswordHash) {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, msgBadCredentials)
	}
	if strings.TrimSpace(user.EmailValue()) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, msgNoEmail)
	}

	jti := ""
	if s.sessions != nil {
		jti, err = s.sessions.Register(ctx, user.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "register refresh session")
		}
	}
	return s.issueTokens(ctx, user, jti)
}

func (s *service) Refresh(ctx context.Context, req RefreshRequest) (resp *TokenResponse, err error) {
	defer func() { s.metrics.AuthEvent("refresh", err == nil) }()

	claims, err := pkgAuth.ParseRefreshTokenAt(s.jwtCfg, req.RefreshToken, s.now())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, msgInvalidRefresh)
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, msgInvalidRefresh)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, msgInactive)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	if !user.Active {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, msgInactive)
	}
	if strings.TrimSpace(user.EmailValue()) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, msgNoEmail)
	}

	jti := ""
	if s.sessions != nil {
		jti, err = s.sessions.Rotate(ctx, user.ID, claims.ID)
		if err != nil {
			if errors.Is(err, session.ErrInvalidRefreshToken) {
				return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, msgInvalidRefresh)
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotate refresh session")
		}
	}
	return s.issueTokens(ctx, user, jti)
}

func (s *service) Logout(ctx context.Context, req LogoutRequest) (resp *MessageResponse, err error) {
	defer func() { s.metrics.AuthEvent("logout", err == nil) }()

	claims, err := pkgAuth.ParseRefreshTokenAt(s.jwtCfg, req.RefreshToken, s.now())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, msgInvalidRefresh)
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, msgInvalidRefresh)
	}
	if s.sessions != nil {
		if err := s.sessions.Revoke(ctx, userID, claims.ID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke refresh session")
		}
	}
	return &MessageResponse{Message: msgLoggedOut}, nil
}

func (s *service) ForgotPassword(ctx context.Context, req ForgotPasswordRequest) (resp *MessageResponse, err error) {
	defer func() { s.metrics.AuthEvent("forgot_password", err == nil) }()

	generic := &MessageResponse{Message: msgForgotGeneric}

	user, err := s.users.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return generic, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	if !user.Active {
		return generic, nil
	}

	token, err := security.NewResetToken()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate reset token")
	}
	if err := s.users.SetResetToken(ctx, user.ID, token, s.now().Add(s.resetTTL)); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store reset token")
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.mailTimeout)
	defer cancel()
	sendErr := s.mail.SendPasswordReset(sendCtx, mailer.PasswordReset{
		To:       user.EmailValue(),
		Name:     user.FullName,
		Token:    token,
		ValidFor: s.resetTTL,
	})
	if sendErr != nil {
		logCtx := s.logg.WithUserID(ctx, user.ID)
		s.logg.Error(logCtx, "auth.forgot_password.send_failed", sendErr)
		if _, err := s.users.ClearResetTokenIf(context.WithoutCancel(ctx), user.ID, token); err != nil {
			s.logg.Error(logCtx, "auth.forgot_password.rollback_failed", err)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, sendErr, msgSendFailed)
	}
	return generic, nil
}

func (s *service) ResetPassword(ctx context.Context, req ResetPasswordRequest) (resp *MessageResponse, err error) {
	defer func() { s.metrics.AuthEvent("reset_password", err == nil) }()

	token := strings.TrimSpace(req.Token)
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msgInvalidReset)
	}
	if len(req.NewPassword) < minPasswordLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msgPasswordTooWeak)
	}

	user, err := s.users.FindByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, msgInvalidReset)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup reset token")
	}
	if !user.Active {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, msgInactive)
	}
	if user.ResetTokenExpiry == nil || s.now().After(*user.ResetTokenExpiry) {
		if _, err := s.users.ClearResetTokenIf(ctx, user.ID, token); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear expired reset token")
		}
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msgExpiredReset)
	}

	hash, err := security.HashPassword(req.NewPassword, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	updated, err := s.users.ResetPassword(ctx, user.ID, token, hash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store password")
	}
	if !updated {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msgInvalidReset)
	}
	return &MessageResponse{Message: msgPasswordReset}, nil
}

func (s *service) issueTokens(ctx context.Context, user *models.User, jti string) (*TokenResponse, error) {
	role, err := enums.ParseRole(string(user.Role))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, msgInactive)
	}
	now := s.now().UTC()
	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		UserID: user.ID,
		Name:   user.Username,
		Email:  user.EmailValue(),
		Role:   role,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}
	refreshToken, err := pkgAuth.MintRefreshToken(s.jwtCfg, now, pkgAuth.RefreshTokenPayload{
		UserID: user.ID,
		JTI:    jti,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint refresh token")
	}
	s.logg.Info(s.logg.WithUserID(ctx, user.ID), "auth.tokens_issued")
	return &TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Role:         role,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
