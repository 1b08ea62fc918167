package auth

import (
	"fmt"
	"strconv"

	"github.com/donazulmira/moradores-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// AccessTokenPayload captures the data available when minting an access JWT.
type AccessTokenPayload struct {
	UserID int64
	Name   string
	Email  string
	Role   enums.Role
}

// RefreshTokenPayload identifies the subject of a refresh token. JTI is
// optional; a random one is generated when empty.
type RefreshTokenPayload struct {
	UserID int64
	JTI    string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	Name  string     `json:"nome"`
	Email string     `json:"email"`
	Role  enums.Role `json:"funcao"`
	Type  string     `json:"typ"`
	jwt.RegisteredClaims
}

// RefreshTokenClaims only carries the subject; everything else is reloaded
// from storage on refresh.
type RefreshTokenClaims struct {
	Type string `json:"typ"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c *AccessTokenClaims) UserID() (int64, error) {
	return subjectID(c.Subject)
}

// UserID parses the subject claim.
func (c *RefreshTokenClaims) UserID() (int64, error) {
	return subjectID(c.Subject)
}

func subjectID(sub string) (int64, error) {
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid subject %q", sub)
	}
	return id, nil
}
