package users

import (
	"strings"

	"github.com/donazulmira/moradores-backend/pkg/cpf"
	"github.com/donazulmira/moradores-backend/pkg/enums"
	pkgerrors "github.com/donazulmira/moradores-backend/pkg/errors"
)

const lookupArgsMessage = "Informe apenas um dos parâmetros: cpf, email ou funcao."

// Lookup selects a single user by exactly one key. It is one of ByCPF,
// ByEmail or ByRole.
type Lookup interface {
	lookup()
}

type ByCPF struct{ CPF string }

type ByEmail struct{ Email string }

// ByRole matches the first user holding the role.
type ByRole struct{ Role enums.Role }

func (ByCPF) lookup()   {}
func (ByEmail) lookup() {}
func (ByRole) lookup()  {}

// ParseLookup builds a Lookup from the buscar query parameters. Exactly one
// of them must be non-empty.
func ParseLookup(cpfValue, email, role string) (Lookup, error) {
	var found []Lookup
	if v := strings.TrimSpace(cpfValue); v != "" {
		found = append(found, ByCPF{CPF: cpf.Normalize(v)})
	}
	if v := strings.TrimSpace(email); v != "" {
		found = append(found, ByEmail{Email: v})
	}
	roleValue := strings.TrimSpace(role)
	if roleValue != "" {
		found = append(found, ByRole{})
	}
	if len(found) != 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, lookupArgsMessage)
	}
	if _, ok := found[0].(ByRole); ok {
		parsed, err := enums.ParseRole(roleValue)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, invalidRoleMessage)
		}
		return ByRole{Role: parsed}, nil
	}
	return found[0], nil
}
