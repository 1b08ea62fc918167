package enums

import (
	"fmt"
	"strings"
)

// Role is the staff function stored on the user and carried in the access
// token as "funcao".
type Role string

const (
	RoleAdministrador     Role = "Administrador"
	RoleEnfermeiro        Role = "Enfermeiro"
	RoleTecnicoEnfermagem Role = "TecnicoEnfermagem"
	RoleCuidador          Role = "Cuidador"
	RoleMedico            Role = "Medico"
	RoleFarmaceutico      Role = "Farmaceutico"
)

// RoleWildcard in an allow-list admits every role, including values outside
// the enumeration.
const RoleWildcard = "*"

var validRoles = []Role{
	RoleAdministrador,
	RoleEnfermeiro,
	RoleTecnicoEnfermagem,
	RoleCuidador,
	RoleMedico,
	RoleFarmaceutico,
}

// spellings written by older clients and seeds.
var roleAliases = map[string]Role{
	"administrador":         RoleAdministrador,
	"admin":                 RoleAdministrador,
	"enfermeiro":            RoleEnfermeiro,
	"enfermeira":            RoleEnfermeiro,
	"tecnicoenfermagem":     RoleTecnicoEnfermagem,
	"tecnico de enfermagem": RoleTecnicoEnfermagem,
	"técnico de enfermagem": RoleTecnicoEnfermagem,
	"tecnica_enfermagem":    RoleTecnicoEnfermagem,
	"tecnico_enfermagem":    RoleTecnicoEnfermagem,
	"cuidador":              RoleCuidador,
	"cuidadora":             RoleCuidador,
	"medico":                RoleMedico,
	"médico":                RoleMedico,
	"farmaceutico":          RoleFarmaceutico,
	"farmacêutico":          RoleFarmaceutico,
}

// Roles returns the closed set of roles.
func Roles() []Role {
	out := make([]Role, len(validRoles))
	copy(out, validRoles)
	return out
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRole converts raw input into a Role, accepting legacy spellings.
func ParseRole(value string) (Role, error) {
	trimmed := strings.TrimSpace(value)
	for _, candidate := range validRoles {
		if string(candidate) == trimmed {
			return candidate, nil
		}
	}
	if role, ok := roleAliases[strings.ToLower(trimmed)]; ok {
		return role, nil
	}
	return "", fmt.Errorf("invalid role %q", value)
}
