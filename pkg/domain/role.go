package domain

import dErrors "healx/pkg/domain-errors"

// Role determines which lifecycle actions a profile may invoke.
// Invariant: one of producer, regulator, distributor. Consumers verify
// anonymously and have no role.
type Role string

const (
	RoleProducer    Role = "producer"
	RoleRegulator   Role = "regulator"
	RoleDistributor Role = "distributor"
)

var validRoles = map[Role]bool{
	RoleProducer:    true,
	RoleRegulator:   true,
	RoleDistributor: true,
}

// ParseRole constructs a Role from external input.
func ParseRole(s string) (Role, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "role cannot be empty")
	}
	r := Role(s)
	if !r.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid role")
	}
	return r, nil
}

func (r Role) IsValid() bool {
	return validRoles[r]
}

func (r Role) String() string {
	return string(r)
}
