package rbac

import (
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

const (
	RoleAdmin = "admin"
	RoleGuest = "invitado"
)

const modelText = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && (p.obj == "*" || r.obj == p.obj) && (p.act == "*" || r.act == p.act)
`

// NewEnforcer builds the in-memory policy for the two staff roles. Admins may
// do everything; guests can browse and add roster entries but never edit,
// delete, export or touch the vacation ledger.
func NewEnforcer() (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}

	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}

	policies := [][]string{
		{RoleAdmin, "*", "*"},
		{RoleGuest, "roster", "read"},
		{RoleGuest, "roster", "create"},
		{RoleGuest, "vacation", "read"},
	}
	if _, err := e.AddPolicies(policies); err != nil {
		return nil, err
	}

	return e, nil
}
