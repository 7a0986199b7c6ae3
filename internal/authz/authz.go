// Package authz is the role and ownership gate evaluated before mutations.
package authz

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"afterschool/internal/apperr"
)

// Role is the tier of an authenticated teacher.
type Role int16

const (
	SuperAdmin Role = 0
	Admin      Role = 1
)

// ParseRole accepts the wire names used in tokens and payloads.
func ParseRole(s string) (Role, error) {
	switch s {
	case "super_admin":
		return SuperAdmin, nil
	case "admin":
		return Admin, nil
	}
	return 0, fmt.Errorf("unknown role %q", s)
}

func (r Role) String() string {
	if r == SuperAdmin {
		return "super_admin"
	}
	return "admin"
}

func (r Role) MarshalJSON() ([]byte, error) { return json.Marshal(r.String()) }

func (r *Role) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Value stores the role as its smallint code.
func (r Role) Value() (driver.Value, error) { return int64(r), nil }

// Scan reads the smallint code back.
func (r *Role) Scan(src any) error {
	switch v := src.(type) {
	case int64:
		*r = Role(v)
	case int32:
		*r = Role(v)
	case int16:
		*r = Role(v)
	default:
		return fmt.Errorf("authz: cannot scan %T into Role", src)
	}
	if *r != SuperAdmin && *r != Admin {
		return fmt.Errorf("authz: invalid role code %d", *r)
	}
	return nil
}

// Claim is the verified identity handed to services.
type Claim struct {
	Subject uuid.UUID
	Role    Role
	Expiry  time.Time
}

// Decision is the outcome of a gate.
type Decision struct {
	Allowed bool
	Reason  string
}

// Err converts a deny into a Permission error; nil when allowed.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return apperr.Permissionf("%s", d.Reason)
}

// Authorize allows super admins and the resource owner.
func Authorize(c Claim, owner uuid.UUID) Decision {
	if c.Role == SuperAdmin {
		return Decision{Allowed: true}
	}
	if c.Subject != uuid.Nil && c.Subject == owner {
		return Decision{Allowed: true}
	}
	return Decision{Reason: "permission denied: not the owner of this resource"}
}

// RequireRole allows only actors holding exactly the given role, or
// SuperAdmin which outranks every role.
func RequireRole(c Claim, role Role) Decision {
	if c.Role == SuperAdmin || c.Role == role {
		return Decision{Allowed: true}
	}
	return Decision{Reason: fmt.Sprintf("permission denied: requires %s", role)}
}
