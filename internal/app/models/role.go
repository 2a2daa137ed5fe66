package models

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Role identifies a user role. The numeric value is the roles.role_id key.
type Role int

const (
	RoleUnknown     Role = 0
	RoleAdmin       Role = 1
	RoleManager     Role = 2
	RoleCoordinator Role = 3
	RoleStudent     Role = 4
)

// RoleDefinition describes a row of the roles table
type RoleDefinition struct {
	ID          int    `json:"role_id"`
	Code        string `json:"role_code"`
	Name        string `json:"role_name"`
	Description string `json:"description"`
}

var builtinRoles = []RoleDefinition{
	{ID: int(RoleAdmin), Code: "ADMIN", Name: "Administrator", Description: "Full system access"},
	{ID: int(RoleManager), Code: "MNGR", Name: "Marketing Manager", Description: "University marketing manager"},
	{ID: int(RoleCoordinator), Code: "COORD", Name: "Faculty Coordinator", Description: "Faculty marketing coordinator"},
	{ID: int(RoleStudent), Code: "STUD", Name: "Student", Description: "Regular student user"},
}

// BuiltinRoles returns the role definitions the system ships with
func BuiltinRoles() []RoleDefinition {
	out := make([]RoleDefinition, len(builtinRoles))
	copy(out, builtinRoles)
	return out
}

// ParseRole accepts a numeric id ("3") or a role code ("COORD", any case).
func ParseRole(s string) (Role, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if r := Role(n); r.Valid() {
			return r, true
		}
		return RoleUnknown, false
	}
	for _, def := range builtinRoles {
		if strings.EqualFold(def.Code, s) {
			return Role(def.ID), true
		}
	}
	return RoleUnknown, false
}

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	return r >= RoleAdmin && r <= RoleStudent
}

func (r Role) definition() (RoleDefinition, bool) {
	if !r.Valid() {
		return RoleDefinition{}, false
	}
	return builtinRoles[r-1], true
}

// Code returns the short role code, e.g. "MNGR"
func (r Role) Code() string {
	if def, ok := r.definition(); ok {
		return def.Code
	}
	return "UNKNOWN"
}

// Name returns the display name of the role
func (r Role) Name() string {
	if def, ok := r.definition(); ok {
		return def.Name
	}
	return "Unknown"
}

func (r Role) String() string { return r.Code() }

// Is reports whether r is any of the given roles
func (r Role) Is(roles ...Role) bool {
	for _, other := range roles {
		if r == other {
			return true
		}
	}
	return false
}

// MarshalJSON encodes the role as its code
func (r Role) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Code())
}

// UnmarshalJSON accepts a JSON number or string in any form ParseRole understands
func (r *Role) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = RoleUnknown
		return nil
	}
	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	}
	parsed, ok := ParseRole(raw)
	if !ok {
		return fmt.Errorf("unknown role %q", raw)
	}
	*r = parsed
	return nil
}
