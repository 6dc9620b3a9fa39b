package auth

import "strings"

type Role string

const (
	RoleAdmin      Role = "Admin"
	RoleController Role = "Controller"
	RoleViewer     Role = "Viewer"
)

// Roles in display order.
var Roles = []Role{RoleAdmin, RoleController, RoleViewer}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleController, RoleViewer:
		return true
	}
	return false
}

// ParseRole accepts canonical role names case-insensitively, plus the legacy
// French labels stored by earlier deployments.
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin":
		return RoleAdmin, true
	case "controller", "contrôleur", "controleur":
		return RoleController, true
	case "viewer", "utilisateur":
		return RoleViewer, true
	}
	return "", false
}

type Permission string

const (
	MachinesRead   Permission = "machines:read"
	MachinesCreate Permission = "machines:create"
	MachinesUpdate Permission = "machines:update"
	MachinesDelete Permission = "machines:delete"
	ClientsRead    Permission = "clients:read"
	ClientsCreate  Permission = "clients:create"
	ClientsUpdate  Permission = "clients:update"
	ClientsDelete  Permission = "clients:delete"
	UsersRead      Permission = "users:read"
	UsersCreate    Permission = "users:create"
	UsersUpdate    Permission = "users:update"
	UsersDelete    Permission = "users:delete"
)

var rolePermissions = map[Role]map[Permission]struct{}{
	RoleAdmin: set(
		MachinesRead, MachinesCreate, MachinesUpdate, MachinesDelete,
		ClientsRead, ClientsCreate, ClientsUpdate, ClientsDelete,
		UsersRead, UsersCreate, UsersUpdate, UsersDelete,
	),
	RoleController: set(
		MachinesRead, MachinesCreate, MachinesUpdate,
		ClientsRead, ClientsCreate, ClientsUpdate,
	),
	RoleViewer: set(MachinesRead, ClientsRead),
}

func set(perms ...Permission) map[Permission]struct{} {
	m := make(map[Permission]struct{}, len(perms))
	for _, p := range perms {
		m[p] = struct{}{}
	}
	return m
}

// HasPermission reports whether role grants perm. Unknown roles grant nothing.
func HasPermission(role Role, perm Permission) bool {
	_, ok := rolePermissions[role][perm]
	return ok
}

// PermissionsFor lists the permissions granted to role.
func PermissionsFor(role Role) []Permission {
	out := make([]Permission, 0, len(rolePermissions[role]))
	for _, p := range []Permission{
		MachinesRead, MachinesCreate, MachinesUpdate, MachinesDelete,
		ClientsRead, ClientsCreate, ClientsUpdate, ClientsDelete,
		UsersRead, UsersCreate, UsersUpdate, UsersDelete,
	} {
		if HasPermission(role, p) {
			out = append(out, p)
		}
	}
	return out
}

func IsAdmin(role Role) bool { return role == RoleAdmin }

// CanWrite gates create and update on machines and clients.
func CanWrite(role Role) bool { return role == RoleAdmin || role == RoleController }

func CanDelete(role Role) bool { return role == RoleAdmin }
