package domain

// Role is the application-wide role carried in the identity claim.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleGestor Role = "gestor"
	RoleViewer Role = "visualizador"
)

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleGestor, RoleViewer:
		return true
	}
	return false
}

// User is an internal user of the budgeting backend.
type User struct {
	UserID       string `json:"id_usuario"`
	Name         string `json:"nome"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Role         Role   `json:"papel"`
	AuditFields
}

// Actor identifies who is performing an operation. Services consult the
// workflow policy table with the actor's role; handlers build it from the
// validated identity claim.
type Actor struct {
	UserID string
	Name   string
	Role   Role
}
