package models

// UserRole represents the dashboard roles.
type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleTeacher UserRole = "teacher"
	RoleParent  UserRole = "parent"
	RoleStudent UserRole = "student"
)

// Valid reports whether the role is one the dashboard knows.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleParent, RoleStudent:
		return true
	}
	return false
}

// Account statuses of the approval workflow.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// MaxChildren is the number of children a parent account can link.
const MaxChildren = 4

// User is an account of any role; optional fields depend on the role.
type User struct {
	ID             string   `json:"_id"`
	Role           UserRole `json:"role"`
	Nom            string   `json:"nom"`
	Prenom         string   `json:"prenom"`
	Email          string   `json:"email"`
	Telephone      string   `json:"telephone,omitempty"`
	Status         string   `json:"status,omitempty"`
	Image          string   `json:"image,omitempty"`
	Specialite     string   `json:"specialite,omitempty"`
	NumInscription string   `json:"numInscription,omitempty"`
	Niveau         *Ref     `json:"niveau,omitempty"`
	Classe         *Ref     `json:"classe,omitempty"`
	Children       []Child  `json:"children,omitempty"`
}

// Child links a parent to one student through its level and class.
type Child struct {
	Niveau string `json:"niveau" validate:"required"`
	Classe string `json:"classe" validate:"required"`
	Eleve  string `json:"eleve" validate:"required"`
}
