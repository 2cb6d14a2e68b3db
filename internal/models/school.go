package models

import "strings"

// Level is a grade tier ("niveau") grouping classes.
type Level struct {
	ID  string `json:"_id"`
	Nom string `json:"nom"`
}

// Class is a group of students within a level.
type Class struct {
	ID          string `json:"_id"`
	Nom         string `json:"nom"`
	Niveau      Ref    `json:"niveau"`
	Enseignants []Ref  `json:"enseignants,omitempty"`
	Eleves      []Ref  `json:"eleves,omitempty"`
}

// Student ("élève") belongs to one class.
type Student struct {
	ID             string `json:"_id"`
	Nom            string `json:"nom"`
	Prenom         string `json:"prenom"`
	NumInscription string `json:"numInscription"`
	Niveau         Ref    `json:"niveau"`
	Classe         Ref    `json:"classe"`
	HasPassed      *bool  `json:"hasPassed,omitempty"`
}

// FullName is the display name used in selectors and exports.
func (s Student) FullName() string {
	return strings.TrimSpace(s.Prenom + " " + s.Nom)
}

// PassStatus renders the promotion state in French.
func (s Student) PassStatus() string {
	switch {
	case s.HasPassed == nil:
		return "En cours"
	case *s.HasPassed:
		return "Admis"
	default:
		return "Redouble"
	}
}

// UpdateClassInput is the editable part of a class.
type UpdateClassInput struct {
	Nom         string   `json:"nom" validate:"required,notblank"`
	Niveau      string   `json:"niveau" validate:"required"`
	Enseignants []string `json:"enseignants"`
	Eleves      []string `json:"eleves"`
}

// PassInput promotes or holds back a student.
type PassInput struct {
	EleveID   string `json:"eleveId"`
	HasPassed bool   `json:"hasPassed"`
}
