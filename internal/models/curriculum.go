package models

// Program is a curriculum track associated with a level.
type Program struct {
	ID     string `json:"_id"`
	Title  string `json:"title"`
	Niveau Ref    `json:"niveau"`
	Units  []Unit `json:"units,omitempty"`
}

// Unit groups lessons within a program.
type Unit struct {
	ID          string `json:"_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Program     Ref    `json:"programId"`
}

// Lesson is instructional content with optional embedded tests.
type Lesson struct {
	ID       string `json:"_id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	MediaURL string `json:"mediaUrl,omitempty"`
	Program  Ref    `json:"programId"`
	Unit     Ref    `json:"unitId"`
	Tests    []Test `json:"tests,omitempty"`
}

// Test is an assessment nested under a lesson.
type Test struct {
	ID       string `json:"_id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	MediaURL string `json:"mediaUrl,omitempty"`
	Lesson   Ref    `json:"lessonId"`
}

// UnitInput creates or edits a unit.
type UnitInput struct {
	Title       string `json:"title" validate:"required,notblank"`
	Description string `json:"description"`
	ProgramID   string `json:"programId" validate:"required"`
}
