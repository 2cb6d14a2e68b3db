// Package curriculum holds the lesson and test editor: programs with their units,
// lessons with their embedded tests, and the forms that mutate them.
package curriculum

import (
	"context"
	"sync"

	"github.com/Karama2000/kara-app-sub001/internal/backend"
	"github.com/Karama2000/kara-app-sub001/internal/cascade"
	"github.com/Karama2000/kara-app-sub001/internal/models"
	appErrors "github.com/Karama2000/kara-app-sub001/pkg/errors"
)

// MediaField is the multipart field carrying a lesson or test attachment.
const MediaField = "mediaFile"

// Levels of the program → unit selector of the lesson form.
const (
	LevelProgram = "programme"
	LevelUnit    = "unite"
)

// Backend is the part of the remote API the editor uses.
type Backend interface {
	Programs(ctx context.Context, role models.UserRole) ([]models.Program, error)
	Units(ctx context.Context) ([]models.Unit, error)
	Lessons(ctx context.Context) ([]models.Lesson, error)
	CreateLesson(ctx context.Context, form backend.Multipart) (*models.Lesson, error)
	UpdateLesson(ctx context.Context, id string, form backend.Multipart) (*models.Lesson, error)
	DeleteLesson(ctx context.Context, id string) error
	CreateTest(ctx context.Context, form backend.Multipart) (*models.Test, error)
	UpdateTest(ctx context.Context, id string, form backend.Multipart) (*models.Test, error)
	DeleteTest(ctx context.Context, id string) error
}

// Validator checks form structs.
type Validator interface {
	Struct(s interface{}) error
}

// LessonForm is the lesson modal. Empty ProgramID and UnitID fall back to the
// editor's current selection.
type LessonForm struct {
	ID        string        `json:"id"`
	Title     string        `json:"title" validate:"required,notblank"`
	Content   string        `json:"content"`
	ProgramID string        `json:"programId"`
	UnitID    string        `json:"unitId"`
	Media     *backend.File `json:"-"`
}

// TestForm is the test modal nested under a lesson.
type TestForm struct {
	ID      string        `json:"id"`
	Title   string        `json:"title" validate:"required,notblank"`
	Content string        `json:"content"`
	Media   *backend.File `json:"-"`
}

// View is a copy of the editor state.
type View struct {
	Programs        []models.Program `json:"programs"`
	SelectedProgram string           `json:"selectedProgram"`
	SelectedUnit    string           `json:"selectedUnit"`
	UnitOptions     []models.Option  `json:"unitOptions"`
	UnitEnabled     bool             `json:"unitEnabled"`
	Lessons         []models.Lesson  `json:"lessons"`
}

// Editor is the per-session state of the lesson screen.
type Editor struct {
	api      Backend
	validate Validator
	role     models.UserRole

	mu       sync.Mutex
	programs []models.Program
	units    []models.Unit
	lessons  []models.Lesson

	// selection never fetches: both levels read the loaded programs and units.
	selection *cascade.Chain
}

// NewEditor constructs an editor for a user of role.
func NewEditor(api Backend, validate Validator, role models.UserRole) *Editor {
	e := &Editor{api: api, validate: validate, role: role}
	e.selection = cascade.MustNew(
		cascade.Step{Name: LevelProgram, Fetch: e.programOptions},
		cascade.Step{Name: LevelUnit, Fetch: e.unitOptions},
	)
	return e
}

// Load fetches programs, units and lessons. Nothing is applied unless all three succeed.
func (e *Editor) Load(ctx context.Context) error {
	programs, err := e.api.Programs(ctx, e.role)
	if err != nil {
		return err
	}
	units, err := e.api.Units(ctx)
	if err != nil {
		return err
	}
	lessons, err := e.api.Lessons(ctx)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.programs = programs
	e.units = units
	e.lessons = lessons
	e.mu.Unlock()

	return e.selection.Load(ctx)
}

// SelectProgram changes the program of the lesson form and clears its unit.
func (e *Editor) SelectProgram(ctx context.Context, id string) error {
	return e.selection.Select(ctx, 0, id)
}

// SelectUnit sets the unit of the lesson form. It must belong to the selected program.
func (e *Editor) SelectUnit(ctx context.Context, id string) error {
	return e.selection.Select(ctx, 1, id)
}

// UnitOptions lists the units of the selected program.
func (e *Editor) UnitOptions() []models.Option {
	unit, _ := e.selection.Snapshot().Level(LevelUnit)
	if unit.Options == nil {
		return []models.Option{}
	}
	return unit.Options
}

// SubmitLesson creates the lesson, or updates it when form.ID is set. On success the
// local list is updated in place and the form selection is reset.
func (e *Editor) SubmitLesson(ctx context.Context, form LessonForm) (*models.Lesson, error) {
	if err := e.validate.Struct(form); err != nil {
		return nil, err
	}

	selectedProgram, selectedUnit := e.selection.Selected(0), e.selection.Selected(1)
	if form.ProgramID == "" {
		form.ProgramID = selectedProgram
	}
	if form.UnitID == "" && form.ProgramID == selectedProgram {
		form.UnitID = selectedUnit
	}

	e.mu.Lock()
	switch {
	case form.ProgramID == "" || form.UnitID == "":
		e.mu.Unlock()
		return nil, appErrors.Clone(appErrors.ErrValidation, "programme et unité sont requis")
	case e.programIndex(form.ProgramID) < 0:
		e.mu.Unlock()
		return nil, appErrors.Clone(appErrors.ErrValidation, "programme inconnu")
	case !e.unitInProgram(form.ProgramID, form.UnitID):
		e.mu.Unlock()
		return nil, appErrors.Clone(appErrors.ErrValidation, "cette unité n'appartient pas au programme sélectionné")
	case form.ID != "" && e.lessonIndex(form.ID) < 0:
		e.mu.Unlock()
		return nil, appErrors.Clone(appErrors.ErrNotFound, "leçon introuvable")
	}
	e.mu.Unlock()

	payload := backend.Multipart{File: mediaFile(form.Media)}
	payload.Set("title", form.Title)
	payload.Set("content", form.Content)
	payload.Set("programId", form.ProgramID)
	payload.Set("unitId", form.UnitID)

	var (
		saved *models.Lesson
		err   error
	)
	if form.ID == "" {
		saved, err = e.api.CreateLesson(ctx, payload)
	} else {
		saved, err = e.api.UpdateLesson(ctx, form.ID, payload)
	}
	if err != nil {
		return nil, err
	}

	lesson := *saved
	if lesson.ID == "" {
		lesson.ID = form.ID
	}
	e.mu.Lock()
	if i := e.lessonIndex(lesson.ID); i >= 0 {
		if lesson.Tests == nil {
			lesson.Tests = e.lessons[i].Tests
		}
		e.lessons[i] = lesson
	} else {
		e.lessons = append(e.lessons, lesson)
	}
	e.mu.Unlock()

	if err := e.selection.Select(ctx, 0, ""); err != nil {
		return nil, err
	}
	return &lesson, nil
}

// SubmitTest creates or updates a test of lessonID. The owning lesson, program and
// unit ids are always sent along with the test fields.
func (e *Editor) SubmitTest(ctx context.Context, lessonID string, form TestForm) (*models.Test, error) {
	if err := e.validate.Struct(form); err != nil {
		return nil, err
	}

	e.mu.Lock()
	li := e.lessonIndex(lessonID)
	if li < 0 {
		e.mu.Unlock()
		return nil, appErrors.Clone(appErrors.ErrNotFound, "leçon introuvable")
	}
	owner := e.lessons[li]
	if form.ID != "" && testIndex(owner.Tests, form.ID) < 0 {
		e.mu.Unlock()
		return nil, appErrors.Clone(appErrors.ErrNotFound, "test introuvable")
	}
	e.mu.Unlock()

	payload := backend.Multipart{File: mediaFile(form.Media)}
	payload.Set("title", form.Title)
	payload.Set("content", form.Content)
	payload.Set("lessonId", owner.ID)
	payload.Set("programId", owner.Program.ID)
	payload.Set("unitId", owner.Unit.ID)

	var (
		saved *models.Test
		err   error
	)
	if form.ID == "" {
		saved, err = e.api.CreateTest(ctx, payload)
	} else {
		saved, err = e.api.UpdateTest(ctx, form.ID, payload)
	}
	if err != nil {
		return nil, err
	}

	test := *saved
	if test.ID == "" {
		test.ID = form.ID
	}
	if test.Lesson.ID == "" {
		test.Lesson = models.Ref{ID: owner.ID}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	li = e.lessonIndex(lessonID)
	if li < 0 {
		return &test, nil
	}
	tests := e.lessons[li].Tests
	if i := testIndex(tests, test.ID); i >= 0 {
		tests[i] = test
	} else {
		e.lessons[li].Tests = append(tests, test)
	}
	return &test, nil
}

// DeleteLesson removes the lesson and, in the same step, its tests. The backend is
// assumed to cascade the delete; this is not verified.
func (e *Editor) DeleteLesson(ctx context.Context, id string) error {
	e.mu.Lock()
	known := e.lessonIndex(id) >= 0
	e.mu.Unlock()
	if !known {
		return appErrors.Clone(appErrors.ErrNotFound, "leçon introuvable")
	}

	if err := e.api.DeleteLesson(ctx, id); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if i := e.lessonIndex(id); i >= 0 {
		e.lessons = append(e.lessons[:i:i], e.lessons[i+1:]...)
	}
	return nil
}

// DeleteTest removes one test of a lesson.
func (e *Editor) DeleteTest(ctx context.Context, lessonID, id string) error {
	e.mu.Lock()
	li := e.lessonIndex(lessonID)
	known := li >= 0 && testIndex(e.lessons[li].Tests, id) >= 0
	e.mu.Unlock()
	if !known {
		return appErrors.Clone(appErrors.ErrNotFound, "test introuvable")
	}

	if err := e.api.DeleteTest(ctx, id); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if li = e.lessonIndex(lessonID); li >= 0 {
		tests := e.lessons[li].Tests
		if i := testIndex(tests, id); i >= 0 {
			e.lessons[li].Tests = append(tests[:i:i], tests[i+1:]...)
		}
	}
	return nil
}

// Lesson returns a copy of one lesson.
func (e *Editor) Lesson(id string) (models.Lesson, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if i := e.lessonIndex(id); i >= 0 {
		return copyLesson(e.lessons[i]), true
	}
	return models.Lesson{}, false
}

// View copies the editor state.
func (e *Editor) View() View {
	snap := e.selection.Snapshot()
	program, _ := snap.Level(LevelProgram)
	unit, _ := snap.Level(LevelUnit)
	unitOptions := unit.Options
	if unitOptions == nil {
		unitOptions = []models.Option{}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	programs := make([]models.Program, len(e.programs))
	copy(programs, e.programs)
	lessons := make([]models.Lesson, len(e.lessons))
	for i, l := range e.lessons {
		lessons[i] = copyLesson(l)
	}
	return View{
		Programs:        programs,
		SelectedProgram: program.Selected,
		SelectedUnit:    unit.Selected,
		UnitOptions:     unitOptions,
		UnitEnabled:     unit.Enabled,
		Lessons:         lessons,
	}
}

// UnitsOf lists the units of a program: those it embeds, plus those fetched
// separately that point back at it.
func UnitsOf(programs []models.Program, units []models.Unit, programID string) []models.Unit {
	var out []models.Unit
	seen := make(map[string]bool)
	for _, p := range programs {
		if p.ID != programID {
			continue
		}
		for _, u := range p.Units {
			seen[u.ID] = true
			out = append(out, u)
		}
	}
	for _, u := range units {
		if u.Program.ID == programID && !seen[u.ID] {
			seen[u.ID] = true
			out = append(out, u)
		}
	}
	return out
}

// UnitOptions is UnitsOf as selector options.
func UnitOptions(programs []models.Program, units []models.Unit, programID string) []models.Option {
	list := UnitsOf(programs, units, programID)
	out := make([]models.Option, 0, len(list))
	for _, u := range list {
		out = append(out, models.Option{ID: u.ID, Label: u.Title})
	}
	return out
}

func (e *Editor) programOptions(_ context.Context, _ string) ([]models.Option, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]models.Option, 0, len(e.programs))
	for _, p := range e.programs {
		out = append(out, models.Option{ID: p.ID, Label: p.Title})
	}
	return out, nil
}

func (e *Editor) unitOptions(_ context.Context, programID string) ([]models.Option, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return UnitOptions(e.programs, e.units, programID), nil
}

func (e *Editor) unitInProgram(programID, unitID string) bool {
	for _, u := range UnitsOf(e.programs, e.units, programID) {
		if u.ID == unitID {
			return true
		}
	}
	return false
}

func (e *Editor) programIndex(id string) int {
	for i, p := range e.programs {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (e *Editor) lessonIndex(id string) int {
	for i, l := range e.lessons {
		if l.ID == id {
			return i
		}
	}
	return -1
}

func testIndex(tests []models.Test, id string) int {
	for i, t := range tests {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func copyLesson(l models.Lesson) models.Lesson {
	if l.Tests != nil {
		tests := make([]models.Test, len(l.Tests))
		copy(tests, l.Tests)
		l.Tests = tests
	}
	return l
}

func mediaFile(f *backend.File) *backend.File {
	if f == nil || f.Content == nil {
		return nil
	}
	if f.Field == "" {
		clone := *f
		clone.Field = MediaField
		return &clone
	}
	return f
}
