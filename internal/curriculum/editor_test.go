package curriculum

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Karama2000/kara-app-sub001/internal/backend"
	"github.com/Karama2000/kara-app-sub001/internal/models"
	appErrors "github.com/Karama2000/kara-app-sub001/pkg/errors"
	"github.com/Karama2000/kara-app-sub001/pkg/validation"
)

type fakeBackend struct {
	role      models.UserRole
	programs  []models.Program
	units     []models.Unit
	lessons   []models.Lesson
	forms     []backend.Multipart
	deleted   []string
	deleteErr error
	nextID    int
}

func (f *fakeBackend) id(prefix string) string {
	f.nextID++
	return prefix + string(rune('0'+f.nextID))
}

func (f *fakeBackend) Programs(ctx context.Context, role models.UserRole) ([]models.Program, error) {
	f.role = role
	return f.programs, nil
}

func (f *fakeBackend) Units(ctx context.Context) ([]models.Unit, error) {
	return f.units, nil
}

func (f *fakeBackend) Lessons(ctx context.Context) ([]models.Lesson, error) {
	return f.lessons, nil
}

func (f *fakeBackend) CreateLesson(ctx context.Context, form backend.Multipart) (*models.Lesson, error) {
	f.forms = append(f.forms, form)
	return &models.Lesson{ID: f.id("l"), Title: form.Fields["title"], Program: models.Ref{ID: form.Fields["programId"]}, Unit: models.Ref{ID: form.Fields["unitId"]}}, nil
}

func (f *fakeBackend) UpdateLesson(ctx context.Context, id string, form backend.Multipart) (*models.Lesson, error) {
	f.forms = append(f.forms, form)
	return &models.Lesson{ID: id, Title: form.Fields["title"], Program: models.Ref{ID: form.Fields["programId"]}, Unit: models.Ref{ID: form.Fields["unitId"]}}, nil
}

func (f *fakeBackend) DeleteLesson(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return f.deleteErr
}

func (f *fakeBackend) CreateTest(ctx context.Context, form backend.Multipart) (*models.Test, error) {
	f.forms = append(f.forms, form)
	return &models.Test{ID: f.id("t"), Title: form.Fields["title"]}, nil
}

func (f *fakeBackend) UpdateTest(ctx context.Context, id string, form backend.Multipart) (*models.Test, error) {
	f.forms = append(f.forms, form)
	return &models.Test{ID: id, Title: form.Fields["title"]}, nil
}

func (f *fakeBackend) DeleteTest(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return f.deleteErr
}

func newFixture(t *testing.T) (*Editor, *fakeBackend) {
	t.Helper()
	api := &fakeBackend{
		programs: []models.Program{
			{ID: "p1", Title: "Mathématiques CP", Units: []models.Unit{{ID: "u1", Title: "Nombres", Program: models.Ref{ID: "p1"}}}},
			{ID: "p2", Title: "Français CP"},
		},
		units: []models.Unit{
			{ID: "u2", Title: "Géométrie", Program: models.Ref{ID: "p1"}},
			{ID: "u3", Title: "Lecture", Program: models.Ref{ID: "p2"}},
		},
		lessons: []models.Lesson{
			{ID: "l0", Title: "Compter", Program: models.Ref{ID: "p1"}, Unit: models.Ref{ID: "u1"}, Tests: []models.Test{{ID: "t0", Title: "Quiz"}, {ID: "tx", Title: "Bilan"}}},
		},
	}
	editor := NewEditor(api, validation.New(), models.RoleTeacher)
	require.NoError(t, editor.Load(context.Background()))
	return editor, api
}

func TestLoadUsesRoleForPrograms(t *testing.T) {
	_, api := newFixture(t)
	assert.Equal(t, models.RoleTeacher, api.role)
}

func TestSelectProgramClearsUnitAndFiltersOptions(t *testing.T) {
	editor, _ := newFixture(t)

	require.NoError(t, editor.SelectProgram(context.Background(), "p1"))
	assert.Equal(t, []models.Option{{ID: "u1", Label: "Nombres"}, {ID: "u2", Label: "Géométrie"}}, editor.UnitOptions())
	require.NoError(t, editor.SelectUnit(context.Background(), "u2"))

	require.NoError(t, editor.SelectProgram(context.Background(), "p2"))
	view := editor.View()
	assert.Empty(t, view.SelectedUnit)
	assert.Equal(t, []models.Option{{ID: "u3", Label: "Lecture"}}, view.UnitOptions)

	err := editor.SelectUnit(context.Background(), "u1")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestUnitDisabledWithoutProgram(t *testing.T) {
	editor, _ := newFixture(t)
	view := editor.View()
	assert.False(t, view.UnitEnabled)
	assert.Empty(t, view.UnitOptions)
	assert.Error(t, editor.SelectUnit(context.Background(), "u1"))
}

func TestSubmitLessonWithoutMediaOmitsFile(t *testing.T) {
	editor, api := newFixture(t)
	require.NoError(t, editor.SelectProgram(context.Background(), "p1"))
	require.NoError(t, editor.SelectUnit(context.Background(), "u2"))

	lesson, err := editor.SubmitLesson(context.Background(), LessonForm{Title: "Les formes", Content: "Carré, cercle"})
	require.NoError(t, err)
	assert.Equal(t, "u2", lesson.Unit.ID)

	require.Len(t, api.forms, 1)
	assert.Nil(t, api.forms[0].File)
	_, hasField := api.forms[0].Fields[MediaField]
	assert.False(t, hasField)

	view := editor.View()
	assert.Len(t, view.Lessons, 2)
	assert.Empty(t, view.SelectedProgram)
	assert.Empty(t, view.SelectedUnit)
}

func TestSubmitLessonUpdateReplacesInPlace(t *testing.T) {
	editor, api := newFixture(t)

	media := &backend.File{Name: "video.mp4", Content: strings.NewReader("....")}
	lesson, err := editor.SubmitLesson(context.Background(), LessonForm{ID: "l0", Title: "Compter jusqu'à 20", ProgramID: "p1", UnitID: "u1", Media: media})
	require.NoError(t, err)
	assert.Equal(t, "l0", lesson.ID)

	require.Len(t, api.forms, 1)
	require.NotNil(t, api.forms[0].File)
	assert.Equal(t, MediaField, api.forms[0].File.Field)

	view := editor.View()
	require.Len(t, view.Lessons, 1)
	assert.Equal(t, "Compter jusqu'à 20", view.Lessons[0].Title)
	assert.Len(t, view.Lessons[0].Tests, 2)
}

func TestSubmitLessonRejectsForeignUnit(t *testing.T) {
	editor, api := newFixture(t)

	_, err := editor.SubmitLesson(context.Background(), LessonForm{Title: "Lire", ProgramID: "p1", UnitID: "u3"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = editor.SubmitLesson(context.Background(), LessonForm{Title: "  ", ProgramID: "p1", UnitID: "u1"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Empty(t, api.forms)
}

func TestSubmitTestDenormalizesOwner(t *testing.T) {
	editor, api := newFixture(t)

	test, err := editor.SubmitTest(context.Background(), "l0", TestForm{Title: "Évaluation"})
	require.NoError(t, err)
	assert.Equal(t, "l0", test.Lesson.ID)

	require.Len(t, api.forms, 1)
	fields := api.forms[0].Fields
	assert.Equal(t, "l0", fields["lessonId"])
	assert.Equal(t, "p1", fields["programId"])
	assert.Equal(t, "u1", fields["unitId"])

	lesson, ok := editor.Lesson("l0")
	require.True(t, ok)
	assert.Len(t, lesson.Tests, 3)
}

func TestSubmitTestUnknownLesson(t *testing.T) {
	editor, api := newFixture(t)
	_, err := editor.SubmitTest(context.Background(), "nope", TestForm{Title: "Quiz"})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	assert.Empty(t, api.forms)
}

func TestDeleteLessonRemovesEmbeddedTests(t *testing.T) {
	editor, api := newFixture(t)

	require.NoError(t, editor.DeleteLesson(context.Background(), "l0"))
	assert.Equal(t, []string{"l0"}, api.deleted)
	assert.Empty(t, editor.View().Lessons)
	_, ok := editor.Lesson("l0")
	assert.False(t, ok)
}

func TestDeleteFailureKeepsState(t *testing.T) {
	editor, api := newFixture(t)
	api.deleteErr = appErrors.Clone(appErrors.ErrBackendUnavailable, "")

	assert.Error(t, editor.DeleteTest(context.Background(), "l0", "t0"))
	lesson, _ := editor.Lesson("l0")
	assert.Len(t, lesson.Tests, 2)

	api.deleteErr = nil
	require.NoError(t, editor.DeleteTest(context.Background(), "l0", "t0"))
	lesson, _ = editor.Lesson("l0")
	require.Len(t, lesson.Tests, 1)
	assert.Equal(t, "tx", lesson.Tests[0].ID)
}

func TestSelectProgramBeforeLoadIsRejected(t *testing.T) {
	editor := NewEditor(&fakeBackend{programs: []models.Program{{ID: "p1"}}}, validation.New(), models.RoleAdmin)
	err := editor.SelectProgram(context.Background(), "p1")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Empty(t, editor.View().SelectedProgram)
}

func TestUnitOptionsMergesEmbeddedAndReferencedUnits(t *testing.T) {
	programs := []models.Program{{ID: "p1", Units: []models.Unit{{ID: "u1", Title: "Nombres"}}}}
	units := []models.Unit{
		{ID: "u1", Title: "Nombres", Program: models.Ref{ID: "p1"}},
		{ID: "u2", Title: "Géométrie", Program: models.Ref{ID: "p1"}},
		{ID: "u3", Title: "Lecture", Program: models.Ref{ID: "p2"}},
	}
	assert.Equal(t, []models.Option{{ID: "u1", Label: "Nombres"}, {ID: "u2", Label: "Géométrie"}}, UnitOptions(programs, units, "p1"))
	assert.Empty(t, UnitOptions(programs, units, "p9"))
}
