package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Karama2000/kara-app-sub001/internal/models"
	"github.com/Karama2000/kara-app-sub001/internal/session"
	appErrors "github.com/Karama2000/kara-app-sub001/pkg/errors"
	"github.com/Karama2000/kara-app-sub001/pkg/export"
	"github.com/Karama2000/kara-app-sub001/pkg/validation"
)

// Export formats.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

type classBackend interface {
	Class(ctx context.Context, id string) (*models.Class, error)
	ClassStudents(ctx context.Context, classID string) ([]models.Student, error)
	UpdateClass(ctx context.Context, id string, input models.UpdateClassInput) (*models.Class, error)
	SetPassStatus(ctx context.Context, input models.PassInput) error
}

type rosterRenderer interface {
	ContentType() string
	Extension() string
	Render(data export.Dataset) ([]byte, error)
}

// ExportFile is a rendered document ready to download.
type ExportFile struct {
	Name        string
	ContentType string
	Body        []byte
}

// ClassService edits classes and their students.
type ClassService struct {
	api        classBackend
	validator  *validation.Validator
	workspaces *WorkspaceService
	renderers  map[string]rosterRenderer
	logger     *zap.Logger
	now        func() time.Time
}

// NewClassService constructs the service with the CSV and PDF exporters.
func NewClassService(api classBackend, validate *validation.Validator, workspaces *WorkspaceService, logger *zap.Logger) *ClassService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validation.New()
	}
	return &ClassService{
		api:        api,
		validator:  validate,
		workspaces: workspaces,
		renderers: map[string]rosterRenderer{
			FormatCSV: export.NewCSVExporter(),
			FormatPDF: export.NewPDFExporter(),
		},
		logger: logger,
		now:    time.Now,
	}
}

// Get fetches one class.
func (s *ClassService) Get(ctx context.Context, id string) (*models.Class, error) {
	return s.api.Class(ctx, id)
}

// Update edits a class and replaces it in the classes table.
func (s *ClassService) Update(ctx context.Context, sess *session.Session, id string, input models.UpdateClassInput) (*models.Class, error) {
	input.Nom = strings.TrimSpace(input.Nom)
	if err := s.validator.Struct(input); err != nil {
		return nil, err
	}
	class, err := s.api.UpdateClass(ctx, id, input)
	if err != nil {
		return nil, err
	}
	if ws, ok := s.workspaces.Lookup(sess.ID); ok {
		ws.Classes.Replace(*class)
	}
	return class, nil
}

// SetPassStatus promotes or holds back a student and updates the students table.
func (s *ClassService) SetPassStatus(ctx context.Context, sess *session.Session, studentID string, hasPassed bool) error {
	if strings.TrimSpace(studentID) == "" {
		return appErrors.Clone(appErrors.ErrValidation, "élève requis")
	}
	if err := s.api.SetPassStatus(ctx, models.PassInput{EleveID: studentID, HasPassed: hasPassed}); err != nil {
		return err
	}
	if ws, ok := s.workspaces.Lookup(sess.ID); ok {
		if student, found := ws.Students.Find(studentID); found {
			passed := hasPassed
			student.HasPassed = &passed
			ws.Students.Replace(student)
		}
	}
	return nil
}

// ExportRoster renders the student list of a class.
func (s *ClassService) ExportRoster(ctx context.Context, classID, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatCSV
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("format %q non pris en charge", format))
	}

	class, err := s.api.Class(ctx, classID)
	if err != nil {
		return nil, err
	}
	students, err := s.api.ClassStudents(ctx, classID)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{
		Title: fmt.Sprintf("Classe %s", class.Nom),
		Columns: []export.Column{
			{Key: "numInscription", Header: "N° inscription"},
			{Key: "nom", Header: "Nom"},
			{Key: "prenom", Header: "Prénom"},
			{Key: "statut", Header: "Statut"},
		},
		Rows: make([]map[string]string, 0, len(students)),
	}
	for _, st := range students {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"numInscription": st.NumInscription,
			"nom":            st.Nom,
			"prenom":         st.Prenom,
			"statut":         st.PassStatus(),
		})
	}

	body, err := renderer.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "génération du document impossible")
	}
	name := fmt.Sprintf("classe-%s-%s.%s", slug(class.Nom), s.now().Format("20060102"), renderer.Extension())
	return &ExportFile{Name: name, ContentType: renderer.ContentType(), Body: body}, nil
}

func slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	out := strings.Trim(b.String(), "-")
	if out == "" {
		return "sans-nom"
	}
	return out
}
