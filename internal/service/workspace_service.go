package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/Karama2000/kara-app-sub001/internal/cascade"
	"github.com/Karama2000/kara-app-sub001/internal/curriculum"
	"github.com/Karama2000/kara-app-sub001/internal/listing"
	"github.com/Karama2000/kara-app-sub001/internal/models"
	"github.com/Karama2000/kara-app-sub001/internal/session"
	appErrors "github.com/Karama2000/kara-app-sub001/pkg/errors"
)

// Cascade names.
const (
	CascadeClasses     = "classes"
	CascadeUnits       = "unites"
	CascadeChildPrefix = "enfant-"
)

// Cascade level names.
const (
	LevelNiveau    = "niveau"
	LevelClasse    = "classe"
	LevelEleve     = "eleve"
	LevelProgramme = curriculum.LevelProgram
	LevelUnite     = curriculum.LevelUnit
)

// Table names.
const (
	TableUsers         = "users"
	TablePendingUsers  = "pending-users"
	TableClasses       = "classes"
	TableStudents      = "eleves"
	TableNotifications = "notifications"
)

type workspaceBackend interface {
	curriculum.Backend
	Levels(ctx context.Context) ([]models.Level, error)
	ClassesByLevel(ctx context.Context, levelID string) ([]models.Class, error)
	ClassStudents(ctx context.Context, classID string) ([]models.Student, error)
	DeleteClass(ctx context.Context, id string) error
	Users(ctx context.Context) ([]models.User, error)
	DeleteUser(ctx context.Context, id string) error
	PendingUsers(ctx context.Context) ([]models.User, error)
	Notifications(ctx context.Context) ([]models.Notification, error)
	DeleteNotification(ctx context.Context, id string) error
}

type workspaceMetrics interface {
	SetWorkspaces(n int)
}

var (
	staffRoles = []models.UserRole{models.RoleAdmin, models.RoleTeacher}
	adminRoles = []models.UserRole{models.RoleAdmin}
	anyRole    = []models.UserRole{models.RoleAdmin, models.RoleTeacher, models.RoleParent, models.RoleStudent}

	tableRoles = map[string][]models.UserRole{
		TableUsers:         adminRoles,
		TablePendingUsers:  adminRoles,
		TableClasses:       staffRoles,
		TableStudents:      staffRoles,
		TableNotifications: anyRole,
	}
)

// Workspace is the screen state of one session.
type Workspace struct {
	SessionID string
	Role      models.UserRole

	Users         *listing.Table[models.User]
	PendingUsers  *listing.Table[models.User]
	Classes       *listing.Table[models.Class]
	Students      *listing.Table[models.Student]
	Notifications *listing.Table[models.Notification]
	Editor        *curriculum.Editor

	cascades map[string]*cascade.Chain
	tables   map[string]listing.Lister

	mu           sync.Mutex
	editorLoaded bool
	programs     []models.Program
	units        []models.Unit
}

// TableFilterRequest updates the filters of a table. Nil fields are left unchanged.
type TableFilterRequest struct {
	Search *string           `json:"search"`
	Server map[string]string `json:"server"`
	Fields map[string]string `json:"fields"`
}

// DeleteConfirmation is the first step of a row delete.
type DeleteConfirmation struct {
	Table string `json:"table"`
	ID    string `json:"id"`
	Token string `json:"token"`
}

// WorkspaceService owns the per-session workspaces.
type WorkspaceService struct {
	api      workspaceBackend
	validate curriculum.Validator
	metrics  workspaceMetrics
	logger   *zap.Logger

	mu         sync.Mutex
	workspaces map[string]*Workspace
}

// NewWorkspaceService constructs the service. Workspaces are dropped when their
// session ends.
func NewWorkspaceService(api workspaceBackend, validate curriculum.Validator, bus *session.Bus, metrics workspaceMetrics, logger *zap.Logger) *WorkspaceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &WorkspaceService{
		api:        api,
		validate:   validate,
		metrics:    metrics,
		logger:     logger,
		workspaces: make(map[string]*Workspace),
	}
	bus.Subscribe(func(e session.Event) { s.Drop(e.SessionID) })
	return s
}

// Workspace returns the session's workspace, creating it on first use.
func (s *WorkspaceService) Workspace(sess *session.Session) (*Workspace, error) {
	if !sess.Authenticated() {
		return nil, appErrors.ErrUnauthorized
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if ws, ok := s.workspaces[sess.ID]; ok {
		return ws, nil
	}
	ws, err := s.newWorkspace(sess)
	if err != nil {
		return nil, err
	}
	s.workspaces[sess.ID] = ws
	s.reportSize()
	return ws, nil
}

// Lookup returns the session's workspace without creating one.
func (s *WorkspaceService) Lookup(sessionID string) (*Workspace, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ws, ok := s.workspaces[sessionID]
	return ws, ok
}

// Drop discards a session's workspace.
func (s *WorkspaceService) Drop(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.workspaces[sessionID]; !ok {
		return
	}
	delete(s.workspaces, sessionID)
	s.reportSize()
	s.logger.Debug("workspace dropped", zap.String("session_id", sessionID))
}

// Len is the number of live workspaces.
func (s *WorkspaceService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.workspaces)
}

func (s *WorkspaceService) reportSize() {
	if s.metrics != nil {
		s.metrics.SetWorkspaces(len(s.workspaces))
	}
}

// Cascade returns a cascade, fetching its root options until a fetch succeeds.
func (s *WorkspaceService) Cascade(ctx context.Context, sess *session.Session, name string) (cascade.Snapshot, error) {
	_, chain, err := s.cascade(sess, name)
	if err != nil {
		return cascade.Snapshot{}, err
	}
	if !chain.Ready(0) {
		if err := chain.Load(ctx); err != nil {
			return chain.Snapshot(), err
		}
	}
	return chain.Snapshot(), nil
}

// SelectCascade selects id at the named level of a cascade.
func (s *WorkspaceService) SelectCascade(ctx context.Context, sess *session.Session, name, level, id string) (cascade.Snapshot, error) {
	if _, err := s.Cascade(ctx, sess, name); err != nil {
		return cascade.Snapshot{}, err
	}
	_, chain, err := s.cascade(sess, name)
	if err != nil {
		return cascade.Snapshot{}, err
	}
	if err := chain.SelectByName(ctx, level, id); err != nil {
		return chain.Snapshot(), err
	}
	return chain.Snapshot(), nil
}

func (s *WorkspaceService) cascade(sess *session.Session, name string) (*Workspace, *cascade.Chain, error) {
	ws, err := s.Workspace(sess)
	if err != nil {
		return nil, nil, err
	}
	chain, ok := ws.cascades[name]
	if !ok {
		return nil, nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("sélecteur %q inconnu", name))
	}
	if !roleAllowed(sess.Role, cascadeRoles(name)) {
		return nil, nil, appErrors.ErrForbidden
	}
	return ws, chain, nil
}

// Table returns a table view, fetching the collection on first use.
func (s *WorkspaceService) Table(ctx context.Context, sess *session.Session, name string) (listing.View, error) {
	table, err := s.table(sess, name)
	if err != nil {
		return listing.View{}, err
	}
	if !table.Mounted() {
		if err := table.Refresh(ctx); err != nil {
			return table.View(), err
		}
	}
	return table.View(), nil
}

// RefreshTable re-fetches a table.
func (s *WorkspaceService) RefreshTable(ctx context.Context, sess *session.Session, name string) (listing.View, error) {
	table, err := s.table(sess, name)
	if err != nil {
		return listing.View{}, err
	}
	if err := table.Refresh(ctx); err != nil {
		return table.View(), err
	}
	return table.View(), nil
}

// FilterTable applies search, server and field filters. Only server filter changes
// reach the network.
func (s *WorkspaceService) FilterTable(ctx context.Context, sess *session.Session, name string, req TableFilterRequest) (listing.View, error) {
	table, err := s.table(sess, name)
	if err != nil {
		return listing.View{}, err
	}
	if req.Search != nil {
		table.SetSearch(*req.Search)
	}
	for field, value := range req.Fields {
		if err := table.SetFieldFilter(field, value); err != nil {
			return table.View(), err
		}
	}
	for key, value := range req.Server {
		if err := table.SetServerFilter(ctx, key, value); err != nil {
			return table.View(), err
		}
	}
	return table.View(), nil
}

// RequestRowDelete asks for the confirmation token of a delete.
func (s *WorkspaceService) RequestRowDelete(ctx context.Context, sess *session.Session, name, id string) (*DeleteConfirmation, error) {
	table, err := s.table(sess, name)
	if err != nil {
		return nil, err
	}
	token, err := table.RequestDelete(id)
	if err != nil {
		return nil, err
	}
	return &DeleteConfirmation{Table: name, ID: id, Token: token}, nil
}

// ConfirmRowDelete performs a confirmed delete.
func (s *WorkspaceService) ConfirmRowDelete(ctx context.Context, sess *session.Session, name, id, token string) (listing.View, error) {
	table, err := s.table(sess, name)
	if err != nil {
		return listing.View{}, err
	}
	if err := table.ConfirmDelete(ctx, id, token); err != nil {
		return table.View(), err
	}
	return table.View(), nil
}

// Editor returns the curriculum editor, loading it on first use.
func (s *WorkspaceService) Editor(ctx context.Context, sess *session.Session) (*curriculum.Editor, error) {
	if !roleAllowed(sess.Role, staffRoles) {
		return nil, appErrors.ErrForbidden
	}
	ws, err := s.Workspace(sess)
	if err != nil {
		return nil, err
	}
	ws.mu.Lock()
	loaded := ws.editorLoaded
	ws.mu.Unlock()
	if !loaded {
		if err := ws.Editor.Load(ctx); err != nil {
			return nil, err
		}
		ws.mu.Lock()
		ws.editorLoaded = true
		ws.mu.Unlock()
	}
	return ws.Editor, nil
}

func (s *WorkspaceService) table(sess *session.Session, name string) (listing.Lister, error) {
	ws, err := s.Workspace(sess)
	if err != nil {
		return nil, err
	}
	table, ok := ws.tables[name]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("tableau %q inconnu", name))
	}
	if !roleAllowed(sess.Role, tableRoles[name]) {
		return nil, appErrors.ErrForbidden
	}
	return table, nil
}

func (s *WorkspaceService) newWorkspace(sess *session.Session) (*Workspace, error) {
	ws := &Workspace{
		SessionID: sess.ID,
		Role:      sess.Role,
		Editor:    curriculum.NewEditor(s.api, s.validate, sess.Role),
		cascades:  make(map[string]*cascade.Chain),
	}

	classes, err := cascade.New(s.schoolSteps()...)
	if err != nil {
		return nil, err
	}
	ws.cascades[CascadeClasses] = classes
	for i := 1; i <= models.MaxChildren; i++ {
		child, err := cascade.New(s.schoolSteps()...)
		if err != nil {
			return nil, err
		}
		ws.cascades[ChildCascade(i)] = child
	}
	units, err := cascade.New(
		cascade.Step{Name: LevelProgramme, Fetch: ws.fetchPrograms(s.api)},
		cascade.Step{Name: LevelUnite, Fetch: ws.unitOptions},
	)
	if err != nil {
		return nil, err
	}
	ws.cascades[CascadeUnits] = units

	if err := s.buildTables(ws); err != nil {
		return nil, err
	}
	return ws, nil
}

// ChildCascade names the cascade of the i-th child row (1-based) of the parent form.
func ChildCascade(i int) string {
	return CascadeChildPrefix + strconv.Itoa(i)
}

func (s *WorkspaceService) schoolSteps() []cascade.Step {
	return []cascade.Step{
		{Name: LevelNiveau, Fetch: func(ctx context.Context, _ string) ([]models.Option, error) {
			levels, err := s.api.Levels(ctx)
			if err != nil {
				return nil, err
			}
			out := make([]models.Option, 0, len(levels))
			for _, l := range levels {
				out = append(out, models.Option{ID: l.ID, Label: l.Nom})
			}
			return out, nil
		}},
		{Name: LevelClasse, Fetch: func(ctx context.Context, levelID string) ([]models.Option, error) {
			classes, err := s.api.ClassesByLevel(ctx, levelID)
			if err != nil {
				return nil, err
			}
			out := make([]models.Option, 0, len(classes))
			for _, c := range classes {
				out = append(out, models.Option{ID: c.ID, Label: c.Nom})
			}
			return out, nil
		}},
		{Name: LevelEleve, Fetch: func(ctx context.Context, classID string) ([]models.Option, error) {
			students, err := s.api.ClassStudents(ctx, classID)
			if err != nil {
				return nil, err
			}
			out := make([]models.Option, 0, len(students))
			for _, st := range students {
				out = append(out, models.Option{ID: st.ID, Label: st.FullName()})
			}
			return out, nil
		}},
	}
}

// fetchPrograms loads programs and units together; units are then filtered
// locally per program.
func (ws *Workspace) fetchPrograms(api workspaceBackend) cascade.FetchFunc {
	return func(ctx context.Context, _ string) ([]models.Option, error) {
		programs, err := api.Programs(ctx, ws.Role)
		if err != nil {
			return nil, err
		}
		units, err := api.Units(ctx)
		if err != nil {
			return nil, err
		}
		ws.mu.Lock()
		ws.programs = programs
		ws.units = units
		ws.mu.Unlock()

		out := make([]models.Option, 0, len(programs))
		for _, p := range programs {
			out = append(out, models.Option{ID: p.ID, Label: p.Title})
		}
		return out, nil
	}
}

func (ws *Workspace) unitOptions(_ context.Context, programID string) ([]models.Option, error) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return curriculum.UnitOptions(ws.programs, ws.units, programID), nil
}

func (s *WorkspaceService) buildTables(ws *Workspace) error {
	var err error
	ws.Users, err = listing.New(listing.Config[models.User]{
		Name: TableUsers,
		Fetch: func(ctx context.Context, _ map[string]string) ([]models.User, error) {
			return s.api.Users(ctx)
		},
		Delete: s.api.DeleteUser,
		ID:     func(u models.User) string { return u.ID },
		Search: func(u models.User) []string { return []string{u.Nom, u.Prenom, u.Email, u.Telephone} },
		Field: func(u models.User, name string) string {
			switch name {
			case "role":
				return string(u.Role)
			case "status":
				return u.Status
			}
			return ""
		},
		FieldFilters: []string{"role", "status"},
	})
	if err != nil {
		return err
	}

	ws.PendingUsers, err = listing.New(listing.Config[models.User]{
		Name: TablePendingUsers,
		Fetch: func(ctx context.Context, _ map[string]string) ([]models.User, error) {
			return s.api.PendingUsers(ctx)
		},
		ID:     func(u models.User) string { return u.ID },
		Search: func(u models.User) []string { return []string{u.Nom, u.Prenom, u.Email} },
		Field: func(u models.User, name string) string {
			if name == "role" {
				return string(u.Role)
			}
			return ""
		},
		FieldFilters: []string{"role"},
	})
	if err != nil {
		return err
	}

	ws.Classes, err = listing.New(listing.Config[models.Class]{
		Name: TableClasses,
		Fetch: func(ctx context.Context, filters map[string]string) ([]models.Class, error) {
			level := filters[LevelNiveau]
			if level == "" {
				return []models.Class{}, nil
			}
			return s.api.ClassesByLevel(ctx, level)
		},
		Delete:        s.api.DeleteClass,
		ID:            func(c models.Class) string { return c.ID },
		Search:        func(c models.Class) []string { return []string{c.Nom, c.Niveau.Name} },
		ServerFilters: []string{LevelNiveau},
	})
	if err != nil {
		return err
	}

	ws.Students, err = listing.New(listing.Config[models.Student]{
		Name: TableStudents,
		Fetch: func(ctx context.Context, filters map[string]string) ([]models.Student, error) {
			class := filters[LevelClasse]
			if class == "" {
				return []models.Student{}, nil
			}
			return s.api.ClassStudents(ctx, class)
		},
		ID:     func(st models.Student) string { return st.ID },
		Search: func(st models.Student) []string { return []string{st.Nom, st.Prenom, st.NumInscription} },
		Field: func(st models.Student, name string) string {
			if name == "statut" {
				return st.PassStatus()
			}
			return ""
		},
		ServerFilters: []string{LevelClasse},
		FieldFilters:  []string{"statut"},
	})
	if err != nil {
		return err
	}

	ws.Notifications, err = listing.New(listing.Config[models.Notification]{
		Name: TableNotifications,
		Fetch: func(ctx context.Context, _ map[string]string) ([]models.Notification, error) {
			return s.api.Notifications(ctx)
		},
		Delete: s.api.DeleteNotification,
		ID:     func(n models.Notification) string { return n.ID },
		Search: func(n models.Notification) []string { return []string{n.Message} },
		Field: func(n models.Notification, name string) string {
			if name == "read" {
				return strconv.FormatBool(n.Read)
			}
			return ""
		},
		FieldFilters: []string{"read"},
	})
	if err != nil {
		return err
	}

	ws.tables = map[string]listing.Lister{
		TableUsers:         ws.Users,
		TablePendingUsers:  ws.PendingUsers,
		TableClasses:       ws.Classes,
		TableStudents:      ws.Students,
		TableNotifications: ws.Notifications,
	}
	return nil
}

func cascadeRoles(name string) []models.UserRole {
	switch name {
	case CascadeClasses, CascadeUnits:
		return staffRoles
	default:
		return adminRoles
	}
}

func roleAllowed(role models.UserRole, allowed []models.UserRole) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
