package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/Karama2000/kara-app-sub001/internal/models"
)

type parentBackend interface {
	ParentChildren(ctx context.Context) ([]models.Student, error)
	ParentProgress(ctx context.Context) ([]models.Progress, error)
	ClearParentProgress(ctx context.Context) error
}

// ParentService serves the parent space.
type ParentService struct {
	api    parentBackend
	logger *zap.Logger
}

// NewParentService constructs the service.
func NewParentService(api parentBackend, logger *zap.Logger) *ParentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ParentService{api: api, logger: logger}
}

// Children lists the parent's children.
func (s *ParentService) Children(ctx context.Context) ([]models.Student, error) {
	return s.api.ParentChildren(ctx)
}

// Progress lists the children's progress entries.
func (s *ParentService) Progress(ctx context.Context) ([]models.Progress, error) {
	return s.api.ParentProgress(ctx)
}

// ClearProgress deletes the progress history.
func (s *ParentService) ClearProgress(ctx context.Context) error {
	if err := s.api.ClearParentProgress(ctx); err != nil {
		return err
	}
	s.logger.Info("parent progress cleared")
	return nil
}
