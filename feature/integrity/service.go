package integrity

import (
	"context"

	"identity-reconciler/core/contact"
	"identity-reconciler/feature/integrity/checks"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service handles integrity checks.
type Service struct {
	db     *gorm.DB
	store  contact.Store
	logger *zap.Logger
}

// NewService creates a new integrity service.
func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	var store contact.Store
	if db != nil {
		store = contact.NewGormStore(db)
	}
	return &Service{
		db:     db,
		store:  store,
		logger: logger,
	}
}

// CheckSchema compares the contacts table with the Contact model.
func (s *Service) CheckSchema() (*checks.SchemaReport, error) {
	return checks.CheckSchema(s.db)
}

// CheckClusters reports cluster invariant violations.
func (s *Service) CheckClusters(ctx context.Context) (*checks.ClusterReport, error) {
	if s.store == nil {
		return nil, errNoDatabase
	}
	return checks.CheckClusters(ctx, s.store)
}

// FixClusters repairs cluster invariant violations.
func (s *Service) FixClusters(ctx context.Context) (*checks.FixReport, error) {
	if s.store == nil {
		return nil, errNoDatabase
	}
	return checks.FixClusters(ctx, s.store, s.logger)
}
