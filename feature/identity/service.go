package identity

import (
	"context"

	"identity-reconciler/core/reconcile"

	"go.uber.org/zap"
)

// Service exposes the reconciliation engine to HTTP handlers.
type Service struct {
	engine *reconcile.Engine
	logger *zap.Logger
}

// NewService creates a new identity service.
func NewService(engine *reconcile.Engine, logger *zap.Logger) *Service {
	return &Service{
		engine: engine,
		logger: logger,
	}
}

// Identify reconciles one request body.
func (s *Service) Identify(ctx context.Context, req IdentifyRequest) (*reconcile.IdentityView, error) {
	return s.engine.Identify(ctx, req.Email.Value, req.PhoneNumber.Value)
}

// Contact returns the view of the cluster containing id.
func (s *Service) Contact(ctx context.Context, id int64) (*reconcile.IdentityView, error) {
	return s.engine.View(ctx, id)
}
