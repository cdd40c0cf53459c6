package reconcile

import (
	"context"
	"errors"
	"time"

	"identity-reconciler/core/contact"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const defaultLockTimeout = 5 * time.Second

// Engine applies the match/merge/create decision for incoming observations.
type Engine struct {
	store    contact.Store
	logger   *zap.Logger
	cfg      Config
	recorder Recorder
	group    singleflight.Group
}

// Option customizes an Engine.
type Option func(*Engine)

// WithRecorder reports every decision to r.
func WithRecorder(r Recorder) Option {
	return func(e *Engine) {
		if r != nil {
			e.recorder = r
		}
	}
}

// NewEngine creates a reconciliation engine over store.
func NewEngine(store contact.Store, logger *zap.Logger, cfg Config, opts ...Option) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.LockTimeout <= 0 {
		cfg.LockTimeout = defaultLockTimeout
	}
	e := &Engine{
		store:    store,
		logger:   logger.With(zap.String("component", "reconcile")),
		cfg:      cfg,
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type identifyResult struct {
	view *IdentityView
	plan *Plan
}

// Identify reconciles one observation and returns the consolidated view of the
// cluster it belongs to. The read-decide-write sequence runs in one transaction
// bounded by the configured lock timeout.
func (e *Engine) Identify(ctx context.Context, email, phone *string) (*IdentityView, error) {
	start := time.Now()
	in := NewInput(email, phone)
	if in.IsEmpty() {
		e.recorder.ObserveDecision(OutcomeInvalid, time.Since(start))
		return nil, ErrInvalidInput
	}

	// Identical concurrent observations would reach the same decision. The shared
	// call is detached from any single caller's cancellation.
	leader := false
	ch := e.group.DoChan(in.key(), func() (any, error) {
		leader = true
		return e.identify(context.WithoutCancel(ctx), in)
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		e.recorder.ObserveDecision(OutcomeError, time.Since(start))
		return nil, ctx.Err()
	}
	if res.Err != nil {
		e.recorder.ObserveDecision(OutcomeError, time.Since(start))
		return nil, res.Err
	}

	r := res.Val.(*identifyResult)
	outcome := r.plan.Outcome
	if !leader {
		// The store was changed by the caller that ran the transaction.
		outcome = OutcomeUnchanged
	}
	e.recorder.ObserveDecision(outcome, time.Since(start))
	return r.view.clone(), nil
}

func (e *Engine) identify(ctx context.Context, in Input) (*identifyResult, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.LockTimeout)
	defer cancel()

	var result identifyResult
	err := e.store.WithinTx(ctx, func(tx contact.Store) error {
		if err := tx.LockKeys(ctx, in.lockKeys()...); err != nil {
			return storageErr("lock keys", err)
		}
		plan, err := BuildPlan(ctx, tx, in, e.cfg.MergePrimaries)
		if err != nil {
			return err
		}
		primaryID, err := ApplyPlan(ctx, tx, plan)
		if err != nil {
			return err
		}
		view, err := clusterView(ctx, tx, primaryID)
		if err != nil {
			return err
		}
		plan.PrimaryID = primaryID
		result = identifyResult{view: view, plan: plan}
		return nil
	})
	if err != nil {
		err = storageErr("commit", err)
		e.logger.Error("Reconciliation failed", zap.Error(err))
		return nil, err
	}

	e.logPlan(in, result.plan)
	return &result, nil
}

func (e *Engine) logPlan(in Input, plan *Plan) {
	for _, a := range plan.Actions {
		e.logger.Info("Applied reconcile action",
			zap.String("type", string(a.Type)),
			zap.Int64("primary_id", plan.PrimaryID),
			zap.Int64("contact_id", a.ContactID),
			zap.Stringp("email", a.Email),
			zap.Stringp("phone_number", a.PhoneNumber),
			zap.String("reason", a.Reason),
		)
	}
	e.logger.Debug("Reconciled observation",
		zap.String("outcome", string(plan.Outcome)),
		zap.Int64("primary_id", plan.PrimaryID),
		zap.Int64s("matched_ids", plan.MatchedIDs),
		zap.Bool("has_email", in.Email != nil),
		zap.Bool("has_phone", in.PhoneNumber != nil),
	)
}

// Plan computes the decision for an observation without applying it.
func (e *Engine) Plan(ctx context.Context, email, phone *string) (*Plan, error) {
	in := NewInput(email, phone)
	if in.IsEmpty() {
		return nil, ErrInvalidInput
	}

	ctx, cancel := context.WithTimeout(ctx, e.cfg.LockTimeout)
	defer cancel()

	var plan *Plan
	err := e.store.WithinTx(ctx, func(tx contact.Store) error {
		p, err := BuildPlan(ctx, tx, in, e.cfg.MergePrimaries)
		plan = p
		return err
	})
	if err != nil {
		return nil, storageErr("plan", err)
	}
	return plan, nil
}

// View returns the consolidated view of the cluster containing contactID.
// It returns contact.ErrNotFound when the contact does not exist.
func (e *Engine) View(ctx context.Context, contactID int64) (*IdentityView, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.LockTimeout)
	defer cancel()

	c, err := e.store.Get(ctx, contactID)
	if errors.Is(err, contact.ErrNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, storageErr("get contact", err)
	}

	root, ok := c.RootID()
	if !ok {
		root = c.ID
	}
	view, err := clusterView(ctx, e.store, root)
	if errors.Is(err, contact.ErrNotFound) && root != c.ID {
		// Dangling link: fall back to the contact's own cluster.
		return clusterView(ctx, e.store, c.ID)
	}
	return view, err
}
