package contact

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Store is the durable collection of contacts. It holds no business logic.
type Store interface {
	// FindByEmailOrPhone returns every contact whose email equals email OR whose
	// phone number equals phone. A nil argument matches nothing.
	FindByEmailOrPhone(ctx context.Context, email, phone *string) ([]Contact, error)
	// Insert creates a contact with a fresh id and the current timestamp.
	Insert(ctx context.Context, email, phone *string, linkedID *int64, precedence LinkPrecedence) (*Contact, error)
	// FindCluster returns the primary itself plus every contact linked to it.
	FindCluster(ctx context.Context, primaryID int64) ([]Contact, error)
	// FindByIDs returns the contacts with the given ids, oldest first.
	FindByIDs(ctx context.Context, ids []int64) ([]Contact, error)
	// Get returns a single contact or ErrNotFound.
	Get(ctx context.Context, id int64) (*Contact, error)
	// Demote turns a primary into a secondary of primaryID.
	Demote(ctx context.Context, id, primaryID int64) error
	// Promote turns a contact into an unlinked primary.
	Promote(ctx context.Context, id int64) error
	// SetLink re-points a single secondary to primaryID.
	SetLink(ctx context.Context, id, primaryID int64) error
	// Relink re-points every contact linked to fromID onto toID and returns the count.
	Relink(ctx context.Context, fromID, toID int64) (int64, error)
	// ListPrimaries returns every primary contact ordered by id.
	ListPrimaries(ctx context.Context) ([]Contact, error)
	// ListAll returns every contact ordered by id.
	ListAll(ctx context.Context) ([]Contact, error)
	// LockKeys blocks until the transaction holds the locks named by keys. The
	// locks are released on commit or rollback. Outside a transaction it is a no-op.
	LockKeys(ctx context.Context, keys ...string) error
	// LockContacts loads the contacts with the given ids and row-locks them in id
	// order for the rest of the transaction.
	LockContacts(ctx context.Context, ids []int64) ([]Contact, error)
	// WithinTx runs fn against a store bound to one transaction.
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}

// GormStore implements Store on top of GORM.
type GormStore struct {
	db      *gorm.DB
	locking bool
	now     func() time.Time
}

// NewGormStore creates a store backed by db.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db, now: time.Now}
}

// WithClock overrides the timestamp source, mostly for tests.
func (s *GormStore) WithClock(now func() time.Time) *GormStore {
	return &GormStore{db: s.db, locking: s.locking, now: now}
}

func (s *GormStore) query(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Model(&Contact{})
}

func (s *GormStore) FindByEmailOrPhone(ctx context.Context, email, phone *string) ([]Contact, error) {
	q := s.query(ctx)
	switch {
	case email != nil && phone != nil:
		q = q.Where("email = ? OR phone_number = ?", *email, *phone)
	case email != nil:
		q = q.Where("email = ?", *email)
	case phone != nil:
		q = q.Where("phone_number = ?", *phone)
	default:
		return []Contact{}, nil
	}

	var out []Contact
	if err := q.Order("created_at ASC, id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to find contacts by email or phone: %w", err)
	}
	return out, nil
}

func (s *GormStore) Insert(ctx context.Context, email, phone *string, linkedID *int64, precedence LinkPrecedence) (*Contact, error) {
	if !precedence.IsValid() {
		return nil, fmt.Errorf("invalid link precedence %q", precedence)
	}
	if (precedence == Secondary) != (linkedID != nil) {
		return nil, fmt.Errorf("linked id must be set iff precedence is secondary")
	}

	now := s.now().UTC()
	c := &Contact{
		Email:          email,
		PhoneNumber:    phone,
		LinkedID:       linkedID,
		LinkPrecedence: precedence,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, fmt.Errorf("failed to insert contact: %w", err)
	}
	return c, nil
}

func (s *GormStore) FindCluster(ctx context.Context, primaryID int64) ([]Contact, error) {
	var out []Contact
	err := s.query(ctx).
		Where("id = ? OR linked_id = ?", primaryID, primaryID).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load cluster %d: %w", primaryID, err)
	}
	return out, nil
}

func (s *GormStore) FindByIDs(ctx context.Context, ids []int64) ([]Contact, error) {
	if len(ids) == 0 {
		return []Contact{}, nil
	}
	var out []Contact
	err := s.query(ctx).
		Where("id IN ?", ids).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load contacts by id: %w", err)
	}
	return out, nil
}

func (s *GormStore) Get(ctx context.Context, id int64) (*Contact, error) {
	var c Contact
	err := s.query(ctx).Where("id = ?", id).Take(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contact %d: %w", id, err)
	}
	return &c, nil
}

func (s *GormStore) Demote(ctx context.Context, id, primaryID int64) error {
	if id == primaryID {
		return fmt.Errorf("cannot link contact %d to itself", id)
	}
	return s.update(ctx, id, map[string]any{
		"link_precedence": Secondary,
		"linked_id":       primaryID,
	})
}

func (s *GormStore) Promote(ctx context.Context, id int64) error {
	return s.update(ctx, id, map[string]any{
		"link_precedence": Primary,
		"linked_id":       nil,
	})
}

func (s *GormStore) SetLink(ctx context.Context, id, primaryID int64) error {
	if id == primaryID {
		return fmt.Errorf("cannot link contact %d to itself", id)
	}
	return s.update(ctx, id, map[string]any{
		"linked_id": primaryID,
	})
}

func (s *GormStore) update(ctx context.Context, id int64, fields map[string]any) error {
	fields["updated_at"] = s.now().UTC()
	result := s.db.WithContext(ctx).Model(&Contact{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("failed to update contact %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) Relink(ctx context.Context, fromID, toID int64) (int64, error) {
	result := s.db.WithContext(ctx).Model(&Contact{}).
		Where("linked_id = ?", fromID).
		Updates(map[string]any{
			"linked_id":  toID,
			"updated_at": s.now().UTC(),
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to relink contacts of %d: %w", fromID, result.Error)
	}
	return result.RowsAffected, nil
}

func (s *GormStore) ListPrimaries(ctx context.Context) ([]Contact, error) {
	var out []Contact
	err := s.query(ctx).
		Where("link_precedence = ?", Primary).
		Order("id ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list primaries: %w", err)
	}
	return out, nil
}

func (s *GormStore) ListAll(ctx context.Context) ([]Contact, error) {
	var out []Contact
	if err := s.query(ctx).Order("id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	return out, nil
}

func (s *GormStore) WithinTx(ctx context.Context, fn func(tx Store) error) error {
	if s.locking {
		// Already inside a transaction.
		return fn(s)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx, locking: true, now: s.now})
	})
}
