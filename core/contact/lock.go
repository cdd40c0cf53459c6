package contact

import (
	"context"
	"fmt"
	"hash/fnv"
	"sort"

	"identity-reconciler/core/database"

	"gorm.io/gorm/clause"
)

// LockTableName is the table holding one row per key locked on MySQL.
const LockTableName = "contact_locks"

// KeyLock is a row of the lock table. Postgres uses advisory locks instead and
// never writes to it.
type KeyLock struct {
	Key int64 `gorm:"column:lock_key;primaryKey;autoIncrement:false"`
}

// TableName overrides the table name used by GORM.
func (KeyLock) TableName() string {
	return LockTableName
}

// EmailKey names the lock guarding an email value.
func EmailKey(email string) string {
	return "email:" + email
}

// PhoneKey names the lock guarding a phone number value.
func PhoneKey(phone string) string {
	return "phone:" + phone
}

// lockKey64 hashes a key into the int64 space used by the lock primitives.
func lockKey64(key string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("contact"))
	_, _ = h.Write([]byte{':'})
	_, _ = h.Write([]byte(key))
	return int64(h.Sum64())
}

// sortedLockKeys hashes keys, drops duplicates and orders them ascending so
// every transaction acquires its key locks in the same order.
func sortedLockKeys(keys []string) []int64 {
	seen := make(map[int64]struct{}, len(keys))
	out := make([]int64, 0, len(keys))
	for _, k := range keys {
		if k == "" {
			continue
		}
		h := lockKey64(k)
		if _, dup := seen[h]; dup {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s *GormStore) LockKeys(ctx context.Context, keys ...string) error {
	if !s.locking {
		return nil
	}
	hashed := sortedLockKeys(keys)
	switch s.db.Dialector.Name() {
	case database.DriverPostgres:
		for _, k := range hashed {
			if err := s.db.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(?)", k).Error; err != nil {
				return fmt.Errorf("failed to acquire advisory lock: %w", err)
			}
		}
	case database.DriverSQLite:
		// The single pooled connection already serializes transactions.
	default:
		for _, k := range hashed {
			row := KeyLock{Key: k}
			err := s.db.WithContext(ctx).
				Clauses(clause.Insert{Modifier: "IGNORE"}).
				Create(&row).Error
			if err != nil {
				return fmt.Errorf("failed to register lock key: %w", err)
			}
			err = s.db.WithContext(ctx).
				Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("lock_key = ?", k).
				Take(&row).Error
			if err != nil {
				return fmt.Errorf("failed to acquire lock key: %w", err)
			}
		}
	}
	return nil
}

func (s *GormStore) LockContacts(ctx context.Context, ids []int64) ([]Contact, error) {
	if len(ids) == 0 {
		return []Contact{}, nil
	}
	q := s.db.WithContext(ctx).Model(&Contact{}).Where("id IN ?", ids)
	if s.locking {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var out []Contact
	if err := q.Order("id ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to lock contacts: %w", err)
	}
	return out, nil
}
