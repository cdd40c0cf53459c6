package contact

import (
	"time"

	"gorm.io/gorm"
)

// LinkPrecedence tags a contact as the canonical record of its cluster or as a
// record linked to one.
type LinkPrecedence string

const (
	// Primary marks the canonical contact of a cluster.
	Primary LinkPrecedence = "primary"
	// Secondary marks a contact linked to a primary.
	Secondary LinkPrecedence = "secondary"
)

// IsValid reports whether p is a known precedence.
func (p LinkPrecedence) IsValid() bool {
	return p == Primary || p == Secondary
}

// TableName is the table backing Contact.
const TableName = "contacts"

// Contact is a single observation of a customer's email and/or phone number.
// LinkedID is set iff LinkPrecedence is Secondary and points at the cluster's primary.
type Contact struct {
	ID             int64          `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	PhoneNumber    *string        `gorm:"column:phone_number;type:varchar(64);index:idx_contacts_phone_number" json:"phoneNumber"`
	Email          *string        `gorm:"column:email;type:varchar(255);index:idx_contacts_email" json:"email"`
	LinkedID       *int64         `gorm:"column:linked_id;index:idx_contacts_linked_id" json:"linkedId"`
	LinkPrecedence LinkPrecedence `gorm:"column:link_precedence;type:varchar(16);not null" json:"linkPrecedence"`
	CreatedAt      time.Time      `gorm:"column:created_at;not null" json:"createdAt"`
	UpdatedAt      time.Time      `gorm:"column:updated_at;not null" json:"updatedAt"`
	DeletedAt      gorm.DeletedAt `gorm:"column:deleted_at;index" json:"deletedAt,omitempty"`
}

// TableName overrides the table name used by GORM.
func (Contact) TableName() string {
	return TableName
}

// IsPrimary reports whether the contact is the primary of its cluster.
func (c Contact) IsPrimary() bool {
	return c.LinkPrecedence == Primary
}

// RootID returns the id of the primary this contact belongs to: its own id for
// a primary, its LinkedID for a linked secondary. ok is false for a secondary
// without a link.
func (c Contact) RootID() (id int64, ok bool) {
	if c.IsPrimary() {
		return c.ID, true
	}
	if c.LinkedID == nil {
		return 0, false
	}
	return *c.LinkedID, true
}

// Older reports whether c outranks other by seniority: earlier CreatedAt, then lower ID.
func (c Contact) Older(other Contact) bool {
	if !c.CreatedAt.Equal(other.CreatedAt) {
		return c.CreatedAt.Before(other.CreatedAt)
	}
	return c.ID < other.ID
}
