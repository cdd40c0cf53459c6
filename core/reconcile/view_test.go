package reconcile

import (
	"context"
	"testing"
	"time"

	"identity-reconciler/core/contact"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sp(s string) *string { return &s }

func TestBuildView_Ordering(t *testing.T) {
	t0 := time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC)
	pid := int64(1)
	primary := contact.Contact{ID: 1, Email: sp("lorraine@hillvalley.edu"), PhoneNumber: sp("123456"), LinkPrecedence: contact.Primary, CreatedAt: t0}
	cluster := []contact.Contact{
		{ID: 23, Email: sp("mcfly@hillvalley.edu"), PhoneNumber: sp("123456"), LinkedID: &pid, LinkPrecedence: contact.Secondary, CreatedAt: t0.Add(-time.Hour)},
		primary,
		{ID: 24, Email: sp("lorraine@hillvalley.edu"), PhoneNumber: nil, LinkedID: &pid, LinkPrecedence: contact.Secondary, CreatedAt: t0.Add(time.Hour)},
		{ID: 25, Email: nil, PhoneNumber: sp("777"), LinkedID: &pid, LinkPrecedence: contact.Secondary, CreatedAt: t0.Add(2 * time.Hour)},
	}

	view := BuildView(primary, cluster)

	assert.Equal(t, int64(1), view.PrimaryContactID)
	// Primary values first even when another member was seen earlier.
	assert.Equal(t, []string{"lorraine@hillvalley.edu", "mcfly@hillvalley.edu"}, view.Emails)
	assert.Equal(t, []string{"123456", "777"}, view.PhoneNumbers)
	assert.Equal(t, []int64{23, 24, 25}, view.SecondaryContactIDs)
}

func TestBuildView_PrimaryWithoutEmail(t *testing.T) {
	pid := int64(5)
	primary := contact.Contact{ID: 5, PhoneNumber: sp("42"), LinkPrecedence: contact.Primary}
	cluster := []contact.Contact{
		primary,
		{ID: 6, Email: sp("late@x.com"), LinkedID: &pid, LinkPrecedence: contact.Secondary},
	}

	view := BuildView(primary, cluster)
	assert.Equal(t, []string{"late@x.com"}, view.Emails)
	assert.Equal(t, []string{"42"}, view.PhoneNumbers)
}

func TestInput(t *testing.T) {
	in := NewInput(sp(""), sp("12"))
	assert.Nil(t, in.Email)
	require.NotNil(t, in.PhoneNumber)
	assert.Equal(t, "12", *in.PhoneNumber)
	assert.False(t, in.IsEmpty())
	assert.True(t, NewInput(nil, sp("")).IsEmpty())

	// Presence is part of the key: an absent email differs from the string "0".
	assert.NotEqual(t, NewInput(nil, sp("1")).key(), NewInput(sp("0"), sp("1")).key())
	assert.Equal(t, NewInput(sp("a"), nil).key(), NewInput(sp("a"), sp("")).key())
}

func TestApplyPlan_UnknownAction(t *testing.T) {
	_, err := ApplyPlan(context.Background(), nil, &Plan{Actions: []Action{{Type: "teleport"}}})
	assert.Error(t, err)
}

func TestStorageError(t *testing.T) {
	err := storageErr("insert secondary", assert.AnError)
	var se *StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "insert secondary", se.Op)
	assert.ErrorIs(t, err, assert.AnError)

	// Already-wrapped errors keep their original operation.
	assert.Same(t, err, storageErr("commit", err))
	assert.Nil(t, storageErr("noop", nil))
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, Config{LockTimeout: time.Second}.Validate())
	assert.Error(t, Config{}.Validate())
}
