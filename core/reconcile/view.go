package reconcile

import (
	"context"
	"fmt"

	"identity-reconciler/core/contact"
)

// BuildView assembles the consolidated view of a cluster. The primary's own
// email and phone come first; the remaining distinct values follow in cluster
// order. Every member other than the primary with secondary precedence is listed
// as a secondary.
func BuildView(primary contact.Contact, cluster []contact.Contact) *IdentityView {
	view := &IdentityView{
		PrimaryContactID:    primary.ID,
		Emails:              []string{},
		PhoneNumbers:        []string{},
		SecondaryContactIDs: []int64{},
	}

	seenEmail := make(map[string]struct{})
	seenPhone := make(map[string]struct{})
	addEmail := func(s *string) {
		if s == nil {
			return
		}
		if _, ok := seenEmail[*s]; ok {
			return
		}
		seenEmail[*s] = struct{}{}
		view.Emails = append(view.Emails, *s)
	}
	addPhone := func(s *string) {
		if s == nil {
			return
		}
		if _, ok := seenPhone[*s]; ok {
			return
		}
		seenPhone[*s] = struct{}{}
		view.PhoneNumbers = append(view.PhoneNumbers, *s)
	}

	addEmail(primary.Email)
	addPhone(primary.PhoneNumber)
	for _, c := range cluster {
		addEmail(c.Email)
		addPhone(c.PhoneNumber)
		if c.ID != primary.ID && c.LinkPrecedence == contact.Secondary {
			view.SecondaryContactIDs = append(view.SecondaryContactIDs, c.ID)
		}
	}
	return view
}

// clusterView loads the cluster of primaryID and builds its view.
func clusterView(ctx context.Context, store contact.Store, primaryID int64) (*IdentityView, error) {
	cluster, err := store.FindCluster(ctx, primaryID)
	if err != nil {
		return nil, storageErr("load cluster", err)
	}
	for _, c := range cluster {
		if c.ID == primaryID {
			return BuildView(c, cluster), nil
		}
	}
	return nil, storageErr("load cluster", fmt.Errorf("primary %d: %w", primaryID, contact.ErrNotFound))
}
