package reconcile

import (
	"context"
	"fmt"

	"identity-reconciler/core/contact"
)

// BuildPlan reads the store and decides what to do with the observation.
// It performs no writes; ApplyPlan executes the returned actions.
func BuildPlan(ctx context.Context, store contact.Store, in Input, mergePrimaries bool) (*Plan, error) {
	if in.IsEmpty() {
		return nil, ErrInvalidInput
	}

	matches, err := store.FindByEmailOrPhone(ctx, in.Email, in.PhoneNumber)
	if err != nil {
		return nil, storageErr("find matches", err)
	}

	if len(matches) == 0 {
		return &Plan{
			Outcome:    OutcomeCreatedPrimary,
			MatchedIDs: []int64{},
			Actions: []Action{{
				Type:        ActionCreatePrimary,
				Email:       in.Email,
				PhoneNumber: in.PhoneNumber,
				Reason:      "no existing contact matches",
			}},
		}, nil
	}

	plan := &Plan{
		Outcome:    OutcomeUnchanged,
		MatchedIDs: make([]int64, 0, len(matches)),
		Actions:    []Action{},
	}
	for _, m := range matches {
		plan.MatchedIDs = append(plan.MatchedIDs, m.ID)
	}

	candidates, err := candidatePrimaries(ctx, store, matches)
	if err != nil {
		return nil, err
	}

	var primary contact.Contact
	var younger []contact.Contact
	if len(candidates) == 0 {
		// Every match is a secondary whose primary cannot be loaded.
		primary = matches[0]
	} else {
		primary = candidates[0]
		for _, c := range candidates[1:] {
			if c.Older(primary) {
				primary = c
			}
		}
		for _, c := range candidates {
			if c.ID != primary.ID {
				younger = append(younger, c)
			}
		}
	}
	plan.PrimaryID = primary.ID

	cluster, err := store.FindCluster(ctx, primary.ID)
	if err != nil {
		return nil, storageErr("load cluster", err)
	}

	if mergePrimaries {
		for _, y := range younger {
			plan.Actions = append(plan.Actions,
				Action{
					Type:      ActionDemotePrimary,
					ContactID: y.ID,
					PrimaryID: primary.ID,
					Reason:    fmt.Sprintf("primary %d is younger than primary %d", y.ID, primary.ID),
				},
				Action{
					Type:      ActionRelink,
					ContactID: y.ID,
					PrimaryID: primary.ID,
					Reason:    fmt.Sprintf("cluster of %d merges into %d", y.ID, primary.ID),
				},
			)
			members, err := store.FindCluster(ctx, y.ID)
			if err != nil {
				return nil, storageErr("load merged cluster", err)
			}
			cluster = append(cluster, members...)
		}
		if len(younger) > 0 {
			plan.Outcome = OutcomeMerged
		}
	}

	emails, phones := knownValues(cluster)
	newEmail := in.Email != nil && !emails[*in.Email]
	newPhone := in.PhoneNumber != nil && !phones[*in.PhoneNumber]
	if newEmail || newPhone {
		reason := "new email"
		switch {
		case newEmail && newPhone:
			reason = "new email and phone number"
		case newPhone:
			reason = "new phone number"
		}
		plan.Actions = append(plan.Actions, Action{
			Type:        ActionCreateSecondary,
			PrimaryID:   primary.ID,
			Email:       in.Email,
			PhoneNumber: in.PhoneNumber,
			Reason:      reason,
		})
		if plan.Outcome == OutcomeUnchanged {
			plan.Outcome = OutcomeLinkedSecondary
		}
	}

	return plan, nil
}

// candidatePrimaries locks and loads the primaries the matched contacts belong
// to. Roots are locked in id order. A root that turns out not to be a primary
// once locked was demoted by a transaction that committed in the meantime, or is
// part of a chain; its own link is followed in the next round.
func candidatePrimaries(ctx context.Context, store contact.Store, matches []contact.Contact) ([]contact.Contact, error) {
	seen := make(map[int64]struct{})
	var pending []int64
	for _, m := range matches {
		root, ok := m.RootID()
		if !ok {
			continue
		}
		if _, dup := seen[root]; dup {
			continue
		}
		seen[root] = struct{}{}
		pending = append(pending, root)
	}

	var out []contact.Contact
	for len(pending) > 0 {
		locked, err := store.LockContacts(ctx, pending)
		if err != nil {
			return nil, storageErr("lock primaries", err)
		}
		pending = nil
		for _, c := range locked {
			if c.IsPrimary() {
				out = append(out, c)
				continue
			}
			root, ok := c.RootID()
			if !ok {
				continue
			}
			if _, dup := seen[root]; dup {
				continue
			}
			seen[root] = struct{}{}
			pending = append(pending, root)
		}
	}
	return out, nil
}

// knownValues collects the distinct emails and phone numbers present in a cluster.
func knownValues(cluster []contact.Contact) (emails, phones map[string]bool) {
	emails = make(map[string]bool)
	phones = make(map[string]bool)
	for _, c := range cluster {
		if c.Email != nil {
			emails[*c.Email] = true
		}
		if c.PhoneNumber != nil {
			phones[*c.PhoneNumber] = true
		}
	}
	return emails, phones
}

// ApplyPlan executes the actions of a plan against the store and returns the
// id of the resulting primary.
func ApplyPlan(ctx context.Context, store contact.Store, plan *Plan) (int64, error) {
	primaryID := plan.PrimaryID
	for _, action := range plan.Actions {
		switch action.Type {
		case ActionCreatePrimary:
			c, err := store.Insert(ctx, action.Email, action.PhoneNumber, nil, contact.Primary)
			if err != nil {
				return 0, storageErr("insert primary", err)
			}
			primaryID = c.ID
		case ActionCreateSecondary:
			linked := action.PrimaryID
			if _, err := store.Insert(ctx, action.Email, action.PhoneNumber, &linked, contact.Secondary); err != nil {
				return 0, storageErr("insert secondary", err)
			}
		case ActionDemotePrimary:
			if err := store.Demote(ctx, action.ContactID, action.PrimaryID); err != nil {
				return 0, storageErr("demote primary", err)
			}
		case ActionRelink:
			if _, err := store.Relink(ctx, action.ContactID, action.PrimaryID); err != nil {
				return 0, storageErr("relink cluster", err)
			}
		default:
			return 0, fmt.Errorf("unknown action type %q", action.Type)
		}
	}
	return primaryID, nil
}
