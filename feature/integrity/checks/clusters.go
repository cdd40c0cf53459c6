package checks

import (
	"context"
	"fmt"

	"identity-reconciler/core/contact"

	"go.uber.org/zap"
)

// IssueKind names a violated cluster invariant.
type IssueKind string

const (
	// IssueUnlinkedSecondary is a secondary without a linked id.
	IssueUnlinkedSecondary IssueKind = "unlinked_secondary"
	// IssueLinkedPrimary is a primary that carries a linked id.
	IssueLinkedPrimary IssueKind = "linked_primary"
	// IssueDanglingLink is a secondary linked to a contact that does not exist.
	IssueDanglingLink IssueKind = "dangling_link"
	// IssueChainedLink is a secondary linked to another secondary.
	IssueChainedLink IssueKind = "chained_link"
)

// Issue is one invariant violation.
type Issue struct {
	ContactID int64     `json:"contact_id"`
	Kind      IssueKind `json:"kind"`
	LinkedID  *int64    `json:"linked_id,omitempty"`
}

// ClusterReport summarizes the cluster invariants of the contact table.
type ClusterReport struct {
	Contacts    int     `json:"contacts"`
	Primaries   int     `json:"primaries"`
	Secondaries int     `json:"secondaries"`
	Healthy     bool    `json:"healthy"`
	Issues      []Issue `json:"issues"`
}

// FixReport lists the contacts changed by FixClusters.
type FixReport struct {
	Promoted []int64 `json:"promoted"`
	Relinked []int64 `json:"relinked"`
}

// CheckClusters reports every contact that violates the primary/secondary invariants.
func CheckClusters(ctx context.Context, store contact.Store) (*ClusterReport, error) {
	all, err := store.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return analyze(all), nil
}

func analyze(all []contact.Contact) *ClusterReport {
	byID := make(map[int64]contact.Contact, len(all))
	for _, c := range all {
		byID[c.ID] = c
	}

	report := &ClusterReport{Contacts: len(all), Issues: []Issue{}}
	for _, c := range all {
		if c.IsPrimary() {
			report.Primaries++
			if c.LinkedID != nil {
				report.Issues = append(report.Issues, Issue{ContactID: c.ID, Kind: IssueLinkedPrimary, LinkedID: c.LinkedID})
			}
			continue
		}

		report.Secondaries++
		if c.LinkedID == nil {
			report.Issues = append(report.Issues, Issue{ContactID: c.ID, Kind: IssueUnlinkedSecondary})
			continue
		}
		target, ok := byID[*c.LinkedID]
		switch {
		case !ok:
			report.Issues = append(report.Issues, Issue{ContactID: c.ID, Kind: IssueDanglingLink, LinkedID: c.LinkedID})
		case !target.IsPrimary():
			report.Issues = append(report.Issues, Issue{ContactID: c.ID, Kind: IssueChainedLink, LinkedID: c.LinkedID})
		}
	}
	report.Healthy = len(report.Issues) == 0
	return report
}

// FixClusters repairs invariant violations in one transaction. Chained
// secondaries are re-pointed at the end of their chain and contacts whose link
// cannot be resolved become primaries.
func FixClusters(ctx context.Context, store contact.Store, logger *zap.Logger) (*FixReport, error) {
	fix := &FixReport{Promoted: []int64{}, Relinked: []int64{}}

	err := store.WithinTx(ctx, func(tx contact.Store) error {
		all, err := tx.ListAll(ctx)
		if err != nil {
			return err
		}
		byID := make(map[int64]contact.Contact, len(all))
		for _, c := range all {
			byID[c.ID] = c
		}

		for _, issue := range analyze(all).Issues {
			var root int64
			var ok bool
			if issue.Kind == IssueChainedLink {
				root, ok = resolveRoot(byID, issue.ContactID)
			}

			if ok {
				if err := tx.SetLink(ctx, issue.ContactID, root); err != nil {
					return fmt.Errorf("failed to relink contact %d: %w", issue.ContactID, err)
				}
				fix.Relinked = append(fix.Relinked, issue.ContactID)
				logger.Info("Relinked chained secondary",
					zap.Int64("contact_id", issue.ContactID),
					zap.Int64("primary_id", root))
				continue
			}

			if err := tx.Promote(ctx, issue.ContactID); err != nil {
				return fmt.Errorf("failed to promote contact %d: %w", issue.ContactID, err)
			}
			fix.Promoted = append(fix.Promoted, issue.ContactID)
			logger.Info("Promoted contact to primary",
				zap.Int64("contact_id", issue.ContactID),
				zap.String("issue", string(issue.Kind)))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return fix, nil
}

// resolveRoot follows links from id until it reaches a primary. A chain that
// ends in an unresolvable link resolves to its last member, which the fixer
// promotes. Cycles do not resolve.
func resolveRoot(byID map[int64]contact.Contact, id int64) (int64, bool) {
	seen := map[int64]struct{}{id: {}}
	cur := byID[id]
	for cur.LinkedID != nil {
		next, ok := byID[*cur.LinkedID]
		if !ok {
			break
		}
		if next.IsPrimary() {
			return next.ID, true
		}
		if _, loop := seen[next.ID]; loop {
			return 0, false
		}
		seen[next.ID] = struct{}{}
		cur = next
	}
	if cur.ID == id {
		return 0, false
	}
	return cur.ID, true
}
