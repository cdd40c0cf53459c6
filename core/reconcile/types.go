package reconcile

import (
	"time"

	"identity-reconciler/core/contact"
)

// IdentityView is the consolidated identity of one cluster.
type IdentityView struct {
	// PrimaryContactID is the id of the cluster's primary contact.
	PrimaryContactID int64 `json:"primaryContactId"`

	// Emails lists the primary's email first, then every other distinct email
	// of the cluster in first-seen order.
	Emails []string `json:"emails"`

	// PhoneNumbers follows the same ordering rule as Emails.
	PhoneNumbers []string `json:"phoneNumbers"`

	// SecondaryContactIDs holds the ids of every secondary in the cluster.
	SecondaryContactIDs []int64 `json:"secondaryContactIds"`
}

func (v *IdentityView) clone() *IdentityView {
	if v == nil {
		return nil
	}
	return &IdentityView{
		PrimaryContactID:    v.PrimaryContactID,
		Emails:              append([]string{}, v.Emails...),
		PhoneNumbers:        append([]string{}, v.PhoneNumbers...),
		SecondaryContactIDs: append([]int64{}, v.SecondaryContactIDs...),
	}
}

// Input is one observation of an email and/or phone number. Nil means absent.
type Input struct {
	Email       *string
	PhoneNumber *string
}

// NewInput builds an Input, treating empty strings as absent.
func NewInput(email, phone *string) Input {
	return Input{Email: normalize(email), PhoneNumber: normalize(phone)}
}

func normalize(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}

// IsEmpty reports whether neither field is present.
func (in Input) IsEmpty() bool {
	return in.Email == nil && in.PhoneNumber == nil
}

// lockKeys names the store locks guarding the observed values.
func (in Input) lockKeys() []string {
	keys := make([]string, 0, 2)
	if in.Email != nil {
		keys = append(keys, contact.EmailKey(*in.Email))
	}
	if in.PhoneNumber != nil {
		keys = append(keys, contact.PhoneKey(*in.PhoneNumber))
	}
	return keys
}

func (in Input) key() string {
	k := "e:"
	if in.Email != nil {
		k += "1" + *in.Email
	} else {
		k += "0"
	}
	k += "\x00p:"
	if in.PhoneNumber != nil {
		k += "1" + *in.PhoneNumber
	} else {
		k += "0"
	}
	return k
}

// Outcome classifies the decision taken for an observation.
type Outcome string

const (
	// OutcomeCreatedPrimary means no cluster matched and a new primary was created.
	OutcomeCreatedPrimary Outcome = "created_primary"
	// OutcomeLinkedSecondary means new information was attached to an existing cluster.
	OutcomeLinkedSecondary Outcome = "linked_secondary"
	// OutcomeMerged means two or more clusters were merged under the eldest primary.
	OutcomeMerged Outcome = "merged"
	// OutcomeUnchanged means the observation was already fully known.
	OutcomeUnchanged Outcome = "unchanged"
	// OutcomeInvalid means the input carried neither email nor phone.
	OutcomeInvalid Outcome = "invalid"
	// OutcomeError means the store failed.
	OutcomeError Outcome = "error"
)

// ActionType represents the type of mutation action.
type ActionType string

const (
	// ActionCreatePrimary inserts a new primary contact.
	ActionCreatePrimary ActionType = "create_primary"
	// ActionCreateSecondary inserts a secondary linked to PrimaryID.
	ActionCreateSecondary ActionType = "create_secondary"
	// ActionDemotePrimary turns ContactID into a secondary of PrimaryID.
	ActionDemotePrimary ActionType = "demote_primary"
	// ActionRelink re-points every contact linked to ContactID onto PrimaryID.
	ActionRelink ActionType = "relink"
)

// Action represents a planned mutation operation.
type Action struct {
	// Type specifies the action to perform.
	Type ActionType `json:"type"`

	// ContactID is the contact acted upon (demote, relink source).
	ContactID int64 `json:"contactId,omitempty"`

	// PrimaryID is the primary the action links to.
	PrimaryID int64 `json:"primaryId,omitempty"`

	// Email and PhoneNumber are the values inserted by create actions.
	Email       *string `json:"email,omitempty"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`

	// Reason explains why this action is needed.
	Reason string `json:"reason"`
}

// Plan is the decision computed for one observation, before it is applied.
type Plan struct {
	// Outcome classifies the decision.
	Outcome Outcome `json:"outcome"`

	// PrimaryID is the chosen primary, zero when a new primary will be created.
	PrimaryID int64 `json:"primaryId"`

	// MatchedIDs are the ids of the contacts that matched the observation.
	MatchedIDs []int64 `json:"matchedIds"`

	// Actions are the mutations to apply, in order.
	Actions []Action `json:"actions"`
}

// Recorder receives one observation per reconciliation decision.
type Recorder interface {
	ObserveDecision(outcome Outcome, elapsed time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ObserveDecision(Outcome, time.Duration) {}
