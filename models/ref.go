// ABOUTME: Weak references between entities
// ABOUTME: A Ref names a target by kind and id; the target may have been deleted
package models

type RefKind string

const (
	RefClient   RefKind = "client"
	RefDeal     RefKind = "deal"
	RefContact  RefKind = "contact"
	RefProject  RefKind = "project"
	RefCampaign RefKind = "campaign"
	RefStage    RefKind = "stage"
)

// UnknownLabel is shown in place of a reference whose target no longer exists.
const UnknownLabel = "unknown"

// Ref points at another record without any integrity guarantee.
type Ref struct {
	Kind RefKind `json:"kind"`
	ID   string  `json:"id"`
}

// NewRef builds a Ref. It reports false when either part is empty.
func NewRef(kind RefKind, id string) (Ref, bool) {
	if kind == "" || id == "" {
		return Ref{}, false
	}
	return Ref{Kind: kind, ID: id}, true
}

func (r Ref) String() string {
	return string(r.Kind) + ":" + r.ID
}
