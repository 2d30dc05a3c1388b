// Package steward manages administrative identities and the access-control
// graph that governs what each identity may do.
//
// The authorization model is a pure union of granted capabilities resolved
// through the Permission → Policy → Role → Assignment graph; there are no
// deny rules and no precedence. The account lifecycle controller owns the
// administrator account record and its active/suspended/inactive
// transitions, enforcing actor-vs-target guard rules.
//
//	eng, err := steward.NewEngine(
//	    steward.WithStore(memStore),
//	    steward.WithProvisioner(prov),
//	)
//	roles, err := eng.GetEffectiveRoles(ctx, userID)
package steward

import (
	"github.com/xraph/steward/account"
	"github.com/xraph/steward/id"
)

// Actor is the already-authenticated identity performing an operation.
// Token issuance and verification happen upstream; the engine consumes only
// the actor's account ID and type.
type Actor struct {
	ID   id.AccountID `json:"id"`
	Type account.Type `json:"type"`
}

// IsSuperAdmin reports whether the actor holds the super_admin type.
func (a Actor) IsSuperAdmin() bool { return a.Type == account.TypeSuperAdmin }
