package api

import (
	"errors"

	"github.com/xraph/forge"

	"github.com/xraph/steward"
	"github.com/xraph/steward/id"
)

// mapError maps domain errors to Forge HTTP errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, steward.ErrNotFound) {
		return forge.NotFound(err.Error())
	}
	if errors.Is(err, steward.ErrBadRequest) || errors.Is(err, steward.ErrConflict) {
		return forge.BadRequest(err.Error())
	}
	if errors.Is(err, steward.ErrInvariantViolation) {
		return forge.BadRequest(err.Error())
	}
	if errors.Is(err, steward.ErrForbidden) {
		return forge.Forbidden(err.Error())
	}
	return err
}

// actorFrom resolves the acting identity for lifecycle operations.
// Priority: actor attached via steward.WithActor → Forge user ID (from
// Authsome), resolved against the account store.
func (a *API) actorFrom(ctx forge.Context) (steward.Actor, error) {
	if actor, ok := steward.ActorFromContext(ctx.Context()); ok {
		return actor, nil
	}
	userID := forge.UserIDFromContext(ctx.Context())
	if userID == "" {
		return steward.Actor{}, forge.Forbidden("no authenticated actor")
	}
	acctID, err := id.ParseAccountID(userID)
	if err != nil {
		return steward.Actor{}, forge.Forbidden("unrecognized actor identity")
	}
	acct, err := a.eng.GetAccount(ctx.Context(), acctID)
	if err != nil {
		return steward.Actor{}, forge.Forbidden("unknown actor account")
	}
	return steward.Actor{ID: acct.ID, Type: acct.Type}, nil
}

func defaultLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	if limit > 1000 {
		return 1000
	}
	return limit
}
