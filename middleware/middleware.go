// Package middleware provides HTTP authorization middleware for Steward.
package middleware

import (
	"encoding/json"

	"github.com/xraph/forge"

	"github.com/xraph/steward"
	"github.com/xraph/steward/id"
)

// Require enforces that the authenticated identity holds the given
// permission identifier (resource:action). Requests without a resolvable
// identity are denied.
func Require(eng *steward.Engine, permission string) forge.Middleware {
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			userID, ok := resolveIdentity(ctx)
			if !ok {
				return denyResponse(ctx)
			}
			held, err := eng.HasPermission(ctx.Context(), userID, permission)
			if err != nil || !held {
				return denyResponse(ctx)
			}
			return next(ctx)
		}
	}
}

// RequireRole enforces that the authenticated identity holds the given role.
func RequireRole(eng *steward.Engine, roleIdentifier string) forge.Middleware {
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			userID, ok := resolveIdentity(ctx)
			if !ok {
				return denyResponse(ctx)
			}
			r, err := eng.GetRoleByIdentifier(ctx.Context(), roleIdentifier)
			if err != nil {
				return denyResponse(ctx)
			}
			held, err := eng.HasRole(ctx.Context(), userID, r.ID)
			if err != nil || !held {
				return denyResponse(ctx)
			}
			return next(ctx)
		}
	}
}

// RequireAny allows the request if the identity holds ANY of the permissions.
func RequireAny(eng *steward.Engine, permissions ...string) forge.Middleware {
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			userID, ok := resolveIdentity(ctx)
			if !ok {
				return denyResponse(ctx)
			}
			for _, p := range permissions {
				held, err := eng.HasPermission(ctx.Context(), userID, p)
				if err == nil && held {
					return next(ctx)
				}
			}
			return denyResponse(ctx)
		}
	}
}

// RequireAll allows the request only if the identity holds ALL permissions.
func RequireAll(eng *steward.Engine, permissions ...string) forge.Middleware {
	return func(next forge.Handler) forge.Handler {
		return func(ctx forge.Context) error {
			userID, ok := resolveIdentity(ctx)
			if !ok {
				return denyResponse(ctx)
			}
			for _, p := range permissions {
				held, err := eng.HasPermission(ctx.Context(), userID, p)
				if err != nil || !held {
					return denyResponse(ctx)
				}
			}
			return next(ctx)
		}
	}
}

// resolveIdentity extracts the acting identity from context.
// Priority: steward actor (standalone mode) → Forge user ID (from Authsome).
func resolveIdentity(ctx forge.Context) (id.AccountID, bool) {
	if actor, ok := steward.ActorFromContext(ctx.Context()); ok {
		return actor.ID, true
	}
	if userID := forge.UserIDFromContext(ctx.Context()); userID != "" {
		acctID, err := id.ParseAccountID(userID)
		if err == nil {
			return acctID, true
		}
	}
	return id.Nil, false
}

func denyResponse(ctx forge.Context) error {
	ctx.SetHeader("Content-Type", "application/json")
	ctx.Response().WriteHeader(403)
	return json.NewEncoder(ctx.Response()).Encode(map[string]string{"error": "access denied"})
}
