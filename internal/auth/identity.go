// internal/auth/identity.go
//
// Minimal identity extraction placed here so the listener can attach an
// authenticated principal at context construction.  A full authentication
// system (tokens, mTLS client certs) will later replace or extend this.
//
// Usage
// -----
//     srv := server.New(cfg, ctn, store, server.WithIdentity(auth.FromRequest))
//
// Notes
// -----
// • Only HTTP Basic credentials are inspected; the password is discarded
//   here—verification belongs to a consumer module.
// • Oxford commas, two spaces after periods.

package auth

import (
	"net/http"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/yanizio/relay/internal/acl"
	"github.com/yanizio/relay/internal/request"
)

// FromRequest derives the optional principal for a request.  It returns nil
// when the request carries no recognizable credentials.
func FromRequest(r *http.Request) *request.Identity {
	if user, _, ok := r.BasicAuth(); ok && user != "" {
		return &request.Identity{Subject: user}
	}
	return nil
}

// WithRoles wraps FromRequest with an ACL lookup so the principal carries its
// role names.  Lookup failures degrade to a role-less identity; they are
// logged, not fatal, because the request itself is still servable.
func WithRoles(db *sqlx.DB) func(*http.Request) *request.Identity {
	return func(r *http.Request) *request.Identity {
		ident := FromRequest(r)
		if ident == nil {
			return nil
		}
		roles, err := acl.SubjectRoles(r.Context(), db, ident.Subject)
		if err != nil {
			zap.L().Warn("role lookup failed",
				zap.String("component", "auth"),
				zap.String("subject", ident.Subject),
				zap.Error(err))
			return ident
		}
		ident.Roles = roles
		return ident
	}
}
