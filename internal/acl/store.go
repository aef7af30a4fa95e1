// internal/acl/store.go
//
// Small query helpers for Role-Based Access Control.
//
// Context
// -------
// The ACL model lives in the application database:
//
//	role        (id PK, name, enabled)
//	role_acl    (role_id, resource, action, permitted)
//	user_role   (subject, role_id)
//
// The identity hook needs fast answers to two questions:
//  1. Which *role names* does a subject have?     → `SubjectRoles()`
//  2. Is any role permitted for resource/action?  → `Allowed()`
//
// These helpers accept a *sqlx.DB and perform simple parameterised queries.
// They are thin; callers may wrap the results in their own per-request cache.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
// • Max line length 100 columns.
package acl

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// SubjectRoles returns the role *names* bound to the subject.  Disabled roles
// are filtered out.
func SubjectRoles(ctx context.Context, db *sqlx.DB, subject string) ([]string, error) {
	const q = `SELECT r.name
                 FROM user_role ur
                 JOIN role r ON r.id = ur.role_id
                WHERE ur.subject = ? AND r.enabled = TRUE`

	roles := make([]string, 0, 4)
	if err := db.SelectContext(ctx, &roles, q, subject); err != nil {
		return nil, err
	}
	return roles, nil
}

// Allowed reports whether *any* of the candidate roles is permitted for the
// given resource + action.  It executes one query using IN (? … ?).
//
// An empty roles slice returns false, nil.
func Allowed(ctx context.Context, db *sqlx.DB, roles []string, resource, action string) (bool, error) {
	if len(roles) == 0 {
		return false, nil
	}

	const q = `SELECT COUNT(*)
                 FROM role_acl ra
                 JOIN role r ON r.id = ra.role_id
                WHERE r.name IN (?) AND ra.resource = ? AND ra.action = ?
                  AND ra.permitted = TRUE AND r.enabled = TRUE`

	query, args, err := sqlx.In(q, roles, resource, action)
	if err != nil {
		return false, err
	}

	var n int
	if err := db.GetContext(ctx, &n, db.Rebind(query), args...); err != nil {
		return false, err
	}
	return n > 0, nil
}
