// Package permission implements the role → action matrix lookups that gate
// CRUD affordances and page visibility.
package permission

import "github.com/vivek100/oneShotCodeGen-sub000/model"

// ResourceSource supplies the current resource definitions. The app config
// registry satisfies this; the indirection keeps the gate working across
// hot reloads without holding a stale snapshot.
type ResourceSource interface {
	Resources() map[string]model.ResourceDef
}

// Gate answers permission questions from the config's permission matrices.
// It is purely declarative: no caching, no side effects, fail-closed.
type Gate struct {
	source ResourceSource
}

// NewGate creates a Gate over the given resource source.
func NewGate(source ResourceSource) *Gate {
	return &Gate{source: source}
}

// Wildcard grants every action on a resource.
const Wildcard = "*"

// Can reports whether role may perform action on resource. True iff the
// resource's permission matrix has an entry for the role and that entry
// contains the action or the wildcard. Unknown roles, resources, or
// resources without a matrix all answer false.
func (g *Gate) Can(role, resource, action string) bool {
	def, ok := g.source.Resources()[resource]
	if !ok || def.Permissions == nil {
		return false
	}
	allowed, ok := def.Permissions[role]
	if !ok {
		return false
	}
	for _, a := range allowed {
		if a == action || a == Wildcard {
			return true
		}
	}
	return false
}

// CanAccessPage reports whether role may see a page. An empty or absent
// roleAccess list means every role is allowed; a non-empty list is an
// allow-list.
func CanAccessPage(role string, page model.PageDef) bool {
	if len(page.RoleAccess) == 0 {
		return true
	}
	for _, r := range page.RoleAccess {
		if r == role {
			return true
		}
	}
	return false
}
