package router

import (
	"wallet-console/internal/core/domain"
	"wallet-console/pkg/apperror"
)

var adminOnly = map[domain.Route]bool{
	domain.RouteAdminUsers:        true,
	domain.RouteAdminTransactions: true,
}

var public = map[domain.Route]bool{
	domain.RouteSignIn: true,
	domain.RouteSignUp: true,
}

// LandingRoute is where a freshly signed-in principal goes.
func LandingRoute(role domain.Role) domain.Route {
	if role.IsAdmin() {
		return domain.RouteAdminUsers
	}
	return domain.RouteDashboard
}

// IsReachable reports whether role may open route. Admins reach everything;
// users reach everything except the admin views.
func IsReachable(route domain.Route, role domain.Role) bool {
	if adminOnly[route] {
		return role.IsAdmin()
	}
	return true
}

// IsAdminOnly reports whether route requires the admin role.
func IsAdminOnly(route domain.Route) bool {
	return adminOnly[route]
}

// RoleSource reports the current role, ok=false when signed out.
type RoleSource interface {
	Role() (domain.Role, bool)
}

// Router makes navigation decisions from the role held by the session at the
// moment of the decision. It keeps no copy of the role. The server still
// enforces access; this only avoids showing views that would be refused.
type Router struct {
	roles RoleSource
}

func New(roles RoleSource) *Router {
	return &Router{roles: roles}
}

// Landing returns the landing route for the current session, or the sign-in
// route when signed out.
func (r *Router) Landing() domain.Route {
	role, ok := r.roles.Role()
	if !ok {
		return domain.RouteSignIn
	}
	return LandingRoute(role)
}

// Authorize checks whether route may be opened now.
func (r *Router) Authorize(route domain.Route) error {
	if public[route] {
		return nil
	}
	role, ok := r.roles.Role()
	if !ok {
		return apperror.ErrNotSignedIn()
	}
	if !IsReachable(route, role) {
		return apperror.ErrRouteForbidden(string(route))
	}
	return nil
}
