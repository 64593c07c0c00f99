package server

import "github.com/jrsteele09/solar-dashboard/auth"

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	RouteRoot    = "/{$}"
	RouteAccueil = "/accueil"

	// Auth Routes
	RouteAuthLogin    = auth.LoginRoute
	RouteAuthRegister = "/auth/register"
	RouteAuthLogout   = "/auth/logout"
	RouteAuthSession  = "/auth/session"

	// Protected Routes
	RouteDashboard            = "/dashboard"
	RouteRouters              = "/routeurs"
	RouteRouter               = "/routeurs/{id}"
	RouteRouterTestConnection = "/routeurs/{id}/test-connection"
	RouteRouterAppliances     = "/routeurs/{id}/appareils"
	RouteAppliances           = "/appareils"
	RouteAppliance            = "/appareils/{id}"
	RouteRouterTypes          = "/router-types"
	RouteAccountPassword      = "/account-settings/password"
	RouteGeneralConfiguration = "/configuration_generale"
)
