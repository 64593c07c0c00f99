package server

import "net/http"

func (s *Server) initRoutes() {
	s.RegisterRouteHandler("GET "+RouteRoot, ChainMiddleware(s.RootHandler(), s.PublicMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAccueil, ChainMiddleware(s.AccueilHandler(), s.PublicMiddleware()...))

	// SESSION
	s.RegisterRouteHandler("GET "+RouteAuthLogin, ChainMiddleware(s.LoginViewHandler(), s.PublicMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAuthLogin, ChainMiddleware(s.LoginHandler(), s.PublicMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAuthRegister, ChainMiddleware(s.RegisterHandler(), s.PublicMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.PublicMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAuthSession, ChainMiddleware(s.SessionHandler(), s.PublicMiddleware()...))

	// DASHBOARD
	s.RegisterRouteHandler("GET "+RouteDashboard, ChainMiddleware(s.DashboardHandler(), s.ProtectedMiddleware()...))

	// ROUTERS
	s.RegisterRouteHandler("GET "+RouteRouters, ChainMiddleware(s.ListRoutersHandler(), s.ProtectedMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteRouters, ChainMiddleware(s.CreateRouterHandler(), s.ProtectedMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteRouter, ChainMiddleware(s.GetRouterHandler(), s.ProtectedMiddleware()...))
	s.RegisterRouteHandler("PUT "+RouteRouter, ChainMiddleware(s.UpdateRouterHandler(), s.ProtectedMiddleware()...))
	s.RegisterRouteHandler("DELETE "+RouteRouter, ChainMiddleware(s.DeleteRouterHandler(), s.ProtectedMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteRouterTestConnection, ChainMiddleware(s.TestConnectionHandler(), s.ProtectedMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteRouterTypes, ChainMiddleware(s.RouterTypesHandler(), s.ProtectedMiddleware()...))

	// APPLIANCES
	s.RegisterRouteHandler("GET "+RouteRouterAppliances, ChainMiddleware(s.ListAppliancesHandler(), s.ProtectedMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAppliances, ChainMiddleware(s.SaveApplianceHandler(), s.ProtectedMiddleware()...))
	s.RegisterRouteHandler("PUT "+RouteAppliance, ChainMiddleware(s.SaveApplianceHandler(), s.ProtectedMiddleware()...))
	s.RegisterRouteHandler("DELETE "+RouteAppliance, ChainMiddleware(s.DeleteApplianceHandler(), s.ProtectedMiddleware()...))

	// SETTINGS
	s.RegisterRouteHandler("POST "+RouteAccountPassword, ChainMiddleware(s.ChangePasswordHandler(), s.ProtectedMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteGeneralConfiguration, ChainMiddleware(s.GeneralConfigurationHandler(), s.ProtectedMiddleware()...))

	// CORS preflight for every route
	s.RegisterRouteHandler("OPTIONS /", ChainMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, s.PublicMiddleware()...))
}
