package handler

// Route pattern constants for chi router registration.
const (
	// RouteSignup is the account registration route.
	RouteSignup = "/signup"
	// RouteLogin is the login route.
	RouteLogin = "/login"
	// RouteLogout is the logout route.
	RouteLogout = "/logout"

	// RouteMe is the authenticated account route.
	RouteMe = "/me"
	// RouteMePassword is the credential rotation route.
	RouteMePassword = RouteMe + "/password"

	// RouteAdmin is the administrator route group prefix.
	RouteAdmin = "/admin"
	// RouteAdminInvites is the invite administration route.
	RouteAdminInvites = RouteAdmin + "/invites"
	// RouteAdminUsers is the account administration route.
	RouteAdminUsers = RouteAdmin + "/users"
	// RouteAdminUsersUsername is the account administration route pattern.
	RouteAdminUsersUsername = RouteAdminUsers + "/{username}"
	// RouteAdminEvents is the audit log administration route.
	RouteAdminEvents = RouteAdmin + "/events"

	// RouteStatus is the API status route.
	RouteStatus = "/status"
	// RouteHealth is the health check route.
	RouteHealth = "/health"
	// RouteHealthLive is the liveness check route.
	RouteHealthLive = RouteHealth + "/live"
	// RouteHealthReady is the readiness check route.
	RouteHealthReady = RouteHealth + "/ready"
)
