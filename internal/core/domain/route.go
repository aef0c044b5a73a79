package domain

// Route names a console view. Values match the web client's paths.
type Route string

const (
	RouteSignIn            Route = "/signin"
	RouteSignUp            Route = "/signup"
	RouteDashboard         Route = "/home"
	RouteTopUp             Route = "/top-up"
	RouteTransfer          Route = "/send-transfer"
	RouteExchange          Route = "/exchange"
	RouteTransactions      Route = "/transactions"
	RouteAdminUsers        Route = "/admin"
	RouteAdminTransactions Route = "/admin/transactions"
)
