package cli

import (
	"fmt"
	"io"
	"sync"

	"wallet-console/internal/core/domain"
)

var routeTitles = map[domain.Route]string{
	domain.RouteSignIn:            "Sign In",
	domain.RouteSignUp:            "Sign Up",
	domain.RouteDashboard:         "Dashboard",
	domain.RouteTopUp:             "Top Up",
	domain.RouteTransfer:          "Send Transfer",
	domain.RouteExchange:          "Exchange",
	domain.RouteTransactions:      "Transaction History",
	domain.RouteAdminUsers:        "Admin: Users",
	domain.RouteAdminTransactions: "Admin: Transactions",
}

// Terminal shows notifications and view changes on out. It is safe for use
// from the goroutines of in-flight requests.
type Terminal struct {
	mu  sync.Mutex
	out io.Writer
}

func NewTerminal(out io.Writer) *Terminal {
	return &Terminal{out: out}
}

func (t *Terminal) Notify(message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, "\n>> %s\n", message)
}

func (t *Terminal) Navigate(route domain.Route) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, "\n=== %s ===\n", Title(route))
}

// Title returns the heading shown for route.
func Title(route domain.Route) string {
	if s, ok := routeTitles[route]; ok {
		return s
	}
	return string(route)
}
