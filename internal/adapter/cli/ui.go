package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"wallet-console/internal/client"
	"wallet-console/internal/console"
	"wallet-console/internal/core/domain"
	"wallet-console/internal/ledger"
	"wallet-console/pkg/apperror"

	"github.com/shopspring/decimal"
)

// UI is the interactive menu loop on top of a console.App.
type UI struct {
	app *console.App
	in  *bufio.Reader
	out io.Writer
}

func NewUI(app *console.App, in *bufio.Reader, out io.Writer) *UI {
	return &UI{app: app, in: in, out: out}
}

// Run shows the menu for the current view until the user quits or input ends.
func (ui *UI) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var keepGoing bool
		switch ui.app.Current() {
		case domain.RouteSignIn, domain.RouteSignUp:
			keepGoing = ui.authMenu(ctx)
		default:
			role, ok := ui.app.Role()
			switch {
			case !ok:
				ui.app.Navigate(domain.RouteSignIn)
				keepGoing = true
			case role.IsAdmin():
				keepGoing = ui.adminMenu(ctx)
			default:
				keepGoing = ui.userMenu(ctx)
			}
		}
		if !keepGoing {
			return nil
		}
	}
}

func (ui *UI) authMenu(ctx context.Context) bool {
	fmt.Fprintln(ui.out, "\n1) Sign in")
	fmt.Fprintln(ui.out, "2) Sign up")
	fmt.Fprintln(ui.out, "0) Quit")
	choice, ok := ui.prompt("> ")
	if !ok {
		return false
	}

	switch choice {
	case "1":
		email, _ := ui.prompt("Email: ")
		password, _ := ui.prompt("Password: ")
		if _, err := ui.app.SignIn(ctx, email, password); err != nil {
			ui.showError(err)
		}
	case "2":
		ui.app.Navigate(domain.RouteSignUp)
		username, _ := ui.prompt("Username: ")
		email, _ := ui.prompt("Email: ")
		password, _ := ui.prompt("Password: ")
		if err := ui.app.SignUp(ctx, username, email, password); err != nil {
			ui.showError(err)
		}
	case "0":
		return false
	}
	return true
}

func (ui *UI) userMenu(ctx context.Context) bool {
	fmt.Fprintln(ui.out, "\n1) Dashboard")
	fmt.Fprintln(ui.out, "2) Top up")
	fmt.Fprintln(ui.out, "3) Send transfer")
	fmt.Fprintln(ui.out, "4) Exchange")
	fmt.Fprintln(ui.out, "5) Transaction history")
	fmt.Fprintln(ui.out, "9) Sign out")
	fmt.Fprintln(ui.out, "0) Quit")
	choice, ok := ui.prompt("> ")
	if !ok {
		return false
	}

	switch choice {
	case "1":
		ui.dashboard(ctx)
	case "2":
		ui.topUp(ctx)
	case "3":
		ui.transfer(ctx)
	case "4":
		ui.exchange(ctx)
	case "5":
		ui.history(ctx)
	case "9":
		ui.signOut(ctx)
	case "0":
		return false
	}
	return true
}

func (ui *UI) adminMenu(ctx context.Context) bool {
	fmt.Fprintln(ui.out, "\n1) Users")
	fmt.Fprintln(ui.out, "2) User transactions")
	fmt.Fprintln(ui.out, "3) My dashboard")
	fmt.Fprintln(ui.out, "9) Sign out")
	fmt.Fprintln(ui.out, "0) Quit")
	choice, ok := ui.prompt("> ")
	if !ok {
		return false
	}

	switch choice {
	case "1":
		ui.adminUsers(ctx)
	case "2":
		ui.adminLedger(ctx)
	case "3":
		ui.dashboard(ctx)
	case "9":
		ui.signOut(ctx)
	case "0":
		return false
	}
	return true
}

func (ui *UI) dashboard(ctx context.Context) {
	view, err := ui.app.Dashboard(ctx)
	if err != nil {
		ui.showError(err)
		return
	}
	fmt.Fprintln(ui.out, view.Header)
	for _, b := range view.Balances {
		fmt.Fprintf(ui.out, "  %s  %s\n", b.Currency, b.Text)
	}
}

func (ui *UI) topUp(ctx context.Context) {
	if err := ui.app.Open(domain.RouteTopUp); err != nil {
		ui.showError(err)
		return
	}
	amount, ok := ui.promptAmount("Amount to add: ")
	if !ok {
		return
	}
	currency, _ := ui.prompt("Currency (USD): ")

	if _, err := ui.app.TopUp(ctx, amount, domain.ParseCurrency(currency)); err != nil {
		ui.showError(err)
	}
}

func (ui *UI) transfer(ctx context.Context) {
	if err := ui.app.Open(domain.RouteTransfer); err != nil {
		ui.showError(err)
		return
	}
	target, ok := ui.promptID("Recipient account number: ")
	if !ok {
		return
	}
	amount, ok := ui.promptAmount("Amount: ")
	if !ok {
		return
	}
	currency, _ := ui.prompt("Currency (USD): ")

	_, err := ui.app.Transfer(ctx, client.TransferRequest{
		Amount:       amount,
		TargetUserID: target,
		Currency:     domain.ParseCurrency(currency),
	})
	if err != nil {
		ui.showError(err)
	}
}

func (ui *UI) exchange(ctx context.Context) {
	if err := ui.app.Open(domain.RouteExchange); err != nil {
		ui.showError(err)
		return
	}
	amount, ok := ui.promptAmount("Amount: ")
	if !ok {
		return
	}
	from, _ := ui.prompt("From currency: ")
	to, _ := ui.prompt("To currency: ")

	_, err := ui.app.Exchange(ctx, client.ExchangeRequest{
		Amount: amount,
		From:   domain.ParseCurrency(from),
		To:     domain.ParseCurrency(to),
	})
	if err != nil {
		ui.showError(err)
	}
}

func (ui *UI) history(ctx context.Context) {
	view, err := ui.app.History(ctx)
	if err != nil {
		ui.showError(err)
		return
	}
	ui.ledgerTable(view.Rows)
}

func (ui *UI) adminUsers(ctx context.Context) {
	view, err := ui.app.AdminUsers(ctx)
	if err != nil {
		ui.showError(err)
		return
	}

	tw := tabwriter.NewWriter(ui.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSERNAME\tEMAIL\tCREATED\tADMIN\tUSD\tEUR")
	for _, r := range view.Rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Username, r.Email, r.Created, yesNo(r.IsAdmin), r.USD, r.EUR)
	}
	_ = tw.Flush()
}

func (ui *UI) adminLedger(ctx context.Context) {
	if err := ui.app.Open(domain.RouteAdminTransactions); err != nil {
		ui.showError(err)
		return
	}
	id, ok := ui.promptID("User id: ")
	if !ok {
		return
	}

	view, err := ui.app.AdminLedger(ctx, id)
	if err != nil {
		ui.showError(err)
		return
	}
	fmt.Fprintf(ui.out, "Transactions of %s (Acc No: %d)\n", view.Username, view.UserID)
	ui.ledgerTable(view.Rows)
}

func (ui *UI) signOut(ctx context.Context) {
	if err := ui.app.SignOut(ctx); err != nil {
		ui.showError(err)
	}
}

func (ui *UI) ledgerTable(rows []ledger.DisplayTransaction) {
	if len(rows) == 0 {
		fmt.Fprintln(ui.out, "No transactions yet.")
		return
	}

	tw := tabwriter.NewWriter(ui.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tTYPE\tSTATUS\tAMOUNT\tBALANCE\tFROM\tTO\tDESTINATION\tSOURCE")
	for _, r := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Timestamp.Format("2006-01-02 15:04"), r.TypeLabel, r.StatusLabel,
			r.Amount, r.Balance, r.CurrencyFrom, r.CurrencyTo, r.Destination, r.Source)
	}
	_ = tw.Flush()
}

// showError prints err unless it was already reported. Session expiry is
// announced by the expiry handler and discarded responses are not shown.
func (ui *UI) showError(err error) {
	if apperror.IsUnauthorized(err) || apperror.IsDiscarded(err) {
		return
	}
	fmt.Fprintln(ui.out, "Error:", apperror.UserMessage(err))
}

// prompt reads one line. ok is false once input is exhausted.
func (ui *UI) prompt(label string) (string, bool) {
	fmt.Fprint(ui.out, label)
	line, err := ui.in.ReadString('\n')
	line = strings.TrimSpace(line)
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", false
	}
	return line, true
}

func (ui *UI) promptAmount(label string) (decimal.Decimal, bool) {
	s, ok := ui.prompt(label)
	if !ok {
		return decimal.Zero, false
	}
	amount, err := decimal.NewFromString(s)
	if err != nil {
		fmt.Fprintln(ui.out, "Error: not a number:", s)
		return decimal.Zero, false
	}
	return amount, true
}

func (ui *UI) promptID(label string) (int64, bool) {
	s, ok := ui.prompt(label)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		fmt.Fprintln(ui.out, "Error: not an account number:", s)
		return 0, false
	}
	return id, true
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
