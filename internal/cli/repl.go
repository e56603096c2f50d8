package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests provide a stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	EditProfile(ctx context.Context) error
	ChangePassword(ctx context.Context) error
	List(ctx context.Context) error
	AddIssue(ctx context.Context) error
	EditIssue(ctx context.Context) error
	DeleteIssue(ctx context.Context) error
	Dashboard(ctx context.Context) error
	Chart(ctx context.Context) error
	Report(ctx context.Context, kind string) error
	Settings(ctx context.Context) error
	SetKPIs(ctx context.Context) error
	ToggleDarkMode(ctx context.Context) error
	ToggleNotifications(ctx context.Context) error
}

// runREPL reads a line, parses the first token as the command, and
// dispatches to methods on a. The loop exits on scanner EOF or "exit"/
// "quit". Handler errors are ignored here; handlers print their own
// messages so the loop stays focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("cobradash %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: dashboard, chart, (l)ist, add, edit, delete, report [kpi|issues], settings, kpis, darkmode, notify, whoami, profile, passwd, logout, exit")
			} else {
				printlnFn("Available commands: register, login, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami":
			_ = a.WhoAmI(ctx)

		case "profile":
			_ = a.EditProfile(ctx)

		case "passwd":
			_ = a.ChangePassword(ctx)

		case "l", "list":
			_ = a.List(ctx)

		case "add":
			_ = a.AddIssue(ctx)

		case "edit":
			_ = a.EditIssue(ctx)

		case "delete":
			_ = a.DeleteIssue(ctx)

		case "dashboard":
			_ = a.Dashboard(ctx)

		case "chart":
			_ = a.Chart(ctx)

		case "report":
			kind := "kpi"
			if len(args) > 0 {
				kind = args[0]
			}
			_ = a.Report(ctx, kind)

		case "settings":
			_ = a.Settings(ctx)

		case "kpis":
			_ = a.SetKPIs(ctx)

		case "darkmode":
			_ = a.ToggleDarkMode(ctx)

		case "notify":
			_ = a.ToggleNotifications(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
