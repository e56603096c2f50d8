package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"
)

type fakeExec struct {
	loggedIn bool
	calls    []string
}

func (f *fakeExec) record(c string) error { f.calls = append(f.calls, c); return nil }

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Register(ctx context.Context) error {
	return f.record("register")
}
func (f *fakeExec) Login(ctx context.Context) error {
	f.loggedIn = true
	return f.record("login")
}
func (f *fakeExec) Logout(ctx context.Context) error {
	f.loggedIn = false
	return f.record("logout")
}
func (f *fakeExec) WhoAmI(ctx context.Context) error         { return f.record("whoami") }
func (f *fakeExec) EditProfile(ctx context.Context) error    { return f.record("profile") }
func (f *fakeExec) ChangePassword(ctx context.Context) error { return f.record("passwd") }
func (f *fakeExec) List(ctx context.Context) error           { return f.record("list") }
func (f *fakeExec) AddIssue(ctx context.Context) error       { return f.record("add") }
func (f *fakeExec) EditIssue(ctx context.Context) error      { return f.record("edit") }
func (f *fakeExec) DeleteIssue(ctx context.Context) error    { return f.record("delete") }
func (f *fakeExec) Dashboard(ctx context.Context) error      { return f.record("dashboard") }
func (f *fakeExec) Chart(ctx context.Context) error          { return f.record("chart") }
func (f *fakeExec) Report(ctx context.Context, kind string) error {
	return f.record("report:" + kind)
}
func (f *fakeExec) Settings(ctx context.Context) error            { return f.record("settings") }
func (f *fakeExec) SetKPIs(ctx context.Context) error             { return f.record("kpis") }
func (f *fakeExec) ToggleDarkMode(ctx context.Context) error      { return f.record("darkmode") }
func (f *fakeExec) ToggleNotifications(ctx context.Context) error { return f.record("notify") }

func TestRunREPL_DispatchesCommands(t *testing.T) {
	origPrint := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = origPrint })

	input := strings.Join([]string{
		"help",
		"login",
		"help",
		"dashboard",
		"l",
		"report",
		"report issues",
		"kpis",
		"foobar",
		"logout",
		"exit",
	}, "\n")

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "s" }, bufio.NewScanner(strings.NewReader(input)))

	want := []string{"login", "dashboard", "list", "report:kpi", "report:issues", "kpis", "logout"}
	if len(exec.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", exec.calls, want)
	}
	for i := range want {
		if exec.calls[i] != want[i] {
			t.Fatalf("call %d = %q, want %q (all: %v)", i, exec.calls[i], want[i], exec.calls)
		}
	}
}

func TestRunREPL_ExitsOnEOF(t *testing.T) {
	origPrint := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = origPrint })

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewScanner(strings.NewReader("")))

	if len(exec.calls) != 0 {
		t.Fatalf("unexpected calls: %v", exec.calls)
	}
}
