package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Dashboard prints one KPI batch. It reuses the live pipeline and takes the
// first ready state, so the values go through the same cache policy the
// periodic refresh uses.
func (a *App) Dashboard(ctx context.Context) error {
	dctx, cancel := context.WithCancel(ctx)
	defer cancel()

	for st := range a.dashboard.Observe(dctx) {
		if st.Loading {
			continue
		}
		for _, k := range st.KPIs {
			printlnFn(fmt.Sprintf("%-28s %8s  [%s]", k.Name, k.Value, k.Status))
		}
		return nil
	}
	return dctx.Err()
}

func (a *App) Chart(ctx context.Context) error {
	pts, err := a.dashboard.MonthlyPerformance(ctx)
	if err != nil {
		printlnFn("Could not load chart:", err.Error())
		return err
	}
	for _, p := range pts {
		printlnFn(fmt.Sprintf("%s %s (%.0f)", p.Label, strings.Repeat("█", int(p.Value)), p.Value))
	}
	return nil
}

// Report exports the KPI snapshot or the issue list as a PDF in the
// temporary directory.
func (a *App) Report(ctx context.Context, kind string) error {
	var (
		data []byte
		err  error
	)
	switch kind {
	case "kpi":
		data, err = a.dashboard.GenerateReport(ctx)
	case "issues":
		data, err = a.issues.GenerateReport(ctx)
	default:
		printlnFn("Usage: report [kpi|issues]")
		return nil
	}
	if err != nil {
		printlnFn("Could not generate report:", err.Error())
		return err
	}

	path := filepath.Join(os.TempDir(), fmt.Sprintf("cobradash-%s-%s.pdf", kind, uuid.NewString()))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		printlnFn("Could not write report:", err.Error())
		return err
	}
	printlnFn("Report written to", path)
	return nil
}
