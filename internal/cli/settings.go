package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
)

func (a *App) Settings(ctx context.Context) error {
	dark, err := a.prefs.DarkMode(ctx)
	if err != nil {
		return err
	}
	notif, err := a.prefs.NotificationsEnabled(ctx)
	if err != nil {
		return err
	}
	keys, err := a.prefs.KPIKeys(ctx)
	if err != nil {
		return err
	}

	selection := "all"
	if len(keys) > 0 {
		selection = strings.Join(keys, ", ")
	}
	printlnFn(fmt.Sprintf("dark mode: %v", dark))
	printlnFn(fmt.Sprintf("notifications: %v", notif))
	printlnFn("kpis:", selection)
	return nil
}

// SetKPIs stores the dashboard selection. An empty input clears the
// selection, which means the full catalog is shown.
func (a *App) SetKPIs(ctx context.Context) error {
	raw, err := GetSimpleText(a.reader, "KPI keys, comma separated (empty for all)", os.Stdout)
	if err != nil {
		return err
	}

	var keys []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	if err := a.prefs.SetKPIKeys(ctx, keys); err != nil {
		printlnFn("Could not save selection:", err.Error())
		return err
	}
	printlnFn("Selection saved.")
	return nil
}

func (a *App) ToggleDarkMode(ctx context.Context) error {
	cur, err := a.prefs.DarkMode(ctx)
	if err != nil {
		return err
	}
	if err := a.prefs.SetDarkMode(ctx, !cur); err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("dark mode: %v", !cur))
	return nil
}

func (a *App) ToggleNotifications(ctx context.Context) error {
	cur, err := a.prefs.NotificationsEnabled(ctx)
	if err != nil {
		return err
	}
	if err := a.prefs.SetNotificationsEnabled(ctx, !cur); err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("notifications: %v", !cur))
	return nil
}
