package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/mxcollect/cobradash/internal/common"
	"github.com/mxcollect/cobradash/internal/models"
)

func (a *App) List(ctx context.Context) error {
	all, err := a.issues.List(ctx)
	if err != nil {
		printlnFn("Could not load issues:", err.Error())
		return err
	}
	if len(all) == 0 {
		printlnFn("No issues yet.")
		return nil
	}
	for _, i := range all {
		assignee := "-"
		if i.AssignedTo != nil {
			assignee = *i.AssignedTo
		}
		printlnFn(fmt.Sprintf("#%d [%s/%s] %s (asignado: %s)", i.ID, i.Priority, i.Status, i.Title, assignee))
	}
	return nil
}

func (a *App) AddIssue(ctx context.Context) error {
	i := &models.Issue{Status: models.StatusNew}
	var err error
	if i.Title, err = GetSimpleText(a.reader, "Title", os.Stdout); err != nil {
		return err
	}
	if i.Description, err = GetSimpleText(a.reader, "Description", os.Stdout); err != nil {
		return err
	}
	prio, err := GetSimpleText(a.reader, "Priority (low/medium/high/critical)", os.Stdout)
	if err != nil {
		return err
	}
	i.Priority = models.Priority(prio)
	if who, err := GetSimpleText(a.reader, "Assignee (empty for none)", os.Stdout); err != nil {
		return err
	} else if who != "" {
		i.AssignedTo = &who
	}

	return a.saveIssue(ctx, i)
}

func (a *App) EditIssue(ctx context.Context) error {
	id, err := a.promptID()
	if err != nil {
		return err
	}
	i, err := a.issues.Get(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			printlnFn("No such issue.")
		}
		return err
	}

	if v, err := GetSimpleText(a.reader, fmt.Sprintf("Title [%s]", i.Title), os.Stdout); err != nil {
		return err
	} else if v != "" {
		i.Title = v
	}
	if v, err := GetSimpleText(a.reader, fmt.Sprintf("Status [%s] (new/in_progress/closed/blocked)", i.Status), os.Stdout); err != nil {
		return err
	} else if v != "" {
		i.Status = models.Status(v)
	}
	if v, err := GetSimpleText(a.reader, fmt.Sprintf("Priority [%s]", i.Priority), os.Stdout); err != nil {
		return err
	} else if v != "" {
		i.Priority = models.Priority(v)
	}
	if v, err := GetSimpleText(a.reader, "Assignee (empty to keep, '-' to clear)", os.Stdout); err != nil {
		return err
	} else if v == "-" {
		i.AssignedTo = nil
	} else if v != "" {
		i.AssignedTo = &v
	}

	return a.saveIssue(ctx, i)
}

func (a *App) DeleteIssue(ctx context.Context) error {
	id, err := a.promptID()
	if err != nil {
		return err
	}
	actor := a.snapshot().User
	if err := a.issues.Delete(ctx, actor, id); err != nil {
		switch {
		case errors.Is(err, common.ErrNotAuthorized):
			printlnFn("Only administrators can delete issues.")
		case errors.Is(err, common.ErrNotFound):
			printlnFn("No such issue.")
		default:
			printlnFn("Delete failed:", err.Error())
		}
		return err
	}
	printlnFn("Issue deleted.")
	return nil
}

func (a *App) saveIssue(ctx context.Context, i *models.Issue) error {
	actor := a.snapshot().User
	id, err := a.issues.Save(ctx, actor, i)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrNotAuthorized):
			printlnFn("Only administrators can manage issues.")
		case errors.Is(err, common.ErrValidation):
			printlnFn(err.Error())
		default:
			printlnFn("Save failed:", err.Error())
		}
		return err
	}
	printlnFn(fmt.Sprintf("Issue #%d saved.", id))
	return nil
}

func (a *App) promptID() (int64, error) {
	raw, err := GetSimpleText(a.reader, "Issue id", os.Stdout)
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		printlnFn("Not a valid id:", raw)
		return 0, err
	}
	return id, nil
}
