package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/mxcollect/cobradash/internal/common"
	"github.com/mxcollect/cobradash/internal/logging"
	"github.com/mxcollect/cobradash/internal/models"
	"github.com/mxcollect/cobradash/internal/report"
	"github.com/mxcollect/cobradash/internal/repositories/issues"
	"github.com/mxcollect/cobradash/internal/repositories/settings"
)

// Notifier presents a notification when an issue is handed to someone.
// Delivery is fire-and-forget; failures stay inside the implementation.
type Notifier interface {
	AssigneeChanged(ctx context.Context, issue *models.Issue)
}

// IssueService implements role-gated issue management. Every mutating
// operation checks the actor's capability once at dispatch.
type IssueService struct {
	issues   issues.Repository
	prefs    settings.Repository
	notifier Notifier
	export   report.Exporter
	log      logging.Logger
}

func NewIssueService(issueRepo issues.Repository, prefs settings.Repository, notifier Notifier, export report.Exporter, log logging.Logger) *IssueService {
	return &IssueService{issues: issueRepo, prefs: prefs, notifier: notifier, export: export, log: log}
}

// Save creates the issue when in.ID is zero, otherwise replaces the stored
// record. When an update hands the issue to a new assignee, the notifier is
// invoked, gated by the notifications preference.
func (s *IssueService) Save(ctx context.Context, actor *models.User, in *models.Issue) (int64, error) {
	if !CanManageIssues(actor) {
		return 0, common.ErrNotAuthorized
	}
	if err := validateIssue(in); err != nil {
		return 0, err
	}

	if in.ID == 0 {
		id, err := s.issues.Insert(ctx, in)
		if err != nil {
			return 0, err
		}
		s.log.Info(ctx, "issue created", "issue_id", id)
		// a fresh record has no prior assignee, so creating it already
		// assigned counts as a hand-off
		if assigneeChanged(nil, in.AssignedTo) {
			s.maybeNotify(ctx, in)
		}
		return id, nil
	}

	prev, err := s.issues.GetByID(ctx, in.ID)
	if err != nil {
		return 0, err
	}
	in.CreatedAt = prev.CreatedAt
	if err := s.issues.Update(ctx, in); err != nil {
		return 0, err
	}

	if assigneeChanged(prev.AssignedTo, in.AssignedTo) {
		s.maybeNotify(ctx, in)
	}
	return in.ID, nil
}

// Delete removes an issue. Administrator only.
func (s *IssueService) Delete(ctx context.Context, actor *models.User, id int64) error {
	if !CanManageIssues(actor) {
		return common.ErrNotAuthorized
	}
	if err := s.issues.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info(ctx, "issue deleted", "issue_id", id)
	return nil
}

// Get is a one-shot lookup for transactional flows (edit form prefill).
func (s *IssueService) Get(ctx context.Context, id int64) (*models.Issue, error) {
	return s.issues.GetByID(ctx, id)
}

// List is a one-shot snapshot, newest first.
func (s *IssueService) List(ctx context.Context) ([]models.Issue, error) {
	return s.issues.GetAll(ctx)
}

// Observe emits the full issue list live, newest first.
func (s *IssueService) Observe(ctx context.Context) <-chan []models.Issue {
	return s.issues.ObserveAll(ctx)
}

// GenerateReport exports the current issue list as a document.
func (s *IssueService) GenerateReport(ctx context.Context) ([]byte, error) {
	all, err := s.issues.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.export.IssueReport(all)
}

// maybeNotify consults the notifications preference at dispatch time. A
// preference read failure suppresses the notification rather than failing
// the write that already happened.
func (s *IssueService) maybeNotify(ctx context.Context, issue *models.Issue) {
	enabled, err := s.prefs.NotificationsEnabled(ctx)
	if err != nil {
		s.log.Warn(ctx, "could not read notifications preference", "error", err)
		return
	}
	if enabled && s.notifier != nil {
		s.notifier.AssigneeChanged(ctx, issue)
	}
}

// assigneeChanged reports a hand-off to a different, non-empty assignee.
// Clearing the assignee is not a hand-off.
func assigneeChanged(prev, next *string) bool {
	if next == nil || *next == "" {
		return false
	}
	return prev == nil || *prev != *next
}

func validateIssue(i *models.Issue) error {
	switch {
	case strings.TrimSpace(i.Title) == "":
		return fmt.Errorf("%w: title is required", common.ErrValidation)
	case !i.Priority.Valid():
		return fmt.Errorf("%w: unknown priority %q", common.ErrValidation, i.Priority)
	case !i.Status.Valid():
		return fmt.Errorf("%w: unknown status %q", common.ErrValidation, i.Status)
	}
	return nil
}
