package service

import (
	"context"

	"github.com/civicai/backend/internal/models"
)

// VisibleTo filters the notification stream for one viewer. The policy is an
// ordered set of viewer classes; the first class the viewer falls into
// decides, so visibility is a pure function of (viewer, notification).
func VisibleTo(viewer models.Viewer, all []models.Notification) []models.Notification {
	out := make([]models.Notification, 0, len(all))
	for _, n := range all {
		if visible(viewer, n) {
			out = append(out, n)
		}
	}
	return out
}

func visible(v models.Viewer, n models.Notification) bool {
	switch {
	case v.Anonymous():
		// untargeted notifications only; anything addressed is hidden
		return n.TargetUserID == "" && n.TargetRole == "" && n.TargetDepartment == ""

	case v.Role == "citizen" || v.Role == "user":
		if n.TargetUserID == v.UserID && v.UserID != "" {
			return true
		}
		return n.ReporterID != "" && n.ReporterID == v.UserID &&
			(n.Type == models.NotificationAssigned || n.Type == models.NotificationResolved)

	case v.Role == "admin" && v.Department == "Municipal":
		return n.Type == models.NotificationSubmitted &&
			(n.TargetDepartment == "" || n.TargetDepartment == "Municipal" || n.TargetRole == "municipal")

	case v.Role == "admin":
		return n.Type == models.NotificationSubmitted && n.Department == v.Department

	default:
		return n.TargetUserID == "" || n.TargetUserID == v.UserID ||
			(n.TargetRole != "" && n.TargetRole == v.Role)
	}
}

// NotificationService exposes the targeting engine over the store.
type NotificationService struct {
	Store Store
}

func (s *NotificationService) ListFor(ctx context.Context, viewer models.Viewer) ([]models.Notification, error) {
	all, err := s.Store.ListNotifications(ctx)
	if err != nil {
		return nil, err
	}
	return VisibleTo(viewer, all), nil
}

// ClearFor removes only the notifications the viewer is entitled to see,
// never another viewer's queue. Returns the number removed.
func (s *NotificationService) ClearFor(ctx context.Context, viewer models.Viewer) (int, error) {
	all, err := s.Store.ListNotifications(ctx)
	if err != nil {
		return 0, err
	}
	var ids []string
	for _, n := range all {
		if visible(viewer, n) {
			ids = append(ids, n.ID)
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}
	if err := s.Store.DeleteNotifications(ctx, ids); err != nil {
		return 0, err
	}
	return len(ids), nil
}
