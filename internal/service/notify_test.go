package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicai/backend/internal/memstore"
	"github.com/civicai/backend/internal/models"
	"github.com/civicai/backend/internal/service"
)

func sampleNotifications() []models.Notification {
	return []models.Notification{
		{ID: "n1", Message: "system maintenance tonight"},
		{ID: "n2", Type: models.NotificationSubmitted, TargetRole: "municipal", TargetDepartment: "Roads Department", Department: "Roads Department", ReporterID: "u1"},
		{ID: "n3", Type: models.NotificationAssigned, Department: "Roads Department", ReporterID: "u1"},
		{ID: "n4", Type: models.NotificationResolved, Department: "Roads Department", ReporterID: "u2"},
		{ID: "n5", Type: models.NotificationSubmitted, TargetRole: "municipal", TargetDepartment: "Sanitation Department", Department: "Sanitation Department", ReporterID: "u2"},
		{ID: "n6", TargetUserID: "u1", Message: "your reward is ready"},
	}
}

func idsOf(ns []models.Notification) []string {
	out := make([]string, 0, len(ns))
	for _, n := range ns {
		out = append(out, n.ID)
	}
	return out
}

func TestVisibleTo(t *testing.T) {
	all := sampleNotifications()
	cases := []struct {
		name   string
		viewer models.Viewer
		want   []string
	}{
		{"anonymous sees only untargeted", models.Viewer{}, []string{"n1"}},
		{"citizen sees own targets and own lifecycle", models.Viewer{Role: "citizen", UserID: "u1"}, []string{"n3", "n6"}},
		{"other citizen", models.Viewer{Role: "user", UserID: "u2"}, []string{"n4"}},
		{"municipal admin sees all submissions", models.Viewer{Role: "admin", Department: "Municipal"}, []string{"n2", "n5"}},
		{"department admin sees own submissions", models.Viewer{Role: "admin", Department: "Roads Department"}, []string{"n2"}},
		{"role match without user target", models.Viewer{Role: "municipal"}, []string{"n1", "n2", "n3", "n4", "n5"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := service.VisibleTo(tc.viewer, all)
			assert.Equal(t, tc.want, idsOf(got))
		})
	}
}

func TestVisibleToIsPure(t *testing.T) {
	all := sampleNotifications()
	viewer := models.Viewer{Role: "citizen", UserID: "u1"}
	first := idsOf(service.VisibleTo(viewer, all))
	second := idsOf(service.VisibleTo(viewer, all))
	assert.Equal(t, first, second)
	assert.Len(t, all, 6, "input slice must not be mutated")
}

func TestClearForRemovesOnlyVisible(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	for _, n := range sampleNotifications() {
		require.NoError(t, store.AddNotification(ctx, n))
	}
	svc := &service.NotificationService{Store: store}

	removed, err := svc.ClearFor(ctx, models.Viewer{Role: "citizen", UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	// everyone else's stream is intact
	left, err := store.ListNotifications(ctx)
	require.NoError(t, err)
	assert.Len(t, left, 4)
	municipal, err := svc.ListFor(ctx, models.Viewer{Role: "admin", Department: "Municipal"})
	require.NoError(t, err)
	assert.Len(t, municipal, 2)
}

func TestClearForAnonymousNoTargets(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	require.NoError(t, store.AddNotification(ctx, models.Notification{ID: "n1", TargetUserID: "u1"}))
	svc := &service.NotificationService{Store: store}

	removed, err := svc.ClearFor(ctx, models.Viewer{})
	require.NoError(t, err)
	assert.Zero(t, removed)
}
