package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicai/backend/internal/events"
	"github.com/civicai/backend/internal/memstore"
	"github.com/civicai/backend/internal/models"
	"github.com/civicai/backend/internal/service"
)

type stubClassifier struct {
	result models.Classification
	err    error
}

func (s stubClassifier) Classify(ctx context.Context, r models.Report) (models.Classification, int64, error) {
	return s.result, 3, s.err
}

type fixture struct {
	engine    *service.LifecycleService
	store     *memstore.Store
	published *[]events.Event
}

func newFixture(t *testing.T, c models.Classification) fixture {
	t.Helper()
	store := memstore.New()
	routes, err := service.NewRoutingTable(service.DefaultCategoryMap())
	require.NoError(t, err)

	bus := events.NewBus()
	var published []events.Event
	bus.Subscribe(func(e events.Event) { published = append(published, e) })

	for _, r := range []models.Responder{
		{ID: "w1", Name: "Ravi Kumar", Contact: "9800000001", Department: "Roads Department", Available: true},
		{ID: "w2", Name: "Suresh Patil", Contact: "9800000002", Department: "Roads Department", Available: true},
		{ID: "w3", Name: "Anita Desai", Contact: "9800000003", Department: "Electrical Department", Available: true},
		{ID: "w4", Name: "Mohan Rao", Contact: "9800000004", Department: "Sanitation Department", Available: false},
	} {
		require.NoError(t, store.CreateResponder(context.Background(), r))
	}

	engine := &service.LifecycleService{
		Store:      store,
		Classifier: stubClassifier{result: c},
		Routes:     routes,
		Coins:      &service.CoinService{Store: store},
		Events:     bus,
		Logger:     zerolog.Nop(),
	}
	return fixture{engine: engine, store: store, published: &published}
}

func submitReport(t *testing.T, f fixture, reporterID string) models.Issue {
	t.Helper()
	issue, err := f.engine.Submit(context.Background(), models.Report{
		Address:      "MG Road, Pune",
		Description:  "deep pothole near the bus stop",
		ReporterName: "Asha",
		ReporterID:   reporterID,
	})
	require.NoError(t, err)
	return issue
}

func TestSubmitPipeline(t *testing.T) {
	f := newFixture(t, models.Classification{Category: "Pothole", Confidence: 92, Size: "Medium"})
	issue := submitReport(t, f, "u1")

	assert.Equal(t, "#001", issue.ID)
	assert.Equal(t, models.StatusPending, issue.Status)
	assert.Equal(t, models.SeverityHigh, issue.Severity)
	assert.Equal(t, "Roads Department", issue.Department)
	assert.Equal(t, "Ravi Kumar", issue.Contractor)
	assert.Empty(t, issue.AssignedTo)
	assert.GreaterOrEqual(t, issue.PriorityScore, 1)
	assert.LessOrEqual(t, issue.PriorityScore, 10)

	balance, err := f.store.GetBalance(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 20, balance)

	require.Len(t, *f.published, 1)
	assert.Equal(t, events.SignalSubmitted, (*f.published)[0].Signal)

	all, err := f.store.ListNotifications(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	n := all[0]
	assert.Equal(t, models.NotificationSubmitted, n.Type)
	assert.Equal(t, "municipal", n.TargetRole)
	assert.Equal(t, "Roads Department", n.TargetDepartment)
	assert.Equal(t, "u1", n.ReporterID)

	// municipal oversight and the routed department see it, a sibling
	// department does not
	assert.Len(t, service.VisibleTo(models.Viewer{Role: "admin", Department: "Municipal"}, all), 1)
	assert.Len(t, service.VisibleTo(models.Viewer{Role: "admin", Department: "Roads Department"}, all), 1)
	assert.Empty(t, service.VisibleTo(models.Viewer{Role: "admin", Department: "Electrical Department"}, all))
}

func TestSubmitIDsAreSequential(t *testing.T) {
	f := newFixture(t, models.Classification{Category: "Garbage", Confidence: 75})
	first := submitReport(t, f, "u1")
	second := submitReport(t, f, "u1")
	assert.Equal(t, "#001", first.ID)
	assert.Equal(t, "#002", second.ID)
}

func TestSubmitRewardTiers(t *testing.T) {
	cases := []struct {
		confidence int
		reward     int
	}{
		{92, 20},
		{85, 17},
		{75, 15},
	}
	for _, tc := range cases {
		f := newFixture(t, models.Classification{Category: "Pothole", Confidence: tc.confidence})
		submitReport(t, f, "u1")
		balance, err := f.store.GetBalance(context.Background(), "u1")
		require.NoError(t, err)
		assert.Equal(t, tc.reward, balance, "confidence %d", tc.confidence)
	}
}

func TestSubmitAnonymousGetsNoReward(t *testing.T) {
	f := newFixture(t, models.Classification{Category: "Pothole", Confidence: 95})
	submitReport(t, f, "")
	txs, err := f.store.ListTransactions(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestSubmitUnmappedCategory(t *testing.T) {
	f := newFixture(t, models.Classification{Category: "Graffiti", Confidence: 90})
	_, err := f.engine.Submit(context.Background(), models.Report{ReporterID: "u1"})
	require.Error(t, err)

	issues, err := f.store.ListIssues(context.Background(), "", "")
	require.NoError(t, err)
	assert.Empty(t, issues)
	txs, err := f.store.ListTransactions(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestSubmitClassifierFailure(t *testing.T) {
	f := newFixture(t, models.Classification{})
	f.engine.Classifier = stubClassifier{err: errors.New("model offline")}
	_, err := f.engine.Submit(context.Background(), models.Report{ReporterID: "u1"})
	require.Error(t, err)
	issues, err := f.store.ListIssues(context.Background(), "", "")
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestAssignStartResolve(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, models.Classification{Category: "Pothole", Confidence: 80})
	issue := submitReport(t, f, "u1")

	issue, err := f.engine.Assign(ctx, issue.ID, "w1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusAssigned, issue.Status)
	assert.Equal(t, "Ravi Kumar", issue.AssignedTo)
	assert.Equal(t, "9800000001", issue.AssignedContact)

	w1, err := f.store.GetResponder(ctx, "w1")
	require.NoError(t, err)
	assert.False(t, w1.Available)

	issue, err = f.engine.StartWork(ctx, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, issue.Status)

	issue, err = f.engine.Resolve(ctx, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusResolved, issue.Status)
	require.NotNil(t, issue.ResolvedAt)

	w1, err = f.store.GetResponder(ctx, "w1")
	require.NoError(t, err)
	assert.True(t, w1.Available)

	// the reporter sees the assigned and resolved notices
	all, err := f.store.ListNotifications(ctx)
	require.NoError(t, err)
	mine := service.VisibleTo(models.Viewer{Role: "citizen", UserID: "u1"}, all)
	require.Len(t, mine, 2)
}

func TestAssignRejectsWrongDepartment(t *testing.T) {
	f := newFixture(t, models.Classification{Category: "Pothole", Confidence: 80})
	issue := submitReport(t, f, "u1")
	_, err := f.engine.Assign(context.Background(), issue.ID, "w3")
	require.ErrorIs(t, err, service.ErrInvalidTransition)
}

func TestAssignRejectsUnavailableResponder(t *testing.T) {
	f := newFixture(t, models.Classification{Category: "Garbage", Confidence: 80})
	issue := submitReport(t, f, "u1")
	_, err := f.engine.Assign(context.Background(), issue.ID, "w4")
	require.ErrorIs(t, err, service.ErrResponderUnavailable)
}

func TestAssignUnknownIssue(t *testing.T) {
	f := newFixture(t, models.Classification{Category: "Pothole", Confidence: 80})
	_, err := f.engine.Assign(context.Background(), "#999", "w1")
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestAssignResolvedIssueRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, models.Classification{Category: "Pothole", Confidence: 80})
	issue := submitReport(t, f, "u1")
	_, err := f.engine.Resolve(ctx, issue.ID)
	require.NoError(t, err)
	_, err = f.engine.Assign(ctx, issue.ID, "w1")
	require.ErrorIs(t, err, service.ErrInvalidTransition)
}

func TestReassignFreesPreviousResponder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, models.Classification{Category: "Pothole", Confidence: 80})
	issue := submitReport(t, f, "u1")

	issue, err := f.engine.Assign(ctx, issue.ID, "w1")
	require.NoError(t, err)
	issue, err = f.engine.StartWork(ctx, issue.ID)
	require.NoError(t, err)

	// reassignment mid-work swaps the responder without regressing status
	issue, err = f.engine.Assign(ctx, issue.ID, "w2")
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, issue.Status)
	assert.Equal(t, "Suresh Patil", issue.AssignedTo)

	w1, err := f.store.GetResponder(ctx, "w1")
	require.NoError(t, err)
	assert.True(t, w1.Available)
	w2, err := f.store.GetResponder(ctx, "w2")
	require.NoError(t, err)
	assert.False(t, w2.Available)
}

func TestStartWorkRequiresAssigned(t *testing.T) {
	f := newFixture(t, models.Classification{Category: "Pothole", Confidence: 80})
	issue := submitReport(t, f, "u1")
	_, err := f.engine.StartWork(context.Background(), issue.ID)
	require.ErrorIs(t, err, service.ErrInvalidTransition)
}

func TestResolveTwiceRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, models.Classification{Category: "Pothole", Confidence: 80})
	issue := submitReport(t, f, "u1")

	_, err := f.engine.Assign(ctx, issue.ID, "w1")
	require.NoError(t, err)
	_, err = f.engine.Resolve(ctx, issue.ID)
	require.NoError(t, err)

	_, err = f.engine.Resolve(ctx, issue.ID)
	require.ErrorIs(t, err, service.ErrInvalidTransition)

	// the second resolve must not touch responder state or emit again
	w1, err := f.store.GetResponder(ctx, "w1")
	require.NoError(t, err)
	assert.True(t, w1.Available)
	all, err := f.store.ListNotifications(ctx)
	require.NoError(t, err)
	resolved := 0
	for _, n := range all {
		if n.Type == models.NotificationResolved {
			resolved++
		}
	}
	assert.Equal(t, 1, resolved)
}

func TestResolveWithStaleResponder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, models.Classification{Category: "Pothole", Confidence: 80})
	issue := submitReport(t, f, "u1")

	_, err := f.engine.Assign(ctx, issue.ID, "w1")
	require.NoError(t, err)
	require.NoError(t, f.store.DeleteResponder(ctx, "w1"))

	issue, err = f.engine.Resolve(ctx, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusResolved, issue.Status)
}

func TestResolveReleasesByContactBeforeName(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, models.Classification{Category: "Pothole", Confidence: 80})

	// two responders sharing a name; only the contact disambiguates
	require.NoError(t, f.store.CreateResponder(ctx, models.Responder{
		ID: "w5", Name: "Ravi Kumar", Contact: "9800000005", Department: "Roads Department", Available: true,
	}))

	first := submitReport(t, f, "u1")
	_, err := f.engine.Assign(ctx, first.ID, "w1")
	require.NoError(t, err)

	second := submitReport(t, f, "u1")
	_, err = f.engine.Assign(ctx, second.ID, "w5")
	require.NoError(t, err)

	_, err = f.engine.Resolve(ctx, second.ID)
	require.NoError(t, err)

	w5, err := f.store.GetResponder(ctx, "w5")
	require.NoError(t, err)
	assert.True(t, w5.Available)
	// the earlier-registered namesake is still working the first issue
	w1, err := f.store.GetResponder(ctx, "w1")
	require.NoError(t, err)
	assert.False(t, w1.Available)
}

func TestSubmitFallbackContractor(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, models.Classification{Category: "Garbage", Confidence: 80})

	// Sanitation's only responder is unavailable; the issue still carries a
	// department contact
	issue := submitReport(t, f, "u1")
	assert.Equal(t, "Mohan Rao", issue.Contractor)

	stored, err := f.store.GetIssue(ctx, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, stored.Status)
}
