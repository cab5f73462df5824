package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/civicai/backend/internal/classify"
	"github.com/civicai/backend/internal/events"
	"github.com/civicai/backend/internal/geocode"
	"github.com/civicai/backend/internal/models"
)

const (
	rewardBase          = 15
	rewardHighConf      = 5
	rewardMediumConf    = 2
	rewardReason        = "Report submitted"
	highConfThreshold   = 90
	mediumConfThreshold = 80
)

// LifecycleService owns the issue state machine
// (Pending -> Assigned -> In Progress -> Resolved) and its side effects:
// coin rewards, notifications, responder availability. Transitions on one
// issue id are serialized with a keyed mutex so two racing writers are
// ordered rather than last-write-wins.
type LifecycleService struct {
	Store      Store
	Classifier classify.Classifier
	Routes     *RoutingTable
	Coins      *CoinService
	Events     events.Publisher
	Geocoder   geocode.Geocoder
	Country    string
	Logger     zerolog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (s *LifecycleService) lockIssue(id string) func() {
	s.mu.Lock()
	if s.locks == nil {
		s.locks = map[string]*sync.Mutex{}
	}
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// Submit runs the whole submission pipeline: classify, derive severity,
// route, score, name a department contact, persist the issue in Pending,
// emit the submitted notification and credit the reporter.
func (s *LifecycleService) Submit(ctx context.Context, report models.Report) (models.Issue, error) {
	result, latencyMs, err := s.Classifier.Classify(ctx, report)
	if err != nil {
		return models.Issue{}, fmt.Errorf("classify report: %w", err)
	}
	s.Logger.Debug().
		Str("category", result.Category).
		Int("confidence", result.Confidence).
		Int64("latency_ms", latencyMs).
		Msg("report classified")

	severity := DeriveSeverity(result.Confidence)
	department, err := s.Routes.Route(result.Category)
	if err != nil {
		return models.Issue{}, err
	}

	lat, lng := report.Lat, report.Lng
	if lat == nil && report.Address != "" && s.Geocoder != nil {
		query := geocode.BuildGeocodeQuery(s.Country, report.Address)
		glat, glng, _, _, gerr := s.Geocoder.Geocode(ctx, query)
		if gerr != nil {
			s.Logger.Debug().Err(gerr).Str("query", query).Msg("geocode failed, scoring without location")
		} else {
			lat, lng = &glat, &glng
		}
	}

	pool, err := s.Store.ListResponders(ctx, department)
	if err != nil {
		return models.Issue{}, err
	}
	score := Score(severity, result.Confidence, lat, lng, department, pool)

	seq, err := s.Store.NextIssueSeq(ctx)
	if err != nil {
		return models.Issue{}, err
	}
	id := fmt.Sprintf("#%03d", seq)

	issue := models.Issue{
		ID:              id,
		Category:        result.Category,
		Confidence:      result.Confidence,
		Severity:        severity,
		Department:      department,
		Lat:             lat,
		Lng:             lng,
		Address:         report.Address,
		Description:     report.Description,
		ReporterName:    report.ReporterName,
		ReporterPhone:   report.ReporterPhone,
		ReporterID:      report.ReporterID,
		Status:          models.StatusPending,
		CreatedAt:       time.Now().UTC(),
		PriorityScore:   score,
		Size:            result.Size,
		CostEstimate:    result.CostEstimate,
		Photo:           report.Photo,
		Voice:           report.Voice,
		VoiceTranscript: report.VoiceTranscript,
	}

	message := fmt.Sprintf("Report %s submitted to %s", id, department)
	if contact, fallback, ok := PickResponder(department, pool); ok {
		issue.Contractor = contact.Name
		message = fmt.Sprintf("Report %s submitted and assigned to %s", id, contact.Name)
		if fallback {
			s.Logger.Info().Str("issue_id", id).Str("contractor", contact.Name).
				Msg("no available responder, using department default contact")
		}
	}

	if err := s.Store.CreateIssue(ctx, issue); err != nil {
		return models.Issue{}, err
	}

	s.emit(ctx, events.SignalSubmitted, models.Notification{
		Message:          message,
		Type:             models.NotificationSubmitted,
		IssueID:          id,
		Department:       department,
		TargetRole:       "municipal",
		TargetDepartment: department,
		ReporterID:       report.ReporterID,
	})

	if report.ReporterID != "" {
		reward := rewardBase
		if result.Confidence >= highConfThreshold {
			reward += rewardHighConf
		} else if result.Confidence >= mediumConfThreshold {
			reward += rewardMediumConf
		}
		if _, err := s.Coins.Credit(ctx, report.ReporterID, report.ReporterName, reward, rewardReason, id); err != nil {
			s.Logger.Error().Err(err).Str("issue_id", id).Msg("failed to credit reporter")
		}
	}

	return issue, nil
}

// Assign records a responder on the issue and takes them off the available
// pool. Allowed on any issue that is not Resolved; an issue already In
// Progress keeps its status so the lifecycle never regresses.
func (s *LifecycleService) Assign(ctx context.Context, issueID, responderID string) (models.Issue, error) {
	unlock := s.lockIssue(issueID)
	defer unlock()

	issue, err := s.Store.GetIssue(ctx, issueID)
	if err != nil {
		return models.Issue{}, err
	}
	if issue.Status == models.StatusResolved {
		return models.Issue{}, fmt.Errorf("assign %s: issue already resolved: %w", issueID, ErrInvalidTransition)
	}

	responder, err := s.Store.GetResponder(ctx, responderID)
	if err != nil {
		return models.Issue{}, err
	}
	if responder.Department != issue.Department {
		return models.Issue{}, fmt.Errorf("assign %s: responder %s belongs to %s: %w",
			issueID, responderID, responder.Department, ErrInvalidTransition)
	}
	if !responder.Available {
		return models.Issue{}, fmt.Errorf("assign %s: %w", issueID, ErrResponderUnavailable)
	}

	// reassignment frees the previous responder first
	if issue.AssignedTo != "" || issue.AssignedContact != "" {
		s.releaseResponder(ctx, issue)
	}

	issue.AssignedTo = responder.Name
	issue.AssignedContact = responder.Contact
	if issue.Status == models.StatusPending {
		issue.Status = models.StatusAssigned
	}
	if err := s.Store.UpdateIssue(ctx, issue); err != nil {
		return models.Issue{}, err
	}
	if err := s.Store.SetResponderAvailability(ctx, responder.ID, false); err != nil {
		return models.Issue{}, err
	}

	s.emit(ctx, events.SignalAssigned, models.Notification{
		Message:    fmt.Sprintf("Issue %s assigned to %s", issue.ID, responder.Name),
		Type:       models.NotificationAssigned,
		IssueID:    issue.ID,
		Department: issue.Department,
		ReporterID: issue.ReporterID,
	})
	return issue, nil
}

// StartWork moves an Assigned issue to In Progress.
func (s *LifecycleService) StartWork(ctx context.Context, issueID string) (models.Issue, error) {
	unlock := s.lockIssue(issueID)
	defer unlock()

	issue, err := s.Store.GetIssue(ctx, issueID)
	if err != nil {
		return models.Issue{}, err
	}
	if issue.Status != models.StatusAssigned {
		return models.Issue{}, fmt.Errorf("start work %s: status %s: %w", issueID, issue.Status, ErrInvalidTransition)
	}
	issue.Status = models.StatusInProgress
	if err := s.Store.UpdateIssue(ctx, issue); err != nil {
		return models.Issue{}, err
	}
	return issue, nil
}

// Resolve closes the issue, stamps the resolution time and frees the
// recorded responder. A second resolve is rejected and has no effect.
func (s *LifecycleService) Resolve(ctx context.Context, issueID string) (models.Issue, error) {
	unlock := s.lockIssue(issueID)
	defer unlock()

	issue, err := s.Store.GetIssue(ctx, issueID)
	if err != nil {
		return models.Issue{}, err
	}
	if issue.Status == models.StatusResolved {
		return models.Issue{}, fmt.Errorf("resolve %s: already resolved: %w", issueID, ErrInvalidTransition)
	}

	now := time.Now().UTC()
	issue.Status = models.StatusResolved
	issue.ResolvedAt = &now

	if issue.AssignedTo != "" || issue.AssignedContact != "" {
		s.releaseResponder(ctx, issue)
	}

	if err := s.Store.UpdateIssue(ctx, issue); err != nil {
		return models.Issue{}, err
	}

	s.emit(ctx, events.SignalResolved, models.Notification{
		Message:    fmt.Sprintf("Issue %s marked resolved", issue.ID),
		Type:       models.NotificationResolved,
		IssueID:    issue.ID,
		Department: issue.Department,
		ReporterID: issue.ReporterID,
	})
	return issue, nil
}

// releaseResponder marks the issue's responder available again, matched by
// contact first, then by name; first match wins. A responder that no longer
// resolves to a registry record is a silent no-op: stale responder data
// must not block the issue's own lifecycle.
func (s *LifecycleService) releaseResponder(ctx context.Context, issue models.Issue) {
	pool, err := s.Store.ListResponders(ctx, "")
	if err != nil {
		s.Logger.Error().Err(err).Str("issue_id", issue.ID).Msg("failed to list responders for release")
		return
	}
	if issue.AssignedContact != "" {
		for _, r := range pool {
			if r.Contact == issue.AssignedContact {
				s.release(ctx, r.ID)
				return
			}
		}
	}
	if issue.AssignedTo != "" {
		for _, r := range pool {
			if r.Name == issue.AssignedTo {
				s.release(ctx, r.ID)
				return
			}
		}
	}
	s.Logger.Debug().Str("issue_id", issue.ID).Str("assigned_to", issue.AssignedTo).
		Msg("assigned responder no longer registered, skipping release")
}

func (s *LifecycleService) release(ctx context.Context, responderID string) {
	if err := s.Store.SetResponderAvailability(ctx, responderID, true); err != nil {
		s.Logger.Error().Err(err).Str("responder_id", responderID).Msg("failed to release responder")
	}
}

func (s *LifecycleService) emit(ctx context.Context, signal string, n models.Notification) {
	n.ID = uuid.NewString()
	n.CreatedAt = time.Now().UTC()
	if err := s.Store.AddNotification(ctx, n); err != nil {
		s.Logger.Error().Err(err).Str("signal", signal).Msg("failed to store notification")
	}
	if s.Events != nil {
		if err := s.Events.Publish(ctx, events.Event{Signal: signal, Notification: n}); err != nil {
			s.Logger.Error().Err(err).Str("signal", signal).Msg("failed to publish event")
		}
	}
}
