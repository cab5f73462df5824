package models

import "time"

// Issue statuses, in lifecycle order.
const (
	StatusPending    = "Pending"
	StatusAssigned   = "Assigned"
	StatusInProgress = "In Progress"
	StatusResolved   = "Resolved"
)

// Severity levels derived from classifier confidence.
const (
	SeverityLow    = "Low"
	SeverityMedium = "Medium"
	SeverityHigh   = "High"
)

// Notification types emitted by lifecycle transitions.
const (
	NotificationSubmitted = "submitted"
	NotificationAssigned  = "assigned"
	NotificationResolved  = "resolved"
)

type Issue struct {
	ID              string     `json:"id"`
	Category        string     `json:"category"`
	Confidence      int        `json:"confidence"`
	Severity        string     `json:"severity"`
	Department      string     `json:"department"`
	Lat             *float64   `json:"lat,omitempty"`
	Lng             *float64   `json:"lng,omitempty"`
	Address         string     `json:"address,omitempty"`
	Description     string     `json:"description,omitempty"`
	ReporterName    string     `json:"reporter_name,omitempty"`
	ReporterPhone   string     `json:"reporter_phone,omitempty"`
	ReporterID      string     `json:"reporter_id,omitempty"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty"`
	Contractor      string     `json:"contractor,omitempty"`
	AssignedTo      string     `json:"assigned_to,omitempty"`
	AssignedContact string     `json:"assigned_contact,omitempty"`
	PriorityScore   int        `json:"priority_score"`
	Size            string     `json:"size,omitempty"`
	CostEstimate    string     `json:"cost_estimate,omitempty"`
	Photo           string     `json:"photo,omitempty"`
	Voice           string     `json:"voice,omitempty"`
	VoiceTranscript string     `json:"voice_transcript,omitempty"`
}

type Responder struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Contact    string   `json:"contact"`
	Department string   `json:"department"`
	Available  bool     `json:"available"`
	Lat        *float64 `json:"lat,omitempty"`
	Lng        *float64 `json:"lng,omitempty"`
}

type Notification struct {
	ID               string    `json:"id"`
	Message          string    `json:"message"`
	CreatedAt        time.Time `json:"created_at"`
	Type             string    `json:"type,omitempty"`
	IssueID          string    `json:"issue_id,omitempty"`
	Department       string    `json:"department,omitempty"`
	TargetRole       string    `json:"target_role,omitempty"`
	TargetDepartment string    `json:"target_department,omitempty"`
	TargetUserID     string    `json:"target_user_id,omitempty"`
	ReporterID       string    `json:"reporter_id,omitempty"`
}

type CoinTransaction struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name,omitempty"`
	Amount    int       `json:"amount"`
	Reason    string    `json:"reason"`
	IssueID   string    `json:"issue_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type LeaderboardEntry struct {
	UserID   string `json:"user_id"`
	UserName string `json:"user_name,omitempty"`
	Total    int    `json:"total"`
}

// Viewer identifies who is looking at the notification stream.
// The zero value is an anonymous viewer.
type Viewer struct {
	Role       string `json:"role,omitempty"`
	Department string `json:"department,omitempty"`
	UserID     string `json:"user_id,omitempty"`
}

func (v Viewer) Anonymous() bool {
	return v.Role == "" && v.Department == "" && v.UserID == ""
}

// Report is a citizen submission before classification.
type Report struct {
	Address         string   `json:"address,omitempty"`
	Description     string   `json:"description,omitempty"`
	Lat             *float64 `json:"lat,omitempty"`
	Lng             *float64 `json:"lng,omitempty"`
	ReporterName    string   `json:"reporter_name,omitempty"`
	ReporterPhone   string   `json:"reporter_phone,omitempty"`
	ReporterID      string   `json:"reporter_id,omitempty"`
	Photo           string   `json:"photo,omitempty"`
	Voice           string   `json:"voice,omitempty"`
	VoiceTranscript string   `json:"voice_transcript,omitempty"`
}

// Classification is the classifier contract output: category plus a
// 0-100 confidence. Size and cost estimate are informational extras.
type Classification struct {
	Category     string `json:"category"`
	Confidence   int    `json:"confidence"`
	Size         string `json:"size,omitempty"`
	CostEstimate string `json:"cost_estimate,omitempty"`
	ModelVersion string `json:"model_version,omitempty"`
}
