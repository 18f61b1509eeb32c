package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReportStatus is the case-handling state of a submitted report.
type ReportStatus string

const (
	StatusPending     ReportStatus = "Pending"
	StatusUnderReview ReportStatus = "Under Review"
	StatusInProgress  ReportStatus = "In Progress"
	StatusResolved    ReportStatus = "Resolved"
	StatusClosed      ReportStatus = "Closed"
)

var validStatuses = map[ReportStatus]bool{
	StatusPending:     true,
	StatusUnderReview: true,
	StatusInProgress:  true,
	StatusResolved:    true,
	StatusClosed:      true,
}

// ValidStatus reports whether s is one of the defined case statuses.
func ValidStatus(s string) bool {
	return validStatuses[ReportStatus(s)]
}

// StatusEntry is one step of a report's status timeline.
type StatusEntry struct {
	Status    ReportStatus `bson:"status" json:"status"`
	Timestamp time.Time    `bson:"timestamp" json:"timestamp"`
	Note      string       `bson:"note,omitempty" json:"note,omitempty"`
}

// Referral records a hand-off to a GAD office or external unit.
type Referral struct {
	Office     string    `bson:"office" json:"office"`
	Note       string    `bson:"note,omitempty" json:"note,omitempty"`
	ReferredAt time.Time `bson:"referred_at" json:"referred_at"`
	ReferredBy string    `bson:"referred_by,omitempty" json:"referred_by,omitempty"`
}

// AdminNote is an internal case note, never exposed on public tracking.
type AdminNote struct {
	Author    string    `bson:"author" json:"author"`
	Body      string    `bson:"body" json:"body"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// StoredAttachment is an uploaded media file after it landed in object
// storage.
type StoredAttachment struct {
	URL      string `bson:"url" json:"url"`
	Kind     string `bson:"kind" json:"kind"` // image or video
	FileName string `bson:"file_name" json:"file_name"`
}

// Report is the persisted incident report. Append-mostly from the client's
// perspective: reporters only ever read it back by ticket number.
type Report struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TicketNumber string             `bson:"ticket_number" json:"ticket_number"`
	IsAnonymous  bool               `bson:"is_anonymous" json:"is_anonymous"`

	// Victim-survivor identity, identified mode only.
	LastName      string `bson:"last_name,omitempty" json:"last_name,omitempty"`
	FirstName     string `bson:"first_name,omitempty" json:"first_name,omitempty"`
	MiddleInitial string `bson:"middle_initial,omitempty" json:"middle_initial,omitempty"`
	Sex           string `bson:"sex,omitempty" json:"sex,omitempty"`
	Age           string `bson:"age,omitempty" json:"age,omitempty"`
	College       string `bson:"college,omitempty" json:"college,omitempty"`
	Course        string `bson:"course,omitempty" json:"course,omitempty"`
	YearSection   string `bson:"year_section,omitempty" json:"year_section,omitempty"`
	Email         string `bson:"email,omitempty" json:"email,omitempty"`
	ContactNumber string `bson:"contact_number,omitempty" json:"contact_number,omitempty"`

	GuardianLastName  string `bson:"guardian_last_name,omitempty" json:"guardian_last_name,omitempty"`
	GuardianFirstName string `bson:"guardian_first_name,omitempty" json:"guardian_first_name,omitempty"`
	GuardianContact   string `bson:"guardian_contact,omitempty" json:"guardian_contact,omitempty"`

	// Reporter context, anonymous mode only.
	ReporterRole string `bson:"reporter_role,omitempty" json:"reporter_role,omitempty"`
	TUPRole      string `bson:"tup_role,omitempty" json:"tup_role,omitempty"`

	// ContactEnc stores an optional follow-up contact for anonymous reports
	// encrypted with AES-GCM. It is never returned in any API response.
	ContactEnc string `bson:"contact_enc,omitempty" json:"-"`

	// Alleged perpetrator, optional in every mode.
	PerpLastName      string `bson:"perp_last_name,omitempty" json:"perp_last_name,omitempty"`
	PerpFirstName     string `bson:"perp_first_name,omitempty" json:"perp_first_name,omitempty"`
	PerpMiddleInitial string `bson:"perp_middle_initial,omitempty" json:"perp_middle_initial,omitempty"`
	PerpSex           string `bson:"perp_sex,omitempty" json:"perp_sex,omitempty"`
	PerpTUPRole       string `bson:"perp_tup_role,omitempty" json:"perp_tup_role,omitempty"`
	PerpRelationship  string `bson:"perp_relationship,omitempty" json:"perp_relationship,omitempty"`

	IncidentTypes      []string `bson:"incident_types" json:"incident_types"`
	OtherIncidentType  string   `bson:"other_incident_type,omitempty" json:"other_incident_type,omitempty"`
	LatestIncidentDate string   `bson:"latest_incident_date" json:"latest_incident_date"`
	IncidentLocation   string   `bson:"incident_location,omitempty" json:"incident_location,omitempty"`
	Description        string   `bson:"description,omitempty" json:"description,omitempty"`

	Attachments []StoredAttachment `bson:"attachments,omitempty" json:"attachments,omitempty"`

	Status          ReportStatus  `bson:"status" json:"status"`
	StatusHistory   []StatusEntry `bson:"status_history" json:"status_history"`
	ReferralHistory []Referral    `bson:"referral_history,omitempty" json:"referral_history,omitempty"`
	AdminNotes      []AdminNote   `bson:"admin_notes,omitempty" json:"admin_notes,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// TrackingView is the public projection served on the tracking endpoint.
// Admin notes, identity fields and who referred are withheld.
type TrackingView struct {
	TicketNumber    string        `json:"ticket_number"`
	Status          ReportStatus  `json:"status"`
	StatusHistory   []StatusEntry `json:"status_history"`
	ReferralHistory []Referral    `json:"referral_history,omitempty"`
	SubmittedAt     time.Time     `json:"submitted_at"`
}

// ReportEvent is published to the report queue when a new report is created.
// Identity fields are deliberately absent; routing only needs the incident
// classification.
type ReportEvent struct {
	ID            string    `json:"id"`
	TicketNumber  string    `json:"ticket_number"`
	IncidentTypes []string  `json:"incident_types"`
	IsAnonymous   bool      `json:"is_anonymous"`
	CreatedAt     time.Time `json:"created_at"`
}

// StatusEvent is published to the status queue on every status transition.
type StatusEvent struct {
	ID           string       `json:"id"`
	TicketNumber string       `json:"ticket_number"`
	Status       ReportStatus `json:"status"`
	Note         string       `json:"note,omitempty"`
	UpdatedAt    time.Time    `json:"updated_at"`
}
