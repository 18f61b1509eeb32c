package wizard

// ReportingMode is the reporter's choice between submitting anonymously or
// with identifying information. It selects which step path the wizard takes
// and which field bag the draft carries.
type ReportingMode string

const (
	ModeUnset      ReportingMode = ""
	ModeAnonymous  ReportingMode = "anonymous"
	ModeIdentified ReportingMode = "identified"
)

// IncidentTypeCatalog is the fixed catalog the incident-details step selects
// from. Values are stored and transmitted verbatim.
var IncidentTypeCatalog = []string{
	"RA 9262 - Physical",
	"RA 9262 - Psychological",
	"RA 9262 - Economic",
	"RA 7877 - Sexual Harassment",
	"RA 11313 - Gender-Based Sexual Harassment",
	"Discrimination",
	"Other",
}

// IncidentFields are shared by both reporting modes.
type IncidentFields struct {
	IncidentTypes      []string `json:"incident_types"`
	OtherIncidentType  string   `json:"other_incident_type,omitempty"`
	LatestIncidentDate string   `json:"latest_incident_date"`
	IncidentLocation   string   `json:"incident_location,omitempty"`
	Description        string   `json:"description,omitempty"`
}

// PerpetratorFields are optional in every mode.
type PerpetratorFields struct {
	LastName      string `json:"last_name,omitempty"`
	FirstName     string `json:"first_name,omitempty"`
	MiddleInitial string `json:"middle_initial,omitempty"`
	Sex           string `json:"sex,omitempty"`
	TUPRole       string `json:"tup_role,omitempty"`
	Relationship  string `json:"relationship,omitempty"`
}

// IdentifiedFields describe the victim-survivor and, when they are a minor,
// their guardian. Only present on drafts in identified mode.
type IdentifiedFields struct {
	LastName      string `json:"last_name"`
	FirstName     string `json:"first_name"`
	MiddleInitial string `json:"middle_initial,omitempty"`
	Sex           string `json:"sex"`
	Age           string `json:"age"`
	College       string `json:"college,omitempty"`
	Course        string `json:"course,omitempty"`
	YearSection   string `json:"year_section,omitempty"`
	Email         string `json:"email,omitempty"`
	ContactNumber string `json:"contact_number,omitempty"`

	GuardianLastName  string `json:"guardian_last_name,omitempty"`
	GuardianFirstName string `json:"guardian_first_name,omitempty"`
	GuardianContact   string `json:"guardian_contact,omitempty"`
}

// AnonymousFields describe the reporter's context without identifying them.
// Only present on drafts in anonymous mode.
type AnonymousFields struct {
	ReporterRole string `json:"reporter_role"` // victim-survivor, witness, ...
	TUPRole      string `json:"tup_role"`      // student, faculty, staff, ...
	College      string `json:"college,omitempty"`
}

// AttachmentKind is the reporter's declared media kind. It is never verified
// against file contents; it only picks the upload MIME type.
type AttachmentKind string

const (
	KindImage AttachmentKind = "image"
	KindVideo AttachmentKind = "video"
)

// Attachment is one user-selected media reference.
type Attachment struct {
	LocalRef string         `json:"local_ref"`
	Kind     AttachmentKind `json:"kind"`
	FileName string         `json:"file_name"`
}

// Draft is the mutable working state of one in-progress report. Exactly one
// of Identified/Anonymous is non-nil once the mode has been chosen.
type Draft struct {
	Mode        ReportingMode     `json:"mode"`
	CurrentStep int               `json:"current_step"`
	// FurthestStep is the highest step visited this session. Backing up
	// lowers CurrentStep but never FurthestStep; the mode lock keys off it.
	FurthestStep int               `json:"furthest_step"`
	Identified   *IdentifiedFields `json:"identified,omitempty"`
	Anonymous    *AnonymousFields  `json:"anonymous,omitempty"`
	Perpetrator  PerpetratorFields `json:"perpetrator"`
	Incident     IncidentFields    `json:"incident"`
	Attachments  []Attachment      `json:"attachments,omitempty"`

	ConfirmAccuracy        bool `json:"confirm_accuracy"`
	ConfirmConfidentiality bool `json:"confirm_confidentiality"`
}

// NewDraft returns a fresh draft positioned on the mode-selection step.
func NewDraft() *Draft {
	return &Draft{Mode: ModeUnset, CurrentStep: 1, FurthestStep: 1}
}

// SetMode records the reporting mode and allocates the matching field bag.
// Once any step beyond the first has been visited the mode is locked —
// backing up to step 1 does not unlock it; the only way to change mode is
// discarding the draft and starting over.
func (d *Draft) SetMode(mode ReportingMode) error {
	if mode != ModeAnonymous && mode != ModeIdentified {
		return ErrUnknownMode
	}
	if d.Mode != ModeUnset && d.Mode != mode {
		if d.CurrentStep > 1 || d.FurthestStep > 1 {
			return ErrModeLocked
		}
		// Still on step 1: switching discards the other bag's contents.
		d.Identified = nil
		d.Anonymous = nil
	}

	d.Mode = mode
	switch mode {
	case ModeIdentified:
		if d.Identified == nil {
			d.Identified = &IdentifiedFields{}
		}
	case ModeAnonymous:
		if d.Anonymous == nil {
			d.Anonymous = &AnonymousFields{}
		}
	}
	return nil
}

// AddAttachments appends the picker's selections in order. Duplicates are
// allowed; users legitimately re-select after a mistaken removal.
func (d *Draft) AddAttachments(items ...Attachment) {
	d.Attachments = append(d.Attachments, items...)
}

// RemoveAttachment removes the attachment at index i, shifting later entries
// down. Out-of-range indices are rejected.
func (d *Draft) RemoveAttachment(i int) error {
	if i < 0 || i >= len(d.Attachments) {
		return ErrAttachmentIndex
	}
	d.Attachments = append(d.Attachments[:i], d.Attachments[i+1:]...)
	return nil
}
