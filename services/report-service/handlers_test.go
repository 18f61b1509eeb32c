package main

import (
	"bytes"
	"net/http/httptest"
	"regexp"
	"testing"

	"etala-reporting-system/pkg/wizard"
	"etala-reporting-system/services/report-service/models"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// submittedDraft builds a finished identified draft the way the wizard
// client would hand it over.
func submittedDraft() *wizard.Draft {
	d := wizard.NewDraft()
	_ = d.SetMode(wizard.ModeIdentified)
	d.Identified.LastName = "Dela Cruz"
	d.Identified.FirstName = "Ana"
	d.Identified.Sex = "Female"
	d.Identified.Age = "22"
	d.Identified.College = "COS"
	d.Identified.Email = "ana@tup.edu.ph"
	d.Incident.IncidentTypes = []string{"RA 7877 - Sexual Harassment", "Other"}
	d.Incident.OtherIncidentType = "Stalking"
	d.Incident.LatestIncidentDate = "01/15/2025"
	d.Incident.IncidentLocation = "Main Building"
	d.Incident.Description = "Repeated unwanted advances after class."
	d.Perpetrator.LastName = "Reyes"
	d.Perpetrator.TUPRole = "Faculty"
	d.ConfirmAccuracy = true
	d.ConfirmConfidentiality = true
	return d
}

func TestParseReportFormRoundTrip(t *testing.T) {
	d := submittedDraft()
	payload, err := wizard.Assemble(d)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/reports", bytes.NewReader(payload.Body))
	req.Header.Set("Content-Type", payload.ContentType)
	require.NoError(t, req.ParseMultipartForm(maxSubmissionBytes))

	input := parseReportForm(req)

	assert.False(t, input.IsAnonymous)
	assert.Equal(t, "Dela Cruz", input.LastName)
	assert.Equal(t, "Ana", input.FirstName)
	assert.Equal(t, "Female", input.Sex)
	assert.Equal(t, "22", input.Age)
	assert.Equal(t, "COS", input.College)
	assert.Equal(t, "ana@tup.edu.ph", input.Email)
	assert.Equal(t, []string{"RA 7877 - Sexual Harassment", "Other"}, input.IncidentTypes)
	assert.Equal(t, "Stalking", input.OtherIncidentType)
	assert.Equal(t, "01/15/2025", input.LatestIncidentDate)
	assert.Equal(t, "Reyes", input.PerpLastName)
	assert.Equal(t, "Faculty", input.PerpTUPRole)
	assert.True(t, input.ConfirmAccuracy)
	assert.True(t, input.ConfirmConfidentiality)

	v := validator.New()
	assert.NoError(t, v.Struct(input))
}

func TestParseReportFormAnonymousRoundTrip(t *testing.T) {
	d := wizard.NewDraft()
	_ = d.SetMode(wizard.ModeAnonymous)
	d.Anonymous.ReporterRole = "Victim"
	d.Anonymous.TUPRole = "Student"
	d.Anonymous.College = "CIE"
	d.Incident.IncidentTypes = []string{"Discrimination"}
	d.Incident.LatestIncidentDate = "02/01/2025"
	d.Incident.Description = "Excluded from org activities."
	d.ConfirmAccuracy = true
	d.ConfirmConfidentiality = true

	payload, err := wizard.Assemble(d)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/reports", bytes.NewReader(payload.Body))
	req.Header.Set("Content-Type", payload.ContentType)
	require.NoError(t, req.ParseMultipartForm(maxSubmissionBytes))

	input := parseReportForm(req)

	assert.True(t, input.IsAnonymous)
	assert.Equal(t, "Victim", input.ReporterRole)
	assert.Equal(t, "Student", input.TUPRole)
	assert.Equal(t, "CIE", input.College)
	assert.Empty(t, input.LastName)

	v := validator.New()
	assert.NoError(t, v.Struct(input))
}

func TestValidatorRejectsMissingIdentity(t *testing.T) {
	input := reportInput{
		IsAnonymous:            false,
		IncidentTypes:          []string{"Other"},
		OtherIncidentType:      "x",
		LatestIncidentDate:     "01/01/2025",
		ConfirmAccuracy:        true,
		ConfirmConfidentiality: true,
	}
	v := validator.New()
	assert.Error(t, v.Struct(input))
}

func TestValidatorRejectsUncheckedConfirmations(t *testing.T) {
	input := reportInput{
		IsAnonymous:        true,
		ReporterRole:       "Victim",
		TUPRole:            "Student",
		IncidentTypes:      []string{"Discrimination"},
		LatestIncidentDate: "01/01/2025",
		ConfirmAccuracy:    true,
		// ConfirmConfidentiality left false
	}
	v := validator.New()
	assert.Error(t, v.Struct(input))
}

func TestNewTicketNumberFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^GAD-\d{4}-[0-9a-f]{8}$`)

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		ticket := newTicketNumber()
		assert.Regexp(t, pattern, ticket)
		assert.False(t, seen[ticket], "ticket numbers must not repeat: %s", ticket)
		seen[ticket] = true
	}
}

func TestValidStatus(t *testing.T) {
	for _, status := range []string{"Pending", "Under Review", "In Progress", "Resolved", "Closed"} {
		assert.True(t, models.ValidStatus(status), status)
	}
	assert.False(t, models.ValidStatus("Archived"))
	assert.False(t, models.ValidStatus("pending"))
}

func TestTimeRangeStart(t *testing.T) {
	weekAgo := timeRangeStart("7d")
	monthAgo := timeRangeStart("")
	yearAgo := timeRangeStart("365d")

	assert.True(t, weekAgo.After(monthAgo))
	assert.True(t, monthAgo.After(yearAgo))
}
