package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func identifiedDraft() *Draft {
	d := NewDraft()
	_ = d.SetMode(ModeIdentified)
	d.Identified.LastName = "Dela Cruz"
	d.Identified.FirstName = "Ana"
	d.Identified.Sex = "Female"
	d.Identified.Age = "22"
	d.Incident.IncidentTypes = []string{"RA 7877 - Sexual Harassment"}
	d.Incident.LatestIncidentDate = "01/15/2025"
	d.ConfirmAccuracy = true
	d.ConfirmConfidentiality = true
	return d
}

func TestValidateModeSelection(t *testing.T) {
	d := NewDraft()
	res := Validate(StepModeSelection, d)
	assert.False(t, res.OK)
	assert.NotEmpty(t, res.Reason)

	require.NoError(t, d.SetMode(ModeAnonymous))
	assert.True(t, Validate(StepModeSelection, d).OK)
}

func TestValidateVictimInfo(t *testing.T) {
	d := identifiedDraft()
	assert.True(t, Validate(StepVictimInfo, d).OK)

	for _, clear := range []func(*IdentifiedFields){
		func(f *IdentifiedFields) { f.LastName = "" },
		func(f *IdentifiedFields) { f.FirstName = "" },
		func(f *IdentifiedFields) { f.Sex = "" },
		func(f *IdentifiedFields) { f.Age = "" },
	} {
		d := identifiedDraft()
		clear(d.Identified)
		res := Validate(StepVictimInfo, d)
		assert.False(t, res.OK)
	}
}

func TestValidateReporterContext(t *testing.T) {
	d := NewDraft()
	require.NoError(t, d.SetMode(ModeAnonymous))

	res := Validate(StepReporterContext, d)
	assert.False(t, res.OK)

	d.Anonymous.ReporterRole = "witness"
	assert.False(t, Validate(StepReporterContext, d).OK)

	d.Anonymous.TUPRole = "student"
	assert.True(t, Validate(StepReporterContext, d).OK)
}

func TestValidateIncidentDetails(t *testing.T) {
	d := identifiedDraft()
	assert.True(t, Validate(StepIncidentDetails, d).OK)

	d.Incident.IncidentTypes = nil
	assert.False(t, Validate(StepIncidentDetails, d).OK)

	d.Incident.IncidentTypes = []string{"Other"}
	d.Incident.LatestIncidentDate = ""
	assert.False(t, Validate(StepIncidentDetails, d).OK)
}

func TestValidateConfirmation(t *testing.T) {
	d := identifiedDraft()
	assert.True(t, Validate(StepConfirmation, d).OK)

	d.ConfirmAccuracy = false
	assert.False(t, Validate(StepConfirmation, d).OK)

	d.ConfirmAccuracy = true
	d.ConfirmConfidentiality = false
	assert.False(t, Validate(StepConfirmation, d).OK)
}

func TestGuardianAndPerpetratorAlwaysOptional(t *testing.T) {
	// Guardian info stays optional even when the declared age indicates a
	// minor; no threshold is enforced anywhere.
	d := identifiedDraft()
	d.Identified.Age = "15"
	assert.True(t, Validate(StepGuardianInfo, d).OK)
	assert.True(t, Validate(StepPerpetratorInfo, d).OK)

	a := NewDraft()
	require.NoError(t, a.SetMode(ModeAnonymous))
	assert.True(t, Validate(StepPerpetratorInfo, a).OK)
}

func TestValidateIsIdempotent(t *testing.T) {
	d := NewDraft()
	_ = d.SetMode(ModeAnonymous)

	first := Validate(StepReporterContext, d)
	second := Validate(StepReporterContext, d)
	assert.Equal(t, first, second)
}
