package wizard

import "fmt"

// Step identifies one screen of the wizard.
type Step string

const (
	StepModeSelection   Step = "mode-selection"
	StepVictimInfo      Step = "victim-info"
	StepReporterContext Step = "reporter-context"
	StepGuardianInfo    Step = "guardian-info"
	StepPerpetratorInfo Step = "perpetrator-info"
	StepIncidentDetails Step = "incident-details"
	StepConfirmation    Step = "confirmation"
)

// The two paths diverge only in how the reporter is described: identified
// reports add victim identity plus a guardian step, anonymous reports ask for
// reporter context instead. Perpetrator, incident and confirmation steps are
// shared and keep the same relative order in both modes.
var stepsByMode = map[ReportingMode][]Step{
	ModeUnset: {
		StepModeSelection,
	},
	ModeAnonymous: {
		StepModeSelection,
		StepReporterContext,
		StepPerpetratorInfo,
		StepIncidentDetails,
		StepConfirmation,
	},
	ModeIdentified: {
		StepModeSelection,
		StepVictimInfo,
		StepGuardianInfo,
		StepPerpetratorInfo,
		StepIncidentDetails,
		StepConfirmation,
	},
}

// Steps returns the ordered step list for mode.
func Steps(mode ReportingMode) []Step {
	return stepsByMode[mode]
}

// TotalSteps returns the number of steps on mode's path.
func TotalSteps(mode ReportingMode) int {
	return len(stepsByMode[mode])
}

// StepAt returns the step at the 1-based index on mode's path. An index
// outside [1, TotalSteps(mode)] is a programming error; the wizard's bounds
// guarantee makes it unreachable through the public API.
func StepAt(mode ReportingMode, index int) Step {
	steps := stepsByMode[mode]
	if index < 1 || index > len(steps) {
		panic(fmt.Sprintf("wizard: step index %d out of range for mode %q", index, mode))
	}
	return steps[index-1]
}
