package wizard

// Result is the outcome of validating one step. Failure is a normal return
// value, never an error or panic; the reason is shown to the reporter as-is.
type Result struct {
	OK     bool
	Reason string
}

func ok() Result { return Result{OK: true} }
func fail(r string) Result { return Result{OK: false, Reason: r} }

// Validate applies the required-field rules for step against the draft.
// These are the only hard requirements in the whole wizard: guardian and
// perpetrator information stay optional in every mode, including for minors.
func Validate(step Step, d *Draft) Result {
	switch step {
	case StepModeSelection:
		if d.Mode == ModeUnset {
			return fail("Please choose how you want to report (anonymous or identified).")
		}
		return ok()

	case StepVictimInfo:
		f := d.Identified
		if f == nil || f.LastName == "" || f.FirstName == "" || f.Sex == "" || f.Age == "" {
			return fail("Last name, first name, sex, and age are required.")
		}
		return ok()

	case StepReporterContext:
		f := d.Anonymous
		if f == nil || f.ReporterRole == "" || f.TUPRole == "" {
			return fail("Your role in the incident and your role in the university are required.")
		}
		return ok()

	case StepIncidentDetails:
		if len(d.Incident.IncidentTypes) == 0 || d.Incident.LatestIncidentDate == "" {
			return fail("Select at least one incident type and provide the date of the latest incident.")
		}
		return ok()

	case StepConfirmation:
		if !d.ConfirmAccuracy || !d.ConfirmConfidentiality {
			return fail("Both the accuracy and confidentiality confirmations must be checked.")
		}
		return ok()

	default:
		// guardian-info, perpetrator-info: no required fields.
		return ok()
	}
}
