package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"etala-reporting-system/pkg/wizard"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	heading = color.New(color.FgCyan, color.Bold)
	good    = color.New(color.FgGreen)
	bad     = color.New(color.FgRed)
	faint   = color.New(color.Faint)
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Start or resume filing an incident report",
	RunE: func(cmd *cobra.Command, args []string) error {
		kv, err := newFileKV()
		if err != nil {
			return err
		}
		store := wizard.NewDraftStore(kv, wizard.DefaultDraftKey)
		client := wizard.NewHTTPSubmissionClient(apiBaseURL())
		return runWizard(cmd.Context(), cmd.InOrStdin(), wizard.New(store, client))
	},
}

func apiBaseURL() string {
	if v := os.Getenv("ETALA_API_URL"); v != "" {
		return v
	}
	return "http://localhost:8082"
}

func runWizard(ctx context.Context, in io.Reader, w *wizard.Wizard) error {
	reader := bufio.NewReader(in)

	if w.Resume(ctx) {
		idx, _ := w.Position()
		good.Printf("Resumed your saved draft at step %d of %d.\n", idx, w.TotalSteps())
	} else {
		heading.Println("TUP Gender and Development — Incident Report")
		faint.Println("Your progress is saved after every step. Press Ctrl+C to stop anytime.")
	}

	for !w.Submitted() {
		idx, step := w.Position()
		fmt.Println()
		heading.Printf("Step %d of %d\n", idx, w.TotalSteps())

		if err := promptStep(reader, w, step); err != nil {
			return err
		}

		if idx == w.TotalSteps() && step == wizard.StepConfirmation {
			res := w.Next()
			if !res.OK {
				bad.Println(res.Reason)
				continue
			}
			receipt, err := w.Submit(ctx)
			if err != nil {
				bad.Printf("Submission failed: %v\n", err)
				faint.Println("Your draft is still saved. Run 'reportctl report' to try again.")
				return nil
			}
			fmt.Println()
			good.Println("Your report has been submitted.")
			heading.Printf("Ticket number: %s\n", receipt.TicketNumber)
			faint.Println("Keep this ticket number. It is the only way to check your case status.")
			return nil
		}

		res := w.Next()
		if !res.OK {
			bad.Println(res.Reason)
			continue
		}
		if err := w.SaveProgress(ctx); err != nil {
			bad.Printf("Could not save progress: %v\n", err)
		}
	}
	return nil
}

func promptStep(reader *bufio.Reader, w *wizard.Wizard, step wizard.Step) error {
	d := w.Draft()
	switch step {
	case wizard.StepModeSelection:
		return promptMode(reader, d)
	case wizard.StepVictimInfo:
		promptVictim(reader, d.Identified)
	case wizard.StepReporterContext:
		promptReporterContext(reader, d.Anonymous)
	case wizard.StepGuardianInfo:
		promptGuardian(reader, d.Identified)
	case wizard.StepPerpetratorInfo:
		promptPerpetrator(reader, &d.Perpetrator)
	case wizard.StepIncidentDetails:
		promptIncident(reader, d)
	case wizard.StepConfirmation:
		promptConfirmation(reader, d)
	}
	return nil
}

func promptMode(reader *bufio.Reader, d *wizard.Draft) error {
	fmt.Println("How would you like to report?")
	fmt.Println("  1) Anonymously — no name or contact details required")
	fmt.Println("  2) Identified — the GAD office can follow up with you directly")

	for {
		choice := ask(reader, "Choice [1/2]")
		switch choice {
		case "1":
			return d.SetMode(wizard.ModeAnonymous)
		case "2":
			return d.SetMode(wizard.ModeIdentified)
		}
		bad.Println("Please enter 1 or 2.")
	}
}

func promptVictim(reader *bufio.Reader, f *wizard.IdentifiedFields) {
	fmt.Println("About the victim-survivor:")
	f.LastName = askDefault(reader, "Last name", f.LastName)
	f.FirstName = askDefault(reader, "First name", f.FirstName)
	f.MiddleInitial = askDefault(reader, "Middle initial (optional)", f.MiddleInitial)
	f.Sex = askDefault(reader, "Sex", f.Sex)
	f.Age = askDefault(reader, "Age", f.Age)
	f.College = askDefault(reader, "College (optional)", f.College)
	f.Course = askDefault(reader, "Course (optional)", f.Course)
	f.YearSection = askDefault(reader, "Year and section (optional)", f.YearSection)
	f.Email = askDefault(reader, "Email (optional)", f.Email)
	f.ContactNumber = askDefault(reader, "Contact number (optional)", f.ContactNumber)
}

func promptReporterContext(reader *bufio.Reader, f *wizard.AnonymousFields) {
	fmt.Println("About you (no identifying details):")
	f.ReporterRole = askDefault(reader, "Your role in the incident (victim-survivor/witness)", f.ReporterRole)
	f.TUPRole = askDefault(reader, "Your role at TUP (student/faculty/staff)", f.TUPRole)
	f.College = askDefault(reader, "College (optional)", f.College)
}

func promptGuardian(reader *bufio.Reader, f *wizard.IdentifiedFields) {
	fmt.Println("Parent or guardian (optional, for minor victim-survivors):")
	f.GuardianLastName = askDefault(reader, "Guardian last name", f.GuardianLastName)
	f.GuardianFirstName = askDefault(reader, "Guardian first name", f.GuardianFirstName)
	f.GuardianContact = askDefault(reader, "Guardian contact number", f.GuardianContact)
}

func promptPerpetrator(reader *bufio.Reader, f *wizard.PerpetratorFields) {
	fmt.Println("About the person being reported (leave blank if unknown):")
	f.LastName = askDefault(reader, "Last name", f.LastName)
	f.FirstName = askDefault(reader, "First name", f.FirstName)
	f.MiddleInitial = askDefault(reader, "Middle initial", f.MiddleInitial)
	f.Sex = askDefault(reader, "Sex", f.Sex)
	f.TUPRole = askDefault(reader, "Role at TUP", f.TUPRole)
	f.Relationship = askDefault(reader, "Relationship to the victim-survivor", f.Relationship)
}

func promptIncident(reader *bufio.Reader, d *wizard.Draft) {
	fmt.Println("What happened? Select all that apply (comma-separated numbers):")
	for i, it := range wizard.IncidentTypeCatalog {
		fmt.Printf("  %d) %s\n", i+1, it)
	}

	if raw := ask(reader, "Incident types"); raw != "" {
		var picked []string
		for _, tok := range strings.Split(raw, ",") {
			n, err := strconv.Atoi(strings.TrimSpace(tok))
			if err != nil || n < 1 || n > len(wizard.IncidentTypeCatalog) {
				continue
			}
			picked = append(picked, wizard.IncidentTypeCatalog[n-1])
		}
		d.Incident.IncidentTypes = picked
	}

	for _, it := range d.Incident.IncidentTypes {
		if it == "Other" {
			d.Incident.OtherIncidentType = askDefault(reader, "Please describe the incident type", d.Incident.OtherIncidentType)
		}
	}

	d.Incident.LatestIncidentDate = askDefault(reader, "Date of the most recent incident (MM/DD/YYYY)", d.Incident.LatestIncidentDate)
	d.Incident.IncidentLocation = askDefault(reader, "Where did it happen (optional)", d.Incident.IncidentLocation)
	d.Incident.Description = askDefault(reader, "Describe what happened (optional)", d.Incident.Description)

	promptAttachments(reader, d)
}

func promptAttachments(reader *bufio.Reader, d *wizard.Draft) {
	if len(d.Attachments) > 0 {
		fmt.Printf("Attached so far: %d file(s)\n", len(d.Attachments))
	}
	for {
		path := ask(reader, "Attach a photo/video file path (blank to continue)")
		if path == "" {
			return
		}
		if _, err := os.Stat(path); err != nil {
			bad.Printf("Cannot read %s: %v\n", path, err)
			continue
		}
		d.AddAttachments(wizard.Attachment{
			LocalRef: path,
			Kind:     kindForPath(path),
			FileName: filepath.Base(path),
		})
		good.Printf("Attached %s\n", filepath.Base(path))
	}
}

func kindForPath(path string) wizard.AttachmentKind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4", ".mov", ".avi", ".mkv", ".webm":
		return wizard.KindVideo
	}
	return wizard.KindImage
}

func promptConfirmation(reader *bufio.Reader, d *wizard.Draft) {
	fmt.Println("Before submitting, please confirm:")
	d.ConfirmAccuracy = askYes(reader, "The information I provided is accurate to the best of my knowledge")
	d.ConfirmConfidentiality = askYes(reader, "I understand this report is handled confidentially by the GAD office")
}

func ask(reader *bufio.Reader, label string) string {
	fmt.Printf("%s: ", label)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func askDefault(reader *bufio.Reader, label, current string) string {
	if current != "" {
		label = fmt.Sprintf("%s [%s]", label, current)
	}
	v := ask(reader, label)
	if v == "" {
		return current
	}
	return v
}

func askYes(reader *bufio.Reader, label string) bool {
	v := strings.ToLower(ask(reader, label+" [y/N]"))
	return v == "y" || v == "yes"
}
