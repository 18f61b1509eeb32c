package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type trackingView struct {
	TicketNumber  string `json:"ticket_number"`
	Status        string `json:"status"`
	StatusHistory []struct {
		Status    string    `json:"status"`
		Timestamp time.Time `json:"timestamp"`
		Note      string    `json:"note,omitempty"`
	} `json:"status_history"`
	ReferralHistory []struct {
		Office     string    `json:"office"`
		Note       string    `json:"note,omitempty"`
		ReferredAt time.Time `json:"referred_at"`
	} `json:"referral_history,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}

var trackCmd = &cobra.Command{
	Use:   "track <ticket-number>",
	Short: "Check the status of a submitted report by its ticket number",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ticket := args[0]

		httpClient := &http.Client{Timeout: 15 * time.Second}
		resp, err := httpClient.Get(apiBaseURL() + "/api/reports/track/" + ticket)
		if err != nil {
			return fmt.Errorf("cannot reach the reporting service: %w", err)
		}
		defer resp.Body.Close()

		var envelope struct {
			Status  string       `json:"status"`
			Message string       `json:"message"`
			Error   string       `json:"error"`
			Data    trackingView `json:"data"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
			return fmt.Errorf("unexpected response: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			msg := envelope.Message
			if msg == "" {
				msg = resp.Status
			}
			return fmt.Errorf("%s", msg)
		}

		printTracking(envelope.Data)
		return nil
	},
}

func printTracking(view trackingView) {
	heading.Printf("Ticket %s\n", view.TicketNumber)
	fmt.Printf("Submitted: %s\n", view.SubmittedAt.Local().Format("Jan 2, 2006 3:04 PM"))
	fmt.Printf("Current status: ")
	statusColor(view.Status).Println(view.Status)

	if len(view.StatusHistory) > 0 {
		fmt.Println("\nTimeline:")
		for _, entry := range view.StatusHistory {
			fmt.Printf("  %s  ", entry.Timestamp.Local().Format("01/02/2006 15:04"))
			statusColor(entry.Status).Printf("%-12s", entry.Status)
			if entry.Note != "" {
				faint.Printf("  %s", entry.Note)
			}
			fmt.Println()
		}
	}

	if len(view.ReferralHistory) > 0 {
		fmt.Println("\nReferrals:")
		for _, ref := range view.ReferralHistory {
			fmt.Printf("  %s  %s", ref.ReferredAt.Local().Format("01/02/2006"), ref.Office)
			if ref.Note != "" {
				faint.Printf("  %s", ref.Note)
			}
			fmt.Println()
		}
	}
}

func statusColor(status string) *color.Color {
	switch status {
	case "Resolved", "Closed":
		return good
	case "Pending":
		return faint
	default:
		return heading
	}
}
