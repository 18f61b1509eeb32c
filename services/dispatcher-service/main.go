package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"etala-reporting-system/pkg/config"
	"etala-reporting-system/pkg/database"
	"etala-reporting-system/pkg/middleware"
	"etala-reporting-system/pkg/queue"
	"etala-reporting-system/services/dispatcher-service/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var logger = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// ReportEvent mirrors the message published by the report service when a new
// report is created. Identity fields are never on the queue.
type ReportEvent struct {
	ID            string    `json:"id"`
	TicketNumber  string    `json:"ticket_number"`
	IncidentTypes []string  `json:"incident_types"`
	IsAnonymous   bool      `json:"is_anonymous"`
	CreatedAt     time.Time `json:"created_at"`
}

func main() {
	config.Load()

	db, err := database.ConnectPostgres(config.PostgresDSN())
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to Postgres")
	}
	if err := db.AutoMigrate(&models.Office{}, &models.Dispatch{}); err != nil {
		logger.WithError(err).Fatal("Failed to migrate office directory")
	}
	seedOffices(db)

	conn, ch, err := queue.ConnectRabbitMQ(config.AMQPURI())
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to RabbitMQ")
	}
	defer conn.Close()
	defer ch.Close()

	msgs, err := queue.ConsumeMessages(ch, queue.ReportQueue)
	if err != nil {
		logger.WithError(err).Fatal("Failed to consume report queue")
	}

	dispatcher := &Dispatcher{
		DB:            db,
		ReportBaseURL: config.Getenv("REPORT_SERVICE_URL", "http://localhost:8082"),
		HTTPClient:    &http.Client{Timeout: 10 * time.Second},
	}

	logger.WithField("queue", queue.ReportQueue).Info("Dispatcher service waiting for reports")

	forever := make(chan bool)
	go func() {
		for d := range msgs {
			var event ReportEvent
			if err := json.Unmarshal(d.Body, &event); err != nil {
				logger.WithError(err).Warn("Dropping malformed report event")
				continue
			}
			dispatcher.Handle(context.Background(), event)
		}
	}()
	<-forever
}

// Dispatcher routes new reports to the responsible office and records the
// decision both locally and on the report itself.
type Dispatcher struct {
	DB            *gorm.DB
	ReportBaseURL string
	HTTPClient    *http.Client
}

func (d *Dispatcher) Handle(ctx context.Context, event ReportEvent) {
	traceID := uuid.New().String()
	code, reason := RouteIncident(event.IncidentTypes)

	var office models.Office
	err := d.DB.WithContext(ctx).Where("code = ? AND active", code).First(&office).Error
	if err != nil {
		logger.WithError(err).WithField("office", code).Error("Office not found in directory, falling back to GAD")
		code = OfficeGAD
		d.DB.WithContext(ctx).Where("code = ?", code).First(&office)
	}

	delivered := true
	if err := d.recordReferral(ctx, traceID, event.ID, office, reason); err != nil {
		delivered = false
		logger.WithError(err).WithField("ticket", event.TicketNumber).Error("Failed to record referral on report")
	}

	dispatch := models.Dispatch{
		TicketNumber: event.TicketNumber,
		ReportID:     event.ID,
		OfficeCode:   code,
		Reason:       reason,
		Delivered:    delivered,
	}
	if err := d.DB.WithContext(ctx).Create(&dispatch).Error; err != nil {
		logger.WithError(err).Error("Failed to persist dispatch record")
	}

	logger.WithFields(logrus.Fields{
		"trace_id":  traceID,
		"ticket":    event.TicketNumber,
		"office":    office.Name,
		"reason":    reason,
		"anonymous": event.IsAnonymous,
	}).Info("Report routed")
}

func (d *Dispatcher) recordReferral(ctx context.Context, traceID, reportID string, office models.Office, reason string) error {
	payload, err := json.Marshal(map[string]string{
		"id":     reportID,
		"office": office.Name,
		"note":   reason,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		d.ReportBaseURL+"/internal/referrals", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	middleware.PropagateTraceID(req, traceID)

	resp, err := d.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("report service returned %d", resp.StatusCode)
	}
	return nil
}

// Office codes seeded into the directory.
const (
	OfficeGAD  = "GAD"  // Gender and Development Office, default handler
	OfficeVAWC = "VAWC" // Violence Against Women and Children desk
	OfficeCODI = "CODI" // Committee on Decorum and Investigation
	OfficeOSA  = "OSA"  // Office of Student Affairs
)

// RouteIncident picks a destination office from the report's incident types.
// The most specific mandate wins; VAWC cases take precedence over harassment.
func RouteIncident(incidentTypes []string) (code, reason string) {
	for _, it := range incidentTypes {
		if strings.HasPrefix(it, "RA 9262") {
			return OfficeVAWC, "VAWC case under " + it
		}
	}
	for _, it := range incidentTypes {
		if strings.HasPrefix(it, "RA 7877") || strings.HasPrefix(it, "RA 11313") {
			return OfficeCODI, "Harassment case under " + it
		}
	}
	for _, it := range incidentTypes {
		if it == "Discrimination" {
			return OfficeOSA, "Discrimination complaint"
		}
	}
	return OfficeGAD, "General gender and development concern"
}

func seedOffices(db *gorm.DB) {
	offices := []models.Office{
		{Code: OfficeGAD, Name: "Gender and Development Office", Email: "gad@tup.edu.ph"},
		{Code: OfficeVAWC, Name: "VAWC Desk", Email: "vawc@tup.edu.ph"},
		{Code: OfficeCODI, Name: "Committee on Decorum and Investigation", Email: "codi@tup.edu.ph"},
		{Code: OfficeOSA, Name: "Office of Student Affairs", Email: "osa@tup.edu.ph"},
	}
	for _, office := range offices {
		err := db.Where(models.Office{Code: office.Code}).
			FirstOrCreate(&office).Error
		if err != nil {
			logger.WithError(err).WithField("office", office.Code).Warn("Failed to seed office")
		}
	}
}
