package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"etala-reporting-system/pkg/middleware"
	"etala-reporting-system/pkg/queue"
	"etala-reporting-system/pkg/response"
	"etala-reporting-system/pkg/security"
	"etala-reporting-system/services/report-service/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const maxSubmissionBytes = 64 << 20

// reportInput is the flattened multipart form as submitted by the wizard.
// Field names in the form are camelCase; incidentTypes arrives as repeated
// "incidentTypes[]" parts.
type reportInput struct {
	IsAnonymous bool

	LastName      string `validate:"required_if=IsAnonymous false"`
	FirstName     string `validate:"required_if=IsAnonymous false"`
	MiddleInitial string
	Sex           string `validate:"required_if=IsAnonymous false"`
	Age           string `validate:"required_if=IsAnonymous false"`
	College       string
	Course        string
	YearSection   string
	Email         string
	ContactNumber string

	GuardianLastName  string
	GuardianFirstName string
	GuardianContact   string

	ReporterRole string `validate:"required_if=IsAnonymous true"`
	TUPRole      string `validate:"required_if=IsAnonymous true"`

	FollowUpContact string

	PerpLastName      string
	PerpFirstName     string
	PerpMiddleInitial string
	PerpSex           string
	PerpTUPRole       string
	PerpRelationship  string

	IncidentTypes      []string `validate:"min=1"`
	OtherIncidentType  string
	LatestIncidentDate string `validate:"required"`
	IncidentLocation   string
	Description        string

	ConfirmAccuracy        bool `validate:"eq=true"`
	ConfirmConfidentiality bool `validate:"eq=true"`
}

// parseReportForm maps an already-parsed multipart form onto reportInput.
func parseReportForm(r *http.Request) reportInput {
	v := r.FormValue
	b := func(name string) bool {
		parsed, err := strconv.ParseBool(v(name))
		return err == nil && parsed
	}

	input := reportInput{
		IsAnonymous: b("isAnonymous"),

		LastName:      strings.TrimSpace(v("lastName")),
		FirstName:     strings.TrimSpace(v("firstName")),
		MiddleInitial: strings.TrimSpace(v("middleInitial")),
		Sex:           strings.TrimSpace(v("sex")),
		Age:           strings.TrimSpace(v("age")),
		College:       strings.TrimSpace(v("college")),
		Course:        strings.TrimSpace(v("course")),
		YearSection:   strings.TrimSpace(v("yearSection")),
		Email:         strings.TrimSpace(v("email")),
		ContactNumber: strings.TrimSpace(v("contactNumber")),

		GuardianLastName:  strings.TrimSpace(v("guardianLastName")),
		GuardianFirstName: strings.TrimSpace(v("guardianFirstName")),
		GuardianContact:   strings.TrimSpace(v("guardianContact")),

		ReporterRole: strings.TrimSpace(v("reporterRole")),
		TUPRole:      strings.TrimSpace(v("tupRole")),

		FollowUpContact: strings.TrimSpace(v("followUpContact")),

		PerpLastName:      strings.TrimSpace(v("perpLastName")),
		PerpFirstName:     strings.TrimSpace(v("perpFirstName")),
		PerpMiddleInitial: strings.TrimSpace(v("perpMiddleInitial")),
		PerpSex:           strings.TrimSpace(v("perpSex")),
		PerpTUPRole:       strings.TrimSpace(v("perpTupRole")),
		PerpRelationship:  strings.TrimSpace(v("perpRelationship")),

		OtherIncidentType:  strings.TrimSpace(v("otherIncidentType")),
		LatestIncidentDate: strings.TrimSpace(v("latestIncidentDate")),
		IncidentLocation:   strings.TrimSpace(v("incidentLocation")),
		Description:        strings.TrimSpace(v("description")),

		ConfirmAccuracy:        b("confirmAccuracy"),
		ConfirmConfidentiality: b("confirmConfidentiality"),
	}

	if r.MultipartForm != nil {
		input.IncidentTypes = r.MultipartForm.Value["incidentTypes[]"]
	}
	return input
}

// newTicketNumber generates the reporter-facing case identifier.
func newTicketNumber() string {
	id := strings.ReplaceAll(uuid.New().String(), "-", "")
	return fmt.Sprintf("GAD-%d-%s", time.Now().Year(), id[:8])
}

// attachmentKind derives the stored kind from the part's declared MIME type.
func attachmentKind(fh *multipart.FileHeader) string {
	if strings.HasPrefix(fh.Header.Get("Content-Type"), "video/") {
		return "video"
	}
	return "image"
}

func reportsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		createReport(w, r)
	case http.MethodGet:
		middleware.AuthMiddleware(
			middleware.RequireRole("admin", "gad_officer")(listReports))(w, r)
	default:
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed", "")
	}
}

func createReport(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxSubmissionBytes); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid multipart payload", err.Error())
		return
	}

	input := parseReportForm(r)
	if err := validate.Struct(input); err != nil {
		response.Error(w, http.StatusBadRequest, "Missing or invalid required fields", err.Error())
		return
	}

	ticket := newTicketNumber()
	now := time.Now()

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	var stored []models.StoredAttachment
	if r.MultipartForm != nil {
		for _, fh := range r.MultipartForm.File["attachments"] {
			f, err := fh.Open()
			if err != nil {
				response.Error(w, http.StatusBadRequest, "Unreadable attachment", err.Error())
				return
			}
			contentType := fh.Header.Get("Content-Type")
			if contentType == "" {
				contentType = "application/octet-stream"
			}
			url, err := attachments.Put(ctx, ticket, fh.Filename, contentType, f, fh.Size)
			f.Close()
			if err != nil {
				response.Error(w, http.StatusInternalServerError, "Failed to store attachment", err.Error())
				return
			}
			stored = append(stored, models.StoredAttachment{
				URL:      url,
				Kind:     attachmentKind(fh),
				FileName: fh.Filename,
			})
		}
	}

	report := models.Report{
		ID:           primitive.NewObjectID(),
		TicketNumber: ticket,
		IsAnonymous:  input.IsAnonymous,

		LastName:      input.LastName,
		FirstName:     input.FirstName,
		MiddleInitial: input.MiddleInitial,
		Sex:           input.Sex,
		Age:           input.Age,
		College:       input.College,
		Course:        input.Course,
		YearSection:   input.YearSection,
		Email:         input.Email,
		ContactNumber: input.ContactNumber,

		GuardianLastName:  input.GuardianLastName,
		GuardianFirstName: input.GuardianFirstName,
		GuardianContact:   input.GuardianContact,

		ReporterRole: input.ReporterRole,
		TUPRole:      input.TUPRole,

		PerpLastName:      input.PerpLastName,
		PerpFirstName:     input.PerpFirstName,
		PerpMiddleInitial: input.PerpMiddleInitial,
		PerpSex:           input.PerpSex,
		PerpTUPRole:       input.PerpTUPRole,
		PerpRelationship:  input.PerpRelationship,

		IncidentTypes:      input.IncidentTypes,
		OtherIncidentType:  input.OtherIncidentType,
		LatestIncidentDate: input.LatestIncidentDate,
		IncidentLocation:   input.IncidentLocation,
		Description:        input.Description,

		Attachments: stored,

		Status: models.StatusPending,
		StatusHistory: []models.StatusEntry{
			{Status: models.StatusPending, Timestamp: now, Note: "Report received"},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	// An anonymous reporter may leave an optional follow-up contact; it is
	// only ever stored encrypted.
	if input.IsAnonymous && input.FollowUpContact != "" {
		enc, err := security.EncryptString(input.FollowUpContact)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "Failed to protect contact details", err.Error())
			return
		}
		report.ContactEnc = enc
	}

	if _, err := db.Collection("reports").InsertOne(ctx, report); err != nil {
		response.Error(w, http.StatusInternalServerError, "Failed to save report", err.Error())
		return
	}

	mode := "identified"
	if report.IsAnonymous {
		mode = "anonymous"
	}
	middleware.CountReportSubmitted(mode)
	middleware.LogTicket(middleware.GetTraceID(r), ticket, "Report created")

	event := models.ReportEvent{
		ID:            report.ID.Hex(),
		TicketNumber:  report.TicketNumber,
		IncidentTypes: report.IncidentTypes,
		IsAnonymous:   report.IsAnonymous,
		CreatedAt:     report.CreatedAt,
	}
	if err := queue.PublishJSON(ctx, amqpChannel, queue.ReportQueue, event); err != nil {
		log.Printf("[WARN] Report saved but failed to publish event: %v", err)
	}

	response.Success(w, http.StatusCreated, "Report created successfully", map[string]string{
		"ticket_number": report.TicketNumber,
		"id":            report.ID.Hex(),
	})
}

func trackReportHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed", "")
		return
	}

	ticket := strings.TrimPrefix(r.URL.Path, "/api/reports/track/")
	if ticket == "" {
		response.Error(w, http.StatusBadRequest, "Missing ticket number", "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var report models.Report
	err := db.Collection("reports").FindOne(ctx, bson.M{"ticket_number": ticket}).Decode(&report)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			response.Error(w, http.StatusNotFound, "No report found for that ticket number", "")
		} else {
			response.Error(w, http.StatusInternalServerError, "Failed to fetch report", err.Error())
		}
		return
	}

	view := models.TrackingView{
		TicketNumber:  report.TicketNumber,
		Status:        report.Status,
		StatusHistory: report.StatusHistory,
		SubmittedAt:   report.CreatedAt,
	}
	for _, ref := range report.ReferralHistory {
		ref.ReferredBy = ""
		view.ReferralHistory = append(view.ReferralHistory, ref)
	}

	response.Success(w, http.StatusOK, "Report status fetched", view)
}

func listReports(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if status := r.URL.Query().Get("status"); status != "" {
		filter["status"] = status
	}
	if incidentType := r.URL.Query().Get("incidentType"); incidentType != "" {
		filter["incident_types"] = incidentType
	}
	filter["created_at"] = bson.M{"$gte": timeRangeStart(r.URL.Query().Get("timeRange"))}

	cursor, err := db.Collection("reports").Find(ctx, filter)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Failed to fetch reports", err.Error())
		return
	}
	defer cursor.Close(ctx)

	var reports []models.Report
	if err := cursor.All(ctx, &reports); err != nil {
		response.Error(w, http.StatusInternalServerError, "Failed to decode reports", err.Error())
		return
	}

	response.Success(w, http.StatusOK, "Reports fetched successfully", reports)
}

func timeRangeStart(timeRange string) time.Time {
	days := 30
	switch timeRange {
	case "7d":
		days = 7
	case "90d":
		days = 90
	case "365d":
		days = 365
	}
	return time.Now().AddDate(0, 0, -days)
}

// reportDetailHandler routes /api/reports/{id}[/status|/referrals|/notes].
// Every operation here is a case-handling action and requires an admin or
// GAD officer account.
func reportDetailHandler(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/reports/")
	parts := strings.SplitN(rest, "/", 2)
	id := parts[0]
	if id == "" {
		response.Error(w, http.StatusBadRequest, "Missing report ID", "")
		return
	}

	action := ""
	if len(parts) == 2 {
		action = parts[1]
	}

	var handler http.HandlerFunc
	switch {
	case action == "" && r.Method == http.MethodGet:
		handler = func(w http.ResponseWriter, r *http.Request) { getReportByID(w, r, id) }
	case action == "status" && r.Method == http.MethodPut:
		handler = func(w http.ResponseWriter, r *http.Request) { updateReportStatus(w, r, id) }
	case action == "referrals" && r.Method == http.MethodPost:
		handler = func(w http.ResponseWriter, r *http.Request) { addReferral(w, r, id) }
	case action == "notes" && r.Method == http.MethodPost:
		handler = func(w http.ResponseWriter, r *http.Request) { addAdminNote(w, r, id) }
	default:
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed", "")
		return
	}

	middleware.AuthMiddleware(
		middleware.RequireRole("admin", "gad_officer")(handler))(w, r)
}

func getReportByID(w http.ResponseWriter, r *http.Request, id string) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid report ID", err.Error())
		return
	}

	var report models.Report
	err = db.Collection("reports").FindOne(ctx, bson.M{"_id": objID}).Decode(&report)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			response.Error(w, http.StatusNotFound, "Report not found", "")
		} else {
			response.Error(w, http.StatusInternalServerError, "Failed to fetch report", err.Error())
		}
		return
	}

	// The bucket is private, so the stored object paths are swapped for
	// short-lived download URLs before the detail leaves the API.
	for i, a := range report.Attachments {
		signed, err := attachments.PresignGet(ctx, a.URL, time.Hour)
		if err != nil {
			middleware.LogError(middleware.GetTraceID(r), "Failed to presign attachment "+a.FileName, err)
			continue
		}
		report.Attachments[i].URL = signed
	}

	response.Success(w, http.StatusOK, "Report fetched successfully", report)
}

func updateReportStatus(w http.ResponseWriter, r *http.Request, id string) {
	var input struct {
		Status string `json:"status"`
		Note   string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}
	if !models.ValidStatus(input.Status) {
		response.Error(w, http.StatusBadRequest, "Invalid status", "")
		return
	}

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid report ID", err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	now := time.Now()
	status := models.ReportStatus(input.Status)
	entry := models.StatusEntry{Status: status, Timestamp: now, Note: input.Note}

	var updated models.Report
	err = db.Collection("reports").FindOneAndUpdate(ctx,
		bson.M{"_id": objID},
		bson.M{
			"$set":  bson.M{"status": status, "updated_at": now},
			"$push": bson.M{"status_history": entry},
		},
	).Decode(&updated)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			response.Error(w, http.StatusNotFound, "Report not found", "")
		} else {
			response.Error(w, http.StatusInternalServerError, "Failed to update status", err.Error())
		}
		return
	}

	middleware.CountStatusChange(input.Status)
	middleware.LogTicket(middleware.GetTraceID(r), updated.TicketNumber, "Status changed to "+input.Status)

	event := models.StatusEvent{
		ID:           id,
		TicketNumber: updated.TicketNumber,
		Status:       status,
		Note:         input.Note,
		UpdatedAt:    now,
	}
	if err := queue.PublishJSON(ctx, amqpChannel, queue.StatusQueue, event); err != nil {
		log.Printf("[WARN] Status updated but failed to publish event: %v", err)
	}

	response.Success(w, http.StatusOK, "Report status updated", nil)
}

func addReferral(w http.ResponseWriter, r *http.Request, id string) {
	var input struct {
		Office string `json:"office"`
		Note   string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}
	if input.Office == "" {
		response.Error(w, http.StatusBadRequest, "Office is required", "")
		return
	}

	referredBy := ""
	if claims, ok := middleware.ClaimsFromRequest(r); ok {
		referredBy = claims.Email
	}

	if err := pushReferral(r.Context(), id, models.Referral{
		Office:     input.Office,
		Note:       input.Note,
		ReferredAt: time.Now(),
		ReferredBy: referredBy,
	}); err != nil {
		writeReferralError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Referral recorded", nil)
}

func addAdminNote(w http.ResponseWriter, r *http.Request, id string) {
	var input struct {
		Body string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}
	if strings.TrimSpace(input.Body) == "" {
		response.Error(w, http.StatusBadRequest, "Note body is required", "")
		return
	}

	author := "unknown"
	if claims, ok := middleware.ClaimsFromRequest(r); ok {
		author = claims.Email
	}

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid report ID", err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	note := models.AdminNote{Author: author, Body: input.Body, CreatedAt: time.Now()}
	result, err := db.Collection("reports").UpdateOne(ctx,
		bson.M{"_id": objID},
		bson.M{
			"$push": bson.M{"admin_notes": note},
			"$set":  bson.M{"updated_at": note.CreatedAt},
		},
	)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Failed to add note", err.Error())
		return
	}
	if result.MatchedCount == 0 {
		response.Error(w, http.StatusNotFound, "Report not found", "")
		return
	}

	response.Success(w, http.StatusOK, "Note added", nil)
}

// internalReferralHandler lets the dispatcher record the automatic routing
// decision for a new report. Internal network only, no auth, matching the
// service-to-service update channel.
func internalReferralHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed", "")
		return
	}

	var input struct {
		ID     string `json:"id"`
		Office string `json:"office"`
		Note   string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}
	if input.ID == "" || input.Office == "" {
		response.Error(w, http.StatusBadRequest, "ID and Office are required", "")
		return
	}

	if err := pushReferral(r.Context(), input.ID, models.Referral{
		Office:     input.Office,
		Note:       input.Note,
		ReferredAt: time.Now(),
		ReferredBy: "dispatcher",
	}); err != nil {
		writeReferralError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Referral recorded via internal API", nil)
}

var errReportNotFound = fmt.Errorf("report not found")

func pushReferral(ctx context.Context, id string, ref models.Referral) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid report ID: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	result, err := db.Collection("reports").UpdateOne(ctx,
		bson.M{"_id": objID},
		bson.M{
			"$push": bson.M{"referral_history": ref},
			"$set":  bson.M{"updated_at": ref.ReferredAt},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to record referral: %w", err)
	}
	if result.MatchedCount == 0 {
		return errReportNotFound
	}
	return nil
}

func writeReferralError(w http.ResponseWriter, err error) {
	switch {
	case err == errReportNotFound:
		response.Error(w, http.StatusNotFound, "Report not found", "")
	case strings.Contains(err.Error(), "invalid report ID"):
		response.Error(w, http.StatusBadRequest, "Invalid report ID", err.Error())
	default:
		response.Error(w, http.StatusInternalServerError, "Failed to record referral", err.Error())
	}
}

func analyticsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed", "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	start := timeRangeStart(r.URL.Query().Get("timeRange"))
	inRange := bson.M{"created_at": bson.M{"$gte": start}}

	total, err := db.Collection("reports").CountDocuments(ctx, inRange)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Failed to count reports", err.Error())
		return
	}

	byStatus := map[string]int64{}
	for _, status := range []models.ReportStatus{
		models.StatusPending, models.StatusUnderReview, models.StatusInProgress,
		models.StatusResolved, models.StatusClosed,
	} {
		count, err := db.Collection("reports").CountDocuments(ctx, bson.M{
			"status":     status,
			"created_at": bson.M{"$gte": start},
		})
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "Failed to count reports", err.Error())
			return
		}
		byStatus[string(status)] = count
	}

	anonymous, err := db.Collection("reports").CountDocuments(ctx, bson.M{
		"is_anonymous": true,
		"created_at":   bson.M{"$gte": start},
	})
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Failed to count reports", err.Error())
		return
	}

	resolvedRate := 0.0
	if total > 0 {
		resolvedRate = float64(byStatus[string(models.StatusResolved)]+byStatus[string(models.StatusClosed)]) / float64(total) * 100
	}

	response.Success(w, http.StatusOK, "Analytics data retrieved", map[string]interface{}{
		"total":        total,
		"byStatus":     byStatus,
		"anonymous":    anonymous,
		"resolvedRate": resolvedRate,
	})
}
