package main

import (
	"context"
	"log"
	"net/http"

	"etala-reporting-system/pkg/config"
	"etala-reporting-system/pkg/database"
	"etala-reporting-system/pkg/middleware"
	"etala-reporting-system/pkg/queue"
	"etala-reporting-system/pkg/response"
	"etala-reporting-system/pkg/storage"

	"github.com/go-playground/validator/v10"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	db          *mongo.Database
	amqpChannel *amqp.Channel
	attachments *storage.AttachmentStore
	validate    = validator.New()
)

func main() {
	config.Load()

	var err error
	db, err = database.ConnectMongo(context.Background(), config.MongoURI(), "gad_report_db")
	if err != nil {
		log.Fatalf("[ERROR] Failed to connect to MongoDB: %v", err)
	}
	log.Println("[OK] Connected to MongoDB")

	conn, ch, err := queue.ConnectRabbitMQ(config.AMQPURI())
	if err != nil {
		log.Fatalf("[ERROR] Failed to connect to RabbitMQ: %v", err)
	}
	defer conn.Close()
	defer ch.Close()
	amqpChannel = ch
	log.Println("[OK] Connected to RabbitMQ")

	attachments, err = storage.NewAttachmentStore(storage.ConfigFromEnv())
	if err != nil {
		log.Fatalf("[ERROR] Failed to init attachment store: %v", err)
	}

	middleware.RegisterMetrics()

	wrap := func(h http.HandlerFunc) http.Handler {
		return middleware.TraceMiddleware(
			middleware.MetricsMiddleware(
				middleware.LoggerMiddleware(h)))
	}
	admin := middleware.RequireRole("admin", "gad_officer")
	gadOffice := middleware.RequireOffice("GAD")

	http.Handle("/api/reports", wrap(reportsHandler))
	http.Handle("/api/reports/track/", wrap(trackReportHandler))
	http.Handle("/api/reports/", wrap(reportDetailHandler))
	http.Handle("/internal/referrals", wrap(internalReferralHandler))
	// The analytics dashboard belongs to the GAD office itself; officers
	// referred cases from other desks do not see org-wide numbers.
	http.Handle("/admin/analytics", wrap(middleware.AuthMiddleware(admin(gadOffice(analyticsHandler)))))
	http.Handle("/metrics", middleware.GetMetricsHandler())
	http.Handle("/health", wrap(healthHandler))

	port := ":" + config.Getenv("REPORT_SERVICE_PORT", "8082")
	log.Printf("[INFO] Report Service running on port %s", port)
	if err := http.ListenAndServe(port, nil); err != nil {
		log.Fatalf("[ERROR] Server failed: %v", err)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	response.Success(w, http.StatusOK, "report-service is up", nil)
}
