package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"etala-reporting-system/pkg/config"
	"etala-reporting-system/pkg/middleware"
	"etala-reporting-system/pkg/queue"

	"github.com/golang-jwt/jwt/v5"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Event is what goes out over SSE. Type is "new_report" or "status_update".
type Event struct {
	Type         string    `json:"type"`
	TicketNumber string    `json:"ticket_number"`
	Status       string    `json:"status,omitempty"`
	Note         string    `json:"note,omitempty"`
	At           time.Time `json:"at"`
}

// Client is one open SSE stream. Admin clients (authenticated staff) receive
// everything; ticket clients receive only status updates for their own case,
// so an anonymous reporter can follow along without an account.
type Client struct {
	Ticket string
	Role   string
	Send   chan Event
}

var (
	clients    = make(map[*Client]bool)
	broadcast  = make(chan Event, 100)
	register   = make(chan *Client)
	unregister = make(chan *Client)
	mu         sync.RWMutex
)

func main() {
	config.Load()

	conn, ch, err := queue.ConnectRabbitMQ(config.AMQPURI())
	if err != nil {
		log.Fatalf("[ERROR] Failed to connect to RabbitMQ: %v", err)
	}
	defer conn.Close()
	defer ch.Close()

	middleware.RegisterMetrics()

	go consume(ch, queue.ReportQueue, "new_report")
	go consume(ch, queue.StatusQueue, "status_update")
	go handleClients()

	apiMux := http.NewServeMux()
	apiMux.HandleFunc("/health", healthHandler)
	apiMux.Handle("/metrics", middleware.GetMetricsHandler())

	apiHandler := middleware.TraceMiddleware(
		middleware.MetricsMiddleware(
			middleware.LoggerMiddleware(apiMux),
		),
	)

	rootMux := http.NewServeMux()
	rootMux.Handle("/notifications/subscribe", middleware.TraceMiddleware(http.HandlerFunc(subscribeHandler)))
	rootMux.Handle("/", apiHandler)

	port := config.Getenv("NOTIFICATION_SERVICE_PORT", "8084")
	log.Printf("[INFO] Notification service running on port :%s", port)
	if err := http.ListenAndServe(":"+port, rootMux); err != nil {
		log.Fatalf("[ERROR] Server failed: %v", err)
	}
}

func consume(ch *amqp.Channel, queueName, eventType string) {
	msgs, err := queue.ConsumeMessages(ch, queueName)
	if err != nil {
		log.Fatalf("[ERROR] Failed to consume %s: %v", queueName, err)
	}

	for d := range msgs {
		var raw struct {
			TicketNumber string    `json:"ticket_number"`
			Status       string    `json:"status"`
			Note         string    `json:"note"`
			CreatedAt    time.Time `json:"created_at"`
			UpdatedAt    time.Time `json:"updated_at"`
		}
		if err := json.Unmarshal(d.Body, &raw); err != nil {
			log.Printf("[WARN] Failed to parse event from %s: %v", queueName, err)
			continue
		}

		at := raw.UpdatedAt
		if at.IsZero() {
			at = raw.CreatedAt
		}
		broadcast <- Event{
			Type:         eventType,
			TicketNumber: raw.TicketNumber,
			Status:       raw.Status,
			Note:         raw.Note,
			At:           at,
		}
	}
}

func handleClients() {
	for {
		select {
		case client := <-register:
			mu.Lock()
			clients[client] = true
			total := len(clients)
			mu.Unlock()
			log.Printf("[INFO] Client subscribed (total: %d)", total)

		case client := <-unregister:
			mu.Lock()
			if _, ok := clients[client]; ok {
				delete(clients, client)
				close(client.Send)
			}
			total := len(clients)
			mu.Unlock()
			log.Printf("[INFO] Client unsubscribed (total: %d)", total)

		case event := <-broadcast:
			mu.RLock()
			for client := range clients {
				if !shouldDeliver(client, event) {
					continue
				}
				select {
				case client.Send <- event:
				default:
					// Slow consumer, drop rather than block the fan-out.
				}
			}
			mu.RUnlock()
		}
	}
}

func shouldDeliver(c *Client, e Event) bool {
	if c.Role == "admin" || c.Role == "gad_officer" {
		return true
	}
	// Ticket subscribers only hear about their own case, and never get the
	// new-report firehose.
	return e.Type == "status_update" && c.Ticket != "" && c.Ticket == e.TicketNumber
}

func validateToken(tokenString string) (*middleware.UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &middleware.UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(config.Getenv("JWT_SECRET", "SUPER_SECRET_KEY_CHANGE_ME")), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*middleware.UserClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token claims")
}

// subscribeHandler opens an SSE stream. Staff authenticate with a bearer
// token; reporters pass ?ticket=GAD-... instead.
func subscribeHandler(w http.ResponseWriter, r *http.Request) {
	role := ""
	tokenString := r.URL.Query().Get("token")
	if tokenString == "" {
		if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}
	}
	if tokenString != "" {
		claims, err := validateToken(tokenString)
		if err != nil {
			log.Printf("[WARN] Invalid token attempt: %v", err)
			http.Error(w, "Unauthorized: Invalid token", http.StatusUnauthorized)
			return
		}
		role = claims.Role
	}

	ticket := r.URL.Query().Get("ticket")
	if role == "" && ticket == "" {
		http.Error(w, "Provide a bearer token or a ticket number", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	client := &Client{
		Ticket: ticket,
		Role:   role,
		Send:   make(chan Event, 10),
	}

	register <- client
	defer func() {
		unregister <- client
	}()

	fmt.Fprintf(w, "data: %s\n\n", `{"type":"connected","message":"Connection established"}`)
	w.(http.Flusher).Flush()

	for {
		select {
		case event, ok := <-client.Send:
			if !ok {
				return
			}
			data, _ := json.Marshal(event)
			fmt.Fprintf(w, "data: %s\n\n", data)
			w.(http.Flusher).Flush()
		case <-r.Context().Done():
			return
		}
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	mu.RLock()
	connectedClients := len(clients)
	mu.RUnlock()

	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":            "UP",
		"service":           "notification-service",
		"connected_clients": connectedClients,
	})
}
