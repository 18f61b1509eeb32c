package wizard

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPSubmissionClientSuccess(t *testing.T) {
	var gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/reports", r.URL.Path)
		gotContentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"status":"success","message":"Report created","data":{"ticket_number":"GAD-2025-1a2b3c4d"}}`))
	}))
	defer srv.Close()

	client := NewHTTPSubmissionClient(srv.URL)
	p, err := Assemble(identifiedDraft())
	require.NoError(t, err)

	receipt, err := client.Submit(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, "GAD-2025-1a2b3c4d", receipt.TicketNumber)
	assert.Contains(t, gotContentType, "multipart/form-data")
}

func TestHTTPSubmissionClientServerRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"status":"error","message":"Select at least one incident type"}`))
	}))
	defer srv.Close()

	client := NewHTTPSubmissionClient(srv.URL)
	p, err := Assemble(identifiedDraft())
	require.NoError(t, err)

	_, err = client.Submit(context.Background(), p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Select at least one incident type")
}

func TestHTTPSubmissionClientMissingTicket(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","data":{}}`))
	}))
	defer srv.Close()

	client := NewHTTPSubmissionClient(srv.URL)
	p, err := Assemble(identifiedDraft())
	require.NoError(t, err)

	_, err = client.Submit(context.Background(), p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ticket number")
}
