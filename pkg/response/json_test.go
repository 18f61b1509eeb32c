package response

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuccessEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	Success(rec, 201, "Report created successfully", map[string]string{"ticket_number": "GAD-2025-deadbeef"})

	assert.Equal(t, 201, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "success", got.Status)
	assert.Equal(t, "Report created successfully", got.Message)
	assert.Empty(t, got.Error)

	data, ok := got.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "GAD-2025-deadbeef", data["ticket_number"])
}

func TestErrorEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, 400, "Missing or invalid required fields", "lastName is required")

	assert.Equal(t, 400, rec.Code)

	var got APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "error", got.Status)
	assert.Equal(t, "Missing or invalid required fields", got.Message)
	assert.Equal(t, "lastName is required", got.Error)
	assert.Nil(t, got.Data)
}
