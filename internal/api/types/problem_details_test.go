package types

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusOf(t *testing.T) {
	cases := map[string]int{
		"MALFORMED_INPUT":                http.StatusBadRequest,
		"CHALLENGE_MISMATCH":             http.StatusUnprocessableEntity,
		"UNKNOWN_OR_DISABLED_PROOF_KIND": http.StatusNotFound,
		"PERMISSION_DENIED":              http.StatusForbidden,
		"REPLAY_REJECTED":                http.StatusConflict,
		"PERMIT_INVALID":                 http.StatusPaymentRequired,
		CodeReadOnly:                     http.StatusServiceUnavailable,
		"SOMETHING_ELSE":                 http.StatusInternalServerError,
	}
	for code, status := range cases {
		assert.Equal(t, status, StatusOf(code), code)
	}
}

func TestWriteJSON(t *testing.T) {
	p := NewProblemDetails("REPLAY_REJECTED", "entry consumed", "/api/v1/ace/x", "")
	require.NotEmpty(t, p.TraceID)

	rec := httptest.NewRecorder()
	p.WriteJSON(rec)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, ContentType, rec.Header().Get("Content-Type"))

	var got ProblemDetails
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "REPLAY_REJECTED", got.Code)
	assert.Equal(t, p.TraceID, got.TraceID)
	assert.Equal(t, "entry consumed", got.Error())

	pd, ok := IsProblemDetails(error(p))
	assert.True(t, ok)
	assert.Same(t, p, pd)
}

func TestTraceIDPreserved(t *testing.T) {
	p := NewProblemDetails(CodeBadRequest, "", "", "req-1")
	assert.Equal(t, "req-1", p.TraceID)
	assert.Equal(t, http.StatusText(http.StatusBadRequest), p.Error())
}
