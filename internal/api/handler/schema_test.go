package handler

import (
	"encoding/json"
	"testing"
)

// errorEnvelope must stay byte-for-byte what the API error handler renders.
const errorEnvelope = `{"error":"The given data was invalid.","fields":{"email":"The email field is required."}}`

func TestErrorResponse_MatchesRenderedEnvelope(t *testing.T) {
	got, err := json.Marshal(errorResponse{
		Error:  "The given data was invalid.",
		Fields: map[string]string{"email": "The email field is required."},
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(got) != errorEnvelope {
		t.Fatalf("got %s, want %s", got, errorEnvelope)
	}
}
