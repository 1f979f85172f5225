package wsproto

import (
	"encoding/json"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	raw, err := Encode(TypeError, ErrorPayload{Message: "stale: question has moved on"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	frame, err := Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if frame.Type != TypeError {
		t.Fatalf("type = %q, want %q", frame.Type, TypeError)
	}

	var payload ErrorPayload
	if err := json.Unmarshal(frame.Payload, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.Message != "stale: question has moved on" {
		t.Fatalf("message = %q", payload.Message)
	}
}

func TestDecodeRejectsMissingType(t *testing.T) {
	if _, err := Decode([]byte(`{"payload": {}}`)); err == nil {
		t.Fatal("expected an error for a frame with no type discriminator")
	}
}

func TestDecodeRejectsMalformedJSON(t *testing.T) {
	if _, err := Decode([]byte(`{"type": "answer"`)); err == nil {
		t.Fatal("expected an error for truncated JSON")
	}
}

func TestEncodeBareOmitsPayload(t *testing.T) {
	raw, err := EncodeBare(TypePing)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	frame, err := Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if frame.Type != TypePing {
		t.Fatalf("type = %q, want ping", frame.Type)
	}
	if len(frame.Payload) != 0 {
		t.Fatalf("payload should be empty, got %s", frame.Payload)
	}
}

func TestDecodePreservesUnparsedPayload(t *testing.T) {
	raw := []byte(`{"type": "answer", "payload": {"question_id": "8f14e45f-ceea-467f-a8cb-9d5f9e4ab000", "selected_answer": "Blue"}}`)
	frame, err := Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	var payload AnswerPayload
	if err := json.Unmarshal(frame.Payload, &payload); err != nil {
		t.Fatalf("unmarshal answer payload: %v", err)
	}
	if payload.SelectedAnswer != "Blue" {
		t.Fatalf("selected_answer = %q, want Blue", payload.SelectedAnswer)
	}
}
