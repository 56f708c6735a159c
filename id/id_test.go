package id_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/ledyanoy556/smart-billing-contract/id"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		newFn  func() id.ID
		prefix string
	}{
		{"EventID", id.NewEventID, "evt_"},
		{"TransferID", id.NewTransferID, "xfer_"},
		{"LockToken", id.NewLockToken, "lck_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.newFn().String()
			if !strings.HasPrefix(got, tt.prefix) {
				t.Errorf("expected prefix %q, got %q", tt.prefix, got)
			}
		})
	}
}

func TestParseRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		newFn   func() id.ID
		parseFn func(string) (id.ID, error)
	}{
		{"EventID", id.NewEventID, id.ParseEventID},
		{"TransferID", id.NewTransferID, id.ParseTransferID},
		{"Any", id.NewEventID, id.ParseAny},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := tt.newFn()
			parsed, err := tt.parseFn(original.String())
			if err != nil {
				t.Fatalf("parse failed: %v", err)
			}
			if parsed.String() != original.String() {
				t.Errorf("round-trip mismatch: %q != %q", parsed.String(), original.String())
			}
		})
	}
}

func TestCrossTypeRejection(t *testing.T) {
	if _, err := id.ParseEventID(id.NewTransferID().String()); err == nil {
		t.Error("ParseEventID accepted a transfer ID")
	}
	if _, err := id.ParseTransferID(id.NewEventID().String()); err == nil {
		t.Error("ParseTransferID accepted an event ID")
	}
}

func TestParseEmpty(t *testing.T) {
	if _, err := id.Parse(""); err == nil {
		t.Error("expected error for empty string")
	}
}

func TestNilID(t *testing.T) {
	var i id.ID
	if !i.IsNil() {
		t.Error("zero-value ID should be nil")
	}
	if i.String() != "" {
		t.Errorf("expected empty string, got %q", i.String())
	}
}

func TestMarshalUnmarshalText(t *testing.T) {
	original := id.NewEventID()
	data, err := original.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText failed: %v", err)
	}

	var restored id.ID
	if err := restored.UnmarshalText(data); err != nil {
		t.Fatalf("UnmarshalText failed: %v", err)
	}
	if restored.String() != original.String() {
		t.Errorf("mismatch: %q != %q", restored.String(), original.String())
	}
}

func TestJSONEmbedding(t *testing.T) {
	type envelope struct {
		Transfer id.TransferID `json:"transfer"`
		Event    id.EventID    `json:"event,omitzero"`
	}

	original := envelope{Transfer: id.NewTransferID()}
	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var restored envelope
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if restored.Transfer.String() != original.Transfer.String() {
		t.Errorf("mismatch: %q != %q", restored.Transfer.String(), original.Transfer.String())
	}
	if !restored.Event.IsNil() {
		t.Error("absent event should decode as nil")
	}
}

func TestUniqueness(t *testing.T) {
	a := id.NewTransferID()
	b := id.NewTransferID()
	if a.String() == b.String() {
		t.Errorf("two consecutive NewTransferID() calls returned the same ID: %q", a.String())
	}
}
