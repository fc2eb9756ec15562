package jobs

import (
	"testing"
	"time"
)

func TestEncodeDecode_DeleteStoredFile(t *testing.T) {
	payload := DeleteStoredFilePayload{
		ObjectKey:   "products/1724500000000-front.jpg",
		RequestedBy: 7,
		RequestedAt: time.Now().UTC(),
	}

	b, err := EncodePayload(JobDeleteStoredFile, payload)
	if err != nil {
		t.Fatalf("EncodePayload error: %v", err)
	}

	j, err := NewJob(JobDeleteStoredFile, b)
	if err != nil {
		t.Fatalf("NewJob error: %v", err)
	}

	decoded, err := DecodePayload(j)
	if err != nil {
		t.Fatalf("DecodePayload error: %v", err)
	}

	p, ok := decoded.(DeleteStoredFilePayload)
	if !ok {
		t.Fatalf("expected DeleteStoredFilePayload, got %T", decoded)
	}

	if p.ObjectKey != payload.ObjectKey {
		t.Fatalf("expected objectKey %s, got %s", payload.ObjectKey, p.ObjectKey)
	}
}

func TestEncodePayload_TypeMismatch(t *testing.T) {
	_, err := EncodePayload(JobDeleteStoredFile, ResyncProductStockPayload{
		VariantID: 1,
		Stock:     5,
	})
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if err != ErrPayloadTypeMismatch {
		t.Fatalf("expected ErrPayloadTypeMismatch, got %v", err)
	}
}

func TestNewJob_RejectsUnknownType(t *testing.T) {
	_, err := NewJob(JobType("mystery"), []byte(`{}`))
	if err != ErrInvalidJobType {
		t.Fatalf("expected ErrInvalidJobType, got %v", err)
	}
}

func TestValidatePayload_RequiredFields(t *testing.T) {
	if err := ValidatePayload(JobDeleteStoredFile, DeleteStoredFilePayload{ObjectKey: ""}); err == nil {
		t.Fatalf("expected error")
	}
	if err := ValidatePayload(JobResyncProductStock, ResyncProductStockPayload{VariantID: 0}); err == nil {
		t.Fatalf("expected error")
	}
	if err := ValidatePayload(JobResyncProductStock, ResyncProductStockPayload{VariantID: 3, Stock: -1}); err == nil {
		t.Fatalf("expected error")
	}
}
