package jobs

import (
	"encoding/json"
	"fmt"
)

func EncodePayload(t JobType, payload any) ([]byte, error) {
	if !t.IsValid() {
		return nil, ErrInvalidJobType
	}

	switch t {
	case JobDeleteStoredFile:
		_, ok := payload.(DeleteStoredFilePayload)

		if !ok {
			_, ok2 := payload.(*DeleteStoredFilePayload)

			if !ok2 {
				return nil, ErrPayloadTypeMismatch
			}
		}

	case JobResyncProductStock:
		_, ok := payload.(ResyncProductStockPayload)

		if !ok {
			_, ok2 := payload.(*ResyncProductStockPayload)

			if !ok2 {
				return nil, ErrPayloadTypeMismatch
			}
		}
	}

	b, err := json.Marshal(payload)

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJobPayload, err)
	}

	return b, nil
}

// DecodePayload unmarshals job.Payload into the correct typed payload struct.
func DecodePayload(j Job) (any, error) {
	if !j.Type.IsValid() {
		return nil, ErrInvalidJobType
	}
	if len(j.Payload) == 0 {
		return nil, ErrInvalidJobPayload
	}

	switch j.Type {
	case JobDeleteStoredFile:
		var p DeleteStoredFilePayload
		if err := json.Unmarshal(j.Payload, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidJobPayload, err)
		}
		return p, nil

	case JobResyncProductStock:
		var p ResyncProductStockPayload
		if err := json.Unmarshal(j.Payload, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidJobPayload, err)
		}
		return p, nil

	default:
		return nil, ErrInvalidJobType
	}
}

// ValidatePayload rejects payloads that would make the worker fail on every
// attempt regardless of retry.
func ValidatePayload(t JobType, payload any) error {
	switch t {
	case JobDeleteStoredFile:
		p, ok := payload.(DeleteStoredFilePayload)
		if !ok {
			return ErrPayloadTypeMismatch
		}
		if p.ObjectKey == "" {
			return fmt.Errorf("%w: missing objectKey", ErrInvalidJobPayload)
		}

	case JobResyncProductStock:
		p, ok := payload.(ResyncProductStockPayload)
		if !ok {
			return ErrPayloadTypeMismatch
		}
		if p.VariantID <= 0 {
			return fmt.Errorf("%w: missing variantId", ErrInvalidJobPayload)
		}
		if p.Stock < 0 {
			return fmt.Errorf("%w: negative stock", ErrInvalidJobPayload)
		}

	default:
		return ErrInvalidJobType
	}
	return nil
}
