package memory

import (
	"context"
	"sync"

	"github.com/sharplineio/cardengine/internal/domain/rawpayload"
)

type RawPayloadRepository struct {
	mu   sync.Mutex
	rows []rawpayload.Payload
}

func NewRawPayloadRepository() *RawPayloadRepository {
	return &RawPayloadRepository{}
}

func (r *RawPayloadRepository) Insert(_ context.Context, p rawpayload.Payload) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rows = append(r.rows, p)
	return nil
}
