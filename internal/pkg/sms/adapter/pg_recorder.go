package adapter

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"textback/internal/pkg/sms/port"
)

// PgDeliveryRecorder writes send-attempt audit rows to sms_deliveries.
type PgDeliveryRecorder struct {
	pool *pgxpool.Pool
}

func NewPgDeliveryRecorder(pool *pgxpool.Pool) *PgDeliveryRecorder {
	return &PgDeliveryRecorder{pool: pool}
}

var _ port.DeliveryRecorder = (*PgDeliveryRecorder)(nil)

func (r *PgDeliveryRecorder) Record(ctx context.Context, rec port.DeliveryRecord) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO sms_deliveries (message_sid, from_number, to_number, status, body_length, error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, rec.ProviderID, rec.From, rec.To, rec.Status, rec.BodyLength, rec.Error, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("sms: record delivery: %w", err)
	}
	return nil
}
