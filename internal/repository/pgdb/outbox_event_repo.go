package pgdb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/DRSN-tech/cashier-backend/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/cashier-backend/internal/usecase"
	"github.com/DRSN-tech/cashier-backend/pkg/e"
	"github.com/DRSN-tech/cashier-backend/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// OutboxChannel: канал LISTEN/NOTIFY, в который пишется уведомление о новом событии.
const OutboxChannel = "outbox_pending"

// maxLastErrorLen ограничивает текст ошибки, сохраняемый в last_error.
const maxLastErrorLen = 1024

type OutboxEventRepo struct {
	pool *pgxpool.Pool
	conv converter.OutboxEventConverter
}

func NewOutboxEventRepo(pool *pgxpool.Pool, conv converter.OutboxEventConverter) *OutboxEventRepo {
	return &OutboxEventRepo{
		pool: pool,
		conv: conv,
	}
}

const outboxColumns = `id, event_id, event_type, aggregate_id, payload, status, attempts, last_error, created_at, processed_at`

// Create сохраняет событие в текущей транзакции и уведомляет воркер.
// NOTIFY доставляется слушателям только после коммита.
func (o *OutboxEventRepo) Create(ctx context.Context, event *usecase.OutboxEvent) (*usecase.OutboxEvent, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	model := o.conv.ToModel(event)
	query := `
		INSERT INTO outbox_events (
			event_id,
			event_type,
			aggregate_id,
			payload,
			status
		) VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at;
	`

	if err := tx.QueryRow(ctx, query,
		model.EventID,
		model.EventType,
		model.AggregateID,
		model.Payload,
		model.Status,
	).Scan(&model.ID, &model.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s: failed to insert event %s: %w", whereami.WhereAmI(), event.EventID, mapErr(err))
	}

	if _, err = tx.Exec(ctx, "SELECT pg_notify($1, $2)", OutboxChannel, model.EventType); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return o.conv.ToEntity(model), nil
}

// GetAndMarkAsProcessing атомарно забирает пачку событий. SKIP LOCKED позволяет
// нескольким репликам разбирать outbox без двойной доставки одной пачки.
func (o *OutboxEventRepo) GetAndMarkAsProcessing(ctx context.Context, limit int, lease time.Duration) ([]*usecase.OutboxEvent, error) {
	query := `
		UPDATE outbox_events
		SET status = $1, processing_started_at = NOW()
		WHERE id IN (
			SELECT id FROM outbox_events
			WHERE status = $2
			   OR (status = $1 AND processing_started_at < NOW() - $3::interval)
			ORDER BY created_at, id
			LIMIT $4
			FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + outboxColumns

	rows, err := o.pool.Query(ctx, query, usecase.Processing, usecase.Pending, lease, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to query pending events: %w", whereami.WhereAmI(), err)
	}

	models, err := pgx.CollectRows(rows, pgx.RowToStructByName[converter.OutboxEventModel])
	if err != nil {
		return nil, fmt.Errorf("%s: failed to scan events: %w", whereami.WhereAmI(), err)
	}

	return o.conv.ToArrEntity(models), nil
}

func (o *OutboxEventRepo) MarkAsProcessed(ctx context.Context, id int64) error {
	query := `
		UPDATE outbox_events
		SET status = $1, processed_at = NOW(), last_error = NULL
		WHERE id = $2 AND status = $3
	`

	// 0 строк: событие уже обработал другой воркер после истечения аренды
	if _, err := o.pool.Exec(ctx, query, usecase.Processed, id, usecase.Processing); err != nil {
		return fmt.Errorf("%s: failed to mark event %d as processed: %w", whereami.WhereAmI(), id, err)
	}

	return nil
}

func (o *OutboxEventRepo) MarkAsFailed(ctx context.Context, id int64, reason string) error {
	if len(reason) > maxLastErrorLen {
		reason = strings.ToValidUTF8(reason[:maxLastErrorLen], "")
	}

	query := `
		UPDATE outbox_events
		SET status = $1, attempts = attempts + 1, last_error = $2, processing_started_at = NULL
		WHERE id = $3 AND status = $4
	`

	if _, err := o.pool.Exec(ctx, query, usecase.Pending, reason, id, usecase.Processing); err != nil {
		return fmt.Errorf("%s: failed to mark event %d as failed: %w", whereami.WhereAmI(), id, err)
	}

	return nil
}
