package outbox

import (
	"context"

	"github.com/DRSN-tech/cashier-backend/pkg/e"
	"github.com/jackc/pgx/v5"
	"github.com/jimlawless/whereami"
)

// Listener ждёт уведомлений о новых событиях outbox.
type Listener interface {
	Connect(ctx context.Context) error
	// WaitForNotification блокируется до уведомления, ошибки соединения или отмены ctx.
	WaitForNotification(ctx context.Context) error
	Close(ctx context.Context)
}

// PgListener слушает канал Postgres через отдельное соединение (LISTEN не работает через пул).
type PgListener struct {
	dsn     string
	channel string
	conn    *pgx.Conn
}

func NewPgListener(dsn, channel string) *PgListener {
	return &PgListener{dsn: dsn, channel: channel}
}

func (l *PgListener) Connect(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, l.dsn)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{l.channel}.Sanitize()); err != nil {
		_ = conn.Close(ctx)
		return e.Wrap(whereami.WhereAmI(), err)
	}

	l.conn = conn
	return nil
}

func (l *PgListener) WaitForNotification(ctx context.Context) error {
	if _, err := l.conn.WaitForNotification(ctx); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (l *PgListener) Close(ctx context.Context) {
	if l.conn != nil {
		_ = l.conn.Close(ctx)
		l.conn = nil
	}
}
