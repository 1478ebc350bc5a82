package usecase

import (
	"context"
	"time"

	"github.com/DRSN-tech/cashier-backend/internal/domain"
)

// TxManager выполняет fn в одной транзакции: ошибка fn откатывает всё.
// Реализуется manager.Manager из avito-tech/go-transaction-manager.
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) (bool, error)
}

type TokenManager interface {
	Generate(account *domain.Account) (string, time.Time, error)
	Verify(token string) (*AuthClaims, error)
}

// EventSink: получатель событий outbox (Kafka, архив чеков в MinIO).
type EventSink interface {
	Name() string
	Publish(ctx context.Context, event *OutboxEvent) error
}
