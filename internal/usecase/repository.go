package usecase

import (
	"context"
	"time"

	"github.com/DRSN-tech/cashier-backend/internal/domain"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) (*domain.Category, error)
	Update(ctx context.Context, category *domain.Category) (*domain.Category, error)
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
	// ExistsByName проверяет уникальность имени; excludeID = 0: ни одна запись не исключается.
	ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error)
}

type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	Update(ctx context.Context, product *domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
	ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error)
	ListIDsByCategory(ctx context.Context, categoryID int64) ([]int64, error)
	GetProductsInfo(ctx context.Context, ids []int64) ([]domain.ProductInfo, error)

	// LockForUpdate блокирует строки товаров в порядке возрастания id до конца транзакции.
	// Отсутствующие id в результат не попадают.
	LockForUpdate(ctx context.Context, ids []int64) (map[int64]domain.Product, error)
	// DecrementStock уменьшает остаток; если остатка не хватает, возвращает e.ErrInsufficientStock.
	DecrementStock(ctx context.Context, id int64, quantity int64) error
}

type OrderRepository interface {
	// Create сохраняет заголовок и строки заказа. Заполняет ID, OrderDate и ID строк.
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	Delete(ctx context.Context, id int64) error
}

type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	GetByID(ctx context.Context, id int64) (*domain.Account, error)
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
}

type OutboxRepository interface {
	// Create должен вызываться внутри транзакции, которая меняет данные события.
	Create(ctx context.Context, event *OutboxEvent) (*OutboxEvent, error)
	// GetAndMarkAsProcessing забирает до limit ожидающих событий и события, зависшие в processing дольше lease.
	GetAndMarkAsProcessing(ctx context.Context, limit int, lease time.Duration) ([]*OutboxEvent, error)
	MarkAsProcessed(ctx context.Context, id int64) error
	// MarkAsFailed возвращает событие в pending и увеличивает счётчик попыток.
	MarkAsFailed(ctx context.Context, id int64, reason string) error
}

type CacheRepository interface {
	GetProducts(ctx context.Context, ids []int64) (map[int64]domain.ProductInfo, error)
	SetProducts(ctx context.Context, products []domain.ProductInfo) error
	DeleteProducts(ctx context.Context, ids []int64) error
}
