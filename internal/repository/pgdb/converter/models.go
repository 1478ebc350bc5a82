package converter

import (
	"time"

	"github.com/shopspring/decimal"
)

// CategoryModel представляет запись таблицы categories в PostgreSQL.
type CategoryModel struct {
	ID        int64      `db:"id"`
	Name      string     `db:"name"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt *time.Time `db:"updated_at"`
}

// ProductModel представляет запись таблицы products в PostgreSQL.
type ProductModel struct {
	ID         int64           `db:"id"`
	Name       string          `db:"name"`
	CategoryID int64           `db:"category_id"`
	Price      decimal.Decimal `db:"price"`
	Stock      int64           `db:"stock"`
	CreatedAt  time.Time       `db:"created_at"`
	UpdatedAt  *time.Time      `db:"updated_at"`
}

// ProductInfoModel: товар с названием категории (products JOIN categories).
type ProductInfoModel struct {
	ID           int64           `db:"id"`
	Name         string          `db:"name"`
	CategoryName string          `db:"category_name"`
	Price        decimal.Decimal `db:"price"`
}

// AccountModel представляет запись таблицы accounts в PostgreSQL.
type AccountModel struct {
	ID           int64      `db:"id"`
	Username     string     `db:"username"`
	PasswordHash string     `db:"password_hash"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    *time.Time `db:"updated_at"`
}

// OrderModel: запись orders вместе с именем покупателя.
type OrderModel struct {
	ID            int64           `db:"id"`
	BuyerID       int64           `db:"buyer_id"`
	BuyerUsername string          `db:"buyer_username"`
	TotalAmount   decimal.Decimal `db:"total_amount"`
	OrderDate     time.Time       `db:"order_date"`
}

// OrderLineModel представляет запись таблицы order_lines в PostgreSQL.
type OrderLineModel struct {
	ID        int64           `db:"id"`
	OrderID   int64           `db:"order_id"`
	ProductID int64           `db:"product_id"`
	Quantity  int64           `db:"quantity"`
	Subtotal  decimal.Decimal `db:"subtotal"`
}

// OutboxEventModel представляет запись таблицы outbox_events в PostgreSQL.
type OutboxEventModel struct {
	ID          int64      `db:"id"`
	EventID     string     `db:"event_id"`
	EventType   string     `db:"event_type"`
	AggregateID int64      `db:"aggregate_id"`
	Payload     []byte     `db:"payload"`
	Status      string     `db:"status"`
	Attempts    int        `db:"attempts"`
	LastError   *string    `db:"last_error"`
	CreatedAt   time.Time  `db:"created_at"`
	ProcessedAt *time.Time `db:"processed_at"`
}
