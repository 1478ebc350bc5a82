package usecase

import (
	"time"

	"github.com/DRSN-tech/cashier-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// CATALOG

// CategoryReq: запрос на создание или изменение категории.
type CategoryReq struct {
	Name string `json:"name" validate:"required,max=255"`
}

// ProductReq: запрос на создание или изменение товара.
// Указатели отличают «поле не передано» от нулевого значения (stock = 0 допустим).
type ProductReq struct {
	Name       string           `json:"name" validate:"required,max=255"`
	CategoryID *int64           `json:"category_id" validate:"required"`
	Price      *decimal.Decimal `json:"price" validate:"required" swaggertype:"string"`
	Stock      *int64           `json:"stock" validate:"required"`
}

// GetProductsReq запрос информации о продуктах по их идентификаторам.
type GetProductsReq struct {
	IDs []int64
}

// GetProductsRes: ответ с данными запрошенных продуктов.
type GetProductsRes struct {
	Products         []domain.ProductInfo
	NotFoundProducts []int64
}

// ORDERS

// PostOrderReq: запрос на проведение заказа.
type PostOrderReq struct {
	BuyerID  int64          `json:"buyer_id" validate:"required"`
	Products []OrderLineReq `json:"products" validate:"required,min=1"`
}

// OrderLineReq: одна строка заказа в запросе.
type OrderLineReq struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

// OrderPostedPayload: содержимое события order.posted, оно же электронный чек.
type OrderPostedPayload struct {
	OrderID       int64             `json:"order_id"`
	BuyerID       int64             `json:"buyer_id"`
	BuyerUsername string            `json:"buyer_username"`
	TotalAmount   decimal.Decimal   `json:"total_amount"`
	OrderDate     time.Time         `json:"order_date"`
	Lines         []OrderPostedLine `json:"lines"`
}

type OrderPostedLine struct {
	ProductID int64           `json:"product_id"`
	Quantity  int64           `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// AUTH

// LoginReq: запрос на вход кассира.
type LoginReq struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginRes: выданный токен и владелец.
type LoginRes struct {
	Account   *domain.Account
	Token     string
	ExpiresAt time.Time
}

// CreateAccountReq: запрос на создание учётной записи (cmd/account).
type CreateAccountReq struct {
	Username string `json:"username" validate:"required,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// AuthClaims: проверенные данные токена.
type AuthClaims struct {
	AccountID int64
	Username  string
	ExpiresAt time.Time
}

// OUTBOX

type OutboxStatus string

const (
	Pending    OutboxStatus = "pending"
	Processing OutboxStatus = "processing"
	Processed  OutboxStatus = "processed"
)

type OutboxEventType string

const OrderPosted OutboxEventType = "order.posted"

// OutboxEvent: событие, записанное в той же транзакции, что и изменение данных.
type OutboxEvent struct {
	ID          int64
	EventID     string
	EventType   OutboxEventType
	AggregateID int64
	Payload     []byte
	Status      OutboxStatus
	Attempts    int
	LastError   *string
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// MAPPERS

func NewGetProductsRes(pr []domain.ProductInfo, notFoundProducts []int64) *GetProductsRes {
	return &GetProductsRes{
		Products:         pr,
		NotFoundProducts: notFoundProducts,
	}
}

func NewGetProductsReq(ids []int64) *GetProductsReq {
	return &GetProductsReq{ids}
}

func NewLoginRes(account *domain.Account, token string, expiresAt time.Time) *LoginRes {
	return &LoginRes{
		Account:   account,
		Token:     token,
		ExpiresAt: expiresAt,
	}
}

func NewOutboxEvent(eventID string, eventType OutboxEventType, aggregateID int64, payload []byte) *OutboxEvent {
	return &OutboxEvent{
		EventID:     eventID,
		EventType:   eventType,
		AggregateID: aggregateID,
		Payload:     payload,
		Status:      Pending,
	}
}

func NewOrderPostedPayload(order *domain.Order) *OrderPostedPayload {
	lines := make([]OrderPostedLine, 0, len(order.Lines))
	for _, l := range order.Lines {
		lines = append(lines, OrderPostedLine{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			Subtotal:  l.Subtotal,
		})
	}

	return &OrderPostedPayload{
		OrderID:       order.ID,
		BuyerID:       order.BuyerID,
		BuyerUsername: order.BuyerUsername,
		TotalAmount:   order.TotalAmount,
		OrderDate:     order.OrderDate,
		Lines:         lines,
	}
}
