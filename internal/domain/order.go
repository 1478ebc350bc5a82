package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order: проведённый заказ (в HTTP API называется transaction).
type Order struct {
	ID            int64
	BuyerID       int64
	BuyerUsername string
	TotalAmount   decimal.Decimal
	OrderDate     time.Time
	Lines         []OrderLine
}

// OrderLine: строка заказа. Subtotal = Quantity * цена товара на момент проведения.
type OrderLine struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Quantity  int64
	Subtotal  decimal.Decimal
	// Product заполняется только при чтении заказа.
	Product *ProductInfo
}

func NewOrder(buyerID int64, total decimal.Decimal, lines []OrderLine) *Order {
	return &Order{
		BuyerID:     buyerID,
		TotalAmount: total,
		Lines:       lines,
	}
}

func NewOrderLine(productID, quantity int64, subtotal decimal.Decimal) OrderLine {
	return OrderLine{
		ProductID: productID,
		Quantity:  quantity,
		Subtotal:  subtotal,
	}
}
