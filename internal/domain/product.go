package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product описывает товар каталога. Цена хранится как DECIMAL(10,2).
type Product struct {
	ID         int64
	Name       string
	CategoryID int64
	Price      decimal.Decimal
	Stock      int64
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}

func NewProduct(name string, categoryID int64, price decimal.Decimal, stock int64) *Product {
	return &Product{
		Name:       name,
		CategoryID: categoryID,
		Price:      price,
		Stock:      stock,
	}
}

// ProductInfo: краткая информация о товаре для чеков и внешних сервисов.
type ProductInfo struct {
	ID           int64
	Name         string
	CategoryName string
	Price        decimal.Decimal
}

func NewProductInfo(id int64, name string, category string, price decimal.Decimal) ProductInfo {
	return ProductInfo{
		ID:           id,
		Name:         name,
		CategoryName: category,
		Price:        price,
	}
}
