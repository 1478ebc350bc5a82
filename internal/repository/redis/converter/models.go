package converter

import "github.com/shopspring/decimal"

type ProductInfoRedisModel struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	CategoryName string          `json:"category_name"`
	Price        decimal.Decimal `json:"price"`
}
