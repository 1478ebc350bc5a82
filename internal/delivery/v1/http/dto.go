package http

import (
	"time"

	"github.com/DRSN-tech/cashier-backend/internal/domain"
	"github.com/DRSN-tech/cashier-backend/internal/usecase"
	"github.com/shopspring/decimal"
)

type CategoryResponse struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type ProductResponse struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	CategoryID int64      `json:"category_id"`
	Price      string     `json:"price" example:"4000.00"`
	Stock      int64      `json:"stock"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at"`
}

type AccountResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type LoginResponse struct {
	User      AccountResponse `json:"user"`
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
}

type OrderLineResponse struct {
	ID        int64                `json:"id"`
	ProductID int64                `json:"product_id"`
	Quantity  int64                `json:"quantity"`
	Subtotal  string               `json:"subtotal" example:"12000.00"`
	Product   *ProductInfoResponse `json:"product,omitempty"`
}

type ProductInfoResponse struct {
	Name         string `json:"name"`
	CategoryName string `json:"category_name"`
	Price        string `json:"price"`
}

type OrderResponse struct {
	ID          int64               `json:"id"`
	BuyerID     int64               `json:"buyer_id"`
	User        *AccountResponse    `json:"user,omitempty"`
	TotalAmount string              `json:"total_amount" example:"12000.00"`
	OrderDate   time.Time           `json:"order_date"`
	Details     []OrderLineResponse `json:"details"`
}

// PostOrderRequest: тело POST /transactions. user_id принимается как синоним buyer_id;
// если покупатель не указан, используется аккаунт из токена.
type PostOrderRequest struct {
	BuyerID  *int64                 `json:"buyer_id"`
	UserID   *int64                 `json:"user_id"`
	Products []usecase.OrderLineReq `json:"products"`
}

func (r *PostOrderRequest) toUseCase(claims *usecase.AuthClaims) *usecase.PostOrderReq {
	req := &usecase.PostOrderReq{Products: r.Products}

	switch {
	case r.BuyerID != nil:
		req.BuyerID = *r.BuyerID
	case r.UserID != nil:
		req.BuyerID = *r.UserID
	case claims != nil:
		req.BuyerID = claims.AccountID
	}

	return req
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func toCategoryResponse(c *domain.Category) CategoryResponse {
	return CategoryResponse{ID: c.ID, Name: c.Name, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt}
}

func toArrCategoryResponse(cs []domain.Category) []CategoryResponse {
	res := make([]CategoryResponse, 0, len(cs))
	for i := range cs {
		res = append(res, toCategoryResponse(&cs[i]))
	}
	return res
}

func toProductResponse(p *domain.Product) ProductResponse {
	return ProductResponse{
		ID:         p.ID,
		Name:       p.Name,
		CategoryID: p.CategoryID,
		Price:      money(p.Price),
		Stock:      p.Stock,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

func toArrProductResponse(ps []domain.Product) []ProductResponse {
	res := make([]ProductResponse, 0, len(ps))
	for i := range ps {
		res = append(res, toProductResponse(&ps[i]))
	}
	return res
}

func toLoginResponse(r *usecase.LoginRes) LoginResponse {
	return LoginResponse{
		User:      AccountResponse{ID: r.Account.ID, Username: r.Account.Username},
		Token:     r.Token,
		ExpiresAt: r.ExpiresAt,
	}
}

func toOrderResponse(o *domain.Order) OrderResponse {
	res := OrderResponse{
		ID:          o.ID,
		BuyerID:     o.BuyerID,
		TotalAmount: money(o.TotalAmount),
		OrderDate:   o.OrderDate,
		Details:     make([]OrderLineResponse, 0, len(o.Lines)),
	}
	if o.BuyerUsername != "" {
		res.User = &AccountResponse{ID: o.BuyerID, Username: o.BuyerUsername}
	}

	for _, l := range o.Lines {
		line := OrderLineResponse{
			ID:        l.ID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			Subtotal:  money(l.Subtotal),
		}
		if l.Product != nil {
			line.Product = &ProductInfoResponse{
				Name:         l.Product.Name,
				CategoryName: l.Product.CategoryName,
				Price:        money(l.Product.Price),
			}
		}
		res.Details = append(res.Details, line)
	}

	return res
}

func toArrOrderResponse(orders []domain.Order) []OrderResponse {
	res := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		res = append(res, toOrderResponse(&orders[i]))
	}
	return res
}
