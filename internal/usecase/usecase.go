package usecase

import (
	"context"

	"github.com/DRSN-tech/cashier-backend/internal/domain"
)

type CategoryUC interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	GetCategory(ctx context.Context, id int64) (*domain.Category, error)
	CreateCategory(ctx context.Context, req *CategoryReq) (*domain.Category, error)
	UpdateCategory(ctx context.Context, id int64, req *CategoryReq) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
}

type ProductUC interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	CreateProduct(ctx context.Context, req *ProductReq) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, req *ProductReq) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	GetProductsInfo(ctx context.Context, req *GetProductsReq) (*GetProductsRes, error)
}

type OrderUC interface {
	PostOrder(ctx context.Context, req *PostOrderReq) (*domain.Order, error)
	ListOrders(ctx context.Context) ([]domain.Order, error)
	GetOrder(ctx context.Context, id int64) (*domain.Order, error)
	DeleteOrder(ctx context.Context, id int64) error
}

type AuthUC interface {
	Login(ctx context.Context, req *LoginReq) (*LoginRes, error)
	Verify(ctx context.Context, token string) (*AuthClaims, error)
	CreateAccount(ctx context.Context, req *CreateAccountReq) (*domain.Account, error)
}
