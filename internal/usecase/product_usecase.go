package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/DRSN-tech/cashier-backend/internal/domain"
	"github.com/DRSN-tech/cashier-backend/pkg/e"
	"github.com/DRSN-tech/cashier-backend/pkg/logger"
)

const cacheFillTimeout = 500 * time.Millisecond

// ProductUseCase реализует бизнес-логику управления товарами.
type ProductUseCase struct {
	productRepo  ProductRepository
	categoryRepo CategoryRepository
	cacheRepo    CacheRepository
	logger       logger.Logger

	fills sync.WaitGroup
}

func NewProductUC(
	productRepo ProductRepository,
	categoryRepo CategoryRepository,
	cacheRepo CacheRepository,
	logger logger.Logger,
) *ProductUseCase {
	return &ProductUseCase{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		cacheRepo:    cacheRepo,
		logger:       logger,
	}
}

func (p *ProductUseCase) ListProducts(ctx context.Context) ([]domain.Product, error) {
	const op = "ProductUseCase.ListProducts"

	products, err := p.productRepo.List(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return products, nil
}

func (p *ProductUseCase) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	const op = "ProductUseCase.GetProduct"

	product, err := p.getProduct(ctx, id)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return product, nil
}

func (p *ProductUseCase) CreateProduct(ctx context.Context, req *ProductReq) (*domain.Product, error) {
	const op = "ProductUseCase.CreateProduct"

	if err := p.validateProduct(ctx, req, 0); err != nil {
		return nil, e.Wrap(op, err)
	}

	product, err := p.productRepo.Create(ctx, domain.NewProduct(req.Name, *req.CategoryID, *req.Price, *req.Stock))
	if err != nil {
		return nil, e.Wrap(op, p.mapWriteErr(err))
	}

	return product, nil
}

func (p *ProductUseCase) UpdateProduct(ctx context.Context, id int64, req *ProductReq) (*domain.Product, error) {
	const op = "ProductUseCase.UpdateProduct"

	product, err := p.getProduct(ctx, id)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if err := p.validateProduct(ctx, req, id); err != nil {
		return nil, e.Wrap(op, err)
	}

	product.Name = req.Name
	product.CategoryID = *req.CategoryID
	product.Price = *req.Price
	product.Stock = *req.Stock

	updated, err := p.productRepo.Update(ctx, product)
	if err != nil {
		return nil, e.Wrap(op, p.mapWriteErr(err))
	}

	// Удаление из кэша старых данных товара
	p.invalidate(ctx, op, id)

	return updated, nil
}

func (p *ProductUseCase) DeleteProduct(ctx context.Context, id int64) error {
	const op = "ProductUseCase.DeleteProduct"

	if err := p.productRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return e.Wrap(op, notFound("id", msgProductNotFound))
		}
		return e.Wrap(op, err)
	}

	p.invalidate(ctx, op, id)

	return nil
}

// GetProductsInfo возвращает информацию о продуктах по их идентификаторам.
// Недоступный кэш не приводит к ошибке: данные читаются из БД.
func (p *ProductUseCase) GetProductsInfo(ctx context.Context, req *GetProductsReq) (*GetProductsRes, error) {
	const op = "ProductUseCase.GetProductsInfo"

	// Валидация
	if len(req.IDs) == 0 {
		return nil, e.Wrap(op, e.NewValidationError(e.FieldError{Field: "ids", Message: "Products cannot be empty!"}))
	}

	// Поиск продуктов в кэше
	cacheProductsMap, err := p.cacheRepo.GetProducts(ctx, req.IDs)
	if err != nil {
		p.logger.Warnf("Cache lookup failed, reading from database: %v", e.Wrap(op, err))
		cacheProductsMap = nil
	}

	var nonCacheable []int64
	for _, productID := range req.IDs {
		if _, ok := cacheProductsMap[productID]; !ok {
			nonCacheable = append(nonCacheable, productID)
		}
	}

	// Получение продуктов из БД
	var productsInfoFromDB []domain.ProductInfo
	if len(nonCacheable) > 0 {
		productsInfoFromDB, err = p.productRepo.GetProductsInfo(ctx, nonCacheable)
		if err != nil {
			return nil, e.Wrap(op, err)
		}

		if len(productsInfoFromDB) > 0 {
			p.fillCache(productsInfoFromDB)
		}
	}

	dbProductsMap := make(map[int64]domain.ProductInfo, len(productsInfoFromDB))
	for _, productInfo := range productsInfoFromDB {
		dbProductsMap[productInfo.ID] = productInfo
	}

	// Формирование результата в порядке запроса
	result := make([]domain.ProductInfo, 0, len(req.IDs))
	notFoundProducts := make([]int64, 0)
	for _, id := range req.IDs {
		if pr, ok := cacheProductsMap[id]; ok {
			result = append(result, pr)
		} else if pr, ok := dbProductsMap[id]; ok {
			result = append(result, pr)
		} else {
			notFoundProducts = append(notFoundProducts, id)
		}
	}

	return NewGetProductsRes(result, notFoundProducts), nil
}

// Close дожидается фоновых записей в кэш.
func (p *ProductUseCase) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.fills.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// fillCache в фоне добавляет продукты в кэш.
func (p *ProductUseCase) fillCache(products []domain.ProductInfo) {
	const op = "ProductUseCase.fillCache"

	p.fills.Add(1)
	go func() {
		defer p.fills.Done()

		bgCtx, cancel := context.WithTimeout(context.Background(), cacheFillTimeout)
		defer cancel()

		if err := p.cacheRepo.SetProducts(bgCtx, products); err != nil {
			p.logger.Warnf("Failed to cache products in background: %v", e.Wrap(op, err))
		}
	}()
}

func (p *ProductUseCase) invalidate(ctx context.Context, op string, ids ...int64) {
	if err := p.cacheRepo.DeleteProducts(ctx, ids); err != nil {
		p.logger.Warnf("Failed to delete products: %v", e.Wrap(op, err))
	}
}

func (p *ProductUseCase) getProduct(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := p.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, notFound("id", msgProductNotFound)
		}
		return nil, err
	}

	return product, nil
}

// validateProduct проверяет поля запроса; excludeID: товар, который не сравнивается сам с собой по имени.
func (p *ProductUseCase) validateProduct(ctx context.Context, req *ProductReq, excludeID int64) error {
	return validateReq(ctx, req,
		uniqueNameRule("name", req.Name, excludeID, msgNameExists, p.productRepo.ExistsByName),
		categoryExistsRule(req.CategoryID, p.categoryRepo),
		priceRule(req.Price),
		stockRule(req.Stock),
	)
}

// mapWriteErr переводит ошибки ограничений БД в ошибки полей.
func (p *ProductUseCase) mapWriteErr(err error) error {
	switch {
	case errors.Is(err, e.ErrConflict):
		return e.NewFieldError(e.ErrConflict, "name", msgNameExists)
	case errors.Is(err, e.ErrNotFound):
		// категорию удалили между проверкой и вставкой
		return e.NewFieldError(e.ErrValidation, "category_id", msgCategoryNotFound)
	default:
		return err
	}
}
