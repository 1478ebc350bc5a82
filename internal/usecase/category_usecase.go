package usecase

import (
	"context"
	"errors"

	"github.com/DRSN-tech/cashier-backend/internal/domain"
	"github.com/DRSN-tech/cashier-backend/pkg/e"
	"github.com/DRSN-tech/cashier-backend/pkg/logger"
)

// CategoryUseCase реализует управление категориями каталога.
type CategoryUseCase struct {
	categoryRepo CategoryRepository
	productRepo  ProductRepository
	cacheRepo    CacheRepository
	logger       logger.Logger
}

func NewCategoryUC(
	categoryRepo CategoryRepository,
	productRepo ProductRepository,
	cacheRepo CacheRepository,
	logger logger.Logger,
) *CategoryUseCase {
	return &CategoryUseCase{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		cacheRepo:    cacheRepo,
		logger:       logger,
	}
}

func (c *CategoryUseCase) ListCategories(ctx context.Context) ([]domain.Category, error) {
	const op = "CategoryUseCase.ListCategories"

	categories, err := c.categoryRepo.List(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return categories, nil
}

func (c *CategoryUseCase) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	const op = "CategoryUseCase.GetCategory"

	category, err := c.getCategory(ctx, id)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return category, nil
}

func (c *CategoryUseCase) CreateCategory(ctx context.Context, req *CategoryReq) (*domain.Category, error) {
	const op = "CategoryUseCase.CreateCategory"

	err := validateReq(ctx, req,
		uniqueNameRule("name", req.Name, 0, msgNameExists, c.categoryRepo.ExistsByName),
	)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	category, err := c.categoryRepo.Create(ctx, domain.NewCategory(req.Name))
	if err != nil {
		return nil, e.Wrap(op, nameConflict(err, "name", msgNameExists))
	}

	return category, nil
}

func (c *CategoryUseCase) UpdateCategory(ctx context.Context, id int64, req *CategoryReq) (*domain.Category, error) {
	const op = "CategoryUseCase.UpdateCategory"

	category, err := c.getCategory(ctx, id)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	err = validateReq(ctx, req,
		uniqueNameRule("name", req.Name, id, msgNameExists, c.categoryRepo.ExistsByName),
	)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	category.Name = req.Name
	updated, err := c.categoryRepo.Update(ctx, category)
	if err != nil {
		return nil, e.Wrap(op, nameConflict(err, "name", msgNameExists))
	}

	// В кэше хранится имя категории товара
	c.invalidateCategoryProducts(ctx, id)

	return updated, nil
}

// DeleteCategory удаляет категорию. Товары категории и их строки заказов удаляются каскадно в БД.
func (c *CategoryUseCase) DeleteCategory(ctx context.Context, id int64) error {
	const op = "CategoryUseCase.DeleteCategory"

	if _, err := c.getCategory(ctx, id); err != nil {
		return e.Wrap(op, err)
	}

	ids, err := c.productRepo.ListIDsByCategory(ctx, id)
	if err != nil {
		return e.Wrap(op, err)
	}

	if err := c.categoryRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return e.Wrap(op, notFound("id", msgCategoryNotFound))
		}
		return e.Wrap(op, err)
	}

	if len(ids) > 0 {
		if err := c.cacheRepo.DeleteProducts(ctx, ids); err != nil {
			c.logger.Warnf("Failed to delete products: %v", e.Wrap(op, err))
		}
	}

	return nil
}

func (c *CategoryUseCase) getCategory(ctx context.Context, id int64) (*domain.Category, error) {
	category, err := c.categoryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, notFound("id", msgCategoryNotFound)
		}
		return nil, err
	}

	return category, nil
}

func (c *CategoryUseCase) invalidateCategoryProducts(ctx context.Context, categoryID int64) {
	const op = "CategoryUseCase.invalidateCategoryProducts"

	ids, err := c.productRepo.ListIDsByCategory(ctx, categoryID)
	if err != nil {
		c.logger.Warnf("Failed to list category products: %v", e.Wrap(op, err))
		return
	}

	if len(ids) == 0 {
		return
	}

	if err := c.cacheRepo.DeleteProducts(ctx, ids); err != nil {
		c.logger.Warnf("Failed to delete products: %v", e.Wrap(op, err))
	}
}
