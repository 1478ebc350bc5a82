package converter

import "github.com/DRSN-tech/cashier-backend/internal/domain"

// ProductInfoConverter преобразует ProductInfo в модель кэша и обратно.
type ProductInfoConverter struct{}

func (ProductInfoConverter) ToRedisModel(entity *domain.ProductInfo) *ProductInfoRedisModel {
	return &ProductInfoRedisModel{
		ID:           entity.ID,
		Name:         entity.Name,
		CategoryName: entity.CategoryName,
		Price:        entity.Price,
	}
}

func (ProductInfoConverter) ToEntity(model *ProductInfoRedisModel) *domain.ProductInfo {
	info := domain.NewProductInfo(model.ID, model.Name, model.CategoryName, model.Price)
	return &info
}

func (c ProductInfoConverter) ToArrRedisModel(entities []domain.ProductInfo) []ProductInfoRedisModel {
	result := make([]ProductInfoRedisModel, 0, len(entities))
	for i := range entities {
		result = append(result, *c.ToRedisModel(&entities[i]))
	}
	return result
}
