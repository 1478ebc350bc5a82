package converter

import (
	"github.com/DRSN-tech/cashier-backend/internal/domain"
	"github.com/DRSN-tech/cashier-backend/internal/usecase"
)

// CategoryConverter преобразует сущности Category между domain и моделью PostgreSQL.
type CategoryConverter struct{}

func (CategoryConverter) ToEntity(model *CategoryModel) *domain.Category {
	return &domain.Category{
		ID:        model.ID,
		Name:      model.Name,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

func (c CategoryConverter) ToArrEntity(models []CategoryModel) []domain.Category {
	result := make([]domain.Category, 0, len(models))
	for i := range models {
		result = append(result, *c.ToEntity(&models[i]))
	}
	return result
}

// ProductConverter преобразует сущности Product между domain и моделью PostgreSQL.
type ProductConverter struct{}

func (ProductConverter) ToEntity(model *ProductModel) *domain.Product {
	return &domain.Product{
		ID:         model.ID,
		Name:       model.Name,
		CategoryID: model.CategoryID,
		Price:      model.Price,
		Stock:      model.Stock,
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}
}

func (c ProductConverter) ToArrEntity(models []ProductModel) []domain.Product {
	result := make([]domain.Product, 0, len(models))
	for i := range models {
		result = append(result, *c.ToEntity(&models[i]))
	}
	return result
}

func (ProductConverter) ToArrInfo(models []ProductInfoModel) []domain.ProductInfo {
	result := make([]domain.ProductInfo, 0, len(models))
	for _, m := range models {
		result = append(result, domain.NewProductInfo(m.ID, m.Name, m.CategoryName, m.Price))
	}
	return result
}

// AccountConverter преобразует сущности Account между domain и моделью PostgreSQL.
type AccountConverter struct{}

func (AccountConverter) ToEntity(model *AccountModel) *domain.Account {
	return &domain.Account{
		ID:           model.ID,
		Username:     model.Username,
		PasswordHash: model.PasswordHash,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}

// OrderConverter собирает заказ из заголовка и строк.
type OrderConverter struct{}

func (OrderConverter) ToEntity(model *OrderModel, lines []OrderLineModel) *domain.Order {
	order := &domain.Order{
		ID:            model.ID,
		BuyerID:       model.BuyerID,
		BuyerUsername: model.BuyerUsername,
		TotalAmount:   model.TotalAmount,
		OrderDate:     model.OrderDate,
		Lines:         make([]domain.OrderLine, 0, len(lines)),
	}

	for _, l := range lines {
		order.Lines = append(order.Lines, domain.OrderLine{
			ID:        l.ID,
			OrderID:   l.OrderID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			Subtotal:  l.Subtotal,
		})
	}

	return order
}

// OutboxEventConverter преобразует сущности OutboxEvent между usecase и моделью PostgreSQL.
type OutboxEventConverter struct{}

func (OutboxEventConverter) ToModel(entity *usecase.OutboxEvent) *OutboxEventModel {
	return &OutboxEventModel{
		ID:          entity.ID,
		EventID:     entity.EventID,
		EventType:   string(entity.EventType),
		AggregateID: entity.AggregateID,
		Payload:     entity.Payload,
		Status:      string(entity.Status),
		Attempts:    entity.Attempts,
		LastError:   entity.LastError,
		CreatedAt:   entity.CreatedAt,
		ProcessedAt: entity.ProcessedAt,
	}
}

func (OutboxEventConverter) ToEntity(model *OutboxEventModel) *usecase.OutboxEvent {
	return &usecase.OutboxEvent{
		ID:          model.ID,
		EventID:     model.EventID,
		EventType:   usecase.OutboxEventType(model.EventType),
		AggregateID: model.AggregateID,
		Payload:     model.Payload,
		Status:      usecase.OutboxStatus(model.Status),
		Attempts:    model.Attempts,
		LastError:   model.LastError,
		CreatedAt:   model.CreatedAt,
		ProcessedAt: model.ProcessedAt,
	}
}

func (c OutboxEventConverter) ToArrEntity(models []OutboxEventModel) []*usecase.OutboxEvent {
	result := make([]*usecase.OutboxEvent, 0, len(models))
	for i := range models {
		result = append(result, c.ToEntity(&models[i]))
	}
	return result
}
