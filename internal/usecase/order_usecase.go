package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/DRSN-tech/cashier-backend/internal/domain"
	"github.com/DRSN-tech/cashier-backend/pkg/e"
	"github.com/DRSN-tech/cashier-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderUseCase проводит заказы и отдаёт их историю.
type OrderUseCase struct {
	txManager      TxManager
	orderRepo      OrderRepository
	productRepo    ProductRepository
	accountRepo    AccountRepository
	outboxRepo     OutboxRepository
	productInfo    ProductUC
	logger         logger.Logger
	postingTimeout time.Duration
}

func NewOrderUC(
	txManager TxManager,
	orderRepo OrderRepository,
	productRepo ProductRepository,
	accountRepo AccountRepository,
	outboxRepo OutboxRepository,
	productInfo ProductUC,
	logger logger.Logger,
	postingTimeout time.Duration,
) *OrderUseCase {
	return &OrderUseCase{
		txManager:      txManager,
		orderRepo:      orderRepo,
		productRepo:    productRepo,
		accountRepo:    accountRepo,
		outboxRepo:     outboxRepo,
		productInfo:    productInfo,
		logger:         logger,
		postingTimeout: postingTimeout,
	}
}

// stagedOrder: строки заказа и списания остатков, подготовленные до записи.
type stagedOrder struct {
	lines      []domain.OrderLine
	total      decimal.Decimal
	decrements map[int64]int64
}

// PostOrder проводит заказ: проверяет остатки, считает суммы, списывает товар
// и сохраняет заказ со строками в одной транзакции.
// Отмена ctx клиентом не прерывает проведение: оно ограничено только postingTimeout.
func (o *OrderUseCase) PostOrder(ctx context.Context, req *PostOrderReq) (*domain.Order, error) {
	const op = "OrderUseCase.PostOrder"

	if err := validateReq(ctx, req, orderLinesRule(req.Products)); err != nil {
		return nil, e.Wrap(op, err)
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.postingTimeout)
	defer cancel()

	var order *domain.Order
	err := o.txManager.Do(ctx, func(ctx context.Context) error {
		buyer, err := o.accountRepo.GetByID(ctx, req.BuyerID)
		if err != nil {
			if errors.Is(err, e.ErrNotFound) {
				return notFound("buyer_id", msgUserNotFound)
			}
			return err
		}

		locked, err := o.productRepo.LockForUpdate(ctx, productIDs(req.Products))
		if err != nil {
			return err
		}

		staged, err := stageOrder(req.Products, locked)
		if err != nil {
			return err
		}

		order, err = o.orderRepo.Create(ctx, domain.NewOrder(buyer.ID, staged.total, staged.lines))
		if err != nil {
			return err
		}
		order.BuyerUsername = buyer.Username

		// Одно списание на товар, в порядке блокировки
		ids := make([]int64, 0, len(staged.decrements))
		for id := range staged.decrements {
			ids = append(ids, id)
		}
		slices.Sort(ids)

		for _, id := range ids {
			if err := o.productRepo.DecrementStock(ctx, id, staged.decrements[id]); err != nil {
				// Под FOR UPDATE остаток уже проверен в stageOrder, ветка срабатывает только
				// если строку изменили в обход блокировки. Stock здесь до списаний этого заказа.
				if errors.Is(err, e.ErrInsufficientStock) {
					return e.NewFieldError(e.ErrInsufficientStock, "products",
						fmt.Sprintf(msgLineNoStockFmt, id, locked[id].Stock))
				}
				return err
			}
		}

		return o.publishPosted(ctx, order)
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	o.logger.Infof("order %d posted: buyer_id=%d, lines=%d, total=%s",
		order.ID, order.BuyerID, len(order.Lines), order.TotalAmount.StringFixed(2))

	return order, nil
}

func (o *OrderUseCase) ListOrders(ctx context.Context) ([]domain.Order, error) {
	const op = "OrderUseCase.ListOrders"

	orders, err := o.orderRepo.List(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return orders, nil
}

// GetOrder возвращает заказ; строки дополняются информацией о товарах.
func (o *OrderUseCase) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	const op = "OrderUseCase.GetOrder"

	order, err := o.orderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, e.Wrap(op, notFound("id", msgOrderNotFound))
		}
		return nil, e.Wrap(op, err)
	}

	if len(order.Lines) == 0 {
		return order, nil
	}

	ids := make([]int64, 0, len(order.Lines))
	for _, l := range order.Lines {
		if !slices.Contains(ids, l.ProductID) {
			ids = append(ids, l.ProductID)
		}
	}

	info, err := o.productInfo.GetProductsInfo(ctx, NewGetProductsReq(ids))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	byID := make(map[int64]domain.ProductInfo, len(info.Products))
	for _, p := range info.Products {
		byID[p.ID] = p
	}

	for i := range order.Lines {
		if p, ok := byID[order.Lines[i].ProductID]; ok {
			order.Lines[i].Product = &p
		}
	}

	return order, nil
}

// DeleteOrder удаляет заказ вместе со строками. Остатки товаров не восстанавливаются.
func (o *OrderUseCase) DeleteOrder(ctx context.Context, id int64) error {
	const op = "OrderUseCase.DeleteOrder"

	if err := o.orderRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return e.Wrap(op, notFound("id", msgOrderNotFound))
		}
		return e.Wrap(op, err)
	}

	return nil
}

func (o *OrderUseCase) publishPosted(ctx context.Context, order *domain.Order) error {
	payload, err := json.Marshal(NewOrderPostedPayload(order))
	if err != nil {
		return err
	}

	_, err = o.outboxRepo.Create(ctx, NewOutboxEvent(uuid.NewString(), OrderPosted, order.ID, payload))
	return err
}

// stageOrder проверяет строки в порядке запроса против заблокированных остатков.
// Повторяющийся товар проверяется по остатку, уменьшенному предыдущими строками.
func stageOrder(lines []OrderLineReq, locked map[int64]domain.Product) (*stagedOrder, error) {
	staged := &stagedOrder{
		lines:      make([]domain.OrderLine, 0, len(lines)),
		total:      decimal.Zero,
		decrements: make(map[int64]int64, len(locked)),
	}

	for _, l := range lines {
		product, ok := locked[l.ProductID]
		if !ok {
			return nil, notFound("products", fmt.Sprintf(msgLineNotFoundFmt, l.ProductID))
		}

		remaining := product.Stock - staged.decrements[l.ProductID]
		if l.Quantity > remaining {
			return nil, e.NewFieldError(e.ErrInsufficientStock, "products",
				fmt.Sprintf(msgLineNoStockFmt, l.ProductID, remaining))
		}

		subtotal := product.Price.Mul(decimal.NewFromInt(l.Quantity))
		staged.total = staged.total.Add(subtotal)
		if staged.total.GreaterThanOrEqual(maxMoney) {
			return nil, e.NewValidationError(e.FieldError{Field: "products", Message: msgTotalTooLarge})
		}

		staged.decrements[l.ProductID] += l.Quantity
		staged.lines = append(staged.lines, domain.NewOrderLine(l.ProductID, l.Quantity, subtotal))
	}

	return staged, nil
}

func productIDs(lines []OrderLineReq) []int64 {
	ids := make([]int64, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	slices.Sort(ids)

	return slices.Compact(ids)
}
