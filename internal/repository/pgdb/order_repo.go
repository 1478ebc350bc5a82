package pgdb

import (
	"context"

	"github.com/DRSN-tech/cashier-backend/internal/domain"
	"github.com/DRSN-tech/cashier-backend/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/cashier-backend/pkg/e"
	"github.com/DRSN-tech/cashier-backend/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// OrderRepo хранит заказы (orders) и их строки (order_lines).
type OrderRepo struct {
	pool *pgxpool.Pool
	conv converter.OrderConverter
}

func NewOrderRepo(pool *pgxpool.Pool, conv converter.OrderConverter) *OrderRepo {
	return &OrderRepo{pool: pool, conv: conv}
}

const orderSelect = `
	SELECT o.id, o.buyer_id, COALESCE(a.username, '') AS buyer_username, o.total_amount, o.order_date
	FROM orders o
	LEFT JOIN accounts a ON a.id = o.buyer_id
`

// Create вставляет заголовок заказа и все строки одним batch-запросом.
// Вызывается только внутри транзакции проведения.
func (o *OrderRepo) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := tx.QueryRow(ctx,
		`INSERT INTO orders (buyer_id, total_amount) VALUES ($1, $2) RETURNING id, order_date`,
		order.BuyerID, order.TotalAmount,
	).Scan(&order.ID, &order.OrderDate); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), mapErr(err))
	}

	batch := &pgx.Batch{}
	for i := range order.Lines {
		line := &order.Lines[i]
		line.OrderID = order.ID
		batch.Queue(
			`INSERT INTO order_lines (order_id, product_id, quantity, subtotal) VALUES ($1, $2, $3, $4) RETURNING id`,
			line.OrderID, line.ProductID, line.Quantity, line.Subtotal,
		).QueryRow(func(row pgx.Row) error {
			return row.Scan(&line.ID)
		})
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), mapErr(err))
	}

	return order, nil
}

func (o *OrderRepo) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	conn := tr.Conn(ctx, o.pool)

	rows, err := conn.Query(ctx, orderSelect+` WHERE o.id = $1`, id)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	model, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[converter.OrderModel])
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), mapErr(err))
	}

	lines, err := o.linesByOrder(ctx, []int64{id})
	if err != nil {
		return nil, err
	}

	return o.conv.ToEntity(&model, lines[id]), nil
}

// List возвращает все заказы с именем покупателя и строками (два запроса вместо N+1).
func (o *OrderRepo) List(ctx context.Context) ([]domain.Order, error) {
	rows, err := tr.Conn(ctx, o.pool).Query(ctx, orderSelect+` ORDER BY o.id`)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	models, err := pgx.CollectRows(rows, pgx.RowToStructByName[converter.OrderModel])
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	result := make([]domain.Order, 0, len(models))
	if len(models) == 0 {
		return result, nil
	}

	ids := make([]int64, 0, len(models))
	for _, m := range models {
		ids = append(ids, m.ID)
	}

	lines, err := o.linesByOrder(ctx, ids)
	if err != nil {
		return nil, err
	}

	for i := range models {
		result = append(result, *o.conv.ToEntity(&models[i], lines[models[i].ID]))
	}

	return result, nil
}

// Delete удаляет заказ, строки удаляются каскадно. Остатки не возвращаются.
func (o *OrderRepo) Delete(ctx context.Context, id int64) error {
	tag, err := tr.Conn(ctx, o.pool).Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if tag.RowsAffected() == 0 {
		return e.Wrap(whereami.WhereAmI(), e.ErrNotFound)
	}

	return nil
}

func (o *OrderRepo) linesByOrder(ctx context.Context, orderIDs []int64) (map[int64][]converter.OrderLineModel, error) {
	query := `
		SELECT id, order_id, product_id, quantity, subtotal
		FROM order_lines
		WHERE order_id = ANY($1)
		ORDER BY id
	`

	rows, err := tr.Conn(ctx, o.pool).Query(ctx, query, orderIDs)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	models, err := pgx.CollectRows(rows, pgx.RowToStructByName[converter.OrderLineModel])
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	result := make(map[int64][]converter.OrderLineModel, len(orderIDs))
	for _, m := range models {
		result[m.OrderID] = append(result[m.OrderID], m)
	}

	return result, nil
}
