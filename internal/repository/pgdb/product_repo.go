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

// ProductRepo реализует репозиторий продуктов поверх PostgreSQL.
type ProductRepo struct {
	pool *pgxpool.Pool
	conv converter.ProductConverter
}

func NewProductRepo(pool *pgxpool.Pool, conv converter.ProductConverter) *ProductRepo {
	return &ProductRepo{
		pool: pool,
		conv: conv,
	}
}

const productColumns = `id, name, category_id, price, stock, created_at, updated_at`

func (p *ProductRepo) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	// VALUES ($1, $2, $3, $4) name, category_id, price, stock
	query := `
		INSERT INTO products (name, category_id, price, stock)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + productColumns

	rows, err := tr.Conn(ctx, p.pool).Query(ctx, query, product.Name, product.CategoryID, product.Price, product.Stock)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), mapErr(err))
	}

	return p.collectOne(rows)
}

func (p *ProductRepo) Update(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	query := `
		UPDATE products
		SET name = $2, category_id = $3, price = $4, stock = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + productColumns

	rows, err := tr.Conn(ctx, p.pool).Query(ctx, query,
		product.ID, product.Name, product.CategoryID, product.Price, product.Stock)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), mapErr(err))
	}

	return p.collectOne(rows)
}

// Delete удаляет товар; строки заказов с ним удаляются каскадно.
func (p *ProductRepo) Delete(ctx context.Context, id int64) error {
	tag, err := tr.Conn(ctx, p.pool).Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), mapErr(err))
	}

	if tag.RowsAffected() == 0 {
		return e.Wrap(whereami.WhereAmI(), e.ErrNotFound)
	}

	return nil
}

func (p *ProductRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	rows, err := tr.Conn(ctx, p.pool).Query(ctx, query, id)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.collectOne(rows)
}

func (p *ProductRepo) List(ctx context.Context) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY id`

	rows, err := tr.Conn(ctx, p.pool).Query(ctx, query)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	models, err := pgx.CollectRows(rows, pgx.RowToStructByName[converter.ProductModel])
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToArrEntity(models), nil
}

func (p *ProductRepo) ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM products WHERE name = $1 AND id <> $2)`

	var exists bool
	if err := tr.Conn(ctx, p.pool).QueryRow(ctx, query, name, excludeID).Scan(&exists); err != nil {
		return false, e.Wrap(whereami.WhereAmI(), err)
	}

	return exists, nil
}

func (p *ProductRepo) ListIDsByCategory(ctx context.Context, categoryID int64) ([]int64, error) {
	rows, err := tr.Conn(ctx, p.pool).Query(ctx, `SELECT id FROM products WHERE category_id = $1 ORDER BY id`, categoryID)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return ids, nil
}

// GetProductsInfo возвращает информацию о продуктах по их идентификаторам, включая название категории.
func (p *ProductRepo) GetProductsInfo(ctx context.Context, ids []int64) ([]domain.ProductInfo, error) {
	query := `
		SELECT pr.id, pr.name, cat.name AS category_name, pr.price
		FROM products pr
		JOIN categories cat ON pr.category_id = cat.id
		WHERE pr.id = ANY($1)
	`

	rows, err := tr.Conn(ctx, p.pool).Query(ctx, query, ids)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	models, err := pgx.CollectRows(rows, pgx.RowToStructByName[converter.ProductInfoModel])
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToArrInfo(models), nil
}

// LockForUpdate блокирует строки товаров до конца текущей транзакции.
// Порядок блокировки (по id) одинаков для всех проведений, поэтому они не взаимоблокируются.
func (p *ProductRepo) LockForUpdate(ctx context.Context, ids []int64) (map[int64]domain.Product, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1) ORDER BY id FOR UPDATE`

	rows, err := tx.Query(ctx, query, ids)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	models, err := pgx.CollectRows(rows, pgx.RowToStructByName[converter.ProductModel])
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	result := make(map[int64]domain.Product, len(models))
	for i := range models {
		result[models[i].ID] = *p.conv.ToEntity(&models[i])
	}

	return result, nil
}

// DecrementStock списывает остаток. Условие stock >= $2 не даёт уйти в минус даже без блокировки.
func (p *ProductRepo) DecrementStock(ctx context.Context, id int64, quantity int64) error {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		UPDATE products SET stock = stock - $2, updated_at = NOW()
		WHERE id = $1 AND stock >= $2
	`

	tag, err := tx.Exec(ctx, query, id, quantity)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if tag.RowsAffected() == 0 {
		return e.Wrap(whereami.WhereAmI(), e.ErrInsufficientStock)
	}

	return nil
}

func (p *ProductRepo) collectOne(rows pgx.Rows) (*domain.Product, error) {
	model, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[converter.ProductModel])
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), mapErr(err))
	}

	return p.conv.ToEntity(&model), nil
}
