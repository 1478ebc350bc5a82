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

// CategoryRepo реализует репозиторий категорий поверх PostgreSQL.
type CategoryRepo struct {
	pool *pgxpool.Pool
	conv converter.CategoryConverter
}

func NewCategoryRepo(pool *pgxpool.Pool, conv converter.CategoryConverter) *CategoryRepo {
	return &CategoryRepo{pool: pool, conv: conv}
}

const categoryColumns = `id, name, created_at, updated_at`

// Create создаёт категорию. Дубликат имени возвращает e.ErrConflict.
func (c *CategoryRepo) Create(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	query := `
		INSERT INTO categories (name) VALUES ($1)
		RETURNING ` + categoryColumns

	var model converter.CategoryModel
	if err := tr.Conn(ctx, c.pool).QueryRow(ctx, query, category.Name).
		Scan(&model.ID, &model.Name, &model.CreatedAt, &model.UpdatedAt); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), mapErr(err))
	}

	return c.conv.ToEntity(&model), nil
}

func (c *CategoryRepo) Update(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	query := `
		UPDATE categories SET name = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + categoryColumns

	var model converter.CategoryModel
	if err := tr.Conn(ctx, c.pool).QueryRow(ctx, query, category.ID, category.Name).
		Scan(&model.ID, &model.Name, &model.CreatedAt, &model.UpdatedAt); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), mapErr(err))
	}

	return c.conv.ToEntity(&model), nil
}

// Delete удаляет категорию; товары и строки заказов с ними удаляются каскадно.
func (c *CategoryRepo) Delete(ctx context.Context, id int64) error {
	tag, err := tr.Conn(ctx, c.pool).Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), mapErr(err))
	}

	if tag.RowsAffected() == 0 {
		return e.Wrap(whereami.WhereAmI(), e.ErrNotFound)
	}

	return nil
}

func (c *CategoryRepo) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`

	var model converter.CategoryModel
	if err := tr.Conn(ctx, c.pool).QueryRow(ctx, query, id).
		Scan(&model.ID, &model.Name, &model.CreatedAt, &model.UpdatedAt); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), mapErr(err))
	}

	return c.conv.ToEntity(&model), nil
}

func (c *CategoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories ORDER BY id`

	rows, err := tr.Conn(ctx, c.pool).Query(ctx, query)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	models, err := pgx.CollectRows(rows, pgx.RowToStructByName[converter.CategoryModel])
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return c.conv.ToArrEntity(models), nil
}

func (c *CategoryRepo) ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM categories WHERE name = $1 AND id <> $2)`

	var exists bool
	if err := tr.Conn(ctx, c.pool).QueryRow(ctx, query, name, excludeID).Scan(&exists); err != nil {
		return false, e.Wrap(whereami.WhereAmI(), err)
	}

	return exists, nil
}
