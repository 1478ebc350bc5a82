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

// AccountRepo хранит учётные записи кассиров.
type AccountRepo struct {
	pool *pgxpool.Pool
	conv converter.AccountConverter
}

func NewAccountRepo(pool *pgxpool.Pool, conv converter.AccountConverter) *AccountRepo {
	return &AccountRepo{pool: pool, conv: conv}
}

const accountColumns = `id, username, password_hash, created_at, updated_at`

func (a *AccountRepo) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	query := `
		INSERT INTO accounts (username, password_hash) VALUES ($1, $2)
		RETURNING ` + accountColumns

	rows, err := tr.Conn(ctx, a.pool).Query(ctx, query, account.Username, account.PasswordHash)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), mapErr(err))
	}

	return a.collectOne(rows)
}

func (a *AccountRepo) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	rows, err := tr.Conn(ctx, a.pool).Query(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return a.collectOne(rows)
}

func (a *AccountRepo) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	rows, err := tr.Conn(ctx, a.pool).Query(ctx, `SELECT `+accountColumns+` FROM accounts WHERE username = $1`, username)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return a.collectOne(rows)
}

func (a *AccountRepo) collectOne(rows pgx.Rows) (*domain.Account, error) {
	model, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[converter.AccountModel])
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), mapErr(err))
	}

	return a.conv.ToEntity(&model), nil
}
