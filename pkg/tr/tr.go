package tr

import (
	"context"

	"github.com/DRSN-tech/cashier-backend/pkg/e"
	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
)

// Conn возвращает транзакцию из контекста (если её открыл менеджер транзакций) или сам пул.
func Conn(ctx context.Context, db trmpgx.Tr) trmpgx.Tr {
	return trmpgx.DefaultCtxGetter.DefaultTrOrDB(ctx, db)
}

// TxFromCtx извлекает открытую менеджером транзакцию из контекста.
// Нужен для запросов, которые бессмысленны вне транзакции (SELECT ... FOR UPDATE).
func TxFromCtx(ctx context.Context) (trmpgx.Tr, error) {
	tx := trmpgx.DefaultCtxGetter.DefaultTrOrDB(ctx, nil)
	if tx == nil {
		return nil, e.ErrTransactionNotFound
	}

	return tx, nil
}
