// Команда account создаёт учётную запись кассира.
//
//	go run ./cmd/account -username cashier
//
// Пароль читается из CASHIER_PASSWORD, чтобы не попадать в историю shell.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"time"

	config "github.com/DRSN-tech/cashier-backend/internal/cfg"
	"github.com/DRSN-tech/cashier-backend/internal/infrastructure/password"
	"github.com/DRSN-tech/cashier-backend/internal/repository/pgdb"
	pgdbConv "github.com/DRSN-tech/cashier-backend/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/cashier-backend/internal/usecase"
	"github.com/DRSN-tech/cashier-backend/pkg/e"
	"github.com/DRSN-tech/cashier-backend/pkg/logger"
	"github.com/DRSN-tech/cashier-backend/pkg/postgres"
	"github.com/joho/godotenv"
)

func main() {
	os.Exit(run())
}

func run() int {
	username := flag.String("username", "", "login of the new cashier")
	bcryptCost := flag.Int("cost", 0, "bcrypt cost (0 = default)")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "failed to read .env: %v\n", err)
	}
	log := logger.NewSlogLogger()

	dbCfg, err := config.LoadDBCfg(log)
	if err != nil {
		log.Errorf(err, "failed to load database config")
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := postgres.Connect(ctx, dbCfg)
	if err != nil {
		log.Errorf(err, "failed to connect to database")
		return 1
	}
	defer db.Close()

	if err := db.RunMigrations(log, dbCfg.MigrationsURL); err != nil {
		log.Errorf(err, "failed to run migrations")
		return 1
	}

	// токены этой команде не нужны
	authUC := usecase.NewAuthUC(
		pgdb.NewAccountRepo(db.Pool, pgdbConv.AccountConverter{}),
		password.NewHasher(*bcryptCost),
		nil,
		log,
	)

	account, err := authUC.CreateAccount(ctx, &usecase.CreateAccountReq{
		Username: *username,
		Password: os.Getenv("CASHIER_PASSWORD"),
	})
	if err != nil {
		var verr *e.ValidationError
		if errors.As(err, &verr) {
			for _, f := range verr.Fields {
				fmt.Fprintf(os.Stderr, "%s: %s\n", f.Field, f.Message)
			}
			return 2
		}
		log.Errorf(err, "failed to create account")
		return 1
	}

	fmt.Printf("account created: id=%d username=%s\n", account.ID, account.Username)
	return 0
}
