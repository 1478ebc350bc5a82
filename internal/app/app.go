package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/DRSN-tech/cashier-backend/internal/cfg"
	v1Grpc "github.com/DRSN-tech/cashier-backend/internal/delivery/v1/grpc"
	v1Http "github.com/DRSN-tech/cashier-backend/internal/delivery/v1/http"
	"github.com/DRSN-tech/cashier-backend/internal/infrastructure/kafka"
	"github.com/DRSN-tech/cashier-backend/internal/infrastructure/outbox"
	"github.com/DRSN-tech/cashier-backend/internal/infrastructure/password"
	"github.com/DRSN-tech/cashier-backend/internal/infrastructure/token"
	s3Repo "github.com/DRSN-tech/cashier-backend/internal/repository/minio"
	"github.com/DRSN-tech/cashier-backend/internal/repository/pgdb"
	pgdbConv "github.com/DRSN-tech/cashier-backend/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/cashier-backend/internal/repository/redis"
	redisConv "github.com/DRSN-tech/cashier-backend/internal/repository/redis/converter"
	"github.com/DRSN-tech/cashier-backend/internal/usecase"
	"github.com/DRSN-tech/cashier-backend/pkg/closer"
	"github.com/DRSN-tech/cashier-backend/pkg/clients"
	"github.com/DRSN-tech/cashier-backend/pkg/e"
	"github.com/DRSN-tech/cashier-backend/pkg/logger"
	"github.com/DRSN-tech/cashier-backend/pkg/postgres"
	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2/manager"
	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
)

const (
	initTimeout     = 10 * time.Second
	shutdownTimeout = 10 * time.Second
)

// App собирает зависимости кассы и управляет их жизненным циклом.
type App struct {
	cfg    *config.Config
	logger logger.Logger
	closer *closer.Closer

	db      *postgres.PgDatabase
	httpSrv *v1Http.Server
	grpcSrv *v1Grpc.GRPCServer
	worker  *outbox.Worker
}

func NewApp(cfg *config.Config, logger logger.Logger) (*App, error) {
	a := &App{
		cfg:    cfg,
		logger: logger,
		closer: closer.NewCloser(0),
	}

	if err := a.init(); err != nil {
		// уже открытые ресурсы закрываем сразу
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if cerr := a.closer.Close(ctx); cerr != nil {
			logger.Warnf("%v", cerr)
		}
		return nil, err
	}

	return a, nil
}

func (a *App) init() error {
	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()

	db, err := initPGDB(ctx, a.logger, a.cfg.Db)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	a.db = db
	a.closer.AddSimple("postgres", db.Close)

	redisClient := clients.NewRedisClient(a.cfg.Redis)
	a.closer.Add("redis", func(context.Context) error { return redisClient.Close() })
	if err := redisClient.Ping(ctx); err != nil {
		// кэш необязателен: GetProductsInfo читает из БД при ошибках Redis
		a.logger.Warnf("redis is unavailable, product cache disabled until it recovers: %v", err)
	}

	categoryRepo := pgdb.NewCategoryRepo(db.Pool, pgdbConv.CategoryConverter{})
	productRepo := pgdb.NewProductRepo(db.Pool, pgdbConv.ProductConverter{})
	accountRepo := pgdb.NewAccountRepo(db.Pool, pgdbConv.AccountConverter{})
	orderRepo := pgdb.NewOrderRepo(db.Pool, pgdbConv.OrderConverter{})
	outboxRepo := pgdb.NewOutboxEventRepo(db.Pool, pgdbConv.OutboxEventConverter{})
	cacheRepo := redis.NewCacheRepo(redisClient, redisConv.ProductInfoConverter{}, a.cfg.Redis, a.logger)

	txManager := manager.Must(trmpgx.NewDefaultFactory(db.Pool))

	productUC := usecase.NewProductUC(productRepo, categoryRepo, cacheRepo, a.logger)
	a.closer.Add("product cache fills", productUC.Close)
	categoryUC := usecase.NewCategoryUC(categoryRepo, productRepo, cacheRepo, a.logger)
	orderUC := usecase.NewOrderUC(
		txManager,
		orderRepo,
		productRepo,
		accountRepo,
		outboxRepo,
		productUC,
		a.logger,
		a.cfg.Order.PostingTimeout,
	)
	authUC := usecase.NewAuthUC(accountRepo, password.NewHasher(0), token.NewManager(a.cfg.Auth), a.logger)

	sinks, err := a.initSinks(ctx)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	a.worker = outbox.NewWorker(
		outboxRepo,
		sinks,
		outbox.NewPgListener(db.Dsn, pgdb.OutboxChannel),
		a.cfg.Outbox,
		a.logger,
	)

	a.grpcSrv = v1Grpc.NewGRPCServer(a.cfg.Grpc, a.logger)
	a.grpcSrv.RegisterServices(productUC)
	a.grpcSrv.SetServing(true)

	r := chi.NewRouter()
	router := v1Http.NewRouter(r, a.logger, a.cfg.Http.RequestTimeout)
	router.Init(authUC, categoryUC, productUC, orderUC, db.Ping)
	a.httpSrv = v1Http.NewServer(r, a.cfg.Http)

	return nil
}

// initSinks подключает получателей outbox, заданных в конфиге.
func (a *App) initSinks(ctx context.Context) ([]usecase.EventSink, error) {
	var sinks []usecase.EventSink

	if a.cfg.Kafka != nil {
		producer := kafka.NewProducer(a.logger, a.cfg.Kafka)
		a.closer.Add("kafka producer", func(context.Context) error { return producer.Close() })
		if err := producer.EnsureTopic(initTimeout); err != nil {
			// топик может создаваться брокером автоматически
			a.logger.Warnf("failed to ensure kafka topic: %v", err)
		}
		sinks = append(sinks, producer)
	}

	if a.cfg.Minio != nil {
		minioClient, err := clients.NewMinIOClient(a.cfg.Minio)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		if err := clients.EnsureBucket(ctx, minioClient, a.cfg.Minio.BucketName); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		sinks = append(sinks, s3Repo.NewReceiptRepo(minioClient, a.cfg.Minio))
	}

	if len(sinks) == 0 {
		a.logger.Warnf("no outbox sinks configured: order events will be marked processed without delivery")
	}

	return sinks, nil
}

// Run запускает серверы и воркер и блокируется до сигнала или фатальной ошибки.
func (a *App) Run() error {
	runCtx, stopRun := context.WithCancel(context.Background())
	defer stopRun()

	a.worker.Start(runCtx)
	a.closer.Add("outbox worker", a.worker.Stop)

	errCh := make(chan error, 2)
	go func() {
		a.logger.Infof("gRPC server starting on %s:%s", a.cfg.Grpc.NetworkMode, a.cfg.Grpc.Port)
		if err := a.grpcSrv.Start(); err != nil {
			errCh <- e.Wrap("gRPC server", err)
		}
	}()
	a.closer.Add("grpc server", a.grpcSrv.Stop)

	go func() {
		a.logger.Infof("HTTP server started on %s", a.httpSrv.Addr())
		if err := a.httpSrv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- e.Wrap("HTTP server", err)
		}
	}()
	a.closer.Add("http server", a.httpSrv.Stop)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	var appErr error
	select {
	case appErr = <-errCh:
		a.logger.Errorf(appErr, "server fatal error")
	case sig := <-shutdown:
		a.logger.Infof("received %s, stopping gracefully...", sig)
	}

	a.grpcSrv.SetServing(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.closer.Close(shutdownCtx); err != nil {
		a.logger.Errorf(err, "shutdown")
		appErr = errors.Join(appErr, err)
	}

	a.logger.Infof("application shutdown complete")
	return appErr
}

func initPGDB(ctx context.Context, logger logger.Logger, cfg *config.PGDBCfg) (*postgres.PgDatabase, error) {
	db, err := postgres.Connect(ctx, cfg)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.RunMigrations(logger, cfg.MigrationsURL); err != nil {
		db.Close()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return db, nil
}
