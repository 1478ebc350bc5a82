package cfg

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/DRSN-tech/cashier-backend/pkg/e"
	"github.com/DRSN-tech/cashier-backend/pkg/logger"
	"github.com/jimlawless/whereami"
)

type Config struct {
	Http   *HTTPConfig
	Grpc   *GRPCConfig
	Db     *PGDBCfg
	Redis  *RedisCfg
	Auth   *AuthCfg
	Order  *OrderCfg
	Outbox *OutboxCfg
	Kafka  *KafkaCfg  // nil, если KAFKA_BROKERS не задан
	Minio  *MinIOCfg  // nil, если MINIO_ENDPOINT не задан
}

type KafkaCfg struct {
	Topic             string
	Brokers           []string
	NetworkMode       string
	Partitions        int
	ReplicationFactor int
}

type MinIOCfg struct {
	MinioEndpoint     string // Адрес конечной точки Minio
	BucketName        string // Бакет архива чеков
	MinioRootUser     string
	MinioRootPassword string
	MinioUseSSL       bool
}

type HTTPConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	// RequestTimeout: дедлайн обработки одного запроса (chi middleware.Timeout).
	RequestTimeout time.Duration
}

type GRPCConfig struct {
	Port        string
	NetworkMode string
}

type PGDBCfg struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string

	// MigrationsURL: источник golang-migrate, например file://db/migrations.
	MigrationsURL string
}

// DSN собирает строку подключения в формате key=value.
func (c *PGDBCfg) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host,
		c.Port,
		c.User,
		c.Password,
		c.DBName,
		c.SSLMode,
	)
}

type RedisCfg struct {
	Addr        string
	Password    string
	User        string
	DB          int
	MaxRetries  int
	DialTimeout time.Duration
	Timeout     time.Duration
	ProductTTL  time.Duration
}

type AuthCfg struct {
	AppKey   string
	TokenTTL time.Duration
	Issuer   string
}

type OrderCfg struct {
	PostingTimeout time.Duration
}

type OutboxCfg struct {
	PollInterval time.Duration
	Lease        time.Duration
	BatchSize    int
}

// Load безопасно загружает конфигурацию и возвращает ошибку в случае неудачи.
func Load(log logger.Logger) (*Config, error) {
	db, err := loadPGDBCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	http, err := loadHTTPConfig(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	redis, err := loadRedisCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	auth, err := LoadAuthCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	order, err := loadOrderCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	outbox, err := loadOutboxCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	minio, err := loadMinIOCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	kafka, err := loadKafkaCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &Config{
		Http:   http,
		Grpc:   loadGRPCConfig(),
		Db:     db,
		Redis:  redis,
		Auth:   auth,
		Order:  order,
		Outbox: outbox,
		Kafka:  kafka,
		Minio:  minio,
	}, nil
}

// LoadDBCfg загружает только настройки PostgreSQL (используется cmd/account).
func LoadDBCfg(log logger.Logger) (*PGDBCfg, error) {
	return loadPGDBCfg(log)
}

func loadKafkaCfg() (*KafkaCfg, error) {
	const (
		defaultPartitions        = 3
		defaultReplicationFactor = 1
		defaultNetworkMode       = "tcp"
		defaultTopic             = "orders.posted"
	)

	brokerStr := os.Getenv("KAFKA_BROKERS")
	if brokerStr == "" {
		return nil, nil
	}

	var brokers []string
	for _, b := range strings.Split(brokerStr, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}

	partitions, err := parseIntEnv("KAFKA_PARTITIONS", defaultPartitions)
	if err != nil {
		return nil, e.Wrap("KAFKA_PARTITIONS", err)
	}

	replicationFactor, err := parseIntEnv("REPLICATION_FACTOR", defaultReplicationFactor)
	if err != nil {
		return nil, e.Wrap("REPLICATION_FACTOR", err)
	}

	return &KafkaCfg{
		Brokers:           brokers,
		Topic:             getEnvOrDefault("KAFKA_TOPIC", defaultTopic),
		Partitions:        partitions,
		ReplicationFactor: replicationFactor,
		NetworkMode:       getEnvOrDefault("KAFKA_NETWORK_MODE", defaultNetworkMode),
	}, nil
}

func loadMinIOCfg(log logger.Logger) (*MinIOCfg, error) {
	const (
		defaultUseSSL = false
		defaultBucket = "receipts"
	)

	endpoint := getEnv("MINIO_ENDPOINT")
	if endpoint == "" {
		return nil, nil
	}

	useSSL, err := strconv.ParseBool(getEnvOrDefault("MINIO_USE_SSL", strconv.FormatBool(defaultUseSSL)))
	if err != nil {
		log.Errorf(err, "invalid MINIO_USE_SSL")
		return nil, err
	}

	return &MinIOCfg{
		MinioEndpoint:     endpoint,
		BucketName:        getEnvOrDefault("BUCKET_NAME", defaultBucket),
		MinioRootUser:     getEnv("MINIO_ROOT_USER"),
		MinioRootPassword: getEnv("MINIO_ROOT_PASSWORD"),
		MinioUseSSL:       useSSL,
	}, nil
}

func loadHTTPConfig(log logger.Logger) (*HTTPConfig, error) {
	const (
		defaultPort           = "8080"
		defaultReadTimeout    = 5 * time.Second
		defaultWriteTimeout   = 15 * time.Second
		defaultIdleTimeout    = 60 * time.Second
		defaultRequestTimeout = 12 * time.Second
	)

	port := getEnvOrDefault("HTTP_PORT", defaultPort)

	readTimeout, err := parseDurationEnv("HTTP_READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("HTTP_WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_WRITE_TIMEOUT")
		return nil, err
	}

	idleTimeout, err := parseDurationEnv("KEEP_ALIVE", defaultIdleTimeout)
	if err != nil {
		log.Errorf(err, "invalid KEEP_ALIVE")
		return nil, err
	}

	requestTimeout, err := parseDurationEnv("HTTP_REQUEST_TIMEOUT", defaultRequestTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_REQUEST_TIMEOUT")
		return nil, err
	}

	return &HTTPConfig{
		Port:           port,
		ReadTimeout:    readTimeout,
		WriteTimeout:   writeTimeout,
		IdleTimeout:    idleTimeout,
		RequestTimeout: requestTimeout,
	}, nil
}

func loadGRPCConfig() *GRPCConfig {
	const (
		defaultPort        = "8091"
		defaultNetworkMode = "tcp"
	)

	return &GRPCConfig{
		Port:        getEnvOrDefault("GRPC_PORT", defaultPort),
		NetworkMode: getEnvOrDefault("GRPC_NETWORK_MODE", defaultNetworkMode),
	}
}

func loadPGDBCfg(log logger.Logger) (*PGDBCfg, error) {
	const (
		defaultHost    = "localhost"
		defaultPort    = "5432"
		defaultSSLMode = "disable"
		defaultSource  = "file://db/migrations"
	)

	user, err := requireEnv(log, "POSTGRES_USER")
	if err != nil {
		return nil, err
	}

	password, err := requireEnv(log, "POSTGRES_PASSWORD")
	if err != nil {
		return nil, err
	}

	dbName, err := requireEnv(log, "POSTGRES_DB")
	if err != nil {
		return nil, err
	}

	return &PGDBCfg{
		Host:     getEnvOrDefault("POSTGRES_HOST", defaultHost),
		Port:     getEnvOrDefault("POSTGRES_PORT", defaultPort),
		User:     user,
		Password: password,
		DBName:   dbName,
		SSLMode:  getEnvOrDefault("SSL_MODE", defaultSSLMode),

		MigrationsURL: getEnvOrDefault("MIGRATIONS_URL", defaultSource),
	}, nil
}

func loadRedisCfg(log logger.Logger) (*RedisCfg, error) {
	const (
		defaultAddr         = "localhost:6379"
		defaultDB           = 0
		defaultMaxRetries   = 3
		defaultDialTimeout  = 5 * time.Second
		defaultReadTimeout  = 3 * time.Second
		defaultWriteTimeout = 3 * time.Second
		defaultProductTTL   = 3 * time.Minute
	)

	db, err := parseIntEnv("REDIS_DB_ID", defaultDB)
	if err != nil {
		log.Errorf(err, "invalid REDIS_DB_ID")
		return nil, err
	}

	maxRetries, err := parseIntEnv("MAX_RETRIES", defaultMaxRetries)
	if err != nil {
		log.Errorf(err, "invalid MAX_RETRIES")
		return nil, err
	}

	dialTimeout, err := parseDurationEnv("DIAL_TIMEOUT", defaultDialTimeout)
	if err != nil {
		log.Errorf(err, "invalid DIAL_TIMEOUT")
		return nil, err
	}

	readTimeout, err := parseDurationEnv("READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid WRITE_TIMEOUT")
		return nil, err
	}

	productTTL, err := parseDurationEnv("PRODUCT_TTL", defaultProductTTL)
	if err != nil {
		log.Errorf(err, "invalid PRODUCT_TTL")
		return nil, err
	}

	return &RedisCfg{
		Addr:        getEnvOrDefault("REDIS_ADDR", defaultAddr),
		Password:    getEnv("REDIS_PASSWORD"),
		User:        getEnv("REDIS_USER"),
		DB:          db,
		MaxRetries:  maxRetries,
		DialTimeout: dialTimeout,
		Timeout:     max(readTimeout, writeTimeout),
		ProductTTL:  productTTL,
	}, nil
}

// LoadAuthCfg загружает настройки выпуска токенов. APP_KEY обязателен.
func LoadAuthCfg(log logger.Logger) (*AuthCfg, error) {
	const (
		defaultTokenTTL = 6 * time.Hour
		defaultIssuer   = "cashier-backend"
	)

	key, err := requireEnv(log, "APP_KEY")
	if err != nil {
		return nil, err
	}

	ttl, err := parseDurationEnv("AUTH_TOKEN_TTL", defaultTokenTTL)
	if err != nil {
		log.Errorf(err, "invalid AUTH_TOKEN_TTL")
		return nil, err
	}

	return &AuthCfg{
		AppKey:   key,
		TokenTTL: ttl,
		Issuer:   getEnvOrDefault("AUTH_ISSUER", defaultIssuer),
	}, nil
}

func loadOrderCfg(log logger.Logger) (*OrderCfg, error) {
	const defaultPostingTimeout = 10 * time.Second

	timeout, err := parseDurationEnv("ORDER_POSTING_TIMEOUT", defaultPostingTimeout)
	if err != nil {
		log.Errorf(err, "invalid ORDER_POSTING_TIMEOUT")
		return nil, err
	}

	return &OrderCfg{PostingTimeout: timeout}, nil
}

func loadOutboxCfg(log logger.Logger) (*OutboxCfg, error) {
	const (
		defaultPollInterval = 5 * time.Second
		defaultLease        = time.Minute
		defaultBatchSize    = 100
	)

	poll, err := parseDurationEnv("OUTBOX_POLL_INTERVAL", defaultPollInterval)
	if err != nil {
		log.Errorf(err, "invalid OUTBOX_POLL_INTERVAL")
		return nil, err
	}

	lease, err := parseDurationEnv("OUTBOX_LEASE", defaultLease)
	if err != nil {
		log.Errorf(err, "invalid OUTBOX_LEASE")
		return nil, err
	}

	batch, err := parseIntEnv("OUTBOX_BATCH_SIZE", defaultBatchSize)
	if err != nil {
		log.Errorf(err, "invalid OUTBOX_BATCH_SIZE")
		return nil, err
	}

	return &OutboxCfg{
		PollInterval: poll,
		Lease:        lease,
		BatchSize:    batch,
	}, nil
}

func requireEnv(log logger.Logger, key string) (string, error) {
	v := getEnv(key)
	if v == "" {
		err := fmt.Errorf("%s is required", key)
		log.Errorf(err, "missing %s", key)
		return "", err
	}

	return v, nil
}

// getEnv возвращает значение переменной окружения.
// Возвращает пустую строку, если переменная не задана.
func getEnv(key string) string {
	return os.Getenv(key)
}

// getEnvOrDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

// parseDurationEnv считывает длительность или возвращает значение по умолчанию.
func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	if v := os.Getenv(key); v != "" {
		return time.ParseDuration(v)
	}

	return defaultValue, nil
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}

	intValue, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue, e.ErrIncorrectEnvVariable
	}

	return intValue, nil
}
