package cfg

import (
	"errors"
	"testing"
	"time"

	"github.com/DRSN-tech/cashier-backend/pkg/e"
	"github.com/DRSN-tech/cashier-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("POSTGRES_USER", "pos")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("POSTGRES_DB", "pos")
	t.Setenv("APP_KEY", "base64:key")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("MINIO_ENDPOINT", "")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	c, err := Load(logger.NewNopLogger())
	require.NoError(t, err)

	assert.Equal(t, "8080", c.Http.Port)
	assert.Equal(t, "8091", c.Grpc.Port)
	assert.Equal(t, 6*time.Hour, c.Auth.TokenTTL)
	assert.Equal(t, "cashier-backend", c.Auth.Issuer)
	assert.Equal(t, 10*time.Second, c.Order.PostingTimeout)
	assert.Equal(t, 3*time.Minute, c.Redis.ProductTTL)
	assert.Equal(t, 100, c.Outbox.BatchSize)
	assert.Nil(t, c.Kafka)
	assert.Nil(t, c.Minio)
	assert.Equal(t, "host=localhost port=5432 user=pos password=secret dbname=pos sslmode=disable", c.Db.DSN())
}

func TestLoad_MissingRequired(t *testing.T) {
	for _, key := range []string{"POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB", "APP_KEY"} {
		t.Run(key, func(t *testing.T) {
			setRequired(t)
			t.Setenv(key, "")

			_, err := Load(logger.NewNopLogger())
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestLoad_OptionalSinks(t *testing.T) {
	setRequired(t)
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
	t.Setenv("MINIO_ENDPOINT", "minio:9000")

	c, err := Load(logger.NewNopLogger())
	require.NoError(t, err)

	require.NotNil(t, c.Kafka)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, c.Kafka.Brokers)
	assert.Equal(t, "orders.posted", c.Kafka.Topic)
	require.NotNil(t, c.Minio)
	assert.Equal(t, "receipts", c.Minio.BucketName)
}

func TestLoad_InvalidValues(t *testing.T) {
	setRequired(t)
	t.Setenv("ORDER_POSTING_TIMEOUT", "ten seconds")

	_, err := Load(logger.NewNopLogger())
	assert.Error(t, err)
}

func TestParseIntEnv(t *testing.T) {
	t.Setenv("OUTBOX_BATCH_SIZE", "abc")

	v, err := parseIntEnv("OUTBOX_BATCH_SIZE", 7)
	assert.True(t, errors.Is(err, e.ErrIncorrectEnvVariable))
	assert.Equal(t, 7, v)
}
