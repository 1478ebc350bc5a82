package minio

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/DRSN-tech/cashier-backend/internal/cfg"
	"github.com/DRSN-tech/cashier-backend/internal/usecase"
	"github.com/minio/minio-go/v7"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type putCall struct {
	bucket, key string
	body        []byte
	opts        minio.PutObjectOptions
}

type fakePutter struct {
	calls []putCall
	err   error
}

func (f *fakePutter) PutObject(_ context.Context, bucket, key string, r io.Reader, _ int64,
	opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	if f.err != nil {
		return minio.UploadInfo{}, f.err
	}
	body, _ := io.ReadAll(r)
	f.calls = append(f.calls, putCall{bucket: bucket, key: key, body: body, opts: opts})
	return minio.UploadInfo{Bucket: bucket, Key: key}, nil
}

func postedEvent(t *testing.T) *usecase.OutboxEvent {
	t.Helper()

	// 01:30 MSK 2 марта в UTC ещё 1 марта: ключ строится по UTC
	msk := time.FixedZone("MSK", 3*60*60)
	payload, err := json.Marshal(usecase.OrderPostedPayload{
		OrderID:     42,
		BuyerID:     1,
		TotalAmount: decimal.NewFromInt(12000),
		OrderDate:   time.Date(2025, 3, 2, 1, 30, 0, 0, msk),
	})
	require.NoError(t, err)

	return usecase.NewOutboxEvent("evt-1", usecase.OrderPosted, 42, payload)
}

func TestReceiptRepo_Publish(t *testing.T) {
	putter := &fakePutter{}
	repo := &ReceiptRepo{mc: putter, cfg: &cfg.MinIOCfg{BucketName: "receipts"}}
	event := postedEvent(t)

	require.NoError(t, repo.Publish(context.Background(), event))

	require.Len(t, putter.calls, 1)
	call := putter.calls[0]
	assert.Equal(t, "receipts", call.bucket)
	assert.Equal(t, "receipts/2025/03/01/order-42.json", call.key)
	assert.Equal(t, event.Payload, call.body)
	assert.Equal(t, "application/json", call.opts.ContentType)
	assert.Equal(t, "evt-1", call.opts.UserMetadata["event-id"])
}

func TestReceiptRepo_Errors(t *testing.T) {
	putter := &fakePutter{err: errors.New("minio down")}
	repo := &ReceiptRepo{mc: putter, cfg: &cfg.MinIOCfg{BucketName: "receipts"}}

	assert.Error(t, repo.Publish(context.Background(), postedEvent(t)))

	bad := usecase.NewOutboxEvent("evt-2", usecase.OrderPosted, 1, []byte("{"))
	assert.Error(t, repo.Publish(context.Background(), bad))

	other := usecase.NewOutboxEvent("evt-3", usecase.OutboxEventType("order.deleted"), 1, nil)
	assert.NoError(t, repo.Publish(context.Background(), other))
}
