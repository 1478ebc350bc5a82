package minio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/DRSN-tech/cashier-backend/internal/cfg"
	"github.com/DRSN-tech/cashier-backend/internal/usecase"
	"github.com/DRSN-tech/cashier-backend/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/minio/minio-go/v7"
)

// objectPutter: часть *minio.Client, нужная архиву.
type objectPutter interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64,
		opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// ReceiptRepo складывает чеки проведённых заказов в MinIO.
type ReceiptRepo struct {
	mc  objectPutter
	cfg *cfg.MinIOCfg
}

func NewReceiptRepo(mc *minio.Client, cfg *cfg.MinIOCfg) *ReceiptRepo {
	return &ReceiptRepo{
		mc:  mc,
		cfg: cfg,
	}
}

func (r *ReceiptRepo) Name() string {
	return "minio"
}

// Publish сохраняет payload события order.posted как JSON-чек.
// Ключ детерминирован, поэтому повторная доставка перезаписывает тот же объект.
func (r *ReceiptRepo) Publish(ctx context.Context, event *usecase.OutboxEvent) error {
	if event.EventType != usecase.OrderPosted {
		return nil
	}

	var payload usecase.OrderPostedPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	_, err := r.mc.PutObject(ctx, r.cfg.BucketName, ReceiptKey(&payload), bytes.NewReader(event.Payload),
		int64(len(event.Payload)), minio.PutObjectOptions{
			ContentType:  "application/json",
			UserMetadata: map[string]string{"event-id": event.EventID},
		})
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// ReceiptKey возвращает ключ объекта вида receipts/YYYY/MM/DD/order-<id>.json (дата в UTC).
func ReceiptKey(p *usecase.OrderPostedPayload) string {
	return fmt.Sprintf("receipts/%s/order-%d.json", p.OrderDate.UTC().Format("2006/01/02"), p.OrderID)
}
