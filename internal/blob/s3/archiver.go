package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alanyoungcy/alphadesk/internal/domain"
)

// OrderArchiveStore is the slice of the order store the archiver needs.
type OrderArchiveStore interface {
	ListTerminalBefore(ctx context.Context, before time.Time) ([]domain.OrderRecord, error)
	DeleteByIDs(ctx context.Context, ids []string) error
}

// OrderArchiver implements domain.Archiver: terminal order records older than
// a cutoff are serialized to JSONL and uploaded to blob storage. Archived
// rows are only deleted from the primary store when pruning is enabled, and
// only after the upload succeeds.
type OrderArchiver struct {
	writer domain.BlobWriter
	orders OrderArchiveStore
	prune  bool
}

// NewOrderArchiver creates an OrderArchiver.
func NewOrderArchiver(writer domain.BlobWriter, orders OrderArchiveStore, prune bool) *OrderArchiver {
	return &OrderArchiver{
		writer: writer,
		orders: orders,
		prune:  prune,
	}
}

// ArchiveOrders exports terminal records last updated before the cutoff and
// returns the number archived. No records is a successful no-op.
func (a *OrderArchiver) ArchiveOrders(ctx context.Context, before time.Time) (int, error) {
	records, err := a.orders.ListTerminalBefore(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive orders query: %w", err)
	}
	if len(records) == 0 {
		return 0, nil
	}

	buf, err := marshalJSONL(records)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive orders marshal: %w", err)
	}

	key := archiveKey(before)
	if err := a.writer.Write(ctx, key, buf, "application/x-ndjson"); err != nil {
		return 0, fmt.Errorf("s3blob: archive orders upload: %w", err)
	}

	if a.prune {
		ids := make([]string, 0, len(records))
		for _, rec := range records {
			ids = append(ids, rec.ID)
		}
		if err := a.orders.DeleteByIDs(ctx, ids); err != nil {
			// The archive exists; surface the failed prune but keep the count.
			return len(records), fmt.Errorf("s3blob: prune archived orders: %w", err)
		}
	}

	return len(records), nil
}

// archiveKey partitions archive objects by the year-month of the cutoff,
// e.g. archive/orders/2025-06.jsonl.
func archiveKey(before time.Time) string {
	return fmt.Sprintf("archive/orders/%s.jsonl", before.Format("2006-01"))
}

// marshalJSONL serializes records as newline-delimited JSON.
func marshalJSONL[T any](records []T) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	for i, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return nil, fmt.Errorf("jsonl encode record %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}

// Compile-time interface check.
var _ domain.Archiver = (*OrderArchiver)(nil)
