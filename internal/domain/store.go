package domain

import (
	"context"
	"time"
)

// OrderStore persists local order records.
type OrderStore interface {
	Create(ctx context.Context, rec OrderRecord) error
	UpdateStatus(ctx context.Context, id string, status OrderStatus, executedQty string) error
	GetByUpstreamID(ctx context.Context, upstreamID string) (OrderRecord, error)
	ListBySymbol(ctx context.Context, symbol string, opts ListOpts) ([]OrderRecord, error)
	ListRecent(ctx context.Context, opts ListOpts) ([]OrderRecord, error)
	// ListTerminalBefore returns terminal-status records last updated strictly
	// before the cutoff, for archival.
	ListTerminalBefore(ctx context.Context, before time.Time) ([]OrderRecord, error)
}

// BlobWriter writes an object to blob storage under a key.
type BlobWriter interface {
	Write(ctx context.Context, key string, data []byte, contentType string) error
}

// Archiver exports aged order history to blob storage.
type Archiver interface {
	ArchiveOrders(ctx context.Context, before time.Time) (int, error)
}
