package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyoungcy/alphadesk/internal/domain"
)

// OrderStore implements domain.OrderStore. Prices, quantities, and amounts
// are stored as text: they are exact decimal strings end to end and the store
// never does arithmetic on them.
type OrderStore struct {
	pool *pgxpool.Pool
}

// NewOrderStore creates an OrderStore backed by the given connection pool.
func NewOrderStore(pool *pgxpool.Pool) *OrderStore {
	return &OrderStore{pool: pool}
}

// Create inserts a new order record.
func (s *OrderStore) Create(ctx context.Context, rec domain.OrderRecord) error {
	const query = `
		INSERT INTO orders (
			id, upstream_order_id, base_asset, quote_asset, symbol,
			side, price, quantity, amount, payment_method,
			status, executed_qty, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10,
			$11, $12, $13, $14
		)`

	_, err := s.pool.Exec(ctx, query,
		rec.ID, rec.UpstreamOrderID, rec.BaseAsset, rec.QuoteAsset, rec.Symbol,
		string(rec.Side), rec.Price, rec.Quantity, rec.Amount, string(rec.PaymentMethod),
		string(rec.Status), rec.ExecutedQty, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: create order %s: %w", rec.ID, err)
	}
	return nil
}

// UpdateStatus changes an order's status and executed quantity by local id.
func (s *OrderStore) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus, executedQty string) error {
	const query = `
		UPDATE orders
		SET status = $1, executed_qty = COALESCE(NULLIF($2, ''), executed_qty), updated_at = NOW()
		WHERE id = $3`

	tag, err := s.pool.Exec(ctx, query, string(status), executedQty, id)
	if err != nil {
		return fmt.Errorf("postgres: update order status %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

const orderSelectCols = `id, upstream_order_id, base_asset, quote_asset, symbol,
	side, price, quantity, amount, payment_method,
	status, executed_qty, created_at, updated_at`

func scanOrder(scanner interface{ Scan(dest ...any) error }) (domain.OrderRecord, error) {
	var rec domain.OrderRecord
	var side, payment, status string

	err := scanner.Scan(
		&rec.ID, &rec.UpstreamOrderID, &rec.BaseAsset, &rec.QuoteAsset, &rec.Symbol,
		&side, &rec.Price, &rec.Quantity, &rec.Amount, &payment,
		&status, &rec.ExecutedQty, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return domain.OrderRecord{}, err
	}

	rec.Side = domain.Side(side)
	rec.PaymentMethod = domain.PaymentMethod(payment)
	rec.Status = domain.OrderStatus(status)
	return rec, nil
}

// GetByUpstreamID fetches the record for an exchange order id.
func (s *OrderStore) GetByUpstreamID(ctx context.Context, upstreamID string) (domain.OrderRecord, error) {
	query := `SELECT ` + orderSelectCols + ` FROM orders WHERE upstream_order_id = $1`

	rec, err := scanOrder(s.pool.QueryRow(ctx, query, upstreamID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.OrderRecord{}, domain.ErrNotFound
		}
		return domain.OrderRecord{}, fmt.Errorf("postgres: get order by upstream id %s: %w", upstreamID, err)
	}
	return rec, nil
}

// ListBySymbol returns records for one trading pair, newest first.
func (s *OrderStore) ListBySymbol(ctx context.Context, symbol string, opts domain.ListOpts) ([]domain.OrderRecord, error) {
	query := `SELECT ` + orderSelectCols + `
		FROM orders WHERE symbol = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := s.pool.Query(ctx, query, symbol, normalizeLimit(opts.Limit), opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("postgres: list orders for %s: %w", symbol, err)
	}
	defer rows.Close()

	return collectOrders(rows)
}

// ListRecent returns the newest records across all symbols.
func (s *OrderStore) ListRecent(ctx context.Context, opts domain.ListOpts) ([]domain.OrderRecord, error) {
	query := `SELECT ` + orderSelectCols + `
		FROM orders
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	rows, err := s.pool.Query(ctx, query, normalizeLimit(opts.Limit), opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("postgres: list recent orders: %w", err)
	}
	defer rows.Close()

	return collectOrders(rows)
}

// ListTerminalBefore returns terminal-status records last updated strictly
// before the cutoff.
func (s *OrderStore) ListTerminalBefore(ctx context.Context, before time.Time) ([]domain.OrderRecord, error) {
	query := `SELECT ` + orderSelectCols + `
		FROM orders
		WHERE status = ANY($1) AND updated_at < $2
		ORDER BY updated_at ASC`

	terminal := []string{
		string(domain.OrderStatusFilled),
		string(domain.OrderStatusCancelled),
		string(domain.OrderStatusRejected),
	}

	rows, err := s.pool.Query(ctx, query, terminal, before)
	if err != nil {
		return nil, fmt.Errorf("postgres: list terminal orders: %w", err)
	}
	defer rows.Close()

	return collectOrders(rows)
}

// DeleteByIDs removes archived records.
func (s *OrderStore) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := s.pool.Exec(ctx, `DELETE FROM orders WHERE id = ANY($1)`, ids); err != nil {
		return fmt.Errorf("postgres: delete orders: %w", err)
	}
	return nil
}

func collectOrders(rows pgx.Rows) ([]domain.OrderRecord, error) {
	var records []domain.OrderRecord
	for rows.Next() {
		rec, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan order: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate orders: %w", err)
	}
	return records, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 100
	}
	return limit
}

// Compile-time interface check.
var _ domain.OrderStore = (*OrderStore)(nil)
