package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"oneil-farm-bot/internal/domain"
)

type OrderRepository struct {
	db *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{db: db}
}

const orderColumns = `id, customer_external_id, customer_name, customer_phone, total::text,
	status, comment, handled_by, created_at`

func storeErr(op string, err error) error {
	return &domain.StoreError{Op: op, Err: err}
}

func (or *OrderRepository) AddOrder(ctx context.Context, order domain.Order) (err error) {
	tx, err := or.db.Begin(ctx)
	if err != nil {
		return storeErr("begin transaction", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	// 1. Insert order
	_, err = tx.Exec(ctx, `
		INSERT INTO orders
		    (id, customer_external_id, customer_name, customer_phone, total, status, comment, handled_by, created_at, updated_at)
		VALUES
		    ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
	`,
		order.ID,
		order.CustomerExternalID,
		order.CustomerName,
		order.CustomerPhone,
		order.Total.String(),
		string(order.Status),
		order.Comment,
		order.HandledBy,
		order.CreatedAt,
	)
	if err != nil {
		return storeErr("insert order", err)
	}

	// 2. Insert order items
	for i, item := range order.LineItems {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items (order_id, position, product_id, product_name, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, order.ID, i, item.ProductID, item.ProductName, item.Quantity, item.UnitPrice.String())
		if err != nil {
			return storeErr(fmt.Sprintf("insert order item %s", item.ProductID), err)
		}
	}

	// 3. Insert into order_status_log
	_, err = tx.Exec(ctx, `
		INSERT INTO order_status_log (order_id, status, changed_by, changed_at)
		VALUES ($1, $2, $3, $4)
	`, order.ID, string(order.Status), CreatedBy, order.CreatedAt)
	if err != nil {
		return storeErr("insert order status log", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return storeErr("commit transaction", err)
	}
	return nil
}

func (or *OrderRepository) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	orders, err := or.queryOrders(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	if err != nil {
		return domain.Order{}, err
	}
	if len(orders) == 0 {
		return domain.Order{}, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	return orders[0], nil
}

func (or *OrderRepository) ListOrders(ctx context.Context) ([]domain.Order, error) {
	return or.queryOrders(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC, seq DESC`)
}

func (or *OrderRepository) FindByStatus(ctx context.Context, status domain.Status) ([]domain.Order, error) {
	return or.queryOrders(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE status = $1
		ORDER BY created_at DESC, seq DESC`, string(status))
}

func (or *OrderRepository) FindByDateRange(ctx context.Context, start, end time.Time) ([]domain.Order, error) {
	return or.queryOrders(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE created_at BETWEEN $1 AND $2
		ORDER BY created_at DESC, seq DESC`, start, end)
}

func (or *OrderRepository) SearchByShortID(ctx context.Context, suffix string, limit int) ([]domain.Order, error) {
	return or.queryOrders(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE right(id, $2) = $1
		ORDER BY created_at DESC, seq DESC
		LIMIT $3`, suffix, len(suffix), limit)
}

func (or *OrderRepository) SearchByName(ctx context.Context, term string, limit int) ([]domain.Order, error) {
	return or.queryOrders(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE customer_name ILIKE '%' || $1::text || '%' ESCAPE '\'
		ORDER BY created_at DESC, seq DESC
		LIMIT $2`, escapeLike(term), limit)
}

func (or *OrderRepository) UpdateStatus(ctx context.Context, id string, status domain.Status, handledBy string) (o domain.Order, err error) {
	tx, err := or.db.Begin(ctx)
	if err != nil {
		return domain.Order{}, storeErr("begin transaction", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	tag, err := tx.Exec(ctx, `
		UPDATE orders
		SET status = $2,
		    handled_by = CASE WHEN $3 = '' THEN handled_by ELSE $3 END,
		    updated_at = NOW()
		WHERE id = $1`, id, string(status), handledBy)
	if err != nil {
		return domain.Order{}, storeErr("update status", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.Order{}, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO order_status_log (order_id, status, changed_by, changed_at)
		VALUES ($1, $2, $3, NOW())`, id, string(status), handledBy)
	if err != nil {
		return domain.Order{}, storeErr("insert order status log", err)
	}
	if err = tx.Commit(ctx); err != nil {
		return domain.Order{}, storeErr("commit transaction", err)
	}
	return or.GetOrder(ctx, id)
}

func (or *OrderRepository) UpdateComment(ctx context.Context, id, comment string) (domain.Order, error) {
	tag, err := or.db.Exec(ctx, `UPDATE orders SET comment = $2, updated_at = NOW() WHERE id = $1`, id, comment)
	if err != nil {
		return domain.Order{}, storeErr("update comment", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.Order{}, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	return or.GetOrder(ctx, id)
}

func (or *OrderRepository) Timeline(ctx context.Context, id string) ([]domain.StatusChange, error) {
	if _, err := or.GetOrder(ctx, id); err != nil {
		return nil, err
	}
	rows, err := or.db.Query(ctx, `
		SELECT status, changed_by, changed_at
		FROM order_status_log WHERE order_id = $1
		ORDER BY changed_at ASC, id ASC`, id)
	if err != nil {
		return nil, storeErr("query status log", err)
	}
	defer rows.Close()

	var out []domain.StatusChange
	for rows.Next() {
		var (
			status string
			sc     = domain.StatusChange{OrderID: id}
		)
		if err := rows.Scan(&status, &sc.ChangedBy, &sc.ChangedAt); err != nil {
			return nil, storeErr("scan status log", err)
		}
		sc.Status = domain.Status(status)
		out = append(out, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate status log", err)
	}
	return out, nil
}

// queryOrders runs an orders query and attaches the line items of every row.
func (or *OrderRepository) queryOrders(ctx context.Context, sql string, args ...any) ([]domain.Order, error) {
	rows, err := or.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, storeErr("query orders", err)
	}
	defer rows.Close()

	var (
		orders []domain.Order
		ids    []string
	)
	for rows.Next() {
		var (
			o      domain.Order
			total  string
			status string
		)
		if err := rows.Scan(&o.ID, &o.CustomerExternalID, &o.CustomerName, &o.CustomerPhone,
			&total, &status, &o.Comment, &o.HandledBy, &o.CreatedAt); err != nil {
			return nil, storeErr("scan order", err)
		}
		if o.Total, err = decimal.NewFromString(total); err != nil {
			return nil, storeErr("parse total", err)
		}
		o.Status = domain.Status(status)
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate orders", err)
	}
	rows.Close()

	if len(ids) == 0 {
		return orders, nil
	}
	items, err := or.itemsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].LineItems = items[orders[i].ID]
	}
	return orders, nil
}

func (or *OrderRepository) itemsFor(ctx context.Context, ids []string) (map[string][]domain.LineItem, error) {
	rows, err := or.db.Query(ctx, `
		SELECT order_id, product_id, product_name, quantity, unit_price::text
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, position`, ids)
	if err != nil {
		return nil, storeErr("query order items", err)
	}
	defer rows.Close()

	out := make(map[string][]domain.LineItem, len(ids))
	for rows.Next() {
		var (
			orderID string
			price   string
			it      domain.LineItem
		)
		if err := rows.Scan(&orderID, &it.ProductID, &it.ProductName, &it.Quantity, &price); err != nil {
			return nil, storeErr("scan order item", err)
		}
		if it.UnitPrice, err = decimal.NewFromString(price); err != nil {
			return nil, storeErr("parse unit price", err)
		}
		out[orderID] = append(out[orderID], it)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate order items", err)
	}
	return out, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }

var _ OrderRepositoryInterface = (*OrderRepository)(nil)
