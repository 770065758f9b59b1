package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/secondspindesk-afk/wigHaven-Project-sub002/internal/cart/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS cart_state (
	id            INTEGER PRIMARY KEY CHECK (id = 1),
	coupon_code   TEXT NOT NULL DEFAULT '',
	last_modified TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS cart_items (
	variant_id  TEXT PRIMARY KEY,
	position    INTEGER NOT NULL,
	name        TEXT NOT NULL,
	image       TEXT NOT NULL,
	unit_amount INTEGER NOT NULL,
	currency    TEXT NOT NULL,
	stock       INTEGER NOT NULL,
	quantity    INTEGER NOT NULL
);`

type itemRow struct {
	VariantID  string `db:"variant_id"`
	Position   int    `db:"position"`
	Name       string `db:"name"`
	Image      string `db:"image"`
	UnitAmount int64  `db:"unit_amount"`
	Currency   string `db:"currency"`
	Stock      int32  `db:"stock"`
	Quantity   int32  `db:"quantity"`
}

type stateRow struct {
	CouponCode   string    `db:"coupon_code"`
	LastModified time.Time `db:"last_modified"`
}

// Store persists the device-local cart in a SQLite file so it survives
// restarts of the agent.
type Store struct {
	db  *sqlx.DB
	log *slog.Logger
}

func Open(path string, log *slog.Logger) (*Store, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open cart db %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate cart db: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Store{db: db, log: log}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Read loads the persisted cart. A missing or unreadable payload is not
// an error: the caller gets an empty cart and the condition is logged.
func (s *Store) Read(ctx context.Context) (domain.Cart, error) {
	var state stateRow
	err := s.db.GetContext(ctx, &state,
		`SELECT coupon_code, last_modified FROM cart_state WHERE id = 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Cart{}, nil
	}
	if err != nil {
		s.log.Warn("cart state unreadable, treating as empty", slog.Any("err", err))
		return domain.Cart{}, nil
	}

	var rows []itemRow
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT variant_id, position, name, image, unit_amount, currency, stock, quantity
		 FROM cart_items ORDER BY position`); err != nil {
		s.log.Warn("cart items unreadable, treating as empty", slog.Any("err", err))
		return domain.Cart{}, nil
	}

	cart := domain.Cart{
		CouponCode:   state.CouponCode,
		LastModified: state.LastModified,
	}
	for _, r := range rows {
		cart.Items = append(cart.Items, domain.CartItem{
			VariantID: r.VariantID,
			Name:      r.Name,
			Image:     r.Image,
			UnitPrice: domain.Money{Currency: r.Currency, Amount: r.UnitAmount},
			Stock:     r.Stock,
			Quantity:  r.Quantity,
		})
	}
	return cart, nil
}

// Write replaces the persisted cart in one transaction. The caller's
// LastModified is persisted as given; a zero value is stamped with the
// current time so every write carries a modification timestamp.
func (s *Store) Write(ctx context.Context, cart domain.Cart) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin cart write: %w", err)
	}
	defer tx.Rollback()

	now := cart.LastModified
	if now.IsZero() {
		now = time.Now().UTC()
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO cart_state (id, coupon_code, last_modified) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET coupon_code = excluded.coupon_code,
		                               last_modified = excluded.last_modified`,
		cart.CouponCode, now); err != nil {
		return fmt.Errorf("write cart state: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items`); err != nil {
		return fmt.Errorf("clear cart items: %w", err)
	}
	for i, it := range cart.Items {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO cart_items (variant_id, position, name, image, unit_amount, currency, stock, quantity)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			it.VariantID, i, it.Name, it.Image, it.UnitPrice.Amount, it.UnitPrice.Currency,
			it.Stock, it.Quantity); err != nil {
			return fmt.Errorf("write cart item %s: %w", it.VariantID, err)
		}
	}

	return tx.Commit()
}

func (s *Store) Clear(ctx context.Context) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin cart clear: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items`); err != nil {
		return fmt.Errorf("clear cart items: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_state`); err != nil {
		return fmt.Errorf("clear cart state: %w", err)
	}
	return tx.Commit()
}
