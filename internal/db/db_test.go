package db_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/SigNoz/storefront-go-app/internal/db"
	"github.com/SigNoz/storefront-go-app/internal/db/dbtest"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := db.Open(context.Background(), db.Options{Driver: "postgres", DSN: "whatever"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestDialect(t *testing.T) {
	database := dbtest.Open(t)

	assert.Equal(t, db.DriverSQLite, database.Dialect())
	assert.Empty(t, database.ForUpdate())
}

func TestInitSchema_Idempotent(t *testing.T) {
	database := dbtest.Open(t)

	require.NoError(t, database.InitSchema(context.Background()))
}

func TestWithTx(t *testing.T) {
	ctx := context.Background()
	database := dbtest.Open(t)

	insertCategory := func(tx *sql.Tx, name string) error {
		_, err := tx.ExecContext(ctx, "INSERT INTO categories (name) VALUES (?)", name)
		return err
	}
	countCategories := func() int {
		var n int
		require.NoError(t, database.QueryRowContext(ctx, "SELECT COUNT(*) FROM categories").Scan(&n))
		return n
	}

	t.Run("commits on success", func(t *testing.T) {
		err := database.WithTx(ctx, func(tx *sql.Tx) error {
			return insertCategory(tx, "Committed")
		})
		require.NoError(t, err)
		assert.Equal(t, 1, countCategories())
	})

	t.Run("rolls back on error", func(t *testing.T) {
		boom := errors.New("boom")
		err := database.WithTx(ctx, func(tx *sql.Tx) error {
			if err := insertCategory(tx, "Rolled back"); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, countCategories())
	})

	t.Run("rolls back and repanics", func(t *testing.T) {
		assert.PanicsWithValue(t, "kaboom", func() {
			_ = database.WithTx(ctx, func(tx *sql.Tx) error {
				if err := insertCategory(tx, "Panicked"); err != nil {
					return err
				}
				panic("kaboom")
			})
		})
		assert.Equal(t, 1, countCategories())
	})
}

func TestIsDuplicateKey(t *testing.T) {
	ctx := context.Background()
	database := dbtest.Open(t)

	_, err := database.ExecContext(ctx, "INSERT INTO categories (name) VALUES (?)", "Dup")
	require.NoError(t, err)
	_, err = database.ExecContext(ctx, "INSERT INTO categories (name) VALUES (?)", "Dup")
	require.Error(t, err)

	assert.True(t, db.IsDuplicateKey(err))
	assert.True(t, db.IsDuplicateKey(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}))
	assert.False(t, db.IsDuplicateKey(&mysql.MySQLError{Number: 1452}))
	assert.False(t, db.IsDuplicateKey(errors.New("duplicate")))
	assert.False(t, db.IsDuplicateKey(nil))
}

func TestStockCheckConstraint(t *testing.T) {
	ctx := context.Background()
	database := dbtest.Open(t)

	res, err := database.ExecContext(ctx, "INSERT INTO categories (name) VALUES ('C')")
	require.NoError(t, err)
	catID, err := res.LastInsertId()
	require.NoError(t, err)

	_, err = database.ExecContext(ctx,
		"INSERT INTO products (name, description, price, stock, category_id, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		"Negative", "d", "1.00", -1, catID, time.Now().UTC())
	assert.Error(t, err)
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	database := dbtest.Open(t)

	n, err := database.Seed(ctx)
	require.NoError(t, err)
	assert.Greater(t, n, 0)

	var categories int
	require.NoError(t, database.QueryRowContext(ctx, "SELECT COUNT(*) FROM categories").Scan(&categories))
	assert.Equal(t, 5, categories)

	var name string
	var stock int
	require.NoError(t, database.QueryRowContext(ctx,
		"SELECT name, stock FROM products ORDER BY id LIMIT 1").Scan(&name, &stock))
	assert.Equal(t, "Crochet Teddy Bear", name)
	assert.Equal(t, 8, stock)

	again, err := database.Seed(ctx)
	require.NoError(t, err)
	assert.Zero(t, again)
}
