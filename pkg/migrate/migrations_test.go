package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readMigration(t *testing.T, suffix string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", "*_"+suffix+".sql"))
	require.NoError(t, err)
	require.Len(t, matches, 1, "expected one %s migration", suffix)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	return string(data)
}

func TestMigrationsDirIsValid(t *testing.T) {
	require.NoError(t, ValidateDir("migrations"))
}

func TestDomainMigrationsContainSchema(t *testing.T) {
	cases := map[string][]string{
		"create_users": {
			"CREATE TABLE IF NOT EXISTS users",
			"CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username",
			"DROP TABLE IF EXISTS users",
		},
		"create_suppliers": {
			"CREATE TABLE IF NOT EXISTS suppliers",
			"CHECK (status IN ('Active', 'Inactive', 'Blocked'))",
			"CREATE UNIQUE INDEX IF NOT EXISTS idx_suppliers_supplier_no",
		},
		"create_items": {
			"CREATE TABLE IF NOT EXISTS items",
			"CHECK (stock_unit IN ('PCS', 'BOX', 'KG', 'L'))",
			"unit_price NUMERIC(14,2) NOT NULL CHECK (unit_price >= 0)",
			"item_images TEXT[] NOT NULL DEFAULT '{}'",
			"CREATE UNIQUE INDEX IF NOT EXISTS idx_items_item_no",
		},
		"create_purchase_orders": {
			"CREATE TABLE IF NOT EXISTS purchase_orders",
			"items JSONB NOT NULL",
			"net_amount NUMERIC(14,2) NOT NULL",
			"CREATE UNIQUE INDEX IF NOT EXISTS idx_purchase_orders_order_no",
			"DROP TABLE IF EXISTS purchase_orders",
		},
	}

	for suffix, checks := range cases {
		content := readMigration(t, suffix)
		for _, sub := range checks {
			assert.Contains(t, content, sub, suffix)
		}
	}
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)

	path, err := CreateSQLMigration(dir, "Add Item Barcode!", now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "20250304050607_add_item_barcode.sql"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "-- +goose Up"))
	require.NoError(t, ValidateDir(dir))

	_, err = CreateSQLMigration(dir, "Add Item Barcode", now)
	assert.Error(t, err, "same version twice")

	_, err = CreateSQLMigration(dir, "!!!", now)
	assert.Error(t, err)
}

func TestValidateDirRejectsBadFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "001_bad.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))
	assert.Error(t, ValidateDir(dir))

	dir = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20250101000000_no_down.sql"), []byte("-- +goose Up\n"), 0o644))
	assert.Error(t, ValidateDir(dir))
}
