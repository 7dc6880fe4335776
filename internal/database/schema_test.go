package database

import (
	"io/fs"
	"strings"
	"testing"

	"crm/migrations"
)

func TestMigrationFilesExist(t *testing.T) {
	expectedMigrations := []string{
		"00001_create_customers_table.sql",
		"00002_create_products_table.sql",
		"00003_create_orders_table.sql",
		"00004_create_order_products_table.sql",
	}

	for _, migration := range expectedMigrations {
		if _, err := fs.Stat(migrations.FS, migration); err != nil {
			t.Errorf("Migration file %s does not exist", migration)
		}
	}
}

func TestMigrationFilesHaveUpAndDown(t *testing.T) {
	files, err := fs.ReadDir(migrations.FS, ".")
	if err != nil {
		t.Fatalf("Failed to read migrations: %v", err)
	}

	sqlFileCount := 0
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		sqlFileCount++
		content, err := fs.ReadFile(migrations.FS, file.Name())
		if err != nil {
			t.Errorf("Failed to read migration file %s: %v", file.Name(), err)
			continue
		}

		contentStr := string(content)
		for _, directive := range []string{
			"-- +goose Up",
			"-- +goose Down",
			"-- +goose StatementBegin",
			"-- +goose StatementEnd",
		} {
			if !strings.Contains(contentStr, directive) {
				t.Errorf("Migration file %s missing '%s' directive", file.Name(), directive)
			}
		}
	}

	if sqlFileCount == 0 {
		t.Error("No SQL migration files found")
	}
}

func TestMigrationFilesCreateExpectedTables(t *testing.T) {
	expectedTables := map[string]string{
		"customers":      "00001_create_customers_table.sql",
		"products":       "00002_create_products_table.sql",
		"orders":         "00003_create_orders_table.sql",
		"order_products": "00004_create_order_products_table.sql",
	}

	for tableName, migrationFile := range expectedTables {
		content, err := fs.ReadFile(migrations.FS, migrationFile)
		if err != nil {
			t.Errorf("Failed to read migration file %s: %v", migrationFile, err)
			continue
		}

		contentStr := string(content)

		if !strings.Contains(contentStr, "CREATE TABLE IF NOT EXISTS "+tableName+" (") {
			t.Errorf("Migration file %s does not create table %s", migrationFile, tableName)
		}

		if !strings.Contains(contentStr, "DROP TABLE IF EXISTS "+tableName+";") {
			t.Errorf("Migration file %s does not drop table %s in down section", migrationFile, tableName)
		}
	}
}

func TestCustomersTableHasUniqueEmail(t *testing.T) {
	content, err := fs.ReadFile(migrations.FS, "00001_create_customers_table.sql")
	if err != nil {
		t.Fatalf("Failed to read customers migration: %v", err)
	}

	if !strings.Contains(string(content), "CONSTRAINT customers_email_key UNIQUE (email)") {
		t.Error("Customers table missing unique constraint on email")
	}
}

func TestProductsTableHasRequiredColumns(t *testing.T) {
	content, err := fs.ReadFile(migrations.FS, "00002_create_products_table.sql")
	if err != nil {
		t.Fatalf("Failed to read products migration: %v", err)
	}

	contentStr := string(content)
	requiredColumns := []string{
		"id UUID PRIMARY KEY",
		"name VARCHAR",
		"price DECIMAL",
		"stock INTEGER NOT NULL DEFAULT 0",
		"created_at TIMESTAMPTZ",
		"CHECK (price > 0)",
		"CHECK (stock >= 0)",
	}

	for _, column := range requiredColumns {
		if !strings.Contains(contentStr, column) {
			t.Errorf("Products table missing required definition: %s", column)
		}
	}
}

func TestOrdersReferenceCustomersAndProducts(t *testing.T) {
	orders, err := fs.ReadFile(migrations.FS, "00003_create_orders_table.sql")
	if err != nil {
		t.Fatalf("Failed to read orders migration: %v", err)
	}
	if !strings.Contains(string(orders), "FOREIGN KEY (customer_id) REFERENCES customers(id)") {
		t.Error("Orders table missing foreign key constraint to customers")
	}

	link, err := fs.ReadFile(migrations.FS, "00004_create_order_products_table.sql")
	if err != nil {
		t.Fatalf("Failed to read order_products migration: %v", err)
	}
	if !strings.Contains(string(link), "PRIMARY KEY (order_id, product_id)") {
		t.Error("Order products table missing composite primary key")
	}
}
