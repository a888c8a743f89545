package testutil

import (
	"database/sql"
	"fmt"
	"testing"

	_ "github.com/go-sql-driver/mysql"
)

// SetupTestDB opens the integration test database. Tests are skipped when no
// MySQL instance named 'bloomstock_test' is reachable on localhost:3306.
func SetupTestDB(t *testing.T) *sql.DB {
	dsn := "root:@tcp(localhost:3306)/bloomstock_test?parseTime=true"
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Skipf("test database not available: %v", err)
	}

	return db
}

func CleanupTestDB(t *testing.T, db *sql.DB) {
	if db == nil {
		return
	}

	tables := []string{
		"InventoryCheckLines", "InventoryCheckSessions",
		"Reservations", "StockMovements", "BomLines",
		"Orders", "Products", "Components",
	}
	for _, table := range tables {
		_, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}

	db.Close()
}

// SetupTestTables creates the schema the integration tests run against.
func SetupTestTables(t *testing.T, db *sql.DB) {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS Components (
			id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
			companyId INT NOT NULL,
			name VARCHAR(255) NOT NULL,
			quantity INT NOT NULL DEFAULT 0,
			costPrice INT NOT NULL DEFAULT 0,
			retailPrice INT NOT NULL DEFAULT 0,
			minQuantity INT NOT NULL DEFAULT 0,
			createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updatedAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS Products (
			id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
			companyId INT NOT NULL,
			name VARCHAR(255) NOT NULL,
			isActive TINYINT(1) NOT NULL DEFAULT 1,
			isDeleted TINYINT(1) NOT NULL DEFAULT 0,
			createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updatedAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS BomLines (
			id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
			productId INT NOT NULL,
			componentId INT NOT NULL,
			quantityPerUnit INT NOT NULL,
			isOptional TINYINT(1) NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS Orders (
			id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
			companyId INT NOT NULL,
			status VARCHAR(32) NOT NULL,
			createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updatedAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS Reservations (
			id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
			orderId INT UNSIGNED NOT NULL,
			componentId INT NOT NULL,
			reservedQuantity INT NOT NULL,
			createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS StockMovements (
			id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
			componentId INT NOT NULL,
			kind VARCHAR(32) NOT NULL,
			quantityChange INT NOT NULL,
			balanceAfter INT NOT NULL,
			description TEXT,
			orderId INT UNSIGNED NULL,
			createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS InventoryCheckSessions (
			id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
			companyId INT NOT NULL,
			auditor VARCHAR(255) NOT NULL,
			comment TEXT,
			status VARCHAR(32) NOT NULL,
			appliedAt DATETIME NULL,
			createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS InventoryCheckLines (
			id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
			sessionId INT UNSIGNED NOT NULL,
			componentId INT NOT NULL,
			currentQuantity INT NOT NULL,
			actualQuantity INT NOT NULL,
			difference INT NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("failed to create test table: %v", err)
		}
	}
}

// SeedComponent inserts one component and returns its id.
func SeedComponent(t *testing.T, db *sql.DB, companyID int, name string, quantity, minQuantity int) int {
	result, err := db.Exec(
		`INSERT INTO Components (companyId, name, quantity, minQuantity) VALUES (?, ?, ?, ?)`,
		companyID, name, quantity, minQuantity,
	)
	if err != nil {
		t.Fatalf("failed to seed component: %v", err)
	}
	id, _ := result.LastInsertId()
	return int(id)
}

// SeedProduct inserts one active product and returns its id.
func SeedProduct(t *testing.T, db *sql.DB, companyID int, name string) int {
	result, err := db.Exec(
		`INSERT INTO Products (companyId, name) VALUES (?, ?)`,
		companyID, name,
	)
	if err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
	id, _ := result.LastInsertId()
	return int(id)
}

// SeedBOMLine links a product to a component.
func SeedBOMLine(t *testing.T, db *sql.DB, productID, componentID, quantityPerUnit int, optional bool) {
	_, err := db.Exec(
		`INSERT INTO BomLines (productId, componentId, quantityPerUnit, isOptional) VALUES (?, ?, ?, ?)`,
		productID, componentID, quantityPerUnit, optional,
	)
	if err != nil {
		t.Fatalf("failed to seed bom line: %v", err)
	}
}

// SeedOrder inserts one order and returns its id.
func SeedOrder(t *testing.T, db *sql.DB, companyID int, status string) uint {
	result, err := db.Exec(
		`INSERT INTO Orders (companyId, status) VALUES (?, ?)`,
		companyID, status,
	)
	if err != nil {
		t.Fatalf("failed to seed order: %v", err)
	}
	id, _ := result.LastInsertId()
	return uint(id)
}
