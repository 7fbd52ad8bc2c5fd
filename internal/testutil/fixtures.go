// Package testutil provides test helper utilities for AskSQL tests.
package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// northwindSeed creates a small Northwind subset. Column names follow the
// production catalog; types are SQLite's.
var northwindSeed = []string{
	`CREATE TABLE Suppliers (
		SupplierID INTEGER PRIMARY KEY,
		CompanyName TEXT NOT NULL,
		ContactName TEXT,
		City TEXT,
		Country TEXT,
		HomePage TEXT
	)`,
	`CREATE TABLE Products (
		ProductID INTEGER PRIMARY KEY,
		ProductName TEXT NOT NULL,
		SupplierID INTEGER REFERENCES Suppliers(SupplierID),
		UnitPrice REAL,
		UnitsInStock INTEGER,
		Discontinued INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE Customers (
		CustomerID TEXT PRIMARY KEY,
		CompanyName TEXT NOT NULL,
		City TEXT,
		Country TEXT
	)`,
	`INSERT INTO Suppliers (SupplierID, CompanyName, ContactName, City, Country, HomePage) VALUES
		(1, 'Exotic Liquids', 'Charlotte Cooper', 'London', 'UK', NULL),
		(2, 'New Orleans Cajun Delights', 'Shelley Burke', 'New Orleans', 'USA', '#CAJUN.HTM#'),
		(3, 'Heli Süßwaren GmbH & Co. KG', 'Petra Winkler', 'Berlin', 'Germany', NULL)`,
	`INSERT INTO Products (ProductID, ProductName, SupplierID, UnitPrice, UnitsInStock, Discontinued) VALUES
		(1, 'Chai', 1, 18.0, 39, 0),
		(2, 'Chang', 1, 19.0, 17, 0),
		(3, 'Chef Anton''s Gumbo Mix', 2, 21.35, 0, 1),
		(4, 'NuNuCa Nuß-Nougat-Creme', 3, 14.0, 76, 0)`,
	`INSERT INTO Customers (CustomerID, CompanyName, City, Country) VALUES
		('ALFKI', 'Alfreds Futterkiste', 'Berlin', 'Germany'),
		('AROUT', 'Around the Horn', 'London', 'UK')`,
}

// Supplier and product counts in the seeded database.
const (
	SupplierCount = 3
	ProductCount  = 4
)

// NorthwindDB creates a seeded SQLite database file and returns its path.
// The file is removed when the test finishes.
func NorthwindDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "northwind.db")

	db := OpenSQLite(t, path)
	for _, stmt := range northwindSeed {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("seeding northwind: %v", err)
		}
	}
	return path
}

// OpenSQLite opens the SQLite file at path directly, bypassing the executor.
// The handle is closed when the test finishes.
func OpenSQLite(t *testing.T, path string) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("opening sqlite %s: %v", path, err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
