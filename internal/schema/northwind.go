package schema

// Table names in the Northwind catalog.
const (
	Customers = "Customers"
	Suppliers = "Suppliers"
	Products  = "Products"
)

// contactColumns are shared by Customers and Suppliers after their key column.
func contactColumns() []Column {
	return []Column{
		{Name: "CompanyName", Type: "nvarchar"},
		{Name: "ContactName", Type: "nvarchar"},
		{Name: "ContactTitle", Type: "nvarchar"},
		{Name: "Address", Type: "nvarchar"},
		{Name: "City", Type: "nvarchar"},
		{Name: "Region", Type: "nvarchar"},
		{Name: "PostalCode", Type: "nvarchar"},
		{Name: "Country", Type: "nvarchar"},
		{Name: "Phone", Type: "nvarchar"},
		{Name: "Fax", Type: "nvarchar"},
	}
}

// Northwind returns the catalog of the Northwind subset stored in the master database.
// Each call returns a fresh value.
func Northwind() *Catalog {
	customers := append([]Column{{Name: "CustomerID", Type: "nchar"}}, contactColumns()...)

	suppliers := append([]Column{{Name: "SupplierID", Type: "int"}}, contactColumns()...)
	suppliers = append(suppliers, Column{Name: "HomePage", Type: "nvarchar"})

	products := []Column{
		{Name: "ProductID", Type: "int"},
		{Name: "ProductName", Type: "nvarchar"},
		{Name: "SupplierID", Type: "int"},
		{Name: "CategoryID", Type: "int"},
		{Name: "QuantityPerUnit", Type: "nvarchar"},
		{Name: "UnitPrice", Type: "decimal", Note: "in rupees"},
		{Name: "UnitsInStock", Type: "int"},
		{Name: "UnitsOnOrder", Type: "int"},
		{Name: "ReorderLevel", Type: "int"},
		{Name: "Discontinued", Type: "bit"},
	}

	return &Catalog{
		Database: "master",
		Tables: []Table{
			{Name: Customers, Columns: customers},
			{Name: Suppliers, Columns: suppliers},
			{Name: Products, Columns: products},
		},
	}
}
