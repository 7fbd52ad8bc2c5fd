package llm

import (
	"fmt"
	"strings"
	"time"
)

// RefusalSentence is what the model is told to answer when a question has no SQL translation.
const RefusalSentence = "I'm sorry, I cannot generate a SQL command for that question."

// BuildGenerationPrompt constructs the system instruction for turning a question into SQL.
func BuildGenerationPrompt(database, schema string) string {
	return fmt.Sprintf(`You are an advanced SQL generator for Microsoft SQL Server. Your task is to convert English questions into accurate SQL commands based on the database named %s, which contains the following tables and columns:

%s
**Important Rules**:
- **Do NOT** include any formatting characters, such as backticks (`+"`"+`), triple quotes ("""), or code blocks (`+"```"+`).
- **Do NOT** output any text like "`+"```"+`sql" or any formatting instructions. The SQL query should be **directly executable** in a standard SQL environment.
- **Only use standard SQL syntax** without extra formatting.
- **Keywords** like SELECT, FROM, WHERE, GROUP BY, etc., should be **capitalized**.
- **String values** should be enclosed in single quotes (').
- **Do NOT** include the word "SQL" or any non-SQL content in your response.

Here are some examples of the correct format:

Example 1 - How many suppliers are there in the database?
Expected SQL command:
SELECT COUNT(*) FROM Suppliers;

Example 2 - List all products that are discontinued.
Expected SQL command:
SELECT * FROM Products WHERE Discontinued = 1;

Example 3 - Retrieve the names of suppliers and their cities.
Expected SQL command:
SELECT CompanyName, City FROM Suppliers;

Example 4 - Update the unit price for 'Chai' to 18.50.
Expected SQL command:
UPDATE Products SET UnitPrice = 18.50 WHERE ProductName = 'Chai';

Example 5 - List all suppliers in 'Germany'.
Expected SQL command:
SELECT * FROM Suppliers WHERE Country = 'Germany';

Example 6 - Retrieve product names and the corresponding supplier names.
Expected SQL command:
SELECT Products.ProductName, Suppliers.CompanyName
FROM Products
INNER JOIN Suppliers ON Products.SupplierID = Suppliers.SupplierID;

Example 7 - Find all products supplied by 'Exotic Liquids'.
Expected SQL command:
SELECT Products.ProductName
FROM Products
INNER JOIN Suppliers ON Products.SupplierID = Suppliers.SupplierID
WHERE Suppliers.CompanyName = 'Exotic Liquids';

Example 8 - Get the total units in stock for each supplier.
Expected SQL command:
SELECT Suppliers.CompanyName, SUM(Products.UnitsInStock) AS TotalStock
FROM Suppliers
INNER JOIN Products ON Suppliers.SupplierID = Products.SupplierID
GROUP BY Suppliers.CompanyName;

Example 9 - List all suppliers and the number of products they supply.
Expected SQL command:
SELECT Suppliers.CompanyName, COUNT(Products.ProductID) AS ProductCount
FROM Suppliers
LEFT JOIN Products ON Suppliers.SupplierID = Products.SupplierID
GROUP BY Suppliers.CompanyName;

Example 10 - List products and their suppliers, but only for products with less than 20 units in stock.
Expected SQL command:
SELECT Products.ProductName, Suppliers.CompanyName
FROM Products
INNER JOIN Suppliers ON Products.SupplierID = Suppliers.SupplierID
WHERE Products.UnitsInStock < 20;

Example 11 - Find all suppliers who don't supply any products.
Expected SQL command:
SELECT Suppliers.CompanyName
FROM Suppliers
LEFT JOIN Products ON Suppliers.SupplierID = Products.SupplierID
WHERE Products.ProductID IS NULL;

If the question cannot be converted into a valid SQL command, respond with: "%s"`, database, schema, RefusalSentence)
}

// BuildCorrectionPrompt constructs the system instruction for repairing a failed statement.
// failedSQL and errText are embedded verbatim.
func BuildCorrectionPrompt(failedSQL, errText, schemaExcerpt string) string {
	return fmt.Sprintf(`The following SQL query resulted in an error: "%s".
The error was: "%s".
Please correct the query based on this error.

The relevant table schema is as follows:
%s
Make sure to alias columns if there are duplicates.
Respond with the corrected SQL command only, without formatting characters or explanations.`, failedSQL, errText, schemaExcerpt)
}

// BuildSummaryPrompt constructs the prompt that turns raw result rows into a prose answer.
// Every row is inlined; there is no size limit.
func BuildSummaryPrompt(rows [][]any, question, overview string) string {
	return fmt.Sprintf(`You are an expert at converting SQL query results into detailed natural language responses. Based on the following SQL query result:

%s

The user asked: "%s"

Please provide a detailed response that answers the question clearly and includes additional relevant information.
**Database Schema Overview**:
%s
This should include:
- Key findings from the SQL query results (e.g., relevant customer details).
- Any names of customers, their companies, and other pertinent information, if applicable.
- Context or explanations that enhance the user's understanding of the data.
- Any trends or patterns evident in the data that might be of interest (e.g., distribution by city, country, etc.).

Make sure the response is structured, informative, and easy to understand.`, FormatRows(rows), question, overview)
}

// FormatRows renders rows as comma-joined fields, one row per line.
func FormatRows(rows [][]any) string {
	lines := make([]string, len(rows))
	for i, row := range rows {
		fields := make([]string, len(row))
		for j, v := range row {
			fields[j] = formatValue(v)
		}
		lines[i] = strings.Join(fields, ", ")
	}
	return strings.Join(lines, "\n")
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", val)
	}
}
