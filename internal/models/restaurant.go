// internal/models/restaurant.go
package models

// MenuItem is a single row of the restaurant menu.
type MenuItem struct {
	Name     string  `json:"name" db:"name"`
	Price    float64 `json:"price" db:"price"`
	Category string  `json:"category" db:"category"`
}

// PendingOrders is the result of the pending-order count lookup.
type PendingOrders struct {
	Count int `json:"count"`
}

// Revenue is today's completed-order revenue.
type Revenue struct {
	Revenue    float64 `json:"revenue" db:"revenue"`
	OrderCount int     `json:"orderCount" db:"order_count"`
}

// QueryResult is the outcome of one accessor call.
type QueryResult struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func Ok(data any) QueryResult {
	return QueryResult{Success: true, Data: data}
}

func Fail(msg string) QueryResult {
	return QueryResult{Success: false, Error: msg}
}
