package models

// ResetTableRequest asks the destination to drop and recreate one table
type ResetTableRequest struct {
	TableName       string `json:"table_name" binding:"required,max=63"`
	CreateStatement string `json:"create_statement" binding:"required"`
}

// ResetTableResponse carries the database's confirmation message
type ResetTableResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}
