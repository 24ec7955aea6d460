package request

type TransactionRequest struct {
	CategoryID  string  `json:"category_id" validate:"required,uuid"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Type        string  `json:"type" validate:"required,oneof=income expense"`
	Date        string  `json:"date" validate:"required"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=255"`
}

// TransactionQuery is read from the URL query string.
type TransactionQuery struct {
	PaginatedRequest
	CategoryID string `validate:"omitempty,uuid"`
	Type       string `validate:"omitempty,oneof=income expense"`
	StartDate  string
	EndDate    string
	Search     string `validate:"max=100"`
}
