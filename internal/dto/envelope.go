package dto

import "github.com/KabriAcid/ammamricemill-sub002/internal/utils/pagination"

// Envelope is the shape of every JSON response.
type Envelope struct {
	Success bool             `json:"success"`
	Data    any              `json:"data,omitempty"`
	Message string           `json:"message,omitempty"`
	Error   string           `json:"error,omitempty"`
	Meta    *pagination.Meta `json:"meta,omitempty"`
}

// BulkIDsRequest carries the ids of a bulk cancel or bulk delete.
type BulkIDsRequest struct {
	IDs []string `json:"ids" binding:"required,min=1,dive,required"`
}

// BulkResult reports how many rows a bulk call changed.
type BulkResult struct {
	Affected int `json:"affected"`
}
