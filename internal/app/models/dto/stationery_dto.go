package dto

// CreateItemRequest adds an inventory item with its opening stock
type CreateItemRequest struct {
	Name            string `json:"name" binding:"required"`
	Unit            string `json:"unit"`
	InitialQuantity int    `json:"initial_quantity" binding:"gte=0"`
}

// AddStockRequest increases an item's stock
type AddStockRequest struct {
	ItemID   int64  `json:"item_id" binding:"required,gt=0"`
	Quantity int    `json:"quantity" binding:"required,gt=0"`
	Reason   string `json:"reason"`
}

// CommitteeRequest is raised by the placement committee, for itself or for personnel
type CommitteeRequest struct {
	ItemID        int64  `json:"item_id" binding:"required,gt=0"`
	Quantity      int    `json:"quantity" binding:"required,gt=0"`
	RequesterType string `json:"requester_type" binding:"required,oneof=personnel committee"`
	Purpose       string `json:"purpose"`
}

// TechnicalRequest is raised directly at the technical store
type TechnicalRequest struct {
	ItemID   int64  `json:"item_id" binding:"required,gt=0"`
	Quantity int    `json:"quantity" binding:"required,gt=0"`
	Purpose  string `json:"purpose"`
}

// ReviewRequest approves or rejects a request
type ReviewRequest struct {
	Action          string `json:"action" binding:"required,oneof=approve reject"`
	RejectionReason string `json:"rejection_reason"`
}
