package models

import "time"

// RequestStatus of a stationery request
type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestForwarded RequestStatus = "forwarded"
	RequestApproved  RequestStatus = "approved"
	RequestRejected  RequestStatus = "rejected"
)

// RequesterType identifies who a stationery request is raised for
type RequesterType string

const (
	RequesterPersonnel          RequesterType = "personnel"
	RequesterCommittee          RequesterType = "committee"
	RequesterTechnicalForwarded RequesterType = "technical-forwarded"
)

// StationeryItem is an inventory line
type StationeryItem struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	Unit              string    `json:"unit"`
	TotalQuantity     int       `json:"total_quantity"`
	AvailableQuantity int       `json:"available_quantity"`
	CreatedAt         time.Time `json:"created_at"`
}

// StationeryRequest asks for a quantity of one item
type StationeryRequest struct {
	ID              int64         `json:"id"`
	ItemID          int64         `json:"item_id"`
	ItemName        string        `json:"item_name"`
	Quantity        int           `json:"quantity"`
	RequesterType   RequesterType `json:"requester_type"`
	RequestedBy     int64         `json:"requested_by"`
	RequestedByName string        `json:"requested_by_name"`
	Purpose         string        `json:"purpose"`
	Status          RequestStatus `json:"status"`
	RejectionReason *string       `json:"rejection_reason,omitempty"`
	ReviewedBy      *int64        `json:"reviewed_by,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	ReviewedAt      *time.Time    `json:"reviewed_at,omitempty"`
}

// StockHistory is a signed change to an item's stock
type StockHistory struct {
	ID        int64     `json:"id"`
	ItemID    int64     `json:"item_id"`
	ItemName  string    `json:"item_name"`
	Change    int       `json:"change"`
	Reason    string    `json:"reason"`
	RequestID *int64    `json:"request_id,omitempty"`
	CreatedBy *int64    `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
