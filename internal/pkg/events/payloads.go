package events

// OpeningCreatedEvent is published once per fan-out create
type OpeningCreatedEvent struct {
	IDs           []int64 `json:"ids"`
	Name          string  `json:"name"`
	Position      string  `json:"position"`
	TargetingMode string  `json:"targetingMode"`
}

// MessageCreatedEvent is published once per fan-out create
type MessageCreatedEvent struct {
	IDs           []int64 `json:"ids"`
	Title         string  `json:"title"`
	TargetingMode string  `json:"targetingMode"`
}

// SeminarCreatedEvent is published once per fan-out create
type SeminarCreatedEvent struct {
	IDs         []int64 `json:"ids"`
	Title       string  `json:"title"`
	SeminarDate string  `json:"seminarDate"`
}

// AttendanceMarkedEvent is published for every attendance change
type AttendanceMarkedEvent struct {
	SeminarID int64  `json:"seminarId"`
	StudentID int64  `json:"studentId"`
	Status    string `json:"status"`
	Source    string `json:"source"`
}

// QRStatusChangedEvent is published when a QR gate opens or closes
type QRStatusChangedEvent struct {
	SeminarID int64 `json:"seminarId"`
	Active    bool  `json:"active"`
}

// ApplicationSubmittedEvent is published when a student applies
type ApplicationSubmittedEvent struct {
	CompanyID int64 `json:"companyId"`
	StudentID int64 `json:"studentId"`
}

// StationeryReviewedEvent is published when a request is approved or rejected
type StationeryReviewedEvent struct {
	RequestID int64  `json:"requestId"`
	ItemID    int64  `json:"itemId"`
	Quantity  int    `json:"quantity"`
	Status    string `json:"status"`
}
