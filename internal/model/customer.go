package model

import "time"

// Peripheral records: plain keyed CRUD with no cross-entity invariants.

type CustomerAddress struct {
	Principal    bool   `json:"principal"`
	Address      string `json:"address"`
	Number       string `json:"number"`
	Neighborhood string `json:"neighborhood,omitempty"`
	City         string `json:"city,omitempty"`
	State        string `json:"state,omitempty"`
	Country      string `json:"country,omitempty"`
	Status       string `json:"status"`
}

type CustomerPhone struct {
	Principal   bool   `json:"principal"`
	PhoneNumber string `json:"phone_number"`
	Status      string `json:"status"`
}

type CustomerEmail struct {
	Principal    bool   `json:"principal"`
	EmailAddress string `json:"email_address"`
	Status       string `json:"status"`
}

// Customer is a debtor record.
type Customer struct {
	ID          string `json:"id"`
	WorkspaceID string `json:"workspaceId"`
	ExternalID  string `json:"external_id,omitempty"`
	FullName    string `json:"full_name"`
	Document    string `json:"document,omitempty"`
	// Status is normal, blocked or suspended; CollectionStatus is current,
	// late or defaulted.
	Status           string            `json:"status,omitempty"`
	CollectionStatus string            `json:"collection_status,omitempty"`
	SegmentID        string            `json:"segmentId,omitempty"`
	Addresses        []CustomerAddress `json:"addresses,omitempty"`
	Phones           []CustomerPhone   `json:"phones,omitempty"`
	Emails           []CustomerEmail   `json:"emails,omitempty"`
}

// CustomerSegmentRule is a single membership expression of a segment.
type CustomerSegmentRule struct {
	CollectionName string `json:"collection_name"`
	Expression     string `json:"expression"`
}

// CustomerSegment groups customers for targeting.
type CustomerSegment struct {
	ID          string                `json:"id"`
	WorkspaceID string                `json:"workspaceId"`
	Name        string                `json:"name"`
	Description string                `json:"description,omitempty"`
	Priority    int                   `json:"priority,omitempty"`
	Rules       []CustomerSegmentRule `json:"rules,omitempty"`
}

// CustomerTimelineEvent records something that happened to a customer
// (a send, a delivery outcome, a status change).
type CustomerTimelineEvent struct {
	ID          string                 `json:"id"`
	WorkspaceID string                 `json:"workspaceId"`
	CustomerID  string                 `json:"customerId"`
	Type        string                 `json:"type"`
	Date        time.Time              `json:"date"`
	Title       string                 `json:"title"`
	Description string                 `json:"description,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}
