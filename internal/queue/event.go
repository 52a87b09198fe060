// Package queue defines message payloads exchanged over the message broker
// and the background consumers that drain them.
package queue

// Queue names. Both queues are durable and use the default exchange.
const (
	MailQueueName    = "mail.outbound"
	ListingQueueName = "listing.published"
)

// MailRequestedEvent asks the mail consumer to deliver one message. Account
// activation and password-reset links are sent this way so a slow or dead
// SMTP relay never blocks the request path.
type MailRequestedEvent struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// ListingPublishedEvent is emitted when a publishing payment is recorded for
// a property. It carries enough information for downstream consumers to log
// or notify without querying the primary database.
type ListingPublishedEvent struct {
	PropertyID uint64 `json:"property_id"`
	Title      string `json:"title"`
	LandlordID uint64 `json:"landlord_id"`
	Amount     string `json:"amount"`
	Method     string `json:"method"`
	PaidAt     string `json:"paid_at"`
}
