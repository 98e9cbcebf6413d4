package models

import "time"

// NotificationType tags the event a notification announces. The values are
// part of the wire contract consumed by the mobile clients.
type NotificationType string

const (
	// Fan-out to all active admins.
	NotifLicenseRequest   NotificationType = "license_request"
	NotifPaymentSubmitted NotificationType = "payment_submitted"

	// Targeted at one parent.
	NotifLicenseApproved  NotificationType = "license_approved"
	NotifLicenseRejected  NotificationType = "license_rejected"
	NotifLicenseCommented NotificationType = "license_commented"
	NotifLibretaPublished NotificationType = "libreta_published"
	NotifPaymentApproved  NotificationType = "payment_approved"
	NotifPaymentRejected  NotificationType = "payment_rejected"

	// Fan-out to all active parents.
	NotifEventCreated NotificationType = "event_created"

	NotifGeneral NotificationType = "general"
	NotifAlert   NotificationType = "alert"
)

// Notification is one per-recipient inbox row.
type Notification struct {
	ID        string           `db:"id" json:"id"`
	UserID    string           `db:"user_id" json:"user_id"`
	Type      NotificationType `db:"type" json:"type"`
	Title     string           `db:"title" json:"title"`
	Message   string           `db:"message" json:"message"`
	IsRead    bool             `db:"is_read" json:"is_read"`
	RelatedID *string          `db:"related_id" json:"related_id,omitempty"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt time.Time        `db:"updated_at" json:"updated_at"`
}
