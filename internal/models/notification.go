// internal/models/notification.go
package models

// Notification records one recruiter alert about a match.
type Notification struct {
	ID          string                 `json:"id"`
	RecipientID string                 `json:"recipientId"`
	Type        string                 `json:"type"`    // "hot_match"
	Channel     string                 `json:"channel"` // "email", "sms"
	Status      string                 `json:"status"`  // "sent", "failed", "disabled"
	Payload     map[string]interface{} `json:"payload"`
	SentAt      string                 `json:"sentAt"`
	CreatedAt   string                 `json:"createdAt"`
}

// Recipient is the contact record of a recruiter.
type Recipient struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Name  string `json:"name"`
}
