package dtos

// EmailNotification is the event published to the email-notifications
// topic; the notification service owns delivery.
type EmailNotification struct {
	RecipientEmail   string `json:"recipient_email"`
	RecipientName    string `json:"recipient_name"`
	Subject          string `json:"subject"`
	Message          string `json:"message"`
	NotificationType string `json:"notification_type"`
}
