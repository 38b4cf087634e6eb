package model

import "time"

// ContactMessage is a note sent through the public contact form.
type ContactMessage struct {
	ID        uint64    `json:"id"`         // contact_messages.id
	Sender    string    `json:"sender"`     // contact_messages.sender
	Email     string    `json:"email"`      // contact_messages.email
	Subject   string    `json:"subject"`    // contact_messages.subject
	Content   string    `json:"content"`    // contact_messages.content
	IsRead    bool      `json:"is_read"`    // contact_messages.is_read
	ReplySent bool      `json:"reply_sent"` // contact_messages.reply_sent
	CreatedAt time.Time `json:"created_at"` // contact_messages.created_at
}

// Setting is a key/value entry of pousada_settings.
type Setting struct {
	Key         string    `json:"key"`         // pousada_settings.setting_key
	Value       *string   `json:"value"`       // pousada_settings.setting_value (nullable)
	Description *string   `json:"description"` // pousada_settings.description (nullable)
	UpdatedAt   time.Time `json:"updated_at"`  // pousada_settings.updated_at
}

// NewsletterSubscription is an email address signed up for the newsletter.
type NewsletterSubscription struct {
	ID        uint64    `json:"id"`         // newsletter_subscriptions.id
	Email     string    `json:"email"`      // newsletter_subscriptions.email
	CreatedAt time.Time `json:"created_at"` // newsletter_subscriptions.created_at
}
