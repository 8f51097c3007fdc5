package models

// PushNotification is the payload handed to the push sender.
type PushNotification struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// PushResult is the per-device delivery outcome.
type PushResult struct {
	Token     string `json:"token"`
	MessageID string `json:"message_id,omitempty"`
	Err       error  `json:"-"`
}
