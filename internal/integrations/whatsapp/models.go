package whatsapp

// SendTextRequest тело запроса message/sendText
type SendTextRequest struct {
	Number string `json:"number"`
	Text   string `json:"text"`
}

// ErrorResponse модель ошибки шлюза
type ErrorResponse struct {
	Message string `json:"message"`
}
