package dispatch_notifications

import "github.com/google/uuid"

// DispatchRequest HTTP request model, пустое тело допустимо
type DispatchRequest struct {
	NotificationID *uuid.UUID `json:"notificationId,omitempty"`
	BatchSize      int        `json:"batchSize,omitempty"`
}
