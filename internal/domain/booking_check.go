package domain

import "fmt"

// Reason stable machine-readable code of a booking rejection
type Reason string

const (
	ReasonNone                 Reason = ""
	ReasonOrganizationInactive Reason = "organization_inactive"
	ReasonTrialExpired         Reason = "trial_expired"
	ReasonDoubleBooking        Reason = "double_booking"
	ReasonOutsideBusinessHours Reason = "outside_business_hours"
	ReasonClosed               Reason = "closed"
	ReasonNotFound             Reason = "not_found"
	ReasonValidationError      Reason = "validation_error"
)

const (
	msgOrganizationInactive = "Организация сейчас не принимает записи."
	msgTrialExpired         = "Пробный период организации истёк."
	msgDoubleBooking        = "Это время уже занято у выбранного специалиста."
	msgPoolFull             = "На это время нет свободных специалистов."
	msgClosed               = "Организация не работает в этот день."
	msgOutsideHours         = "Время вне рабочих часов. Мы работаем с %s до %s."
	msgNotFound             = "Организация, услуга или специалист не найдены."
	msgValidation           = "Некорректные параметры записи."
)

// BookingCheck result of the conflict gate. Unavailability is a value, not an error.
type BookingCheck struct {
	Available bool
	Reason    Reason
	Message   string
}

// Available a positive check
func Available() *BookingCheck {
	return &BookingCheck{Available: true}
}

// Reject a negative check with the default message for reason
func Reject(reason Reason) *BookingCheck {
	return &BookingCheck{Reason: reason, Message: DefaultMessage(reason)}
}

// RejectWithMessage a negative check with a custom message
func RejectWithMessage(reason Reason, message string) *BookingCheck {
	return &BookingCheck{Reason: reason, Message: message}
}

// RejectOutsideHours rejection naming the operating window
func RejectOutsideHours(window DayWindow) *BookingCheck {
	return &BookingCheck{
		Reason:  ReasonOutsideBusinessHours,
		Message: fmt.Sprintf(msgOutsideHours, window.OpensAt, window.ClosesAt),
	}
}

// RejectPoolFull double booking of an unassigned appointment
func RejectPoolFull() *BookingCheck {
	return &BookingCheck{Reason: ReasonDoubleBooking, Message: msgPoolFull}
}

// DefaultMessage human readable text for a reason
func DefaultMessage(reason Reason) string {
	switch reason {
	case ReasonOrganizationInactive:
		return msgOrganizationInactive
	case ReasonTrialExpired:
		return msgTrialExpired
	case ReasonDoubleBooking:
		return msgDoubleBooking
	case ReasonClosed:
		return msgClosed
	case ReasonOutsideBusinessHours:
		return fmt.Sprintf(msgOutsideHours, DefaultOpensAt, DefaultClosesAt)
	case ReasonNotFound:
		return msgNotFound
	case ReasonValidationError:
		return msgValidation
	default:
		return ""
	}
}

// MetricLabel label value for booking check metrics
func (c *BookingCheck) MetricLabel() string {
	if c.Available {
		return "available"
	}
	return string(c.Reason)
}
