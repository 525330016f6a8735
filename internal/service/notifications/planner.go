package notifications

import (
	"slices"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

type reminder struct {
	template domain.NotificationTemplate
	lead     time.Duration
}

// напоминания уходят только в WhatsApp
var reminders = []reminder{
	{template: domain.TemplateReminder24h, lead: 24 * time.Hour},
	{template: domain.TemplateReminder2h, lead: 2 * time.Hour},
}

var reminderTemplates = []domain.NotificationTemplate{domain.TemplateReminder24h, domain.TemplateReminder2h}

var allChannels = []domain.NotificationChannel{domain.ChannelEmail, domain.ChannelWhatsApp}

// Plan строит уведомления для события. Канал используется, только если у клиента есть контакт.
func Plan(event domain.AppointmentEvent, loc *time.Location, now time.Time) []*domain.Notification {
	if event.Appointment == nil || event.Customer == nil {
		return nil
	}

	var planned []*domain.Notification
	add := func(template domain.NotificationTemplate, channels []domain.NotificationChannel, at time.Time) {
		subject, message := Render(template, event, loc)
		for _, ch := range channels {
			n := newNotification(event, ch, template, at)
			if n == nil {
				continue
			}
			n.Subject = &subject
			n.Message = message
			planned = append(planned, n)
		}
	}

	appt := event.Appointment
	addReminder := func() {
		for _, r := range reminders {
			remindAt := appt.ScheduledAt.Add(-r.lead)
			if remindAt.After(now) {
				add(r.template, []domain.NotificationChannel{domain.ChannelWhatsApp}, remindAt)
			}
		}
	}

	switch event.Kind {
	case domain.EventAppointmentCreated:
		if appt.Status == domain.StatusConfirmed {
			add(domain.TemplateConfirmation, allChannels, now)
		} else {
			add(domain.TemplateBookingReceived, allChannels, now)
		}
		addReminder()
	case domain.EventAppointmentConfirmed:
		add(domain.TemplateConfirmation, allChannels, now)
		addReminder()
	case domain.EventAppointmentCompleted:
		add(domain.TemplateFeedback, []domain.NotificationChannel{domain.ChannelEmail}, now)
	case domain.EventAppointmentNoShow:
		add(domain.TemplateNoShow, allChannels, now)
	case domain.EventAppointmentCancelled:
		add(domain.TemplateCancellation, allChannels, now)
	case domain.EventAppointmentRescheduled:
		add(domain.TemplateRescheduled, allChannels, now)
		addReminder()
	}

	return planned
}

// Superseded шаблоны ожидающих уведомлений, которые событие делает неактуальными.
// all=true - отменить все ожидающие уведомления записи.
func Superseded(kind domain.AppointmentEventKind) (templates []domain.NotificationTemplate, all bool) {
	switch kind {
	case domain.EventAppointmentCancelled:
		return nil, true
	case domain.EventAppointmentRescheduled:
		// неотправленные сообщения со старым временем
		return append([]domain.NotificationTemplate{
			domain.TemplateBookingReceived,
			domain.TemplateConfirmation,
		}, reminderTemplates...), false
	case domain.EventAppointmentConfirmed,
		domain.EventAppointmentCompleted,
		domain.EventAppointmentNoShow:
		return slices.Clone(reminderTemplates), false
	default:
		return nil, false
	}
}

func newNotification(event domain.AppointmentEvent, channel domain.NotificationChannel, template domain.NotificationTemplate, at time.Time) *domain.Notification {
	customer := event.Customer
	n := &domain.Notification{
		OrganizationID: event.Appointment.OrganizationID,
		AppointmentID:  &event.Appointment.ID,
		CustomerID:     &customer.ID,
		Channel:        channel,
		Template:       template,
		Status:         domain.NotificationPending,
		ScheduledFor:   at,
	}

	switch channel {
	case domain.ChannelEmail:
		if customer.Email == nil || *customer.Email == "" {
			return nil
		}
		n.RecipientEmail = customer.Email
	case domain.ChannelWhatsApp:
		if customer.Phone == nil || *customer.Phone == "" {
			return nil
		}
		n.RecipientPhone = customer.Phone
	default:
		return nil
	}

	return n
}
