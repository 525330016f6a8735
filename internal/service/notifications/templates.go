package notifications

import (
	"strings"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

const (
	messageDateFormat = "02.01.2006"
	messageTimeFormat = "15:04"
)

type messageTemplate struct {
	subject string
	body    string
}

var messageTemplates = map[domain.NotificationTemplate]messageTemplate{
	domain.TemplateBookingReceived: {
		subject: "Заявка на запись получена",
		body:    "Здравствуйте, {customer_name}! {business_name} получил вашу заявку: {service}, {date} в {time}. Мы сообщим, когда запись будет подтверждена.",
	},
	domain.TemplateConfirmation: {
		subject: "Запись подтверждена",
		body:    "Здравствуйте, {customer_name}! Ваша запись в {business_name} подтверждена: {service}, {date} в {time}.",
	},
	domain.TemplateReminder24h: {
		subject: "Напоминание о записи",
		body:    "{customer_name}, напоминаем: завтра, {date} в {time}, ждём вас в {business_name}. Услуга: {service}.",
	},
	domain.TemplateReminder2h: {
		subject: "Скоро ваша запись",
		body:    "{customer_name}, через два часа, в {time}, ждём вас в {business_name}. Услуга: {service}.",
	},
	domain.TemplateFeedback: {
		subject: "Как прошёл визит?",
		body:    "Спасибо, что выбрали {business_name}, {customer_name}! Будем рады вашему отзыву об услуге «{service}».",
	},
	domain.TemplateNoShow: {
		subject: "Мы вас не дождались",
		body:    "{customer_name}, мы ждали вас {date} в {time} ({service}). Чтобы записаться снова, свяжитесь с {business_name}.",
	},
	domain.TemplateCancellation: {
		subject: "Запись отменена",
		body:    "{customer_name}, ваша запись в {business_name} ({service}, {date} в {time}) отменена.",
	},
	domain.TemplateRescheduled: {
		subject: "Запись перенесена",
		body:    "{customer_name}, ваша запись в {business_name} ({service}) перенесена на {date} в {time}.",
	},
}

// Render подставляет плейсхолдеры шаблона. Дата и время выводятся в часовом поясе организации.
func Render(template domain.NotificationTemplate, event domain.AppointmentEvent, loc *time.Location) (subject string, message string) {
	tpl, ok := messageTemplates[template]
	if !ok {
		return "", ""
	}

	startsAt := event.Appointment.ScheduledAt.In(loc)

	var customerName, businessName string
	if event.Customer != nil {
		customerName = event.Customer.Name
	}
	if event.Organization != nil {
		businessName = event.Organization.Name
	}

	replacer := strings.NewReplacer(
		"{customer_name}", customerName,
		"{service}", event.ServiceName,
		"{business_name}", businessName,
		"{date}", startsAt.Format(messageDateFormat),
		"{time}", startsAt.Format(messageTimeFormat),
	)

	return tpl.subject, replacer.Replace(tpl.body)
}
