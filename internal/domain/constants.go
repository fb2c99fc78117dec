package domain

// Slot constants
const (
	SlotDurationMinutes = 15
	SlotAlignment       = 15 // допустимые минуты: 00, 15, 30, 45
)

// Dispatch defaults
const (
	DefaultLookaheadMinutes = 15
	LeadWindowMinutes       = 1 // ширина окна напоминания равна периоду тика
)

// Business validation constants
const (
	MaxReasonLength  = 500
	NoReasonProvided = "no reason provided"
)

// Notification patterns (routing keys транспорта уведомлений)
const (
	PatternEmail = "send.email"
	PatternSMS   = "send.sms"
	PatternPush  = "send.push"
	PatternAdmin = "send.admin"
)

// DateFormat формат даты бронирования YYYY-MM-DD
const DateFormat = "2006-01-02"

// ReminderRule напоминание по каналу: за сколько минут до слота и через какой pattern
type ReminderRule struct {
	Channel     Channel
	LeadMinutes int
	Pattern     string
}

// ReminderSchedule фиксированное расписание напоминаний (не настраивается для бронирования)
// Окна не пересекаются, поэтому одно бронирование получает до трех напоминаний на разных тиках
var ReminderSchedule = []ReminderRule{
	{Channel: ChannelEmail, LeadMinutes: 10, Pattern: PatternEmail},
	{Channel: ChannelSMS, LeadMinutes: 5, Pattern: PatternSMS},
	{Channel: ChannelPush, LeadMinutes: 1, Pattern: PatternPush},
}

// MaxReminderLeadMinutes наибольшее упреждение среди каналов
func MaxReminderLeadMinutes() int {
	maxLead := 0
	for _, rule := range ReminderSchedule {
		if rule.LeadMinutes > maxLead {
			maxLead = rule.LeadMinutes
		}
	}
	return maxLead
}
