package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-CallBookingService/pkg/types"
)

// Response модель ответа со списком доступных слотов
type Response struct {
	Date  time.Time // Текущий день, на который выдаются слоты
	Slots []Slot    // Свободные слоты, еще не начавшиеся
}

// Slot модель временного слота
type Slot struct {
	StartTime types.TimeString // Время начала слота (например, "10:00")
	EndTime   types.TimeString // Время окончания слота
}
