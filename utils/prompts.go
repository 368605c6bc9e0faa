package utils

import "fmt"

// Понедельник = 0 .. воскресенье = 6.
var weekdayNames = [7]string{
	"Понедельник", "Вторник", "Среда", "Четверг", "Пятница", "Суббота", "Воскресенье",
}

// WeekdayName — русское название дня недели.
func WeekdayName(wd int) string {
	if wd < 0 || wd > 6 {
		return "?"
	}
	return weekdayNames[wd]
}

// HabitAnalysisPrompt собирает промпт для AI-анализа привычки.
func HabitAnalysisPrompt(title string, total, bestWeekday, worstWeekday int, avgRun float64, maxRun int) string {
	return fmt.Sprintf(`Ты коуч по привычкам.
Дай 3–5 инсайтов и рекомендаций.

Привычка: %s
Всего выполнений: %d
Лучший день: %s
Худший день: %s
Средний streak: %.1f
Максимальный streak: %d
`,
		title, total, WeekdayName(bestWeekday), WeekdayName(worstWeekday), avgRun, maxRun)
}
