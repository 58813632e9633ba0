package telegram

import (
	"fmt"
	"strings"

	"daily-digits/internal/database"
	"daily-digits/internal/service"
)

const welcomeText = `🎯 Welcome to Daily Digits Bot!

🤖 I generate daily predictions for the two digits from recorded history:
• 🔮 Today's predictions
• 📈 Recent results
• 📝 Submit the actual results

📝 Available commands:
/predict - Today's predictions
/latest - Latest recorded result
/history - Recent results
/submit - Record a day's result
/help - Help information

⚠️ Note: This bot only provides services in private chats`

const helpText = `📖 Command Help:

/start - Start using the bot
/predict - Generate today's predictions
/latest - Show the most recent result
/history [n] - Show the last n results (default 10, max 50)
/submit YYYY-MM-DD d1 d2 - Save the actual digits for a day
/help - Show this help information

💡 Predictions are drawn from candidates built on the last six months of results and are for reference only.`

const submitUsage = "Usage: `/submit YYYY-MM-DD d1 d2`"

// formatPrediction 格式化预测消息
func formatPrediction(result *service.PredictionResult) string {
	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("🔮 *Predictions for %s*\n\n", result.Date))
	builder.WriteString(fmt.Sprintf("Digit1: `%d`\n", result.Digit1))
	builder.WriteString(fmt.Sprintf("Digit2: `%d`\n\n", result.Digit2))

	if result.Insights.RecentAvg1 != nil && result.Insights.RecentAvg2 != nil {
		builder.WriteString(fmt.Sprintf("📊 Recent averages: `%d` / `%d`\n",
			*result.Insights.RecentAvg1, *result.Insights.RecentAvg2))
	}
	builder.WriteString(fmt.Sprintf("📅 Day: %s\n", result.Insights.DayOfWeek))
	builder.WriteString(fmt.Sprintf("📚 Data points: %d\n\n", result.DataPoints))
	builder.WriteString(result.Message)

	return builder.String()
}

// formatHistory 格式化历史记录，最新的在最下面
func formatHistory(records []database.DailyRecord, requested int) string {
	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("📈 *Recent %d Results*\n\n", requested))

	if len(records) == 0 {
		builder.WriteString("No results recorded yet.")
		return builder.String()
	}

	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		builder.WriteString(fmt.Sprintf("`%s` %s丨`%d` `%d`\n",
			r.Date.Format(database.DateLayout), r.Date.Weekday().String()[:3], r.Digit1, r.Digit2))
	}

	return builder.String()
}

// formatLatest 格式化最新一条记录
func formatLatest(r database.DailyRecord) string {
	return fmt.Sprintf("🎯 *Latest Result*\n\nDate: `%s` (%s)\nDigit1: `%d`\nDigit2: `%d`",
		r.Date.Format(database.DateLayout), r.Date.Weekday(), r.Digit1, r.Digit2)
}

// formatSaved 格式化保存成功消息
func formatSaved(r *database.DailyRecord) string {
	return fmt.Sprintf("✅ Results saved for `%s`: `%d` `%d`",
		r.Date.Format(database.DateLayout), r.Digit1, r.Digit2)
}
