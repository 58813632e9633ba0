package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"daily-digits/internal/config"
	"daily-digits/internal/database"
	"daily-digits/internal/logger"
	"daily-digits/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	defaultHistoryCount = 10
	maxHistoryCount     = 50
	commandTimeout      = 10 * time.Second
)

// Service 机器人使用的预测服务操作，由 *service.PredictionService 实现
type Service interface {
	GetPredictions(ctx context.Context) (*service.PredictionResult, error)
	SaveResults(ctx context.Context, date string, digit1, digit2 *int) (*database.DailyRecord, error)
	GetHistory(ctx context.Context, limit int) ([]database.DailyRecord, error)
}

// Sender 发送消息，由 *tgbotapi.BotAPI 实现
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot Telegram机器人
type Bot struct {
	api           *tgbotapi.BotAPI
	sender        Sender
	svc           Service
	updateChannel tgbotapi.UpdatesChannel
	stopChannel   chan struct{}
}

// NewBot 创建新的Telegram机器人
func NewBot(cfg *config.Telegram, svc Service) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	api.Debug = false
	logger.Infof("Telegram bot authorized on account: %s", api.Self.UserName)

	// 配置更新
	u := tgbotapi.NewUpdate(0)
	u.Timeout = int(cfg.Timeout.Seconds())

	return &Bot{
		api:           api,
		sender:        api,
		svc:           svc,
		updateChannel: api.GetUpdatesChan(u),
		stopChannel:   make(chan struct{}),
	}, nil
}

// Start 启动机器人
func (b *Bot) Start() {
	logger.Infof("Starting Telegram bot...")
	go b.handleUpdates()
}

// Stop 停止机器人
func (b *Bot) Stop() {
	logger.Infof("Stopping Telegram bot...")
	close(b.stopChannel)
	b.api.StopReceivingUpdates()
	logger.Infof("Telegram bot stopped")
}

// handleUpdates 处理更新
func (b *Bot) handleUpdates() {
	for {
		select {
		case update, ok := <-b.updateChannel:
			if !ok {
				return
			}
			// 只处理私聊消息，忽略群组消息
			if update.Message != nil && update.Message.Chat.IsPrivate() {
				go b.handleMessage(update.Message)
			}
		case <-b.stopChannel:
			return
		}
	}
}

// handleMessage 处理消息
func (b *Bot) handleMessage(message *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	var reply string
	if message.IsCommand() {
		logger.Debugf("Received private command: %s from user: %d", message.Command(), message.Chat.ID)
		reply = b.handleCommand(ctx, message.Command(), message.CommandArguments())
	} else {
		reply = b.handleText(ctx, message.Text)
	}
	b.sendMessage(message.Chat.ID, reply)
}

// handleCommand 处理命令，返回回复文本
func (b *Bot) handleCommand(ctx context.Context, command, args string) string {
	switch command {
	case "start":
		return welcomeText
	case "help":
		return helpText
	case "predict":
		return b.predict(ctx)
	case "history":
		return b.history(ctx, args)
	case "latest":
		return b.latest(ctx)
	case "submit":
		return b.submit(ctx, args)
	default:
		return "Unknown command. Type /help to view available commands."
	}
}

// handleText 简单的关键词回复
func (b *Bot) handleText(ctx context.Context, text string) string {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "predict", "prediction", "预测":
		return b.predict(ctx)
	case "history", "历史":
		return b.history(ctx, "")
	case "latest", "最新":
		return b.latest(ctx)
	default:
		return "Please use commands or keywords, type /help for help."
	}
}

func (b *Bot) predict(ctx context.Context) string {
	result, err := b.svc.GetPredictions(ctx)
	if err != nil {
		logger.Errorf("Failed to get predictions: %v", err)
		return "❌ Failed to generate predictions, please try again later."
	}
	return formatPrediction(result)
}

func (b *Bot) history(ctx context.Context, args string) string {
	count := defaultHistoryCount
	if n, err := strconv.Atoi(strings.TrimSpace(args)); err == nil && n > 0 {
		count = n
	}
	if count > maxHistoryCount {
		count = maxHistoryCount
	}

	records, err := b.svc.GetHistory(ctx, count)
	if err != nil {
		logger.Errorf("Failed to get history: %v", err)
		return "❌ Failed to get history records, please try again later."
	}
	return formatHistory(records, count)
}

func (b *Bot) latest(ctx context.Context) string {
	records, err := b.svc.GetHistory(ctx, 1)
	if err != nil {
		logger.Errorf("Failed to get latest record: %v", err)
		return "❌ Failed to get the latest result, please try again later."
	}
	if len(records) == 0 {
		return "No results recorded yet."
	}
	return formatLatest(records[0])
}

// submit 参数格式：YYYY-MM-DD d1 d2
func (b *Bot) submit(ctx context.Context, args string) string {
	parts := strings.Fields(args)
	if len(parts) != 3 {
		return submitUsage
	}
	d1, err1 := strconv.Atoi(parts[1])
	d2, err2 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil {
		return submitUsage
	}

	record, err := b.svc.SaveResults(ctx, parts[0], &d1, &d2)
	if err != nil {
		if service.IsValidationError(err) {
			return "❌ " + err.Error()
		}
		logger.Errorf("Failed to save results from telegram: %v", err)
		return "❌ Failed to save results, please try again later."
	}
	return formatSaved(record)
}

// sendMessage 发送消息（仅发送给私聊）
func (b *Bot) sendMessage(chatID int64, text string) {
	// 正数ID为用户，负数ID为群组
	if chatID < 0 {
		logger.Debugf("Skipping message to group chat %d", chatID)
		return
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	if _, err := b.sender.Send(msg); err != nil {
		logger.Errorf("Failed to send message to user %d: %v", chatID, err)
	}
}

// GetBotInfo 获取机器人信息
func (b *Bot) GetBotInfo() map[string]interface{} {
	return map[string]interface{}{
		"username":   b.api.Self.UserName,
		"id":         b.api.Self.ID,
		"first_name": b.api.Self.FirstName,
		"is_bot":     b.api.Self.IsBot,
	}
}
