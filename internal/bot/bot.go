package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"chembot/internal/health"
	"chembot/internal/models"
	"chembot/internal/service"
	"chembot/pkg/config"
	appErrors "chembot/pkg/errors"
	"chembot/pkg/jobs"
)

// Bot is the Telegram front end. It authenticates callers against the
// admin allow-list or the student records and drives the service layer;
// it owns no persistent state of its own.
type Bot struct {
	api      *tgbotapi.BotAPI
	auth     *Authorizer
	students *service.StudentService
	lectures *service.LectureService
	admin    *service.AdminService

	states    *stateStore
	downloads *jobs.Queue
	metrics   *health.Metrics
	logger    *zap.Logger
}

// New connects to Telegram and assembles the bot.
func New(
	cfg *config.Config,
	students *service.StudentService,
	lectures *service.LectureService,
	admin *service.AdminService,
	metrics *health.Metrics,
	logger *zap.Logger,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Bot.Token)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	b := &Bot{
		api:      api,
		auth:     NewAuthorizer(cfg.Bot.AdminIDs),
		students: students,
		lectures: lectures,
		admin:    admin,
		states:   newStateStore(),
		metrics:  metrics,
		logger:   logger,
	}

	b.downloads = jobs.NewQueue("lecture-downloads", b.handleDownloadJob, jobs.QueueConfig{
		Workers:    cfg.Download.Workers,
		MaxRetries: cfg.Download.Retries,
		RetryDelay: cfg.Download.RetryDelay,
		Logger:     logger,
	})

	return b, nil
}

// Run consumes updates until the context is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	b.downloads.Start(ctx)
	defer b.downloads.Stop()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	b.logger.Sugar().Infow("bot started", "username", b.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.metrics.ObserveUpdate()
			b.dispatch(ctx, update)
		}
	}
}

func (b *Bot) dispatch(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Sugar().Errorw("handler panic", "recover", r)
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		b.logger.Warn("telegram send failed", zap.Error(err))
	}
}

func (b *Bot) reply(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) replyWithKeyboard(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = kb
	b.send(msg)
}

// edit replaces the message the callback originated from, falling back to
// a fresh message when editing fails (e.g. identical content).
func (b *Bot) edit(query *tgbotapi.CallbackQuery, text string, kb *tgbotapi.InlineKeyboardMarkup) {
	chatID := query.Message.Chat.ID
	var c tgbotapi.Chattable
	if kb != nil {
		edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, query.Message.MessageID, text, *kb)
		c = edit
	} else {
		c = tgbotapi.NewEditMessageText(chatID, query.Message.MessageID, text)
	}
	if _, err := b.api.Send(c); err != nil {
		b.reply(chatID, text)
	}
}

// replyError translates a service error into a user-facing message.
func (b *Bot) replyError(chatID int64, err error) {
	switch {
	case appErrors.Is(err, appErrors.ErrNotFound):
		b.reply(chatID, "❌ Not found.")
	case appErrors.Is(err, appErrors.ErrAlreadyExists):
		b.reply(chatID, "❌ Already exists.")
	case appErrors.Is(err, appErrors.ErrStoreUnavailable):
		b.reply(chatID, "❌ The database is unreachable, try again later.")
	case appErrors.Is(err, appErrors.ErrValidation):
		b.reply(chatID, "❌ "+appErrors.FromError(err).Message)
	default:
		b.reply(chatID, "❌ Something went wrong.")
	}
	b.logger.Warn("operation failed", zap.Error(err))
}

// role resolution: admin allow-list first, then student lookup.
func (b *Bot) isStudent(ctx context.Context, userID int64) bool {
	_, err := b.students.Get(ctx, userID)
	return err == nil
}

func formatStudentCard(st *models.Student, names map[string]string) string {
	text := "👤 " + st.DisplayName() + "\n" +
		"ID: " + models.FormatUserID(st.UserID) + "\n" +
		"📅 Schedule: " + st.Schedule + "\n"
	if st.Homework != "" {
		text += "📓 Homework: " + st.Homework + "\n"
	}
	if len(st.Lectures) == 0 {
		text += "📚 Lectures: none"
		return text
	}
	text += "📚 Lectures:\n"
	for _, id := range st.Lectures {
		name, ok := names[id]
		if !ok {
			name = id + " (no longer available)"
		}
		text += "  • " + name + "\n"
	}
	return text
}
