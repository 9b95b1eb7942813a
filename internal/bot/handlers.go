package bot

import (
	"context"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"chembot/internal/models"
	"chembot/internal/service"
	appErrors "chembot/pkg/errors"
)

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	chatID := msg.Chat.ID
	isAdmin := b.auth.IsAdmin(userID)

	if msg.IsCommand() {
		b.states.clear(chatID)
		switch msg.Command() {
		case "start", "menu":
			b.showMainMenu(ctx, msg)
		case "help":
			b.reply(chatID, helpText(isAdmin))
		case "stats":
			if isAdmin {
				b.sendStats(ctx, chatID)
			}
		default:
			b.reply(chatID, "Unknown command, try /start.")
		}
		return
	}

	if msg.Document != nil {
		b.handleDocument(msg, isAdmin)
		return
	}

	if !isAdmin {
		b.showMainMenu(ctx, msg)
		return
	}

	b.handleAdminInput(ctx, msg)
}

func (b *Bot) showMainMenu(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID
	chatID := msg.Chat.ID

	if b.auth.IsAdmin(userID) {
		b.replyWithKeyboard(chatID, "🔧 Admin menu:", adminMenuKeyboard())
		return
	}
	if b.isStudent(ctx, userID) {
		b.replyWithKeyboard(chatID, "👋 Student menu:", studentMenuKeyboard())
		return
	}
	b.reply(chatID, "👋 Hi! Ask your tutor for access.\nYour ID: "+models.FormatUserID(userID))
}

// handleAdminInput advances the active multi-step flow with the admin's
// free-form text.
func (b *Bot) handleAdminInput(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)
	conv := b.states.get(chatID)

	switch conv.kind {
	case stateAwaitStudentID:
		userID, err := models.ParseUserID(text)
		if err != nil {
			b.reply(chatID, "Send a numeric Telegram ID.")
			return
		}
		conv.draftUserID = userID
		conv.kind = stateAwaitStudentUsername
		b.states.set(chatID, conv)
		b.reply(chatID, "Send the username (or \"-\" if none).")

	case stateAwaitStudentUsername:
		if text != "-" {
			conv.draftUsername = &text
		}
		conv.kind = stateAwaitStudentSchedule
		b.states.set(chatID, conv)
		b.reply(chatID, "Send the schedule (e.g. \"Mon,Wed 15:00-16:00\").")

	case stateAwaitStudentSchedule:
		_, err := b.students.Create(ctx, service.CreateStudentRequest{
			UserID:   conv.draftUserID,
			Username: conv.draftUsername,
			Schedule: text,
		})
		b.metrics.ObserveOperation("add_student", err)
		b.states.clear(chatID)
		if err != nil {
			b.replyError(chatID, err)
			return
		}
		b.reply(chatID, "✅ Student added.")

	case stateAwaitNewSchedule:
		err := b.students.SetSchedule(ctx, conv.targetStudent, text)
		b.metrics.ObserveOperation("update_student", err)
		b.states.clear(chatID)
		if err != nil {
			b.replyError(chatID, err)
			return
		}
		b.reply(chatID, "✅ Schedule updated.")

	case stateAwaitHomework:
		err := b.students.SetHomework(ctx, conv.targetStudent, text)
		b.metrics.ObserveOperation("update_student", err)
		b.states.clear(chatID)
		if err != nil {
			b.replyError(chatID, err)
			return
		}
		b.reply(chatID, "✅ Homework set.")

	case stateAwaitLectureName:
		lectureID, err := b.lectures.Create(ctx, text)
		b.metrics.ObserveOperation("add_lecture", err)
		if err != nil {
			b.states.clear(chatID)
			b.replyError(chatID, err)
			return
		}
		conv.lectureID = lectureID
		conv.kind = stateAwaitLectureFile
		b.states.set(chatID, conv)
		b.reply(chatID, "Now send the lecture file as a document.")

	case stateAwaitLectureFile:
		b.reply(chatID, "Waiting for a document. Send the lecture file or /start to cancel.")

	default:
		b.replyWithKeyboard(chatID, "🔧 Admin menu:", adminMenuKeyboard())
	}
}

func (b *Bot) handleDocument(msg *tgbotapi.Message, isAdmin bool) {
	chatID := msg.Chat.ID
	if !isAdmin {
		return
	}

	conv := b.states.get(chatID)
	if conv.kind != stateAwaitLectureFile {
		b.reply(chatID, "Use ➕ Add lecture first, then send the file.")
		return
	}

	b.enqueueDownload(conv.lectureID, msg.Document, chatID)
	b.states.clear(chatID)
	b.reply(chatID, "⏳ Saving the file...")
}

func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		b.logger.Sugar().Debugw("callback ack failed", "error", err)
	}

	userID := query.From.ID
	data := query.Data

	if strings.HasPrefix(data, "s:") {
		b.handleStudentCallback(ctx, query)
		return
	}
	if !b.auth.IsAdmin(userID) {
		return
	}
	b.handleAdminCallback(ctx, query)
}

func (b *Bot) handleAdminCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	chatID := query.Message.Chat.ID
	data := query.Data

	switch {
	case data == cbAdminMenu:
		kb := adminMenuKeyboard()
		b.edit(query, "🔧 Admin menu:", &kb)

	case data == cbStudentsMenu:
		kb := studentsMenuKeyboard()
		b.edit(query, "👥 Students:", &kb)

	case data == cbLecturesMenu:
		kb := lecturesMenuKeyboard()
		b.edit(query, "📚 Lectures:", &kb)

	case data == cbExportMenu:
		kb := exportMenuKeyboard()
		b.edit(query, "📤 Export:", &kb)

	case data == cbStats:
		b.sendStats(ctx, chatID)

	case data == cbStudentAdd:
		b.states.set(chatID, &conversation{kind: stateAwaitStudentID})
		b.edit(query, "Send the student's Telegram ID.", nil)

	case data == cbStudentList:
		students, err := b.students.List(ctx)
		b.metrics.ObserveOperation("list_students", err)
		if err != nil {
			b.replyError(chatID, err)
			return
		}
		if len(students) == 0 {
			kb := studentsMenuKeyboard()
			b.edit(query, "No students yet.", &kb)
			return
		}
		kb := studentListKeyboard(students)
		b.edit(query, "Pick a student:", &kb)

	case strings.HasPrefix(data, cbStudentView):
		b.showStudentCard(ctx, query, strings.TrimPrefix(data, cbStudentView))

	case strings.HasPrefix(data, cbStudentDelete):
		userID, err := models.ParseUserID(strings.TrimPrefix(data, cbStudentDelete))
		if err != nil {
			return
		}
		err = b.students.Delete(ctx, userID)
		b.metrics.ObserveOperation("delete_student", err)
		if err != nil {
			b.replyError(chatID, err)
			return
		}
		kb := studentsMenuKeyboard()
		b.edit(query, "✅ Student deleted.", &kb)

	case strings.HasPrefix(data, cbStudentSched):
		userID, err := models.ParseUserID(strings.TrimPrefix(data, cbStudentSched))
		if err != nil {
			return
		}
		b.states.set(chatID, &conversation{kind: stateAwaitNewSchedule, targetStudent: userID})
		b.edit(query, "Send the new schedule.", nil)

	case strings.HasPrefix(data, cbStudentHW):
		userID, err := models.ParseUserID(strings.TrimPrefix(data, cbStudentHW))
		if err != nil {
			return
		}
		b.states.set(chatID, &conversation{kind: stateAwaitHomework, targetStudent: userID})
		b.edit(query, "Send the homework text.", nil)

	case strings.HasPrefix(data, cbStudentLinks):
		userID, err := models.ParseUserID(strings.TrimPrefix(data, cbStudentLinks))
		if err != nil {
			return
		}
		b.showLinkMenu(ctx, query, userID)

	case strings.HasPrefix(data, cbLinkAdd):
		b.toggleLink(ctx, query, strings.TrimPrefix(data, cbLinkAdd), true)

	case strings.HasPrefix(data, cbLinkRemove):
		b.toggleLink(ctx, query, strings.TrimPrefix(data, cbLinkRemove), false)

	case data == cbLectureAdd:
		b.states.set(chatID, &conversation{kind: stateAwaitLectureName})
		b.edit(query, "Send the lecture name.", nil)

	case data == cbLectureList:
		lectures, err := b.lectures.List(ctx)
		b.metrics.ObserveOperation("list_lectures", err)
		if err != nil {
			b.replyError(chatID, err)
			return
		}
		if len(lectures) == 0 {
			kb := lecturesMenuKeyboard()
			b.edit(query, "No lectures yet.", &kb)
			return
		}
		kb := lectureListKeyboard(lectures, cbLecturesMenu)
		b.edit(query, "Lectures (tap to delete):", &kb)

	case strings.HasPrefix(data, cbLectureDelete):
		lectureID := strings.TrimPrefix(data, cbLectureDelete)
		err := b.lectures.Delete(ctx, lectureID)
		b.metrics.ObserveOperation("delete_lecture", err)
		if err != nil {
			b.replyError(chatID, err)
			return
		}
		kb := lecturesMenuKeyboard()
		b.edit(query, "✅ Lecture deleted. Assigned students keep the stale reference until cleanup.", &kb)

	case data == cbExportStudentsCSV:
		b.sendExport(ctx, chatID, "students.csv", b.admin.ExportStudentsCSV)
	case data == cbExportStudentsPDF:
		b.sendExport(ctx, chatID, "students.pdf", b.admin.ExportStudentsPDF)
	case data == cbExportLecturesCSV:
		b.sendExport(ctx, chatID, "lectures.csv", b.admin.ExportLecturesCSV)
	case data == cbExportLecturesPDF:
		b.sendExport(ctx, chatID, "lectures.pdf", b.admin.ExportLecturesPDF)
	}
}

func (b *Bot) showStudentCard(ctx context.Context, query *tgbotapi.CallbackQuery, rawID string) {
	chatID := query.Message.Chat.ID
	userID, err := models.ParseUserID(rawID)
	if err != nil {
		return
	}

	student, err := b.students.Get(ctx, userID)
	b.metrics.ObserveOperation("get_student", err)
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	names, err := b.lectureNames(ctx)
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	kb := studentCardKeyboard(userID)
	b.edit(query, formatStudentCard(student, names), &kb)
}

func (b *Bot) showLinkMenu(ctx context.Context, query *tgbotapi.CallbackQuery, userID int64) {
	chatID := query.Message.Chat.ID

	student, err := b.students.Get(ctx, userID)
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	lectures, err := b.lectures.List(ctx)
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	if len(lectures) == 0 {
		kb := studentCardKeyboard(userID)
		b.edit(query, "The catalog is empty, add a lecture first.", &kb)
		return
	}
	kb := linkKeyboard(student, lectures)
	b.edit(query, "Toggle lectures for "+student.DisplayName()+":", &kb)
}

// toggleLink handles al:<user_id>:<lecture_id> / rl:<user_id>:<lecture_id>.
func (b *Bot) toggleLink(ctx context.Context, query *tgbotapi.CallbackQuery, payload string, assign bool) {
	chatID := query.Message.Chat.ID
	parts := strings.SplitN(payload, ":", 2)
	if len(parts) != 2 {
		return
	}
	userID, err := models.ParseUserID(parts[0])
	if err != nil {
		return
	}
	lectureID := parts[1]

	if assign {
		err = b.students.AssignLecture(ctx, userID, lectureID)
		b.metrics.ObserveOperation("assign_lecture", err)
	} else {
		err = b.students.UnassignLecture(ctx, userID, lectureID)
		b.metrics.ObserveOperation("unassign_lecture", err)
	}
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	b.showLinkMenu(ctx, query, userID)
}

func (b *Bot) handleStudentCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	chatID := query.Message.Chat.ID
	userID := query.From.ID
	data := query.Data

	student, err := b.students.Get(ctx, userID)
	if err != nil {
		if appErrors.Is(err, appErrors.ErrNotFound) {
			b.reply(chatID, "Ask your tutor for access. Your ID: "+models.FormatUserID(userID))
			return
		}
		b.replyError(chatID, err)
		return
	}

	switch {
	case data == cbMySchedule:
		kb := studentMenuKeyboard()
		b.edit(query, "📅 Your schedule:\n"+student.Schedule, &kb)

	case data == cbMyHomework:
		homework := student.Homework
		if homework == "" {
			homework = "No homework set."
		}
		kb := studentMenuKeyboard()
		b.edit(query, "📓 Homework:\n"+homework, &kb)

	case data == cbMyLectures:
		if len(student.Lectures) == 0 {
			kb := studentMenuKeyboard()
			b.edit(query, "You have no lectures yet.", &kb)
			return
		}
		names, err := b.lectureNames(ctx)
		if err != nil {
			b.replyError(chatID, err)
			return
		}
		kb := myLecturesKeyboard(student, names)
		b.edit(query, "📚 Your lectures:", &kb)

	case strings.HasPrefix(data, cbMyLecture):
		lectureID := strings.TrimPrefix(data, cbMyLecture)
		if !student.HasLecture(lectureID) {
			return
		}
		b.sendLectureFile(ctx, chatID, lectureID)
	}
}

func (b *Bot) sendLectureFile(ctx context.Context, chatID int64, lectureID string) {
	path, err := b.lectures.FilePath(ctx, lectureID)
	if err != nil {
		if appErrors.Is(err, appErrors.ErrNotFound) {
			b.reply(chatID, "This lecture is no longer available.")
			return
		}
		b.replyError(chatID, err)
		return
	}
	b.send(tgbotapi.NewDocument(chatID, tgbotapi.FilePath(path)))
}

func (b *Bot) sendStats(ctx context.Context, chatID int64) {
	stats, err := b.admin.Stats(ctx)
	b.metrics.ObserveOperation("stats", err)
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	b.reply(chatID,
		"📊 Stats\n"+
			"Students: "+strconv.Itoa(stats.Students)+"\n"+
			"Lectures: "+strconv.Itoa(stats.Lectures)+"\n"+
			"Total keys: "+strconv.FormatInt(stats.TotalKeys, 10))
}

func (b *Bot) sendExport(ctx context.Context, chatID int64, filename string, render func(context.Context) ([]byte, error)) {
	data, err := render(ctx)
	b.metrics.ObserveOperation("export", err)
	if err != nil {
		b.replyError(chatID, err)
		return
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: filename, Bytes: data})
	b.send(doc)
}

func (b *Bot) lectureNames(ctx context.Context) (map[string]string, error) {
	lectures, err := b.lectures.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(lectures))
	for _, l := range lectures {
		names[l.ID] = l.Name
	}
	return names, nil
}

func helpText(isAdmin bool) string {
	if isAdmin {
		return "🤖 Tutor bot — admin help\n\n" +
			"/start — main menu\n" +
			"/stats — store statistics\n\n" +
			"From the menu you can add and edit students, change schedules, " +
			"set homework, upload lecture files and assign them to students."
	}
	return "🤖 Tutor bot — help\n\n" +
		"/start — main menu\n\n" +
		"The menu shows your schedule, homework and lecture files."
}
