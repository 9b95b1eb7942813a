package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"chembot/internal/models"
)

// Callback data prefixes. Telegram caps callback data at 64 bytes, so the
// two-ID actions (student + lecture) use the shortest prefixes.
const (
	cbAdminMenu    = "a:menu"
	cbStudentsMenu = "a:students"
	cbLecturesMenu = "a:lectures"
	cbStats        = "a:stats"
	cbExportMenu   = "a:export"

	cbStudentAdd    = "a:st:add"
	cbStudentList   = "a:st:list"
	cbStudentView   = "a:st:view:"
	cbStudentDelete = "a:st:del:"
	cbStudentSched  = "a:st:sched:"
	cbStudentHW     = "a:st:hw:"
	cbStudentLinks  = "a:st:lec:"

	cbLectureAdd    = "a:lec:add"
	cbLectureList   = "a:lec:list"
	cbLectureDelete = "a:lec:del:"

	cbLinkAdd    = "al:"
	cbLinkRemove = "rl:"

	cbExportStudentsCSV = "a:export:st_csv"
	cbExportStudentsPDF = "a:export:st_pdf"
	cbExportLecturesCSV = "a:export:lec_csv"
	cbExportLecturesPDF = "a:export:lec_pdf"

	cbMySchedule = "s:schedule"
	cbMyHomework = "s:homework"
	cbMyLectures = "s:lectures"
	cbMyLecture  = "s:lec:"
)

func adminMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👥 Students", cbStudentsMenu),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📚 Lectures", cbLecturesMenu),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 Stats", cbStats),
			tgbotapi.NewInlineKeyboardButtonData("📤 Export", cbExportMenu),
		),
	)
}

func studentsMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ Add student", cbStudentAdd),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📋 List students", cbStudentList),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("↩️ Back", cbAdminMenu),
		),
	)
}

func lecturesMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ Add lecture", cbLectureAdd),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📖 List lectures", cbLectureList),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("↩️ Back", cbAdminMenu),
		),
	)
}

func exportMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Students CSV", cbExportStudentsCSV),
			tgbotapi.NewInlineKeyboardButtonData("Students PDF", cbExportStudentsPDF),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Lectures CSV", cbExportLecturesCSV),
			tgbotapi.NewInlineKeyboardButtonData("Lectures PDF", cbExportLecturesPDF),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("↩️ Back", cbAdminMenu),
		),
	)
}

func studentMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📅 My schedule", cbMySchedule),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📓 My homework", cbMyHomework),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📚 My lectures", cbMyLectures),
		),
	)
}

func studentCardKeyboard(userID int64) tgbotapi.InlineKeyboardMarkup {
	id := models.FormatUserID(userID)
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✏️ Schedule", cbStudentSched+id),
			tgbotapi.NewInlineKeyboardButtonData("📓 Homework", cbStudentHW+id),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📚 Lectures", cbStudentLinks+id),
			tgbotapi.NewInlineKeyboardButtonData("🗑️ Delete", cbStudentDelete+id),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("↩️ Back", cbStudentList),
		),
	)
}

func studentListKeyboard(students []models.Student) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(students)+1)
	for _, st := range students {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(st.DisplayName(), cbStudentView+models.FormatUserID(st.UserID)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("↩️ Back", cbStudentsMenu),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func lectureListKeyboard(lectures []models.Lecture, back string) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(lectures)+1)
	for _, l := range lectures {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑️ "+l.Name, cbLectureDelete+l.ID),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("↩️ Back", back),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// linkKeyboard renders one toggle row per catalog lecture: assigned ones
// unlink, unassigned ones link.
func linkKeyboard(student *models.Student, lectures []models.Lecture) tgbotapi.InlineKeyboardMarkup {
	id := models.FormatUserID(student.UserID)
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(lectures)+1)
	for _, l := range lectures {
		if student.HasLecture(l.ID) {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("✅ "+l.Name, cbLinkRemove+id+":"+l.ID),
			))
		} else {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("➕ "+l.Name, cbLinkAdd+id+":"+l.ID),
			))
		}
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("↩️ Back", cbStudentView+id),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func myLecturesKeyboard(student *models.Student, names map[string]string) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(student.Lectures))
	for _, id := range student.Lectures {
		name, ok := names[id]
		if !ok {
			// stale reference: the lecture was deleted from the catalog
			name = "(no longer available)"
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📄 "+name, cbMyLecture+id),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
