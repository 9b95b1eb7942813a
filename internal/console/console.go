package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"chembot/internal/models"
	"chembot/internal/service"
	appErrors "chembot/pkg/errors"
)

// Console is the line-oriented admin menu. It drives exactly the same
// service layer as the bot, for local administration without Telegram.
type Console struct {
	in       *bufio.Reader
	out      io.Writer
	students *service.StudentService
	lectures *service.LectureService
	admin    *service.AdminService
	logger   *zap.Logger
}

// New builds a console reading stdin and writing stdout.
func New(students *service.StudentService, lectures *service.LectureService, admin *service.AdminService, logger *zap.Logger) *Console {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Console{
		in:       bufio.NewReader(os.Stdin),
		out:      os.Stdout,
		students: students,
		lectures: lectures,
		admin:    admin,
		logger:   logger,
	}
}

const menu = `
=== Tutor bot admin console ===
 1. Add student          8. Add lecture (from file)
 2. View student         9. View lecture
 3. List students       10. List lectures
 4. Update schedule     11. Rename lecture
 5. Set homework        12. Delete lecture
 6. Assign lecture      13. Delete student
 7. Unassign lecture    14. Statistics
15. Cleanup orphaned lecture refs
16. Export students (CSV/PDF)    17. Export lectures (CSV/PDF)
18. Clear ALL data                0. Exit
`

// Run loops over the menu until the admin exits or the context ends.
func (c *Console) Run(ctx context.Context) error {
	if !c.admin.Connected(ctx) {
		fmt.Fprintln(c.out, "Store is unreachable, check REDIS_HOST/REDIS_PORT.")
		return appErrors.Clone(appErrors.ErrStoreUnavailable, "store unreachable")
	}

	for {
		if ctx.Err() != nil {
			return nil
		}
		fmt.Fprint(c.out, menu)
		choice := c.prompt("Choice: ")

		switch choice {
		case "0":
			return nil
		case "1":
			c.addStudent(ctx)
		case "2":
			c.viewStudent(ctx)
		case "3":
			c.listStudents(ctx)
		case "4":
			c.updateSchedule(ctx)
		case "5":
			c.setHomework(ctx)
		case "6":
			c.linkLecture(ctx, true)
		case "7":
			c.linkLecture(ctx, false)
		case "8":
			c.addLecture(ctx)
		case "9":
			c.viewLecture(ctx)
		case "10":
			c.listLectures(ctx)
		case "11":
			c.renameLecture(ctx)
		case "12":
			c.deleteLecture(ctx)
		case "13":
			c.deleteStudent(ctx)
		case "14":
			c.showStats(ctx)
		case "15":
			c.cleanupOrphans(ctx)
		case "16":
			c.exportStudents(ctx)
		case "17":
			c.exportLectures(ctx)
		case "18":
			c.clearAll(ctx)
		default:
			fmt.Fprintln(c.out, "Unknown choice.")
		}
	}
}

func (c *Console) prompt(label string) string {
	fmt.Fprint(c.out, label)
	line, err := c.in.ReadString('\n')
	if err != nil {
		return ""
	}
	return strings.TrimSpace(line)
}

func (c *Console) promptUserID() (int64, bool) {
	raw := c.prompt("Student user ID: ")
	userID, err := models.ParseUserID(raw)
	if err != nil {
		fmt.Fprintln(c.out, "Not a numeric ID.")
		return 0, false
	}
	return userID, true
}

func (c *Console) report(err error) {
	if err == nil {
		fmt.Fprintln(c.out, "OK.")
		return
	}
	fmt.Fprintln(c.out, "Error:", appErrors.FromError(err).Message)
}

func (c *Console) addStudent(ctx context.Context) {
	userID, ok := c.promptUserID()
	if !ok {
		return
	}
	username := c.prompt("Username (empty for none): ")
	schedule := c.prompt("Schedule (e.g. 'Mon,Wed 15:00-16:00'): ")

	req := service.CreateStudentRequest{UserID: userID, Schedule: schedule}
	if username != "" {
		req.Username = &username
	}
	_, err := c.students.Create(ctx, req)
	c.report(err)
}

func (c *Console) viewStudent(ctx context.Context) {
	userID, ok := c.promptUserID()
	if !ok {
		return
	}
	student, err := c.students.Get(ctx, userID)
	if err != nil {
		c.report(err)
		return
	}
	c.printStudent(student)
}

func (c *Console) printStudent(st *models.Student) {
	fmt.Fprintf(c.out, "%s (ID %d)\n  schedule: %s\n", st.DisplayName(), st.UserID, st.Schedule)
	if st.Homework != "" {
		fmt.Fprintf(c.out, "  homework: %s\n", st.Homework)
	}
	fmt.Fprintf(c.out, "  lectures: %d\n  since: %s\n", len(st.Lectures), st.CreatedAt.Format("2006-01-02"))
	for _, id := range st.Lectures {
		fmt.Fprintf(c.out, "    - %s\n", id)
	}
}

func (c *Console) listStudents(ctx context.Context) {
	students, err := c.students.List(ctx)
	if err != nil {
		c.report(err)
		return
	}
	if len(students) == 0 {
		fmt.Fprintln(c.out, "No students.")
		return
	}
	for i := range students {
		c.printStudent(&students[i])
	}
}

func (c *Console) updateSchedule(ctx context.Context) {
	userID, ok := c.promptUserID()
	if !ok {
		return
	}
	schedule := c.prompt("New schedule: ")
	c.report(c.students.SetSchedule(ctx, userID, schedule))
}

func (c *Console) setHomework(ctx context.Context) {
	userID, ok := c.promptUserID()
	if !ok {
		return
	}
	homework := c.prompt("Homework text: ")
	c.report(c.students.SetHomework(ctx, userID, homework))
}

func (c *Console) linkLecture(ctx context.Context, assign bool) {
	userID, ok := c.promptUserID()
	if !ok {
		return
	}
	lectureID, ok := c.pickLecture(ctx)
	if !ok {
		return
	}
	if assign {
		c.report(c.students.AssignLecture(ctx, userID, lectureID))
		return
	}
	c.report(c.students.UnassignLecture(ctx, userID, lectureID))
}

// pickLecture lists the catalog and resolves a numbered choice to an ID.
func (c *Console) pickLecture(ctx context.Context) (string, bool) {
	lectures, err := c.lectures.List(ctx)
	if err != nil {
		c.report(err)
		return "", false
	}
	if len(lectures) == 0 {
		fmt.Fprintln(c.out, "No lectures in the catalog.")
		return "", false
	}
	for i, l := range lectures {
		fmt.Fprintf(c.out, "  %d. %s (%s)\n", i+1, l.Name, l.ID)
	}
	raw := c.prompt("Lecture number: ")
	idx, err := strconv.Atoi(raw)
	if err != nil || idx < 1 || idx > len(lectures) {
		fmt.Fprintln(c.out, "Bad choice.")
		return "", false
	}
	return lectures[idx-1].ID, true
}

func (c *Console) addLecture(ctx context.Context) {
	name := c.prompt("Lecture name: ")
	path := c.prompt("Path to the file on disk: ")

	lectureID, err := c.lectures.Create(ctx, name)
	if err != nil {
		c.report(err)
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(c.out, "Catalog entry created without a file:", err)
		fmt.Fprintln(c.out, "Lecture ID:", lectureID)
		return
	}
	_, err = c.lectures.AttachFile(ctx, lectureID, filepath.Base(path), data)
	if err != nil {
		c.report(err)
		return
	}
	fmt.Fprintln(c.out, "Lecture ID:", lectureID)
}

func (c *Console) viewLecture(ctx context.Context) {
	lectureID, ok := c.pickLecture(ctx)
	if !ok {
		return
	}
	lecture, err := c.lectures.Get(ctx, lectureID)
	if err != nil {
		c.report(err)
		return
	}
	fmt.Fprintf(c.out, "%s (%s)\n", lecture.Name, lecture.ID)
	if lecture.File != nil {
		fmt.Fprintf(c.out, "  file: %s at %s (uploaded %s)\n",
			lecture.File.Filename, lecture.File.Filepath, lecture.File.CreatedAt.Format("2006-01-02"))
	} else {
		fmt.Fprintln(c.out, "  no file attached")
	}
}

func (c *Console) listLectures(ctx context.Context) {
	lectures, err := c.lectures.List(ctx)
	if err != nil {
		c.report(err)
		return
	}
	if len(lectures) == 0 {
		fmt.Fprintln(c.out, "No lectures.")
		return
	}
	for _, l := range lectures {
		fmt.Fprintf(c.out, "  %s  %s\n", l.ID, l.Name)
	}
}

func (c *Console) renameLecture(ctx context.Context) {
	lectureID, ok := c.pickLecture(ctx)
	if !ok {
		return
	}
	name := c.prompt("New name: ")
	c.report(c.lectures.Rename(ctx, lectureID, name))
}

func (c *Console) deleteLecture(ctx context.Context) {
	lectureID, ok := c.pickLecture(ctx)
	if !ok {
		return
	}
	if c.prompt("Delete this lecture? (yes/no): ") != "yes" {
		return
	}
	c.report(c.lectures.Delete(ctx, lectureID))
}

func (c *Console) deleteStudent(ctx context.Context) {
	userID, ok := c.promptUserID()
	if !ok {
		return
	}
	if c.prompt("Delete this student? (yes/no): ") != "yes" {
		return
	}
	c.report(c.students.Delete(ctx, userID))
}

func (c *Console) showStats(ctx context.Context) {
	stats, err := c.admin.Stats(ctx)
	if err != nil {
		c.report(err)
		return
	}
	fmt.Fprintf(c.out, "Students: %d\nLectures: %d\nTotal keys: %d\n",
		stats.Students, stats.Lectures, stats.TotalKeys)
}

func (c *Console) cleanupOrphans(ctx context.Context) {
	removed, err := c.admin.CleanupOrphanedLectures(ctx)
	if err != nil {
		c.report(err)
		return
	}
	fmt.Fprintf(c.out, "Removed %d stale lecture reference(s).\n", removed)
}

func (c *Console) exportStudents(ctx context.Context) {
	if c.prompt("Format (csv/pdf): ") == "pdf" {
		c.exportFile(ctx, "students.pdf", c.admin.ExportStudentsPDF)
		return
	}
	c.exportFile(ctx, "students.csv", c.admin.ExportStudentsCSV)
}

func (c *Console) exportLectures(ctx context.Context) {
	if c.prompt("Format (csv/pdf): ") == "pdf" {
		c.exportFile(ctx, "lectures.pdf", c.admin.ExportLecturesPDF)
		return
	}
	c.exportFile(ctx, "lectures.csv", c.admin.ExportLecturesCSV)
}

func (c *Console) exportFile(ctx context.Context, filename string, render func(context.Context) ([]byte, error)) {
	data, err := render(ctx)
	if err != nil {
		c.report(err)
		return
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		c.report(err)
		return
	}
	fmt.Fprintln(c.out, "Written", filename)
}

func (c *Console) clearAll(ctx context.Context) {
	fmt.Fprintln(c.out, "This wipes every student and lecture irreversibly.")
	if c.prompt("Type 'DELETE ALL' to confirm: ") != "DELETE ALL" {
		fmt.Fprintln(c.out, "Aborted.")
		return
	}
	c.report(c.admin.ClearAll(ctx))
}
