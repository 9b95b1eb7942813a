package repository

import "chembot/internal/models"

// Store key namespace. Student records are JSON values under
// student:<user_id>, lecture assignments live in the native set
// student:<user_id>:lectures, the catalog is the lectures hash and file
// metadata sits under <lecture_id>:file.
const (
	studentKeyPrefix = "student:"
	lectureSetSuffix = ":lectures"
	catalogKey       = "lectures"
	fileKeySuffix    = ":file"
	studentScanMatch = studentKeyPrefix + "*"
)

func studentKey(userID int64) string {
	return studentKeyPrefix + models.FormatUserID(userID)
}

func studentLecturesKey(userID int64) string {
	return studentKey(userID) + lectureSetSuffix
}

func lectureFileKey(lectureID string) string {
	return lectureID + fileKeySuffix
}
