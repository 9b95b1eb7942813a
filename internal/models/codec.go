package models

import (
	"encoding/json"
	"strconv"
)

// EncodeStudent serializes a student record for storage.
func EncodeStudent(s *Student) ([]byte, error) {
	return json.Marshal(s)
}

// DecodeStudent parses a stored student record. The round trip
// EncodeStudent(DecodeStudent(x)) == x holds exactly for all fields,
// including a nil Username.
func DecodeStudent(data []byte) (*Student, error) {
	var s Student
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// EncodeLectureFile serializes lecture file metadata for storage.
func EncodeLectureFile(f *LectureFile) ([]byte, error) {
	return json.Marshal(f)
}

// DecodeLectureFile parses stored lecture file metadata.
func DecodeLectureFile(data []byte) (*LectureFile, error) {
	var f LectureFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// FormatUserID renders a Telegram user ID for use in store keys.
func FormatUserID(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

// ParseUserID reads a user ID back out of a store key segment.
func ParseUserID(raw string) (int64, error) {
	return strconv.ParseInt(raw, 10, 64)
}
