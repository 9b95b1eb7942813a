package models

import "time"

// Lecture is a catalog entry joined with its file metadata when present.
type Lecture struct {
	ID   string       `json:"id"`
	Name string       `json:"name"`
	File *LectureFile `json:"file,omitempty"`
}

// LectureFile describes the uploaded binary backing a lecture. Filepath
// is the name within the lecture store, not an absolute disk path; the
// store resolves it against its base directory on every access.
type LectureFile struct {
	Filename  string    `json:"filename"`
	Filepath  string    `json:"filepath"`
	CreatedAt time.Time `json:"created_at"`
}

// Stats is an observational snapshot of the store contents.
type Stats struct {
	Students  int   `json:"students"`
	Lectures  int   `json:"lectures"`
	TotalKeys int64 `json:"total_keys"`
}
