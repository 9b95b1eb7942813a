package models

import "time"

// Student represents a learner registered with the tutor.
//
// Lectures is assembled from a separate store key (a native set), not from
// the serialized record; the codec still carries it so exports and front
// ends see one complete value.
type Student struct {
	UserID    int64     `json:"user_id"`
	Username  *string   `json:"username"`
	Schedule  string    `json:"schedule"`
	Homework  string    `json:"homework,omitempty"`
	Lectures  []string  `json:"lectures"`
	CreatedAt time.Time `json:"created_at"`
}

// DisplayName returns the username or a numeric fallback for students who
// have no Telegram username set.
func (s *Student) DisplayName() string {
	if s.Username != nil && *s.Username != "" {
		return *s.Username
	}
	return "id:" + FormatUserID(s.UserID)
}

// HasLecture reports whether the student is assigned the given lecture.
func (s *Student) HasLecture(lectureID string) bool {
	for _, id := range s.Lectures {
		if id == lectureID {
			return true
		}
	}
	return false
}

// StudentUpdate carries the mutable fields for a partial update. Nil
// pointers leave the stored value untouched.
type StudentUpdate struct {
	Username *string
	Schedule *string
	Homework *string
}
