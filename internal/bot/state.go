package bot

import "sync"

// Conversational state for multi-step admin flows ("ask for the lecture
// name, then wait for the file"). This lives entirely in the front end;
// the data layer never sees it.
type stateKind int

const (
	stateNone stateKind = iota
	stateAwaitStudentID
	stateAwaitStudentUsername
	stateAwaitStudentSchedule
	stateAwaitNewSchedule
	stateAwaitHomework
	stateAwaitLectureName
	stateAwaitLectureFile
)

type conversation struct {
	kind stateKind

	// draft fields, populated step by step
	draftUserID   int64
	draftUsername *string
	targetStudent int64
	lectureID     string
}

type stateStore struct {
	mu     sync.Mutex
	byChat map[int64]*conversation
}

func newStateStore() *stateStore {
	return &stateStore{byChat: make(map[int64]*conversation)}
}

func (s *stateStore) get(chatID int64) *conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	if conv, ok := s.byChat[chatID]; ok {
		return conv
	}
	return &conversation{kind: stateNone}
}

func (s *stateStore) set(chatID int64, conv *conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byChat[chatID] = conv
}

func (s *stateStore) clear(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byChat, chatID)
}
