package bot

// Authorizer answers role questions for incoming updates. The admin
// allow-list is injected configuration, fixed for the process lifetime.
type Authorizer struct {
	admins map[int64]struct{}
}

// NewAuthorizer builds an authorizer from the configured admin IDs.
func NewAuthorizer(adminIDs []int64) *Authorizer {
	admins := make(map[int64]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = struct{}{}
	}
	return &Authorizer{admins: admins}
}

// IsAdmin reports whether the user is on the allow-list.
func (a *Authorizer) IsAdmin(userID int64) bool {
	_, ok := a.admins[userID]
	return ok
}
