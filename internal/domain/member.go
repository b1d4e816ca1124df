package domain

// Participant is the roster entry clients exchange when a join request
// is accepted. No transport or lifecycle logic here.
type Participant struct {
	Username string `json:"username"`
	ID       UserID `json:"id"`
}
