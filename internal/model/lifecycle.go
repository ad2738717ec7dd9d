package model

// State is the lifecycle partition a bookmark belongs to.
type State int

const (
	StateActive State = iota
	StateArchived
	StateTrashed
)

func (s State) String() string {
	switch s {
	case StateArchived:
		return "archived"
	case StateTrashed:
		return "trashed"
	default:
		return "active"
	}
}

// StateOf classifies b. Trashed wins when both timestamps are set.
func StateOf(b Bookmark) State {
	switch {
	case b.TrashedAt != nil:
		return StateTrashed
	case b.ArchivedAt != nil:
		return StateArchived
	default:
		return StateActive
	}
}

func IsActive(b Bookmark) bool   { return StateOf(b) == StateActive }
func IsArchived(b Bookmark) bool { return StateOf(b) == StateArchived }
func IsTrashed(b Bookmark) bool  { return StateOf(b) == StateTrashed }
