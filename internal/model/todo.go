package model

// Todo priorities. Medium is the default when a todo is created without one.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// ValidPriority reports whether p is one of the three known priorities.
func ValidPriority(p string) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Todo is a task item owned by a single user. UserID is a weak reference by
// value; the store does not enforce referential integrity. Todo ids are
// opaque strings, unlike the numeric user ids.
type Todo struct {
	ID          string  `json:"id"`
	UserID      string  `json:"user_id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Completed   bool    `json:"completed"`
	Priority    string  `json:"priority"`
	DueDate     *string `json:"due_date"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   *string `json:"updated_at"`
}

// TodoFromItem translates a raw store record into a Todo, filling the
// documented defaults (empty description, not completed, medium priority).
// Total: nil or empty input yields a zero Todo.
func TodoFromItem(item map[string]any) Todo {
	if len(item) == 0 {
		return Todo{}
	}

	priority := itemString(item, "priority")
	if priority == "" {
		priority = PriorityMedium
	}

	return Todo{
		ID:          itemString(item, "id"),
		UserID:      itemString(item, "user_id"),
		Title:       itemString(item, "title"),
		Description: itemString(item, "description"),
		Completed:   itemBool(item, "completed", false),
		Priority:    priority,
		DueDate:     itemOptString(item, "due_date"),
		CreatedAt:   itemString(item, "created_at"),
		UpdatedAt:   itemOptString(item, "updated_at"),
	}
}
