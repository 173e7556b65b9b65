package memorytool

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"

	"skillmint/internal/core"
)

// TodoStatus tags a TodoItem's lifecycle state.
type TodoStatus string

const (
	TodoPending    TodoStatus = "pending"
	TodoInProgress TodoStatus = "in_progress"
	TodoCompleted  TodoStatus = "completed"
)

// TodoPriority tags a TodoItem's relative urgency.
type TodoPriority string

const (
	TodoLow    TodoPriority = "low"
	TodoMedium TodoPriority = "medium"
	TodoHigh   TodoPriority = "high"
)

// TodoItem is a single entry in the session's task list.
type TodoItem struct {
	ID       string       `json:"id"`
	Content  string       `json:"content"`
	Status   TodoStatus   `json:"status"`
	Priority TodoPriority `json:"priority"`
}

// TodoStore holds the current full todo list for a session, replaced
// atomically on every TodoWrite call.
type TodoStore struct {
	mu    sync.Mutex
	items []TodoItem
}

// NewTodoStore builds an empty store.
func NewTodoStore() *TodoStore { return &TodoStore{} }

// Snapshot returns the current list.
func (s *TodoStore) Snapshot() []TodoItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]TodoItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *TodoStore) replace(items []TodoItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = items
}

// TodoWrite replaces the entire todo list in one atomic operation,
// assigning ids to any entry that omits one.
type TodoWrite struct {
	Store *TodoStore
}

func (TodoWrite) Name() string        { return "todo_write" }
func (TodoWrite) Description() string { return "Replace the full todo list for this session." }
func (TodoWrite) InputSchema() core.ParameterSchema {
	return core.ParameterSchema{
		Type: "object",
		Properties: map[string]core.Property{
			"todos": {
				Type:        "array",
				Description: "The complete list of todo items.",
				Items: &core.Property{
					Type:        "object",
					Description: "A single todo item: {content, status, priority}.",
				},
			},
		},
		Required: []string{"todos"},
	}
}

type todoInput struct {
	ID       string `json:"id,omitempty"`
	Content  string `json:"content"`
	Status   string `json:"status,omitempty"`
	Priority string `json:"priority,omitempty"`
}

func (tw TodoWrite) Execute(_ context.Context, input map[string]any, _ core.ToolContext) (string, error) {
	raw, ok := input["todos"]
	if !ok {
		return "", core.NewError(core.KindBadRequest, "todos is required")
	}
	encoded, err := json.Marshal(raw)
	if err != nil {
		return "", core.Wrap(core.KindBadRequest, err, "encode todos")
	}
	var parsed []todoInput
	if err := json.Unmarshal(encoded, &parsed); err != nil {
		return "", core.Wrap(core.KindBadRequest, err, "parse todos")
	}

	items := make([]TodoItem, 0, len(parsed))
	for _, p := range parsed {
		id := p.ID
		if id == "" {
			id = uuid.NewString()
		}
		status := TodoStatus(p.Status)
		if status == "" {
			status = TodoPending
		}
		priority := TodoPriority(p.Priority)
		if priority == "" {
			priority = TodoMedium
		}
		items = append(items, TodoItem{ID: id, Content: p.Content, Status: status, Priority: priority})
	}

	tw.Store.replace(items)
	return core.TruncateResult(renderTodos(items)), nil
}

func renderTodos(items []TodoItem) string {
	if len(items) == 0 {
		return "(空待办列表)"
	}
	out := ""
	for _, it := range items {
		out += "[" + string(it.Status) + "] (" + string(it.Priority) + ") " + it.Content + "\n"
	}
	return out
}
