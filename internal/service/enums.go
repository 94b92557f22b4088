package service

import "strings"

// Status is the workflow state of a task.
type Status string

const (
	StatusTodo  Status = "todo"
	StatusDoing Status = "doing"
	StatusDone  Status = "done"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusTodo, StatusDoing, StatusDone}

// Priority ranks urgency. Wire values use spaces ("very high").
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityVeryHigh Priority = "very high"
)

// Priorities lists every priority from lowest to highest.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityVeryHigh}

// Difficulty estimates effort. Wire values use spaces ("very easy").
type Difficulty string

const (
	DifficultyVeryEasy Difficulty = "very easy"
	DifficultyEasy     Difficulty = "easy"
	DifficultyMedium   Difficulty = "medium"
	DifficultyHard     Difficulty = "hard"
	DifficultyVeryHard Difficulty = "very hard"
)

// Difficulties lists every difficulty from easiest to hardest.
var Difficulties = []Difficulty{DifficultyVeryEasy, DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyVeryHard}

var statusLabels = map[Status]string{
	StatusTodo:  "TODO",
	StatusDoing: "DOING",
	StatusDone:  "DONE",
}

var priorityLabels = map[Priority]string{
	PriorityLow:      "Low",
	PriorityMedium:   "Medium",
	PriorityHigh:     "High",
	PriorityVeryHigh: "Very High",
}

var difficultyLabels = map[Difficulty]string{
	DifficultyVeryEasy: "Very Easy",
	DifficultyEasy:     "Easy",
	DifficultyMedium:   "Medium",
	DifficultyHard:     "Hard",
	DifficultyVeryHard: "Very Hard",
}

// unknownLabel is shown for values the backend returned but we do not know.
const unknownLabel = "-"

// Label returns the display label.
func (s Status) Label() string { return labelOf(statusLabels, s) }

// Label returns the display label.
func (p Priority) Label() string { return labelOf(priorityLabels, p) }

// Label returns the display label.
func (d Difficulty) Label() string { return labelOf(difficultyLabels, d) }

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	_, ok := priorityLabels[p]
	return ok
}

// Valid reports whether d is a known difficulty.
func (d Difficulty) Valid() bool {
	_, ok := difficultyLabels[d]
	return ok
}

// Flag returns the hyphenated spelling used on the command line ("very-high").
func (p Priority) Flag() string { return strings.ReplaceAll(string(p), " ", "-") }

// Flag returns the hyphenated spelling used on the command line ("very-easy").
func (d Difficulty) Flag() string { return strings.ReplaceAll(string(d), " ", "-") }

// NormalizeStatus maps user input onto a status value. Unknown input is
// returned trimmed and lowercased so that validation can reject it.
func NormalizeStatus(s string) Status {
	return Status(normalize(s))
}

// NormalizePriority maps "very-high", "Very_High" and "very high" onto PriorityVeryHigh.
func NormalizePriority(s string) Priority {
	return Priority(normalize(s))
}

// NormalizeDifficulty maps "very-easy", "VERY_EASY" and "very easy" onto DifficultyVeryEasy.
func NormalizeDifficulty(s string) Difficulty {
	return Difficulty(normalize(s))
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("-", " ", "_", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

func labelOf[K ~string](labels map[K]string, k K) string {
	if l, ok := labels[k]; ok {
		return l
	}
	return unknownLabel
}
