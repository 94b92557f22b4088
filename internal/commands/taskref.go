package commands

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseTaskID parses the single positional task id argument.
// Ids are positive integers assigned by the backend; a leading '#' is
// accepted so ids can be pasted from list output.
func ParseTaskID(args []string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("task id required")
	}
	if len(args) > 1 {
		return 0, fmt.Errorf("expected one task id, got %d arguments", len(args))
	}
	raw := strings.TrimPrefix(strings.TrimSpace(args[0]), "#")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid task id: %s", args[0])
	}
	return id, nil
}
