package main

import "fmt"

func noteEmptyListMessage() string {
	return "No notes found."
}

func taskEmptyListMessage(total int, filter string) string {
	if total == 0 || filter == "" {
		return "No tasks found."
	}
	return fmt.Sprintf("No %s tasks found. Drop --%s to include all tasks.", filter, filter)
}
