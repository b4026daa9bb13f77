package conversation

import (
	"fmt"
	"strings"

	"github.com/heartmarshall/taskbot/internal/domain"
)

const (
	msgMenu = "What would you like to do?\n" +
		"/add - add a task\n" +
		"/list - show pending tasks (/list N starts at task N)\n" +
		"/done N - mark task N from the list as done\n" +
		"/search - find tasks by keyword or #tag\n" +
		"/cancel - stop the current action"

	msgHelpUnregistered = "Hi! Send /start to register and start keeping your tasks here."

	msgAskName           = "Welcome! Let's get you registered. What's your name?"
	msgNameRequired      = "Please send your name as plain text."
	msgNameTooLong       = "That name is too long (max %d characters). Please send a shorter one."
	msgAskPhone          = "Nice to meet you, %s! Now send your phone number, e.g. +15551234567."
	msgBadPhone          = "That doesn't look like a phone number. Use digits with an optional leading +, e.g. +15551234567."
	msgRegistered        = "You're registered, %s!\n\n" + msgMenu
	msgAlreadyRegistered = "You are already registered.\n\n" + msgMenu

	msgAskTaskText    = "Send the task description."
	msgTaskRequired   = "The task description can't be empty. Send the task text."
	msgTaskTooLong    = "That description is too long (max %d characters). Please shorten it."
	msgAskTags        = "Add tags separated by commas or spaces (e.g. work, urgent), or send skip."
	msgTaskAdded      = "Task added: %s"
	msgAskQuery       = "What are you looking for? Send keywords separated by commas and/or #tags."
	msgQueryEmpty     = "Send at least one keyword or #tag to search for."
	msgNothingPending = "You have no pending tasks. Send /add to create one."
	msgNothingFound   = "No tasks match your search."
	msgUsageDone      = "Send /done followed by the task number from /list, e.g. /done 2."
	msgUsageList      = "Send /list, or /list N to start from task N, e.g. /list 51."
	msgListPastEnd    = "You have %d pending tasks. Send /list to see them from the start."
	msgNoSuchTask     = "There is no task #%d in your list. Send /list to see it."
	msgTaskDone       = "Done: %s"

	msgCancelled       = "Cancelled."
	msgNothingToCancel = "Nothing to cancel.\n\n" + msgMenu
	msgFinishFlow      = "Please answer the question above or send /cancel to stop."
	msgUnknown         = "Sorry, I didn't get that.\n\n" + msgMenu
	msgExpired         = "Your previous action timed out. Please start again.\n\n" + msgMenu
	msgUnavailable     = "Something went wrong on our side. Please send that again in a moment."
	msgConflict        = "Your previous message is still being processed. Please send that again."
	msgProgressLost    = "Something went wrong on our side and the current action was reset. Please start it again."
)

var (
	menuButtons = [][]string{{labelAdd}, {labelList}, {labelSearch}, {labelMenu}}
	tagsButtons = [][]string{{labelSkip}, {labelCancel}}
	flowButtons = [][]string{{labelCancel}}
)

// buttonsFor returns the reply keyboard matching the step the user is in.
func buttonsFor(s domain.ConversationState) [][]string {
	switch {
	case s.IsIdle():
		return menuButtons
	case s.Step == domain.StepAwaitingTagsOrSkip:
		return tagsButtons
	default:
		return flowButtons
	}
}

func formatTask(b *strings.Builder, t domain.Task) {
	b.WriteString(t.Description)
	for _, tag := range t.Tags {
		b.WriteString(" #")
		b.WriteString(tag)
	}
}

// formatPending renders up to limit tasks starting at the 1-based position
// from. Numbers match the full list so "done N" works on any page.
func formatPending(tasks []domain.Task, from, limit int) string {
	if len(tasks) == 0 {
		return msgNothingPending
	}
	if from < 1 {
		from = 1
	}
	if from > len(tasks) {
		return fmt.Sprintf(msgListPastEnd, len(tasks))
	}

	end := len(tasks)
	if limit > 0 && from-1+limit < end {
		end = from - 1 + limit
	}

	var b strings.Builder
	b.WriteString("Your pending tasks:\n")
	for i := from - 1; i < end; i++ {
		fmt.Fprintf(&b, "%d. ", i+1)
		formatTask(&b, tasks[i])
		b.WriteByte('\n')
	}
	if rest := len(tasks) - end; rest > 0 {
		fmt.Fprintf(&b, "...and %d more. Send /list %d to see the next ones.\n", rest, end+1)
	}
	b.WriteString("\nSend /done N to mark a task as done.")
	return b.String()
}

func formatResults(tasks []domain.Task, limit int) string {
	if len(tasks) == 0 {
		return msgNothingFound
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d:\n", len(tasks))
	for i, t := range tasks {
		if limit > 0 && i == limit {
			fmt.Fprintf(&b, "...and %d more", len(tasks)-limit)
			break
		}
		if t.Completed {
			b.WriteString("[x] ")
		} else {
			b.WriteString("[ ] ")
		}
		formatTask(&b, t)
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

// validationMessage renders the first field error of a validation failure.
func validationMessage(err error) string {
	if ve, ok := asValidation(err); ok && len(ve.Errors) > 0 {
		fe := ve.Errors[0]
		return fmt.Sprintf("Invalid %s: %s.", fe.Field, fe.Message)
	}
	return "Invalid input."
}
