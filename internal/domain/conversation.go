package domain

import "time"

// Flow identifies which multi-step conversation a user is in.
type Flow string

const (
	FlowIdle        Flow = "idle"
	FlowRegistering Flow = "registering"
	FlowAddingTask  Flow = "adding_task"
	FlowSearching   Flow = "searching"
)

// Step is the position within a flow; it names the input expected next.
type Step string

const (
	StepNone               Step = ""
	StepAwaitingName       Step = "awaiting_name"
	StepAwaitingPhone      Step = "awaiting_phone"
	StepAwaitingText       Step = "awaiting_text"
	StepAwaitingTagsOrSkip Step = "awaiting_tags_or_skip"
	StepAwaitingQuery      Step = "awaiting_query"
)

// Scratch holds partially entered data between steps.
type Scratch struct {
	Name     string `json:"name,omitempty"`
	TaskText string `json:"task_text,omitempty"`
}

// ConversationState is the per-user state kept in the fast cache.
// Version is bumped on every successful conditional write; an absent
// state has version 0.
type ConversationState struct {
	Flow      Flow      `json:"flow"`
	Step      Step      `json:"step"`
	Scratch   Scratch   `json:"scratch"`
	Version   int64     `json:"version"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IdleState returns the state of a user with no active flow.
func IdleState() ConversationState {
	return ConversationState{Flow: FlowIdle}
}

// IsIdle reports whether no flow is in progress.
func (s ConversationState) IsIdle() bool {
	return s.Flow == "" || s.Flow == FlowIdle
}

// IsExpired reports whether the state outlived its logical TTL.
// States with a zero ExpiresAt never expire.
func (s ConversationState) IsExpired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// OutboundResponse is what the conversation engine hands back to the dispatcher.
// Buttons, when set, replace the reply keyboard: one inner slice per row,
// each label sent back verbatim when pressed. Nil leaves the keyboard as is.
type OutboundResponse struct {
	Text    string
	IsError bool
	Buttons [][]string
}
