package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTask_Matches(t *testing.T) {
	t.Parallel()

	task := Task{Description: "Buy Milk and bread", Tags: []string{"work", "urgent"}}

	tests := []struct {
		name     string
		keywords []string
		tags     []string
		want     bool
	}{
		{name: "no filters", want: true},
		{name: "keyword substring", keywords: []string{"milk"}, want: true},
		{name: "one of keywords", keywords: []string{"eggs", "bread"}, want: true},
		{name: "keyword miss", keywords: []string{"eggs"}, want: false},
		{name: "tag hit", tags: []string{"urgent"}, want: true},
		{name: "tag miss", tags: []string{"home"}, want: false},
		{name: "tag intersect", tags: []string{"home", "work"}, want: true},
		{name: "keyword hit tag miss", keywords: []string{"milk"}, tags: []string{"home"}, want: false},
		{name: "keyword miss tag hit", keywords: []string{"eggs"}, tags: []string{"work"}, want: false},
		{name: "both hit", keywords: []string{"bread"}, tags: []string{"work"}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, task.Matches(tt.keywords, tt.tags))
		})
	}
}

func TestTask_MarkCompleted_OneWay(t *testing.T) {
	t.Parallel()

	task := Task{}
	first := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)

	assert.True(t, task.MarkCompleted(first))
	assert.False(t, task.MarkCompleted(first.Add(time.Hour)))
	assert.True(t, task.Completed)
	assert.Equal(t, first, *task.CompletedAt)
}

func TestConversationState_IsExpired(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)

	assert.False(t, ConversationState{}.IsExpired(now))
	assert.False(t, ConversationState{ExpiresAt: now.Add(time.Second)}.IsExpired(now))
	assert.True(t, ConversationState{ExpiresAt: now}.IsExpired(now))
	assert.True(t, IdleState().IsIdle())
	assert.True(t, ConversationState{}.IsIdle())
	assert.False(t, ConversationState{Flow: FlowSearching}.IsIdle())
}
