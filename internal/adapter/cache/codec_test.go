package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/taskbot/internal/domain"
)

func TestEncodeDecode(t *testing.T) {
	t.Parallel()

	in := domain.ConversationState{
		Flow:      domain.FlowAddingTask,
		Step:      domain.StepAwaitingTagsOrSkip,
		Scratch:   domain.Scratch{TaskText: "buy milk"},
		Version:   3,
		ExpiresAt: time.Date(2026, 1, 1, 0, 10, 0, 0, time.UTC),
	}

	b, err := Encode(in)
	require.NoError(t, err)

	out, err := Decode(b)
	require.NoError(t, err)
	assert.Equal(t, in.Flow, out.Flow)
	assert.Equal(t, in.Step, out.Step)
	assert.Equal(t, in.Scratch, out.Scratch)
	assert.Equal(t, in.Version, out.Version)
	assert.True(t, in.ExpiresAt.Equal(out.ExpiresAt))
}

func TestDecode_Garbage(t *testing.T) {
	t.Parallel()
	_, err := Decode([]byte("{not json"))
	require.Error(t, err)
}

func TestKey(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "taskbot:conv:42", Key(42))
	assert.Equal(t, "taskbot:conv:-7", Key(-7))
}

func TestStampAndCheck(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	s := Stamp(domain.ConversationState{Flow: domain.FlowSearching}, now, 10*time.Minute)
	assert.Equal(t, now.Add(10*time.Minute), s.ExpiresAt)

	got, err := Check(&s, now.Add(5*time.Minute), 1)
	require.NoError(t, err)
	assert.Equal(t, &s, got)

	got, err = Check(&s, now.Add(10*time.Minute), 1)
	require.ErrorIs(t, err, domain.ErrStateExpired)
	assert.Equal(t, domain.FlowSearching, got.Flow)

	got, err = Check(nil, now, 1)
	require.NoError(t, err)
	assert.Nil(t, got)

	forever := Stamp(s, now, 0)
	assert.True(t, forever.ExpiresAt.IsZero())
}
