package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{name: "short", in: "hi", n: 10, want: "hi"},
		{name: "exact", in: "hello", n: 5, want: "hello"},
		{name: "ascii cut", in: "hello world", n: 5, want: "hello"},
		{name: "multibyte kept whole", in: "привет мир", n: 6, want: "привет"},
		{name: "multibyte under limit", in: "日本語", n: 5, want: "日本語"},
		{name: "zero limit", in: "abc", n: 0, want: ""},
		{name: "empty", in: "", n: 3, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truncate(tt.in, tt.n))
		})
	}
}

func TestTruncate_MessageLimit(t *testing.T) {
	long := strings.Repeat("x", MaxMessageContent+50)
	assert.Len(t, Truncate(long, MaxMessageContent), MaxMessageContent)
}

func TestNewIdentity(t *testing.T) {
	id, err := NewIdentity(7, "alice", "a@example.com")
	assert.NoError(t, err)
	assert.Equal(t, UserID(7), id.UserID)
	assert.Equal(t, "alice", id.Name)

	_, err = NewIdentity(0, "nobody", "")
	assert.ErrorIs(t, err, ErrUserIDEmpty)

	id, err = NewIdentity(1, strings.Repeat("n", MaxUsernameLen+5), "")
	assert.NoError(t, err)
	assert.Len(t, id.Name, MaxUsernameLen)
}

func TestTodoPatch_Empty(t *testing.T) {
	done := true
	text := "x"
	assert.True(t, TodoPatch{}.Empty())
	assert.False(t, TodoPatch{Completed: &done}.Empty())
	assert.False(t, TodoPatch{Text: &text}.Empty())
}
