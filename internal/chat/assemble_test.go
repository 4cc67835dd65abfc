package chat

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func exchange(n int) []Message {
	msgs := make([]Message, 0, n)
	for i := 0; i < n; i++ {
		role := RoleUser
		if i%2 == 1 {
			role = RoleAssistant
		}
		msgs = append(msgs, Message{Role: role, Content: Content{Text: fmt.Sprintf("m%d", i)}})
	}
	return msgs
}

func TestAssemble_FullWindow(t *testing.T) {
	history := exchange(4)
	pending := Message{Role: RoleUser, Content: Content{Text: "pending"}}

	out := Assemble(history, "be terse", pending, WindowPolicy{})

	require.Len(t, out, 6)
	require.Equal(t, RoleSystem, out[0].Role)
	require.Equal(t, "be terse", out[0].Content.Text)
	for i, m := range history {
		require.Equal(t, m.Content.Text, out[i+1].Content.Text, "history order must be preserved")
	}
	require.Equal(t, "pending", out[5].Content.Text)
}

func TestAssemble_NoPreamble(t *testing.T) {
	pending := Message{Role: RoleUser, Content: Content{Text: "hi"}}
	out := Assemble(nil, "", pending, WindowPolicy{})
	require.Len(t, out, 1)
	require.Equal(t, "hi", out[0].Content.Text)
}

func TestAssemble_LastNKeepsNewest(t *testing.T) {
	history := exchange(10)
	pending := Message{Role: RoleUser, Content: Content{Text: "pending"}}

	out := Assemble(history, "", pending, WindowPolicy{LastN: 3})

	require.Len(t, out, 4)
	require.Equal(t, "m7", out[0].Content.Text)
	require.Equal(t, "m8", out[1].Content.Text)
	require.Equal(t, "m9", out[2].Content.Text)
	require.Equal(t, "pending", out[3].Content.Text)
}

func TestAssemble_WindowBound(t *testing.T) {
	pending := Message{Role: RoleUser, Content: Content{Text: "p"}}
	for _, n := range []int{1, 2, 5, 50} {
		for _, size := range []int{0, 1, 4, 100} {
			out := Assemble(exchange(size), "", pending, WindowPolicy{LastN: n})
			require.LessOrEqual(t, len(out)-1, n, "lastN=%d size=%d", n, size)
		}
	}
}

func TestAssemble_NeverDropsPending(t *testing.T) {
	pending := Message{Role: RoleUser, Content: Content{Text: "p"}}
	out := Assemble(exchange(100), "sys", pending, WindowPolicy{LastN: 1})
	require.Equal(t, "p", out[len(out)-1].Content.Text)
}

func TestAssemble_DoesNotMutateHistory(t *testing.T) {
	history := exchange(3)
	pending := Message{Role: RoleUser, Content: Content{Text: "p"}}
	_ = Assemble(history, "sys", pending, WindowPolicy{LastN: 2})
	require.Equal(t, "m0", history[0].Content.Text)
	require.Len(t, history, 3)
}
