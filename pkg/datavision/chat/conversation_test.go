package chat

import (
	"context"
	"errors"
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukaji3/datavision-go/pkg/datavision"
	"github.com/ukaji3/datavision-go/pkg/datavision/llm"
	"github.com/ukaji3/datavision-go/pkg/datavision/models"
)

// scriptedStreamer replays fragments and optionally fails.
type scriptedStreamer struct {
	fragments []string
	openErr   error
	streamErr error
	requests  []llm.ChatRequest
}

func (s *scriptedStreamer) StreamChat(ctx context.Context, req llm.ChatRequest) (iter.Seq2[string, error], error) {
	s.requests = append(s.requests, req)
	if s.openErr != nil {
		return nil, s.openErr
	}
	return func(yield func(string, error) bool) {
		for _, f := range s.fragments {
			if err := ctx.Err(); err != nil {
				yield("", err)
				return
			}
			if !yield(f, nil) {
				return
			}
		}
		if s.streamErr != nil {
			yield("", s.streamErr)
		}
	}, nil
}

var (
	optionA = models.SolutionOption{
		Level:            50,
		Title:            "Low-code App",
		DevelopmentTools: "Power Apps",
		Visualization:    "Power BI",
		Technologies:     []string{"Power Apps", "SharePoint"},
		ConcreteOutputs:  []string{"alert", "dashboard", "report"},
	}
	optionB = models.SolutionOption{
		Level:            70,
		Title:            "Energy Balance Web Platform",
		DevelopmentTools: "React + Go",
		Visualization:    "Drill-down dashboards",
		Technologies:     []string{"React", "Go", "PostgreSQL"},
		ConcreteOutputs:  []string{"validation report", "import/export dashboard", "heatmap"},
	}
)

func TestNewConversation(t *testing.T) {
	c := NewConversation("")
	assert.Equal(t, Idle, c.State())
	assert.Nil(t, c.Selected())

	msgs := c.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, models.RoleModel, msgs[0].Role)
	assert.NotEmpty(t, msgs[0].ID)
}

func TestSelectAppendsOneAnnouncementPerSelection(t *testing.T) {
	c := NewConversation("")

	a := c.Select(optionA)
	b := c.Select(optionB)

	msgs := c.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, a, msgs[1])
	assert.Equal(t, b, msgs[2])

	assert.Contains(t, a.Text, "Low-code App")
	assert.Contains(t, a.Text, "Power Apps, SharePoint")
	assert.Contains(t, b.Text, "Energy Balance Web Platform")
	assert.Contains(t, b.Text, "React, Go, PostgreSQL")
	assert.NotEqual(t, a.ID, b.ID)

	assert.Equal(t, Contextualized, c.State())
	assert.Equal(t, "Energy Balance Web Platform", c.Selected().Title)
}

func TestSendReassemblesFragments(t *testing.T) {
	c := NewConversation("")
	s := &scriptedStreamer{fragments: []string{"Hel", "lo"}}

	var events []Event
	reply, err := c.Send(context.Background(), s, "hi", func(e Event) {
		events = append(events, e)
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello", reply.Text)
	assert.Equal(t, models.RoleModel, reply.Role)

	require.Len(t, events, 4)
	assert.Equal(t, MessageAppended, events[0].Kind)
	assert.Equal(t, "hi", events[0].Message.Text)
	assert.Equal(t, MessageAppended, events[1].Kind)
	assert.Equal(t, "", events[1].Message.Text)
	assert.Equal(t, MessageUpdated, events[2].Kind)
	assert.Equal(t, "Hel", events[2].Message.Text)
	assert.Equal(t, "Hello", events[3].Message.Text)
	assert.Equal(t, events[1].Message.ID, events[3].Message.ID)

	msgs := c.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, models.RoleUser, msgs[1].Role)
	assert.Equal(t, reply, msgs[2])
	assert.Equal(t, Idle, c.State())
}

func TestSendOpenFailureAppendsOneFallback(t *testing.T) {
	c := NewConversation("")
	c.Select(optionB)
	s := &scriptedStreamer{openErr: errors.New("dial tcp: refused")}

	var events []Event
	reply, err := c.Send(context.Background(), s, "hi", func(e Event) { events = append(events, e) })
	require.Error(t, err)
	assert.ErrorIs(t, err, datavision.ErrChatTransport)
	var te *datavision.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "open", te.Op)
	assert.Equal(t, FallbackText, reply.Text)

	msgs := c.Messages()
	require.Len(t, msgs, 4)
	assert.Equal(t, "hi", msgs[2].Text)
	assert.Equal(t, FallbackText, msgs[3].Text)
	for _, m := range msgs {
		assert.NotEmpty(t, m.Text)
	}

	kinds := make([]EventKind, len(events))
	for i, e := range events {
		kinds[i] = e.Kind
	}
	assert.Equal(t, []EventKind{MessageAppended, MessageAppended, MessageRemoved, MessageAppended}, kinds)
	assert.Equal(t, Contextualized, c.State())
}

func TestSendStreamFailureBeforeFirstFragment(t *testing.T) {
	c := NewConversation("")
	s := &scriptedStreamer{streamErr: errors.New("stream reset")}

	_, err := c.Send(context.Background(), s, "hi", nil)
	var te *datavision.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "stream", te.Op)

	msgs := c.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, FallbackText, msgs[2].Text)
}

func TestSendMidStreamFailureKeepsPartialReply(t *testing.T) {
	c := NewConversation("")
	s := &scriptedStreamer{fragments: []string{"Partial"}, streamErr: errors.New("stream reset")}

	_, err := c.Send(context.Background(), s, "hi", nil)
	assert.ErrorIs(t, err, datavision.ErrChatTransport)

	msgs := c.Messages()
	require.Len(t, msgs, 4)
	assert.Equal(t, "Partial", msgs[2].Text)
	assert.Equal(t, FallbackText, msgs[3].Text)
}

func TestConversationUsableAfterFailure(t *testing.T) {
	c := NewConversation("")
	_, err := c.Send(context.Background(), &scriptedStreamer{openErr: errors.New("down")}, "first", nil)
	require.Error(t, err)

	s := &scriptedStreamer{fragments: []string{"ok"}}
	reply, err := c.Send(context.Background(), s, "second", nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", reply.Text)

	history := s.requests[0].History
	require.Len(t, history, 3)
	assert.Equal(t, "first", history[1].Text)
	assert.Equal(t, FallbackText, history[2].Text)
}

func TestSendReplaysFullHistory(t *testing.T) {
	c := NewConversation("English")
	c.Select(optionA)
	s := &scriptedStreamer{fragments: []string{"one"}}
	_, err := c.Send(context.Background(), s, "q1", nil)
	require.NoError(t, err)

	s.fragments = []string{"two"}
	_, err = c.Send(context.Background(), s, "q2", nil)
	require.NoError(t, err)

	require.Len(t, s.requests, 2)
	req := s.requests[1]
	assert.Equal(t, "q2", req.Message)

	var got []llm.Turn
	for _, m := range c.Messages()[:4] {
		got = append(got, llm.Turn{Role: string(m.Role), Text: m.Text})
	}
	assert.Equal(t, got, req.History)
	assert.Equal(t, "model", req.History[0].Role)
	assert.Equal(t, "user", req.History[2].Role)
	assert.Equal(t, "one", req.History[3].Text)

	assert.Contains(t, req.SystemInstruction, "Low-code App (Level 50%)")
	assert.Contains(t, req.SystemInstruction, "Answer in English")
}

func TestSendRejectsConcurrentTurn(t *testing.T) {
	c := NewConversation("")
	s := &scriptedStreamer{fragments: []string{"a", "b"}}

	var nestedErr error
	_, err := c.Send(context.Background(), s, "outer", func(e Event) {
		if e.Kind == MessageUpdated && nestedErr == nil {
			_, nestedErr = c.Send(context.Background(), s, "inner", nil)
		}
	})
	require.NoError(t, err)
	assert.ErrorIs(t, nestedErr, datavision.ErrTurnInFlight)
	assert.Len(t, c.Messages(), 3)
	assert.Equal(t, Idle, c.State())
}

func TestSendRejectsBlankMessage(t *testing.T) {
	c := NewConversation("")
	_, err := c.Send(context.Background(), &scriptedStreamer{}, "  \n", nil)
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Len(t, c.Messages(), 1)
}

func TestSendCancelledTurnAppendsNoFallback(t *testing.T) {
	c := NewConversation("")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Send(ctx, &scriptedStreamer{fragments: []string{"late"}}, "hi", nil)
	assert.ErrorIs(t, err, context.Canceled)

	msgs := c.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "hi", msgs[1].Text)
}

func TestSendWithFakeClient(t *testing.T) {
	c := NewConversation("")
	reply, err := c.Send(context.Background(), llm.NewFakeClient(), "show import vs export", nil)
	require.NoError(t, err)
	assert.Equal(t, "Noted: show import vs export", reply.Text)
}

func TestSendCallbackCanReadConversation(t *testing.T) {
	c := NewConversation("")
	s := &scriptedStreamer{fragments: []string{"a", "b"}}

	var states []State
	var lengths []int
	_, err := c.Send(context.Background(), s, "hi", func(e Event) {
		states = append(states, c.State())
		lengths = append(lengths, len(c.Messages()))
	})
	require.NoError(t, err)
	for _, st := range states {
		assert.Equal(t, Streaming, st)
	}
	assert.Equal(t, []int{3, 3, 3, 3}, lengths)
}
