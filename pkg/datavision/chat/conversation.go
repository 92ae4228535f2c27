// Package chat manages the follow-up conversation grounded in the selected
// option: selection announcements, history replay and streamed replies.
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/ukaji3/datavision-go/pkg/datavision"
	"github.com/ukaji3/datavision-go/pkg/datavision/llm"
	"github.com/ukaji3/datavision-go/pkg/datavision/models"
)

// ErrEmptyMessage is returned by Send for a blank message.
var ErrEmptyMessage = errors.New("chat: message is empty")

// State is the phase of a conversation.
type State int

const (
	// Idle means no option is selected.
	Idle State = iota
	// Contextualized means an option is selected and announced.
	Contextualized
	// Streaming means a turn is in flight.
	Streaming
)

// String returns the lower-case name of the state.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Contextualized:
		return "contextualized"
	case Streaming:
		return "streaming"
	default:
		return "unknown"
	}
}

// EventKind tells how a message changed.
type EventKind string

// Event kinds.
const (
	MessageAppended EventKind = "appended"
	MessageUpdated  EventKind = "updated"
	MessageRemoved  EventKind = "removed"
)

// Event reports one change to the visible conversation.
type Event struct {
	Kind    EventKind          `json:"kind"`
	Message models.ChatMessage `json:"message"`
}

// Conversation is the chat history plus the selected option. It is safe for
// concurrent use; at most one turn streams at a time.
type Conversation struct {
	// Language is the answer language put into the system instruction.
	Language string

	mu       sync.Mutex
	messages []models.ChatMessage
	selected *models.SolutionOption
	state    State
}

// NewConversation starts a conversation with a welcome message.
func NewConversation(language string) *Conversation {
	c := &Conversation{Language: language}
	c.messages = append(c.messages, models.NewMessage(models.RoleModel, welcomeText()))
	return c
}

// State returns the current phase.
func (c *Conversation) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Selected returns a copy of the selected option, or nil.
func (c *Conversation) Selected() *models.SolutionOption {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected == nil {
		return nil
	}
	opt := *c.selected
	return &opt
}

// Messages returns a copy of the history.
func (c *Conversation) Messages() []models.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.ChatMessage(nil), c.messages...)
}

// Select makes opt the context of later turns and appends an announcement
// naming its title and technologies. Every call appends, including a repeat
// of the current option.
func (c *Conversation) Select(opt models.SolutionOption) models.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = &opt
	if c.state != Streaming {
		c.state = Contextualized
	}
	msg := models.NewMessage(models.RoleModel, announcementText(opt))
	c.messages = append(c.messages, msg)
	return msg
}

// history returns the replayable history as role/text turns, in order.
// Messages without text are skipped.
func (c *Conversation) history() []llm.Turn {
	turns := make([]llm.Turn, 0, len(c.messages))
	for _, m := range c.messages {
		if m.Text == "" {
			continue
		}
		turns = append(turns, llm.Turn{Role: string(m.Role), Text: m.Text})
	}
	return turns
}

// Send runs one turn: it appends the user message and an empty model
// placeholder, streams the reply into the placeholder and reports every
// change through onUpdate. On a transport failure it appends FallbackText,
// drops the placeholder if nothing arrived, and returns the fallback message
// with an error matching datavision.ErrChatTransport. The conversation stays
// usable after any failure. onUpdate is called without the lock held.
func (c *Conversation) Send(ctx context.Context, s llm.Streamer, text string, onUpdate func(Event)) (models.ChatMessage, error) {
	if strings.TrimSpace(text) == "" {
		return models.ChatMessage{}, ErrEmptyMessage
	}
	notify := func(kind EventKind, m models.ChatMessage) {
		if onUpdate != nil {
			onUpdate(Event{Kind: kind, Message: m})
		}
	}

	c.mu.Lock()
	if c.state == Streaming {
		c.mu.Unlock()
		return models.ChatMessage{}, datavision.ErrTurnInFlight
	}
	req := llm.ChatRequest{
		SystemInstruction: BuildSystemInstruction(c.selected, c.Language),
		History:           c.history(),
		Message:           text,
	}
	user := models.NewMessage(models.RoleUser, text)
	reply := models.NewMessage(models.RoleModel, "")
	c.messages = append(c.messages, user, reply)
	c.state = Streaming
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.state = c.restingState()
		c.mu.Unlock()
	}()
	notify(MessageAppended, user)
	notify(MessageAppended, reply)

	stream, err := s.StreamChat(ctx, req)
	if err != nil {
		return c.fail(ctx, reply.ID, &datavision.TransportError{Op: "open", Err: err}, notify)
	}
	for frag, err := range stream {
		if err != nil {
			return c.fail(ctx, reply.ID, &datavision.TransportError{Op: "stream", Err: err}, notify)
		}
		if frag == "" {
			continue
		}
		if m, ok := c.appendText(reply.ID, frag); ok {
			notify(MessageUpdated, m)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(reply.ID); i >= 0 {
		return c.messages[i], nil
	}
	return reply, nil
}

func (c *Conversation) appendText(id, frag string) (models.ChatMessage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(id)
	if i < 0 {
		return models.ChatMessage{}, false
	}
	c.messages[i].Text += frag
	return c.messages[i], true
}

// fail drops an empty placeholder and, unless the caller cancelled the
// turn, appends the fallback message.
func (c *Conversation) fail(ctx context.Context, placeholderID string, err error, notify func(EventKind, models.ChatMessage)) (models.ChatMessage, error) {
	c.mu.Lock()
	var removed *models.ChatMessage
	if i := c.indexOf(placeholderID); i >= 0 && c.messages[i].Text == "" {
		m := c.messages[i]
		removed = &m
		c.messages = append(c.messages[:i], c.messages[i+1:]...)
	}
	var fallback models.ChatMessage
	cancelled := ctx.Err() != nil
	if !cancelled {
		fallback = models.NewMessage(models.RoleModel, FallbackText)
		c.messages = append(c.messages, fallback)
	}
	c.mu.Unlock()

	if removed != nil {
		notify(MessageRemoved, *removed)
	}
	if cancelled {
		return models.ChatMessage{}, ctx.Err()
	}
	notify(MessageAppended, fallback)
	return fallback, err
}

func (c *Conversation) restingState() State {
	if c.selected != nil {
		return Contextualized
	}
	return Idle
}

func (c *Conversation) indexOf(id string) int {
	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].ID == id {
			return i
		}
	}
	return -1
}
