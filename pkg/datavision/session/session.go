// Package session threads one user's preview, analysis result, selection and
// conversation through the pipeline.
package session

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/ukaji3/datavision-go/pkg/datavision"
	"github.com/ukaji3/datavision-go/pkg/datavision/chat"
	"github.com/ukaji3/datavision-go/pkg/datavision/llm"
	"github.com/ukaji3/datavision-go/pkg/datavision/models"
)

// ErrNoPreview is returned by Analyze before a spreadsheet is loaded.
var ErrNoPreview = errors.New("session: no spreadsheet loaded")

// Analyzer produces an analysis result for a preview.
type Analyzer interface {
	Request(ctx context.Context, preview *models.SpreadsheetPreview) (*models.AnalysisResult, error)
}

// Session holds the state of one upload-analyze-chat cycle. Methods are safe
// for concurrent use; only one chat turn runs at a time.
type Session struct {
	ID string

	mu       sync.Mutex
	language string
	fileName string
	preview  *models.SpreadsheetPreview
	result   *models.AnalysisResult
	conv     *chat.Conversation
}

// Snapshot is a point-in-time copy of a session.
type Snapshot struct {
	ID            string                     `json:"sessionId"`
	FileName      string                     `json:"fileName,omitempty"`
	Preview       *models.SpreadsheetPreview `json:"preview,omitempty"`
	Result        *models.AnalysisResult     `json:"result,omitempty"`
	SelectedLevel *int                       `json:"selectedLevel,omitempty"`
	State         string                     `json:"state"`
	Messages      []models.ChatMessage       `json:"messages"`
}

// New creates an empty session answering in language.
func New(language string) *Session {
	return &Session{
		ID:       uuid.NewString(),
		language: language,
		conv:     chat.NewConversation(language),
	}
}

// Extract checks fileName, reads the preview from r and starts a fresh
// cycle: any previous result, selection and conversation are dropped. On
// error the session is left unchanged.
func (s *Session) Extract(fileName string, r io.Reader) (*models.SpreadsheetPreview, error) {
	if err := datavision.CheckFileName(fileName); err != nil {
		return nil, err
	}
	preview, err := datavision.ExtractPreview(r)
	if err != nil {
		var ee *datavision.ExtractionError
		if errors.As(err, &ee) {
			ee.File = fileName
		}
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.fileName = fileName
	s.preview = preview
	s.result = nil
	s.conv = chat.NewConversation(s.language)
	return preview, nil
}

// Analyze requests an analysis of the current preview and stores the
// result. On error the previous result is kept.
func (s *Session) Analyze(ctx context.Context, a Analyzer) (*models.AnalysisResult, error) {
	s.mu.Lock()
	preview := s.preview
	s.mu.Unlock()
	if preview == nil {
		return nil, ErrNoPreview
	}

	result, err := a.Request(ctx, preview)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// A newer upload replaced the preview while the request ran.
	if s.preview == preview {
		s.result = result
	}
	return result, nil
}

// FileName returns the name of the loaded file.
func (s *Session) FileName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fileName
}

// Preview returns the loaded preview, or nil.
func (s *Session) Preview() *models.SpreadsheetPreview {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.preview
}

// Result returns the current analysis result, or nil.
func (s *Session) Result() *models.AnalysisResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// SelectLevel selects the option tagged with level and announces it in the
// conversation. Selecting the level that is already selected appends
// nothing and reports false.
func (s *Session) SelectLevel(level int) (models.ChatMessage, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.result == nil {
		return models.ChatMessage{}, false, datavision.ErrNoResult
	}
	opt, ok := s.result.Option(level)
	if !ok {
		return models.ChatMessage{}, false, datavision.ErrUnknownLevel
	}
	if cur := s.conv.Selected(); cur != nil && cur.Level == level {
		return models.ChatMessage{}, false, nil
	}
	return s.conv.Select(opt), true, nil
}

// Send runs one chat turn. It fails with datavision.ErrTurnInFlight while
// another turn is streaming. Transport failures are already recorded in the
// conversation as a fallback message when Send returns them.
func (s *Session) Send(ctx context.Context, streamer llm.Streamer, text string, onUpdate func(chat.Event)) (models.ChatMessage, error) {
	s.mu.Lock()
	conv := s.conv
	s.mu.Unlock()
	return conv.Send(ctx, streamer, text, onUpdate)
}

// Reset discards the file, preview, result, selection and conversation. A
// turn still streaming finishes against the discarded conversation.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fileName = ""
	s.preview = nil
	s.result = nil
	s.conv = chat.NewConversation(s.language)
}

// Snapshot returns a copy of the session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		ID:       s.ID,
		FileName: s.fileName,
		Preview:  s.preview,
		Result:   s.result,
		State:    s.conv.State().String(),
		Messages: s.conv.Messages(),
	}
	if sel := s.conv.Selected(); sel != nil {
		level := sel.Level
		snap.SelectedLevel = &level
	}
	return snap
}
