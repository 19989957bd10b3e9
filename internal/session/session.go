// Package session runs the query/answer cycle for one conversation.
// One question is fully processed before the next is accepted; every
// session owns its conversation history outright, so concurrent sessions
// never share mutable state.
package session

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"healthpaddie/internal/domain"
	"healthpaddie/internal/history"
	"healthpaddie/internal/language"
	"healthpaddie/internal/prompt"
	"healthpaddie/internal/retriever"
)

// State tracks where the cycle is for the current question.
type State int

const (
	Idle State = iota
	Retrieving
	Assembling
	Generating
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Retrieving:
		return "retrieving"
	case Assembling:
		return "assembling"
	case Generating:
		return "generating"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Options tune one session.
type Options struct {
	// HistoryWindow bounds the history view used for prompt assembly.
	// Zero means history.DefaultWindow. The underlying store is unbounded.
	HistoryWindow int
	MaxTokens     int
	Temperature   float64
}

// Session answers questions grounded in the retrieved corpus.
type Session struct {
	id         string
	lang       language.Option
	retriever  *retriever.Retriever
	generator  domain.Generator
	history    *history.History
	turnLogger domain.TurnLogger
	speaker    domain.Speaker
	logger     *zap.Logger
	opts       Options
	state      State
}

// New creates a session. turnLogger and speaker may be nil.
func New(lang language.Option, r *retriever.Retriever, g domain.Generator,
	turnLogger domain.TurnLogger, speaker domain.Speaker, logger *zap.Logger, opts Options) *Session {
	if opts.HistoryWindow <= 0 {
		opts.HistoryWindow = history.DefaultWindow
	}
	return &Session{
		id:         uuid.NewString(),
		lang:       lang,
		retriever:  r,
		generator:  g,
		history:    history.New(),
		turnLogger: turnLogger,
		speaker:    speaker,
		logger:     logger,
		opts:       opts,
	}
}

// ID returns the session identifier used in the chat log.
func (s *Session) ID() string { return s.id }

// Language returns the answer language for this session.
func (s *Session) Language() language.Option { return s.lang }

// State reports the cycle state: Idle between questions, Failed after an
// aborted cycle.
func (s *Session) State() State { return s.state }

// History exposes the session's conversation record.
func (s *Session) History() *history.History { return s.history }

// Ask runs one full cycle: retrieve, assemble, generate. A failure aborts
// the cycle and leaves the conversation history untouched; the session
// stays usable for the next question. Logging and speech collaborators run
// after the answer is committed and cannot fail the cycle.
func (s *Session) Ask(ctx context.Context, question string) (string, error) {
	s.state = Retrieving
	passages, err := s.retriever.Retrieve(ctx, question)
	if err != nil {
		s.state = Failed
		if !errors.Is(err, domain.ErrEmptyQuestion) {
			s.logger.Warn("retrieval failed", zap.String("session", s.id), zap.Error(err))
		}
		return "", err
	}

	s.state = Assembling
	view := s.history.Recent(s.opts.HistoryWindow)
	messages := prompt.Assemble(question, s.lang.Instruction, view, passages)

	s.state = Generating
	answer, err := s.generator.Chat(ctx, messages, domain.GenerateOptions{
		MaxTokens:   s.opts.MaxTokens,
		Temperature: s.opts.Temperature,
	})
	if err != nil {
		s.state = Failed
		s.logger.Warn("generation failed", zap.String("session", s.id), zap.Error(err))
		return "", err
	}

	s.history.Append(domain.RoleUser, question)
	s.history.Append(domain.RoleAssistant, answer)
	s.notify(ctx, question, answer)

	s.state = Idle
	return answer, nil
}

func (s *Session) notify(ctx context.Context, question, answer string) {
	if s.turnLogger != nil {
		if err := s.turnLogger.LogTurn(s.id, s.lang.Name, question, answer); err != nil {
			s.logger.Warn("chat log write failed", zap.String("session", s.id), zap.Error(err))
		}
	}
	if s.speaker != nil {
		if err := s.speaker.Speak(ctx, answer); err != nil {
			s.logger.Warn("speech playback failed", zap.String("session", s.id), zap.Error(err))
		}
	}
}
