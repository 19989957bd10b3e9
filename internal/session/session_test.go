package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"healthpaddie/internal/chunker"
	"healthpaddie/internal/domain"
	"healthpaddie/internal/embedding/hashing"
	"healthpaddie/internal/ingest"
	"healthpaddie/internal/language"
	"healthpaddie/internal/retriever"
	"healthpaddie/internal/vectorstore/memory"
)

// scriptedGenerator records the messages it is asked to answer.
type scriptedGenerator struct {
	answer       string
	err          error
	calls        int
	lastMessages []domain.ChatMessage
}

func (g *scriptedGenerator) ModelName() string { return "scripted" }

func (g *scriptedGenerator) Chat(_ context.Context, messages []domain.ChatMessage, _ domain.GenerateOptions) (string, error) {
	g.calls++
	g.lastMessages = messages
	if g.err != nil {
		return "", g.err
	}
	return g.answer, nil
}

type recordingTurnLogger struct {
	turns [][4]string
	err   error
}

func (l *recordingTurnLogger) LogTurn(sessionID, lang, user, bot string) error {
	l.turns = append(l.turns, [4]string{sessionID, lang, user, bot})
	return l.err
}

type failingSpeaker struct{ calls int }

func (s *failingSpeaker) Speak(context.Context, string) error {
	s.calls++
	return errors.New("no audio device")
}

func english(t *testing.T) language.Option {
	t.Helper()
	opt, ok := language.Lookup("1")
	require.True(t, ok)
	return opt
}

func newGroundedRetriever(t *testing.T, docText string) *retriever.Retriever {
	t.Helper()
	corpus := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(corpus, "doc.txt"), []byte(docText), 0o644))
	indexDir := filepath.Join(t.TempDir(), "vectorstore")

	e, err := hashing.New(hashing.DefaultDimension)
	require.NoError(t, err)
	c, err := chunker.New(chunker.DefaultChunkSize, chunker.DefaultChunkOverlap)
	require.NoError(t, err)

	report, err := ingest.New(c, e, zap.NewNop(), 0).Run(context.Background(), corpus, indexDir)
	require.NoError(t, err)
	require.True(t, report.Written)

	store, err := memory.Load(indexDir, e.ModelName(), e.Dimension())
	require.NoError(t, err)
	return retriever.New(e, store, 3)
}

func TestAskGroundedAnswerEndToEnd(t *testing.T) {
	const sentence = "Malaria is treated with antimalarial drugs such as ACT."
	r := newGroundedRetriever(t, sentence)
	gen := &scriptedGenerator{answer: "Malaria is treated with ACT. See a doctor for serious symptoms."}
	logger := &recordingTurnLogger{}

	s := New(english(t), r, gen, logger, nil, zap.NewNop(), Options{})
	answer, err := s.Ask(context.Background(), "How is malaria treated?")
	require.NoError(t, err)
	assert.Equal(t, gen.answer, answer)
	assert.Equal(t, Idle, s.State())

	// the assembled prompt carries the retrieved sentence verbatim
	require.Len(t, gen.lastMessages, 2)
	assert.Contains(t, gen.lastMessages[1].Content, sentence)
	assert.Contains(t, gen.lastMessages[0].Content, "Respond in clear, simple English.")

	// conversation memory and the turn log were updated
	require.Equal(t, 2, s.History().Len())
	require.Len(t, logger.turns, 1)
	assert.Equal(t, s.ID(), logger.turns[0][0])
	assert.Equal(t, "English", logger.turns[0][1])
}

func TestAskEmptyQuestionNeverCallsGenerator(t *testing.T) {
	r := newGroundedRetriever(t, "Some corpus text about health.")
	gen := &scriptedGenerator{answer: "should not be used"}

	s := New(english(t), r, gen, nil, nil, zap.NewNop(), Options{})
	_, err := s.Ask(context.Background(), "   ")
	require.ErrorIs(t, err, domain.ErrEmptyQuestion)
	assert.Zero(t, gen.calls)
	assert.Zero(t, s.History().Len())
	assert.Equal(t, Failed, s.State())
}

func TestAskGenerationFailureLeavesHistoryUntouched(t *testing.T) {
	r := newGroundedRetriever(t, "Some corpus text about health.")
	gen := &scriptedGenerator{err: domain.ErrGeneration}

	s := New(english(t), r, gen, nil, nil, zap.NewNop(), Options{})
	_, err := s.Ask(context.Background(), "What helps a fever?")
	require.ErrorIs(t, err, domain.ErrGeneration)
	assert.Equal(t, Failed, s.State())
	assert.Zero(t, s.History().Len())

	// the session survives: a later question still works
	gen.err = nil
	gen.answer = "Rest and fluids."
	answer, err := s.Ask(context.Background(), "What helps a fever?")
	require.NoError(t, err)
	assert.Equal(t, "Rest and fluids.", answer)
	assert.Equal(t, Idle, s.State())
}

func TestAskCollaboratorFailuresDoNotAbort(t *testing.T) {
	r := newGroundedRetriever(t, "Some corpus text about health.")
	gen := &scriptedGenerator{answer: "An answer."}
	logger := &recordingTurnLogger{err: errors.New("disk full")}
	speaker := &failingSpeaker{}

	s := New(english(t), r, gen, logger, speaker, zap.NewNop(), Options{})
	answer, err := s.Ask(context.Background(), "Anything?")
	require.NoError(t, err)
	assert.Equal(t, "An answer.", answer)
	assert.Equal(t, 1, speaker.calls)
	assert.Equal(t, 2, s.History().Len())
}

func TestAskHistoryViewIsBounded(t *testing.T) {
	r := newGroundedRetriever(t, "Some corpus text about health.")
	gen := &scriptedGenerator{answer: "ok"}

	s := New(english(t), r, gen, nil, nil, zap.NewNop(), Options{HistoryWindow: 4})
	for i := 0; i < 10; i++ {
		_, err := s.Ask(context.Background(), fmt.Sprintf("question number %d about health", i))
		require.NoError(t, err)
	}

	// full history retained, prompt view bounded to the last 4 turns:
	// the final ask sees only questions 7 and 8 in its history section
	assert.Equal(t, 20, s.History().Len())
	assert.NotContains(t, gen.lastMessages[1].Content, "question number 6")
	assert.Contains(t, gen.lastMessages[1].Content, "question number 7")
	assert.Contains(t, gen.lastMessages[1].Content, "question number 8")
}
