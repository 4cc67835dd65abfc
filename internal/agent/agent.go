// Package agent orchestrates one chat turn: normalize attachments, compose
// the pending user message, assemble the model context, invoke the provider
// and commit the exchange to the history store.
package agent

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/qmuntal/stateless"
	"github.com/sashabaranov/go-openai"

	"github.com/lbianchi/customgpt-go/internal/attach"
	"github.com/lbianchi/customgpt-go/internal/chat"
	"github.com/lbianchi/customgpt-go/internal/config"
	"github.com/lbianchi/customgpt-go/internal/history"
	"github.com/lbianchi/customgpt-go/internal/llm"
	"github.com/lbianchi/customgpt-go/internal/logger"
)

// FSM states for a single turn.
type turnState stateless.State

var (
	stateIngesting  turnState = "Ingesting"
	stateComposing  turnState = "Composing"
	stateAssembling turnState = "Assembling"
	stateInvoking   turnState = "Invoking"
	stateCommitting turnState = "Committing"
	stateDone       turnState = "Done"
	stateFailed     turnState = "Failed"
)

// FSM triggers.
type turnTrigger stateless.Trigger

var (
	triggerBegin     turnTrigger = "Begin"
	triggerIngested  turnTrigger = "Ingested"
	triggerComposed  turnTrigger = "Composed"
	triggerAssembled turnTrigger = "Assembled"
	triggerInvoked   turnTrigger = "Invoked"
	triggerCommitted turnTrigger = "Committed"
	triggerFailed    turnTrigger = "Failed"
)

// Session owns one conversation: the in-memory history, its store and the
// model client. All turn state is explicit; nothing lives in package globals.
// A Session is not safe for concurrent Turn calls; one turn runs to
// completion before the next begins.
type Session struct {
	id      string
	llm     llm.Client
	store   history.Store
	norm    *attach.Normalizer
	cfg     *config.Config
	history []chat.Message
}

// New loads the persisted history and returns a ready session.
func New(llmClient llm.Client, store history.Store, cfg *config.Config) (*Session, error) {
	messages, err := store.Load()
	if err != nil {
		return nil, err
	}
	policy := attach.Policy{
		MaxBytes:          cfg.Attachments.MaxBytes,
		MaxImageDimension: cfg.Attachments.MaxImageDimension,
		JPEGQuality:       cfg.Attachments.JPEGQuality,
	}
	return &Session{
		id:      uuid.NewString(),
		llm:     llmClient,
		store:   store,
		norm:    attach.NewNormalizer(policy),
		cfg:     cfg,
		history: messages,
	}, nil
}

func (s *Session) ID() string { return s.id }

// History returns a copy of the current exchange log.
func (s *Session) History() []chat.Message {
	out := make([]chat.Message, len(s.history))
	copy(out, s.history)
	return out
}

// Reset clears the in-memory log and the persisted copy.
func (s *Session) Reset() error {
	s.history = []chat.Message{}
	return s.store.Clear()
}

// turnContext carries the in-flight turn through the FSM.
type turnContext struct {
	text       string
	files      []attach.File
	normalized []attach.Normalized
	pending    chat.Message
	assembled  []chat.Message
	reply      string
	err        error
	persistErr error
}

// Turn runs one exchange. On success the history grows by exactly two
// messages (user, then assistant) and is persisted. A transport failure
// commits only the user message; an ingestion failure commits nothing.
func (s *Session) Turn(ctx context.Context, text string, files []attach.File) (string, error) {
	tc := &turnContext{text: text, files: files}

	fsm := stateless.NewStateMachine(stateIngesting)

	fsm.Configure(stateIngesting).
		PermitReentry(triggerBegin).
		OnEntry(func(ctx context.Context, _ ...any) error {
			for _, f := range tc.files {
				n, err := s.norm.Normalize(f)
				if err != nil {
					tc.err = err
					return fsm.FireCtx(ctx, triggerFailed)
				}
				tc.normalized = append(tc.normalized, n)
			}
			return fsm.FireCtx(ctx, triggerIngested)
		}).
		Permit(triggerIngested, stateComposing).
		Permit(triggerFailed, stateFailed)

	fsm.Configure(stateComposing).
		OnEntry(func(ctx context.Context, _ ...any) error {
			tc.pending = s.compose(tc.text, tc.normalized)
			return fsm.FireCtx(ctx, triggerComposed)
		}).
		Permit(triggerComposed, stateAssembling)

	fsm.Configure(stateAssembling).
		OnEntry(func(ctx context.Context, _ ...any) error {
			tc.assembled = chat.Assemble(s.history, s.cfg.LLM.SystemPrompt, tc.pending,
				chat.WindowPolicy{LastN: s.cfg.Window.LastN})
			return fsm.FireCtx(ctx, triggerAssembled)
		}).
		Permit(triggerAssembled, stateInvoking)

	fsm.Configure(stateInvoking).
		OnEntry(func(ctx context.Context, _ ...any) error {
			resp, err := s.llm.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
				Model:       s.cfg.LLM.Model,
				Messages:    llm.ChatMessages(tc.assembled),
				Temperature: s.cfg.LLM.Temperature,
				MaxTokens:   s.cfg.LLM.MaxTokens,
			})
			if err == nil && len(resp.Choices) == 0 {
				err = errors.New("provider returned no choices")
			}
			if err != nil {
				tc.err = &llm.TransportError{Err: err}
				// The user message is committed even when the invoke fails;
				// the assistant reply is never fabricated.
				s.history = append(s.history, tc.pending)
				if serr := s.store.Save(s.history); serr != nil {
					logger.L.Error("history save after transport failure", "error", serr)
				}
				return fsm.FireCtx(ctx, triggerFailed)
			}
			tc.reply = resp.Choices[0].Message.Content
			return fsm.FireCtx(ctx, triggerInvoked)
		}).
		Permit(triggerInvoked, stateCommitting).
		Permit(triggerFailed, stateFailed)

	fsm.Configure(stateCommitting).
		OnEntry(func(ctx context.Context, _ ...any) error {
			s.history = append(s.history, tc.pending, chat.NewText(chat.RoleAssistant, tc.reply))
			if err := s.store.Save(s.history); err != nil {
				// In-memory state is kept; the caller may retry the save.
				tc.persistErr = err
			}
			return fsm.FireCtx(ctx, triggerCommitted)
		}).
		Permit(triggerCommitted, stateDone)

	fsm.Configure(stateDone)
	fsm.Configure(stateFailed)

	if err := fsm.FireCtx(ctx, triggerBegin); err != nil {
		return "", err
	}

	if tc.err != nil {
		logger.L.Warn("turn failed", "session", s.id, "error", tc.err)
		return "", tc.err
	}
	logger.L.Debug("turn committed", "session", s.id, "messages", len(s.history))
	return tc.reply, tc.persistErr
}

// compose builds the pending user message: multimodal when any image
// attachment is present, otherwise plain text with attachment renderings
// appended.
func (s *Session) compose(text string, normalized []attach.Normalized) chat.Message {
	composed := text
	var images []attach.Normalized
	for _, n := range normalized {
		if n.IsImage() {
			images = append(images, n)
			continue
		}
		composed += "\n\n--- " + n.Name + " ---\n" + n.Text
	}

	if len(images) == 0 {
		return chat.NewText(chat.RoleUser, composed)
	}

	parts := []chat.Part{{Type: chat.PartText, Text: composed}}
	for _, img := range images {
		parts = append(parts, chat.Part{
			Type:      chat.PartImage,
			MediaType: img.MediaType,
			Data:      img.ImageData,
			Detail:    s.cfg.Attachments.ImageDetail,
		})
	}
	return chat.NewMultimodal(chat.RoleUser, parts)
}
