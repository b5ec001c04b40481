package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/zenji/internal/core/domain"
	"github.com/custodia-labs/zenji/internal/core/ports/driven"
	"github.com/custodia-labs/zenji/internal/core/ports/driving"
	"github.com/custodia-labs/zenji/internal/logger"
)

// Ensure DialogOrchestrator implements the interface.
var _ driving.DialogService = (*DialogOrchestrator)(nil)

// Planner proposes the next dialog action for a session.
type Planner interface {
	Plan(ctx context.Context, state *domain.SessionState, message string) (*domain.DialogAction, error)
}

// Recommender composes recommendation text from an intake summary.
type Recommender interface {
	Recommend(ctx context.Context, summary string) (string, error)
}

// DialogOrchestrator runs the intake state machine one turn at a time.
// A turn is applied to a copy of the session and saved only when every
// step succeeded. Turns on the same session are serialised.
type DialogOrchestrator struct {
	sessions    driven.SessionStore
	planner     Planner
	recommender Recommender

	mu    sync.Mutex
	locks map[string]*sessionLock
}

// sessionLock serialises turns on one session. refs counts the callers
// holding or waiting on it; the entry is dropped when it reaches zero.
type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// NewDialogOrchestrator creates an orchestrator.
func NewDialogOrchestrator(sessions driven.SessionStore, planner Planner, recommender Recommender) *DialogOrchestrator {
	return &DialogOrchestrator{
		sessions:    sessions,
		planner:     planner,
		recommender: recommender,
		locks:       make(map[string]*sessionLock),
	}
}

// StartSession creates a session whose transcript opens with the greeting.
func (o *DialogOrchestrator) StartSession(ctx context.Context) (domain.SessionStart, error) {
	state := domain.NewSessionState()
	state.AddTurn(domain.RoleAssistant, domain.Greeting)

	id, err := o.sessions.Create(ctx, state)
	if err != nil {
		return domain.SessionStart{}, fmt.Errorf("create session: %w", err)
	}

	logger.Event("dialog.start", "session", id)
	return domain.SessionStart{SessionID: id, Greeting: domain.Greeting}, nil
}

// GetSession returns the stored state, or an error wrapping ErrInvalidSession.
func (o *DialogOrchestrator) GetSession(ctx context.Context, sessionID string) (*domain.SessionState, error) {
	state, err := o.sessions.Get(ctx, sessionID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidSession, sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return state, nil
}

// SubmitTurn applies one user message and returns the assistant reply.
func (o *DialogOrchestrator) SubmitTurn(ctx context.Context, sessionID, message string) (domain.TurnReply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return domain.TurnReply{}, fmt.Errorf("%w: message is required", domain.ErrInvalidInput)
	}

	unlock := o.lock(sessionID)
	defer unlock()

	stored, err := o.GetSession(ctx, sessionID)
	if err != nil {
		return domain.TurnReply{}, err
	}

	state := stored.Clone()
	state.AddTurn(domain.RoleUser, message)

	action, err := o.planner.Plan(ctx, state, message)
	if err != nil {
		return domain.TurnReply{}, fmt.Errorf("%w: %w", domain.ErrPlannerFailed, err)
	}
	logger.Debug("Planner action for %s: %+v", sessionID, *action)

	state.Merge(action)

	reply, err := o.dispatch(ctx, sessionID, action)
	if err != nil {
		return domain.TurnReply{}, err
	}
	state.AddTurn(domain.RoleAssistant, reply.Reply)

	if err := o.sessions.Save(ctx, sessionID, state); err != nil {
		return domain.TurnReply{}, fmt.Errorf("save session: %w", err)
	}

	logger.Event("dialog.turn", "session", sessionID, "stage", reply.Stage.String())
	return reply, nil
}

// dispatch picks the reply for a merged action. Safety overrides the stage.
func (o *DialogOrchestrator) dispatch(ctx context.Context, sessionID string, action *domain.DialogAction) (domain.TurnReply, error) {
	if action.Safety.Unsafe() {
		logger.WarnEvent("dialog.safety", "session", sessionID, "safety", string(action.Safety))
		return domain.TurnReply{Reply: domain.SafetyMessage, Stage: domain.StageEnd}, nil
	}

	switch action.Stage {
	case domain.StageAskFeelings, domain.StageAskContext, domain.StageAskDuration:
		return domain.TurnReply{
			Reply: firstNonEmpty(action.NextQuestion, domain.FallbackQuestion),
			Stage: action.Stage,
		}, nil

	case domain.StageConfirm:
		return domain.TurnReply{
			Reply: firstNonEmpty(action.NextQuestion, action.Summary, domain.FallbackConfirmation),
			Stage: domain.StageConfirm,
		}, nil

	case domain.StageRecommend, domain.StageEnd:
		text := strings.TrimSpace(action.RecommendationText)
		if text == "" {
			summary := firstNonEmpty(action.Summary, domain.FallbackSummary)
			var err error
			text, err = o.recommender.Recommend(ctx, summary)
			if err != nil {
				return domain.TurnReply{}, fmt.Errorf("compose recommendation: %w", err)
			}
		}
		return domain.TurnReply{Reply: text, Stage: domain.StageRecommend}, nil

	default:
		return domain.TurnReply{
			Reply: firstNonEmpty(action.NextQuestion, domain.FallbackOpener),
			Stage: action.Stage,
		}, nil
	}
}

// lock acquires the per-session mutex and returns its release func.
func (o *DialogOrchestrator) lock(sessionID string) func() {
	o.mu.Lock()
	l, ok := o.locks[sessionID]
	if !ok {
		l = &sessionLock{}
		o.locks[sessionID] = l
	}
	l.refs++
	o.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		o.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(o.locks, sessionID)
		}
		o.mu.Unlock()
	}
}

func (o *DialogOrchestrator) lockCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.locks)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
