package assistant

import (
	"context"

	"github.com/ashureev/campus-assistant/internal/domain"
)

// Assistant runs one message through the scope guard, course resolution,
// the cascade and the responder.
type Assistant struct {
	cascade   *Cascade
	responder *Responder
}

// New creates an assistant. A nil cascade selects DefaultCascade.
func New(cascade *Cascade, responder *Responder) *Assistant {
	if cascade == nil {
		cascade = DefaultCascade()
	}
	return &Assistant{cascade: cascade, responder: responder}
}

// Classify resolves the intent of text without acting on it.
//
// Out-of-scope messages short-circuit to KindOutOfScope unless they carry a
// portal signal (a course, an issue report, a deadline question), in which
// case the cascade decides.
func (a *Assistant) Classify(text string, snap *domain.Snapshot) Intent {
	if snap == nil {
		snap = &domain.Snapshot{}
	}
	in := NewInput(text, snap.Courses)
	if !hasPortalSignal(in) && IsOutOfScope(text) {
		return Intent{Kind: KindOutOfScope, Rule: "scope_guard", Text: text}
	}
	return a.cascade.Classify(in)
}

// Reply classifies text and produces the assistant's answer. messageID
// identifies the user message so that a support ticket is filed at most once.
func (a *Assistant) Reply(ctx context.Context, messageID, text string, snap *domain.Snapshot) Reply {
	intent := a.Classify(text, snap)
	return a.responder.Respond(ctx, messageID, intent, snap)
}

func hasPortalSignal(in Input) bool {
	return in.Course != nil || isIssue(in) || deadlineRe.MatchString(in.Text)
}
