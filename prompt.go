package horizon

import (
	"context"
	"fmt"
)

// Decision is a prompter's answer to a Question.
type Decision int

// Decisions.
const (
	DecisionYes Decision = iota
	DecisionNo
	DecisionCancel
)

func (d Decision) String() string {
	switch d {
	case DecisionYes:
		return "yes"
	case DecisionNo:
		return "no"
	case DecisionCancel:
		return "cancel"
	default:
		return fmt.Sprintf("decision(%d)", int(d))
	}
}

// QuestionKind identifies what a Question asks.
type QuestionKind int

const (
	// QuestionSizeMismatch asks whether to keep opening a save whose size
	// disagrees with its detected version. Yes continues; No and Cancel
	// abort the open.
	QuestionSizeMismatch QuestionKind = iota + 1

	// QuestionEnableBackup asks, once, whether saves should be backed up
	// automatically when opened. Cancel defers the question to the next open.
	QuestionEnableBackup
)

// Question is put to the Prompter while opening a save.
type Question struct {
	Kind QuestionKind

	// Path is the save file being opened.
	Path string

	// Mismatch is set for QuestionSizeMismatch.
	Mismatch *SizeMismatchError
}

// String returns the question as text suitable for a dialog or terminal.
func (q Question) String() string {
	switch q.Kind {
	case QuestionSizeMismatch:
		if q.Mismatch == nil {
			return fmt.Sprintf("%s has an unexpected size. Open anyway?", q.Path)
		}
		return fmt.Sprintf("%s is %#x bytes but a %s save needs %#x. Open anyway?",
			q.Path, q.Mismatch.Actual, q.Mismatch.Version, q.Mismatch.Expected)
	case QuestionEnableBackup:
		return "Back up save folders automatically before editing?"
	default:
		return fmt.Sprintf("question(%d)", int(q.Kind))
	}
}

// Prompter answers questions raised while opening a save.
type Prompter interface {
	Ask(ctx context.Context, q Question) (Decision, error)
}

// PromptFunc adapts a function to the Prompter interface.
type PromptFunc func(ctx context.Context, q Question) (Decision, error)

// Ask calls f.
func (f PromptFunc) Ask(ctx context.Context, q Question) (Decision, error) {
	return f(ctx, q)
}

// Answer returns a Prompter that gives d to every question.
func Answer(d Decision) Prompter {
	return PromptFunc(func(context.Context, Question) (Decision, error) {
		return d, nil
	})
}
