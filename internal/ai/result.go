package ai

import "fmt"

// ResultKind classifies a model call outcome. Blocked, APIError and Empty
// travel through the pipeline as values rather than errors so every stage can
// branch on them without string sniffing.
type ResultKind int

const (
	KindOK ResultKind = iota
	KindBlocked
	KindAPIError
	KindEmpty
)

type Result struct {
	Kind   ResultKind
	Text   string
	Reason string
}

func OK(text string) Result {
	return Result{Kind: KindOK, Text: text}
}

func Blocked(reason string) Result {
	return Result{Kind: KindBlocked, Reason: reason}
}

func APIError(reason string) Result {
	return Result{Kind: KindAPIError, Reason: reason}
}

func Empty() Result {
	return Result{Kind: KindEmpty}
}

func (r Result) IsOK() bool {
	return r.Kind == KindOK
}

// Tag renders the non-OK outcome as a short user-facing marker.
func (r Result) Tag() string {
	switch r.Kind {
	case KindBlocked:
		return fmt.Sprintf("[BLOCKED: %s]", r.Reason)
	case KindAPIError:
		return fmt.Sprintf("[API ERROR: %s]", r.Reason)
	case KindEmpty:
		return "[No text content received]"
	default:
		return ""
	}
}
