package conversation

// Mode is the conversation behavior currently active for a user. The zero
// value means no mode is selected (mode selection / ended session).
type Mode string

const (
	ModeNone    Mode = ""
	ModeChat    Mode = "chat"
	ModeJournal Mode = "journal"
	ModeOCR     Mode = "ocr"
)

func (m Mode) Valid() bool {
	switch m {
	case ModeChat, ModeJournal, ModeOCR:
		return true
	}
	return false
}

// Title is the human-readable mode name used in replies.
func (m Mode) Title() string {
	switch m {
	case ModeChat:
		return "Chatbot 💬"
	case ModeJournal:
		return "Journal 📓"
	case ModeOCR:
		return "OCR 📄"
	default:
		return "Unknown"
	}
}

// Instructions is the message sent right after the mode is entered.
func (m Mode) Instructions() string {
	switch m {
	case ModeChat:
		return "Send text, audio, or image."
	case ModeJournal:
		return "Send text, audio, or image for your entry."
	case ModeOCR:
		return "Send an image to extract text."
	default:
		return ""
	}
}

type EventKind int

const (
	EventStart EventKind = iota
	EventSelect
	EventCancel
	EventEnd
	EventContent
)

// Event is one user action fed to the state machine. Mode is only meaningful
// for EventSelect.
type Event struct {
	Kind EventKind
	Mode Mode
}

// Effect tells the caller what to do after a transition. The machine itself
// performs no I/O.
type Effect int

const (
	// EffectNone: ignore the event (e.g. a stale mode button tap).
	EffectNone Effect = iota
	// EffectPresentModes: show the three mode choices.
	EffectPresentModes
	// EffectModeInstructions: acknowledge the new mode and send its instructions.
	EffectModeInstructions
	// EffectInvalidSelection: the selection payload named no known mode.
	EffectInvalidSelection
	// EffectCancelled: acknowledge cancellation, then present the mode choices.
	EffectCancelled
	// EffectEnded: acknowledge that the session is over.
	EffectEnded
	// EffectDispatch: hand the content to the active mode's handler.
	EffectDispatch
	// EffectAskSelect: tell the user to pick a mode first.
	EffectAskSelect
)

// Next is the pure transition function: given the current mode and an event it
// returns the next mode and the effect the caller must carry out.
func Next(current Mode, ev Event) (Mode, Effect) {
	switch ev.Kind {
	case EventStart:
		return ModeNone, EffectPresentModes

	case EventSelect:
		if current != ModeNone {
			// A selection is only honored while choosing a mode; taps on an
			// old keyboard inside an active mode are ignored.
			return current, EffectNone
		}
		if !ev.Mode.Valid() {
			return ModeNone, EffectInvalidSelection
		}
		return ev.Mode, EffectModeInstructions

	case EventCancel:
		return ModeNone, EffectCancelled

	case EventEnd:
		return ModeNone, EffectEnded

	case EventContent:
		if current == ModeNone {
			return ModeNone, EffectAskSelect
		}
		return current, EffectDispatch
	}

	return current, EffectNone
}
