package conversation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/heartmarshall/taskbot/internal/domain"
)

type effectKind int

const (
	effectNone effectKind = iota
	effectRegister
	effectCreateTask
	effectListPending
	effectCompleteByPosition
	effectSearch
)

// effect is a side effect the engine must commit before the state advances.
type effect struct {
	kind        effectKind
	name        string
	phone       string
	description string
	tags        []string
	keywords    []string
	position    int
}

// outcome is the result of one transition. When effect is set, reply is
// ignored and the engine builds the reply from the effect's result.
type outcome struct {
	next         domain.ConversationState
	effect       effect
	reply        string
	replyIsError bool
}

func (o outcome) hasEffect() bool { return o.effect.kind != effectNone }

// machine holds the limits the transition function checks input against.
type machine struct {
	maxNameLen        int
	maxDescriptionLen int
}

func stay(s domain.ConversationState, reply string) outcome {
	return outcome{next: s, reply: reply, replyIsError: true}
}

func toIdle(reply string) outcome {
	return outcome{next: domain.IdleState(), reply: reply}
}

func step(flow domain.Flow, st domain.Step, scratch domain.Scratch, reply string) outcome {
	return outcome{
		next:  domain.ConversationState{Flow: flow, Step: st, Scratch: scratch},
		reply: reply,
	}
}

// transition computes the next state for one input. It performs no I/O.
func (m machine) transition(s domain.ConversationState, in input, registered bool) outcome {
	if s.IsIdle() {
		return m.idle(in, registered)
	}

	cmd := in.command(false)
	if cmd == cmdCancel {
		return toIdle(msgCancelled)
	}
	skipAllowed := s.Step == domain.StepAwaitingTagsOrSkip
	if cmd == cmdSkip && !skipAllowed && !in.explicit {
		// A bare "skip" is just text outside the tags step.
		cmd = cmdNone
	}
	if cmd != cmdNone && !(cmd == cmdSkip && skipAllowed) {
		return stay(s, msgFinishFlow)
	}

	switch s.Step {
	case domain.StepAwaitingName:
		return m.awaitingName(s, in)
	case domain.StepAwaitingPhone:
		return m.awaitingPhone(s, in)
	case domain.StepAwaitingText:
		return m.awaitingText(s, in)
	case domain.StepAwaitingTagsOrSkip:
		return m.awaitingTags(s, in, cmd == cmdSkip)
	case domain.StepAwaitingQuery:
		return m.awaitingQuery(s, in)
	default:
		// Unknown step from an older record: drop it.
		return toIdle(msgExpired)
	}
}

func (m machine) idle(in input, registered bool) outcome {
	cmd := in.command(true)

	if !registered {
		if cmd.activates() {
			return step(domain.FlowRegistering, domain.StepAwaitingName, domain.Scratch{}, msgAskName)
		}
		return toIdle(msgHelpUnregistered)
	}

	switch cmd {
	case cmdStart:
		return toIdle(msgMenu)
	case cmdAdd:
		return step(domain.FlowAddingTask, domain.StepAwaitingText, domain.Scratch{}, msgAskTaskText)
	case cmdSearch:
		if in.arg != "" {
			if kw, tags := parseQuery(in.arg); len(kw) > 0 || len(tags) > 0 {
				return outcome{next: domain.IdleState(), effect: effect{kind: effectSearch, keywords: kw, tags: tags}}
			}
		}
		return step(domain.FlowSearching, domain.StepAwaitingQuery, domain.Scratch{}, msgAskQuery)
	case cmdList:
		from := 1
		if in.arg != "" {
			n, ok := in.position()
			if !ok {
				return stay(domain.IdleState(), msgUsageList)
			}
			from = n
		}
		return outcome{next: domain.IdleState(), effect: effect{kind: effectListPending, position: from}}
	case cmdDone:
		n, ok := in.position()
		if !ok {
			return stay(domain.IdleState(), msgUsageDone)
		}
		return outcome{next: domain.IdleState(), effect: effect{kind: effectCompleteByPosition, position: n}}
	case cmdCancel:
		return toIdle(msgNothingToCancel)
	case cmdHelp:
		return toIdle(msgMenu)
	default:
		return toIdle(msgUnknown)
	}
}

func (m machine) awaitingName(s domain.ConversationState, in input) outcome {
	name := strings.Join(strings.Fields(in.text), " ")
	switch {
	case name == "":
		return stay(s, msgNameRequired)
	case m.maxNameLen > 0 && utf8.RuneCountInString(name) > m.maxNameLen:
		return stay(s, fmt.Sprintf(msgNameTooLong, m.maxNameLen))
	}
	return step(domain.FlowRegistering, domain.StepAwaitingPhone, domain.Scratch{Name: name}, fmt.Sprintf(msgAskPhone, name))
}

func (m machine) awaitingPhone(s domain.ConversationState, in input) outcome {
	phone, ok := domain.NormalizePhone(in.text)
	if !ok {
		return stay(s, msgBadPhone)
	}
	return outcome{
		next:   domain.IdleState(),
		effect: effect{kind: effectRegister, name: s.Scratch.Name, phone: phone},
	}
}

func (m machine) awaitingText(s domain.ConversationState, in input) outcome {
	text := domain.CollapseSpace(in.text)
	switch {
	case text == "":
		return stay(s, msgTaskRequired)
	case m.maxDescriptionLen > 0 && utf8.RuneCountInString(text) > m.maxDescriptionLen:
		return stay(s, fmt.Sprintf(msgTaskTooLong, m.maxDescriptionLen))
	}
	return step(domain.FlowAddingTask, domain.StepAwaitingTagsOrSkip, domain.Scratch{TaskText: text}, msgAskTags)
}

func (m machine) awaitingTags(s domain.ConversationState, in input, skip bool) outcome {
	var tags []string
	if !skip {
		tags = parseTags(in.text)
	}
	return outcome{
		next:   domain.IdleState(),
		effect: effect{kind: effectCreateTask, description: s.Scratch.TaskText, tags: tags},
	}
}

func (m machine) awaitingQuery(s domain.ConversationState, in input) outcome {
	keywords, tags := parseQuery(in.text)
	if len(keywords) == 0 && len(tags) == 0 {
		return stay(s, msgQueryEmpty)
	}
	return outcome{
		next:   domain.IdleState(),
		effect: effect{kind: effectSearch, keywords: keywords, tags: tags},
	}
}
