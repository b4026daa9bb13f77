package conversation

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/heartmarshall/taskbot/internal/domain"
)

type command int

const (
	cmdNone command = iota
	cmdUnknown
	cmdStart
	cmdAdd
	cmdSearch
	cmdList
	cmdDone
	cmdHelp
	cmdCancel
	cmdSkip
)

// activates reports whether the command starts registration for an unknown user.
func (c command) activates() bool {
	switch c {
	case cmdStart, cmdAdd, cmdSearch, cmdList, cmdDone:
		return true
	}
	return false
}

var slashCommands = map[string]command{
	"start":  cmdStart,
	"menu":   cmdStart,
	"add":    cmdAdd,
	"search": cmdSearch,
	"find":   cmdSearch,
	"list":   cmdList,
	"done":   cmdDone,
	"help":   cmdHelp,
	"cancel": cmdCancel,
	"skip":   cmdSkip,
}

// Keyboard button labels.
const (
	labelMenu   = "Главное меню"
	labelAdd    = "Добавить задачу"
	labelSearch = "Поиск задач"
	labelList   = "Просмотр задач"
	labelHelp   = "Помощь"
	labelCancel = "Отмена"
	labelSkip   = "Пропустить"
)

// Menu button labels are matched as whole messages and behave like slash commands.
var labelCommands = map[string]command{
	strings.ToLower(labelMenu):   cmdStart,
	strings.ToLower(labelAdd):    cmdAdd,
	strings.ToLower(labelSearch): cmdSearch,
	strings.ToLower(labelList):   cmdList,
	strings.ToLower(labelHelp):   cmdHelp,
	strings.ToLower(labelCancel): cmdCancel,
	strings.ToLower(labelSkip):   cmdSkip,
}

// Bare words are commands only when no flow is in progress, except for
// cancel and skip which are reserved everywhere.
var wordCommands = map[string]command{
	"start":  cmdStart,
	"menu":   cmdStart,
	"add":    cmdAdd,
	"search": cmdSearch,
	"list":   cmdList,
	"done":   cmdDone,
	"help":   cmdHelp,
	"cancel": cmdCancel,
	"skip":   cmdSkip,
	"-":      cmdSkip,
}

// input is one parsed inbound message.
type input struct {
	text     string // trimmed raw text
	cmd      command
	arg      string // text after the command word
	explicit bool   // slash command or menu label
}

func parseInput(raw string) input {
	text := strings.TrimSpace(raw)
	in := input{text: text}
	if text == "" {
		return in
	}

	if strings.HasPrefix(text, "/") {
		head, rest, _ := strings.Cut(text[1:], " ")
		head, _, _ = strings.Cut(head, "@")
		in.explicit = true
		in.arg = strings.TrimSpace(rest)
		if cmd, ok := slashCommands[strings.ToLower(head)]; ok {
			in.cmd = cmd
		} else {
			in.cmd = cmdUnknown
		}
		return in
	}

	lower := domain.NormalizeText(text)
	if cmd, ok := labelCommands[lower]; ok {
		in.cmd = cmd
		in.explicit = true
		return in
	}

	head, rest, _ := strings.Cut(lower, " ")
	if cmd, ok := wordCommands[head]; ok {
		if rest == "" || cmd == cmdDone || cmd == cmdList {
			in.cmd = cmd
			in.arg = strings.TrimSpace(rest)
		}
	}
	return in
}

// command returns the command to act on given whether a flow is in progress.
func (in input) command(idle bool) command {
	switch {
	case in.explicit:
		return in.cmd
	case in.cmd == cmdCancel || in.cmd == cmdSkip:
		return in.cmd
	case idle:
		return in.cmd
	default:
		return cmdNone
	}
}

// position parses the numeric argument of "done N" and "list N".
func (in input) position() (int, bool) {
	n, err := strconv.Atoi(strings.TrimPrefix(in.arg, "#"))
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// parseTags splits a tag list on commas and whitespace.
func parseTags(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ';' || unicode.IsSpace(r)
	})
	return domain.NormalizeTags(fields)
}

// parseQuery splits a search query into comma-separated keyword phrases and
// '#'-prefixed tag tokens: "milk, bread #home" → [milk bread], [home].
func parseQuery(text string) (keywords, tags []string) {
	var rawKeywords, rawTags []string
	for _, phrase := range strings.Split(text, ",") {
		var words []string
		for _, f := range strings.Fields(phrase) {
			if strings.HasPrefix(f, "#") {
				rawTags = append(rawTags, f)
				continue
			}
			words = append(words, f)
		}
		if len(words) > 0 {
			rawKeywords = append(rawKeywords, strings.Join(words, " "))
		}
	}
	return domain.NormalizeKeywords(rawKeywords), domain.NormalizeTags(rawTags)
}
