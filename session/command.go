package session

import (
	"errors"
	"strings"
)

// ErrUnknownCommand reports a slash input that matches no registered command.
var ErrUnknownCommand = errors.New("unknown command")

// CommandKind tags the slash commands so dispatch is an explicit switch
// rather than a string comparison chain.
type CommandKind int

const (
	CmdNone CommandKind = iota
	CmdSave
	CmdEdit
	CmdExecute
	CmdMode
	CmdModel
	CmdLanguage
	CmdInstall
	CmdClear
	CmdHelp
	CmdVersion
	CmdLog
	CmdDebug
	CmdHistory
	CmdShell
	CmdUpgrade
	CmdExit
	CmdUnknown
)

// Command is one parsed slash input: the kind tag, the raw token it was
// parsed from, and everything after the token.
type Command struct {
	Kind CommandKind
	Name string
	Args string
}

var commandKinds = map[string]CommandKind{
	"/save":     CmdSave,
	"/edit":     CmdEdit,
	"/execute":  CmdExecute,
	"/mode":     CmdMode,
	"/model":    CmdModel,
	"/language": CmdLanguage,
	"/install":  CmdInstall,
	"/clear":    CmdClear,
	"/help":     CmdHelp,
	"/version":  CmdVersion,
	"/log":      CmdLog,
	"/debug":    CmdDebug,
	"/history":  CmdHistory,
	"/shell":    CmdShell,
	"/upgrade":  CmdUpgrade,
	"/exit":     CmdExit,
}

// ParseCommand splits an input line into a tagged command. The second return
// is false for plain instructions. Bare `exit` and `quit` count as the exit
// command; any other slash token parses as CmdUnknown so the caller can
// report it.
func ParseCommand(line string) (Command, bool) {
	head, rest := splitCommand(line)
	if head == "" {
		return Command{}, false
	}
	if !strings.HasPrefix(head, "/") {
		if (head == "exit" || head == "quit") && rest == "" {
			return Command{Kind: CmdExit, Name: head}, true
		}
		return Command{}, false
	}
	kind, ok := commandKinds[head]
	if !ok {
		return Command{Kind: CmdUnknown, Name: head, Args: rest}, true
	}
	return Command{Kind: kind, Name: head, Args: rest}, true
}

func splitCommand(line string) (string, string) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return "", ""
	}
	idx := strings.IndexAny(trimmed, " \t")
	if idx == -1 {
		return strings.ToLower(trimmed), ""
	}
	return strings.ToLower(trimmed[:idx]), strings.TrimSpace(trimmed[idx+1:])
}
