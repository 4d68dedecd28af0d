package parser

import "strings"

// Command — известные парсеру команды IRC Twitch.
type Command int

const (
	CommandUnknown Command = iota
	CommandWhisper
	CommandGlobalUserState
	CommandJoin
	CommandPart
	CommandNames
	CommandEndOfNames
	CommandMode
	CommandRoomState
	CommandUserState
	CommandUserNotice
	CommandClearChat
	CommandHostTarget
	CommandNotice
	CommandPrivmsg
)

var commandNames = [...]string{
	CommandUnknown:         "unknown",
	CommandWhisper:         "WHISPER",
	CommandGlobalUserState: "GLOBALUSERSTATE",
	CommandJoin:            "JOIN",
	CommandPart:            "PART",
	CommandNames:           "353",
	CommandEndOfNames:      "366",
	CommandMode:            "MODE",
	CommandRoomState:       "ROOMSTATE",
	CommandUserState:       "USERSTATE",
	CommandUserNotice:      "USERNOTICE",
	CommandClearChat:       "CLEARCHAT",
	CommandHostTarget:      "HOSTTARGET",
	CommandNotice:          "NOTICE",
	CommandPrivmsg:         "PRIVMSG",
}

func (c Command) String() string {
	if c < 0 || int(c) >= len(commandNames) {
		return commandNames[CommandUnknown]
	}
	return commandNames[c]
}

func commandOf(name string) Command {
	if strings.HasPrefix(name, "GLOBALUSERSTATE") {
		return CommandGlobalUserState
	}
	for c, n := range commandNames {
		if Command(c) != CommandUnknown && n == name {
			return Command(c)
		}
	}
	return CommandUnknown
}
