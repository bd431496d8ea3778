package multilang

import "github.com/nadzzz/vaani/internal/message"

// Entities are the structured fields pulled from an utterance. Fields the
// command does not use stay empty.
type Entities struct {
	Contact string `json:"contact,omitempty"`
	Message string `json:"message,omitempty"`
	AppName string `json:"app_name,omitempty"`
	Time    string `json:"time,omitempty"`
	Query   string `json:"query,omitempty"`
	Task    string `json:"task,omitempty"`
}

// WhatsAppAppName is the app opened ahead of every WhatsApp send.
const WhatsAppAppName = "WhatsApp"

// simpleTools maps commands without entities to their tool.
var simpleTools = map[CommandType]string{
	CommandGreeting:   message.ToolGreet,
	CommandTime:       message.ToolTellTime,
	CommandDate:       message.ToolTellDate,
	CommandWeather:    message.ToolGetWeather,
	CommandNews:       message.ToolGetNews,
	CommandJoke:       message.ToolTellJoke,
	CommandVolumeUp:   message.ToolVolumeUp,
	CommandVolumeDown: message.ToolVolumeDown,
	CommandScreenshot: message.ToolTakeScreenshot,
	CommandExit:       message.ToolExit,
}

// Synthesize turns a classified utterance into action descriptors plus a
// localized confirmation. It never fails: empty entities become empty
// params, and it is the executor side that rejects incomplete actions.
func Synthesize(cmd CommandType, e Entities, lang Language) ([]message.Action, string) {
	action := func(tool string, params map[string]string) message.Action {
		if params == nil {
			params = map[string]string{}
		}
		return message.Action{Tool: tool, Params: params, Language: string(lang)}
	}

	var actions []message.Action
	switch cmd {
	case CommandWhatsAppSend:
		actions = []message.Action{
			action(message.ToolOpenApp, map[string]string{"app_name": WhatsAppAppName}),
			action(message.ToolSendWhatsAppMessage, map[string]string{
				"contact_name": e.Contact,
				"message":      e.Message,
				"language":     string(lang),
			}),
		}
	case CommandPhoneCall:
		actions = []message.Action{action(message.ToolMakePhoneCall, map[string]string{"contact_name": e.Contact})}
	case CommandOpenApp:
		actions = []message.Action{action(message.ToolOpenApp, map[string]string{"app_name": e.AppName})}
	case CommandReminder:
		actions = []message.Action{action(message.ToolScheduleTask, map[string]string{
			"task_description": e.Task,
			"time":             e.Time,
		})}
	case CommandPlayYouTube:
		actions = []message.Action{action(message.ToolPlayYouTube, map[string]string{"query": e.Query})}
	default:
		if tool, ok := simpleTools[cmd]; ok {
			actions = []message.Action{action(tool, nil)}
		} else {
			actions = []message.Action{action(message.ToolNoAction, map[string]string{"reason": ReasonUnrecognized})}
			cmd = CommandNone
		}
	}

	return actions, confirmation(cmd, e, lang)
}

func confirmation(cmd CommandType, e Entities, lang Language) string {
	phrases, ok := confirmations[cmd]
	if !ok {
		return DefaultResponse
	}
	return phrases.Format(lang, map[string]string{
		"contact": orDefault(e.Contact, "contact"),
		"app":     orDefault(e.AppName, "app"),
		"time":    orDefault(e.Time, "specified time"),
		"query":   orDefault(e.Query, "your request"),
	})
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
