package executor

import (
	"strings"

	"github.com/nadzzz/vaani/internal/interpreter/multilang"
	"github.com/nadzzz/vaani/internal/message"
)

// requiredParams lists, per tool, the params that must be non-empty before
// the tool can run. Tools not listed take no required params.
var requiredParams = map[string][]string{
	message.ToolSendWhatsAppMessage: {"contact_name", "message"},
	message.ToolMakePhoneCall:       {"contact_name"},
	message.ToolOpenApp:             {"app_name"},
	message.ToolScheduleTask:        {"task_description"},
	message.ToolPlayYouTube:         {"query"},
}

// Validate returns the required params of action that are empty, in
// declaration order. A nil result means the action is complete.
func Validate(action message.Action) []string {
	var missing []string
	for _, key := range requiredParams[action.Tool] {
		if strings.TrimSpace(action.Param(key)) == "" {
			missing = append(missing, key)
		}
	}
	return missing
}

// ValidateAll checks every action and returns the missing params prefixed
// with the tool ("send_whatsapp_message.message"), together with the first
// incomplete action's tool.
func ValidateAll(actions []message.Action) (missing []string, firstTool string) {
	for _, a := range actions {
		for _, key := range Validate(a) {
			if firstTool == "" {
				firstTool = a.Tool
			}
			missing = append(missing, a.Tool+"."+key)
		}
	}
	return missing, firstTool
}

var clarifications = map[string]multilang.Phrases{
	message.ToolSendWhatsAppMessage: {
		multilang.English:  "Contact name or message is missing",
		multilang.Hindi:    "Contact ka naam ya message nahi mila",
		multilang.Gujarati: "Contact nu naam ke message nathi",
	},
	message.ToolMakePhoneCall: {
		multilang.English:  "Contact name is missing",
		multilang.Hindi:    "Contact ka naam nahi mila",
		multilang.Gujarati: "Contact nu naam nathi",
	},
	message.ToolOpenApp: {
		multilang.English:  "Which app should I open?",
		multilang.Hindi:    "Kaunsa app kholun?",
		multilang.Gujarati: "Kayu app kholu?",
	},
	message.ToolScheduleTask: {
		multilang.English:  "Task description is missing",
		multilang.Hindi:    "Task ka vivaran nahi mila",
		multilang.Gujarati: "Task nu vivaran nathi",
	},
	message.ToolPlayYouTube: {
		multilang.English:  "What should I play on YouTube?",
		multilang.Hindi:    "YouTube par kya chalaun?",
		multilang.Gujarati: "YouTube par shu chalavu?",
	},
}

// Clarification returns the follow-up question asked when tool is missing
// required params.
func Clarification(tool string, lang multilang.Language) string {
	if p, ok := clarifications[tool]; ok {
		return p.For(lang)
	}
	return multilang.Phrases{multilang.English: "Some details are missing"}.For(lang)
}
