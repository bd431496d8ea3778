package multilang

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/vaani/internal/message"
)

func TestInterpret_WhatsAppExplicitMarker(t *testing.T) {
	in := New().Interpret("whatsapp par mummy ko hello bhej do")

	assert.Equal(t, CommandWhatsAppSend, in.Command)
	assert.Equal(t, English, in.Language)
	assert.Equal(t, "Mummy", in.Entities.Contact)
	assert.Contains(t, in.Entities.Message, "hello")

	require.Len(t, in.Actions, 2)
	assert.Equal(t, message.ToolOpenApp, in.Actions[0].Tool)
	assert.Equal(t, WhatsAppAppName, in.Actions[0].Param("app_name"))
	assert.Equal(t, message.ToolSendWhatsAppMessage, in.Actions[1].Tool)
	assert.Equal(t, "Mummy", in.Actions[1].Param("contact_name"))
	assert.Equal(t, "en", in.Actions[1].Param("language"))
	assert.Equal(t, "Sending WhatsApp message to Mummy", in.Confirmation)
}

func TestInterpret_QuotedMessageWins(t *testing.T) {
	in := New().Interpret("mummy ko 'Hello Beta' bhej do")

	assert.Equal(t, CommandWhatsAppSend, in.Command)
	assert.Equal(t, "Hello Beta", in.Entities.Message)

	in = New().Interpret(`papa ko "Call me" bhejo`)
	assert.Equal(t, "Papa", in.Entities.Contact)
	assert.Equal(t, "Call me", in.Entities.Message)
}

func TestInterpret_PhoneCallResolvesRegistry(t *testing.T) {
	in := New().Interpret("bhai ko call karo")

	assert.Equal(t, CommandPhoneCall, in.Command)
	assert.Equal(t, "Krish", in.Entities.Contact)
	require.Len(t, in.Actions, 1)
	assert.Equal(t, message.ToolMakePhoneCall, in.Actions[0].Tool)
	assert.Equal(t, "Krish", in.Actions[0].Param("contact_name"))
}

func TestInterpret_Unrecognized(t *testing.T) {
	in := New().Interpret("xyz random text")

	assert.Equal(t, CommandNone, in.Command)
	assert.Equal(t, ReasonUnrecognized, in.Reason)
	require.Len(t, in.Actions, 1)
	assert.Equal(t, message.ToolNoAction, in.Actions[0].Tool)
	assert.Equal(t, ReasonUnrecognized, in.Actions[0].Param("reason"))
	assert.Equal(t, DefaultResponse, in.Confirmation)
}

func TestInterpret_EmptyInput(t *testing.T) {
	for _, text := range []string{"", "   ", "\t\n"} {
		in := New().Interpret(text)
		assert.True(t, in.Utterance.IsEmpty(), "input %q", text)
		assert.Equal(t, English, in.Language, "input %q", text)
		assert.Equal(t, CommandNone, in.Command, "input %q", text)
		require.Len(t, in.Actions, 1)
		assert.Equal(t, message.ToolNoAction, in.Actions[0].Tool)
	}
}

func TestInterpret_MissingMessageKeepsKeys(t *testing.T) {
	in := New().Interpret("mummy ko message bhejo")

	require.Equal(t, CommandWhatsAppSend, in.Command)
	require.Len(t, in.Actions, 2)
	send := in.Actions[1]
	require.Contains(t, send.Params, "contact_name")
	require.Contains(t, send.Params, "message")
	assert.Equal(t, "Mummy", send.Params["contact_name"])
	assert.Empty(t, send.Params["message"])
}

func TestInterpret_OpenApp(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"open chrome", "chrome"},
		{"launch calculator", "calculator"},
		{"youtube kholo", "youtube"},
		{"open spotify", "spotify"},
	}
	i := New()
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			in := i.Interpret(tt.text)
			require.Equal(t, CommandOpenApp, in.Command)
			assert.Equal(t, tt.want, in.Entities.AppName)
			assert.Equal(t, tt.want, in.Actions[0].Param("app_name"))
		})
	}
}

func TestInterpret_Reminder(t *testing.T) {
	in := New().Interpret("Remind me kal 5 baje")

	require.Equal(t, CommandReminder, in.Command)
	assert.Equal(t, "5 baje", in.Entities.Time)
	require.Len(t, in.Actions, 1)
	assert.Equal(t, message.ToolScheduleTask, in.Actions[0].Tool)
	assert.Equal(t, "Remind me kal 5 baje", in.Actions[0].Param("task_description"))
	assert.Equal(t, "5 baje", in.Actions[0].Param("time"))
	assert.Equal(t, "Setting reminder for 5 baje", in.Confirmation)
}

func TestInterpret_PlayYouTube(t *testing.T) {
	in := New().Interpret("youtube play lofi songs")

	require.Equal(t, CommandPlayYouTube, in.Command)
	assert.Equal(t, "lofi songs", in.Entities.Query)
	assert.Equal(t, message.ToolPlayYouTube, in.Actions[0].Tool)
}

func TestInterpret_SimpleCommandsUseDedicatedTools(t *testing.T) {
	tests := []struct {
		text string
		cmd  CommandType
		tool string
	}{
		{"namaste", CommandGreeting, message.ToolGreet},
		{"what time is it", CommandTime, message.ToolTellTime},
		{"aaj ki tarikh", CommandDate, message.ToolTellDate},
		{"mausam kaisa hai", CommandWeather, message.ToolGetWeather},
		{"latest news", CommandNews, message.ToolGetNews},
		{"joke sunao", CommandJoke, message.ToolTellJoke},
		{"volume up", CommandVolumeUp, message.ToolVolumeUp},
		{"take screenshot", CommandScreenshot, message.ToolTakeScreenshot},
		{"aavjo", CommandExit, message.ToolExit},
	}
	i := New()
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			in := i.Interpret(tt.text)
			assert.Equal(t, tt.cmd, in.Command)
			require.Len(t, in.Actions, 1)
			assert.Equal(t, tt.tool, in.Actions[0].Tool)
			assert.NotEmpty(t, in.Confirmation)
		})
	}
}

func TestInterpret_LocalizedConfirmation(t *testing.T) {
	in := New().Interpret("papa ko call karo अभी")
	assert.Equal(t, Hindi, in.Language)
	assert.Equal(t, "Papa ko call kar raha hoon", in.Confirmation)

	in = New().Interpret("gujarati mein bhai ko call karo")
	assert.Equal(t, Gujarati, in.Language)
	assert.Equal(t, "Krish ne call karu chu", in.Confirmation)
}

func TestInterpret_ToolsAlwaysKnown(t *testing.T) {
	inputs := []string{
		"", "hello", "whatsapp par mummy ko hello bhej do", "bhai ko call karo",
		"open chrome", "remind me at 10:30", "what is the date", "weather today",
		"youtube play songs", "news", "make me laugh", "louder", "volume down",
		"capture screen", "bye", "xyz random text", "मम्मी को फोन करो", "નમસ્તે",
	}
	i := New()
	for _, text := range inputs {
		for _, a := range i.Interpret(text).Actions {
			assert.True(t, message.IsKnownTool(a.Tool), "input %q produced tool %q", text, a.Tool)
			assert.NotNil(t, a.Params, "input %q", text)
		}
	}
}

func TestInterpret_Idempotent(t *testing.T) {
	i := New()
	text := "whatsapp par papa ko 'on my way' bhej do"
	assert.Equal(t, i.Interpret(text), i.Interpret(text))
}

func TestInterpret_ConcurrentUse(t *testing.T) {
	i := New()
	want := i.Interpret("bhai ko call karo")

	var wg sync.WaitGroup
	for n := 0; n < 16; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, want, i.Interpret("bhai ko call karo"))
		}()
	}
	wg.Wait()
}

func TestWithContacts(t *testing.T) {
	i := New(WithContacts(Alias{Name: "Riya", Variations: []string{"Riya", "riyu"}}))

	in := i.Interpret("riyu ko call karo")
	assert.Equal(t, "Riya", in.Entities.Contact)

	// Built-in relationships still resolve and still take precedence.
	in = i.Interpret("mummy ko call karo")
	assert.Equal(t, "Mummy", in.Entities.Contact)
}

func TestWithApps(t *testing.T) {
	i := New(WithApps(Alias{Name: "spotify", Variations: []string{"Spotify", "music"}}))

	in := i.Interpret("open music")
	assert.Equal(t, "spotify", in.Entities.AppName)
}

func TestNew_DefaultsNotShared(t *testing.T) {
	_ = New(WithContacts(Alias{Name: "Riya", Variations: []string{"riya"}}))
	assert.Len(t, DefaultContacts(), len(defaultContacts))
	// Without the option the name is only a positional capture.
	assert.Equal(t, "riya", New().Interpret("riya ko call karo").Entities.Contact)
}
