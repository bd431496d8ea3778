package multilang

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	u := Normalize("  Mummy KO 'Hello' Bhej Do \n")
	assert.Equal(t, "Mummy KO 'Hello' Bhej Do", u.Raw)
	assert.Equal(t, "mummy ko 'hello' bhej do", u.Normalized)

	// Scripts without case only lose surrounding whitespace.
	u = Normalize(" नमस्ते ")
	assert.Equal(t, "नमस्ते", u.Normalized)
	assert.Equal(t, u.Raw, u.Normalized)

	assert.True(t, Normalize("").IsEmpty())
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Language
	}{
		{"devanagari", "मम्मी को फोन करो", Hindi},
		{"mixed devanagari", "call करो papa ko", Hindi},
		{"gujarati script", "પપ્પા ને ફોન કરો", Gujarati},
		{"latin default", "call papa", English},
		{"code-mixed latin", "mummy ko hello bhej do", English},
		{"empty", "", English},
		{"hindi marker", "reply in hindi", Hindi},
		{"gujarati marker over devanagari", "gujarati ma बताओ", Gujarati},
		{"english marker over gujarati script", "english me કહો", English},
		{"local script marker", "ગુજરાતી માં કહો", Gujarati},
		{"hindi marker wins over gujarati marker", "hindi or gujarati", Hindi},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectLanguage(Normalize(tt.text)))
		})
	}
}

func TestParseLanguage(t *testing.T) {
	assert.Equal(t, Hindi, ParseLanguage("HI"))
	assert.Equal(t, Gujarati, ParseLanguage(" gujarati "))
	assert.Equal(t, English, ParseLanguage("fr"))
	assert.Equal(t, "gu", Gujarati.Tag().String())
}

func TestClassify_TableOrderBreaksTies(t *testing.T) {
	i := New()

	// "time" and "news" both match; time is earlier in the table.
	cmd, _ := i.Classify(Normalize("news at current time"))
	assert.Equal(t, CommandTime, cmd)

	// Substring matching: "hi" inside "this" triggers greeting first.
	cmd, _ = i.Classify(Normalize("this weather"))
	assert.Equal(t, CommandGreeting, cmd)
}

func TestClassify_PostpositionWithoutMarker(t *testing.T) {
	cmd, reason := New().Classify(Normalize("krish ne msg moklo"))
	assert.Equal(t, CommandWhatsAppSend, cmd)
	assert.Empty(t, reason)
}

func TestExtractContact_Positional(t *testing.T) {
	i := New()
	tests := []struct {
		text string
		want string
	}{
		{"krishna whatsapp mein message mokalo", "krishna"}, // <w> whatsapp
		{"rahul ko call karo", "rahul"},                     // ^<w> ko
		{"whatsapp par rohit ko hello bhej do", "rohit"},    // <w> ko
		{"send whatsapp par rohit", "rohit"},                // whatsapp par <w>
		{"call pe rohit ko", "rohit"},                       // pe <w> ko
		{"message bhejo ne rohit", "rohit"},                 // ne <w>
		// Stop words move on to the next pattern.
		{"hello ko rohit bhejo", "rohit"},
		{"bhejo ko", ""},
		{"call karo", ""},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, i.ExtractContact(Normalize(tt.text)))
		})
	}
}

func TestExtractMessage(t *testing.T) {
	i := New()
	tests := []struct {
		text string
		want string
	}{
		{"rohit ko good night bhej do", "good night"},
		{"send see you soon to rohit", "see you soon"},
		{"hay bhej do", "hay"},
		{`rohit ko "See You" bhej do`, "See You"},
		{"rohit ko 'a' \"b\" bhej do", "a"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, i.ExtractMessage(Normalize(tt.text)))
		})
	}
}

func TestExtractTime(t *testing.T) {
	i := New()
	tests := []struct {
		text string
		want string
	}{
		{"remind me at 7 pm", "7 pm"},
		{"subah 6 yaad dilao", "subah 6"},
		{"reminder at 10:30", "10:30"},
		{"remind me tomorrow", TimeTomorrow},
		{"aaj reminder lagao", TimeToday},
		{"remind me", ""},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, i.ExtractTime(Normalize(tt.text)))
		})
	}
}

func TestPhrasesFallback(t *testing.T) {
	p := Phrases{English: "Calling {contact}"}
	assert.Equal(t, "Calling Papa", p.Format(Hindi, map[string]string{"contact": "Papa"}))
	assert.Equal(t, DefaultResponse, Phrases{}.For(Gujarati))
}
