package multilang

import "strings"

// Phrases is a localized string table. Lookups for a language without an
// entry fall back to English.
type Phrases map[Language]string

// DefaultResponse is used when neither the requested language nor English
// has an entry.
const DefaultResponse = "Processing your request"

// For returns the phrase for lang, falling back to English and then to
// DefaultResponse, so the result is never empty.
func (p Phrases) For(lang Language) string {
	if s := p[lang]; s != "" {
		return s
	}
	if s := p[English]; s != "" {
		return s
	}
	return DefaultResponse
}

// Format looks up lang and substitutes {key} placeholders from vars.
func (p Phrases) Format(lang Language, vars map[string]string) string {
	s := p.For(lang)
	if len(vars) == 0 {
		return s
	}
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(s)
}

var confirmations = map[CommandType]Phrases{
	CommandWhatsAppSend: {
		English:  "Sending WhatsApp message to {contact}",
		Hindi:    "WhatsApp par {contact} ko message bhej raha hoon",
		Gujarati: "WhatsApp par {contact} ne message moklvu chu",
	},
	CommandPhoneCall: {
		English:  "Calling {contact}",
		Hindi:    "{contact} ko call kar raha hoon",
		Gujarati: "{contact} ne call karu chu",
	},
	CommandOpenApp: {
		English:  "Opening {app}",
		Hindi:    "{app} khol raha hoon",
		Gujarati: "{app} kholvu chu",
	},
	CommandReminder: {
		English:  "Setting reminder for {time}",
		Hindi:    "{time} ka reminder laga raha hoon",
		Gujarati: "{time} nu reminder nakhvu chu",
	},
	CommandGreeting: {
		English:  "Hello! How can I help you?",
		Hindi:    "Namaste! Main aapki kya madad kar sakta hoon?",
		Gujarati: "Kem cho! Hu tamari shu madad kari shaku?",
	},
	CommandTime: {
		English:  "Checking the time",
		Hindi:    "Samay dekh raha hoon",
		Gujarati: "Samay jou chu",
	},
	CommandDate: {
		English:  "Checking today's date",
		Hindi:    "Aaj ki tarikh dekh raha hoon",
		Gujarati: "Aaje ni tarikh jou chu",
	},
	CommandWeather: {
		English:  "Checking the weather",
		Hindi:    "Mausam dekh raha hoon",
		Gujarati: "Mausam jou chu",
	},
	CommandPlayYouTube: {
		English:  "Playing {query} on YouTube",
		Hindi:    "YouTube par {query} chala raha hoon",
		Gujarati: "YouTube par {query} chalavu chu",
	},
	CommandNews: {
		English:  "Fetching the latest news",
		Hindi:    "Taaza khabar la raha hoon",
		Gujarati: "Taaja samachar lavu chu",
	},
	CommandJoke: {
		English:  "Here is a joke for you",
		Hindi:    "Aapke liye ek chutkula",
		Gujarati: "Tamara mate ek joke",
	},
	CommandVolumeUp: {
		English:  "Increasing the volume",
		Hindi:    "Volume badha raha hoon",
		Gujarati: "Volume vadharu chu",
	},
	CommandVolumeDown: {
		English:  "Decreasing the volume",
		Hindi:    "Volume kam kar raha hoon",
		Gujarati: "Volume ghatadu chu",
	},
	CommandScreenshot: {
		English:  "Taking a screenshot",
		Hindi:    "Screenshot le raha hoon",
		Gujarati: "Screenshot lau chu",
	},
	CommandExit: {
		English:  "Goodbye!",
		Hindi:    "Alvida!",
		Gujarati: "Aavjo!",
	},
	CommandNone: {
		English: DefaultResponse,
	},
}

