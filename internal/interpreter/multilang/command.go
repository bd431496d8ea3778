package multilang

// CommandType is the closed set of interpreter-level intents.
type CommandType string

const (
	CommandGreeting     CommandType = "greeting"
	CommandWhatsAppSend CommandType = "whatsapp_send"
	CommandPhoneCall    CommandType = "phone_call"
	CommandOpenApp      CommandType = "open_app"
	CommandReminder     CommandType = "reminder"
	CommandTime         CommandType = "time"
	CommandDate         CommandType = "date"
	CommandWeather      CommandType = "weather"
	CommandPlayYouTube  CommandType = "play_youtube"
	CommandNews         CommandType = "news"
	CommandJoke         CommandType = "joke"
	CommandVolumeUp     CommandType = "volume_up"
	CommandVolumeDown   CommandType = "volume_down"
	CommandScreenshot   CommandType = "screenshot"
	CommandExit         CommandType = "exit"
	CommandNone         CommandType = "none"
)

// ReasonUnrecognized is the reason attached to CommandNone.
const ReasonUnrecognized = "unrecognized"

// PhraseSet holds trigger phrases per language. A phrase matches as a
// substring of the normalized text.
type PhraseSet map[Language][]string

// CommandPhrases binds a command type to its triggers.
type CommandPhrases struct {
	Type    CommandType
	Phrases PhraseSet
}

// defaultCommandTable is scanned top to bottom; the first command with any
// matching phrase wins. whatsapp_send is listed for keyword stripping and
// documentation but is classified by its own rule before this scan.
var defaultCommandTable = []CommandPhrases{
	{CommandGreeting, PhraseSet{
		English:  {"hi", "hello", "hey", "good morning", "good afternoon", "good evening"},
		Hindi:    {"नमस्ते", "हेलो", "हाय", "सुप्रभात", "शुभ दोपहर", "शुभ संध्या", "namaste", "namaskar"},
		Gujarati: {"નમસ્તે", "હેલો", "હાય", "સુપ્રભાત", "શુભ બપોર", "શુભ સાંજ", "kem cho", "su pram"},
	}},
	{CommandWhatsAppSend, PhraseSet{
		English:  {"send whatsapp", "whatsapp send", "message on whatsapp", "send message", "whatsapp message"},
		Hindi:    {"whatsapp bhej", "whatsapp par bhej", "message bhej", "whatsapp pe message", "whatsapp mein", "whatsapp ko", "bhejo", "bhej do"},
		Gujarati: {"whatsapp moklo", "whatsapp par moklo", "message moklo", "whatsapp ma message", "whatsapp mein", "mokalo", "moklo"},
	}},
	{CommandPhoneCall, PhraseSet{
		English:  {"call", "phone call", "make a call", "dial"},
		Hindi:    {"call karo", "phone karo", "call lagao", "phone lagao"},
		Gujarati: {"call karo", "phone karo", "call lagavo", "phone lagavo"},
	}},
	{CommandOpenApp, PhraseSet{
		English:  {"open", "launch", "start", "run"},
		Hindi:    {"khol", "kholo", "chalu karo", "start karo"},
		Gujarati: {"kholo", "chalu karo", "start karo"},
	}},
	{CommandReminder, PhraseSet{
		English:  {"remind me", "set reminder", "reminder", "schedule"},
		Hindi:    {"yaad dilao", "reminder lagao", "yaad dila dena", "reminder set karo"},
		Gujarati: {"yaad apaavo", "reminder nakho", "yaad dilavo"},
	}},
	{CommandTime, PhraseSet{
		English:  {"time", "what time", "current time"},
		Hindi:    {"samay", "time kya hai", "kitne baje hain", "abhi kitne baje"},
		Gujarati: {"samay", "time su che", "ketla vaagya", "aabhi ketla vaagya"},
	}},
	{CommandDate, PhraseSet{
		English:  {"date", "what date", "today date"},
		Hindi:    {"tarikh", "aaj ki tarikh", "date kya hai"},
		Gujarati: {"tarikh", "aaje ni tarikh", "date su che"},
	}},
	{CommandWeather, PhraseSet{
		English:  {"weather", "temperature", "how is weather"},
		Hindi:    {"mausam", "mausam kaisa hai", "temperature"},
		Gujarati: {"mausam", "mausam kevu che", "temperature"},
	}},
	{CommandPlayYouTube, PhraseSet{
		English:  {"play on youtube", "youtube play", "search youtube"},
		Hindi:    {"youtube per chala", "youtube pe play karo", "youtube search"},
		Gujarati: {"youtube per chalavo", "youtube play karo"},
	}},
	{CommandNews, PhraseSet{
		English:  {"news", "headlines", "latest news"},
		Hindi:    {"samachar", "khabar", "news"},
		Gujarati: {"samachar", "khabar", "news"},
	}},
	{CommandJoke, PhraseSet{
		English:  {"joke", "tell joke", "make me laugh"},
		Hindi:    {"joke sunao", "chutkula", "hasao"},
		Gujarati: {"joke sunavo", "chutkula", "hasavo"},
	}},
	{CommandVolumeUp, PhraseSet{
		English:  {"volume up", "increase volume", "louder"},
		Hindi:    {"volume badha", "volume badhao", "tej karo"},
		Gujarati: {"volume vadharo", "tej karo"},
	}},
	{CommandVolumeDown, PhraseSet{
		English:  {"volume down", "decrease volume", "lower"},
		Hindi:    {"volume kam karo", "volume ghatao", "dheema karo"},
		Gujarati: {"volume ghataavo", "dheemu karo"},
	}},
	{CommandScreenshot, PhraseSet{
		English:  {"screenshot", "take screenshot", "capture screen"},
		Hindi:    {"screenshot lo", "screen capture karo"},
		Gujarati: {"screenshot lo", "screen capture karo"},
	}},
	{CommandExit, PhraseSet{
		English:  {"exit", "quit", "goodbye", "bye", "close"},
		Hindi:    {"band karo", "exit", "alvida", "bye"},
		Gujarati: {"band karo", "exit", "bye", "aavjo"},
	}},
}

// Markers for the whatsapp_send priority rule.
var (
	whatsappMarkers = []string{"whatsapp", "व्हाट्सएप", "વોટ્સએપ"}

	sendVerbs = []string{"bhej", "bhejo", "moklo", "mokalo", "message", "msg", "muki", "mukhi", "mukho", "de", "do"}

	postpositionMarkers = []string{"ko ", "ne ", " ko", " ne"}
)
