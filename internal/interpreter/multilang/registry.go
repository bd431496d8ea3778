package multilang

// Alias maps a canonical name to the surface forms that resolve to it.
type Alias struct {
	Name       string   `mapstructure:"name" json:"name"`
	Variations []string `mapstructure:"variations" json:"variations"`
}

// defaultContacts covers relationship nouns. Order matters: short
// variations such as "ma" are substring-matched and the first hit wins.
var defaultContacts = []Alias{
	{Name: "Mummy", Variations: []string{"mummy", "mom", "mother", "ma", "maa", "mumma", "મમ્મી", "માં"}},
	{Name: "Papa", Variations: []string{"papa", "dad", "father", "pappa", "પપ્પા", "બાપુજી"}},
	{Name: "Krish", Variations: []string{"bhai", "brother", "bro", "ભાઈ"}},
	{Name: "Sister", Variations: []string{"sister", "sis", "didi", "બહેન"}},
	{Name: "Harsh JG", Variations: []string{"friend", "dost", "yaar", "મિત્ર"}},
}

var defaultApps = []Alias{
	{Name: "whatsapp", Variations: []string{"whatsapp", "व्हाट्सएप", "વોટ્સએપ"}},
	{Name: "chrome", Variations: []string{"chrome", "browser", "क्रोम", "બ્રાઉઝર"}},
	{Name: "youtube", Variations: []string{"youtube", "यूट्यूब", "યુટ્યુબ"}},
	{Name: "instagram", Variations: []string{"instagram", "insta", "इंस्टाग्राम"}},
	{Name: "facebook", Variations: []string{"facebook", "fb", "फेसबुक"}},
	{Name: "calculator", Variations: []string{"calculator", "calc", "कैलकुलेटर", "ગણતરી"}},
	{Name: "notepad", Variations: []string{"notepad", "नोटपैड"}},
	{Name: "camera", Variations: []string{"camera", "कैमरा", "કેમેરા"}},
}

// DefaultContacts returns a copy of the built-in relationship registry.
func DefaultContacts() []Alias {
	return cloneAliases(defaultContacts)
}

// DefaultApps returns a copy of the built-in app registry.
func DefaultApps() []Alias {
	return cloneAliases(defaultApps)
}

func cloneAliases(in []Alias) []Alias {
	out := make([]Alias, len(in))
	for i, a := range in {
		out[i] = Alias{Name: a.Name, Variations: append([]string(nil), a.Variations...)}
	}
	return out
}

func matchAlias(text string, aliases []Alias) (string, bool) {
	for _, a := range aliases {
		if containsAny(text, a.Variations) {
			return a.Name, true
		}
	}
	return "", false
}
