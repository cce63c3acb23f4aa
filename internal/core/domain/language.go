package domain

// LanguageOption pins the output language of every model call: a display
// name for the system instruction and a cultural tone rule for the copy.
type LanguageOption struct {
	Code     string
	Name     string
	ToneRule string
}

const DefaultLanguageCode = "es"

var languageOptions = map[string]LanguageOption{
	"es": {Code: "es", Name: "Spanish (Spain)", ToneRule: "Use warm, aspirational business Spanish. Address the reader with usted in formal contexts."},
	"ca": {Code: "ca", Name: "Catalan", ToneRule: "Use natural Catalan as written in Barcelona business communication, never a literal translation from Spanish."},
	"gl": {Code: "gl", Name: "Galician", ToneRule: "Use standard Galician (normativa RAG) with a close, trustworthy register."},
	"en": {Code: "en", Name: "English", ToneRule: "Use confident international business English. Short sentences, active voice."},
	"fr": {Code: "fr", Name: "French", ToneRule: "Use polished, elegant French. Prefer vous and avoid anglicisms."},
	"de": {Code: "de", Name: "German", ToneRule: "Use precise, formal German (Sie). Lead with concrete outcomes over superlatives."},
	"pt": {Code: "pt", Name: "Portuguese", ToneRule: "Use European Portuguese with a professional yet approachable register."},
	"zh": {Code: "zh", Name: "Simplified Chinese", ToneRule: "Use professional Simplified Chinese. Emphasize credentials and institutional prestige."},
	"hi": {Code: "hi", Name: "Hindi", ToneRule: "Use modern standard Hindi with a respectful, motivational tone."},
	"ja": {Code: "ja", Name: "Japanese", ToneRule: "Use polite business Japanese (desu/masu). Understated claims, concrete benefits."},
	"ko": {Code: "ko", Name: "Korean", ToneRule: "Use formal business Korean (hapnida style) with an emphasis on career advancement."},
}

// ResolveLanguage maps an ISO-ish code to its option. Unknown or empty codes
// fall back to Spanish.
func ResolveLanguage(code string) LanguageOption {
	if option, ok := languageOptions[code]; ok {
		return option
	}
	return languageOptions[DefaultLanguageCode]
}
