// Package language lists the languages transcription can be pinned to.
package language

// Language is a Whisper-supported language.
type Language struct {
	Code       string // ISO 639-1
	Name       string
	NativeName string
	Google     string // BCP-47 tag for Cloud Speech, empty when Code is accepted as is
}

// Auto leaves language detection to the model.
var Auto = Language{Code: "", Name: "Auto-detect"}

var languages = []Language{
	{Code: "af", Name: "Afrikaans", NativeName: "Afrikaans"},
	{Code: "ar", Name: "Arabic", NativeName: "العربية", Google: "ar-SA"},
	{Code: "hy", Name: "Armenian", NativeName: "Հայերեն"},
	{Code: "az", Name: "Azerbaijani", NativeName: "Azərbaycan"},
	{Code: "be", Name: "Belarusian", NativeName: "Беларуская"},
	{Code: "bs", Name: "Bosnian", NativeName: "Bosanski"},
	{Code: "bg", Name: "Bulgarian", NativeName: "Български"},
	{Code: "ca", Name: "Catalan", NativeName: "Català"},
	{Code: "zh", Name: "Chinese", NativeName: "中文", Google: "zh-CN"},
	{Code: "hr", Name: "Croatian", NativeName: "Hrvatski"},
	{Code: "cs", Name: "Czech", NativeName: "Čeština"},
	{Code: "da", Name: "Danish", NativeName: "Dansk"},
	{Code: "nl", Name: "Dutch", NativeName: "Nederlands", Google: "nl-NL"},
	{Code: "en", Name: "English", NativeName: "English", Google: "en-US"},
	{Code: "et", Name: "Estonian", NativeName: "Eesti"},
	{Code: "fi", Name: "Finnish", NativeName: "Suomi"},
	{Code: "fr", Name: "French", NativeName: "Français", Google: "fr-FR"},
	{Code: "gl", Name: "Galician", NativeName: "Galego"},
	{Code: "de", Name: "German", NativeName: "Deutsch", Google: "de-DE"},
	{Code: "el", Name: "Greek", NativeName: "Ελληνικά"},
	{Code: "he", Name: "Hebrew", NativeName: "עברית"},
	{Code: "hi", Name: "Hindi", NativeName: "हिन्दी", Google: "hi-IN"},
	{Code: "hu", Name: "Hungarian", NativeName: "Magyar"},
	{Code: "is", Name: "Icelandic", NativeName: "Íslenska"},
	{Code: "id", Name: "Indonesian", NativeName: "Bahasa Indonesia"},
	{Code: "it", Name: "Italian", NativeName: "Italiano", Google: "it-IT"},
	{Code: "ja", Name: "Japanese", NativeName: "日本語", Google: "ja-JP"},
	{Code: "kn", Name: "Kannada", NativeName: "ಕನ್ನಡ"},
	{Code: "kk", Name: "Kazakh", NativeName: "Қазақ"},
	{Code: "ko", Name: "Korean", NativeName: "한국어", Google: "ko-KR"},
	{Code: "lv", Name: "Latvian", NativeName: "Latviešu"},
	{Code: "lt", Name: "Lithuanian", NativeName: "Lietuvių"},
	{Code: "mk", Name: "Macedonian", NativeName: "Македонски"},
	{Code: "ms", Name: "Malay", NativeName: "Bahasa Melayu"},
	{Code: "mr", Name: "Marathi", NativeName: "मराठी"},
	{Code: "mi", Name: "Maori", NativeName: "Māori"},
	{Code: "ne", Name: "Nepali", NativeName: "नेपाली"},
	{Code: "no", Name: "Norwegian", NativeName: "Norsk"},
	{Code: "fa", Name: "Persian", NativeName: "فارسی"},
	{Code: "pl", Name: "Polish", NativeName: "Polski", Google: "pl-PL"},
	{Code: "pt", Name: "Portuguese", NativeName: "Português", Google: "pt-BR"},
	{Code: "ro", Name: "Romanian", NativeName: "Română"},
	{Code: "ru", Name: "Russian", NativeName: "Русский", Google: "ru-RU"},
	{Code: "sr", Name: "Serbian", NativeName: "Српски"},
	{Code: "sk", Name: "Slovak", NativeName: "Slovenčina"},
	{Code: "sl", Name: "Slovenian", NativeName: "Slovenščina"},
	{Code: "es", Name: "Spanish", NativeName: "Español", Google: "es-ES"},
	{Code: "sw", Name: "Swahili", NativeName: "Kiswahili"},
	{Code: "sv", Name: "Swedish", NativeName: "Svenska", Google: "sv-SE"},
	{Code: "tl", Name: "Tagalog", NativeName: "Tagalog"},
	{Code: "ta", Name: "Tamil", NativeName: "தமிழ்"},
	{Code: "th", Name: "Thai", NativeName: "ไทย"},
	{Code: "tr", Name: "Turkish", NativeName: "Türkçe", Google: "tr-TR"},
	{Code: "uk", Name: "Ukrainian", NativeName: "Українська", Google: "uk-UA"},
	{Code: "ur", Name: "Urdu", NativeName: "اردو"},
	{Code: "vi", Name: "Vietnamese", NativeName: "Tiếng Việt"},
	{Code: "cy", Name: "Welsh", NativeName: "Cymraeg"},
}

var byCode = func() map[string]Language {
	m := make(map[string]Language, len(languages)+1)
	m[""] = Auto
	for _, l := range languages {
		m[l.Code] = l
	}
	return m
}()

// FromCode returns the language for code, or Auto when unknown.
func FromCode(code string) Language {
	if l, ok := byCode[code]; ok {
		return l
	}
	return Auto
}

func List() []Language {
	out := make([]Language, len(languages))
	copy(out, languages)
	return out
}

// Codes returns every language code, without the empty auto code.
func Codes() []string {
	codes := make([]string, len(languages))
	for i, l := range languages {
		codes[i] = l.Code
	}
	return codes
}

// IsValidCode reports whether code is known; empty (auto) is valid.
func IsValidCode(code string) bool {
	_, ok := byCode[code]
	return ok
}

// GoogleCode maps a config language to the tag Cloud Speech expects.
// Auto maps to en-US because synchronous recognition requires a language.
func GoogleCode(code string) string {
	l, ok := byCode[code]
	if !ok || code == "" {
		return "en-US"
	}
	if l.Google != "" {
		return l.Google
	}
	return l.Code
}
