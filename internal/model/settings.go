package model

const DefaultTranslationModel = "gemini-2.0-flash"

// Settings is the user configuration saved from the options surface. Every
// field is optional; readers apply defaults at load time so a fresh database
// behaves the same as one populated by an explicit save.
type Settings struct {
	GeminiAPIKey     string `json:"geminiApiKey"`
	TranslationModel string `json:"translationModel"`
	LogEndpoint      string `json:"logEndpoint"`
	LogKey           string `json:"logKey"`
	PrefLangA        string `json:"prefLangA"`
	PrefLangB        string `json:"prefLangB"`
	DisplayLanguage  string `json:"displayLanguage"`
	PresetA          string `json:"preset_a"`
	PresetB          string `json:"preset_b"`
	PresetC          string `json:"preset_c"`
	PresetD          string `json:"preset_d"`
	PresetE          string `json:"preset_e"`
	PresetF          string `json:"preset_f"`
	PresetG          string `json:"preset_g"`
}

func (s *Settings) ApplyDefaults() {
	if s.TranslationModel == "" {
		s.TranslationModel = DefaultTranslationModel
	}
	if s.DisplayLanguage == "" {
		s.DisplayLanguage = "default"
	}
}

// Presets returns the named preset prompts keyed the way the chat surface
// addresses them. Empty presets are kept so the surface can disable buttons.
func (s *Settings) Presets() map[string]string {
	return map[string]string{
		"preset_a": s.PresetA,
		"preset_b": s.PresetB,
		"preset_c": s.PresetC,
		"preset_d": s.PresetD,
		"preset_e": s.PresetE,
		"preset_f": s.PresetF,
		"preset_g": s.PresetG,
	}
}
