package service

import (
	"context"

	"github.com/weilunc/clipread/internal/model"
	"github.com/weilunc/clipread/internal/repo"
)

// SettingsService converts between the typed settings struct and the
// key-value rows the options surface has always saved.
type SettingsService struct {
	repo *repo.SettingsRepo
}

func NewSettingsService(r *repo.SettingsRepo) *SettingsService {
	return &SettingsService{repo: r}
}

func (s *SettingsService) Load(ctx context.Context) (model.Settings, error) {
	values, err := s.repo.Load(ctx)
	if err != nil {
		return model.Settings{}, err
	}
	settings := model.Settings{
		GeminiAPIKey:     values["geminiApiKey"],
		TranslationModel: values["translationModel"],
		LogEndpoint:      values["logEndpoint"],
		LogKey:           values["logKey"],
		PrefLangA:        values["prefLangA"],
		PrefLangB:        values["prefLangB"],
		DisplayLanguage:  values["displayLanguage"],
		PresetA:          values["preset_a"],
		PresetB:          values["preset_b"],
		PresetC:          values["preset_c"],
		PresetD:          values["preset_d"],
		PresetE:          values["preset_e"],
		PresetF:          values["preset_f"],
		PresetG:          values["preset_g"],
	}
	settings.ApplyDefaults()
	return settings, nil
}

func (s *SettingsService) Save(ctx context.Context, settings model.Settings) error {
	return s.repo.Save(ctx, map[string]string{
		"geminiApiKey":     settings.GeminiAPIKey,
		"translationModel": settings.TranslationModel,
		"logEndpoint":      settings.LogEndpoint,
		"logKey":           settings.LogKey,
		"prefLangA":        settings.PrefLangA,
		"prefLangB":        settings.PrefLangB,
		"displayLanguage":  settings.DisplayLanguage,
		"preset_a":         settings.PresetA,
		"preset_b":         settings.PresetB,
		"preset_c":         settings.PresetC,
		"preset_d":         settings.PresetD,
		"preset_e":         settings.PresetE,
		"preset_f":         settings.PresetF,
		"preset_g":         settings.PresetG,
	})
}
