package locale_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/weilunc/clipread/internal/locale"
)

func TestEffectiveCode(t *testing.T) {
	cases := []struct {
		name     string
		stored   string
		uiLocale string
		want     string
	}{
		{"stored preference wins", "ja", "en-US", "ja"},
		{"default sentinel falls through", "default", "ko", "ko"},
		{"chinese family collapses", "", "zh-CN", "zh-TW"},
		{"chinese uppercase region", "", "zh-Hant-TW", "zh-TW"},
		{"primary subtag in table", "", "pt-BR", "pt"},
		{"unsupported falls back to english", "", "fr-FR", "en"},
		{"empty locale falls back to english", "", "", "en"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, locale.EffectiveCode(tc.stored, tc.uiLocale))
		})
	}
}

func TestNameForCode(t *testing.T) {
	require.Equal(t, "Traditional Chinese", locale.NameForCode("zh-TW"))
	require.Equal(t, "English", locale.NameForCode("nope"))
}

func TestResolveTarget(t *testing.T) {
	require.Equal(t, "Japanese", locale.ResolveTarget("Japanese", "", "en"))
	require.Equal(t, "English", locale.ResolveTarget("", "", "en-US"))
	require.Equal(t, "Traditional Chinese", locale.ResolveTarget("system-default", "", "zh-TW"))
	require.Equal(t, "Korean", locale.ResolveTarget("", "ko", "en"))
}

func TestSelectorOptionsTarget(t *testing.T) {
	opts := locale.SelectorOptions(locale.SelectorTarget, "", "en", "Japanese", "")
	require.Equal(t, "system-default", opts[0].Value)
	require.Contains(t, opts[0].Label, "English")
	require.Equal(t, "Japanese", opts[1].Value)
	require.True(t, opts[2].Disabled) // separator before the fixed table
	require.Equal(t, "Arabic", opts[3].Value)
	require.Len(t, opts, 3+len(locale.Supported))
}

func TestSelectorOptionsSource(t *testing.T) {
	opts := locale.SelectorOptions(locale.SelectorSource, "", "en", "", "")
	require.Equal(t, "auto", opts[0].Value)
	require.True(t, opts[1].Disabled)
	require.Len(t, opts, 2+len(locale.Supported))
}

func TestSelectorOptionsDisplay(t *testing.T) {
	opts := locale.SelectorOptions(locale.SelectorDisplay, "", "en", "", "")
	require.Equal(t, "default", opts[0].Value)
	// display selector keys rows by code and carries no separator
	require.Equal(t, "ar", opts[1].Value)
	require.Equal(t, "العربية/Arabic/#ar", opts[1].Label)
	require.Len(t, opts, 1+len(locale.Supported))
}
