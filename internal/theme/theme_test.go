package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bekirdag/propbook/internal/prefs"
)

func TestParseModeAndToggle(t *testing.T) {
	m, ok := ParseMode(" DARK ")
	assert.True(t, ok)
	assert.Equal(t, Dark, m)

	_, ok = ParseMode("sepia")
	assert.False(t, ok)

	assert.Equal(t, Light, Dark.Toggle())
	assert.Equal(t, Dark, Light.Toggle())
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name, env, colorfgbg string
		want                 Mode
	}{
		{name: "explicit env wins", env: "light", colorfgbg: "15;0", want: Light},
		{name: "dark background index", colorfgbg: "15;0", want: Dark},
		{name: "three part value", colorfgbg: "15;default;8", want: Dark},
		{name: "light background index", colorfgbg: "0;15", want: Light},
		{name: "nothing set", want: Light},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("PROPBOOK_THEME", tt.env)
			t.Setenv("COLORFGBG", tt.colorfgbg)
			assert.Equal(t, tt.want, Detect())
		})
	}
}

func TestStatusColor(t *testing.T) {
	p := For(Dark)
	assert.Equal(t, p.Success, p.StatusColor("fmc"))
	assert.Equal(t, p.Warning, p.StatusColor("PMC"))
	assert.Equal(t, p.Danger, p.StatusColor("NMC"))
	assert.Equal(t, p.Muted, p.StatusColor("lost"))
}

func TestModePersistence(t *testing.T) {
	s := prefs.NewMemoryStore()
	assert.Equal(t, Dark, Load(s, Dark))

	require.NoError(t, Save(s, Light))
	assert.Equal(t, Light, Load(s, Dark))

	require.NoError(t, s.Set(prefs.KeyThemeMode, "neon"))
	assert.Equal(t, Dark, Load(s, Dark))
}
