package autoprops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
; sample auto-props config
[miscellany]
enable-auto-props = yes

[auto-props]
*.txt = svn:eol-style=native
*.c = svn:eol-style=native; svn:keywords=Id
*.sh = svn:executable
  ;svn:mime-type=text/plain
*.png = svn:mime-type=image/png
`

func TestMatchAppliesSingleProp(t *testing.T) {
	cfg, err := LoadString([]byte(sampleConfig))
	require.NoError(t, err)

	got := cfg.Match("README.txt")
	require.Len(t, got, 1)
	assert.Equal(t, Prop{Name: "svn:eol-style", Value: "native"}, got[0])
}

func TestMatchAppliesSemicolonSeparatedProps(t *testing.T) {
	cfg, err := LoadString([]byte(sampleConfig))
	require.NoError(t, err)

	got := cfg.Match("main.c")
	require.Len(t, got, 2)
	assert.Equal(t, "svn:eol-style", got[0].Name)
	assert.Equal(t, "native", got[0].Value)
	assert.Equal(t, "svn:keywords", got[1].Name)
	assert.Equal(t, "Id", got[1].Value)
}

func TestMatchDefaultsExecutableValueToStar(t *testing.T) {
	cfg, err := LoadString([]byte(sampleConfig))
	require.NoError(t, err)

	got := cfg.Match("build.sh")
	require.Len(t, got, 1)
	assert.Equal(t, Prop{Name: "svn:executable", Value: "*"}, got[0])
}

func TestMatchIgnoresOtherSections(t *testing.T) {
	cfg, err := LoadString([]byte(sampleConfig))
	require.NoError(t, err)

	// enable-auto-props lives in [miscellany], not [auto-props]; it must
	// never be treated as a glob rule.
	assert.Empty(t, cfg.Match("enable-auto-props"))
}

func TestMatchReturnsNothingForUnmatchedPath(t *testing.T) {
	cfg, err := LoadString([]byte(sampleConfig))
	require.NoError(t, err)
	assert.Empty(t, cfg.Match("Makefile"))
}

func TestMatchLaterRuleOverridesEarlierSameName(t *testing.T) {
	cfg, err := LoadString([]byte(`
[auto-props]
*.txt = svn:eol-style=native
special.txt = svn:eol-style=CRLF
`))
	require.NoError(t, err)

	got := cfg.Match("special.txt")
	require.Len(t, got, 1)
	assert.Equal(t, "CRLF", got[0].Value)
}

func TestGlobQuestionMarkMatchesSingleChar(t *testing.T) {
	cfg, err := LoadString([]byte(`
[auto-props]
file?.txt = svn:mime-type=text/plain
`))
	require.NoError(t, err)

	assert.Len(t, cfg.Match("file1.txt"), 1)
	assert.Empty(t, cfg.Match("file12.txt"))
}

func TestGlobMetacharactersAreEscaped(t *testing.T) {
	cfg, err := LoadString([]byte(`
[auto-props]
a.b+c = svn:mime-type=text/plain
`))
	require.NoError(t, err)

	assert.Len(t, cfg.Match("a.b+c"), 1)
	assert.Empty(t, cfg.Match("aXb+c"))
}
