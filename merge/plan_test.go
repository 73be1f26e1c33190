package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePlanYAML = `
inputs:
  - path: a.dump
    renames:
      - from: trunk/
        to: proj/trunk/
    suppress_mkdir:
      - branches
  - path: b.dump
extra_dirs:
  - vendor
extra_dirs_message: "seed vendor tree"
extra_dirs_author: importer
start_rev: 0
output: merged.dump
`

func TestLoadPlanStringParsesInputsAndExtras(t *testing.T) {
	p, err := LoadPlanString([]byte(samplePlanYAML))
	require.NoError(t, err)

	require.Len(t, p.Inputs, 2)
	assert.Equal(t, "a.dump", p.Inputs[0].Path)
	require.Len(t, p.Inputs[0].Renames, 1)
	assert.Equal(t, "trunk/", p.Inputs[0].Renames[0].From)
	assert.Equal(t, "proj/trunk/", p.Inputs[0].Renames[0].To)
	assert.Equal(t, []string{"branches"}, p.Inputs[0].SuppressMkdir)

	assert.Equal(t, []string{"vendor"}, p.ExtraDirs)
	assert.Equal(t, "seed vendor tree", p.ExtraDirsMessage)
	assert.Equal(t, "importer", p.ExtraDirsAuthor)
	assert.Equal(t, "merged.dump", p.Output)
}

func TestLoadPlanStringRejectsNoInputs(t *testing.T) {
	_, err := LoadPlanString([]byte("output: out.dump\n"))
	assert.Error(t, err)
}
