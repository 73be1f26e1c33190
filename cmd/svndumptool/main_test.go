package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grazhopper/svndumptool/dump"
	"github.com/grazhopper/svndumptool/node"
	"github.com/grazhopper/svndumptool/propset"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.Out = bytes.NewBuffer(nil)
	return l
}

func writeFile(t *testing.T, dir, content string) string {
	t.Helper()
	p := filepath.Join(dir, "content.src")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func buildFixture(t *testing.T, path string) {
	t.Helper()
	dir := filepath.Dir(path)
	w, err := dump.CreateWithRev0(testLogger(), path, "11111111-1111-1111-1111-111111111111", "2024-01-01T00:00:00.000000Z")
	require.NoError(t, err)

	props := propset.New()
	props.Set("svn:author", "alice")
	props.Set("svn:date", "2024-01-02T00:00:00.000000Z")
	props.Set("svn:log", "add a")
	require.NoError(t, w.AddRev(props))

	n, err := node.New("a.txt", node.Add, node.File)
	require.NoError(t, err)
	require.NoError(t, n.SetTextFromFile(writeFile(t, dir, "hello\n"), -1, "", false))
	require.NoError(t, w.AddNode(n))

	require.NoError(t, w.Close())
}

func TestParsePathAtRevSplitsSuffix(t *testing.T) {
	path, rev, atHead, err := parsePathAtRev("trunk/a.txt@5")
	require.NoError(t, err)
	assert.False(t, atHead)
	assert.Equal(t, 5, rev)
	assert.Equal(t, "trunk/a.txt", path)
}

func TestParsePathAtRevDefaultsToHead(t *testing.T) {
	path, _, atHead, err := parsePathAtRev("trunk/a.txt")
	require.NoError(t, err)
	assert.True(t, atHead)
	assert.Equal(t, "trunk/a.txt", path)
}

func TestParsePathAtRevRejectsNonNumericRev(t *testing.T) {
	_, _, _, err := parsePathAtRev("a.txt@latest")
	assert.Error(t, err)
}

func TestRunCopyRoundTrips(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.dump")
	dst := filepath.Join(dir, "dst.dump")
	buildFixture(t, src)

	require.NoError(t, runCopy(testLogger(), src, dst))

	r, err := dump.Open(testLogger(), dst)
	require.NoError(t, err)
	defer r.Close()
	ok, err := r.ReadNextRev()
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = r.ReadNextRev()
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, r.Nodes(), 1)
	assert.Equal(t, "a.txt", r.Nodes()[0].Path)
}

func TestRunLsFindsFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.dump")
	buildFixture(t, src)

	r, err := dump.Open(testLogger(), src)
	require.NoError(t, err)
	defer r.Close()

	tree, err := replayTree(r, 0, true)
	require.NoError(t, err)
	assert.True(t, tree.FindFile("a.txt"))
	assert.False(t, tree.FindFile("missing.txt"))
}

func TestRunExportWritesContent(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.dump")
	buildFixture(t, src)
	dst := filepath.Join(dir, "out.txt")

	require.NoError(t, runExport(testLogger(), src, "a.txt", dst))

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(got))
}

func TestRunJoinConcatenatesSequentially(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.dump")
	b := filepath.Join(dir, "b.dump")
	buildFixture(t, a)
	buildFixture(t, b)
	out := filepath.Join(dir, "out.dump")

	require.NoError(t, runJoin(testLogger(), []string{a, b}, out))

	r, err := dump.Open(testLogger(), out)
	require.NoError(t, err)
	defer r.Close()
	count := 0
	for {
		ok, err := r.ReadNextRev()
		require.NoError(t, err)
		if !ok {
			break
		}
		count++
	}
	assert.Equal(t, 3, count) // synthetic rev0 + one revision from each input
}

func TestRunSplitPartitionsByPrefix(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.dump")
	w, err := dump.CreateWithRev0(testLogger(), src, "", "2024-01-01T00:00:00.000000Z")
	require.NoError(t, err)
	props := propset.New()
	props.Set("svn:date", "2024-01-02T00:00:00.000000Z")
	require.NoError(t, w.AddRev(props))
	nt, err := node.New("trunk/a.txt", node.Add, node.File)
	require.NoError(t, err)
	require.NoError(t, nt.SetTextFromFile(writeFile(t, dir, "t\n"), -1, "", false))
	require.NoError(t, w.AddNode(nt))
	nb, err := node.New("branches/x/b.txt", node.Add, node.File)
	require.NoError(t, err)
	require.NoError(t, nb.SetTextFromFile(writeFile(t, dir, "b\n"), -1, "", false))
	require.NoError(t, w.AddNode(nb))
	require.NoError(t, w.Close())

	trunkOut := filepath.Join(dir, "trunk.dump")
	branchOut := filepath.Join(dir, "branches.dump")
	require.NoError(t, runSplit(testLogger(), src, []string{"trunk/=" + trunkOut, "branches/=" + branchOut}))

	tr, err := dump.Open(testLogger(), trunkOut)
	require.NoError(t, err)
	defer tr.Close()
	_, _ = tr.ReadNextRev()
	ok, err := tr.ReadNextRev()
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, tr.Nodes(), 1)
	assert.Equal(t, "trunk/a.txt", tr.Nodes()[0].Path)
}

func TestCheckOneFileReportsMD5Mismatch(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.dump")
	buildFixture(t, src)

	data, err := os.ReadFile(src)
	require.NoError(t, err)
	corrupted := bytes.Replace(data, []byte("hello\n"), []byte("world\n"), 1)
	require.NoError(t, os.WriteFile(src, corrupted, 0o644))

	found, err := checkOneFile(testLogger(), src, checkOptions{md5: true})
	require.NoError(t, err)
	assert.Equal(t, 1, found)
}
