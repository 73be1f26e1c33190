package dump

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grazhopper/svndumptool/node"
	"github.com/grazhopper/svndumptool/propset"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.Out = bytes.NewBuffer(nil)
	return l
}

// rawDump is the literal dump-file text for spec scenario S1: repository
// created, then a single add of a.txt with content "hi\n".
const rawDump = "SVN-fs-dump-format-version: 2\n" +
	"\n" +
	"UUID: 11111111-1111-1111-1111-111111111111\n" +
	"\n" +
	"Revision-number: 0\n" +
	"Prop-content-length: 56\n" +
	"Content-length: 56\n" +
	"\n" +
	"K 8\n" +
	"svn:date\n" +
	"V 27\n" +
	"2024-01-01T00:00:00.000000Z\n" +
	"PROPS-END\n" +
	"\n" +
	"Revision-number: 1\n" +
	"Prop-content-length: 102\n" +
	"Content-length: 102\n" +
	"\n" +
	"K 10\n" +
	"svn:author\n" +
	"V 5\n" +
	"alice\n" +
	"K 8\n" +
	"svn:date\n" +
	"V 27\n" +
	"2024-01-02T00:00:00.000000Z\n" +
	"K 7\n" +
	"svn:log\n" +
	"V 3\n" +
	"hi\n" +
	"\n" +
	"PROPS-END\n" +
	"\n" +
	"Node-path: a.txt\n" +
	"Node-kind: file\n" +
	"Node-action: add\n" +
	"Text-content-length: 3\n" +
	"Text-content-md5: b1946ac92492d2347c6235b4d2611184\n" +
	"Content-length: 3\n" +
	"\n" +
	"hi\n" +
	"\n" +
	"\n"

func writeTempDump(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "fixture.dump")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestReaderParsesFixture(t *testing.T) {
	path := writeTempDump(t, rawDump)
	r, err := Open(testLogger(), path)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, "11111111-1111-1111-1111-111111111111", r.UUID())

	ok, err := r.ReadNextRev()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 0, r.Rev())
	assert.Equal(t, 0, r.NodeCount())

	ok, err = r.ReadNextRev()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, r.Rev())
	assert.Equal(t, "alice", r.Author())
	assert.Equal(t, "hi\n", r.Log())
	require.Equal(t, 1, r.NodeCount())

	n := r.Node(0)
	assert.Equal(t, "a.txt", n.Path)
	assert.Equal(t, node.Add, n.Action)
	assert.Equal(t, node.File, n.Kind)
	require.True(t, n.HasText())
	assert.Equal(t, "b1946ac92492d2347c6235b4d2611184", n.Text.MD5)

	var buf bytes.Buffer
	_, err = n.Text.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, "hi\n", buf.String())

	ok, err = r.ReadNextRev()
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = r.ReadNextRev()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReaderGetNodesByPath(t *testing.T) {
	path := writeTempDump(t, rawDump)
	r, err := Open(testLogger(), path)
	require.NoError(t, err)
	defer r.Close()
	_, _ = r.ReadNextRev()
	_, _ = r.ReadNextRev()

	nodes := r.GetNodesByPath("a.txt", "A")
	require.Len(t, nodes, 1)
	assert.Equal(t, "a.txt", nodes[0].Path)

	assert.Empty(t, r.GetNodesByPath("a.txt", "D"))
	assert.Empty(t, r.GetNodesByPath("b.txt", ""))
}

func TestReaderRejectsWrongVersion(t *testing.T) {
	path := writeTempDump(t, "SVN-fs-dump-format-version: 3\n\n")
	_, err := Open(testLogger(), path)
	assert.Error(t, err)
}

func TestWriterRoundTripsFixture(t *testing.T) {
	srcPath := writeTempDump(t, rawDump)
	src, err := Open(testLogger(), srcPath)
	require.NoError(t, err)
	defer src.Close()

	ok, err := src.ReadNextRev() // rev 0
	require.NoError(t, err)
	require.True(t, ok)

	dstPath := filepath.Join(t.TempDir(), "out.dump")
	w, err := CreateLike(testLogger(), dstPath, src)
	require.NoError(t, err)

	// CreateLike has already advanced src past rev 0 onto rev 1.
	require.Equal(t, 1, src.Rev())
	require.Equal(t, 1, src.NodeCount())
	require.NoError(t, w.AddRevFromDump(src))
	require.NoError(t, w.Close())

	out, err := Open(testLogger(), dstPath)
	require.NoError(t, err)
	defer out.Close()
	assert.Equal(t, src.UUID(), out.UUID())

	ok, err = out.ReadNextRev()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 0, out.Rev())

	ok, err = out.ReadNextRev()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, out.Rev())
	require.Equal(t, 1, out.NodeCount())
	n := out.Node(0)
	assert.Equal(t, "a.txt", n.Path)
	var buf bytes.Buffer
	_, err = n.Text.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, "hi\n", buf.String())
}

func TestWriterEnforcesMonotoneDates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.dump")
	w, err := CreateWithRev0(testLogger(), path, "", "2024-01-01T00:00:00.000000Z")
	require.NoError(t, err)

	props := propset.New()
	props.Set("svn:author", "bob")
	props.Set("svn:date", "2024-01-01T00:00:00.000000Z") // not strictly greater than rev0
	props.Set("svn:log", "")
	require.NoError(t, w.AddRev(props))
	require.NoError(t, w.Close())

	out, err := Open(testLogger(), path)
	require.NoError(t, err)
	defer out.Close()
	_, _ = out.ReadNextRev()
	ok, err := out.ReadNextRev()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2024-01-01T00:00:00.000001Z", out.DateString())
}

func TestWriterDeleteNodeHasNoBlockAfterAction(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.dump")
	w, err := CreateWithRevN(testLogger(), path, "", 1)
	require.NoError(t, err)
	props := propset.New()
	props.Set("svn:date", "2024-01-01T00:00:00.000000Z")
	require.NoError(t, w.AddRev(props))

	n, err := node.New("a.txt", node.Delete, node.KindNone)
	require.NoError(t, err)
	require.NoError(t, w.AddNode(n))
	require.NoError(t, w.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Node-action: delete\n\n")
	assert.NotContains(t, string(raw), "Node-action: delete\n\n\n")
}

func TestAddNodeBeforeAddRevIsInvalidState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.dump")
	w, err := CreateWithRevN(testLogger(), path, "", 1)
	require.NoError(t, err)
	n, _ := node.New("a.txt", node.Add, node.File)
	err = w.AddNode(n)
	assert.Error(t, err)
}
