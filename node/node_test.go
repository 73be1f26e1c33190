package node

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memOpener implements RangeOpener over an in-memory buffer, standing in
// for a *dump.Reader in tests that don't need the full parser.
type memOpener struct {
	data []byte
}

func (m *memOpener) OpenRange(offset, length int64) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(m.data[offset : offset+length])), nil
}

func TestNewValidatesActionKind(t *testing.T) {
	n, err := New("/trunk/a.txt", Add, File)
	require.NoError(t, err)
	assert.Equal(t, "trunk/a.txt", n.Path)

	_, err = New("trunk/a.txt", Delete, File)
	assert.Error(t, err)

	_, err = New("", Add, File)
	assert.Error(t, err)
}

func TestSetTextFromReaderScenarioS1(t *testing.T) {
	// spec scenario S1: add file "a.txt" with content "hi\n", MD5 b1946ac9...
	opener := &memOpener{data: []byte("hi\n")}
	n, err := New("a.txt", Add, File)
	require.NoError(t, err)
	err = n.SetTextFromReader(opener, 0, 3, "b1946ac92492d2347c6235b4d2611184")
	require.NoError(t, err)
	require.True(t, n.HasText())

	var buf bytes.Buffer
	_, err = n.Text.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, "hi\n", buf.String())
}

func TestSetTextFromReaderRejectsBadMD5(t *testing.T) {
	opener := &memOpener{data: []byte("hi\n")}
	n, _ := New("a.txt", Add, File)
	err := n.SetTextFromReader(opener, 0, 3, "not-an-md5")
	assert.Error(t, err)
}

func TestDeleteForbidsTextPropsCopyFrom(t *testing.T) {
	n, err := New("a.txt", Delete, KindNone)
	require.NoError(t, err)

	assert.Error(t, n.SetProperty("k", "v"))
	assert.Error(t, n.SetTextFromFile("/tmp/x", 0, "", false))
	assert.Error(t, n.SetCopyFrom("b.txt", 1))
}

func TestCopyFromLegalOnlyOnAddOrReplace(t *testing.T) {
	n, _ := New("a.txt", Change, File)
	assert.Error(t, n.SetCopyFrom("b.txt", 1))

	n2, _ := New("a.txt", Add, File)
	assert.NoError(t, n2.SetCopyFrom("b.txt", 1))
	assert.Equal(t, "b.txt", n2.CopyFrom.Path)

	n3, _ := New("a.txt", Replace, File)
	assert.NoError(t, n3.SetCopyFrom("/b.txt", 2))
	assert.Equal(t, "b.txt", n3.CopyFrom.Path)
}

func TestSetTextFromNodeBorrowsSourceVariant(t *testing.T) {
	opener := &memOpener{data: []byte("hi\n")}
	src, _ := New("a.txt", Add, File)
	require.NoError(t, src.SetTextFromReader(opener, 0, 3, "b1946ac92492d2347c6235b4d2611184"))

	dst, _ := New("b.txt", Add, File)
	require.NoError(t, dst.SetTextFromNode(src))

	var buf bytes.Buffer
	_, err := dst.Text.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, "hi\n", buf.String())
}

func TestSetTextFromFileComputesLengthAndMD5(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/blob.txt"
	require.NoError(t, os.WriteFile(path, []byte("hi\n"), 0o644))

	n, _ := New("a.txt", Add, File)
	require.NoError(t, n.SetTextFromFile(path, -1, "", false))
	assert.Equal(t, int64(3), n.Text.Length)
	assert.Equal(t, "b1946ac92492d2347c6235b4d2611184", n.Text.MD5)
}

func TestHandleReadReturnsEOFConvention(t *testing.T) {
	opener := &memOpener{data: []byte("hi\n")}
	n, _ := New("a.txt", Add, File)
	require.NoError(t, n.SetTextFromReader(opener, 0, 3, "b1946ac92492d2347c6235b4d2611184"))

	h, err := n.Text.Open()
	require.NoError(t, err)
	defer h.Close()

	b, err := h.Read(3)
	require.NoError(t, err)
	assert.Equal(t, "hi\n", string(b))

	b, err = h.Read(3)
	assert.ErrorIs(t, err, io.EOF)
	assert.Len(t, b, 0)
}

func TestValidateCatchesInconsistentDelete(t *testing.T) {
	n := &Node{Path: "a.txt", Action: Delete, Kind: File}
	assert.Error(t, n.Validate())
}

func TestIndexKey(t *testing.T) {
	n, _ := New("a.txt", Replace, File)
	letter, path := n.IndexKey()
	assert.Equal(t, byte('R'), letter)
	assert.Equal(t, "a.txt", path)
}
