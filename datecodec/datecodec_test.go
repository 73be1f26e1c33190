package datecodec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRenderRoundTrip(t *testing.T) {
	const s = "2024-01-01T00:00:00.000000Z"
	st := Parse(s)
	assert.Equal(t, s, Render(st))
}

func TestParseMalformed(t *testing.T) {
	assert.Equal(t, Zero, Parse("not-a-date"))
	assert.Equal(t, Zero, Parse("2024-01-01T00:00:00.000000"))   // missing Z, wrong length
	assert.Equal(t, Zero, Parse("2024-01-01 00:00:00.000000Z ")) // wrong layout
}

func TestAdvanceIfNotMonotoneStrictlyGreater(t *testing.T) {
	prev := Parse("2024-06-01T00:00:00.500000Z")
	cand := Parse("2024-06-02T00:00:00.000000Z")
	assert.Equal(t, cand, AdvanceIfNotMonotone(prev, cand))
}

func TestAdvanceIfNotMonotoneEqual(t *testing.T) {
	prev := Parse("2024-06-01T00:00:00.500000Z")
	cand := prev
	got := AdvanceIfNotMonotone(prev, cand)
	assert.Equal(t, "2024-06-01T00:00:00.500001Z", Render(got))
}

func TestAdvanceIfNotMonotoneCarriesSeconds(t *testing.T) {
	prev := Parse("2024-06-01T00:00:00.999999Z")
	got := AdvanceIfNotMonotone(prev, prev)
	assert.Equal(t, "2024-06-01T00:00:01.000000Z", Render(got))
}

func TestAdvanceIfNotMonotoneLess(t *testing.T) {
	prev := Parse("2024-06-02T00:00:00.000000Z")
	cand := Parse("2024-06-01T00:00:00.000000Z")
	got := AdvanceIfNotMonotone(prev, cand)
	assert.Equal(t, "2024-06-02T00:00:00.000001Z", Render(got))
}

func TestValidMD5(t *testing.T) {
	assert.True(t, ValidMD5("b1946ac92492d2347c6235b4d2611184"))
	assert.False(t, ValidMD5("B1946AC92492D2347C6235B4D2611184")) // uppercase
	assert.False(t, ValidMD5("short"))
	assert.False(t, ValidMD5(""))
}

func TestSumBytes(t *testing.T) {
	assert.Equal(t, "b1946ac92492d2347c6235b4d2611184", SumBytes([]byte("hi\n")))
}

func TestDigesterStreaming(t *testing.T) {
	d := NewDigester()
	_, _ = d.Write([]byte("hi"))
	_, _ = d.Write([]byte("\n"))
	assert.Equal(t, "b1946ac92492d2347c6235b4d2611184", d.Sum())
}
