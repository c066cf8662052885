package lines

import (
	"math/rand"
	"testing"
	"testing/quick"
	"unicode/utf16"

	"github.com/dshills/lineindex/internal/engine/native/sim"
)

var fragments = []string{"a", "bc", "é", "日本", "😀", "\n", "\r", "\r\n", "x\ny", "\n\n", "q\rr", "\nxy\nz", "\né", "z\r"}

// breakFragments is weighted towards CR so that CR LF pairs are joined and
// split often.
var breakFragments = []string{"\r", "\n", "\r\n", "\nx", "x\r", "\nxy\rz", "\r\r", "€\r", "\n😀", "y"}

// randomEdit applies one byte-level edit anywhere in the document, which may
// split multi-byte sequences and CR LF pairs.
func randomEdit(r *rand.Rand, ed *sim.Editor, pool []string) error {
	if ed.Length() == 0 || r.Intn(3) > 0 {
		return ed.InsertString(r.Intn(ed.Length()+1), pool[r.Intn(len(pool))])
	}
	pos := r.Intn(ed.Length())
	return ed.DeleteRange(pos, 1+r.Intn(min(8, ed.Length()-pos)))
}

func startsNonDecreasing(starts []int) bool {
	for i := 1; i < len(starts); i++ {
		if starts[i] < starts[i-1] {
			return false
		}
	}
	return true
}

// replayMatches replays steps random edits drawn from pool and checks the
// index against the document after every notification.
func replayMatches(t *testing.T, seed int64, steps int, pool []string) bool {
	t.Helper()
	r := rand.New(rand.NewSource(seed))
	ed := sim.New()
	c := New(ed, ed)
	defer c.Close()

	for range steps {
		if err := randomEdit(r, ed, pool); err != nil {
			t.Logf("edit failed: %v", err)
			return false
		}
		starts := c.Starts()
		if !startsNonDecreasing(starts) || starts[len(starts)-1] != ed.Length() {
			t.Logf("bad starts %v for length %d", starts, ed.Length())
			return false
		}
		if err := c.Verify(); err != nil {
			t.Logf("seed %d: %v in %q", seed, err, ed.Text())
			return false
		}
	}
	return true
}

func TestReplayMatchesDocument(t *testing.T) {
	f := func(seed int64, steps uint8) bool {
		return replayMatches(t, seed, int(steps)+1, fragments)
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestReplayLineBreakHeavy(t *testing.T) {
	for seed := int64(1); seed <= 200; seed++ {
		if !replayMatches(t, seed, 200, breakFragments) {
			t.Fatalf("seed %d drifted", seed)
		}
	}
}

// TestCharRoundTrip edits at character boundaries only and checks every
// char and byte position translates exactly.
func TestCharRoundTrip(t *testing.T) {
	f := func(seed int64, steps uint8) bool {
		r := rand.New(rand.NewSource(seed))
		ed := sim.New()
		c := New(ed, ed)
		defer c.Close()

		for range int(steps)%40 + 1 {
			if c.TextLength() > 0 && r.Intn(4) == 0 {
				from := r.Intn(c.TextLength())
				to := min(c.TextLength(), from+1+r.Intn(4))
				start, end := c.CharToBytePosition(from), c.CharToBytePosition(to)
				if err := ed.DeleteRange(start, end-start); err != nil {
					return false
				}
			} else {
				pos := c.CharToBytePosition(r.Intn(c.TextLength() + 1))
				if err := ed.InsertString(pos, fragments[r.Intn(len(fragments))]); err != nil {
					return false
				}
			}
		}
		return checkTranslation(t, ed.Text(), c)
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func checkTranslation(t *testing.T, text string, c *Collection) bool {
	t.Helper()
	units := utf16.Encode([]rune(text))
	if len(units) != c.TextLength() {
		t.Logf("text length %d, want %d", c.TextLength(), len(units))
		return false
	}
	for p := 0; p <= len(units); p++ {
		midPair := p < len(units) && utf16.IsSurrogate(rune(units[p])) && units[p] >= 0xDC00
		b := c.CharToBytePosition(p)
		back := c.ByteToCharPosition(b)
		if midPair {
			if back != p-1 {
				t.Logf("char %d inside a pair maps back to %d", p, back)
				return false
			}
			continue
		}
		if back != p {
			t.Logf("char %d -> byte %d -> char %d in %q", p, b, back, text)
			return false
		}
	}
	charPos := 0
	for bytePos, r := range text {
		if got := c.ByteToCharPosition(bytePos); got != charPos {
			t.Logf("byte %d -> char %d, want %d", bytePos, got, charPos)
			return false
		}
		if got := c.CharToBytePosition(charPos); got != bytePos {
			t.Logf("char %d -> byte %d, want %d", charPos, got, bytePos)
			return false
		}
		charPos += utf16.RuneLen(r)
	}
	return true
}

func FuzzLineIndex(f *testing.F) {
	f.Add("hello\nworld", 3, 2, "x\r")
	f.Add("a\rb", 2, 0, "\n")
	f.Add("a\r\r\nb", 2, 0, "\nxy\nz")
	f.Add("日本\r\n語", 4, 3, "😀\n")
	f.Add("", 0, 0, "\r\n\r\n")

	f.Fuzz(func(t *testing.T, initial string, pos, del int, insert string) {
		ed := sim.New(sim.WithText(initial))
		c := New(ed, ed)
		defer c.Close()

		pos = Clamp(pos, 0, ed.Length())
		del = Clamp(del, 0, ed.Length()-pos)
		if err := ed.DeleteRange(pos, del); err != nil {
			t.Fatal(err)
		}
		if err := c.Verify(); err != nil {
			t.Fatalf("after delete: %v", err)
		}
		if err := ed.InsertString(pos, insert); err != nil {
			t.Fatal(err)
		}
		if err := c.Verify(); err != nil {
			t.Fatalf("after insert: %v", err)
		}
		for p := -1; p <= c.ByteLength()+1; p++ {
			if c.CharToBytePosition(c.ByteToCharPosition(p)) > Clamp(p, 0, c.ByteLength()) {
				t.Fatalf("byte %d translates past itself", p)
			}
		}
	})
}
