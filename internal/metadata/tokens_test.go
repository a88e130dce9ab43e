package metadata

import (
	"testing"

	"github.com/iPoetDev/browsechat-sub001/internal/types"
)

func TestNewTokenCounter(t *testing.T) {
	c, err := NewTokenCounter("gpt-4")
	if err != nil {
		t.Fatal(err)
	}
	if c == nil {
		t.Fatal("expected non-nil counter")
	}
}

func TestTokenCounter_UnknownModelFallsBack(t *testing.T) {
	c, err := NewTokenCounter("definitely-not-a-model")
	if err != nil {
		t.Fatal(err)
	}
	if got := c.Count("hello world"); got == 0 {
		t.Error("expected non-zero token count")
	}
}

func TestTokenCounter_CountSegments(t *testing.T) {
	c, err := NewTokenCounter("gpt-4")
	if err != nil {
		t.Fatal(err)
	}
	segs := []types.Segment{
		{Content: "Me: hello there"},
		{Content: "Me: goodbye"},
	}
	total := c.CountSegments(segs)
	if total != c.Count(segs[0].Content)+c.Count(segs[1].Content) {
		t.Error("segment total should equal the sum of per-segment counts")
	}
}
