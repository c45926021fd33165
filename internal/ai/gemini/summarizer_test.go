package gemini

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestSummarizerSummarize(t *testing.T) {
	stub := &stubGenerator{response: "```json\n{\"pros\": [\"부드러운 소재\"], \"cons\": [], \"fitStyle\": [\"한 치수 크게\"]}\n```"}
	summarizer := NewSummarizer(stub, zap.NewNop(), 0)

	summary, err := summarizer.Summarize(context.Background(), []string{"좋아요", " ", "소재가 부드러워요"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(summary.Pros, []string{"부드러운 소재"}) {
		t.Fatalf("unexpected pros: %q", summary.Pros)
	}
	if len(summary.Cons) != 0 {
		t.Fatalf("unexpected cons: %q", summary.Cons)
	}
	if !reflect.DeepEqual(summary.FitStyle, []string{"한 치수 크게"}) {
		t.Fatalf("unexpected fit style: %q", summary.FitStyle)
	}

	if !strings.Contains(stub.lastMessage, "좋아요\n소재가 부드러워요") {
		t.Fatalf("expected reviews in message, got %q", stub.lastMessage)
	}
	if !strings.Contains(stub.lastSystem, "fitStyle") {
		t.Fatalf("expected summary prompt as system instruction")
	}
}

func TestSummarizerAcceptsBareList(t *testing.T) {
	stub := &stubGenerator{response: `Here you go: ["튼튼해요", "가벼워요"]`}
	summarizer := NewSummarizer(stub, zap.NewNop(), 0)

	summary, err := summarizer.Summarize(context.Background(), []string{"review"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(summary.Pros, []string{"튼튼해요", "가벼워요"}) {
		t.Fatalf("unexpected pros: %q", summary.Pros)
	}
}

func TestSummarizerFallsBack(t *testing.T) {
	reviews := []string{"원단이 두껍고 따뜻해서 겨울에 입기 좋아요."}

	cases := []struct {
		name string
		stub *stubGenerator
	}{
		{name: "generator error", stub: &stubGenerator{err: errors.New("quota")}},
		{name: "not json", stub: &stubGenerator{response: "I cannot help with that"}},
		{name: "no pros", stub: &stubGenerator{response: `{"pros": [], "cons": ["비싸요"]}`}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			summary, err := NewSummarizer(tc.stub, zap.NewNop(), 0).Summarize(context.Background(), reviews)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(summary.Pros, reviews) {
				t.Fatalf("expected keyword fallback, got %q", summary.Pros)
			}
		})
	}
}

func TestSummarizerSkipsEmptyInput(t *testing.T) {
	stub := &stubGenerator{response: `{"pros": ["x"]}`}

	summary, err := NewSummarizer(stub, zap.NewNop(), 0).Summarize(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !summary.Empty() {
		t.Fatalf("expected empty summary, got %+v", summary)
	}
	if stub.calls != 0 {
		t.Fatalf("generator must not be called for no reviews")
	}
}
