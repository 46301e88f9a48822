package processors

import (
	"context"
	"testing"

	"meetScribe/core"
)

func TestTranslatorCachesByTextAndLanguage(t *testing.T) {
	calls := 0
	tr := newTranslatorWithFunc(func(_ context.Context, text, lang string) (string, error) {
		calls++
		return "[" + lang + "] " + text, nil
	})

	ctx := context.Background()
	first, err := tr.Translate(ctx, "hola equipo", "en")
	if err != nil {
		t.Fatalf("Translate() error: %v", err)
	}
	second, err := tr.Translate(ctx, "hola equipo", "en")
	if err != nil {
		t.Fatalf("Translate() error: %v", err)
	}
	if first != second {
		t.Errorf("cached result differs: %q vs %q", first, second)
	}
	if calls != 1 {
		t.Errorf("expected 1 provider call for repeated input, got %d", calls)
	}

	// A different target language is a different cache key.
	if _, err := tr.Translate(ctx, "hola equipo", "fr"); err != nil {
		t.Fatalf("Translate() error: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected a second provider call for a new language, got %d", calls)
	}
}

func TestTranslatorSkipsEmptyText(t *testing.T) {
	calls := 0
	tr := newTranslatorWithFunc(func(_ context.Context, text, _ string) (string, error) {
		calls++
		return text, nil
	})

	out, err := tr.Translate(context.Background(), "   ", "en")
	if err != nil {
		t.Fatalf("Translate() error: %v", err)
	}
	if out != "   " || calls != 0 {
		t.Errorf("empty text must bypass the provider (out=%q calls=%d)", out, calls)
	}
}

func TestTranslateFragmentsLeavesOriginalsUntouched(t *testing.T) {
	tr := newTranslatorWithFunc(mockTranslate)

	in := []core.TranscriptFragment{
		{OriginalText: "Good morning, quick update from my side.", TimestampStart: 0, TimestampEnd: 2000},
	}
	out := tr.TranslateFragments(context.Background(), in, "en")

	// The mock passthrough returns identical text, so TranslatedText stays
	// empty and PreferredText falls back to the original.
	if out[0].TranslatedText != "" {
		t.Errorf("passthrough translation should not set TranslatedText, got %q", out[0].TranslatedText)
	}
	if in[0].TranslatedText != "" {
		t.Errorf("input fragments must not be mutated")
	}
}

func TestTranslateFragmentsSetsTranslatedText(t *testing.T) {
	tr := newTranslatorWithFunc(func(_ context.Context, text, _ string) (string, error) {
		return "translated: " + text, nil
	})

	in := []core.TranscriptFragment{
		{OriginalText: "Buenos dias a todos.", TimestampStart: 0, TimestampEnd: 2000},
	}
	out := tr.TranslateFragments(context.Background(), in, "en")
	if out[0].TranslatedText != "translated: Buenos dias a todos." {
		t.Fatalf("TranslatedText = %q", out[0].TranslatedText)
	}
	if got := out[0].PreferredText(); got != "translated: Buenos dias a todos." {
		t.Errorf("PreferredText() = %q, want the translation", got)
	}
}
