package processors

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	openai "github.com/sashabaranov/go-openai"

	"meetScribe/config"
	"meetScribe/core"
)

// translateFunc performs one uncached translation.
type translateFunc func(ctx context.Context, text, targetLanguage string) (string, error)

type translationKey struct {
	text string
	lang string
}

// Translator translates fragment text into a target language. The cache is
// an explicit per-instance field keyed by (text, targetLanguage), so
// independent translators in concurrent deployments never interfere.
type Translator struct {
	translate translateFunc

	mu    sync.Mutex
	cache map[translationKey]string
}

// NewTranslator selects the provider from configuration: "openai" uses the
// chat API, anything else gets the mock passthrough.
func NewTranslator(cfg *config.Config) *Translator {
	var fn translateFunc
	switch cfg.TranslateProvider {
	case "openai":
		fn = newOpenAITranslate(cfg)
	default:
		fn = mockTranslate
	}
	return newTranslatorWithFunc(fn)
}

func newTranslatorWithFunc(fn translateFunc) *Translator {
	return &Translator{
		translate: fn,
		cache:     make(map[translationKey]string),
	}
}

// Translate returns text in targetLanguage, consulting the cache first.
// Empty text translates to itself without a provider call.
func (t *Translator) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}
	key := translationKey{text: text, lang: targetLanguage}

	t.mu.Lock()
	if cached, ok := t.cache[key]; ok {
		t.mu.Unlock()
		return cached, nil
	}
	t.mu.Unlock()

	out, err := t.translate(ctx, text, targetLanguage)
	if err != nil {
		return "", err
	}

	t.mu.Lock()
	t.cache[key] = out
	t.mu.Unlock()
	return out, nil
}

// TranslateFragments fills TranslatedText on every fragment whose original
// text needs translating. Failures leave the fragment untranslated; the
// summarizer falls back to the original text, so translation is best
// effort.
func (t *Translator) TranslateFragments(ctx context.Context, fragments []core.TranscriptFragment, targetLanguage string) []core.TranscriptFragment {
	out := make([]core.TranscriptFragment, len(fragments))
	copy(out, fragments)
	for i := range out {
		if out[i].TranslatedText != "" {
			continue
		}
		translated, err := t.Translate(ctx, out[i].OriginalText, targetLanguage)
		if err != nil {
			log.Printf("[Translate] fragment %d failed, keeping original: %v", i, err)
			continue
		}
		if translated != out[i].OriginalText {
			out[i].TranslatedText = translated
		}
	}
	return out
}

// mockTranslate is the stand-in provider: it returns the text unchanged,
// which is correct for English input and keeps the pipeline deterministic
// in tests.
func mockTranslate(_ context.Context, text, _ string) (string, error) {
	return text, nil
}

func newOpenAITranslate(cfg *config.Config) translateFunc {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	cli := openai.NewClientWithConfig(clientConfig)
	model := cfg.TranslationModel

	return func(ctx context.Context, text, targetLanguage string) (string, error) {
		prompt := fmt.Sprintf("Translate the following meeting utterance into %s. Return only the translation.\n\n%s", targetLanguage, text)
		resp, err := cli.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
			MaxTokens:   500,
			Temperature: 0.1,
		})
		if err != nil {
			return "", fmt.Errorf("translation API call failed: %v", err)
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("no translation response received")
		}
		return strings.TrimSpace(resp.Choices[0].Message.Content), nil
	}
}
