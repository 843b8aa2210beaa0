package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/readlex/readlex/pkg/config"
	"github.com/readlex/readlex/pkg/db"
)

// Provider looks up a translation for a single word. A failed lookup never
// aborts the caller; the aggregator records it as an explicit null.
type Provider interface {
	Name() string
	Lookup(ctx context.Context, word string) (string, error)
}

const (
	googleBaseURL   = "https://translate.googleapis.com"
	lingvaBaseURL   = "https://lingva.ml"
	mymemoryBaseURL = "https://api.mymemory.translated.net"
)

var errEmptyTranslation = errors.New("empty translation payload")

// DefaultProviders returns the three production providers configured for the
// given language pair.
func DefaultProviders(cfg config.TranslationConfig) []Provider {
	return []Provider{
		&GoogleProvider{BaseURL: googleBaseURL, SourceLang: cfg.SourceLang, TargetLang: cfg.TargetLang},
		&LingvaProvider{BaseURL: lingvaBaseURL, SourceLang: cfg.SourceLang, TargetLang: cfg.TargetLang},
		&MyMemoryProvider{BaseURL: mymemoryBaseURL, SourceLang: cfg.SourceLang, TargetLang: cfg.TargetLang},
	}
}

func getJSON(ctx context.Context, client *http.Client, rawURL string, out any) error {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// GoogleProvider uses the undocumented gtx endpoint. The response is a
// nested array whose [0][0][0] element holds the translated text.
type GoogleProvider struct {
	BaseURL    string
	SourceLang string
	TargetLang string
	Client     *http.Client
}

func (p *GoogleProvider) Name() string { return db.ProviderGoogle }

func (p *GoogleProvider) Lookup(ctx context.Context, word string) (string, error) {
	rawURL := fmt.Sprintf("%s/translate_a/single?client=gtx&sl=%s&tl=%s&dt=t&q=%s",
		p.BaseURL, url.QueryEscape(p.SourceLang), url.QueryEscape(p.TargetLang), url.QueryEscape(word))

	var payload []json.RawMessage
	if err := getJSON(ctx, p.Client, rawURL, &payload); err != nil {
		return "", err
	}
	if len(payload) == 0 {
		return "", errEmptyTranslation
	}
	var sentences [][]any
	if err := json.Unmarshal(payload[0], &sentences); err != nil {
		return "", err
	}
	if len(sentences) == 0 || len(sentences[0]) == 0 {
		return "", errEmptyTranslation
	}
	translated, ok := sentences[0][0].(string)
	if !ok || translated == "" {
		return "", errEmptyTranslation
	}
	return translated, nil
}

// LingvaProvider queries a Lingva instance.
type LingvaProvider struct {
	BaseURL    string
	SourceLang string
	TargetLang string
	Client     *http.Client
}

func (p *LingvaProvider) Name() string { return db.ProviderLingva }

func (p *LingvaProvider) Lookup(ctx context.Context, word string) (string, error) {
	rawURL := fmt.Sprintf("%s/api/v1/%s/%s/%s",
		p.BaseURL, url.PathEscape(p.SourceLang), url.PathEscape(p.TargetLang), url.PathEscape(word))

	var payload struct {
		Translation string `json:"translation"`
	}
	if err := getJSON(ctx, p.Client, rawURL, &payload); err != nil {
		return "", err
	}
	if payload.Translation == "" {
		return "", errEmptyTranslation
	}
	return payload.Translation, nil
}

// MyMemoryProvider queries the MyMemory translation memory.
type MyMemoryProvider struct {
	BaseURL    string
	SourceLang string
	TargetLang string
	Client     *http.Client
}

func (p *MyMemoryProvider) Name() string { return db.ProviderMyMemory }

func (p *MyMemoryProvider) Lookup(ctx context.Context, word string) (string, error) {
	pair := fmt.Sprintf("%s|%s", p.SourceLang, p.TargetLang)
	rawURL := fmt.Sprintf("%s/get?q=%s&langpair=%s",
		p.BaseURL, url.QueryEscape(word), url.QueryEscape(pair))

	var payload struct {
		ResponseData struct {
			TranslatedText string `json:"translatedText"`
		} `json:"responseData"`
	}
	if err := getJSON(ctx, p.Client, rawURL, &payload); err != nil {
		return "", err
	}
	if payload.ResponseData.TranslatedText == "" {
		return "", errEmptyTranslation
	}
	return payload.ResponseData.TranslatedText, nil
}
