package oracle

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"

	"StableLottery/internal/model"
)

// HermesReader reads a Pyth price feed through the Hermes REST API.
type HermesReader struct {
	BaseURL string
	FeedID  string
	Client  *http.Client
}

// NewHermesReader creates a reader with optional proxy support.
func NewHermesReader(baseURL, feedID, proxyURL string) *HermesReader {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &HermesReader{
		BaseURL: baseURL,
		FeedID:  feedID,
		Client: &http.Client{
			Timeout:   10 * time.Second,
			Transport: transport,
		},
	}
}

func (h *HermesReader) Name() string { return "hermes" }

// ReadPrice fetches the latest parsed update for the feed. The response
// carries integer strings; they are kept raw together with the exponent.
func (h *HermesReader) ReadPrice(ctx context.Context) (model.PriceSample, error) {
	endpoint := fmt.Sprintf("%s/v2/updates/price/latest?ids[]=%s&parsed=true",
		h.BaseURL, url.QueryEscape(h.FeedID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return model.PriceSample{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	resp, err := h.Client.Do(req)
	if err != nil {
		return model.PriceSample{}, fmt.Errorf("%w: fetch price: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.PriceSample{}, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return model.PriceSample{}, fmt.Errorf("%w: status %d, body: %s", ErrUnavailable, resp.StatusCode, string(body))
	}
	return parseHermes(body)
}

func parseHermes(body []byte) (model.PriceSample, error) {
	if !gjson.ValidBytes(body) {
		return model.PriceSample{}, fmt.Errorf("%w: invalid json", ErrUnavailable)
	}
	p := gjson.GetBytes(body, "parsed.0.price")
	if !p.Exists() {
		return model.PriceSample{}, fmt.Errorf("%w: no parsed price in response", ErrUnavailable)
	}
	price, conf, expo, publish := p.Get("price"), p.Get("conf"), p.Get("expo"), p.Get("publish_time")
	if !price.Exists() || !publish.Exists() {
		return model.PriceSample{}, fmt.Errorf("%w: incomplete price update", ErrUnavailable)
	}
	return model.PriceSample{
		Price:       price.Int(),
		Confidence:  conf.Uint(),
		Exponent:    int32(expo.Int()),
		PublishTime: publish.Int(),
	}, nil
}
