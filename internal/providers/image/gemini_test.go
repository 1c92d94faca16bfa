package image

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func TestGeminiGeneratorDecodesPredictions(t *testing.T) {
	raw := base64.StdEncoding.EncodeToString([]byte("fake-png-bytes"))
	gen, err := NewGeminiGenerator(GeminiOptions{
		APIKey: "dummy",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			var req geminiImageRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Fatalf("decode request: %v", err)
			}
			if len(req.Instances) != 1 || !strings.Contains(req.Instances[0].Prompt, "sunset") {
				t.Fatalf("unexpected prompt payload: %+v", req.Instances)
			}
			body := `{"predictions":[{"bytesBase64Encoded":"` + raw + `","mimeType":"image/png"}]}`
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader(body)),
			}, nil
		})},
	})
	if err != nil {
		t.Fatalf("NewGeminiGenerator returned error: %v", err)
	}

	assets, err := gen.Generate(context.Background(), GenerateRequest{
		Prompt:      "sunset over the bay",
		Style:       "cinematic",
		Quantity:    1,
		AspectRatio: "16:9",
	})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if len(assets) != 1 {
		t.Fatalf("asset count = %d, want 1", len(assets))
	}
	if string(assets[0].Data) != "fake-png-bytes" {
		t.Fatalf("decoded data mismatch: %q", assets[0].Data)
	}
	if assets[0].Width != 1280 || assets[0].Height != 720 {
		t.Fatalf("dimensions = %dx%d, want 1280x720", assets[0].Width, assets[0].Height)
	}
}

func TestGeminiGeneratorErrorsOnBadStatus(t *testing.T) {
	gen, err := NewGeminiGenerator(GeminiOptions{
		APIKey: "dummy",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusTooManyRequests,
				Body:       io.NopCloser(strings.NewReader("rate limited")),
			}, nil
		})},
	})
	if err != nil {
		t.Fatalf("NewGeminiGenerator returned error: %v", err)
	}

	if _, err := gen.Generate(context.Background(), GenerateRequest{Prompt: "anything"}); err == nil {
		t.Fatalf("expected error for non-2xx status")
	}
}

func TestStaticGeneratorQuantityAndDimensions(t *testing.T) {
	gen := NewStaticGenerator()
	assets, err := gen.Generate(context.Background(), GenerateRequest{
		RequestID:   "job-1",
		Quantity:    3,
		AspectRatio: "9:16",
	})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if len(assets) != 3 {
		t.Fatalf("asset count = %d, want 3", len(assets))
	}
	for _, a := range assets {
		if a.Width != 720 || a.Height != 1280 {
			t.Fatalf("dimensions = %dx%d, want 720x1280", a.Width, a.Height)
		}
	}
}

func TestBuildPrompt(t *testing.T) {
	if got := BuildPrompt("a red bike", ""); got != "a red bike" {
		t.Fatalf("BuildPrompt without style = %q", got)
	}
	if got := BuildPrompt("a red bike", "watercolor"); got != "a red bike, watercolor style" {
		t.Fatalf("BuildPrompt with style = %q", got)
	}
}
