package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"snaptext/audio"
	"snaptext/log"
)

const (
	openAIURL          = "https://api.openai.com/v1/audio/speech"
	openAIDefaultModel = "gpt-4o-mini-tts"
	openAIDefaultVoice = "alloy"
)

// OpenAI synthesizes through the hosted speech endpoint, requesting FLAC.
type OpenAI struct {
	player
	apiKey string
	apiURL string
	client *TracedClient
}

func NewOpenAI(apiKey string, out audio.Player) *OpenAI {
	return &OpenAI{
		player: player{out: out},
		apiKey: apiKey,
		apiURL: openAIURL,
		client: NewTracedClient(),
	}
}

// WithURL points the engine at a different endpoint.
func (o *OpenAI) WithURL(url string) *OpenAI {
	o.apiURL = url
	return o
}

func (o *OpenAI) Name() string { return "openai" }

type openAIRequest struct {
	Model          string  `json:"model"`
	Input          string  `json:"input"`
	Voice          string  `json:"voice"`
	ResponseFormat string  `json:"response_format"`
	Speed          float64 `json:"speed,omitempty"`
	Instructions   string  `json:"instructions,omitempty"`
}

func (o *OpenAI) request(text string, p Profile) openAIRequest {
	r := openAIRequest{
		Model:          openAIDefaultModel,
		Input:          text,
		Voice:          openAIDefaultVoice,
		ResponseFormat: "flac",
		Speed:          min(max(p.rate(), 0.25), 4.0),
		Instructions:   p.Extra["instructions"],
	}
	if m := p.Extra["model"]; m != "" {
		r.Model = m
	}
	if p.Voice != "" {
		r.Voice = p.Voice
	}
	return r
}

func (o *OpenAI) synthesize(ctx context.Context, text string, p Profile) (audio.Clip, error) {
	payload, err := json.Marshal(o.request(text, p))
	if err != nil {
		return audio.Clip{}, err
	}
	req, err := http.NewRequestWithContext(ctx, "POST", o.apiURL, bytes.NewReader(payload))
	if err != nil {
		return audio.Clip{}, err
	}
	req.Header.Set("Authorization", "Bearer "+o.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return audio.Clip{}, err
	}
	log.SpeechRequest(o.Name(), resp.StatusCode, resp.Metrics.logFields())

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		msg := strings.TrimSpace(string(resp.Body))
		if json.Unmarshal(resp.Body, &apiErr) == nil && apiErr.Error.Message != "" {
			msg = apiErr.Error.Message
		}
		return audio.Clip{}, fmt.Errorf("openai API error %d: %s", resp.StatusCode, msg)
	}

	clip, err := audio.DecodeFLAC(bytes.NewReader(resp.Body))
	if err != nil {
		return audio.Clip{}, fmt.Errorf("openai response: %w", err)
	}
	return clip, nil
}

func (o *OpenAI) Speak(ctx context.Context, text string, p Profile) error {
	start := time.Now()
	clip, err := o.synthesize(ctx, text, p)
	if err != nil {
		return err
	}
	log.Speech(o.Name(), len(text), time.Since(start))
	o.start(ctx, o.Name(), clip, p)
	return nil
}
