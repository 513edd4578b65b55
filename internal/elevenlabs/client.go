package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"time"

	"github.com/franz/voice-vault/internal/util"
)

const (
	// BaseURL is the production API base URL
	BaseURL = "https://api.elevenlabs.io/v1"

	// DefaultModelID is the model used when a TTS request does not name one
	DefaultModelID = "eleven_monolingual_v1"

	// DefaultOutputFormat is the audio encoding requested for speech
	// (44.1kHz / 128kbps MP3). Part of the duration estimation contract,
	// see service.EstimateDuration.
	DefaultOutputFormat = "mp3_44100_128"

	// DefaultSFXDuration is the sound effect length when none is requested
	DefaultSFXDuration = 3.0

	// DefaultPromptInfluence balances prompt adherence against variety
	DefaultPromptInfluence = 0.5
)

// APIError is returned for any non-success HTTP status.
// The body is carried verbatim so callers can surface the service's message.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Body)
}

// Client handles requests against the voice service API.
// The API key travels in the xi-api-key header on every request.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient creates a client for the production API
func NewClient(apiKey string) *Client {
	return NewClientWithBaseURL(apiKey, BaseURL)
}

// NewClientWithBaseURL creates a client against a custom endpoint.
// Used for self-hosted gateways and for tests.
func NewClientWithBaseURL(apiKey, baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

// APIKey returns the key this client was built with (for storage)
func (c *Client) APIKey() string {
	return c.apiKey
}

// do executes a request with auth headers and maps non-2xx statuses to APIError
func (c *Client) do(req *http.Request) (*http.Response, error) {
	req.Header.Set("xi-api-key", c.apiKey)
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return resp, nil
}

// ListVoices retrieves all voices available to the account
func (c *Client) ListVoices(ctx context.Context) ([]VoiceProfile, error) {
	urlStr := fmt.Sprintf("%s/voices", c.baseURL)

	util.DebugLog("API: listing voices")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result voicesResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode voices response: %w", err)
	}

	profiles := make([]VoiceProfile, 0, len(result.Voices))
	for _, v := range result.Voices {
		profiles = append(profiles, v.toProfile())
	}

	util.DebugLog("API: %d voices available", len(profiles))

	return profiles, nil
}

// GetVoice retrieves a single voice by ID
func (c *Client) GetVoice(ctx context.Context, voiceID string) (*VoiceProfile, error) {
	if voiceID == "" {
		return nil, fmt.Errorf("voice ID cannot be empty")
	}

	urlStr := fmt.Sprintf("%s/voices/%s", c.baseURL, voiceID)

	util.DebugLog("API: fetching voice %s", voiceID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var voice apiVoice
	if err := json.NewDecoder(resp.Body).Decode(&voice); err != nil {
		return nil, fmt.Errorf("failed to decode voice response: %w", err)
	}

	profile := voice.toProfile()
	return &profile, nil
}

// CloneVoice creates a new voice from local audio samples.
// The API returns only the new voice ID; the full profile is fetched
// afterwards so callers always get a complete VoiceProfile.
func (c *Client) CloneVoice(ctx context.Context, cloneReq CloneRequest) (*VoiceProfile, error) {
	if cloneReq.Name == "" {
		return nil, fmt.Errorf("voice name cannot be empty")
	}
	if len(cloneReq.SampleFiles) == 0 {
		return nil, fmt.Errorf("at least one sample file is required")
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	if err := form.WriteField("name", cloneReq.Name); err != nil {
		return nil, fmt.Errorf("failed to build form: %w", err)
	}
	if cloneReq.Description != "" {
		if err := form.WriteField("description", cloneReq.Description); err != nil {
			return nil, fmt.Errorf("failed to build form: %w", err)
		}
	}
	if len(cloneReq.Labels) > 0 {
		if err := form.WriteField("labels", string(cloneReq.Labels)); err != nil {
			return nil, fmt.Errorf("failed to build form: %w", err)
		}
	}

	for _, samplePath := range cloneReq.SampleFiles {
		data, err := os.ReadFile(samplePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read sample %s: %w", samplePath, err)
		}

		part, err := createAudioPart(form, filepath.Base(samplePath))
		if err != nil {
			return nil, fmt.Errorf("failed to build form: %w", err)
		}
		if _, err := part.Write(data); err != nil {
			return nil, fmt.Errorf("failed to build form: %w", err)
		}
	}

	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("failed to build form: %w", err)
	}

	urlStr := fmt.Sprintf("%s/voices/add", c.baseURL)

	util.DebugLog("API: cloning voice '%s' from %d samples", cloneReq.Name, len(cloneReq.SampleFiles))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, urlStr, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result struct {
		VoiceID string `json:"voice_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode clone response: %w", err)
	}

	return c.GetVoice(ctx, result.VoiceID)
}

// DeleteVoice removes a voice from the account
func (c *Client) DeleteVoice(ctx context.Context, voiceID string) error {
	if voiceID == "" {
		return fmt.Errorf("voice ID cannot be empty")
	}

	urlStr := fmt.Sprintf("%s/voices/%s", c.baseURL, voiceID)

	util.DebugLog("API: deleting voice %s", voiceID)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, urlStr, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()

	return nil
}

// Synthesize converts text to speech and returns the raw encoded audio
func (c *Client) Synthesize(ctx context.Context, ttsReq TTSRequest) ([]byte, error) {
	if ttsReq.Text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}
	if ttsReq.VoiceID == "" {
		return nil, fmt.Errorf("voice ID cannot be empty")
	}
	if ttsReq.ModelID == "" {
		ttsReq.ModelID = DefaultModelID
	}
	if ttsReq.OutputFormat == "" {
		ttsReq.OutputFormat = DefaultOutputFormat
	}

	body := struct {
		Text          string         `json:"text"`
		ModelID       string         `json:"model_id"`
		VoiceSettings *VoiceSettings `json:"voice_settings,omitempty"`
	}{
		Text:          ttsReq.Text,
		ModelID:       ttsReq.ModelID,
		VoiceSettings: ttsReq.VoiceSettings,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}

	urlStr := fmt.Sprintf("%s/text-to-speech/%s?output_format=%s",
		c.baseURL, ttsReq.VoiceID, ttsReq.OutputFormat)

	util.DebugLog("API: synthesizing %d chars with voice %s", len(ttsReq.Text), ttsReq.VoiceID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, urlStr, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio data: %w", err)
	}

	return audio, nil
}

// GenerateSoundEffect produces a sound effect from a text prompt
func (c *Client) GenerateSoundEffect(ctx context.Context, sfxReq SFXRequest) ([]byte, error) {
	if sfxReq.Text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}
	if sfxReq.DurationSeconds == 0 {
		sfxReq.DurationSeconds = DefaultSFXDuration
	}
	if sfxReq.PromptInfluence == 0 {
		sfxReq.PromptInfluence = DefaultPromptInfluence
	}

	body := struct {
		Text            string  `json:"text"`
		DurationSeconds float64 `json:"duration_seconds"`
		PromptInfluence float64 `json:"prompt_influence"`
	}{
		Text:            sfxReq.Text,
		DurationSeconds: sfxReq.DurationSeconds,
		PromptInfluence: sfxReq.PromptInfluence,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}

	urlStr := fmt.Sprintf("%s/sound-generation", c.baseURL)

	util.DebugLog("API: generating %.1fs sound effect", sfxReq.DurationSeconds)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, urlStr, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio data: %w", err)
	}

	return audio, nil
}

// GetUsage retrieves subscription quota information
func (c *Client) GetUsage(ctx context.Context) (*UsageInfo, error) {
	urlStr := fmt.Sprintf("%s/user/subscription", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var usage UsageInfo
	if err := json.NewDecoder(resp.Body).Decode(&usage); err != nil {
		return nil, fmt.Errorf("failed to decode subscription response: %w", err)
	}

	return &usage, nil
}

// ValidateKey checks whether the configured API key is accepted.
// A 401 means the key is invalid; any other failure (network, 5xx)
// propagates as an error since it says nothing about the key.
func (c *Client) ValidateKey(ctx context.Context) (bool, error) {
	_, err := c.GetUsage(ctx)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func createAudioPart(form *multipart.Writer, filename string) (io.Writer, error) {
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="files"; filename="%s"`, filename))
	h.Set("Content-Type", "audio/mpeg")
	return form.CreatePart(h)
}
