package elevenlabs

import "encoding/json"

// VoiceSettings controls how a voice renders speech
type VoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

// DefaultVoiceSettings returns the service's documented defaults
func DefaultVoiceSettings() VoiceSettings {
	return VoiceSettings{
		Stability:       0.5,
		SimilarityBoost: 0.75,
		Style:           0.0,
		UseSpeakerBoost: true,
	}
}

// VoiceProfile is a voice definition as exposed to the rest of the application
type VoiceProfile struct {
	VoiceID     string          `json:"voice_id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category"`
	Labels      json.RawMessage `json:"labels,omitempty"`
	PreviewURL  string          `json:"preview_url,omitempty"`
	Settings    VoiceSettings   `json:"settings"`
}

// apiVoice is the raw voice shape returned by the API
type apiVoice struct {
	VoiceID     string          `json:"voice_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Labels      json.RawMessage `json:"labels"`
	PreviewURL  string          `json:"preview_url"`
	Settings    *apiVoiceSettings `json:"settings"`
}

type apiVoiceSettings struct {
	Stability       *float64 `json:"stability"`
	SimilarityBoost *float64 `json:"similarity_boost"`
	Style           *float64 `json:"style"`
	UseSpeakerBoost *bool    `json:"use_speaker_boost"`
}

type voicesResponse struct {
	Voices []apiVoice `json:"voices"`
}

// toProfile maps a raw API voice to a VoiceProfile, filling in defaults
// for fields the API omits
func (v apiVoice) toProfile() VoiceProfile {
	p := VoiceProfile{
		VoiceID:     v.VoiceID,
		Name:        v.Name,
		Description: v.Description,
		Category:    v.Category,
		Labels:      v.Labels,
		PreviewURL:  v.PreviewURL,
		Settings:    DefaultVoiceSettings(),
	}
	if p.Category == "" {
		p.Category = "premade"
	}
	if s := v.Settings; s != nil {
		if s.Stability != nil {
			p.Settings.Stability = *s.Stability
		}
		if s.SimilarityBoost != nil {
			p.Settings.SimilarityBoost = *s.SimilarityBoost
		}
		if s.Style != nil {
			p.Settings.Style = *s.Style
		}
		if s.UseSpeakerBoost != nil {
			p.Settings.UseSpeakerBoost = *s.UseSpeakerBoost
		}
	}
	return p
}

// TTSRequest holds parameters for speech synthesis
type TTSRequest struct {
	Text          string
	VoiceID       string
	ModelID       string         // defaults to DefaultModelID
	VoiceSettings *VoiceSettings // optional per-request override
	OutputFormat  string         // defaults to DefaultOutputFormat
}

// SFXRequest holds parameters for sound effect generation
type SFXRequest struct {
	Text            string
	DurationSeconds float64 // defaults to DefaultSFXDuration
	PromptInfluence float64 // defaults to DefaultPromptInfluence
}

// CloneRequest holds parameters for instant voice cloning
type CloneRequest struct {
	Name        string
	Description string
	Labels      json.RawMessage
	SampleFiles []string // paths to local audio samples
}

// UsageInfo describes subscription quota and capability state
type UsageInfo struct {
	CharacterCount                 int64 `json:"character_count"`
	CharacterLimit                 int64 `json:"character_limit"`
	CanExtendCharacterLimit        bool  `json:"can_extend_character_limit"`
	AllowedToExtendCharacterLimit  bool  `json:"allowed_to_extend_character_limit"`
	NextCharacterCountResetUnix    int64 `json:"next_character_count_reset_unix"`
	VoiceLimit                     int   `json:"voice_limit"`
	ProfessionalVoiceLimit         int   `json:"professional_voice_limit"`
	CanExtendVoiceLimit            bool  `json:"can_extend_voice_limit"`
	CanUseInstantVoiceCloning      bool  `json:"can_use_instant_voice_cloning"`
	CanUseProfessionalVoiceCloning bool  `json:"can_use_professional_voice_cloning"`
}
