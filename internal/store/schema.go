package store

// Schema v1 - Initial database schema
const schemaV1 = `
-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_version (
  version INTEGER PRIMARY KEY,
  applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Generated audio artifacts (one row per cached file)
CREATE TABLE IF NOT EXISTS audio_records (
  id TEXT PRIMARY KEY,
  audio_type TEXT NOT NULL,
  prompt TEXT NOT NULL,
  duration_seconds REAL NOT NULL DEFAULT 0,
  local_path TEXT,
  remote_url TEXT,
  metadata TEXT,
  created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_audio_records_type_created
  ON audio_records(audio_type, created_at DESC);

-- Local mirror of remote voice definitions
CREATE TABLE IF NOT EXISTS voice_profiles (
  voice_id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT,
  category TEXT NOT NULL DEFAULT 'premade',
  labels TEXT, -- JSON object of tags
  preview_url TEXT,
  settings_stability REAL NOT NULL DEFAULT 0.5,
  settings_similarity_boost REAL NOT NULL DEFAULT 0.75,
  settings_style REAL NOT NULL DEFAULT 0,
  settings_use_speaker_boost INTEGER NOT NULL DEFAULT 1,
  updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_voice_profiles_name ON voice_profiles(name);

-- Character to voice assignments, optionally scoped to a project
CREATE TABLE IF NOT EXISTS character_voices (
  id TEXT PRIMARY KEY,
  character_name TEXT NOT NULL,
  voice_id TEXT NOT NULL,
  voice_name TEXT NOT NULL,
  project_id TEXT,
  created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_character_voices_name ON character_voices(character_name);
CREATE INDEX IF NOT EXISTS idx_character_voices_project ON character_voices(project_id);

-- Key/value settings (API credential lives here)
CREATE TABLE IF NOT EXISTS settings (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`
