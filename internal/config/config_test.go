package config

import (
	"testing"
)

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.HTTP.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.HTTP.Port)
	}
	if cfg.Inference.Provider != "huggingface" {
		t.Errorf("Provider = %q, want huggingface", cfg.Inference.Provider)
	}
	if cfg.Inference.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL = %q, want %q", cfg.Inference.BaseURL, DefaultBaseURL)
	}
	if cfg.Inference.EmbeddingModel != DefaultEmbeddingModel {
		t.Errorf("EmbeddingModel = %q, want %q", cfg.Inference.EmbeddingModel, DefaultEmbeddingModel)
	}
	if cfg.Inference.GenerationModel != DefaultGenerationModel {
		t.Errorf("GenerationModel = %q, want %q", cfg.Inference.GenerationModel, DefaultGenerationModel)
	}
	if cfg.Inference.MaxNewTokens != 256 {
		t.Errorf("MaxNewTokens = %d, want 256", cfg.Inference.MaxNewTokens)
	}
	if cfg.Retrieval.TopK != 4 {
		t.Errorf("TopK = %d, want 4", cfg.Retrieval.TopK)
	}
}

func TestApplyDefaults_TokenFromEnv(t *testing.T) {
	t.Setenv("HF_TOKEN", "hf_test_token")

	var cfg Config
	cfg.ApplyDefaults()

	if cfg.Inference.Token != "hf_test_token" {
		t.Errorf("Token = %q, want value of HF_TOKEN", cfg.Inference.Token)
	}
}

func TestApplyDefaults_DoesNotOverrideExplicitToken(t *testing.T) {
	t.Setenv("HF_TOKEN", "hf_env_token")

	cfg := Config{Inference: InferenceConfig{Token: "hf_file_token"}}
	cfg.ApplyDefaults()

	if cfg.Inference.Token != "hf_file_token" {
		t.Errorf("Token = %q, want hf_file_token", cfg.Inference.Token)
	}
}

func TestValidate_InvalidProvider(t *testing.T) {
	cfg := Config{
		HTTP:      HTTPConfig{Port: 8080},
		Inference: InferenceConfig{Provider: "azure"},
		Retrieval: RetrievalConfig{TopK: 4},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}

	expected := `inference.provider must be "huggingface" or "openai", got "azure"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_MissingTokenIsAllowed(t *testing.T) {
	cfg := Config{
		HTTP:      HTTPConfig{Port: 8080},
		Inference: InferenceConfig{Provider: "huggingface"},
		Retrieval: RetrievalConfig{TopK: 4},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_BadPort(t *testing.T) {
	cfg := Config{
		HTTP:      HTTPConfig{Port: 70000},
		Inference: InferenceConfig{Provider: "huggingface"},
		Retrieval: RetrievalConfig{TopK: 4},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for out-of-range port")
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("FOLIOCHAT_TEST_VAR", "secret")

	in := []byte("token: ${FOLIOCHAT_TEST_VAR}\nmodel: ${FOLIOCHAT_UNSET:-fallback}\n")
	out := string(expandEnvVars(in))

	want := "token: secret\nmodel: fallback\n"
	if out != want {
		t.Errorf("expandEnvVars:\ngot:  %q\nwant: %q", out, want)
	}
}
