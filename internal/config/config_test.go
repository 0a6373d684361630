package config

import "testing"

func TestModelShortName(t *testing.T) {
	tests := []struct {
		model string
		want  string
	}{
		{"deepseek-ai/DeepSeek-R1-Distill-Qwen-7B", "deepseek-ai_deepseek-r1-distill-qwen-7b"},
		{"meta-llama/Llama-3.1-8B", "meta-llama_llama-3_1-8b"},
		{"local:model name", "local_model_name"},
	}
	for _, tt := range tests {
		cfg := &Config{ModelName: tt.model}
		if got := cfg.ModelShortName(); got != tt.want {
			t.Errorf("ModelShortName(%q) = %q, want %q", tt.model, got, tt.want)
		}
	}
}
