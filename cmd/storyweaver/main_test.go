package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/storyweaver/internal/config"
	"github.com/jonathan/storyweaver/internal/types"
)

const sampleDoc = "# 项目背景\n本项目用于管理内部账号。\n\n## 功能需求\n管理员可以批量删除用户账号以便减少维护成本。用户能够修改自己的登录密码\n"

// executeCommand runs the CLI in-process and captures stdout and stderr
func executeCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestExtractCommand_NoCredentials(t *testing.T) {
	t.Setenv(config.APIKeyEnv, "")
	path := writeFile(t, "需求.md", sampleDoc)

	stdout, stderr, err := executeCommand(t, "extract", path)
	require.NoError(t, err)

	var doc types.ParsedDocument
	require.NoError(t, json.Unmarshal([]byte(stdout), &doc))
	assert.Equal(t, "需求.md", doc.FileName)
	assert.Equal(t, types.DocumentCompleted, doc.Status)
	require.Len(t, doc.Stories, 2)
	assert.Equal(t, "批量删除用户账号", doc.Stories[0].Action)
	assert.Zero(t, doc.OptimizedCount)
	assert.Contains(t, stderr, "skipping optimization")
}

func TestExtractCommand_OptimizesWithProvider(t *testing.T) {
	t.Setenv(config.APIKeyEnv, "")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{
				map[string]any{"message": map[string]string{
					"role":    "assistant",
					"content": `{"value": "保障账号安全", "confidence": 0.9}`,
				}},
			},
		})
	}))
	defer srv.Close()

	path := writeFile(t, "需求.md", sampleDoc)
	outPath := filepath.Join(t.TempDir(), "doc.json")
	metricsPath := filepath.Join(t.TempDir(), "usage.prom")

	stdout, _, err := executeCommand(t, "extract", path,
		"--api-key", "sk-test",
		"--base-url", srv.URL,
		"--model", "gpt-4o-mini",
		"--out", outPath,
		"--metrics-file", metricsPath,
		"--verbose",
	)
	require.NoError(t, err)

	assert.Contains(t, stdout, "Extracted 2 stories from 需求.md")
	assert.Contains(t, stdout, "EXTRACTED STORIES")
	assert.Contains(t, stdout, "LLM USAGE")

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var doc types.ParsedDocument
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, 1, doc.OptimizedCount)
	assert.Equal(t, "保障账号安全", doc.Stories[0].Value)

	metrics, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), `storyweaver_optimization_requests_total{model="gpt-4o-mini"} 1`)
}

func TestExtractCommand_NoOptimizeSkipsProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Error("provider must not be called")
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	path := writeFile(t, "需求.txt", sampleDoc)
	stdout, _, err := executeCommand(t, "extract", path, "--api-key", "sk-test", "--base-url", srv.URL, "--no-optimize")
	require.NoError(t, err)

	var doc types.ParsedDocument
	require.NoError(t, json.Unmarshal([]byte(stdout), &doc))
	assert.Equal(t, "（待补充）", doc.Stories[1].Value)
}

func TestExtractCommand_ConfigFile(t *testing.T) {
	t.Setenv(config.APIKeyEnv, "")
	cfgPath := writeFile(t, "config.json", `{"no_optimize": true, "log_format": "json", "log_level": "debug"}`)
	path := writeFile(t, "需求.md", sampleDoc)

	_, stderr, err := executeCommand(t, "extract", path, "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, stderr, `"msg":"document parsed"`)
}

func TestExtractCommand_Errors(t *testing.T) {
	t.Setenv(config.APIKeyEnv, "")
	doc := writeFile(t, "需求.md", sampleDoc)

	tests := []struct {
		name        string
		args        []string
		errorString string
	}{
		{
			name:        "missing file argument",
			args:        []string{"extract"},
			errorString: "accepts 1 arg(s)",
		},
		{
			name:        "file not found",
			args:        []string{"extract", "/nonexistent/需求.md"},
			errorString: "file not found",
		},
		{
			name:        "unsupported type",
			args:        []string{"extract", writeFile(t, "spec.pdf", "%PDF-1.4")},
			errorString: "unsupported file type",
		},
		{
			name:        "invalid config value",
			args:        []string{"extract", doc, "--log-format", "xml"},
			errorString: "'log_format'",
		},
		{
			name:        "missing config file",
			args:        []string{"extract", doc, "--config", "/nonexistent/config.json"},
			errorString: "failed to load config",
		},
		{
			name:        "invalid base url",
			args:        []string{"extract", doc, "--api-key", "sk-test", "--base-url", "::nope"},
			errorString: "'base_url'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := executeCommand(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorString)
		})
	}
}

func TestSectionsCommand(t *testing.T) {
	path := writeFile(t, "需求.md", sampleDoc)

	stdout, _, err := executeCommand(t, "sections", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "DOCUMENT SECTIONS")
	assert.Contains(t, stdout, "项目背景 [background]")
	assert.Contains(t, stdout, "功能需求 [functional]")
}

func TestSectionsCommand_JSONWithLexicon(t *testing.T) {
	lexPath := writeFile(t, "lexicon.yaml", "synthetic_section: 全文\n")
	path := writeFile(t, "notes.txt", "用户可以登录系统以便查看个人信息\n")

	stdout, _, err := executeCommand(t, "sections", path, "--json", "--lexicon", lexPath)
	require.NoError(t, err)

	var secs []types.DocumentSection
	require.NoError(t, json.Unmarshal([]byte(stdout), &secs))
	require.Len(t, secs, 1)
	assert.Equal(t, "全文", secs[0].Title)
	assert.Equal(t, types.SectionFunctional, secs[0].Category)
}

func TestProvidersCommand(t *testing.T) {
	stdout, _, err := executeCommand(t, "providers")
	require.NoError(t, err)

	assert.Contains(t, stdout, "MODEL")
	assert.Contains(t, stdout, "gpt-4o-mini")
	assert.Contains(t, stdout, "claude-3-haiku-20240307")
	assert.Contains(t, stdout, "gemini-1.5-flash")
	assert.Contains(t, stdout, "(sdk)")
}
