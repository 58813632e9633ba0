package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// run 执行 digitctl 并返回标准输出
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// writeConfig 写一个只配置了 API 地址的配置文件
func writeConfig(t *testing.T, apiURL string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := fmt.Sprintf("api:\n  url: %s\n  retry_count: 0\napp:\n  log_level: error\n", apiURL)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"migrate", "import", "template", "analyze", "predict", "submit", "history", "status"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}

	for _, name := range []string{"up", "down", "status", "goto"} {
		sub, _, err := cmd.Find([]string{"migrate", name})
		require.NoError(t, err)
		assert.Equal(t, name, sub.Name())
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, DefaultConfigPath, configFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	importCmd, _, err := cmd.Find([]string{"import"})
	require.NoError(t, err)
	assert.NotNil(t, importCmd.Flags().Lookup("pushgateway"))
}

func TestInvalidFormat(t *testing.T) {
	_, err := run(t, "--format", "yaml", "template", filepath.Join(t.TempDir(), "x.xlsx"))
	assert.ErrorContains(t, err, "invalid format")
}

func TestTemplateCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tpl.xlsx")
	out, err := run(t, "template", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Sample template created: "+path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Digit Data")
	require.NoError(t, err)
	assert.Len(t, rows, 6)
}

func TestMissingConfig(t *testing.T) {
	_, err := run(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "predict")
	assert.ErrorContains(t, err, "failed to load config")
}

func TestPredictCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"date":"2025-03-31","digit1":12,"digit2":345,"dataPoints":0,
			"insights":{"recentAvg1":null,"recentAvg2":null,"dayOfWeek":"Monday"},
			"message":"No historical data available. Showing intelligent random predictions.","algorithm":"uniform"}`))
	}))
	defer srv.Close()

	out, err := run(t, "--config", writeConfig(t, srv.URL), "predict")
	require.NoError(t, err)
	assert.Contains(t, out, "Date: 2025-03-31 (Monday)")
	assert.Contains(t, out, "Digit1: 12")
	assert.Contains(t, out, "Digit2: 345")
	assert.NotContains(t, out, "Recent averages")

	out, err = run(t, "--config", writeConfig(t, srv.URL), "--format", "json", "predict")
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, float64(345), decoded["digit2"])
}

func TestSubmitCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Date   string `json:"date"`
			Digit1 int    `json:"digit1"`
			Digit2 int    `json:"digit2"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body.Digit1 > 1000 {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"Digits must be between 0 and 1000"}`))
			return
		}
		_, _ = fmt.Fprintf(w, `{"message":"Results saved successfully","data":{"id":1,"date":%q,"digit1":%d,"digit2":%d}}`,
			body.Date, body.Digit1, body.Digit2)
	}))
	defer srv.Close()
	cfg := writeConfig(t, srv.URL)

	out, err := run(t, "--config", cfg, "submit", "2025-03-01", "150", "900")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved 2025-03-01: 150 900")

	_, err = run(t, "--config", cfg, "submit", "2025-03-01", "5000", "1")
	assert.ErrorContains(t, err, "Digits must be between 0 and 1000")

	_, err = run(t, "--config", cfg, "submit", "2025-03-01", "x", "1")
	assert.ErrorContains(t, err, "invalid digit1")
}

func TestHistoryCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`[{"id":2,"date":"2025-03-02","digit1":5,"digit2":6},{"id":1,"date":"2025-03-01","digit1":150,"digit2":900}]`))
	}))
	defer srv.Close()

	out, err := run(t, "--config", writeConfig(t, srv.URL), "history", "-n", "2")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-02     5     6\n2025-03-01   150   900\n", out)
}

func TestStatusCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/healthz", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"ok","records":12,"digit_min":0,"digit_max":1000,"telegram":{"username":"digits_bot"}}`))
	}))
	defer srv.Close()
	cfg := writeConfig(t, srv.URL)

	out, err := run(t, "--config", cfg, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "API: "+srv.URL+"\n")
	assert.Contains(t, out, "Timeout: 10s, retries: 0 (delay 1s)")
	assert.Contains(t, out, "Server: ok, records: 12, digits: 0-1000")
	assert.Contains(t, out, "Telegram bot: @digits_bot")

	out, err = run(t, "--config", cfg, "--format", "json", "status")
	require.NoError(t, err)
	var decoded map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, srv.URL, decoded["client"]["base_url"])
	assert.Equal(t, "ok", decoded["server"]["status"])
}

func TestStatusCommand_ServerDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"error","database":"unreachable"}`))
	}))
	defer srv.Close()

	_, err := run(t, "--config", writeConfig(t, srv.URL), "status")
	assert.ErrorContains(t, err, "API health check failed")
}
