// Package main implements a mock LLM server for local development.
// It speaks the Ollama generate and OpenAI chat-completions wire formats
// and answers classification prompts with a naive substring matcher, so
// the full evaluation path can run without a real model.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"
)

type verdict struct {
	RuleID     string   `json:"ruleId"`
	Detected   bool     `json:"detected"`
	Confidence float64  `json:"confidence"`
	Evidence   []string `json:"evidence"`
	Reasoning  string   `json:"reasoning"`
}

func main() {
	port := flag.Int("port", 8089, "port to listen on")
	confidence := flag.Float64("confidence", 0.9, "confidence attached to detected verdicts")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/generate", ollamaHandler(logger, *confidence))
	mux.HandleFunc("POST /v1/chat/completions", openaiHandler(logger, *confidence))

	addr := fmt.Sprintf(":%d", *port)
	logger.Info("starting mock LLM server", "addr", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      requestLogger(logger, mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("request", "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

func ollamaHandler(logger *slog.Logger, confidence float64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model  string `json:"model"`
			Prompt string `json:"prompt"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		verdicts := analyzePrompt(req.Prompt, confidence)
		logger.Info("ollama generate", "model", req.Model, "rules", len(verdicts))

		w.Header().Set("Content-Type", "application/json")
		//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
		json.NewEncoder(w).Encode(map[string]any{
			"model":    req.Model,
			"response": mustJSON(verdicts),
			"done":     true,
		})
	}
}

func openaiHandler(logger *slog.Logger, confidence float64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		var prompt string
		for _, m := range req.Messages {
			if m.Role == "user" {
				prompt = m.Content
			}
		}

		verdicts := analyzePrompt(prompt, confidence)
		logger.Info("chat completion", "model", req.Model, "rules", len(verdicts))

		w.Header().Set("Content-Type", "application/json")
		//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
		json.NewEncoder(w).Encode(map[string]any{
			"model": req.Model,
			"choices": []map[string]any{
				{
					"index": 0,
					"message": map[string]any{
						"role":    "assistant",
						"content": mustJSON(verdicts),
					},
					"finish_reason": "stop",
				},
			},
		})
	}
}

// ruleLine matches one rule entry in the batched analysis prompt:
// "- ruleId <id> (<name>); watch for: p1; p2".
var ruleLine = regexp.MustCompile(`- ruleId (\S+) \(([^)]*)\)(?:; watch for: (.*))?`)

// analyzePrompt extracts the rule list and report text from a batched
// classification prompt and flags each rule whose detection patterns
// appear verbatim in the report fields.
func analyzePrompt(prompt string, confidence float64) []verdict {
	reportText, _, _ := strings.Cut(prompt, "Rules to evaluate:")
	lowerReport := strings.ToLower(reportText)

	var verdicts []verdict
	for _, m := range ruleLine.FindAllStringSubmatch(prompt, -1) {
		v := verdict{
			RuleID:    m[1],
			Evidence:  []string{},
			Reasoning: "no detection patterns matched",
		}

		for _, pattern := range strings.Split(m[3], ";") {
			pattern = strings.TrimSpace(pattern)
			if pattern == "" {
				continue
			}
			if strings.Contains(lowerReport, strings.ToLower(pattern)) {
				v.Detected = true
				v.Confidence = confidence
				v.Evidence = append(v.Evidence, pattern)
				v.Reasoning = fmt.Sprintf("report text contains %q", pattern)
				break
			}
		}

		verdicts = append(verdicts, v)
	}

	if verdicts == nil {
		verdicts = []verdict{}
	}
	return verdicts
}

func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(data)
}
