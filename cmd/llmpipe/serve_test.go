package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/metalagman/llmpipe"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// isolate clears provider variables and runs the test in an empty directory
// so that no .env or config from the developer machine leaks in.
func isolate(t *testing.T) string {
	t.Helper()

	for _, name := range []string{
		"OPENAI_API_KEY", "GEMINI_API_KEY",
		"LLMPIPE_API_KEY", "LLMPIPE_PROVIDER", "LLMPIPE_MODEL", "LLMPIPE_MATCH",
		"LLMPIPE_MAX_TOKENS", "LLMPIPE_BASE_URL",
	} {
		t.Setenv(name, "")
		_ = os.Unsetenv(name)
	}

	dir := t.TempDir()
	t.Chdir(dir)

	return dir
}

type fakeFactory struct {
	cfg     llmpipe.Config
	answers map[string]string
}

func (f *fakeFactory) newCompleter(_ context.Context, cfg llmpipe.Config) (llmpipe.Completer, error) {
	f.cfg = cfg

	if cfg.APIKey == "" {
		return nil, llmpipe.ErrMissingAPIKey
	}

	return llmpipe.CompleterFunc(func(_ context.Context, req llmpipe.Request) (string, error) {
		if a, ok := f.answers[req.User]; ok {
			return a, nil
		}

		return "", errors.New("service unavailable")
	}), nil
}

func runRoot(t *testing.T, f *fakeFactory, input string, args ...string) (string, error) {
	t.Helper()

	a := &app{v: viper.New(), logger: zerolog.Nop(), newCompleter: f.newCompleter}

	var out bytes.Buffer

	cmd := newRootCmdWith(a)
	cmd.SetIn(strings.NewReader(input))
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), err
}

func TestChoiceCmd(t *testing.T) {
	isolate(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	f := &fakeFactory{answers: map[string]string{
		"Pick B":     "b",
		"Decide now": "I decide now",
	}}

	out, err := runRoot(t, f, "Pick B\nDecide now\nbroken\nExit\nPick B\n", "choice")
	if err != nil {
		t.Fatalf("choice: %v", err)
	}

	expected := "READY\nB\nC\nError: service unavailable\n"
	if out != expected {
		t.Fatalf("got %q, want %q", out, expected)
	}

	if f.cfg.APIKey != "sk-test" || f.cfg.Provider != llmpipe.ProviderOpenAI {
		t.Fatalf("unexpected config %+v", f.cfg)
	}

	out, err = runRoot(t, f, "Decide now\n", "choice", "--match=token")
	if err != nil {
		t.Fatalf("choice token: %v", err)
	}

	if out != "READY\nUnknown\n" {
		t.Fatalf("token mode got %q", out)
	}
}

func TestBlankCmd(t *testing.T) {
	isolate(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	f := &fakeFactory{answers: map[string]string{
		"What is a 5-letter word that starts with 'c' and means something similar to 'happy'?": "cheer",
	}}

	out, err := runRoot(t, f, "5,c,happy\nfive,c,happy\n5,cc,happy\n5,happy", "blank")
	if err != nil {
		t.Fatalf("blank: %v", err)
	}

	expected := strings.Join([]string{
		"READY",
		"cheer",
		"Error: Length must be an integer.",
		"Error: First letter must be a single alphabetic character.",
		"Error: Invalid prompt format. Expected format: length,first_letter,hint_word",
	}, "\n") + "\n"
	if out != expected {
		t.Fatalf("got %q, want %q", out, expected)
	}
}

func TestServeMissingKey(t *testing.T) {
	isolate(t)

	out, err := runRoot(t, &fakeFactory{}, "5,c,happy\n", "blank")
	if !errors.Is(err, llmpipe.ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}

	if out != "" {
		t.Fatalf("expected no handshake on configuration error, got %q", out)
	}
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name   string
		env    map[string]string
		file   string
		dotenv string
		args   []string
		check  func(t *testing.T, cfg llmpipe.Config)
		fail   bool
	}{
		{
			name: "defaults",
			env:  map[string]string{"OPENAI_API_KEY": "sk-a"},
			check: func(t *testing.T, cfg llmpipe.Config) {
				if cfg.Provider != "openai" || cfg.MaxTokens != 10 || cfg.Temperature != 0 || cfg.Match != "substring" {
					t.Fatalf("unexpected defaults %+v", cfg)
				}

				if cfg.APIKey != "sk-a" {
					t.Fatalf("expected key from OPENAI_API_KEY, got %q", cfg.APIKey)
				}
			},
		},
		{
			name: "prefixed env wins over provider env",
			env:  map[string]string{"OPENAI_API_KEY": "sk-a", "LLMPIPE_API_KEY": "sk-b", "LLMPIPE_MODEL": "gpt-x"},
			check: func(t *testing.T, cfg llmpipe.Config) {
				if cfg.APIKey != "sk-b" || cfg.Model != "gpt-x" {
					t.Fatalf("unexpected config %+v", cfg)
				}
			},
		},
		{
			name: "gemini key",
			env:  map[string]string{"OPENAI_API_KEY": "sk-a", "GEMINI_API_KEY": "g-key"},
			args: []string{"--provider=gemini"},
			check: func(t *testing.T, cfg llmpipe.Config) {
				if cfg.Provider != "gemini" || cfg.APIKey != "g-key" {
					t.Fatalf("unexpected config %+v", cfg)
				}
			},
		},
		{
			name: "config file then flags",
			file: "provider: openai\nmodel: from-file\nmax_tokens: 20\ntimeout: 3s\nrequests_per_minute: 60\nmatch: token\n",
			env:  map[string]string{"OPENAI_API_KEY": "sk-a"},
			args: []string{"--max-tokens=5"},
			check: func(t *testing.T, cfg llmpipe.Config) {
				if cfg.Model != "from-file" || cfg.MaxTokens != 5 || cfg.Match != "token" {
					t.Fatalf("unexpected config %+v", cfg)
				}

				if cfg.Timeout.String() != "3s" || cfg.RequestsPerMinute != 60 {
					t.Fatalf("unexpected limits %+v", cfg)
				}
			},
		},
		{
			name:   "dotenv",
			dotenv: "OPENAI_API_KEY=sk-dotenv\n",
			check: func(t *testing.T, cfg llmpipe.Config) {
				if cfg.APIKey != "sk-dotenv" {
					t.Fatalf("expected key from .env, got %q", cfg.APIKey)
				}
			},
		},
		{
			name: "invalid provider",
			env:  map[string]string{"OPENAI_API_KEY": "sk-a"},
			args: []string{"--provider=llama"},
			fail: true,
		},
		{
			name: "invalid temperature",
			env:  map[string]string{"OPENAI_API_KEY": "sk-a"},
			args: []string{"--temperature=5"},
			fail: true,
		},
		{
			name: "missing config file",
			env:  map[string]string{"OPENAI_API_KEY": "sk-a"},
			args: []string{"--config=nope.yaml"},
			fail: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)

			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			args := append([]string{"blank"}, tt.args...)

			if tt.file != "" {
				path := filepath.Join(dir, "llmpipe.yaml")
				if err := os.WriteFile(path, []byte(tt.file), 0o600); err != nil {
					t.Fatalf("write config: %v", err)
				}

				args = append(args, "--config="+path)
			}

			if tt.dotenv != "" {
				if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(tt.dotenv), 0o600); err != nil {
					t.Fatalf("write .env: %v", err)
				}

				t.Cleanup(func() { _ = os.Unsetenv("OPENAI_API_KEY") })
			}

			f := &fakeFactory{}

			_, err := runRoot(t, f, "", args...)
			if tt.fail {
				if err == nil {
					t.Fatal("expected error")
				}

				return
			}

			if err != nil {
				t.Fatalf("run: %v", err)
			}

			tt.check(t, f.cfg)
		})
	}
}
