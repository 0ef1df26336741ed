package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/commitmate/commitmate/internal/config"
	"github.com/commitmate/commitmate/internal/llm"
	"github.com/commitmate/commitmate/internal/ui"
	"github.com/commitmate/commitmate/internal/workflow"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const defaultTestTimeout = 30 * time.Second

// initValues are the settings collected by the init wizard. An empty APIKey
// leaves the stored key untouched.
type initValues struct {
	Backend     string
	APIKey      string
	OpenAIModel string
	APIBase     string
	OllamaURL   string
	OllamaModel string
}

var (
	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Initialize commitmate configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if configErr != nil {
				return fmt.Errorf("configuration error: %w", configErr)
			}
			cfg, err := config.GetConfig()
			if err != nil {
				return err
			}
			if err := runInitWizard(cmd.Context(), inReader(), errWriter(), cfg); err != nil {
				return err
			}
			fmt.Fprintln(errWriter(), "Initialization complete.")
			return nil
		},
	}

	saveConfigValues = func(v initValues) error {
		values := map[string]string{
			"backend":         v.Backend,
			"openai.model":    v.OpenAIModel,
			"openai.api_base": v.APIBase,
			"ollama.url":      v.OllamaURL,
			"ollama.model":    v.OllamaModel,
		}
		if v.APIKey != "" {
			values[apiKeyConfigKey] = v.APIKey
		}
		for key, value := range values {
			if err := config.SetValue(key, value); err != nil {
				return err
			}
		}
		return config.SaveConfig()
	}

	testLLMConnection = func(ctx context.Context, backend llm.Backend, cfg *config.Config) error {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTestTimeout
		}
		generator, err := llm.New(backend, cfg, llm.Options{Timeout: timeout})
		if err != nil {
			return err
		}
		tester, ok := generator.(llm.ConnectionTester)
		if !ok {
			return fmt.Errorf("%s backend cannot be tested", backend)
		}
		_, err = ui.Run(fmt.Sprintf("Contacting %s...", generator.Name()), func() (struct{}, error) {
			return struct{}{}, tester.TestConnection(ctx)
		})
		return err
	}
)

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInitWizard(ctx context.Context, in io.Reader, out io.Writer, current *config.Config) error {
	cfg, err := initWizardConfig(current)
	if err != nil {
		return err
	}
	readLine := newTrimmedLineReader(ctx, in)
	readSecret := newSecretReader(ctx, in, out, readLine)
	fmt.Fprintln(out, "commitmate init - configure your commit message backends")

	values := initValues{
		OpenAIModel: cfg.OpenAI.Model,
		APIBase:     cfg.OpenAI.APIBase,
		OllamaURL:   cfg.Ollama.URL,
		OllamaModel: cfg.Ollama.Model,
	}

	if values.Backend, err = promptBackend(out, cfg, readLine); err != nil {
		return err
	}
	useOpenAI := values.Backend != string(llm.BackendOllama)
	useOllama := values.Backend != string(llm.BackendOpenAI)

	if useOpenAI {
		if values.APIKey, err = promptAPIKey(out, cfg, readSecret); err != nil {
			return err
		}
		if values.OpenAIModel, err = askValid(out, "openai.model", func() (string, error) {
			return promptModel(out, "OpenAI model", cfg.OpenAI.Model, config.DefaultOpenAIModel,
				config.GetSuggestedModels(string(llm.BackendOpenAI)), readLine)
		}); err != nil {
			return err
		}
		if values.APIBase, err = askValid(out, "openai.api_base", func() (string, error) {
			return promptAPIBase(out, cfg, readLine)
		}); err != nil {
			return err
		}
	}
	if useOllama {
		if values.OllamaURL, err = askValid(out, "ollama.url", func() (string, error) {
			return promptWithDefault(out, "Ollama URL", cfg.Ollama.URL, config.DefaultOllamaURL, readLine)
		}); err != nil {
			return err
		}
		if values.OllamaModel, err = askValid(out, "ollama.model", func() (string, error) {
			return promptModel(out, "Ollama model", cfg.Ollama.Model, config.DefaultOllamaModel,
				config.GetSuggestedModels(string(llm.BackendOllama)), readLine)
		}); err != nil {
			return err
		}
	}

	if err := saveConfigValues(values); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	tested := *cfg
	tested.Backend = values.Backend
	tested.OpenAI.Model = values.OpenAIModel
	tested.OpenAI.APIBase = values.APIBase
	tested.Ollama.URL = values.OllamaURL
	tested.Ollama.Model = values.OllamaModel
	if values.APIKey != "" {
		tested.OpenAI.APIKey = values.APIKey
	}

	var backends []llm.Backend
	if useOllama {
		backends = append(backends, llm.BackendOllama)
	}
	if useOpenAI {
		backends = append(backends, llm.BackendOpenAI)
	}
	return maybeTestConnection(ctx, out, &tested, backends, readLine)
}

func initWizardConfig(current *config.Config) (*config.Config, error) {
	if current != nil {
		return current, nil
	}
	return config.GetConfig()
}

// newTrimmedLineReader reads answers until ctx is cancelled. End of input is io.EOF.
func newTrimmedLineReader(ctx context.Context, in io.Reader) func() (string, error) {
	prompter := workflow.NewLinePrompter(in, io.Discard)
	return func() (string, error) {
		line, err := prompter.Ask(ctx, "")
		if errors.Is(err, workflow.ErrInputClosed) {
			return "", io.EOF
		}
		return line, err
	}
}

type secretResult struct {
	secret []byte
	err    error
}

// newSecretReader hides typed input when in is a terminal. Cancelling ctx
// restores the terminal echo before returning.
func newSecretReader(ctx context.Context, in io.Reader, out io.Writer, readLine func() (string, error)) func() (string, error) {
	f, ok := in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return readLine
	}
	fd := int(f.Fd())
	return func() (string, error) {
		state, err := term.GetState(fd)
		if err != nil {
			return "", fmt.Errorf("failed to read terminal state: %w", err)
		}

		result := make(chan secretResult, 1)
		go func() {
			secret, err := term.ReadPassword(fd)
			result <- secretResult{secret: secret, err: err}
		}()

		select {
		case <-ctx.Done():
			_ = term.Restore(fd, state)
			fmt.Fprintln(out)
			return "", ctx.Err()
		case r := <-result:
			fmt.Fprintln(out)
			if r.err != nil {
				return "", fmt.Errorf("failed to read secret: %w", r.err)
			}
			return strings.TrimSpace(string(r.secret)), nil
		}
	}
}

// askValid repeats ask until the answer is a valid value for the config key.
func askValid(out io.Writer, key string, ask func() (string, error)) (string, error) {
	for {
		answer, err := ask()
		if err != nil {
			return "", err
		}
		parsed, err := parseConfigValue(key, answer)
		if err == nil {
			return fmt.Sprint(parsed), nil
		}
		var validationErr *workflow.ValidationError
		if !errors.As(err, &validationErr) {
			return "", err
		}
		fmt.Fprintf(out, "Invalid %s: %s\n", key, validationErr.Reason)
	}
}

func promptBackend(out io.Writer, cfg *config.Config, readLine func() (string, error)) (string, error) {
	label := cfg.Backend
	if label == "" {
		label = "ask"
	}
	for {
		fmt.Fprintf(out, "Default backend [ollama/openai/ask] (default: %s): ", label)
		line, err := readLine()
		if err != nil {
			return "", err
		}
		switch strings.ToLower(line) {
		case "":
			return cfg.Backend, nil
		case "ask":
			return "", nil
		}
		if b, ok := llm.ParseBackend(line); ok {
			return string(b), nil
		}
		fmt.Fprintln(out, "Please enter ollama, openai or ask.")
	}
}

func promptAPIKey(out io.Writer, cfg *config.Config, readSecret func() (string, error)) (string, error) {
	for {
		if cfg.OpenAI.APIKey != "" {
			fmt.Fprint(out, "OpenAI API Key (leave blank to keep current): ")
		} else {
			fmt.Fprint(out, "OpenAI API Key (required for ChatGPT): ")
		}

		line, err := readSecret()
		if err != nil {
			return "", err
		}
		if line == "" {
			if cfg.OpenAI.APIKey != "" {
				return "", nil
			}
			fmt.Fprintln(out, "API key is required.")
			continue
		}
		return line, nil
	}
}

func promptModel(
	out io.Writer, label, current, fallback string, suggestions []string,
	readLine func() (string, error),
) (string, error) {
	if len(suggestions) > 0 {
		fmt.Fprintf(out, "Suggested: %s\n", strings.Join(suggestions, ", "))
	}
	return promptWithDefault(out, label, current, fallback, readLine)
}

func promptWithDefault(out io.Writer, label, current, fallback string, readLine func() (string, error)) (string, error) {
	value := current
	if value == "" {
		value = fallback
	}
	fmt.Fprintf(out, "%s (default: %s): ", label, value)

	line, err := readLine()
	if err != nil {
		return "", err
	}
	if line == "" {
		return value, nil
	}
	return line, nil
}

func promptAPIBase(out io.Writer, cfg *config.Config, readLine func() (string, error)) (string, error) {
	apiBaseLabel := cfg.OpenAI.APIBase
	if apiBaseLabel == "" {
		apiBaseLabel = "<empty>"
	}
	fmt.Fprintf(out, "API Base URL (default: %s): ", apiBaseLabel)

	line, err := readLine()
	if err != nil {
		return "", err
	}
	if line == "" {
		return cfg.OpenAI.APIBase, nil
	}
	return line, nil
}

func maybeTestConnection(
	ctx context.Context, out io.Writer, cfg *config.Config, backends []llm.Backend,
	readLine func() (string, error),
) error {
	for {
		fmt.Fprint(out, "Test backend connection now? [Y/n]: ")
		answer, err := readLine()
		if err != nil {
			return err
		}
		switch strings.ToLower(answer) {
		case "", "y", "yes":
			for _, backend := range backends {
				fmt.Fprintf(out, "Testing %s connection...\n", backend)
				if err := testLLMConnection(ctx, backend, cfg); err != nil {
					fmt.Fprintf(out, "Connection test failed: %v\n", err)
					fmt.Fprintln(out, "You can re-run `commitmate init` or update config with `commitmate config set`.")
				} else {
					fmt.Fprintln(out, "Connection test succeeded.")
				}
			}
			return nil
		case "n", "no":
			return nil
		default:
			fmt.Fprintln(out, "Please enter y or n.")
		}
	}
}

// ensureLLMConfigured offers to run the init wizard when the hosted backend
// has no API key. It reports whether generation can proceed.
func ensureLLMConfigured(
	ctx context.Context, cfg *config.Config, prompter workflow.Prompter, out io.Writer,
	initRunner func() error,
) (bool, error) {
	if strings.TrimSpace(cfg.OpenAI.APIKey) != "" {
		return true, nil
	}

	fmt.Fprintln(out, "API key is not configured.")
	fmt.Fprintln(out, "An API key is required to generate commit messages with ChatGPT.")

	for {
		answer, err := prompter.Ask(ctx, "Run `commitmate init` now? [Y/n]: ")
		if errors.Is(err, workflow.ErrInputClosed) {
			fmt.Fprintln(out, "Initialization skipped. Run `commitmate init` anytime to configure.")
			return false, nil
		}
		if err != nil {
			return false, err
		}

		switch strings.ToLower(answer) {
		case "", "y", "yes":
			if err := initRunner(); err != nil {
				return false, err
			}
			return true, nil
		case "n", "no":
			fmt.Fprintln(out, "Initialization skipped. Run `commitmate init` anytime to configure.")
			return false, nil
		default:
			fmt.Fprintln(out, "Please enter y or n.")
		}
	}
}
