package cmd

import (
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/commitmate/commitmate/internal/config"
	"github.com/commitmate/commitmate/internal/formatter"
	"github.com/commitmate/commitmate/internal/gitutil"
	"github.com/commitmate/commitmate/internal/llm"
	"github.com/commitmate/commitmate/internal/logging"
	"github.com/commitmate/commitmate/internal/workflow"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const apiKeyConfigKey = "openai.api_key"

var (
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Manage commitmate configuration",
		Long: `Manage commitmate configuration: backend, models, prompt template, ` +
			`merge target and the OpenAI API key.`,
	}

	configGetCmd = &cobra.Command{
		Use:               "get [key]",
		Short:             "Show the current configuration or a single key",
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeConfigKeys,
		RunE: func(_ *cobra.Command, args []string) error {
			if configErr != nil {
				return fmt.Errorf("configuration error: %w", configErr)
			}
			return runConfigGet(outWriter(), args)
		},
	}

	configSetCmd = &cobra.Command{
		Use:               "set <key> <value>",
		Short:             "Set a configuration value and save it",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeConfigKeys,
		RunE: func(_ *cobra.Command, args []string) error {
			if configErr != nil {
				return fmt.Errorf("configuration error: %w", configErr)
			}
			return runConfigSet(outWriter(), args[0], args[1])
		},
	}
)

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func completeConfigKeys(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return config.ValidKeys(), cobra.ShellCompDirectiveNoFileComp
}

func runConfigGet(out io.Writer, args []string) error {
	if len(args) == 1 {
		key := args[0]
		if !config.IsValidKey(key) {
			return unknownKeyError(key)
		}
		fmt.Fprintln(out, displayValue(key))
		return nil
	}

	settings := map[string]any{}
	for _, key := range config.ValidKeys() {
		section, name, nested := strings.Cut(key, ".")
		if !nested {
			settings[key] = displayValue(key)
			continue
		}
		sub, ok := settings[section].(map[string]any)
		if !ok {
			sub = map[string]any{}
			settings[section] = sub
		}
		sub[name] = displayValue(key)
	}

	if path := viper.ConfigFileUsed(); path != "" {
		fmt.Fprintf(out, "# %s\n", path)
	}
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(settings); err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	return enc.Close()
}

func displayValue(key string) any {
	switch key {
	case apiKeyConfigKey:
		return maskSecret(viper.GetString(key))
	case "timeout":
		return viper.GetDuration(key).String()
	case "openai.temperature":
		return viper.GetFloat64(key)
	default:
		return viper.GetString(key)
	}
}

// maskSecret keeps only the last four characters of long secrets.
func maskSecret(secret string) string {
	switch {
	case secret == "":
		return "<not set>"
	case len(secret) <= 8:
		return "********"
	default:
		return "********" + secret[len(secret)-4:]
	}
}

func runConfigSet(out io.Writer, key, value string) error {
	parsed, err := parseConfigValue(key, value)
	if err != nil {
		return err
	}
	if err := config.SetValue(key, parsed); err != nil {
		return err
	}
	if err := config.SaveConfig(); err != nil {
		return err
	}

	shown := value
	if key == apiKeyConfigKey {
		shown = maskSecret(value)
	}
	fmt.Fprintf(out, "Set %s = %s\n", key, shown)

	if section, _, ok := strings.Cut(key, "."); ok && strings.HasSuffix(key, ".model") {
		if suggestions := config.GetSuggestedModels(section); len(suggestions) > 0 {
			fmt.Fprintf(out, "Suggested %s models: %s\n", section, strings.Join(suggestions, ", "))
		}
	}
	return nil
}

func unknownKeyError(key string) error {
	return &workflow.ValidationError{
		Field:  "configuration key",
		Value:  key,
		Reason: "valid keys are " + strings.Join(config.ValidKeys(), ", "),
	}
}

// parseConfigValue validates value for key and converts it to the stored type.
func parseConfigValue(key, value string) (any, error) {
	if !config.IsValidKey(key) {
		return nil, unknownKeyError(key)
	}
	invalid := func(reason string) error {
		return &workflow.ValidationError{Field: "value for " + key, Value: value, Reason: reason}
	}

	value = strings.TrimSpace(value)
	switch key {
	case "backend":
		if value == "" {
			return "", nil
		}
		b, ok := llm.ParseBackend(value)
		if !ok {
			return nil, invalid("expected ollama or openai")
		}
		return string(b), nil
	case "timeout":
		d, err := time.ParseDuration(value)
		if err != nil || d < 0 {
			return nil, invalid("expected a non-negative duration such as 30s")
		}
		return d.String(), nil
	case "openai.temperature":
		f, err := strconv.ParseFloat(value, 32)
		if err != nil || f < 0 || f > 2 {
			return nil, invalid("expected a number between 0 and 2")
		}
		return f, nil
	case "log_level":
		if _, err := logging.ParseLevel(value); err != nil {
			return nil, invalid(err.Error())
		}
	case "prompt_template":
		if _, err := formatter.GetPromptTemplate(value); err != nil {
			return nil, invalid(err.Error())
		}
	case "merge_target":
		if err := gitutil.ValidateBranchName(value); err != nil {
			return nil, invalid(err.Error())
		}
	case "ollama.url", "openai.api_base":
		if value == "" && key == "openai.api_base" {
			return "", nil
		}
		u, err := url.Parse(value)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, invalid("expected an http(s) URL")
		}
	case "remote", "ollama.model", "openai.model", "style":
		if value == "" {
			return nil, invalid("value cannot be empty")
		}
	}
	return value, nil
}
