package main

import (
	"bufio"
	"errors"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage the stored Speckle API token.",
}

var (
	tokenValue     string
	tokenFromStdin bool
)

var tokenSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Store SPECKLE_TOKEN in the local .env file.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := resolveTokenInput(cmd)
		if err != nil {
			return err
		}
		if err := writeEnvToken(".env", token); err != nil {
			return err
		}
		cmd.Println("stored SPECKLE_TOKEN in .env")
		return nil
	},
}

func resolveTokenInput(cmd *cobra.Command) (string, error) {
	if tokenFromStdin && tokenValue != "" {
		return "", errors.New("--token-stdin and --token are mutually exclusive")
	}

	if tokenFromStdin {
		raw, err := readStdinLine()
		if err != nil {
			return "", err
		}
		token := strings.TrimSpace(raw)
		if token == "" {
			return "", errors.New("token is empty")
		}
		return token, nil
	}

	if tokenValue != "" {
		return strings.TrimSpace(tokenValue), nil
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", errors.New("no token provided (use --token or --token-stdin)")
	}

	cmd.Print("Speckle token: ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	cmd.Println()
	if err != nil {
		return "", err
	}
	token := strings.TrimSpace(string(raw))
	if token == "" {
		return "", errors.New("token is empty")
	}
	return token, nil
}

func readStdinLine() (string, error) {
	in, err := os.Stdin.Stat()
	if err != nil {
		return "", err
	}
	if in.Mode()&os.ModeCharDevice != 0 {
		return "", errors.New("stdin is a terminal; use --token or omit to prompt")
	}

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", nil
	}
	return scanner.Text(), nil
}

func writeEnvToken(path, token string) error {
	var contents string
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		contents = string(data)
	case !errors.Is(err, os.ErrNotExist):
		return err
	}
	updated := upsertEnvVar(contents, "SPECKLE_TOKEN", token)
	return os.WriteFile(path, []byte(updated), 0o600)
}

// upsertEnvVar replaces key's assignment in dotenv contents or appends it.
// Other lines, comments included, stay untouched; duplicate assignments
// collapse into the first.
func upsertEnvVar(contents, key, value string) string {
	assignment := key + "=" + value
	if strings.TrimSpace(contents) == "" {
		return assignment + "\n"
	}

	lines := strings.Split(strings.TrimRight(contents, "\n"), "\n")
	out := make([]string, 0, len(lines)+1)
	replaced := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "#") && strings.HasPrefix(trimmed, key+"=") {
			if !replaced {
				out = append(out, assignment)
				replaced = true
			}
			continue
		}
		out = append(out, line)
	}
	if !replaced {
		out = append(out, assignment)
	}
	return strings.Join(out, "\n") + "\n"
}

func init() {
	tokenCmd.AddCommand(tokenSetCmd)
	tokenSetCmd.Flags().StringVar(&tokenValue, "token", "", "Token value (discouraged; prefer --token-stdin)")
	tokenSetCmd.Flags().BoolVar(&tokenFromStdin, "token-stdin", false, "Read the token from stdin")
}
