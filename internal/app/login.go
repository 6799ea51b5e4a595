package app

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/five82/tiffin/internal/creds"
	"github.com/five82/tiffin/internal/ui"
)

func newLoginCommand(e *env) *cobra.Command {
	var cookie string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Save a session from a browser Cookie header",
		Long: `Save a session from a browser Cookie header.

Without --cookie the header is read from stdin; on a terminal the input is
hidden.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw := strings.TrimSpace(cookie)
			if raw == "" {
				fmt.Fprint(e.out.Writer(), ui.RenderMarkdown(ui.LoginHelp))
				var err error
				raw, err = readCookieHeader(e.opts.Stdin, e.out.Writer())
				if err != nil {
					return err
				}
			}

			set, err := sessionFromHeader(e.extractor, raw)
			if err != nil {
				return err
			}
			if err := e.store.Replace(cmd.Context(), set); err != nil {
				return e.fail(cmd.Context(), err)
			}

			e.logger.Info().Int("cookies", len(set.Cookies)).Int("aux_ids", len(set.AuxIDs)).Msg("session saved")
			e.out.Success("Session saved (%d cookies)", len(set.Cookies))
			if set.BearerToken == "" {
				e.out.Warn("No %s cookie found; some requests may be rejected", e.extractor.TokenCookie())
			} else {
				e.out.Info("Auth token: %s", maskToken(set.BearerToken))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&cookie, "cookie", "", "Cookie header value (skips the prompt)")
	return cmd
}

// sessionFromHeader builds a fresh credential set from a pasted Cookie
// header, mapping well-known cookie names onto their roles.
func sessionFromHeader(extractor *creds.Extractor, raw string) (creds.Set, error) {
	updates := creds.ParseCookieHeader(raw)
	if len(updates) == 0 {
		return creds.Set{}, errors.New("no cookies found in input")
	}
	set, _ := creds.Set{}.Apply(extractor.FromCookies(updates))
	return set, nil
}

// readCookieHeader reads one line, hiding the input when in is a terminal.
func readCookieHeader(in io.Reader, prompt io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "Cookie: ")
		data, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("read cookie: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 16*1024), 1024*1024)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			return line, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read cookie: %w", err)
	}
	return "", errors.New("no cookie header given")
}

func maskToken(token string) string {
	const visible = 8
	runes := []rune(token)
	if len(runes) <= visible {
		return strings.Repeat("*", len(runes))
	}
	return string(runes[:visible]) + "..."
}
