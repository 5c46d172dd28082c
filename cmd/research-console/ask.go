// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-console/internal/client"
	"github.com/pdiddy/research-console/internal/form"
	"github.com/pdiddy/research-console/internal/render"
	"github.com/pdiddy/research-console/internal/submit"
	"github.com/pdiddy/research-console/pkg/types"
)

// errResearchFailed is returned after the failure has already been shown.
var errResearchFailed = errors.New("research failed")

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Submit one research question and print the answer",
	Long: `Ask fills the research form from flags, submits it once to the research
service and prints the outcome. The API key defaults to the groq-api-key file
in .secrets/ or RESEARCH_CONSOLE_GROQ_API_KEY.`,
	RunE: runAsk,
}

func init() {
	askCmd.Flags().String("query", "", "search query for arXiv papers")
	askCmd.Flags().String("question", "", "research question to answer")
	askCmd.Flags().String("api-key", "", "Groq API key")
	askCmd.Flags().Int("max-results", int(types.DefaultMaxResults), "papers to download (3, 5 or 10)")
	askCmd.Flags().String("model", string(types.DefaultModel), "Groq model name")
	askCmd.Flags().String("format", string(types.OutputText), "output format: text, plain, json or yaml")
	viper.BindPFlag("format", askCmd.Flags().Lookup("format"))

	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	query, _ := cmd.Flags().GetString("query")
	question, _ := cmd.Flags().GetString("question")
	key, _ := cmd.Flags().GetString("api-key")
	maxResults, _ := cmd.Flags().GetInt("max-results")
	model, _ := cmd.Flags().GetString("model")

	format := types.OutputFormat(viper.GetString("format"))
	switch format {
	case types.OutputText, types.OutputPlain, types.OutputJSON, types.OutputYAML:
	default:
		return fmt.Errorf("unknown format %q: use text, plain, json or yaml", format)
	}

	s, err := fillForm(map[form.Field]string{
		form.FieldQuery:            query,
		form.FieldResearchQuestion: question,
		form.FieldGroqAPIKey:       apiKey(key),
		form.FieldMaxResults:       strconv.Itoa(maxResults),
		form.FieldModelName:        model,
	})
	if err != nil {
		return err
	}
	if err := s.Validate(); err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	h := submit.New(client.New(viper.GetString("endpoint")), s)
	h.Subscribe(func(s form.State) {
		if s.Loading {
			fmt.Fprintln(stderr, render.LabelSubmitting)
		}
	})

	// A failed call is already folded into final.Err.
	final, _ := h.Submit(cmd.Context())
	if err := writeOutcome(cmd.OutOrStdout(), format, render.Build(final)); err != nil {
		return err
	}
	if final.Err != "" {
		return errResearchFailed
	}
	return nil
}

// fillForm applies values to a fresh form in display order.
func fillForm(values map[form.Field]string) (form.State, error) {
	s := form.New()
	for _, f := range form.Fields {
		next, err := s.WithField(f, values[f])
		if err != nil {
			return s, err
		}
		s = next
	}
	return s, nil
}

func writeOutcome(w io.Writer, format types.OutputFormat, v render.View) error {
	switch format {
	case types.OutputJSON:
		return render.JSON(w, v)
	case types.OutputYAML:
		return render.YAML(w, v)
	case types.OutputPlain:
		render.Text(w, v)
	default:
		fmt.Fprint(w, render.Styled(v))
	}
	return nil
}
