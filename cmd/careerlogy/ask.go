package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/careerlogy/careerlogy-ai/internal/domain"
)

var askUser string

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a career question from the terminal",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		res, err := a.careers.ChatAnswer(cmd.Context(), &domain.ChatAnswerRequest{
			UserID:   askUser,
			Question: strings.Join(args, " "),
		})
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), res.Answer)
		fmt.Fprintf(cmd.ErrOrStderr(), "tokens: %d\n", res.TotalTokens)
		return nil
	},
}

func init() {
	askCmd.Flags().StringVar(&askUser, "user", "cli", "user id for token accounting")
}
