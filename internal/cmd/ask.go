package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/lbscek/sarvajna/internal/app"
	"github.com/lbscek/sarvajna/internal/assistant"
	"github.com/lbscek/sarvajna/internal/log"
	"github.com/lbscek/sarvajna/internal/prompt"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var (
	askSpeech bool
	askOut    string
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer one question from the terminal",
	Long: `Answer one question and print the reply. With --speech the answer is also
synthesized; --out writes the audio to a file.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().BoolVar(&askSpeech, "speech", false, "Synthesize the answer")
	askCmd.Flags().StringVarP(&askOut, "out", "o", "answer.wav", "File to write synthesized audio to")
}

func runAsk(cmd *cobra.Command, args []string) error {
	var a *assistant.Assistant
	fxApp := fx.New(
		log.ModuleTo(os.Stderr),
		app.Core(),
		fx.Populate(&a),
	)
	if err := fxApp.Err(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := fxApp.Start(ctx); err != nil {
		return err
	}
	defer fxApp.Stop(context.Background())

	turn := a.Handle(ctx, assistant.Request{
		SessionID:  "cli",
		Utterance:  prompt.Utterance{Text: strings.Join(args, " ")},
		WantSpeech: askSpeech,
	})

	fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", turn.Response.Locale, turn.Response.Text)

	if turn.Response.Audio != nil {
		if err := os.WriteFile(askOut, turn.Response.Audio, 0o644); err != nil {
			return fmt.Errorf("failed to write audio: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Audio written to %s\n", askOut)
	} else if askSpeech {
		fmt.Fprintln(cmd.ErrOrStderr(), "No audio produced, replied with text only")
	}

	if turn.Err != nil {
		return turn.Err
	}
	return nil
}
