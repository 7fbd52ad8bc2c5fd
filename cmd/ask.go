package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/AskSQL/internal/assistant"
)

var errExhausted = errors.New("no statement succeeded within the correction budget")

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer one question in the terminal",
	Example: `  asksql ask "How many suppliers are there?"
  asksql ask --provider ollama "List products under 10 rupees"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		ctx, cancel := context.WithTimeout(ctx, a.cfg.Server.AskTimeout)
		defer cancel()

		return runAsk(ctx, a.assistant, strings.Join(args, " "), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
}

// runAsk answers question and prints the trail, the result table, and the summary to w.
func runAsk(ctx context.Context, a *assistant.Assistant, question string, w io.Writer) error {
	tp := &trailPrinter{w: w}
	ans, err := a.Ask(ctx, question, tp)
	if ans != nil {
		tp.printAnswer(ans)
	}
	if err != nil {
		return err
	}
	if ans.Status == assistant.StatusExhausted {
		return errExhausted
	}
	return nil
}

// trailPrinter renders pipeline events as they arrive.
type trailPrinter struct {
	w io.Writer
}

func (p *trailPrinter) Report(e assistant.Event) {
	switch e.Kind {
	case assistant.EventGenerated:
		fmt.Fprint(p.w, pterm.Info.Sprintln("Generated SQL Query: "+e.SQL))
	case assistant.EventExecutionError:
		fmt.Fprint(p.w, pterm.Error.Sprintln("SQL Error: "+e.Message))
	case assistant.EventCorrected:
		fmt.Fprint(p.w, pterm.Info.Sprintln("Corrected SQL Query: "+e.SQL))
	case assistant.EventWarning:
		fmt.Fprint(p.w, pterm.Warning.Sprintln(e.Message))
	case assistant.EventExhausted:
		fmt.Fprint(p.w, pterm.Error.Sprintln(fmt.Sprintf("Giving up after %d attempts.", e.Attempt)))
	}
}

func (p *trailPrinter) printAnswer(ans *assistant.Answer) {
	if ans.Result != nil {
		data := pterm.TableData{ans.Result.Columns}
		for _, row := range ans.Result.Rows {
			record := make([]string, len(row))
			for i, v := range row {
				record[i] = formatCell(v)
			}
			data = append(data, record)
		}
		table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
		if err == nil {
			fmt.Fprintln(p.w, table)
		}
		fmt.Fprintf(p.w, "%d row(s)\n", len(ans.Result.Rows))
	}
	if ans.Summary != "" {
		fmt.Fprint(p.w, pterm.DefaultSection.Sprint("Summary"))
		fmt.Fprintln(p.w, ans.Summary)
	}
}

func formatCell(v any) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprint(v)
}
