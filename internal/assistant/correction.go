package assistant

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/AskSQL/internal/executor"
	"github.com/JonMunkholm/AskSQL/internal/logging"
)

// Correction is the terminal state of the correction loop.
type Correction struct {
	Status      Status
	SQL         string           // last statement executed
	Outcome     executor.Outcome // outcome of that statement
	Attempts    int              // statements executed
	Corrections int              // repair rounds requested from the model
}

// Correct executes sqlText and, while execution fails, asks the model to repair
// it with the failing statement and its error text embedded. It stops on a
// result set, on a committed non-SELECT statement, or after MaxCorrections
// repair rounds. Every failure and every repaired statement is reported.
func (a *Assistant) Correct(ctx context.Context, question, sqlText string, r Reporter) (*Correction, error) {
	if r == nil {
		r = Discard
	}

	current := sqlText
	for corrections := 0; ; corrections++ {
		out := a.exec.Execute(ctx, current)
		c := &Correction{
			SQL:         current,
			Outcome:     out,
			Attempts:    corrections + 1,
			Corrections: corrections,
		}

		switch out.Kind {
		case executor.KindRows:
			c.Status = StatusRows
			return c, nil

		case executor.KindAcknowledged:
			c.Status = StatusAcknowledged
			r.Report(Event{Kind: EventWarning, SQL: current, Message: out.Message})
			return c, nil
		}

		errText := out.ErrorText()
		r.Report(Event{Kind: EventExecutionError, Attempt: c.Attempts, SQL: current, Message: errText})

		if corrections >= a.maxCorrections {
			c.Status = StatusExhausted
			logging.Warn("correction budget exhausted",
				"attempts", c.Attempts,
				"last_error", errText,
			)
			r.Report(Event{Kind: EventExhausted, Attempt: c.Attempts, SQL: current, Message: errText})
			return c, nil
		}

		logging.Info("requesting sql correction",
			"round", corrections+1,
			"max", a.maxCorrections,
			"error", errText,
		)
		fixed, err := a.generator.Repair(ctx, question, current, errText)
		if err != nil {
			return nil, fmt.Errorf("repair sql (round %d): %w", corrections+1, err)
		}
		current = fixed
		r.Report(Event{Kind: EventCorrected, Attempt: corrections + 1, SQL: current})
	}
}
