package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"tradejournal/internal/autocalc"
	"tradejournal/internal/domain"
)

func newCalcCmd(opts *RootOptions) *cobra.Command {
	var in autocalc.Inputs
	var side, result string
	var watch bool

	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Compute a trade result from entry, exit and quantity",
		Long: `Compute a trade result from entry, exit and quantity.

With --watch, field edits are read from stdin one per line (entry=, exit=, qty=, sold=,
side=, result=) and the result is recomputed once edits pause for AUTOCALC_DEBOUNCE_MS.
Typing result=... switches to manual mode; "reset" switches back to auto.`,
		Example: `  journal calc --entry 100 --exit 150 --qty 10 --side buy
  journal calc --entry 100 --exit 95 --qty 10 --sold 4 --side sell
  printf 'entry=100\nexit=150\nqty=10\n' | journal calc --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pt := domain.PositionType(side)
			if !pt.Valid() {
				return fmt.Errorf("invalid --side %q: want buy or sell", side)
			}
			in.PositionType = pt

			if watch {
				return withRuntime(cmd, opts, func(rt *runtime) error {
					return watchResult(cmd.InOrStdin(), cmd.OutOrStdout(), rt, in, result)
				})
			}

			computed, ok := autocalc.Compute(in)
			if !ok {
				return fmt.Errorf("entry, exit and quantity must be numbers")
			}
			fmt.Fprintln(cmd.OutOrStdout(), computed)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.EntryPrice, "entry", "", "entry price")
	cmd.Flags().StringVar(&in.SellPrice, "exit", "", "exit (sell) price")
	cmd.Flags().StringVar(&in.Quantity, "qty", "", "position quantity")
	cmd.Flags().StringVar(&in.QuantitySold, "sold", "", "quantity sold (defaults to --qty)")
	cmd.Flags().StringVar(&side, "side", string(domain.Buy), "buy|sell")
	cmd.Flags().StringVar(&result, "result", "", "starting result value (--watch)")
	cmd.Flags().BoolVar(&watch, "watch", false, "read field edits from stdin and recompute as they settle")
	return cmd
}

// watchResult drives an auto-calculation session from line-based field edits.
func watchResult(r io.Reader, w io.Writer, rt *runtime, in autocalc.Inputs, result string) error {
	var mu sync.Mutex
	emit := func(format string, a ...interface{}) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(w, format, a...)
	}

	sess := rt.svc.NewResultSession(in, result, func(v string) { emit("result: %s\n", v) })
	defer sess.Close()

	scanner := bufio.NewScanner(r)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		if text == "reset" {
			sess.Reset(in, sess.Result())
			emit("mode: %s\n", sess.Mode())
			continue
		}

		key, value, ok := strings.Cut(text, "=")
		if !ok {
			return fmt.Errorf("line %d: want field=value, got %q", line, text)
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case "entry":
			in.EntryPrice = value
		case "exit":
			in.SellPrice = value
		case "qty":
			in.Quantity = value
		case "sold":
			in.QuantitySold = value
		case "side":
			pt := domain.PositionType(value)
			if !pt.Valid() {
				return fmt.Errorf("line %d: invalid side %q: want buy or sell", line, value)
			}
			in.PositionType = pt
		case "result":
			sess.SetResult(value)
			emit("mode: %s\n", sess.Mode())
			continue
		default:
			return fmt.Errorf("line %d: unknown field %q", line, key)
		}
		sess.Update(in)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read field edits: %w", err)
	}

	// input ended: apply whatever is still waiting for the quiet period
	sess.Flush()
	sess.Close()
	emit("final: %s (%s)\n", sess.Result(), sess.Mode())
	return nil
}
