package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"market-assistant/src/app"
	"market-assistant/src/chart"
	"market-assistant/src/config"
	"market-assistant/src/helpers"
	"market-assistant/src/models"
)

const usage = `Chat with the assistant about the displayed chart.
  :symbol <SYMBOL>   switch symbol (e.g. :symbol TCS.NS)
  :tf <RANGE>        switch timeframe (5m 1h 1d 5d 1mo 3mo 6mo 1y 5y)
  :type <TYPE>       line or candlestick
  :search <QUERY>    look up symbols
  :refresh           reload quotes
  :quit              exit
Anything else is sent to the assistant (try "help").`

// -----------------------------------------------------------------------------

func main() {
	configPath := flag.String("config", "config/default.yaml", "path to config file")
	flag.Parse()

	conf, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	// Keep the terminal for the conversation
	conf.LogLevel = "ERROR"

	a, err := app.New(conf)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := a.Restore(ctx); err != nil {
		fmt.Printf("Warning: %v\n", err)
	}

	session := a.Sessions.Create()
	printMessages(session.Messages())
	printStatus(a)
	fmt.Println(usage)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ":") {
			if !runCommand(ctx, a, line) {
				return
			}
			continue
		}

		before := len(session.Messages())
		if _, err := a.Controller.Submit(ctx, session.ID, line); err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}
		// The user line is already on screen
		printMessages(session.Messages()[before+1:])
	}
}

// -----------------------------------------------------------------------------

// runCommand handles a console command. It returns false on :quit.
func runCommand(ctx context.Context, a *app.App, line string) bool {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	var sel models.MChartSelection
	switch name {
	case ":quit", ":q":
		return false
	case ":symbol":
		sel.Symbol = arg
	case ":tf":
		sel.Timeframe = arg
	case ":type":
		sel.ChartType = arg
	case ":search":
		for _, s := range a.Search.Search(ctx, arg) {
			fmt.Printf("  %-14s %s\n", s.Symbol, s.DisplayName)
		}
		return true
	case ":refresh":
		if _, err := a.Dashboard.Refresh(ctx); err != nil {
			fmt.Printf("Error: %s\n", helpers.UserMessage(err))
		}
		printStatus(a)
		return true
	default:
		fmt.Println(usage)
		return true
	}

	if _, err := a.Dashboard.Select(ctx, sel); err != nil && helpers.IsKind(err, helpers.KindValidation) {
		fmt.Printf("Error: %s\n", helpers.UserMessage(err))
		return true
	}
	printStatus(a)
	return true
}

// -----------------------------------------------------------------------------

func printStatus(a *app.App) {
	snap := a.Dashboard.Snapshot()
	sel := snap.Selection
	tf, _ := models.LookupTimeframe(sel.Timeframe)
	switch {
	case snap.Error != "":
		fmt.Printf("[%s | %s | %s] %s\n", sel.Symbol, tf.Label, sel.ChartType, snap.Error)
	case snap.Stats != nil:
		fmt.Printf("[%s | %s | %s] %s  %s\n", sel.Symbol, tf.Label, sel.ChartType,
			chart.FormatCurrency(sel.Symbol, snap.Stats.Last),
			chart.FormatChange(snap.Stats.Change, snap.Stats.ChangePercent))
	default:
		fmt.Printf("[%s | %s | %s] no data\n", sel.Symbol, tf.Label, sel.ChartType)
	}
}

func printMessages(msgs []models.MMessage) {
	for _, m := range msgs {
		prefix := "assistant"
		if m.Role == models.RoleUser {
			prefix = "you"
		}
		if m.Kind != models.KindPlain {
			prefix += " (" + m.Kind + ")"
		}
		fmt.Printf("%s: %s\n", prefix, m.Text)

		if r := m.Analysis; r != nil {
			fmt.Printf("  Recommendation: %s\n", r.Recommendation)
			fmt.Printf("  Target Price:   %s\n", r.TargetPrice)
			fmt.Printf("  Patterns:       %s\n", r.Patterns)
			fmt.Printf("  Support:        %s\n", r.Support)
			fmt.Printf("  Resistance:     %s\n", r.Resistance)
			fmt.Printf("  %s\n", r.Disclaimer)
		}
	}
}
