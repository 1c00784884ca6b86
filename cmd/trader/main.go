package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"crypto-paper-trader/internal/eod"
	"crypto-paper-trader/internal/interfaces"
	"crypto-paper-trader/internal/ledger"
	"crypto-paper-trader/internal/logger"
	"crypto-paper-trader/internal/store"
	"crypto-paper-trader/internal/trace"
	"crypto-paper-trader/internal/tradelog"
	"crypto-paper-trader/internal/types"
)

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	must(initializeSystem())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := loadConfig(ctx)
	must(err)

	compressOldLogs(ctx)

	prices := initializeOracle(cfg)
	ldg, acct := initializeLedger(ctx, cfg, prices)
	reporter := ledger.NewReporter(ldg, prices)

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	lines := make(chan string)
	go func() {
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			lines <- sc.Text()
		}
		close(lines)
	}()

	fmt.Printf("Paper trading session started. Balance: %s. Type 'help' for commands.\n",
		display(cfg, ldg.CashBalance()))

	for {
		select {
		case line, ok := <-lines:
			if !ok {
				shutdown(ctx, cfg, acct)
				return
			}
			if quit := handleCommand(ctx, cfg, ldg, reporter, prices, line); quit {
				shutdown(ctx, cfg, acct)
				return
			}
		case <-sigc:
			log.Println("Shutting down...")
			shutdown(ctx, cfg, acct)
			return
		case <-ctx.Done():
			return
		}
	}
}

func shutdown(ctx context.Context, cfg *store.Config, acct *ledger.Account) {
	if err := store.SaveAccount(cfg.SnapshotPath, acct.State()); err != nil {
		logger.Warn(ctx, "Failed to save account snapshot", "error", err)
	} else {
		logger.Info(ctx, "Account snapshot saved", "path", cfg.SnapshotPath)
	}
	if p, err := eod.SummarizeToday(); err == nil && p != "" {
		log.Println("Daily summary written:", p)
	}
	_ = trace.Shutdown(ctx)
}

// handleCommand dispatches one input line. Returns true on quit.
func handleCommand(ctx context.Context, cfg *store.Config, ldg interfaces.Ledger, reporter *ledger.Reporter, prices interfaces.PriceSource, line string) bool {
	args := strings.Fields(line)
	if len(args) == 0 {
		return false
	}

	switch strings.ToLower(args[0]) {
	case "help":
		printHelp()
	case "buy", "sell":
		runOrder(ctx, cfg, ldg, prices, args)
	case "book":
		if len(args) != 2 {
			fmt.Println("usage: book SYMBOL")
			return false
		}
		res, err := ldg.BookProfit(ctx, args[1])
		if err != nil {
			fmt.Println("error:", err)
			return false
		}
		if res == nil {
			fmt.Println("nothing to book for", strings.ToUpper(args[1]))
			return false
		}
		printJSON(res)
	case "bookall":
		res, err := ldg.BookAllProfits(ctx)
		if err != nil {
			fmt.Println("error:", err)
			return false
		}
		printJSON(res)
		fmt.Printf("Realized PnL: %s, balance: %s\n", display(cfg, res.RealizedPnL), display(cfg, res.CashBalance))
	case "positions":
		printJSON(ldg.Positions())
	case "history":
		printJSON(ldg.Trades())
	case "pnl":
		report, err := reporter.Report(ctx)
		if err != nil {
			fmt.Println("error:", err)
			return false
		}
		printJSON(report)
		fmt.Printf("Portfolio value: %s, total PnL: %s\n",
			display(cfg, report.PortfolioValue), display(cfg, report.TotalPnL))
	case "trades":
		marks, err := reporter.TradePnL(ctx)
		if err != nil {
			fmt.Println("error:", err)
			return false
		}
		printJSON(marks)
	case "balance":
		fmt.Println("Balance:", display(cfg, ldg.CashBalance()))
	case "eod":
		if p, err := eod.SummarizeToday(); err != nil {
			fmt.Println("error:", err)
		} else if p == "" {
			fmt.Println("no trades today")
		} else {
			fmt.Println("Daily summary written:", p)
		}
	case "quit", "exit":
		return true
	default:
		fmt.Println("unknown command:", args[0])
	}
	return false
}

// runOrder executes a market or limit order. Market orders price via
// the oracle; a non-live quote is a warning, never a failure.
func runOrder(ctx context.Context, cfg *store.Config, ldg interfaces.Ledger, prices interfaces.PriceSource, args []string) {
	if len(args) < 3 || len(args) > 4 {
		fmt.Println("usage:", strings.ToLower(args[0]), "SYMBOL QTY [PRICE]")
		return
	}
	symbol := args[1]
	qty, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		fmt.Println("invalid quantity:", args[2])
		return
	}

	var price float64
	live := true
	if len(args) == 4 {
		price, err = strconv.ParseFloat(args[3], 64)
		if err != nil {
			fmt.Println("invalid price:", args[3])
			return
		}
	} else {
		quote, err := prices.GetPrice(ctx, symbol)
		if err != nil {
			fmt.Println("error:", err)
			return
		}
		if !quote.Live {
			fmt.Printf("warning: using fallback price %.2f for %s\n", quote.Price, symbol)
		}
		price, live = quote.Price, quote.Live
	}

	var res *types.OrderResult
	if strings.EqualFold(args[0], "buy") {
		res, err = ldg.Buy(ctx, symbol, qty, price)
	} else {
		res, err = ldg.Sell(ctx, symbol, qty, price)
	}
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrInsufficientBalance):
			fmt.Println("insufficient balance")
		case errors.Is(err, ledger.ErrInvalidQuantity):
			fmt.Println("enter a valid quantity")
		default:
			fmt.Println("error:", err)
		}
		return
	}
	res.Live = live

	if err := tradelog.Append(res.Trade); err != nil {
		logger.Warn(ctx, "Failed to journal trade", "error", err)
	}
	printJSON(res)
	fmt.Printf("Balance: %s\n", display(cfg, res.CashBalance))
}

// display formats a USD amount in the configured display currency.
func display(cfg *store.Config, usd float64) string {
	if cfg.Display.Currency == "INR" {
		return fmt.Sprintf("₹%.2f", usd*cfg.Display.USDINRRate)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func printJSON(v any) {
	b, _ := json.Marshal(v)
	fmt.Println(string(b))
}

func printHelp() {
	fmt.Print(`commands:
  buy SYMBOL QTY [PRICE]   buy at market (or PRICE when given)
  sell SYMBOL QTY [PRICE]  sell at market; shorts allowed
  book SYMBOL              close the full position at the live price
  bookall                  book every open position
  positions                open positions
  history                  trade history
  trades                   per-trade PnL against live prices
  pnl                      portfolio report
  balance                  cash balance
  eod                      write today's summary CSV
  quit                     save snapshot and exit
`)
}
