// Command lookup resolves Brazilian postal codes (CEP) to an address and the
// current temperature at that address, from the terminal.
//
// Usage:
//
//	go run ./cmd/lookup -cep 01001-000
//	printf '01001-000\n20040-020\n' | go run ./cmd/lookup -json
//
// With -cep it performs one lookup and exits non-zero if it fails. Without it,
// codes are read one per line from stdin.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/couchcryptid/cep-weather-service/internal/adapter/awesomeapi"
	"github.com/couchcryptid/cep-weather-service/internal/adapter/openmeteo"
	"github.com/couchcryptid/cep-weather-service/internal/domain"
	"github.com/couchcryptid/cep-weather-service/internal/lookup"
	"github.com/couchcryptid/cep-weather-service/internal/observability"
)

type options struct {
	cep        string
	asJSON     bool
	addressURL string
	weatherURL string
	timeout    time.Duration
}

func main() {
	var opts options
	flag.StringVar(&opts.cep, "cep", "", "postal code to look up; reads codes from stdin when empty")
	flag.BoolVar(&opts.asJSON, "json", false, "print results as JSON")
	flag.StringVar(&opts.addressURL, "address-url", awesomeapi.DefaultBaseURL, "address API base URL")
	flag.StringVar(&opts.weatherURL, "weather-url", openmeteo.DefaultBaseURL, "weather API base URL")
	flag.DurationVar(&opts.timeout, "timeout", 5*time.Second, "timeout for each upstream request")
	verbose := flag.Bool("v", false, "log upstream activity to stderr")
	flag.Parse()

	if opts.timeout <= 0 {
		flag.Usage()
		os.Exit(2)
	}

	level := slog.LevelError
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, opts, os.Stdin, os.Stdout, logger, observability.NewMetrics())
	stop()
	os.Exit(code)
}

func run(ctx context.Context, opts options, in io.Reader, out io.Writer, logger *slog.Logger, metrics *observability.Metrics) int {
	orch := lookup.New(
		awesomeapi.NewClient(opts.addressURL, opts.timeout, metrics, logger),
		openmeteo.NewClient(opts.weatherURL, opts.timeout, metrics, logger),
		nil, logger, metrics,
	)

	if opts.cep != "" {
		state := orch.Submit(ctx, opts.cep)
		if err := printState(out, state, opts.asJSON); err != nil {
			fmt.Fprintf(os.Stderr, "write result: %v\n", err)
			return 1
		}
		if !state.Succeeded() {
			return 1
		}
		return 0
	}

	session := lookup.NewSession(orch)
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		state, applied := session.Submit(ctx, raw)
		if !applied {
			continue
		}
		if err := printState(out, state, opts.asJSON); err != nil {
			fmt.Fprintf(os.Stderr, "write result: %v\n", err)
			return 1
		}
		if ctx.Err() != nil {
			return 1
		}
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "read stdin: %v\n", err)
		return 1
	}
	return 0
}

// printState writes one result, either as a JSON line or as the labelled
// block the web form shows.
func printState(w io.Writer, state domain.ViewState, asJSON bool) error {
	if asJSON {
		return json.NewEncoder(w).Encode(state)
	}

	var b strings.Builder
	if state.Error != "" {
		fmt.Fprintf(&b, "Erro: %s\n", state.Error)
	}
	if a := state.Address; a != nil {
		fmt.Fprintf(&b, "CEP: %s\n", a.Code)
		fmt.Fprintf(&b, "Endereço: %s\n", a.Address)
		fmt.Fprintf(&b, "Bairro: %s\n", a.District)
		fmt.Fprintf(&b, "Cidade: %s\n", a.City)
		fmt.Fprintf(&b, "Estado: %s\n", a.State)
		if state.Temperature != nil {
			fmt.Fprintf(&b, "Temperatura Atual: %s°C\n", strconv.FormatFloat(*state.Temperature, 'f', -1, 64))
		}
	}
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}
