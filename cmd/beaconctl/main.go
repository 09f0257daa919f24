package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

const usage = `usage:
  beaconctl ble encode [-fast] [-version n] [-socket-version n] [-hash hex] [-data text | -data-hex hex] [-token hex]
  beaconctl ble decode [-fast] <hex>
  beaconctl lan encode -endpoint id -hash hex [-pcp name] [-info text] [-uwb hex] [-webrtc] [-envelope name]
  beaconctl lan decode [-envelope name] <text>
  beaconctl serve [-config path] [-addr addr]
`

var errUsage = errors.New("invalid usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
		}
		fmt.Fprintf(os.Stderr, "beaconctl: %v\n", err)
		os.Exit(1)
	}
}

// run dispatches a command. A subcommand -h has already printed its flag
// defaults, so it counts as success.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	err := dispatch(ctx, args, stdout, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	return err
}

func dispatch(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) < 1 {
		return errUsage
	}
	switch args[0] {
	case "ble":
		return runBLE(args[1:], stdout, stderr)
	case "lan":
		return runLAN(args[1:], stdout, stderr)
	case "serve":
		return runServe(ctx, args[1:], stderr)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return nil
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
}
