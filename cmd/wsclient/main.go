// Wsclient is a small interactive demo of this repository's WebSocket
// client: it dials a server, prints every incoming message, and sends
// whatever the user types as outgoing text messages.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/debug"

	"github.com/rs/zerolog"
	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/toml"
	"github.com/urfave/cli/v3"

	"github.com/tzrikka/xdg"

	"github.com/raul-gherman/websocket-rawl/internal/logger"
	"github.com/raul-gherman/websocket-rawl/pkg/websocket"
)

const (
	configDirName  = "wsclient"
	configFileName = "config.toml"
)

func main() {
	bi, _ := debug.ReadBuildInfo()

	cmd := &cli.Command{
		Name:    "wsclient",
		Usage:   "connect to a WebSocket server and exchange messages interactively",
		Version: bi.Main.Version,
		Flags:   flags(),
		Action:  run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func flags() []cli.Flag {
	path := configFile()

	return []cli.Flag{
		&cli.StringFlag{
			Name:     "url",
			Usage:    "WebSocket server URL (ws:// or wss://)",
			Required: true,
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("WSCLIENT_URL"),
				toml.TOML("url", path),
			),
		},
		&cli.StringFlag{
			Name:  "header",
			Usage: "extra \"Key: Value\" HTTP header to send with the handshake",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("WSCLIENT_HEADER"),
				toml.TOML("header", path),
			),
		},
		&cli.BoolFlag{
			Name:  "pretty-log",
			Usage: "human-readable console logging, instead of JSON",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("WSCLIENT_PRETTY_LOG"),
				toml.TOML("pretty-log", path),
			),
		},
	}
}

// configFile returns the path to the app's configuration file, creating an
// empty one if it doesn't already exist.
func configFile() altsrc.StringSourcer {
	path, err := xdg.CreateFile(xdg.ConfigHome, configDirName, configFileName)
	if err != nil {
		logger.FatalError("failed to create config file", err)
	}
	return altsrc.StringSourcer(path)
}

func run(ctx context.Context, cmd *cli.Command) error {
	initLog(cmd.Bool("pretty-log"))

	var opts []websocket.DialOpt
	if h := cmd.String("header"); h != "" {
		key, value, ok := splitHeader(h)
		if ok {
			opts = append(opts, websocket.WithHTTPHeader(key, value))
		}
	}

	conn, err := websocket.Dial(ctx, cmd.String("url"), opts...)
	if err != nil {
		return fmt.Errorf("dial failed: %w", err)
	}

	go printIncoming(conn)
	return readAndSend(conn)
}

func printIncoming(conn *websocket.Conn) {
	for msg := range conn.IncomingMessages() {
		switch msg.Opcode {
		case websocket.OpcodeText:
			fmt.Printf("< %s\n", msg.Data)
		case websocket.OpcodeBinary:
			fmt.Printf("< [%d binary bytes]\n", len(msg.Data))
		}
	}
	fmt.Println("connection closed")
	os.Exit(0)
}

func readAndSend(conn *websocket.Conn) error {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if err := conn.SendTextMessage(scanner.Text()); err != nil {
			return fmt.Errorf("send failed: %w", err)
		}
	}
	conn.Close(websocket.CloseNormalClosure)
	return scanner.Err()
}

func splitHeader(s string) (key, value string, ok bool) {
	for i := range s {
		if s[i] == ':' {
			key = s[:i]
			value = s[i+1:]
			for len(value) > 0 && value[0] == ' ' {
				value = value[1:]
			}
			return key, value, true
		}
	}
	return "", "", false
}

// initLog initializes the default slog logger, backed by zerolog through
// [logger.NewZerolog]: human-readable console output on stdout, or
// structured JSON on stderr, depending on what was requested.
func initLog(pretty bool) {
	var w io.Writer = os.Stderr
	if pretty {
		w = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	z := zerolog.New(w).Level(zerolog.InfoLevel).With().Timestamp().Logger()
	slog.SetDefault(logger.NewZerolog(z))
}
