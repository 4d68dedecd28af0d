package main

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/docopt/docopt-go"
	"github.com/ergochat/irc-go/ircreader"
	log "github.com/sirupsen/logrus"

	"twitch-chat-overlay/colors"
	"twitch-chat-overlay/filter"
	"twitch-chat-overlay/parser"
	"twitch-chat-overlay/service"
)

const (
	version = "chat-replay 0.1.0"

	initialBufferSize = 1024
	maxBufferSize     = 1024 * 1024
)

func main() {
	usage := `chat-replay.
chat-replay reads raw Twitch IRC lines (one per line, as received from
irc.chat.twitch.tv) and prints the overlay records they produce as JSON lines.
Colors assigned to users stay stable for the whole run.

Usage:
	chat-replay [options] [<file>]
	chat-replay -h | --help
	chat-replay --version

Options:
	--ignore=<users>  Comma-separated glob patterns of nicks to hide.
	--debug           Log skipped lines and unknown commands.
	-h --help         Show this screen.
	--version         Show version.`

	arguments, _ := docopt.Parse(usage, nil, true, version, false)

	log.SetOutput(os.Stderr)
	if arguments["--debug"].(bool) {
		log.SetLevel(log.DebugLevel)
	}

	var patterns []string
	if arguments["--ignore"] != nil {
		patterns = strings.Split(arguments["--ignore"].(string), ",")
	}
	ignore, err := filter.NewIgnore(patterns)
	if err != nil {
		log.WithError(err).Fatal("bad --ignore")
	}

	var input io.Reader = os.Stdin
	if arguments["<file>"] != nil {
		f, err := os.Open(arguments["<file>"].(string))
		if err != nil {
			log.WithError(err).Fatal("open transcript")
		}
		defer f.Close()
		input = f
	}

	handler := service.NewHandler(parser.New(colors.NewManager(), nil, nil), ignore, service.NewJSONSink(os.Stdout))

	var reader ircreader.Reader
	reader.Initialize(input, initialBufferSize, maxBufferSize)

	ctx := context.Background()
	for {
		lineBytes, err := reader.ReadLine()
		if err == io.EOF {
			return
		}
		if err != nil {
			log.WithError(err).Fatal("read line")
		}
		if len(lineBytes) == 0 {
			continue
		}
		handler.HandleLine(ctx, string(lineBytes))
	}
}
