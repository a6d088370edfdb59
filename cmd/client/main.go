package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"matchroom/client"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	fs := pflag.NewFlagSet("main", pflag.ContinueOnError)

	var (
		url      = fs.StringP("url", "u", "ws://127.0.0.1:8888/session", "session endpoint url")
		logLevel = fs.StringP("log-level", "l", "warn", "log level")
	)
	if err := fs.Parse(os.Args[1:]); err != nil {
		logger.Fatal().Err(err).Msg("failed to parse command line arguments")
	}

	lvl, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to parse loglevel")
	}
	logger = logger.Level(lvl)

	ctx := context.Background()

	session, err := client.Dial(ctx, *url, client.Config{Logger: &logger})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect")
	}
	defer session.Close()

	fmt.Printf("connected, you are player %d\n", session.Self().ID)
	fmt.Println("commands: create <room> | join <room> | leave | name <name> | start | who | quit")

	go printEvents(session)

	stdin := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for stdin.Scan() {
		line := strings.TrimSpace(stdin.Text())
		if line == "quit" {
			return
		}
		runCommand(ctx, session, line)
		fmt.Print("> ")
	}
}

func runCommand(ctx context.Context, session *client.Session, line string) {
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	var (
		ok  bool
		err error
	)
	switch cmd {
	case "":
		return
	case "create":
		ok, err = session.CreateRoom(ctx, arg)
	case "join":
		ok, err = session.JoinRoom(ctx, arg)
	case "leave":
		ok, err = session.LeaveRoom(ctx)
	case "name":
		ok, err = session.Rename(ctx, arg)
	case "start":
		ok, err = session.StartGame(ctx)
	case "who":
		self := session.Self()
		fmt.Printf("you: %d %q room:%q admin:%v\n", self.ID, self.Name, session.Room(), session.IsAdmin())
		for _, p := range session.Others() {
			fmt.Printf("  %d %q\n", p.ID, p.Name)
		}
		return
	default:
		fmt.Printf("unknown command %q\n", cmd)
		return
	}

	switch {
	case err != nil:
		fmt.Printf("%s failed: %v\n", cmd, err)
	case ok:
		fmt.Printf("%s: ok\n", cmd)
	default:
		fmt.Printf("%s: rejected\n", cmd)
	}
}

func printEvents(session *client.Session) {
	for ev := range session.Events() {
		switch ev.Type {
		case client.EventPlayerJoined:
			fmt.Printf("\n* player %d (%s) joined\n> ", ev.PlayerID, ev.Name)
		case client.EventPlayerLeft:
			fmt.Printf("\n* player %d left\n> ", ev.PlayerID)
		case client.EventPlayerRenamed:
			fmt.Printf("\n* player %d is now %q\n> ", ev.PlayerID, ev.Name)
		case client.EventAdminGranted:
			fmt.Printf("\n* you are now the room admin\n> ")
		case client.EventGameStarted:
			fmt.Printf("\n* game started\n> ")
		}
	}
}
