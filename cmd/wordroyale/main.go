package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version kong.VersionFlag `short:"v" help:"Show version"`
	Serve   ServeCmd         `cmd:"" help:"Run the word royale server"`
	Words   WordsCmd         `cmd:"" help:"Inspect the word lists"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("wordroyale"),
		kong.Description("Real-time multiplayer word-guessing server"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
