package main

import (
	"context"

	"github.com/alecthomas/kong"
	"github.com/wolfeidau/pacsgate/cmd/cli/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Configure commands.ConfigureCmd `cmd:"" help:"Store the server URL and token"`
		Whoami    commands.WhoamiCmd    `cmd:"" help:"Show the signed in user"`
		Units     commands.UnitsCmd     `cmd:"" help:"List units"`
		Studies   commands.StudiesCmd   `cmd:"" help:"List cached studies"`
		PacsQuery commands.PacsQueryCmd `cmd:"" name:"pacs-query" help:"Query a unit's PACS (C-FIND)"`
		PacsFetch commands.PacsFetchCmd `cmd:"" name:"pacs-fetch" help:"Retrieve a study from a unit's PACS (C-MOVE)"`
		Config    string                `help:"Config file path" type:"path" env:"PACSCTL_CONFIG"`
		Debug     bool                  `help:"Enable debug mode."`
		Version   kong.VersionFlag
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Name("pacsctl"),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Version: version, ConfigPath: cli.Config})
	cmd.FatalIfErrorf(err)
}
