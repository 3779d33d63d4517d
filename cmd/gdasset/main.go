package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	gderr "github.com/gdasset/gdasset/internal/errors"
	"github.com/gdasset/gdasset/internal/version"
)

var CLI struct {
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `help:"Print version information and quit"`

	Upload  UploadCmd  `cmd:"" help:"Submit a new asset to the library"`
	Update  UpdateCmd  `cmd:"" help:"Update an existing asset, folding in any pending edits"`
	Preview PreviewCmd `cmd:"" help:"Render the asset description and previews without submitting anything"`
	Peek    PeekCmd    `cmd:"" help:"Print the current library listing of an asset"`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("gdasset"),
		kong.Description("Upload or update an asset in the Godot Asset Library based on the project repository."),
		kong.UsageOnError(),
		kong.Vars{"version": version.Version})

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	if err := ctx.Run(); err != nil {
		slog.Error("Command failed", "error", err, "category", gderr.GetCategory(err))
		if gderr.IsUserError(err) {
			os.Exit(1)
		}
		os.Exit(2)
	}
}
