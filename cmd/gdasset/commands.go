package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/gdasset/gdasset/internal/config"
	gderr "github.com/gdasset/gdasset/internal/errors"
	"github.com/gdasset/gdasset/internal/library"
)

// UploadCmd submits a brand-new asset.
type UploadCmd struct {
	sharedFlags
	authFlags
	submitFlags
}

func (cmd *UploadCmd) Run() error {
	project, err := resolveProject(cmd.sharedFlags)
	if err != nil {
		return err
	}
	if err := project.requireFields(); err != nil {
		return err
	}
	description, previews, err := project.describe()
	if err != nil {
		return err
	}
	payload, err := project.payload(description, previews)
	if err != nil {
		return err
	}

	if cmd.DryRun {
		return printJSON(os.Stdout, payload)
	}
	client := project.client(cmd.authFlags)
	if err := client.Submit(context.Background(), payload, !cmd.JSONAPI); err != nil {
		return err
	}
	slog.Info("Asset submitted", "title", project.cfg.Title)
	if cmd.Save {
		return project.save()
	}
	return nil
}

// UpdateCmd edits an existing asset. The current listing is fetched first so
// unset fields keep their published values, and the submission is skipped
// when it would change nothing, including when an identical edit is already
// pending review.
type UpdateCmd struct {
	ID string `arg:"" optional:"" help:"Asset id or asset URL; defaults to the one remembered in gdasset.toml"`

	sharedFlags
	authFlags
	submitFlags
}

func (cmd *UpdateCmd) Run() error {
	project, err := resolveProject(cmd.sharedFlags)
	if err != nil {
		return err
	}
	assetID := cmd.ID
	if assetID == "" {
		assetID = project.cfg.AssetID
	}
	if assetID == "" {
		return gderr.New(gderr.CategoryValidation, "no asset id given and none remembered in %s", config.FileName)
	}

	client := project.client(cmd.authFlags)
	ctx := context.Background()

	old, err := client.GetAsset(ctx, assetID)
	if err != nil {
		return err
	}
	project.applyListing(old)

	description, previews, err := project.describe()
	if err != nil {
		return err
	}
	payload, err := project.payload(description, previews)
	if err != nil {
		return err
	}

	merged := library.MergePayload(payload, old)
	merged["asset_id"] = assetID

	if library.PayloadsEquivalent(payload, old) {
		slog.Info("Listing is already up to date, nothing to submit", "asset", assetID)
		return nil
	}
	pending, err := client.ListPendingEdits(ctx, assetID)
	if err != nil {
		return err
	}
	for _, edit := range pending {
		if library.SameAsPending(payload, old, edit) {
			slog.Info("An identical edit is already pending review, nothing to submit", "asset", assetID)
			return nil
		}
	}

	if cmd.DryRun {
		return printJSON(os.Stdout, merged)
	}
	if err := client.Submit(ctx, merged, !cmd.JSONAPI); err != nil {
		return err
	}
	slog.Info("Asset edit submitted", "asset", assetID)
	if cmd.Save {
		project.cfg.AssetID = assetID
		return project.save()
	}
	return nil
}

// PreviewCmd renders the description locally, with no network access.
type PreviewCmd struct {
	sharedFlags
}

func (cmd *PreviewCmd) Run() error {
	project, err := resolveProject(cmd.sharedFlags)
	if err != nil {
		return err
	}
	description, previews, err := project.describe()
	if err != nil {
		return err
	}
	fmt.Print(description)
	if len(previews) > 0 {
		fmt.Println()
		for _, preview := range previews {
			fmt.Printf("%s: %s\n", preview.Type, preview.Link)
		}
	}
	return nil
}

// PeekCmd dumps the current listing of an asset.
type PeekCmd struct {
	ID string `arg:"" help:"Asset id or asset URL"`

	authFlags
}

func (cmd *PeekCmd) Run() error {
	client := library.New(library.Options{Token: cmd.Token, Username: cmd.Username, Password: cmd.Password})
	payload, err := client.GetAsset(context.Background(), cmd.ID)
	if err != nil {
		return err
	}
	return printJSON(os.Stdout, payload)
}

func printJSON(w *os.File, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
