package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/summon-almanac/internal/cli"
	"github.com/Veraticus/summon-almanac/internal/model"
	"github.com/Veraticus/summon-almanac/internal/service"
)

// imageSource resolves wiki file names and downloads them.
type imageSource interface {
	service.FileResolver
	Download(ctx context.Context, fileURL string, w io.Writer) error
}

// snapshotImages resolves through a snapshot but downloads from the API client.
type snapshotImages struct {
	service.FileResolver
	downloader interface {
		Download(ctx context.Context, fileURL string, w io.Writer) error
	}
}

func (s snapshotImages) Download(ctx context.Context, fileURL string, w io.Writer) error {
	return s.downloader.Download(ctx, fileURL, w)
}

func imagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "images",
		Short: "Download event banner images",
		Long: `Download the header image of every stored event that is not already in
the image directory.`,
		RunE: runImages,
	}

	cmd.Flags().StringSliceP("region", "r", []string{"JP", "NA"}, "Regions to download images for")
	cmd.Flags().String("dir", "./images", "Image directory")

	return cmd
}

func runImages(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	regionFlags, _ := cmd.Flags().GetStringSlice("region")
	dir, _ := cmd.Flags().GetString("dir")

	regions, err := parseRegions(regionFlags)
	if err != nil {
		return err
	}

	client, source, wikiCfg, err := openWiki(slog.Default())
	if err != nil {
		return err
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("Failed to close storage", "error", closeErr)
		}
	}()

	var events []*model.Event
	for _, region := range regions {
		regionEvents, err := store.GetEvents(ctx, region)
		if err != nil {
			return err
		}
		events = append(events, regionEvents...)
	}

	missing, err := missingImages(dir, events)
	if err != nil {
		return err
	}
	if len(missing) == 0 {
		slog.Info(cli.FormatSuccess("✓ All event images are present"))
		return nil
	}

	slog.Info(cli.FormatTitle("Downloading event images"), "count", len(missing))
	images := snapshotImages{FileResolver: source, downloader: client}
	failed := downloadImages(ctx, images, dir, missing, wikiCfg.Concurrency, cli.NewProgressBar(os.Stderr))
	if failed > 0 {
		slog.Warn(cli.FormatWarning(fmt.Sprintf("%d images could not be downloaded", failed)))
	}
	return ctx.Err()
}

// missingImages lists the distinct image files referenced by events that are
// not present in dir.
func missingImages(dir string, events []*model.Event) ([]string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating image directory: %w", err)
	}

	seen := make(map[string]bool)
	var missing []string
	for _, e := range events {
		name := filepath.Base(e.ImageFile)
		if e.ImageFile == "" || seen[name] {
			continue
		}
		seen[name] = true
		_, err := os.Stat(filepath.Join(dir, name))
		if errors.Is(err, os.ErrNotExist) {
			missing = append(missing, name)
		} else if err != nil {
			return nil, err
		}
	}
	sort.Strings(missing)
	return missing, nil
}

// downloadImages fetches names into dir with up to limit downloads in flight.
// Failures are logged and counted; a partial file is never left behind.
func downloadImages(ctx context.Context, source imageSource, dir string, names []string, limit int, progress service.Progress) int {
	if limit <= 0 {
		limit = 1
	}
	if progress == nil {
		progress = service.NopProgress{}
	}

	results := make([]error, len(names))
	progress.Start(len(names), "Downloading")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, name := range names {
		g.Go(func() error {
			results[i] = downloadImage(gctx, source, filepath.Join(dir, name), name)
			progress.Advance(name)
			return nil
		})
	}
	_ = g.Wait()
	progress.Finish()

	failed := 0
	for i, err := range results {
		if err != nil {
			slog.Warn("Failed to download image", "file", names[i], "error", err)
			failed++
		}
	}
	return failed
}

func downloadImage(ctx context.Context, source imageSource, path, name string) error {
	fileURL, err := source.FileURL(ctx, name)
	if err != nil {
		return err
	}

	tmp := path + ".part"
	f, err := os.Create(tmp) // #nosec G304
	if err != nil {
		return err
	}
	if err := source.Download(ctx, fileURL, f); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
