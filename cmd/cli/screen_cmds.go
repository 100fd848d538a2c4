package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vidgrab/vidgrab/internal/app"
	"github.com/vidgrab/vidgrab/internal/domain"
	"github.com/vidgrab/vidgrab/internal/infrastructure"
	"github.com/vidgrab/vidgrab/internal/tui"
)

var platformsCmd = &cobra.Command{
	Use:   "platforms",
	Short: "List supported platforms",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "PLATFORM\tNAME\tSTATUS\tDESCRIPTION")
		for _, spec := range domain.Platforms() {
			status := "active"
			if !spec.Active {
				status = "coming soon"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", spec.Platform, spec.Name, status, spec.Description)
		}
		return w.Flush()
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate [platform] [url]",
	Short: "Check whether a link is accepted by a platform",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		spec, err := domain.ParsePlatform(args[0])
		if err != nil {
			return err
		}
		if err := spec.Validate(args[1]); err != nil {
			return err
		}
		fmt.Println("valid")
		return nil
	},
}

var previewCmd = &cobra.Command{
	Use:   "preview [url]",
	Short: "Show the preview of a video link",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		platform, _ := cmd.Flags().GetString("platform")
		return withApp(func(ctx context.Context, application *app.Application) error {
			screen, err := resolveScreen(application.Shell, platform, args[0])
			if err != nil {
				return err
			}
			if err := screen.Preview(ctx, args[0]); err != nil {
				return errors.New(domain.UserMessage(err))
			}
			printPreview(screen.Snapshot().Preview)
			return nil
		})
	},
}

var downloadCmd = &cobra.Command{
	Use:   "download [url]",
	Short: "Download a video, following progress until it finishes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		platform, _ := cmd.Flags().GetString("platform")
		skipPreview, _ := cmd.Flags().GetBool("no-preview")
		return withApp(func(ctx context.Context, application *app.Application) error {
			screen, err := resolveScreen(application.Shell, platform, args[0])
			if err != nil {
				return err
			}

			if !skipPreview {
				if err := screen.Preview(ctx, args[0]); err != nil {
					fmt.Fprintf(os.Stderr, "Preview unavailable: %s\n", domain.UserMessage(err))
				}
			}
			screen.SetURL(args[0])
			return followDownload(ctx, screen)
		})
	},
}

var pasteCmd = &cobra.Command{
	Use:   "paste",
	Short: "Preview the link on the clipboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		platform, _ := cmd.Flags().GetString("platform")
		return withApp(func(ctx context.Context, application *app.Application) error {
			var screen *app.Screen
			var err error
			if platform != "" {
				screen, err = application.Shell.ScreenByName(platform)
			} else {
				var text string
				text, err = infrastructure.NewSystemClipboard().ReadText()
				if err != nil {
					return err
				}
				screen, err = application.Shell.ScreenForURL(text)
			}
			if err != nil {
				return explainNavigation(application.Shell, err)
			}

			if err := screen.PasteAndPreview(ctx); err != nil {
				return errors.New(domain.UserMessage(err))
			}
			snap := screen.Snapshot()
			fmt.Printf("Link: %s\n", snap.URL)
			printPreview(snap.Preview)
			return nil
		})
	},
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive terminal UI",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, application *app.Application) error {
			return tui.Run(ctx, application.Shell)
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{previewCmd, downloadCmd, pasteCmd} {
		c.Flags().StringP("platform", "p", "", "Platform (facebook, instagram, tiktok); detected from the link when empty")
	}
	downloadCmd.Flags().Bool("no-preview", false, "Skip the preview request; the file is named by the backend")
}

// resolveScreen picks the screen named by platform, or the one accepting raw
func resolveScreen(shell *app.Shell, platform, raw string) (*app.Screen, error) {
	var screen *app.Screen
	var err error
	if platform != "" {
		screen, err = shell.ScreenByName(platform)
	} else {
		screen, err = shell.ScreenForURL(raw)
	}
	if err != nil {
		return nil, explainNavigation(shell, err)
	}
	return screen, nil
}

func explainNavigation(shell *app.Shell, err error) error {
	if toast := shell.Toast(); toast != nil && errors.Is(err, domain.ErrPlatformUnavailable) {
		return errors.New(toast.Message)
	}
	return err
}

// followDownload starts the download and prints progress until it ends
func followDownload(ctx context.Context, screen *app.Screen) error {
	updates, unsubscribe := screen.Subscribe()
	defer unsubscribe()

	if err := screen.Download(); err != nil {
		return errors.New(domain.UserMessage(err))
	}

	lastProgress := -1
	retrying := false
	for {
		select {
		case <-ctx.Done():
			screen.Back()
			fmt.Println()
			return ctx.Err()

		case snap, ok := <-updates:
			if !ok {
				return domain.ErrScreenClosed
			}
			if snap.RetryPending && !retrying {
				fmt.Printf("\n%s (attempt %d)\n", snap.Error, snap.Attempt)
			}
			retrying = snap.RetryPending

			if snap.State == domain.StateDownloading && snap.Progress != lastProgress {
				lastProgress = snap.Progress
				fmt.Printf("\rDownloading... %3d%%", snap.Progress)
			}

			switch {
			case snap.State == domain.StateSucceeded:
				fmt.Printf("\r%s\n", snap.Success)
				if snap.FilePath != "" {
					fmt.Printf("Saved to: %s\n", snap.FilePath)
				}
				if snap.FallbackURL != "" {
					fmt.Printf("Opened: %s\n", snap.FallbackURL)
				}
				return nil
			case snap.State == domain.StateFailed && !snap.RetryPending:
				fmt.Println()
				return errors.New(snap.Error)
			}
		}
	}
}

func printPreview(p *domain.PreviewResult) {
	if p == nil {
		return
	}
	title := strings.TrimSpace(p.Title)
	if title == "" {
		title = "(untitled)"
	}
	fmt.Printf("Title:     %s\n", title)
	fmt.Printf("Video:     %s\n", truncate(p.MediaURL, 120))
	if p.ThumbnailURL != "" {
		fmt.Printf("Thumbnail: %s\n", truncate(p.ThumbnailURL, 120))
	}
	if p.Embed != nil && p.Embed.CiteURL != "" {
		fmt.Printf("Embed:     %s\n", p.Embed.CiteURL)
	}
}
