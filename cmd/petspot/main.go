package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/petspot/petspot-backend/internal/announcement/client"
	"github.com/petspot/petspot-backend/internal/reportflow"
	"github.com/petspot/petspot-backend/pkg/config"
	"github.com/petspot/petspot-backend/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	apiURL  string
	verbose bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "petspot: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "petspot",
		Short: "PetSpot lost & found client",
		Long: `PetSpot reports missing pets and browses announcements against a running
announcement service.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&apiURL, "api", "", "Announcement API base URL (defaults to PETSPOT_CLIENT_API_BASE_URL)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log requests to stderr")
	cmd.AddCommand(newReportCmd(), newListCmd())
	return cmd
}

func newAPIClient() (*client.Client, error) {
	cfg, err := config.Load("petspot")
	if err != nil {
		return nil, err
	}
	if apiURL != "" {
		cfg.Client.APIBaseURL = apiURL
	}
	return client.New(&cfg.Client, client.WithLogger(cliLogger())), nil
}

func cliLogger() *logger.Logger {
	if !verbose {
		return logger.Nop()
	}
	return logger.NewWithWriter("petspot", os.Stderr)
}

func newReportCmd() *cobra.Command {
	var (
		answersFile  string
		copyPassword bool
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Report a missing pet from an answers file",
		Long: `Report walks the Report Missing Pet flow step by step using the answers in a
YAML file and prints the management password of the created announcement.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			answers, err := loadAnswers(answersFile)
			if err != nil {
				return err
			}
			api, err := newAPIClient()
			if err != nil {
				return err
			}
			return report(cmd.Context(), api, answers, copyPassword, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&answersFile, "file", "f", "answers.yaml", "YAML answers file")
	cmd.Flags().BoolVar(&copyPassword, "copy", false, "Copy the management password to the clipboard")
	return cmd
}

func report(ctx context.Context, api reportflow.AnnouncementService, answers *Answers, copyPassword bool, out io.Writer) error {
	var geo staticGeolocation
	if answers.Location != nil {
		geo.coords = &reportflow.Coordinates{Latitude: answers.Location.Latitude, Longitude: answers.Location.Longitude}
	}

	c, err := reportflow.NewController(reportflow.Dependencies{
		Service:       api,
		Geolocation:   geo,
		PhotoMetadata: fileMetadata{},
		Clipboard:     systemClipboard{},
		Logger:        cliLogger(),
	})
	if err != nil {
		return err
	}
	defer c.Close()

	result, err := runReport(ctx, c, answers, copyPassword, out)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "announcement id:     %s\n", result.AnnouncementID)
	fmt.Fprintf(out, "management password: %s\n", result.ManagementPassword)
	return nil
}

func newListCmd() *cobra.Command {
	var lat, lng, rangeKm float64
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List announcements, optionally near a point",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := newAPIClient()
			if err != nil {
				return err
			}

			var filter *reportflow.LocationFilter
			if cmd.Flags().Changed("lat") || cmd.Flags().Changed("lng") {
				if !cmd.Flags().Changed("lat") || !cmd.Flags().Changed("lng") {
					return fmt.Errorf("--lat and --lng must be given together")
				}
				filter = &reportflow.LocationFilter{Latitude: lat, Longitude: lng, RangeKm: rangeKm}
			}

			announcements, err := api.GetAnnouncements(cmd.Context(), filter)
			if err != nil {
				return err
			}
			return printAnnouncements(cmd.OutOrStdout(), announcements)
		},
	}
	cmd.Flags().Float64Var(&lat, "lat", 0, "Latitude of the search centre")
	cmd.Flags().Float64Var(&lng, "lng", 0, "Longitude of the search centre")
	cmd.Flags().Float64Var(&rangeKm, "range", 0, "Search radius in kilometres (server default when 0)")
	return cmd
}

func printAnnouncements(out io.Writer, announcements []reportflow.Announcement) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tSPECIES\tBREED\tLAST SEEN\tNAME")
	for _, a := range announcements {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", a.ID, a.Status, a.Species, a.Breed, a.LastSeenDate, a.PetName)
	}
	return w.Flush()
}
