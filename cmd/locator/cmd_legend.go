package main

import (
	"fmt"
	"saferoom-locator/internal/adapters/ui"
	"saferoom-locator/internal/domain"
	"saferoom-locator/internal/services"

	"github.com/spf13/cobra"
)

var legendCmd = &cobra.Command{
	Use:   "legend",
	Short: "Print the map color legend",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), ui.Legend())
		return err
	},
}

var (
	nearLat float64
	nearLng float64
)

// sheltersCmd runs one fetch against the configured source and prints the
// markers the map would show for the given position.
var sheltersCmd = &cobra.Command{
	Use:   "shelters",
	Short: "Fetch shelters once and print them as map markers",
	RunE: func(cmd *cobra.Command, args []string) error {
		ref := domain.Coordinate{Lat: nearLat, Lng: nearLng}
		if err := ref.Validate(); err != nil {
			return err
		}

		source, conn, err := newShelterSource(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		if conn != nil {
			defer conn.Close()
		}

		fetcher := services.NewShelterFetcher(source, millis(cfg.Backend.TimeoutMS), logger)
		list, err := fetcher.Fetch(cmd.Context(), ref)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprint(out, ui.MarkerTable(services.BuildMarkers(&ref, list), list))
		if n, ok := services.NearestAvailable(ref, list); ok {
			fmt.Fprintf(out, "Nearest open shelter: %s (%.0f m)\n", n.Shelter.Title, n.DistanceMeters)
		}
		fmt.Fprintln(out, ui.Legend())
		return nil
	},
}

func init() {
	sheltersCmd.Flags().Float64Var(&nearLat, "lat", 0, "reference latitude")
	sheltersCmd.Flags().Float64Var(&nearLng, "lng", 0, "reference longitude")
}
