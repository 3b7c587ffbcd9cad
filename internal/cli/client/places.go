package client

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloo-solutions/lunchpick/internal/domain"
	"github.com/cloo-solutions/lunchpick/internal/locate"
	"github.com/spf13/cobra"
)

var errNoSource = errors.New("give an address query, --here, or --lat and --lon")

// SearchCmd creates the search command
func SearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search for an address or place",
		Long: `Search for an address or place name and list the matching locations.

Address matches come first, then food and drink places whose name matches.
Use --select to pick a location and list the restaurants around it.

Examples:
  lunchpick search "여수시 웅천동"
  lunchpick search "여수시 웅천동" --select 1 --radius 500`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd)
			if err != nil {
				return err
			}
			sel, _ := cmd.Flags().GetInt("select")
			mapPath, _ := cmd.Flags().GetString("map")
			return rt.runSearch(cmd.Context(), strings.Join(args, " "), sel, mapPath)
		},
	}

	cmd.Flags().Int("select", 0, "Pick the Nth location (1-based) and list restaurants around it")
	cmd.Flags().String("map", "", "Write a PNG map of the selected area to this path")

	return cmd
}

// NearbyCmd creates the nearby command
func NearbyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nearby",
		Short: "List restaurants around a coordinate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd)
			if err != nil {
				return err
			}
			lat, _ := cmd.Flags().GetFloat64("lat")
			lon, _ := cmd.Flags().GetFloat64("lon")
			mapPath, _ := cmd.Flags().GetString("map")

			list, err := rt.svc.FindNearby(cmd.Context(), domain.Coordinate{Lat: lat, Lon: lon})
			if err != nil {
				return err
			}
			if err := rt.printRestaurants(list); err != nil {
				return err
			}
			return rt.writeMap(cmd.Context(), mapPath)
		},
	}

	cmd.Flags().Float64("lat", 0, "Latitude")
	cmd.Flags().Float64("lon", 0, "Longitude")
	cmd.Flags().String("map", "", "Write a PNG map to this path")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lon")

	return cmd
}

// LocateCmd creates the locate command
func LocateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "locate",
		Short: "List restaurants around your current location",
		Long: `List restaurants around your current location.

The position is estimated from your public IP address. Pass --lat and --lon
to use a known position instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd)
			if err != nil {
				return err
			}
			mapPath, _ := cmd.Flags().GetString("map")

			list, err := rt.locate(cmd)
			if err != nil {
				return err
			}
			if err := rt.printRestaurants(list); err != nil {
				return err
			}
			return rt.writeMap(cmd.Context(), mapPath)
		},
	}

	cmd.Flags().Float64("lat", 0, "Latitude to use instead of IP location")
	cmd.Flags().Float64("lon", 0, "Longitude to use instead of IP location")
	cmd.Flags().String("map", "", "Write a PNG map to this path")

	return cmd
}

// RecommendCmd creates the recommend command
func RecommendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recommend [query]",
		Short: "Pick random restaurants",
		Long: `Pick random restaurants around a location.

The location is the selected match of an address query, your current
location (--here), or an explicit coordinate (--lat and --lon).

--include keeps only restaurants whose category contains the term.
--exclude drops categories containing any of its comma separated terms.
When no restaurant passes the filter, the whole list is used.

Examples:
  lunchpick recommend "여수시 웅천동" --count 3
  lunchpick recommend --here --include 한식 --exclude "술집,카페"
  lunchpick recommend "여수시청" --select 2 --map lunch.png`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			var list []domain.Place
			here, _ := cmd.Flags().GetBool("here")
			switch {
			case len(args) > 0:
				sel, _ := cmd.Flags().GetInt("select")
				if sel < 1 {
					sel = 1
				}
				if _, err := rt.svc.ResolveAddress(ctx, strings.Join(args, " ")); err != nil {
					return err
				}
				if len(rt.session.Candidates()) == 0 {
					return nil
				}
				list, err = rt.svc.SelectCandidateAt(ctx, sel-1)
			case here || cmd.Flags().Changed("lat") || cmd.Flags().Changed("lon"):
				list, err = rt.locate(cmd)
			default:
				return errNoSource
			}
			if err != nil {
				return err
			}
			if len(list) == 0 {
				return nil
			}

			include, _ := cmd.Flags().GetString("include")
			exclude, _ := cmd.Flags().GetString("exclude")
			count, _ := cmd.Flags().GetInt("count")
			mapPath, _ := cmd.Flags().GetString("map")

			picked, err := rt.svc.Recommend(ctx, domain.NewFilterSpec(include, exclude), count)
			if err != nil {
				return err
			}
			if err := rt.printRestaurants(picked); err != nil {
				return err
			}
			return rt.writeMap(ctx, mapPath)
		},
	}

	cmd.Flags().Int("select", 1, "Which matching location to search around (1-based)")
	cmd.Flags().Bool("here", false, "Search around your current location")
	cmd.Flags().Float64("lat", 0, "Latitude")
	cmd.Flags().Float64("lon", 0, "Longitude")
	cmd.Flags().Int("count", 0, "How many restaurants to pick (0 = all)")
	cmd.Flags().String("include", "", "Only categories containing this term")
	cmd.Flags().String("exclude", "", "Comma separated category terms to drop")
	cmd.Flags().String("map", "", "Write a PNG map of the picks to this path")

	return cmd
}

func (rt *runtime) runSearch(ctx context.Context, query string, sel int, mapPath string) error {
	candidates, err := rt.svc.ResolveAddress(ctx, query)
	if err != nil {
		return err
	}
	if sel <= 0 {
		return rt.printCandidates(candidates)
	}
	if len(candidates) == 0 {
		return nil
	}

	list, err := rt.svc.SelectCandidateAt(ctx, sel-1)
	if err != nil {
		return err
	}
	if !rt.outputJSON {
		fmt.Fprintf(rt.out, "Around %s\n\n", candidates[sel-1].DisplayName())
	}
	if err := rt.printRestaurants(list); err != nil {
		return err
	}
	return rt.writeMap(ctx, mapPath)
}

// locate uses --lat/--lon when given, otherwise the IP based locator.
func (rt *runtime) locate(cmd *cobra.Command) ([]domain.Place, error) {
	if cmd.Flags().Changed("lat") || cmd.Flags().Changed("lon") {
		lat, _ := cmd.Flags().GetFloat64("lat")
		lon, _ := cmd.Flags().GetFloat64("lon")
		return rt.svc.LocateUserWith(cmd.Context(), locate.Static(domain.Coordinate{Lat: lat, Lon: lon}))
	}
	return rt.svc.LocateUser(cmd.Context())
}
