package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cloo-solutions/lunchpick/internal/domain"
	"github.com/cloo-solutions/lunchpick/internal/mapview"
)

type placeOutput struct {
	domain.Place
	Display string `json:"display"`
}

func printJSON(out io.Writer, places []domain.Place) error {
	rows := make([]placeOutput, 0, len(places))
	for _, p := range places {
		rows = append(rows, placeOutput{Place: p, Display: p.DisplayName()})
	}
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Fprintln(out, string(data))
	return nil
}

// printCandidates lists candidates numbered from 1 for --select.
func (rt *runtime) printCandidates(places []domain.Place) error {
	if rt.outputJSON {
		return printJSON(rt.out, places)
	}
	if len(places) == 0 {
		return nil
	}

	fmt.Fprintf(rt.out, "Found %d locations:\n\n", len(places))
	for i, p := range places {
		fmt.Fprintf(rt.out, "%d. %s\n", i+1, p.DisplayName())
	}
	return nil
}

func (rt *runtime) printRestaurants(places []domain.Place) error {
	if rt.outputJSON {
		return printJSON(rt.out, places)
	}
	if len(places) == 0 {
		return nil
	}

	fmt.Fprintf(rt.out, "Found %d restaurants:\n\n", len(places))
	for i, p := range places {
		fmt.Fprintf(rt.out, "%d. %s\n", i+1, p.Name)
		if p.CategoryLabel != "" {
			fmt.Fprintf(rt.out, "   %s\n", p.CategoryLabel)
		}

		details := []string{p.FullAddress}
		if p.Phone != "" {
			details = append(details, p.Phone)
		}
		if p.DistanceMeters > 0 {
			details = append(details, fmt.Sprintf("%dm", p.DistanceMeters))
		}
		fmt.Fprintf(rt.out, "   %s\n", strings.Join(details, " | "))

		if i < len(places)-1 {
			fmt.Fprintln(rt.out, strings.Repeat("-", 40))
		}
	}
	return nil
}

// writeMap renders the session's current view to a PNG file.
func (rt *runtime) writeMap(ctx context.Context, path string) error {
	if path == "" {
		return nil
	}

	engine, err := mapview.NewRasterLoader(mapview.RasterOptions{}).Load(ctx)
	if err != nil {
		return err
	}
	frame, err := mapview.Render(engine, rt.session.View())
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, frame.Body, 0644); err != nil {
		return fmt.Errorf("failed to write map: %w", err)
	}
	fmt.Fprintf(rt.out, "\nMap written to %s\n", path)
	return nil
}
