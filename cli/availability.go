package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/senpow/italy-restaurant-booking/booking"
	"github.com/spf13/cobra"
)

type availabilityOptions struct {
	Date      string
	PartySize int
}

// NewAvailabilityCommand creates the availability command.
func NewAvailabilityCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &availabilityOptions{}

	cmd := &cobra.Command{
		Use:   "availability",
		Short: "Print the slot sheet of a day",
		Long: `Print every time slot of a day with the table a party would get.

Reads the configured database, nothing is booked.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			svc := a.service(nil)
			defer svc.Close()

			return runAvailability(cmd.Context(), cmd.OutOrStdout(), svc, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Date, "date", "d", "", "day as YYYY-MM-DD (default today)")
	cmd.Flags().IntVarP(&opts.PartySize, "party-size", "n", 2, "number of guests")

	return cmd
}

func runAvailability(ctx context.Context, w io.Writer, svc *booking.Service, opts *availabilityOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	date := opts.Date
	if date == "" {
		date = svc.Today()
	}

	overview, err := svc.SlotOverview(ctx, date, opts.PartySize)
	if err != nil {
		return err
	}
	return writeSlotSheet(w, date, opts.PartySize, overview)
}

// writeSlotSheet prints one fixed-width line per slot.
func writeSlotSheet(w io.Writer, date string, partySize int, overview []booking.SlotAvailability) error {
	if _, err := fmt.Fprintf(w, "Availability on %s for %d guest(s)\n\n", date, partySize); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%-6s %-7s %-6s %s\n", "TIME", "PERIOD", "FREE", "TABLE"); err != nil {
		return err
	}

	free := 0
	for _, slot := range overview {
		status, table := "no", "-"
		if slot.Available {
			status, table = "yes", strconv.Itoa(slot.Table)
			free++
		}
		if _, err := fmt.Fprintf(w, "%-6s %-7s %-6s %s\n", slot.Time, slot.Period, status, table); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "\n%d of %d slots available\n", free, len(overview))
	return err
}
