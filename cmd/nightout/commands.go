package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/vncsmyrnk/nightout/internal/adapters/capture/file"
	"github.com/vncsmyrnk/nightout/internal/core/domain"
	"github.com/vncsmyrnk/nightout/internal/core/ports"
)

var errUsage = errors.New("invalid usage, run nightout -h")

type cli struct {
	out         io.Writer
	browse      ports.BrowseService
	interaction ports.InteractionService
}

func (c *cli) run(ctx context.Context, args []string) error {
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "list":
		return c.list(ctx)
	case "show":
		id, err := venueArg(rest, 1)
		if err != nil {
			return err
		}
		return c.show(ctx, id)
	case "vote":
		id, err := venueArg(rest, 2)
		if err != nil {
			return err
		}
		choice, err := parseChoice(rest[1])
		if err != nil {
			return err
		}
		venue, err := c.interaction.CastVote(ctx, id, choice)
		return c.printMutation(venue, err, "vote recorded")
	case "checkin":
		id, err := venueArg(rest, 1)
		if err != nil {
			return err
		}
		venue, err := c.interaction.CheckIn(ctx, id)
		return c.printMutation(venue, err, "check-in recorded")
	case "cover":
		id, err := venueArg(rest, 2)
		if err != nil {
			return err
		}
		amount, err := parseCover(rest[1])
		if err != nil {
			return err
		}
		venue, err := c.interaction.SetCover(ctx, id, amount)
		return c.printMutation(venue, err, "cover updated")
	case "photo":
		id, err := venueArg(rest, 2)
		if err != nil {
			return err
		}
		photos, err := c.interaction.UploadPhoto(ctx, id, file.NewCapturer(rest[1]))
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "photo uploaded, gallery now has %d photo(s)\n", len(photos))
		c.printPhotos(photos)
		return nil
	default:
		return errUsage
	}
}

func (c *cli) list(ctx context.Context) error {
	venues, err := c.browse.Refresh(ctx)
	if err != nil {
		return err
	}
	if len(venues) == 0 {
		fmt.Fprintln(c.out, "no venues")
		return nil
	}

	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tRATING\tCOVER\tPOP")
	for _, v := range venues {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%d\n", v.ID, v.Name, v.Type, v.Rating(), formatCover(v.Cover), v.Pop)
	}
	return tw.Flush()
}

func (c *cli) show(ctx context.Context, id domain.VenueID) error {
	view, err := c.interaction.Open(ctx, id)
	if err != nil {
		return err
	}

	v := view.Venue
	fmt.Fprintf(c.out, "%s (%s)\n", v.Name, v.Type)
	fmt.Fprintf(c.out, "  rating  %d (+%d / -%d)\n", v.Rating(), v.Upvotes, v.Downvotes)
	fmt.Fprintf(c.out, "  cover   %s\n", formatCover(v.Cover))
	fmt.Fprintf(c.out, "  pop     %d\n", v.Pop)

	switch {
	case view.Record.HasVoted:
		fmt.Fprintf(c.out, "  vote    you voted %s\n", view.Record.VoteChoice)
	default:
		fmt.Fprintln(c.out, "  vote    not yet")
	}
	if view.Record.HasCheckedIn {
		fmt.Fprintln(c.out, "  here    checked in")
	} else {
		fmt.Fprintln(c.out, "  here    not checked in")
	}

	if view.PhotosErr != nil {
		fmt.Fprintln(c.out, "  photos  failed to load")
		return nil
	}
	if !view.CanUploadPhoto {
		fmt.Fprintln(c.out, "  vote to add photos")
	}
	c.printPhotos(view.Photos)
	return nil
}

// printMutation prints the confirmed venue even when the ledger write
// failed afterwards, then returns that error.
func (c *cli) printMutation(venue *domain.Venue, err error, done string) error {
	if venue == nil {
		return err
	}
	fmt.Fprintf(c.out, "%s: %s rating %d, cover %s, pop %d\n",
		done, venue.Name, venue.Rating(), formatCover(venue.Cover), venue.Pop)
	return err
}

func (c *cli) printPhotos(photos []domain.Photo) {
	for _, p := range photos {
		fmt.Fprintf(c.out, "  - %s\n", p.URL)
	}
}

func venueArg(args []string, want int) (domain.VenueID, error) {
	if len(args) != want {
		return "", errUsage
	}
	return domain.ParseVenueID(args[0])
}

func parseChoice(s string) (domain.VoteChoice, error) {
	switch strings.ToLower(s) {
	case "up", "+":
		return domain.Upvote, nil
	case "down", "-":
		return domain.Downvote, nil
	}
	return domain.ParseVoteChoice(strings.ToLower(s))
}

func parseCover(s string) (*float64, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "$")
	if s == "" || strings.EqualFold(s, "none") {
		return nil, nil
	}
	amount, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, domain.ErrInvalidCover
	}
	if err := domain.ValidateCover(&amount); err != nil {
		return nil, err
	}
	return &amount, nil
}

func formatCover(cover *float64) string {
	if cover == nil {
		return "-"
	}
	return "$" + strconv.FormatFloat(*cover, 'f', -1, 64)
}

// describe turns an error into the message shown to the user.
func describe(err error) string {
	switch {
	case errors.Is(err, domain.ErrAlreadyActed):
		return "You already did that for this venue."
	case errors.Is(err, domain.ErrVoteRequired):
		return "Vote on this venue before adding photos."
	case errors.Is(err, domain.ErrCaptureDenied):
		return "No photo was selected."
	case errors.Is(err, domain.ErrVenueNotFound):
		return "That venue does not exist."
	case errors.Is(err, domain.ErrActionInFlight):
		return "That action is already in progress."
	case errors.Is(err, domain.ErrLedgerUnavailable):
		return "Could not read or save what this device has done: " + err.Error()
	case errors.Is(err, domain.ErrNetwork):
		return "Could not reach the venue service. Check your connection and try again."
	case errors.Is(err, domain.ErrServer):
		return "The venue service returned an error: " + err.Error()
	default:
		return err.Error()
	}
}
