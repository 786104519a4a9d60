package cmd

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/templui/plateshare/internal/api"
	"github.com/templui/plateshare/internal/listing"
	"github.com/templui/plateshare/internal/model"
)

func FoodsCmd(env *Env) *cobra.Command {
	var search, location, status, sort string
	var page int

	c := &cobra.Command{
		Use:   "foods",
		Short: "List foods with the same filters as the foods page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			foods, _, err := env.services()
			if err != nil {
				return err
			}

			// Parse through the query string so flags get the same
			// normalization as the web page.
			params := listing.ParseParams(url.Values{
				"search":   {search},
				"location": {location},
				"status":   {status},
				"sort":     {sort},
				"page":     {strconv.Itoa(page)},
			})

			result, err := foods.Browse(cmd.Context(), params)
			if err != nil {
				return fmt.Errorf("failed to load foods: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(result.Items) == 0 {
				fmt.Fprintln(out, "No foods found.")
				return nil
			}
			printFoods(out, result.Items)
			fmt.Fprintf(out, "\npage %d of %d, %d matching\n", result.Page, result.PageCount, result.MatchCount)
			return nil
		},
	}

	c.Flags().StringVarP(&search, "search", "s", "", "match name or description")
	c.Flags().StringVarP(&location, "location", "l", "", "match pickup location")
	c.Flags().StringVar(&status, "status", "", "available or donated")
	c.Flags().StringVar(&sort, "sort", listing.SortNewest, "newest, quantity or expiry")
	c.Flags().IntVarP(&page, "page", "p", 1, "page number")
	return c
}

func FoodCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "food <id>",
		Short: "Show one food",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			foods, _, err := env.services()
			if err != nil {
				return err
			}

			food, err := foods.Food(cmd.Context(), args[0])
			if errors.Is(err, api.ErrNotFound) {
				return fmt.Errorf("food %s not found", args[0])
			}
			if err != nil {
				return fmt.Errorf("failed to load food: %w", err)
			}

			out := cmd.OutOrStdout()
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "ID\t%s\n", food.ID)
			fmt.Fprintf(w, "Name\t%s\n", food.Name)
			fmt.Fprintf(w, "Status\t%s\n", foodStatus(food))
			fmt.Fprintf(w, "Quantity\t%s\n", food.Quantity)
			fmt.Fprintf(w, "Location\t%s\n", food.Location)
			fmt.Fprintf(w, "Expires\t%s\n", food.ExpireDate)
			fmt.Fprintf(w, "Donor\t%s <%s>\n", food.Donor, food.DonorEmail)
			fmt.Fprintf(w, "Image\t%s\n", food.Image)
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "\n%s\n", food.Description)
			return nil
		},
	}
}

func StatsCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Count foods by status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			foods, _, err := env.services()
			if err != nil {
				return err
			}

			stats, err := foods.Stats(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load stats: %w", err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "Total\t%d\n", stats.Total)
			fmt.Fprintf(w, "Available\t%d\n", stats.Available)
			fmt.Fprintf(w, "Donated\t%d\n", stats.Donated)
			return w.Flush()
		},
	}
}

func printFoods(out io.Writer, foods []model.FoodListing) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tQUANTITY\tLOCATION\tEXPIRES\tSTATUS")
	for i := range foods {
		f := &foods[i]
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", f.ID, f.Name, f.Quantity, f.Location, f.ExpireDate, foodStatus(f))
	}
	_ = w.Flush()
}

func foodStatus(f *model.FoodListing) string {
	if f.IsAvailable() {
		return model.FoodStatusAvailable
	}
	return model.FoodStatusDonated
}
