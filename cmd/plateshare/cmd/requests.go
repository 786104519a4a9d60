package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/templui/plateshare/internal/model"
	"github.com/templui/plateshare/internal/service"
)

func RequestsCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "requests <food-id>",
		Short: "List the requests made for a food",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, requests, err := env.services()
			if err != nil {
				return err
			}

			list, err := requests.ForFood(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to load requests: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(list) == 0 {
				fmt.Fprintln(out, "No requests yet.")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tEMAIL\tCONTACT\tPICKUP\tSTATUS")
			for i := range list {
				r := &list[i]
				status := r.Status
				if r.IsPending() {
					status = model.RequestStatusPending
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", r.ID, r.UserName, r.UserEmail, r.Contact, r.Location, status)
			}
			return w.Flush()
		},
	}
}

func AcceptCmd(env *Env) *cobra.Command {
	return decisionCmd(env, "accept", "Accept a request and mark its food as donated",
		func(s *service.RequestService) decideFunc { return s.Accept })
}

func RejectCmd(env *Env) *cobra.Command {
	return decisionCmd(env, "reject", "Reject a pending request",
		func(s *service.RequestService) decideFunc { return s.Reject })
}

type decideFunc = func(ctx context.Context, user *model.User, foodID, requestID string) error

func decisionCmd(env *Env, verb, short string, pick func(*service.RequestService) decideFunc) *cobra.Command {
	var as string

	c := &cobra.Command{
		Use:   verb + " <food-id> <request-id>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, requests, err := env.services()
			if err != nil {
				return err
			}

			// The service checks that this email donated the food.
			donor := &model.User{ID: as, Email: strings.TrimSpace(as)}
			err = pick(requests)(cmd.Context(), donor, args[0], args[1])

			var cascade *service.CascadeError
			if errors.As(err, &cascade) {
				fmt.Fprintln(cmd.OutOrStdout(), "Request accepted, but the food is not marked as donated yet. Run accept again to finish.")
				return err
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Request %s %sed.\n", args[1], strings.TrimSuffix(verb, "e"))
			return nil
		},
	}

	c.Flags().StringVar(&as, "as", "", "donor email to act as")
	_ = c.MarkFlagRequired("as")
	return c
}
