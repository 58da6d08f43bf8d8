package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/conneroisu/coachsite/internal/config"
	"github.com/conneroisu/coachsite/internal/inbox"
	"github.com/spf13/cobra"
)

var inboxCmd = &cobra.Command{
	Use:   "inbox",
	Short: "Inspect recorded contact enquiries",
	Long: `Read the enquiry log kept at contact.inbox_path. Every enquiry the
contact endpoint accepted is recorded there with its delivery status.

Examples:
  coachsite inbox list                  # All enquiries, newest first
  coachsite inbox list --status failed  # Only enquiries that were not delivered
  coachsite inbox show 01HV...          # One enquiry in full`,
}

var inboxListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded enquiries, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withInbox(func(ctx context.Context, store *inbox.Store) error {
			return listEnquiries(ctx, cmd.OutOrStdout(), store, inbox.Status(inboxStatus), inboxFormat)
		})
	},
}

var inboxShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one enquiry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withInbox(func(ctx context.Context, store *inbox.Store) error {
			return showEnquiry(ctx, cmd.OutOrStdout(), store, args[0], inboxFormat)
		})
	},
}

var (
	inboxStatus string
	inboxFormat string
)

func init() {
	rootCmd.AddCommand(inboxCmd)
	inboxCmd.AddCommand(inboxListCmd, inboxShowCmd)

	inboxCmd.PersistentFlags().StringVarP(&inboxFormat, "format", "f", "table", "Output format (table, json)")
	inboxListCmd.Flags().StringVarP(&inboxStatus, "status", "s", "", "Only enquiries with this status (pending, sent, failed)")
}

func withInbox(fn func(ctx context.Context, store *inbox.Store) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Contact.InboxPath == "" {
		return fmt.Errorf("the enquiry inbox is disabled (contact.inbox_path is empty)")
	}
	store, err := inbox.Open(cfg.Contact.InboxPath)
	if err != nil {
		return err
	}
	defer store.Close()

	return fn(context.Background(), store)
}

func listEnquiries(ctx context.Context, w io.Writer, store *inbox.Store, status inbox.Status, format string) error {
	switch status {
	case "", inbox.StatusPending, inbox.StatusSent, inbox.StatusFailed:
	default:
		return fmt.Errorf("unknown status %q (pending, sent, failed)", status)
	}
	if err := checkInboxFormat(format); err != nil {
		return err
	}

	entries, err := store.List(ctx, status)
	if err != nil {
		return err
	}
	if format == "json" {
		return encode(w, format, entries)
	}
	if len(entries) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No enquiries"))
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tRECEIVED\tNAME\tEMAIL\tSTATUS")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			e.ID, e.ReceivedAt.Local().Format(time.DateTime), e.Submission.Name, e.Submission.Email, e.Status)
	}
	return tw.Flush()
}

func showEnquiry(ctx context.Context, w io.Writer, store *inbox.Store, id, format string) error {
	if err := checkInboxFormat(format); err != nil {
		return err
	}
	entry, err := store.Get(ctx, id)
	if err != nil {
		return err
	}
	if format == "json" {
		return encode(w, format, entry)
	}

	fmt.Fprintln(w, titleStyle.Render("Enquiry "+entry.ID))
	fmt.Fprintf(w, "Status:   %s\n", entry.Status)
	if entry.Error != "" {
		fmt.Fprintf(w, "Error:    %s\n", failStyle.Render(entry.Error))
	}
	fmt.Fprintf(w, "Received: %s\n", entry.ReceivedAt.Local().Format(time.DateTime))
	fmt.Fprintf(w, "Updated:  %s\n\n", entry.UpdatedAt.Local().Format(time.DateTime))
	fmt.Fprint(w, entry.Submission.Body())
	return nil
}

func checkInboxFormat(format string) error {
	if format != "table" && format != "json" {
		return fmt.Errorf("unknown format %q (table, json)", format)
	}
	return nil
}
