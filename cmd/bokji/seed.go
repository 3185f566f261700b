package main

import (
	"fmt"
	"time"

	"github.com/bokjirang/policybot/internal/core"
	"github.com/spf13/cobra"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage member accounts",
}

var userAddCmd = &cobra.Command{
	Use:          "add <username> <email>",
	Short:        "Create a member",
	Args:         cobra.ExactArgs(2),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.db.Close()

		u, err := a.users.Create(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created user %s (id %d)\n", u.Username, u.ID)
		return nil
	},
}

var bookmarkFlags struct {
	user     string
	title    string
	link     string
	deadline string
	notify   bool
}

var bookmarkCmd = &cobra.Command{
	Use:   "bookmark",
	Short: "Manage saved policies",
}

var bookmarkAddCmd = &cobra.Command{
	Use:          "add",
	Short:        "Save a policy with a deadline for reminders",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.db.Close()

		u, err := a.users.ByUsername(ctx, bookmarkFlags.user)
		if err != nil {
			return fmt.Errorf("unknown user %q: %w", bookmarkFlags.user, err)
		}

		b := core.Bookmark{
			UserID:              u.ID,
			Title:               bookmarkFlags.title,
			Link:                bookmarkFlags.link,
			NotificationEnabled: bookmarkFlags.notify,
		}
		if bookmarkFlags.deadline != "" {
			d, err := time.ParseInLocation(time.DateOnly, bookmarkFlags.deadline, a.cfg.Location())
			if err != nil {
				return fmt.Errorf("deadline must be YYYY-MM-DD: %w", err)
			}
			b.Deadline = &d
		}

		saved, err := a.bookmarks.Add(ctx, b)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "saved bookmark %d for %s\n", saved.ID, u.Username)
		return nil
	},
}

func init() {
	userCmd.AddCommand(userAddCmd)
	rootCmd.AddCommand(userCmd)

	f := bookmarkAddCmd.Flags()
	f.StringVar(&bookmarkFlags.user, "user", "", "member username")
	f.StringVar(&bookmarkFlags.title, "title", "", "policy title")
	f.StringVar(&bookmarkFlags.link, "link", "", "application page")
	f.StringVar(&bookmarkFlags.deadline, "deadline", "", "application deadline, YYYY-MM-DD")
	f.BoolVar(&bookmarkFlags.notify, "notify", true, "send the D-7 reminder")
	_ = bookmarkAddCmd.MarkFlagRequired("user")
	_ = bookmarkAddCmd.MarkFlagRequired("title")

	bookmarkCmd.AddCommand(bookmarkAddCmd)
	rootCmd.AddCommand(bookmarkCmd)
}
