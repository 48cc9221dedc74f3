package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/civica-dev/civica/internal/archive"
	"github.com/civica-dev/civica/internal/model"
)

// NewCmdInbox creates the inbox command group over the local notice archive.
func NewCmdInbox(opts *Options) *cobra.Command {
	var unreadOnly bool

	cmd := &cobra.Command{
		Use:   "inbox",
		Short: "Show archived notices",
		Long: `List the notices this device has received, newest first. The archive
is local: it fills while 'civica watch' is running and survives restarts.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInbox(opts, unreadOnly)
		},
	}

	cmd.Flags().BoolVarP(&unreadOnly, "unread", "u", false, "Show only unread notices")
	addCommonFlags(cmd, opts)

	cmd.AddCommand(newCmdInboxRead())
	cmd.AddCommand(newCmdInboxReadAll())
	cmd.AddCommand(newCmdInboxClear())
	return cmd
}

func runInbox(opts *Options, unreadOnly bool) error {
	cleanup, err := setupRuntime(opts, false)
	if err != nil {
		return err
	}
	defer cleanup()

	e, err := buildEnv()
	if err != nil {
		return err
	}

	store, err := archive.NewStore()
	if err != nil {
		return err
	}

	notices := store.Notices()
	if unreadOnly {
		filtered := make([]model.Notice, 0, len(notices))
		for _, n := range notices {
			if !n.Read {
				filtered = append(filtered, n)
			}
		}
		notices = filtered
	}

	if len(notices) == 0 {
		fmt.Println("No notices.")
		return nil
	}

	if err := e.formatter(opts).Notices(notices, os.Stdout); err != nil {
		return err
	}

	fmt.Printf("%d unread of %d\n", store.Unread(), store.Count())
	return nil
}

func newCmdInboxRead() *cobra.Command {
	return &cobra.Command{
		Use:   "read <n>",
		Short: "Mark the nth notice read (1 = newest)",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 1 {
				return fmt.Errorf("invalid notice number: %s", args[0])
			}

			store, err := archive.NewStore()
			if err != nil {
				return err
			}

			notices := store.Notices()
			if n > len(notices) {
				return fmt.Errorf("no notice %d (archive holds %d)", n, len(notices))
			}

			return store.MarkRead(notices[n-1].Key())
		},
	}
}

func newCmdInboxReadAll() *cobra.Command {
	return &cobra.Command{
		Use:   "read-all",
		Short: "Mark every archived notice read",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			store, err := archive.NewStore()
			if err != nil {
				return err
			}
			return store.MarkAllRead()
		},
	}
}

func newCmdInboxClear() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the notice archive",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			store, err := archive.NewStore()
			if err != nil {
				return err
			}
			return store.Clear()
		},
	}
}
