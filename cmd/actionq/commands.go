package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bft-labs/actionq/internal/api"
	"github.com/bft-labs/actionq/internal/cliconfig"
)

// newClientCmds returns the commands that talk to a running agent.
func newClientCmds() []*cobra.Command {
	addr := cliconfig.DefaultListen
	if v := os.Getenv(cliconfig.EnvPrefix + "LISTEN"); v != "" {
		addr = v
	}
	var jsonOut bool

	client := func() *api.Client { return api.NewClient(addr, nil) }

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show agent state and queue length",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := client().Status(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), st)
			}
			mode := "online"
			if st.Offline {
				mode = "offline"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s, %s, %d pending\n", st.State, mode, st.Pending)
			return nil
		},
	}

	pendingCmd := &cobra.Command{
		Use:   "pending",
		Short: "List queued actions, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			items, err := client().Pending(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), items)
			}
			return printPending(cmd.OutOrStdout(), items)
		},
	}

	var kind, payload string
	submitCmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit an action; it is queued if the agent is offline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !json.Valid([]byte(payload)) {
				return fmt.Errorf("payload is not valid JSON")
			}
			res, err := client().Submit(cmd.Context(), api.SubmitRequest{
				Kind:    kind,
				Payload: json.RawMessage(payload),
			})
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			if res.Queued {
				fmt.Fprintf(cmd.OutOrStdout(), "queued %s (%d pending)\n", res.ID, res.Pending)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "done %s\n", res.ID)
			}
			return nil
		},
	}
	submitCmd.Flags().StringVar(&kind, "kind", "", "action kind: register_course, drop_course or submit_assignment")
	submitCmd.Flags().StringVar(&payload, "payload", "{}", "action payload as a JSON object")
	_ = submitCmd.MarkFlagRequired("kind")

	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Replay queued actions now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := client().Sync(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			switch {
			case res.Skipped:
				fmt.Fprintln(cmd.OutOrStdout(), "a sync is already running")
			case res.Message != "":
				fmt.Fprintln(cmd.OutOrStdout(), res.Message)
			default:
				fmt.Fprintln(cmd.OutOrStdout(), "nothing to sync")
			}
			if res.Error != "" {
				return fmt.Errorf("sync stopped: %s", res.Error)
			}
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Drop every queued action without sending it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := client().Clear(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cleared %d pending action(s)\n", res.Cleared)
			return nil
		},
	}

	cmds := []*cobra.Command{statusCmd, pendingCmd, submitCmd, syncCmd, clearCmd}
	for _, c := range cmds {
		c.Flags().StringVar(&addr, "api", addr, "address of the running agent's control API")
		c.Flags().BoolVar(&jsonOut, "json", false, "print the raw JSON response")
	}
	return cmds
}

func printPending(w io.Writer, items []api.PendingItem) error {
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, "no pending actions")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKIND\tQUEUED\tPAYLOAD")
	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", it.ID, it.Kind, it.QueuedFor, it.Payload)
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
