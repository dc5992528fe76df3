package cmd

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/shrilakshmikakati/certifiacte-manager-sub001/certificate"
	"github.com/shrilakshmikakati/certifiacte-manager-sub001/registry"
)

var (
	lifecycleActorID  string
	lifecycleComments string
)

type transition func(ctx context.Context, reg *registry.Registry, id string, actor certificate.Actor) (*certificate.Record, error)

var approveCmd = &cobra.Command{
	Use:   "approve [certificate-id]",
	Short: "Approve a pending certificate",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransition(cmd, args[0], certificate.PermissionVerify,
			func(ctx context.Context, reg *registry.Registry, id string, actor certificate.Actor) (*certificate.Record, error) {
				return reg.Verify(ctx, id, true, lifecycleComments, actor)
			})
	},
}

var rejectCmd = &cobra.Command{
	Use:   "reject [certificate-id]",
	Short: "Reject a pending certificate",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransition(cmd, args[0], certificate.PermissionVerify,
			func(ctx context.Context, reg *registry.Registry, id string, actor certificate.Actor) (*certificate.Record, error) {
				return reg.Verify(ctx, id, false, lifecycleComments, actor)
			})
	},
}

var issueCmd = &cobra.Command{
	Use:   "issue [certificate-id]",
	Short: "Issue an approved certificate and mint its verification code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransition(cmd, args[0], certificate.PermissionIssue,
			func(ctx context.Context, reg *registry.Registry, id string, actor certificate.Actor) (*certificate.Record, error) {
				return reg.Issue(ctx, id, lifecycleComments, actor)
			})
	},
}

var revokeCmd = &cobra.Command{
	Use:   "revoke [certificate-id]",
	Short: "Revoke an issued certificate",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransition(cmd, args[0], certificate.PermissionIssue,
			func(ctx context.Context, reg *registry.Registry, id string, actor certificate.Actor) (*certificate.Record, error) {
				return reg.Revoke(ctx, id, lifecycleComments, actor)
			})
	},
}

func init() {
	for _, c := range []*cobra.Command{approveCmd, rejectCmd, issueCmd, revokeCmd} {
		c.Flags().StringVar(&lifecycleActorID, "actor", "cli", "Actor recorded in certificate history")
		c.Flags().StringVar(&lifecycleComments, "comments", "", "Free-form note recorded in the history entry")
		rootCmd.AddCommand(c)
	}
}

func runTransition(cmd *cobra.Command, id string, perm certificate.Permission, apply transition) error {
	reg, cleanup, err := buildRegistry()
	if err != nil {
		return err
	}
	defer cleanup()

	actor := certificate.Actor{ID: lifecycleActorID, Permissions: []certificate.Permission{perm}}
	rec, err := apply(cmd.Context(), reg, id, actor)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(rec)
}
