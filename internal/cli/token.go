package cli

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"quizmaster-service/internal/config"
	"quizmaster-service/internal/domain"
	transport "quizmaster-service/internal/transport/http"
)

// NewTokenCmd issues a signed bearer token for local development. Production
// tokens come from the auth frontend; this exists so curl and the demo mode
// work without it.
func NewTokenCmd(configPath *string) *cobra.Command {
	var (
		userID string
		email  string
		name   string
		role   string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a development bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if !domain.Role(role).Valid() {
				return fmt.Errorf("role must be student or admin")
			}
			if userID == "" {
				userID = uuid.NewString()
			}
			token, err := transport.SignToken(authSecret(cfg), transport.Identity{
				UserID: userID,
				Email:  email,
				Name:   name,
				Role:   domain.Role(role),
			}, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user-id", "", "subject user id (random if empty)")
	cmd.Flags().StringVar(&email, "email", "dev@example.com", "email claim")
	cmd.Flags().StringVar(&name, "name", "Dev User", "name claim")
	cmd.Flags().StringVar(&role, "role", "student", "role claim (student or admin)")
	cmd.Flags().DurationVar(&ttl, "ttl", 7*24*time.Hour, "token lifetime")
	return cmd
}
