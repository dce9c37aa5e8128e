// Package main is the operator CLI: migrations, admin password hashing and
// lifecycle actions without going through the HTTP API.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/campus-rcs/site-coordination/config"
	"github.com/campus-rcs/site-coordination/internal/bookings"
	"github.com/campus-rcs/site-coordination/internal/emaillogs"
	"github.com/campus-rcs/site-coordination/internal/lifecycle"
	"github.com/campus-rcs/site-coordination/internal/parser"
	"github.com/campus-rcs/site-coordination/internal/registrations"
	"github.com/campus-rcs/site-coordination/internal/users"
	"github.com/campus-rcs/site-coordination/pkg/database"
	"github.com/campus-rcs/site-coordination/pkg/mailer"
	"github.com/campus-rcs/site-coordination/pkg/utils"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// env holds the lazily opened resources of DB-backed commands.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	pool   *pgxpool.Pool
}

func (e *env) open(ctx context.Context) error {
	if e.pool != nil {
		return nil
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), e.logger)
	if err != nil {
		return err
	}
	e.cfg, e.pool = cfg, pool
	return nil
}

func (e *env) close() {
	if e.pool != nil {
		e.pool.Close()
	}
	_ = e.logger.Sync()
}

func (e *env) coordinator() *lifecycle.Coordinator {
	mailCfg := e.cfg.SMTP.MailerConfig()
	return lifecycle.New(
		registrations.NewRepository(e.pool),
		bookings.NewRepository(e.pool),
		users.NewRepository(e.pool),
		emaillogs.NewRepository(e.pool),
		mailer.NewSMTPSender(mailCfg, e.logger),
		lifecycle.Options{
			MailConfigured:      mailCfg.Configured(),
			NotifyBookingDenial: e.cfg.Lifecycle.NotifyBookingDenial,
		},
		e.logger,
	)
}

func newRootCmd() *cobra.Command {
	var verbose bool
	e := &env{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:           "sitectl",
		Short:         "Site coordination operator CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				e.logger = newLogger()
			}
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			e.close()
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log to stderr")

	root.AddCommand(
		migrateCmd(e),
		hashPasswordCmd(),
		generatePasswordCmd(),
		parseCmd(),
		registrationsCmd(e),
		bookingsCmd(e),
		usersCmd(e),
	)
	return root
}

func migrateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := e.open(ctx); err != nil {
				return err
			}
			if err := database.Migrate(ctx, e.pool, e.logger); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}

func hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASH (reads stdin when no argument is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var password string
			if len(args) == 1 {
				password = args[0]
			} else {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				password = strings.TrimRight(string(b), "\r\n")
			}
			if password == "" {
				return fmt.Errorf("password must not be empty")
			}
			hash, err := utils.HashPassword(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

func generatePasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate-password",
		Short: "Print a password from the credential generator",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), utils.GeneratePassword())
		},
	}
}

func parseCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:       "parse access|booking",
		Short:     "Parse a pasted request email and print the extracted fields (nothing is stored)",
		Args:      cobra.ExactValidArgs(1),
		ValidArgs: []string{"access", "booking"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				raw []byte
				err error
			)
			if file != "" && file != "-" {
				raw, err = os.ReadFile(file)
			} else {
				raw, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return err
			}
			var out any
			if args[0] == "access" {
				out, err = parser.ParseAccessRequest(string(raw))
			} else {
				out, err = parser.ParseBookingRequest(string(raw))
			}
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "file with the email text, - for stdin")
	return cmd
}

func registrationsCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{Use: "registrations", Short: "Approve or deny pending registrations"}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "approve <email>",
			Short: "Approve a registration and create its user",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				if err := e.open(ctx); err != nil {
					return err
				}
				u, err := e.coordinator().ApproveRegistration(ctx, strings.ToLower(args[0]))
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), u)
			},
		},
		&cobra.Command{
			Use:   "deny <email>",
			Short: "Deny a registration",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				if err := e.open(ctx); err != nil {
					return err
				}
				reg, err := e.coordinator().DenyRegistration(ctx, strings.ToLower(args[0]))
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), reg)
			},
		},
	)
	return cmd
}

func bookingsCmd(e *env) *cobra.Command {
	run := func(approve bool) func(cmd *cobra.Command, args []string) error {
		return func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid booking id %q", args[0])
			}
			ctx := cmd.Context()
			if err := e.open(ctx); err != nil {
				return err
			}
			c := e.coordinator()
			var out *lifecycle.BookingOutcome
			if approve {
				out, err = c.ApproveBooking(ctx, id)
			} else {
				out, err = c.DenyBooking(ctx, id)
			}
			if err != nil {
				return err
			}
			if out.NotifyErr != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: email not sent:", out.NotifyErr)
			}
			return printJSON(cmd.OutOrStdout(), out)
		}
	}
	cmd := &cobra.Command{Use: "bookings", Short: "Approve or deny pending bookings"}
	cmd.AddCommand(
		&cobra.Command{Use: "approve <id>", Short: "Approve a booking and send the confirmation", Args: cobra.ExactArgs(1), RunE: run(true)},
		&cobra.Command{Use: "deny <id>", Short: "Deny a booking", Args: cobra.ExactArgs(1), RunE: run(false)},
	)
	return cmd
}

func usersCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{Use: "users", Short: "User credential operations"}
	cmd.AddCommand(&cobra.Command{
		Use:   "send-credentials <email>",
		Short: "Email the stored credentials to a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := e.open(ctx); err != nil {
				return err
			}
			u, err := e.coordinator().SendCredentials(ctx, strings.ToLower(args[0]))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sent to %s (credentials_sent=%d)\n", u.Email, u.CredentialsSent)
			return nil
		},
	})
	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.OutputPaths = []string{"stderr"}
	logger, _ := config.Build()
	return logger
}
