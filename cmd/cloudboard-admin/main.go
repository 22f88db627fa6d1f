package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/cloudboard/cloudboard/config"
	"github.com/cloudboard/cloudboard/internal/bootstrap"
	"github.com/cloudboard/cloudboard/internal/domain/model"
	"github.com/cloudboard/cloudboard/internal/ports"
	"github.com/cloudboard/cloudboard/internal/service"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
}

func main() {
	logger := bootstrap.InitLogger()

	if len(os.Args) < 2 {
		if err := printUsage(); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		if err := writef(os.Stderr, "unknown command %q\n\n", cmdName); err != nil {
			logger.Error("print unknown command message failed", "error", err)
		}
		if err := printUsage(); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logger.ErrorContext(context.Background(), "load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}

	cmdCtx := &commandContext{
		Ctx:    context.Background(),
		Logger: logger,
		Config: cfg,
	}
	if runErr := cmd.run(cmdCtx, os.Args[2:]); runErr != nil {
		logger.ErrorContext(cmdCtx.Ctx, "command failed", "command", cmdName, "error", runErr)
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func commands() map[string]command {
	return map[string]command{
		"create-user": {
			name:        "create-user",
			description: "Provision a directory account with an emailed temporary password",
			run:         runCreateUser,
		},
		"list-users": {
			name:        "list-users",
			description: "List directory accounts page by page",
			run:         runListUsers,
		},
	}
}

func printUsage() error {
	if err := writef(os.Stdout, "Usage: cloudboard-admin <command> [flags]\n\n"); err != nil {
		return err
	}
	if err := writef(os.Stdout, "Available commands:\n"); err != nil {
		return err
	}
	for _, c := range commands() {
		if err := writef(os.Stdout, "  %-16s %s\n", c.name, c.description); err != nil {
			return err
		}
	}
	return nil
}

func runCreateUser(ctx *commandContext, args []string) error {
	fs := flag.NewFlagSet("create-user", flag.ContinueOnError)
	email := fs.String("email", "", "Email address for the new account (required)")
	name := fs.String("name", "", "Given name")
	lastName := fs.String("last-name", "", "Family name")
	admin := fs.Bool("admin", false, "Grant admin group membership")
	if err := fs.Parse(args); err != nil {
		return err
	}

	users, err := buildUserService(ctx)
	if err != nil {
		return err
	}

	user, err := users.CreateUser(ctx.Ctx, model.NewUserInput{
		Email:    *email,
		Name:     *name,
		LastName: *lastName,
		IsAdmin:  *admin,
	})
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	ctx.Logger.InfoContext(ctx.Ctx, "user created",
		"email", user.Email,
		"status", user.Status,
		"is_admin", user.IsAdmin)
	return nil
}

func runListUsers(ctx *commandContext, args []string) error {
	fs := flag.NewFlagSet("list-users", flag.ContinueOnError)
	limit := fs.Int("limit", 60, "Page size for directory listing")
	if err := fs.Parse(args); err != nil {
		return err
	}

	users, err := buildUserService(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if err := writef(w, "EMAIL\tNAME\tADMIN\tENABLED\tSTATUS\tCREATED\n"); err != nil {
		return err
	}

	var cursor *string
	total := 0
	for {
		page, err := users.ListUsers(ctx.Ctx, ports.ListUsersInput{
			Cursor: cursor,
			Limit:  int32(*limit), //nolint:gosec // page size flag is small
		})
		if err != nil {
			return fmt.Errorf("list users: %w", err)
		}
		for _, u := range page.Users {
			if err := writef(w, "%s\t%s %s\t%t\t%t\t%s\t%s\n",
				u.Email, u.Name, u.LastName, u.IsAdmin, u.Enabled, u.Status,
				u.CreatedAt.Format("2006-01-02")); err != nil {
				return err
			}
		}
		total += len(page.Users)
		if page.NextCursor == nil {
			break
		}
		cursor = page.NextCursor
	}

	if err := w.Flush(); err != nil {
		return err
	}
	return writef(os.Stdout, "\n%d users\n", total)
}

func buildUserService(ctx *commandContext) (*service.UserService, error) {
	if err := ctx.Config.Auth.Validate(); err != nil {
		return nil, err
	}

	awsCfg, err := bootstrap.LoadAWSConfig(ctx.Ctx, ctx.Config.AWSRegion)
	if err != nil {
		return nil, err
	}

	directory, err := bootstrap.BuildDirectory(bootstrap.AuthDeps{
		Auth:      ctx.Config.Auth,
		AWSConfig: awsCfg,
		Logger:    ctx.Logger,
	})
	if err != nil {
		return nil, err
	}

	return service.NewUserService(directory), nil
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}
