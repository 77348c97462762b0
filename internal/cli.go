package internal

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/starford/tmgr/internal/commands"
	"github.com/starford/tmgr/internal/migrate"
	"github.com/starford/tmgr/internal/models"
	"github.com/starford/tmgr/internal/store"
	"github.com/starford/tmgr/internal/version"
)

func (a *application) command() *cli.Command {
	return &cli.Command{
		Name:      "tmgr",
		Usage:     "A simple task manager for the command line",
		Version:   version.Version,
		Writer:    a.stdout,
		ErrWriter: a.stderr,
		// Run prints errors and picks the exit code.
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "<exec-dir>/" + ConfigFileName,
				Value:       defaultConfigPath(),
				Sources:     cli.EnvVars("TMGR_CONFIG_FILE"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			return ctx, a.setup(cmd.String("config"))
		},
		Commands: []*cli.Command{
			a.addCommand(),
			a.completeCommand(),
			a.deleteCommand(),
			a.listCommand(),
			a.migrateCommand(),
			a.noteCommand(),
			a.statusCommand(),
			a.updateCommand(),
			a.upgradeCommand(),
			a.viewCommand(),
		},
	}
}

func defaultConfigPath() string {
	dir, err := store.ExecDir()
	if err != nil {
		return ConfigFileName
	}
	return filepath.Join(dir, ConfigFileName)
}

// firstArg returns the required positional argument. An explicitly empty
// argument is accepted.
func firstArg(cmd *cli.Command, name string) (string, error) {
	if cmd.NArg() < 1 {
		return "", fmt.Errorf("%s: missing required argument <%s>", cmd.Name, name)
	}
	return cmd.Args().First(), nil
}

func (a *application) addCommand() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Add a new task",
		ArgsUsage: "<name>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "priority", Aliases: []string{"p"}, Usage: "Low, Medium or High", Value: string(models.PriorityLow)},
			&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "Longer description of the task"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			name, err := firstArg(cmd, "name")
			if err != nil {
				return err
			}
			p, err := models.ParsePriority(cmd.String("priority"))
			if err != nil {
				return err
			}
			params := commands.AddParams{Name: name, Priority: p}
			if cmd.IsSet("description") {
				d := cmd.String("description")
				params.Description = &d
			}
			return a.withService(ctx, func(svc *commands.Service) (string, error) {
				res, err := svc.Add(ctx, params)
				return res.Message, err
			})
		},
	}
}

func (a *application) completeCommand() *cli.Command {
	return &cli.Command{
		Name:      "complete",
		Usage:     "Mark a task as completed",
		ArgsUsage: "<id>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			id, err := firstArg(cmd, "id")
			if err != nil {
				return err
			}
			return a.withService(ctx, func(svc *commands.Service) (string, error) {
				res, err := svc.Complete(ctx, id)
				return res.Message, err
			})
		},
	}
}

func (a *application) deleteCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete a task and its note file",
		ArgsUsage: "<id>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			id, err := firstArg(cmd, "id")
			if err != nil {
				return err
			}
			return a.withService(ctx, func(svc *commands.Service) (string, error) {
				res, err := svc.Delete(ctx, id)
				return res.Message, err
			})
		},
	}
}

func (a *application) listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List in-progress tasks",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "all", Aliases: []string{"a"}, Usage: "Include completed tasks"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return a.withService(ctx, func(svc *commands.Service) (string, error) {
				res, err := svc.List(ctx, cmd.Bool("all"))
				return res.Message, err
			})
		},
	}
}

func (a *application) migrateCommand() *cli.Command {
	return &cli.Command{
		Name:      "migrate",
		Usage:     "Migrate tasks from an older tmgr version",
		ArgsUsage: "<v2|v3|invalid>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			arg, err := firstArg(cmd, "from")
			if err != nil {
				return err
			}
			from, err := migrate.ParseVersion(arg)
			if err != nil {
				return err
			}
			return a.withService(ctx, func(svc *commands.Service) (string, error) {
				res, err := svc.Migrate(ctx, from)
				return res.Message, err
			})
		},
	}
}

func (a *application) noteCommand() *cli.Command {
	return &cli.Command{
		Name:      "note",
		Usage:     "Create or locate the note file of a task",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "open", Aliases: []string{"o"}, Usage: "Open the note in $EDITOR"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			id, err := firstArg(cmd, "id")
			if err != nil {
				return err
			}
			return a.withService(ctx, func(svc *commands.Service) (string, error) {
				res, err := svc.Note(ctx, id, cmd.Bool("open"))
				return res.Message, err
			})
		},
	}
}

func (a *application) statusCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show file locations and task counts",
		Action: func(ctx context.Context, _ *cli.Command) error {
			return a.withService(ctx, func(svc *commands.Service) (string, error) {
				res, err := svc.Status(ctx)
				return res.Message, err
			})
		},
	}
}

func (a *application) updateCommand() *cli.Command {
	return &cli.Command{
		Name:      "update",
		Usage:     "Update the name, priority or description of a task",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "New name"},
			&cli.StringFlag{Name: "priority", Aliases: []string{"p"}, Usage: "Low, Medium or High"},
			&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "New description"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			id, err := firstArg(cmd, "id")
			if err != nil {
				return err
			}
			var patch store.Patch
			if cmd.IsSet("name") {
				n := cmd.String("name")
				patch.Name = &n
			}
			if cmd.IsSet("priority") {
				p, err := models.ParsePriority(cmd.String("priority"))
				if err != nil {
					return err
				}
				patch.Priority = &p
			}
			if cmd.IsSet("description") {
				d := cmd.String("description")
				patch.Description = &d
			}
			return a.withService(ctx, func(svc *commands.Service) (string, error) {
				res, err := svc.Update(ctx, id, patch)
				return res.Message, err
			})
		},
	}
}

func (a *application) upgradeCommand() *cli.Command {
	return &cli.Command{
		Name:  "upgrade",
		Usage: "Upgrade tmgr to the latest release",
		Action: func(ctx context.Context, _ *cli.Command) error {
			return a.withService(ctx, func(svc *commands.Service) (string, error) {
				res, err := svc.Upgrade(ctx)
				return res.Message, err
			})
		},
	}
}

func (a *application) viewCommand() *cli.Command {
	return &cli.Command{
		Name:      "view",
		Usage:     "Show every field of a task",
		ArgsUsage: "<id>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			id, err := firstArg(cmd, "id")
			if err != nil {
				return err
			}
			return a.withService(ctx, func(svc *commands.Service) (string, error) {
				res, err := svc.View(ctx, id)
				return res.Message, err
			})
		},
	}
}
