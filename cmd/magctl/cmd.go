package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/yigit/unimag/internal/app/models"
	"github.com/yigit/unimag/internal/app/models/dto"
	"github.com/yigit/unimag/internal/app/services"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

// passwordStore is what resetpassword needs from the user repository
type passwordStore interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePassword(ctx context.Context, userID int64, hash string) error
}

type dashboardSource interface {
	AdminDashboard(ctx context.Context) (dto.AdminDashboardStats, error)
}

type commandLine struct {
	users     services.UserService
	passwords passwordStore
	stats     dashboardSource
	migrate   func(ctx context.Context) error
	seed      func(ctx context.Context) error
	out       io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate                                                 - apply pending database migrations")
	fmt.Fprintln(cli.out, "  seed                                                    - create default roles, faculties, settings and admin")
	fmt.Fprintln(cli.out, "  createuser -email E -first F -last L -role R -faculty N - create an account; the password is prompted next")
	fmt.Fprintln(cli.out, "  resetpassword -email E                                  - reset a user's password; the password is prompted next")
	fmt.Fprintln(cli.out, "  users [-role R]                                         - list users")
	fmt.Fprintln(cli.out, "  stats                                                   - print dashboard counts")
}

func (cli *commandLine) success(format string, args ...interface{}) {
	color.New(color.FgGreen).Fprintf(cli.out, format+"\n", args...)
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	ctx := context.Background()

	switch args[1] {
	case "migrate":
		if err := cli.migrate(ctx); err != nil {
			return err
		}
		cli.success("Migrations applied")
		return nil

	case "seed":
		if err := cli.seed(ctx); err != nil {
			return err
		}
		cli.success("Default data created")
		return nil

	case "createuser":
		fs := cli.flagSet("createuser")
		email := fs.String("email", "", "The new user's email.")
		first := fs.String("first", "", "First name.")
		last := fs.String("last", "", "Last name.")
		role := fs.String("role", "STUD", "Role id or code (ADMIN, MNGR, COORD, STUD).")
		faculty := fs.Int64("faculty", 0, "Faculty id.")
		if err := fs.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *email == "" || *first == "" || *last == "" || *faculty <= 0 {
			fs.Usage()
			return errHelp
		}
		r, ok := models.ParseRole(*role)
		if !ok {
			return fmt.Errorf("unknown role %q", *role)
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			fs.Usage()
			return errHelp
		}
		return cli.createUser(ctx, &dto.CreateUserRequest{
			FirstName: *first,
			LastName:  *last,
			Email:     *email,
			Password:  pwd,
			RoleID:    r,
			FacultyID: *faculty,
		})

	case "resetpassword":
		fs := cli.flagSet("resetpassword")
		email := fs.String("email", "", "The user's email. The password will be prompted next.")
		if err := fs.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *email == "" {
			fs.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			fs.Usage()
			return errHelp
		}
		return cli.resetPassword(ctx, *email, pwd)

	case "users":
		fs := cli.flagSet("users")
		role := fs.String("role", "", "Only list users with this role id or code.")
		if err := fs.Parse(args[2:]); err != nil {
			return errHelp
		}
		filter := models.UserFilter{Page: 1, Size: 100}
		if *role != "" {
			r, ok := models.ParseRole(*role)
			if !ok {
				return fmt.Errorf("unknown role %q", *role)
			}
			filter.Role = r
		}
		return cli.listUsers(ctx, filter)

	case "stats":
		return cli.printStats(ctx)

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

func (cli *commandLine) promptPassword() (string, error) {
	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}
