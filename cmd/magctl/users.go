package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/yigit/unimag/internal/app/models"
	"github.com/yigit/unimag/internal/app/models/dto"
	"github.com/yigit/unimag/internal/pkg/apperrors"
	"github.com/yigit/unimag/internal/pkg/auth"
	"github.com/yigit/unimag/internal/pkg/validation"
)

func (cli *commandLine) createUser(ctx context.Context, req *dto.CreateUserRequest) error {
	// Accounts created from the console have no acting administrator
	user, err := cli.users.CreateUser(ctx, 0, req)
	if err != nil {
		return err
	}
	cli.success("Created user %d (%s, %s)", user.ID, user.Email, user.Role.Code())
	return nil
}

func (cli *commandLine) resetPassword(ctx context.Context, email, pwd string) error {
	if err := validation.ValidatePassword(pwd); err != nil {
		return err
	}
	user, err := cli.passwords.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return fmt.Errorf("no user with email %q", email)
		}
		return err
	}
	hash, err := auth.HashPassword(pwd)
	if err != nil {
		return err
	}
	if err := cli.passwords.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}
	cli.success("Password updated for %s", user.Email)
	return nil
}

func (cli *commandLine) listUsers(ctx context.Context, filter models.UserFilter) error {
	users, pagination, err := cli.users.ListUsers(ctx, filter)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(cli.out)
	table.SetHeader([]string{"ID", "Name", "Email", "Role", "Faculty", "Created"})
	for _, u := range users {
		faculty := "-"
		if u.FacultyName != nil {
			faculty = *u.FacultyName
		}
		table.Append([]string{
			strconv.FormatInt(u.ID, 10),
			u.FullName(),
			u.Email,
			u.Role.Code(),
			faculty,
			u.CreatedAt.Format("2006-01-02"),
		})
	}
	table.Render()

	fmt.Fprintf(cli.out, "%d of %d users\n", len(users), pagination.Total)
	return nil
}

func (cli *commandLine) printStats(ctx context.Context) error {
	stats, err := cli.stats.AdminDashboard(ctx)
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(cli.out)
	table.SetHeader([]string{"Metric", "Count"})
	table.Append([]string{"Users", strconv.FormatInt(stats.TotalUsers, 10)})
	table.Append([]string{"Submissions", strconv.FormatInt(stats.TotalSubmissions, 10)})
	table.Append([]string{"Pending review", strconv.FormatInt(stats.PendingSubmissions, 10)})
	table.Append([]string{"Selected", strconv.FormatInt(stats.SelectedSubmissions, 10)})
	table.Render()
	return nil
}
