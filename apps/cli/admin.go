package main

import (
	"context"
	"flag"
	"fmt"
	"text/tabwriter"

	"github.com/trezcool/edumaster/core/user"
)

func (cli *commandLine) adminUsage() {
	cli.println("Usage:")
	cli.println("  admin users                                                 - list every user (admin)")
	cli.println("  admin admins                                                - list the admins (super-admin)")
	cli.println("  admin create-admin -name NAME -email EMAIL -phone PHONE     - create an admin (super-admin)")
	cli.println("  admin lessons create|update|delete [-id ID] [FLAGS]         - manage lessons (admin)")
	cli.println("  admin exams show|create|update|delete [-id ID] [FLAGS]      - manage exams (admin)")
	cli.println("  admin questions list|show|create|update|delete [FLAGS]      - manage questions (admin)")
	cli.println("Run a subcommand with -h to list its flags. Lists such as -options take values separated by |.")
}

func (cli *commandLine) adminCmd(ctx context.Context, args []string) error {
	if len(args) == 0 {
		cli.adminUsage()
		return errHelp
	}

	switch args[0] {
	case "users":
		if err := cli.guard.RequireAtLeast(user.RoleAdmin); err != nil {
			return err
		}
		users, err := cli.api.ListUsers(ctx)
		if err != nil {
			return err
		}
		return cli.printProfiles(users)
	case "admins":
		if err := cli.guard.Require(user.RoleSuperAdmin); err != nil {
			return err
		}
		admins, err := cli.api.ListAdmins(ctx)
		if err != nil {
			return err
		}
		return cli.printProfiles(admins)
	case "create-admin":
		return cli.createAdminCmd(ctx, args[1:])
	case "lessons":
		return cli.adminLessonsCmd(ctx, args[1:])
	case "exams":
		return cli.adminExamsCmd(ctx, args[1:])
	case "questions":
		return cli.adminQuestionsCmd(ctx, args[1:])
	default:
		cli.adminUsage()
		return errHelp
	}
}

func (cli *commandLine) createAdminCmd(ctx context.Context, args []string) error {
	createCmd := flag.NewFlagSet("admin create-admin", flag.ContinueOnError)
	createCmd.SetOutput(cli.out)
	name := createCmd.String("name", "", "Full name.")
	email := createCmd.String("email", "", "Email address.")
	phone := createCmd.String("phone", "", "Phone number.")
	if err := createCmd.Parse(args); err != nil {
		return errHelp
	}
	if *email == "" {
		createCmd.Usage()
		return errHelp
	}
	if err := cli.guard.Require(user.RoleSuperAdmin); err != nil {
		return err
	}

	pwd, err := cli.readPassword("Password")
	if err != nil {
		return err
	}
	cpwd, err := cli.readPassword("Confirm password")
	if err != nil {
		return err
	}

	data := user.NewAdmin{
		FullName:        *name,
		Email:           *email,
		PhoneNumber:     *phone,
		Password:        pwd,
		PasswordConfirm: cpwd,
	}
	if err = data.Validate(cli.validate); err != nil {
		return err
	}

	profile, err := cli.api.CreateAdmin(ctx, data)
	if err != nil {
		return err
	}
	cli.printf("Admin %s created.\n", profile.Email)
	return nil
}

func (cli *commandLine) printProfiles(profiles []user.Profile) error {
	w := tabwriter.NewWriter(cli.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tROLE\tCLASS")
	for _, p := range profiles {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.FullName, p.Email, p.Role, p.ClassLevel)
	}
	return w.Flush()
}
