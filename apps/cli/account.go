package main

import (
	"context"
	"flag"

	"github.com/trezcool/edumaster/core/lesson"
	"github.com/trezcool/edumaster/core/user"
)

func (cli *commandLine) signupCmd(ctx context.Context, args []string) error {
	signupCmd := flag.NewFlagSet("signup", flag.ContinueOnError)
	signupCmd.SetOutput(cli.out)
	name := signupCmd.String("name", "", "Full name.")
	email := signupCmd.String("email", "", "Email address, used to log in.")
	phone := signupCmd.String("phone", "", "Phone number.")
	class := signupCmd.String("class", "", "Class level: 1 to 5 or \"Grade N Secondary\".")
	if err := signupCmd.Parse(args); err != nil {
		return errHelp
	}
	if *email == "" {
		signupCmd.Usage()
		return errHelp
	}

	pwd, err := cli.readPassword("Password")
	if err != nil {
		return err
	}
	cpwd, err := cli.readPassword("Confirm password")
	if err != nil {
		return err
	}

	data := user.NewStudent{
		FullName:        *name,
		Email:           *email,
		PhoneNumber:     *phone,
		Password:        pwd,
		PasswordConfirm: cpwd,
		ClassLevel:      lesson.NormalizeClassLevel(*class),
	}
	if err = data.Validate(cli.validate); err != nil {
		return err
	}

	profile, err := cli.api.Signup(ctx, data)
	if err != nil {
		return err
	}
	cli.printf("Account created for %s. You can now log in.\n", profile.Email)
	return nil
}

func (cli *commandLine) loginCmd(ctx context.Context, args []string) error {
	loginCmd := flag.NewFlagSet("login", flag.ContinueOnError)
	loginCmd.SetOutput(cli.out)
	email := loginCmd.String("email", "", "The account's email. The password will be prompted next.")
	if err := loginCmd.Parse(args); err != nil {
		return errHelp
	}
	if *email == "" {
		loginCmd.Usage()
		return errHelp
	}

	pwd, err := cli.readPassword("Password")
	if err != nil {
		return err
	}
	if pwd == "" {
		loginCmd.Usage()
		return errHelp
	}

	creds := user.Credentials{Email: *email, Password: pwd}
	if err = creds.Validate(cli.validate); err != nil {
		return err
	}

	id, err := cli.guard.Login(ctx, creds)
	if err != nil {
		return err
	}
	cli.printf("Logged in as %s (%s).\n", id.Email, id.Role)
	return nil
}

func (cli *commandLine) logout(ctx context.Context) error {
	if err := cli.guard.Logout(ctx); err != nil {
		return err
	}
	cli.println("Logged out.")
	return nil
}

func (cli *commandLine) whoami(ctx context.Context) error {
	if err := cli.guard.Require(); err != nil {
		return err
	}
	profile, err := cli.api.Profile(ctx)
	if err != nil {
		return err
	}
	cli.printProfile(profile)
	return nil
}

func (cli *commandLine) profileCmd(ctx context.Context, args []string) error {
	if len(args) == 0 || args[0] != "update" {
		cli.println("Usage:")
		cli.println("  profile update [-name NAME] [-email EMAIL] [-phone PHONE] [-class LEVEL] - edit your profile")
		return errHelp
	}

	updateCmd := flag.NewFlagSet("profile update", flag.ContinueOnError)
	updateCmd.SetOutput(cli.out)
	name := updateCmd.String("name", "", "Full name.")
	email := updateCmd.String("email", "", "Email address.")
	phone := updateCmd.String("phone", "", "Phone number.")
	class := updateCmd.String("class", "", "Class level: 1 to 5 or \"Grade N Secondary\".")
	if err := updateCmd.Parse(args[1:]); err != nil {
		return errHelp
	}
	if updateCmd.NFlag() == 0 {
		updateCmd.Usage()
		return errHelp
	}
	if err := cli.guard.Require(); err != nil {
		return err
	}

	data := user.UpdateProfile{
		FullName:    *name,
		Email:       *email,
		PhoneNumber: *phone,
	}
	if *class != "" {
		data.ClassLevel = lesson.NormalizeClassLevel(*class)
	}
	if err := data.Validate(cli.validate); err != nil {
		return err
	}

	profile, err := cli.api.UpdateProfile(ctx, data)
	if err != nil {
		return err
	}
	cli.println("Profile updated.")
	cli.printProfile(profile)
	return nil
}

func (cli *commandLine) stats(ctx context.Context) error {
	if err := cli.guard.Require(); err != nil {
		return err
	}
	stats, err := cli.api.Stats(ctx)
	if err != nil {
		return err
	}
	cli.printf("Completed exams: %d\n", stats.CompletedExams)
	cli.printf("Study hours:     %.1f\n", stats.StudyHours)
	return nil
}

func (cli *commandLine) printProfile(profile user.Profile) {
	cli.printf("Name:  %s\n", profile.FullName)
	cli.printf("Email: %s\n", profile.Email)
	cli.printf("Role:  %s\n", profile.Role)
	if profile.PhoneNumber != "" {
		cli.printf("Phone: %s\n", profile.PhoneNumber)
	}
	if profile.ClassLevel != "" {
		cli.printf("Class: %s\n", profile.ClassLevel)
	}
}
