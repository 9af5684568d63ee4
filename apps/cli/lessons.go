package main

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/trezcool/edumaster/core/lesson"
	"github.com/trezcool/edumaster/core/user"
)

func (cli *commandLine) lessonsCmd(ctx context.Context, args []string) error {
	if len(args) > 0 && args[0] == "purchased" {
		return cli.purchasedLessons(ctx)
	}

	lessonsCmd := flag.NewFlagSet("lessons", flag.ContinueOnError)
	lessonsCmd.SetOutput(cli.out)
	search := lessonsCmd.String("search", "", "Only lessons whose title, description or subject contain TEXT.")
	class := lessonsCmd.String("class", "", "Only lessons of this class level (1 to 5).")
	paid := lessonsCmd.String("paid", "", "true: only paid lessons, false: only free ones.")
	if err := lessonsCmd.Parse(args); err != nil {
		return errHelp
	}

	filter := lesson.Filter{Search: *search, ClassLevel: *class}
	if *paid != "" {
		isPaid, err := strconv.ParseBool(*paid)
		if err != nil {
			lessonsCmd.Usage()
			return errHelp
		}
		filter.IsPaid = &isPaid
	}

	if err := cli.guard.Require(); err != nil {
		return err
	}
	lessons, err := cli.api.ListLessons(ctx, filter)
	if err != nil {
		return err
	}
	cli.printLessons(lessons)
	return nil
}

func (cli *commandLine) purchasedLessons(ctx context.Context) error {
	if err := cli.guard.Require(user.RoleStudent); err != nil {
		return err
	}
	lessons, err := cli.api.PurchasedLessons(ctx)
	if err != nil {
		return err
	}
	cli.printLessons(lessons)
	return nil
}

func (cli *commandLine) printLessons(lessons []lesson.Lesson) {
	if len(lessons) == 0 {
		cli.println("No lessons found.")
		return
	}

	w := tabwriter.NewWriter(cli.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tCLASS\tSUBJECT\tPRICE\tIN CART")
	for _, l := range lessons {
		price := "free"
		if l.IsPaid {
			price = l.Price.String()
		}
		inCart := ""
		if cli.cart.Contains(l.ID) {
			inCart = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", l.ID, l.Title, l.ClassLevel, l.Subject, price, inCart)
	}
	_ = w.Flush()
}
