package main

import (
	"context"
	"flag"
	"fmt"
	"text/tabwriter"

	"github.com/pkg/errors"

	"github.com/trezcool/edumaster/core/cart"
	"github.com/trezcool/edumaster/core/user"
)

func (cli *commandLine) cartUsage() {
	cli.println("Usage:")
	cli.println("  cart show          - list the cart")
	cli.println("  cart add -id ID    - add a lesson")
	cli.println("  cart remove -id ID - remove a lesson")
	cli.println("  cart clear         - empty the cart")
	cli.println("  cart checkout      - pay every lesson in the cart")
}

func (cli *commandLine) cartCmd(ctx context.Context, args []string) error {
	if len(args) == 0 {
		cli.cartUsage()
		return errHelp
	}

	idCmd := flag.NewFlagSet("cart "+args[0], flag.ContinueOnError)
	idCmd.SetOutput(cli.out)
	id := idCmd.String("id", "", "The lesson ID.")
	parseID := func() error {
		if err := idCmd.Parse(args[1:]); err != nil {
			return errHelp
		}
		if *id == "" {
			idCmd.Usage()
			return errHelp
		}
		return nil
	}

	switch args[0] {
	case "show":
		cli.showCart()
		return nil
	case "add":
		if err := parseID(); err != nil {
			return err
		}
		return cli.addToCart(ctx, *id)
	case "remove":
		if err := parseID(); err != nil {
			return err
		}
		if err := cli.cart.Remove(ctx, *id); err != nil {
			return err
		}
		cli.printf("Removed. %d item(s) in cart.\n", cli.cart.Count())
		return nil
	case "clear":
		if err := cli.cart.Clear(ctx); err != nil {
			return err
		}
		cli.println("Cart cleared.")
		return nil
	case "checkout":
		return cli.checkout(ctx)
	default:
		cli.cartUsage()
		return errHelp
	}
}

func (cli *commandLine) showCart() {
	items := cli.cart.Items()
	if len(items) == 0 {
		cli.println("Your cart is empty.")
		return
	}

	w := tabwriter.NewWriter(cli.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tCLASS\tPRICE")
	for _, it := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", it.ID, it.Title, it.ClassLevel, it.Price)
	}
	_ = w.Flush()
	cli.printf("Total: %.2f (%d item(s))\n", cli.cart.TotalPrice(), cli.cart.Count())
}

func (cli *commandLine) addToCart(ctx context.Context, id string) error {
	if err := cli.guard.Require(user.RoleStudent); err != nil {
		return err
	}
	if cli.cart.Contains(id) {
		cli.println("Already in cart.")
		return nil
	}

	l, err := cli.api.GetLesson(ctx, id)
	if err != nil {
		return err
	}
	if err = cli.cart.Add(ctx, l); err != nil {
		return err
	}
	cli.printf("Added %q. %d item(s) in cart, total %.2f.\n", l.Title, cli.cart.Count(), cli.cart.TotalPrice())
	return nil
}

func (cli *commandLine) checkout(ctx context.Context) error {
	if err := cli.guard.Require(user.RoleStudent); err != nil {
		return err
	}

	total := cli.cart.TotalPrice()
	paid, err := cart.Checkout(ctx, cli.cart, cli.api)
	if err != nil {
		var checkoutErr *cart.CheckoutError
		if errors.As(err, &checkoutErr) {
			cli.logger.Error("checkout failed", err, cli.guard.Identity())
		}
		return err
	}
	cli.printf("Paid %d lesson(s) for %.2f.\n", len(paid), total)
	return nil
}
