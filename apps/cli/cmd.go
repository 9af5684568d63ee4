package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/trezcool/edumaster/core"
	"github.com/trezcool/edumaster/core/auth"
	"github.com/trezcool/edumaster/core/cart"
	"github.com/trezcool/edumaster/core/lesson"
	"github.com/trezcool/edumaster/core/user"
	apisvc "github.com/trezcool/edumaster/services/api"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	conf       *core.Config
	logger     core.Logger
	api        *apisvc.Client
	guard      *auth.Guard
	cart       *cart.Manager
	validate   *validator.Validate
	translator ut.Translator

	in  *bufio.Reader
	out io.Writer
}

// newCommandLine wires the client components on top of store and restores the saved session.
func newCommandLine(
	ctx context.Context,
	conf *core.Config,
	logger core.Logger,
	store core.Storage,
	in io.Reader,
	out io.Writer,
) (*commandLine, error) {
	base := apisvc.NewClient(conf, nil, logger)
	guard := auth.NewGuard(base, store, logger)
	if _, err := guard.Restore(ctx); err != nil {
		logger.Warn("could not restore session", err)
	}

	cartMgr, err := cart.NewManager(ctx, store, logger)
	if err != nil {
		return nil, errors.Wrap(err, "loading cart")
	}

	validate, translator := core.NewValidator()
	user.InitValidators(validate, translator)
	lesson.InitValidators(validate, translator)

	return &commandLine{
		conf:       conf,
		logger:     logger,
		api:        base.WithTokenSource(guard),
		guard:      guard,
		cart:       cartMgr,
		validate:   validate,
		translator: translator,
		in:         bufio.NewReader(in),
		out:        &syncWriter{w: out},
	}, nil
}

func (cli *commandLine) printUsage() {
	cli.println("Usage:")
	cli.println("  signup -name NAME -email EMAIL -phone PHONE -class LEVEL - create a student account")
	cli.println("  login -email EMAIL                                       - log in (the password is prompted)")
	cli.println("  logout                                                   - forget the saved session")
	cli.println("  whoami                                                   - show the logged in profile")
	cli.println("  profile update [-name|-email|-phone|-class VALUE]        - edit the logged in profile")
	cli.println("  stats                                                    - completed exams and study hours")
	cli.println("  lessons [-search TEXT] [-class LEVEL] [-paid true|false] - browse lessons")
	cli.println("  lessons purchased                                        - list purchased lessons")
	cli.println("  cart show|add -id ID|remove -id ID|clear|checkout        - manage the cart")
	cli.println("  exams                                                    - list exams")
	cli.println("  exam take -id ID [-yes]                                  - take a timed exam")
	cli.println("  exam score -id ID                                        - show an exam score")
	cli.println("  admin users|admins|create-admin|lessons|exams|questions  - administration")
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	cmd, rest := args[1], args[2:]
	switch cmd {
	case "signup":
		return cli.signupCmd(ctx, rest)
	case "login":
		return cli.loginCmd(ctx, rest)
	case "logout":
		return cli.logout(ctx)
	case "whoami":
		return cli.whoami(ctx)
	case "profile":
		return cli.profileCmd(ctx, rest)
	case "stats":
		return cli.stats(ctx)
	case "lessons":
		return cli.lessonsCmd(ctx, rest)
	case "cart":
		return cli.cartCmd(ctx, rest)
	case "exams":
		return cli.listExams(ctx)
	case "exam":
		return cli.examCmd(ctx, rest)
	case "admin":
		return cli.adminCmd(ctx, rest)
	default:
		cli.printUsage()
		return errHelp
	}
}

// printError writes err to the output, one line per invalid field.
func (cli *commandLine) printError(err error) {
	err = core.TranslateValidationErrors(err, cli.translator)

	msg := err.Error()
	var fields map[string]string
	var vErr *core.ValidationError
	var apiErr *apisvc.Error
	if errors.As(err, &vErr) && len(vErr.Fields) > 0 {
		msg = "invalid input"
		fields = make(map[string]string, len(vErr.Fields))
		for _, fld := range vErr.Fields {
			fields[fld.Field] = fld.Error
		}
	} else if errors.As(err, &apiErr) && len(apiErr.Fields) > 0 {
		msg = apiErr.Message
		fields = apiErr.Fields
	}

	cli.printf("error: %s\n", msg)
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		cli.printf("  %s: %s\n", name, fields[name])
	}
}

func (cli *commandLine) println(a ...interface{}) {
	fmt.Fprintln(cli.out, a...)
}

func (cli *commandLine) printf(format string, a ...interface{}) {
	fmt.Fprintf(cli.out, format, a...)
}

// readLine returns the next input line, trimmed. io.EOF is returned once the input is exhausted.
func (cli *commandLine) readLine() (string, error) {
	line, err := cli.in.ReadString('\n')
	if err != nil && !(err == io.EOF && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (cli *commandLine) prompt(label string) (string, error) {
	cli.printf("%s: ", label)
	return cli.readLine()
}

func (cli *commandLine) readPassword(label string) (string, error) {
	cli.printf("%s: ", label)
	pwd, err := readPasswordFunc(int(os.Stdin.Fd()))
	cli.println()
	if err != nil {
		return "", errors.Wrap(err, "reading password")
	}
	return string(pwd), nil
}

// confirm asks a yes/no question; anything but y/yes is a no.
func (cli *commandLine) confirm(question string) bool {
	answer, err := cli.prompt(question + " [y/N]")
	if err != nil {
		return false
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes"
}

// syncWriter serializes the writes of the exam timer and the input loop.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (sw *syncWriter) Write(p []byte) (int, error) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	return sw.w.Write(p)
}
