package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arcanaland/wanderwheel/internal/card"
	"github.com/arcanaland/wanderwheel/internal/selector"
	"github.com/arcanaland/wanderwheel/internal/session"
)

// Commands accepted at the main prompt
const (
	cmdGo     = "go!"
	cmdReturn = "return"
	cmdQuit   = "quit"
)

// Throttle keys for repeated hints
const (
	hintGoOrReturn = "go_or_return"
)

var errQuit = errors.New("quit")

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start an interactive session",
	Long: `Play starts an interactive session. Pick a language and a city, then type
'Go!' to draw a card or 'Return' to change the language or city.
Quiz answers are given by option number. Type 'quit' or press Ctrl-D to leave.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, closeFn, err := openStore()
		if err != nil {
			return err
		}
		defer closeFn()

		user, _ := cmd.Flags().GetString("user")
		p := newPlayer(cmd.InOrStdin(), cmd.OutOrStdout(),
			selector.New(st, selector.WithLogger(appLogger)), user, appLogger)
		p.width = terminalWidth()
		return p.run(cmd.Context())
	},
}

func init() {
	RootCmd.AddCommand(playCmd)

	playCmd.Flags().String("user", "local", "Session name used for the prompt throttle")
}

// player drives one interactive session over line-based input
type player struct {
	in       *bufio.Scanner
	out      io.Writer
	sel      *selector.Selector
	sessions *session.Registry
	throttle *session.Throttle
	logger   *slog.Logger
	user     string
	width    int
}

func newPlayer(in io.Reader, out io.Writer, sel *selector.Selector, user string, logger *slog.Logger) *player {
	if logger == nil {
		logger = slog.Default()
	}
	return &player{
		in:       bufio.NewScanner(in),
		out:      out,
		sel:      sel,
		sessions: session.NewRegistry(),
		throttle: session.NewThrottle(),
		logger:   logger,
		user:     user,
		width:    defaultWidth,
	}
}

// run plays until the input ends or the user quits
func (p *player) run(ctx context.Context) error {
	p.sessions.Start(p.user)
	p.throttle.Reset(p.user)

	err := p.loop(ctx)
	if errors.Is(err, errQuit) || errors.Is(err, io.EOF) {
		fmt.Fprintln(p.out, "Bye!")
		return nil
	}
	return err
}

func (p *player) loop(ctx context.Context) error {
	if err := p.chooseLanguage(); err != nil {
		return err
	}
	if err := p.chooseCity(); err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := p.readLine("> ")
		if err != nil {
			return err
		}

		switch strings.ToLower(line) {
		case cmdGo, "go", "g":
			if err := p.spin(ctx); err != nil {
				return err
			}
			p.hint()
		case cmdReturn, "r":
			if err := p.change(); err != nil {
				return err
			}
		case cmdQuit, "q", "exit":
			return errQuit
		case "":
		default:
			fmt.Fprintln(p.out, "Type Go! or Return.")
		}
	}
}

func (p *player) chooseLanguage() error {
	for {
		line, err := p.readLine("Choose a language (" + strings.Join(session.LanguageOptions, " / ") + "): ")
		if err != nil {
			return err
		}
		language := strings.ToUpper(line)
		if session.IsLanguage(language) {
			p.sessions.SetLanguage(p.user, language)
			return nil
		}
		fmt.Fprintf(p.out, "Unknown language %q.\n", line)
	}
}

func (p *player) chooseCity() error {
	s, _ := p.sessions.Get(p.user)
	cities := session.CitiesFor(s.Language)

	fmt.Fprintln(p.out, "Choose a city:")
	for i, label := range cities {
		fmt.Fprintf(p.out, "%d) %s\n", i+1, label)
	}
	line, err := p.readLine("> ")
	if err != nil {
		return err
	}

	label := line
	if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(cities) {
		label = cities[n-1]
	}
	s = p.sessions.SetCity(p.user, session.CityKey(label))
	p.logger.Info("session filter set", "user", p.user, "language", s.Language, "city", s.City)

	fmt.Fprintf(p.out, "You selected city: %s. Type Go! to continue.\n", label)
	return nil
}

// spin draws one card for the current session and handles a quiz answer
func (p *player) spin(ctx context.Context) error {
	s, _ := p.sessions.Get(p.user)
	language, city := s.Filter()

	c, err := p.sel.SelectCard(ctx, language, city)
	if errors.Is(err, selector.ErrNoEligibleCards) {
		fmt.Fprintln(p.out, "⚠️ No cards for the selected language/city.")
		return nil
	}
	if err != nil {
		return err
	}

	renderCard(p.out, c, p.width)
	if !c.IsQuiz() {
		return nil
	}

	chosen, err := p.readOption(len(c.Options))
	if err != nil {
		return err
	}
	renderAnswer(p.out, c, card.EvaluateAnswer(c, chosen), p.width)
	return nil
}

// readOption reads a 1-based option number and returns it 0-based
func (p *player) readOption(count int) (int, error) {
	if count == 0 {
		fmt.Fprintln(p.out, "This quiz has no options.")
		return -1, nil
	}
	for {
		line, err := p.readLine("Your answer: ")
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(line)
		if err == nil && n >= 1 && n <= count {
			return n - 1, nil
		}
		fmt.Fprintf(p.out, "Enter a number from 1 to %d.\n", count)
	}
}

// change asks whether to change the language or the city
func (p *player) change() error {
	for {
		fmt.Fprintln(p.out, "1) Change language")
		fmt.Fprintln(p.out, "2) Change city")
		line, err := p.readLine("> ")
		if err != nil {
			return err
		}

		switch strings.ToLower(line) {
		case "1", "change language":
			if err := p.chooseLanguage(); err != nil {
				return err
			}
			return p.chooseCity()
		case "2", "change city":
			return p.chooseCity()
		}
	}
}

// hint shows the Go!/Return reminder, skipping most repeats
func (p *player) hint() {
	if p.throttle.Allow(p.user, hintGoOrReturn) {
		fmt.Fprintln(p.out, "Type Go! or Return.")
	}
}

func (p *player) readLine(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	if !p.in.Scan() {
		fmt.Fprintln(p.out)
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(p.in.Text()), nil
}
