package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Veraticus/fleet/internal/model"
	"github.com/Veraticus/fleet/internal/storage"
)

// Console text.
const (
	Banner       = "Welcome to the Fleet Management System"
	Separator    = "--------------------------------------"
	Farewell     = "Exiting the Fleet Management System"
	CommandMenu  = "(P)rint, (A)dd, (R)emove, (E)xpense, e(X)it : "
	AddPrompt    = "Please enter the new boat CSV data          : "
	RemovePrompt = "Which boat do you want to remove?           : "
	BoatPrompt   = "Which boat do you want to spend on?         : "
	AmountPrompt = "How much do you want to spend?              : "
)

// SaveFunc persists the fleet when the menu exits.
type SaveFunc func(ctx context.Context, fleet *model.Fleet) error

// Menu is the interactive command loop. It owns the fleet for its lifetime.
type Menu struct {
	reader LineReader
	out    io.Writer
	fleet  *model.Fleet
	save   SaveFunc
	bounds model.Bounds
}

// NewMenu builds a menu over the given input, output and fleet.
func NewMenu(reader LineReader, out io.Writer, fleet *model.Fleet, bounds model.Bounds, save SaveFunc) *Menu {
	return &Menu{
		reader: reader,
		out:    out,
		fleet:  fleet,
		bounds: bounds,
		save:   save,
	}
}

// Fleet returns the fleet the menu operates on.
func (m *Menu) Fleet() *model.Fleet {
	return m.fleet
}

// Run prints the banner and processes commands until exit, end of input or
// context cancellation. Every path out of the loop saves the fleet.
// The returned error is the save failure, if any, which has already been
// reported on the menu output.
func (m *Menu) Run(ctx context.Context) error {
	m.println()
	m.println(Banner)
	m.println(Separator)
	m.println()

	for {
		if ctx.Err() != nil {
			m.println()
			return m.terminate(context.WithoutCancel(ctx))
		}

		m.print(CommandMenu)
		line, err := m.reader.ReadLine(ctx)
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, ErrInputCancelled) {
				slog.Warn("reading command failed", "error", err)
			}
			m.println()
			return m.terminate(context.WithoutCancel(ctx))
		}

		cmd, _ := utf8.DecodeRuneInString(line)
		switch unicode.ToUpper(cmd) {
		case 'P':
			m.println()
			m.print(m.fleet.Render())
		case 'A':
			m.handleAdd(ctx)
		case 'R':
			m.handleRemove(ctx)
		case 'E':
			m.handleExpense(ctx)
		case 'X':
			return m.terminate(ctx)
		default:
			m.println("Invalid menu option, try again")
		}
		m.println()
	}
}

func (m *Menu) handleAdd(ctx context.Context) {
	m.print(AddPrompt)
	line, ok := m.prompt(ctx)
	if !ok {
		return
	}

	boat, err := storage.ParseBoatLine(line, m.bounds)
	if err != nil {
		m.println("Could not add boat: " + err.Error())
		return
	}
	m.fleet.Add(boat)
	slog.Debug("boat added", "name", boat.Name, "boats", m.fleet.Len())
}

func (m *Menu) handleRemove(ctx context.Context) {
	m.print(RemovePrompt)
	name, ok := m.prompt(ctx)
	if !ok {
		return
	}

	if err := m.fleet.RemoveByName(name); err != nil {
		m.println("Cannot find boat " + name)
		return
	}
	slog.Debug("boat removed", "name", name, "boats", m.fleet.Len())
}

func (m *Menu) handleExpense(ctx context.Context) {
	m.print(BoatPrompt)
	name, ok := m.prompt(ctx)
	if !ok {
		return
	}

	// Report an unknown boat before asking for an amount.
	if _, found := m.fleet.FindByName(name); !found {
		m.println("Cannot find boat " + name)
		return
	}

	m.print(AmountPrompt)
	text, ok := m.prompt(ctx)
	if !ok {
		return
	}

	amount, err := model.ParseMoney(text)
	if err != nil {
		m.println(fmt.Sprintf("Invalid amount %q, expense not recorded", text))
		return
	}

	result, err := m.fleet.RequestExpense(name, amount)
	if err != nil {
		m.println("Cannot find boat " + name)
		return
	}
	switch result.Status {
	case model.ExpenseAuthorized:
		m.println(fmt.Sprintf("Expense authorized, %s spent.", result.Spent))
	case model.ExpenseDenied:
		m.println(fmt.Sprintf("Expense not permitted, only %s left to spend.", result.Remaining))
	default:
		m.println(fmt.Sprintf("Invalid amount %q, expense not recorded", text))
	}
}

// prompt reads the answer to a sub-prompt. End of input or cancellation
// abandons the command; the main loop then terminates.
func (m *Menu) prompt(ctx context.Context) (string, bool) {
	line, err := m.reader.ReadLine(ctx)
	if err != nil {
		m.println()
		return "", false
	}
	return line, true
}

func (m *Menu) terminate(ctx context.Context) error {
	var saveErr error
	if m.save != nil {
		if saveErr = m.save(ctx, m.fleet); saveErr != nil {
			slog.Error("failed to save fleet", "error", saveErr)
			m.println("Could not save the fleet: " + saveErr.Error())
		}
	}
	m.println()
	m.println(Farewell)
	return saveErr
}

func (m *Menu) print(s string) {
	_, _ = io.WriteString(m.out, s)
}

func (m *Menu) println(s ...string) {
	m.print(strings.Join(s, "") + "\n")
}
