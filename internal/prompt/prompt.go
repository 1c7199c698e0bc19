package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/stackgen-labs/stackgen/internal/choice"
	"github.com/stackgen-labs/stackgen/internal/naming"
)

// ErrAborted is returned when input ends before a question was answered.
var ErrAborted = errors.New("prompt aborted: no more input")

// Answers holds the selections made during an interactive session.
type Answers struct {
	Name           string
	PackageManager choice.PackageManager
	Backend        choice.Backend
	Install        bool
}

// Prompter asks questions on w and reads answers from r.
type Prompter struct {
	reader *bufio.Reader
	w      io.Writer
	ctx    context.Context

	// pending is an in-flight read left over from a cancelled question.
	pending chan lineResult
}

type lineResult struct {
	line string
	err  error
}

// New returns a Prompter reading from r and writing to w.
func New(r io.Reader, w io.Writer) *Prompter {
	return NewContext(context.Background(), r, w)
}

// NewContext is like New, but a question blocked on input returns as soon as
// ctx is done, with an error wrapping ctx.Err().
func NewContext(ctx context.Context, r io.Reader, w io.Writer) *Prompter {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Prompter{reader: bufio.NewReader(r), w: w, ctx: ctx}
}

// Ask runs the full question sequence. Fields of defaults pre-select the
// answer used for an empty reply; an empty defaults.Name means the project
// name has no default and must be typed.
func (p *Prompter) Ask(defaults Answers) (*Answers, error) {
	name, err := p.ProjectName(defaults.Name)
	if err != nil {
		return nil, err
	}
	pm, err := p.PackageManager(defaults.PackageManager)
	if err != nil {
		return nil, err
	}
	backend, err := p.Backend(defaults.Backend)
	if err != nil {
		return nil, err
	}
	install, err := p.Install(defaults.Install, pm)
	if err != nil {
		return nil, err
	}
	return &Answers{Name: name, PackageManager: pm, Backend: backend, Install: install}, nil
}

// ProjectName asks for a project name until one passes naming.Validate,
// printing the diagnostic after each rejected attempt. Only the line
// terminator is stripped, so "app " is rejected rather than silently fixed.
func (p *Prompter) ProjectName(def string) (string, error) {
	for {
		if def != "" {
			fmt.Fprintf(p.w, "Project name (%s): ", def)
		} else {
			fmt.Fprint(p.w, "Project name: ")
		}

		line, err := p.readLine()
		if err != nil {
			return "", err
		}
		if line == "" && def != "" {
			line = def
		}

		if err := naming.Validate(line); err != nil {
			fmt.Fprintf(p.w, "  ✗ %s\n", err)
			continue
		}
		return line, nil
	}
}

// PackageManager asks which package manager the project uses.
func (p *Prompter) PackageManager(def choice.PackageManager) (choice.PackageManager, error) {
	return selectOption(p, "Package manager:", choice.PackageManagers(), choice.PackageManagerSpec, def)
}

// Backend asks which backend the project uses.
func (p *Prompter) Backend(def choice.Backend) (choice.Backend, error) {
	return selectOption(p, "Backend:", choice.Backends(), choice.BackendSpec, def)
}

// Install asks whether to install dependencies now. Only y/yes/n/no are
// recognized; any other non-empty answer prints a warning and falls back to
// def.
func (p *Prompter) Install(def bool, pm choice.PackageManager) (bool, error) {
	hint := "Y/n"
	if !def {
		hint = "y/N"
	}
	fmt.Fprintf(p.w, "Install dependencies with %s now? (%s): ", pm, hint)

	line, err := p.readLine()
	if err != nil {
		return false, err
	}

	value, matched := choice.ResolveConfirm(line, choice.ConfirmSpec.WithDefault(def))
	if !matched {
		fmt.Fprintf(p.w, "  ! Unrecognized answer %q, using %s\n", strings.TrimSpace(line), yesNo(def))
	}
	return value, nil
}

// selectOption presents a numbered menu and re-asks until the answer
// resolves. An empty answer selects def.
func selectOption[T interface {
	comparable
	fmt.Stringer
}](p *Prompter, title string, items []T, spec choice.Spec[T], def T) (T, error) {
	var zero T
	if def != zero {
		spec = spec.WithDefault(def)
	}

	for {
		fmt.Fprintf(p.w, "\n%s\n", title)
		for i, item := range items {
			marker := ""
			if item == spec.Default {
				marker = " (default)"
			}
			fmt.Fprintf(p.w, "  %d) %s%s\n", i+1, item, marker)
		}
		fmt.Fprintf(p.w, "Enter number or name [1-%d]: ", len(items))

		line, err := p.readLine()
		if err != nil {
			return zero, err
		}

		if v, ok := choice.Resolve(line, spec); ok {
			return v, nil
		}
		fmt.Fprintf(p.w, "  ✗ Invalid selection %q: choose 1-%d or a name\n", strings.TrimSpace(line), len(items))
	}
}

// readLine returns the next line without its terminator. A final line
// without a newline is still returned; ErrAborted is returned only when no
// characters remain.
func (p *Prompter) readLine() (string, error) {
	if err := p.ctx.Err(); err != nil {
		return "", p.cancelled(err)
	}
	if p.ctx.Done() == nil {
		line, err := p.reader.ReadString('\n')
		return p.finishLine(line, err)
	}

	// ReadString cannot be interrupted. A read abandoned on cancellation
	// stays pending and answers the next question.
	if p.pending == nil {
		ch := make(chan lineResult, 1)
		go func() {
			line, err := p.reader.ReadString('\n')
			ch <- lineResult{line: line, err: err}
		}()
		p.pending = ch
	}

	select {
	case <-p.ctx.Done():
		return "", p.cancelled(p.ctx.Err())
	case res := <-p.pending:
		p.pending = nil
		return p.finishLine(res.line, res.err)
	}
}

func (p *Prompter) finishLine(line string, err error) (string, error) {
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(p.w)
			return "", ErrAborted
		}
		return "", fmt.Errorf("reading answer: %w", err)
	}
	return strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r"), nil
}

func (p *Prompter) cancelled(cause error) error {
	fmt.Fprintln(p.w)
	return fmt.Errorf("prompt cancelled: %w", cause)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
