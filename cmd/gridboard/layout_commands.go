package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Gaurav-Gosain/gridboard/internal/app"
	"github.com/Gaurav-Gosain/gridboard/internal/config"
	"github.com/Gaurav-Gosain/gridboard/internal/content"
	"github.com/Gaurav-Gosain/gridboard/internal/layout"
	"github.com/Gaurav-Gosain/gridboard/internal/store"
	"github.com/Gaurav-Gosain/gridboard/internal/widget"
	"github.com/charmbracelet/log"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newLayoutCmd() *cobra.Command {
	layoutCmd := &cobra.Command{
		Use:   "layout",
		Short: "Inspect and compute board layouts",
	}

	var showWidth int
	var showFile string
	showCmd := &cobra.Command{
		Use:   "show [board]",
		Short: "Draw a board once",
		Long: `Draw a board to stdout at the terminal width and exit

The board is read from the configured store, or from a board file with
--file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return showLayout(cmd.Context(), args, showFile, showWidth)
		},
	}
	showCmd.Flags().IntVar(&showWidth, "width", 0, "Width to draw at (defaults to the terminal width)")
	showCmd.Flags().StringVarP(&showFile, "file", "f", "", "Read the board from a TOML file")

	var (
		computeWidth int
		computeFile  string
		moveSpec     string
		resizeSpec   string
		write        bool
	)
	computeCmd := &cobra.Command{
		Use:   "compute [board]",
		Short: "Settle, move or resize a board and print the result",
		Long: `Run the layout solver on a board and print the resulting cells

Without --move or --resize the board is only settled: overlaps are pushed
apart and the result is compacted.`,
		Example: `  gridboard layout compute ops --move 3f2c:4,0
  gridboard layout compute --file board.toml --resize 3f2c:6x2 --width 60`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return computeLayout(cmd.Context(), args, computeOptions{
				file:   computeFile,
				width:  computeWidth,
				move:   moveSpec,
				resize: resizeSpec,
				write:  write,
			})
		},
	}
	computeCmd.Flags().IntVar(&computeWidth, "width", 0, "Terminal width that picks the breakpoint (defaults to wide)")
	computeCmd.Flags().StringVarP(&computeFile, "file", "f", "", "Read the board from a TOML file")
	computeCmd.Flags().StringVar(&moveSpec, "move", "", "Move a widget: id:x,y")
	computeCmd.Flags().StringVar(&resizeSpec, "resize", "", "Resize a widget: id:wxh")
	computeCmd.Flags().BoolVar(&write, "write", false, "Save the result back to the store")

	typesCmd := &cobra.Command{
		Use:   "types",
		Short: "List widget types and their size limits",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listTypes()
		},
	}

	layoutCmd.AddCommand(showCmd, computeCmd, typesCmd)
	return layoutCmd
}

// readBoard loads the named board, or the config's board, from the store
// or from a TOML file.
func readBoard(ctx context.Context, cfg *config.UserConfig, args []string, file string) (store.Board, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return store.Board{}, fmt.Errorf("read board: %w", err)
		}
		var b store.Board
		if err := toml.Unmarshal(data, &b); err != nil {
			return store.Board{}, fmt.Errorf("parse %s: %w", file, err)
		}
		return b, nil
	}

	name := cfg.Storage.Board
	if len(args) > 0 {
		name = args[0]
	}
	st, err := store.Open(ctx, cfg.Storage, log.New(io.Discard))
	if err != nil {
		return store.Board{}, fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = st.Close() }()
	return st.Load(ctx, name)
}

func showLayout(ctx context.Context, args []string, file string, width int) error {
	cfg := loadConfig(log.New(os.Stderr))
	b, err := readBoard(ctx, cfg, args, file)
	if err != nil {
		return err
	}
	if width <= 0 {
		w, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || w <= 0 {
			w = 100
		}
		width = w
	}
	fmt.Println(app.RenderStatic(cfg, b, width))
	return nil
}

type computeOptions struct {
	file   string
	width  int
	move   string
	resize string
	write  bool
}

func computeLayout(ctx context.Context, args []string, opts computeOptions) error {
	cfg := loadConfig(log.New(os.Stderr))
	b, err := readBoard(ctx, cfg, args, opts.file)
	if err != nil {
		return err
	}

	policy := cfg.Policy()
	bp := widget.Wide
	if opts.width > 0 {
		bp = policy.BreakpointFor(opts.width)
	}
	lc := layout.NewConfig(policy, bp, content.Lookup)

	var out []widget.Widget
	switch {
	case opts.move != "":
		id, x, y, perr := parseSpec(opts.move, ",")
		if perr != nil {
			return fmt.Errorf("--move: %w", perr)
		}
		out, err = layout.ComputeLayout(b.Widgets, id, layout.Point{X: x, Y: y}, lc)
	case opts.resize != "":
		id, w, h, perr := parseSpec(opts.resize, "x")
		if perr != nil {
			return fmt.Errorf("--resize: %w", perr)
		}
		out, err = layout.Resize(b.Widgets, id, layout.Size{W: w, H: h}, lc)
	default:
		out, err = layout.Settle(b.Widgets, lc)
	}
	if err != nil {
		return err
	}

	t := cliTable("ID", "Type", "X", "Y", "W", "H")
	for _, w := range out {
		r := w.LayoutFor(bp, lc.Columns)
		t.Row(w.ID, w.Type, strconv.Itoa(r.X), strconv.Itoa(r.Y), strconv.Itoa(r.W), strconv.Itoa(r.H))
	}
	fmt.Printf("%s: %d columns, %s compaction\n", bp, lc.Columns, policy.Compact)
	fmt.Println(t.Render())

	if opts.write {
		if opts.file != "" {
			return errors.New("--write saves to the store and cannot be used with --file")
		}
		st, err := store.Open(ctx, cfg.Storage, log.New(io.Discard))
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer func() { _ = st.Close() }()
		b.Widgets = out
		b.Origin = "cli"
		if err := st.Save(ctx, b); err != nil {
			return err
		}
		fmt.Printf("Saved %s\n", b.Name)
	}
	return nil
}

// parseSpec splits "id:a<sep>b".
func parseSpec(s, sep string) (string, int, int, error) {
	id, rest, ok := strings.Cut(s, ":")
	if !ok || id == "" {
		return "", 0, 0, fmt.Errorf("%q: want id:a%sb", s, sep)
	}
	as, bs, ok := strings.Cut(rest, sep)
	if !ok {
		return "", 0, 0, fmt.Errorf("%q: want id:a%sb", s, sep)
	}
	a, err := strconv.Atoi(strings.TrimSpace(as))
	if err != nil {
		return "", 0, 0, fmt.Errorf("%q: %w", s, err)
	}
	b, err := strconv.Atoi(strings.TrimSpace(bs))
	if err != nil {
		return "", 0, 0, fmt.Errorf("%q: %w", s, err)
	}
	return id, a, b, nil
}

func listTypes() error {
	t := cliTable("Type", "Title", "Width", "Height", "Default", "Description")
	for _, ty := range content.Types() {
		c := ty.Constraints.Normalize()
		t.Row(
			ty.Name,
			ty.Icon+" "+ty.Title,
			limits(c.MinW, c.MaxW),
			limits(c.MinH, c.MaxH),
			fmt.Sprintf("%dx%d", c.DefaultW, c.DefaultH),
			ty.Description,
		)
	}
	fmt.Println(t.Render())
	return nil
}

func limits(lo, hi int) string {
	if hi <= 0 {
		return strconv.Itoa(lo) + "+"
	}
	return fmt.Sprintf("%d-%d", lo, hi)
}
