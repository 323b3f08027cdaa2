package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bnema/stilch/internal/geom"
	"github.com/bnema/stilch/internal/layout"
	"github.com/bnema/stilch/internal/registry"
)

// Layout parses spec §6's textual config grammar: top-level `bindsym`
// statements and brace-delimited `output`/`virtual_output` blocks. No
// example repo in the retrieval pack parses a line-oriented block
// grammar like this (the closest library, Viper, only reads
// TOML/YAML/JSON/INI — none of which spec §6's grammar is), so this is
// a hand-written recursive-descent-free line tokenizer in the style of
// i3/sway's own config parser: bufio.Scanner plus strings.Fields, one
// statement per line, braces tracked by a simple depth counter.
type Layout struct {
	Binds          []Bind
	Outputs        []OutputSpec
	VirtualOutputs []VirtualOutputSpec
}

// Bind is one `bindsym <mods>+<key> <command...>` statement.
type Bind struct {
	Mods    []string
	Key     string
	Command Command
}

// CommandKind enumerates the bindsym command vocabulary of spec §6.
type CommandKind int

const (
	CmdExec CommandKind = iota
	CmdKill
	CmdFocus
	CmdMove
	CmdWorkspace
	CmdMoveToWorkspace
	CmdFullscreen
	CmdFloatingToggle
	CmdSplit
	CmdLayout
	CmdMoveWorkspaceToOutput
	CmdReload
	CmdExit
)

// Command is a parsed bindsym action. Only the fields relevant to Kind
// are populated.
type Command struct {
	Kind CommandKind

	Exec string // CmdExec

	Direction geom.Direction // CmdFocus, CmdMove, CmdMoveWorkspaceToOutput

	WorkspaceArg string // CmdWorkspace: a number, "prev" or "next"
	WorkspaceNum int    // CmdMoveToWorkspace

	FullscreenMode    registry.FullscreenMode // CmdFullscreen
	HasFullscreenMode bool

	Split     geom.SplitDirection // CmdSplit; AutoSplit set when "auto" was named
	AutoSplit bool

	ContainerLayout   layout.ContainerLayout // CmdLayout
	ToggleSplitLayout bool                   // CmdLayout "toggle_split"
}

// OutputSpec is one `output <name> { ... }` block.
type OutputSpec struct {
	Name                  string
	Scale                 float64
	HasScale              bool
	PositionX, PositionY  int32
	HasPosition           bool
	Split                 geom.SplitDirection
	SplitCount            int
	HasSplit              bool
	PhysicalSizeMM        struct{ W, H float64 }
	HasPhysicalSizeMM     bool
	PhysicalPositionMM    struct{ X, Y float64 }
	HasPhysicalPositionMM bool
}

// VirtualOutputSpec is one `virtual_output <name> { ... }` block.
type VirtualOutputSpec struct {
	Name    string
	Outputs []string
	Region  geom.Rect
	HasRegion bool
}

// ParseLayout reads a full config file. A line's leading/trailing
// whitespace is trimmed; blank lines and lines starting with `#` are
// skipped, matching the comment convention of every textual config the
// retrieval pack's sway-adjacent window manager configs use.
func ParseLayout(r io.Reader) (*Layout, error) {
	scanner := bufio.NewScanner(r)
	var lines []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: read error: %w", err)
	}

	out := &Layout{}
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "bindsym":
			bind, err := parseBindsym(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("config: line %q: %w", line, err)
			}
			out.Binds = append(out.Binds, bind)

		case "output":
			block, consumed, err := collectBlock(lines[i:])
			if err != nil {
				return nil, fmt.Errorf("config: line %q: %w", line, err)
			}
			spec, err := parseOutputBlock(fields[1:], block)
			if err != nil {
				return nil, fmt.Errorf("config: output block for %q: %w", line, err)
			}
			out.Outputs = append(out.Outputs, spec)
			i += consumed - 1

		case "virtual_output":
			block, consumed, err := collectBlock(lines[i:])
			if err != nil {
				return nil, fmt.Errorf("config: line %q: %w", line, err)
			}
			spec, err := parseVirtualOutputBlock(fields[1:], block)
			if err != nil {
				return nil, fmt.Errorf("config: virtual_output block for %q: %w", line, err)
			}
			out.VirtualOutputs = append(out.VirtualOutputs, spec)
			i += consumed - 1

		default:
			return nil, fmt.Errorf("config: unknown directive %q", fields[0])
		}
	}
	return out, nil
}

// collectBlock reads a `name { ... }` block starting at lines[0] (which
// must end in "{") through its matching closing "}", returning the
// interior lines and how many lines of the input were consumed.
func collectBlock(lines []string) ([]string, int, error) {
	first := lines[0]
	if !strings.HasSuffix(first, "{") {
		return nil, 0, fmt.Errorf("expected opening brace")
	}
	for i := 1; i < len(lines); i++ {
		if lines[i] == "}" {
			return lines[1:i], i + 1, nil
		}
	}
	return nil, 0, fmt.Errorf("unterminated block")
}

func parseBindsym(fields []string) (Bind, error) {
	if len(fields) < 2 {
		return Bind{}, fmt.Errorf("bindsym needs a key combo and a command")
	}
	combo := strings.Split(fields[0], "+")
	if len(combo) == 0 {
		return Bind{}, fmt.Errorf("empty key combo")
	}
	key := combo[len(combo)-1]
	mods := combo[:len(combo)-1]

	cmd, err := parseCommand(fields[1:])
	if err != nil {
		return Bind{}, err
	}
	return Bind{Mods: mods, Key: key, Command: cmd}, nil
}

func parseCommand(fields []string) (Command, error) {
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("empty command")
	}

	switch fields[0] {
	case "exec":
		return Command{Kind: CmdExec, Exec: strings.Join(fields[1:], " ")}, nil

	case "kill":
		return Command{Kind: CmdKill}, nil

	case "focus":
		dir, ok := directionArg(fields, 1)
		if !ok {
			return Command{}, fmt.Errorf("focus needs a direction")
		}
		return Command{Kind: CmdFocus, Direction: dir}, nil

	case "move":
		if len(fields) >= 3 && fields[1] == "to" && fields[2] == "workspace" {
			n, err := workspaceNumArg(fields, 3)
			if err != nil {
				return Command{}, err
			}
			return Command{Kind: CmdMoveToWorkspace, WorkspaceNum: n}, nil
		}
		if len(fields) >= 4 && fields[1] == "workspace" && fields[2] == "to" && fields[3] == "output" {
			dir, ok := directionArg(fields, 4)
			if !ok {
				return Command{}, fmt.Errorf("move_workspace_to_output needs a direction")
			}
			return Command{Kind: CmdMoveWorkspaceToOutput, Direction: dir}, nil
		}
		dir, ok := directionArg(fields, 1)
		if !ok {
			return Command{}, fmt.Errorf("move needs a direction")
		}
		return Command{Kind: CmdMove, Direction: dir}, nil

	case "move_workspace_to_output":
		dir, ok := directionArg(fields, 1)
		if !ok {
			return Command{}, fmt.Errorf("move_workspace_to_output needs a direction")
		}
		return Command{Kind: CmdMoveWorkspaceToOutput, Direction: dir}, nil

	case "workspace":
		if len(fields) < 2 {
			return Command{}, fmt.Errorf("workspace needs an argument")
		}
		return Command{Kind: CmdWorkspace, WorkspaceArg: fields[1]}, nil

	case "fullscreen":
		if len(fields) < 2 {
			return Command{Kind: CmdFullscreen}, nil
		}
		mode, ok := fullscreenModeArg(fields[1])
		if !ok {
			return Command{}, fmt.Errorf("unknown fullscreen mode %q", fields[1])
		}
		return Command{Kind: CmdFullscreen, FullscreenMode: mode, HasFullscreenMode: true}, nil

	case "floating":
		if len(fields) < 2 || fields[1] != "toggle" {
			return Command{}, fmt.Errorf("floating: only \"toggle\" is supported")
		}
		return Command{Kind: CmdFloatingToggle}, nil

	case "split":
		if len(fields) < 2 {
			return Command{}, fmt.Errorf("split needs h, v or auto")
		}
		switch fields[1] {
		case "h":
			return Command{Kind: CmdSplit, Split: geom.Horizontal}, nil
		case "v":
			return Command{Kind: CmdSplit, Split: geom.Vertical}, nil
		case "auto":
			return Command{Kind: CmdSplit, AutoSplit: true}, nil
		default:
			return Command{}, fmt.Errorf("unknown split mode %q", fields[1])
		}

	case "layout":
		if len(fields) < 2 {
			return Command{}, fmt.Errorf("layout needs an argument")
		}
		switch fields[1] {
		case "tabbed":
			return Command{Kind: CmdLayout, ContainerLayout: layout.Tabbed}, nil
		case "stacking":
			return Command{Kind: CmdLayout, ContainerLayout: layout.Stacked}, nil
		case "splith":
			return Command{Kind: CmdLayout, ContainerLayout: layout.SplitH}, nil
		case "splitv":
			return Command{Kind: CmdLayout, ContainerLayout: layout.SplitV}, nil
		case "toggle_split":
			return Command{Kind: CmdLayout, ToggleSplitLayout: true}, nil
		default:
			return Command{}, fmt.Errorf("unknown layout mode %q", fields[1])
		}

	case "reload":
		return Command{Kind: CmdReload}, nil

	case "exit":
		return Command{Kind: CmdExit}, nil

	default:
		return Command{}, fmt.Errorf("unknown command %q", fields[0])
	}
}

func directionArg(fields []string, at int) (geom.Direction, bool) {
	if at >= len(fields) {
		return 0, false
	}
	return geom.ParseDirection(fields[at])
}

func workspaceNumArg(fields []string, at int) (int, error) {
	if at >= len(fields) {
		return 0, fmt.Errorf("missing workspace number")
	}
	n, err := strconv.Atoi(fields[at])
	if err != nil {
		return 0, fmt.Errorf("invalid workspace number %q", fields[at])
	}
	return n, nil
}

func fullscreenModeArg(s string) (registry.FullscreenMode, bool) {
	switch s {
	case "container":
		return registry.FullscreenContainer, true
	case "virtual_output":
		return registry.FullscreenVirtualOutput, true
	case "physical_output":
		return registry.FullscreenPhysicalOutput, true
	default:
		return 0, false
	}
}

func parseOutputBlock(header []string, body []string) (OutputSpec, error) {
	if len(header) < 1 {
		return OutputSpec{}, fmt.Errorf("output needs a name")
	}
	spec := OutputSpec{Name: strings.TrimSuffix(header[0], "{")}

	for _, line := range body {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		var err error
		switch fields[0] {
		case "scale":
			spec.Scale, err = parseFloatArg(fields, 1)
			spec.HasScale = err == nil
		case "position":
			spec.PositionX, spec.PositionY, err = parseIntPairArg(fields, 1)
			spec.HasPosition = err == nil
		case "split":
			if len(fields) < 3 {
				return OutputSpec{}, fmt.Errorf("split needs an axis and a count")
			}
			switch fields[1] {
			case "h":
				spec.Split = geom.Horizontal
			case "v":
				spec.Split = geom.Vertical
			default:
				return OutputSpec{}, fmt.Errorf("unknown split axis %q", fields[1])
			}
			n, convErr := strconv.Atoi(fields[2])
			if convErr != nil {
				return OutputSpec{}, fmt.Errorf("invalid split count %q", fields[2])
			}
			spec.SplitCount = n
			spec.HasSplit = true
		case "physical_size_mm":
			spec.PhysicalSizeMM.W, spec.PhysicalSizeMM.H, err = parseFloatPairArg(fields, 1)
			spec.HasPhysicalSizeMM = err == nil
		case "physical_position_mm":
			spec.PhysicalPositionMM.X, spec.PhysicalPositionMM.Y, err = parseFloatPairArg(fields, 1)
			spec.HasPhysicalPositionMM = err == nil
		default:
			return OutputSpec{}, fmt.Errorf("unknown output option %q", fields[0])
		}
		if err != nil {
			return OutputSpec{}, err
		}
	}
	return spec, nil
}

func parseVirtualOutputBlock(header []string, body []string) (VirtualOutputSpec, error) {
	if len(header) < 1 {
		return VirtualOutputSpec{}, fmt.Errorf("virtual_output needs a name")
	}
	spec := VirtualOutputSpec{Name: strings.TrimSuffix(header[0], "{")}

	for _, line := range body {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "outputs":
			spec.Outputs = append([]string(nil), fields[1:]...)
		case "region":
			if len(fields) != 5 {
				return VirtualOutputSpec{}, fmt.Errorf("region needs x y w h")
			}
			x, err := strconv.Atoi(fields[1])
			if err != nil {
				return VirtualOutputSpec{}, fmt.Errorf("invalid region x %q", fields[1])
			}
			y, err := strconv.Atoi(fields[2])
			if err != nil {
				return VirtualOutputSpec{}, fmt.Errorf("invalid region y %q", fields[2])
			}
			w, err := strconv.Atoi(fields[3])
			if err != nil {
				return VirtualOutputSpec{}, fmt.Errorf("invalid region w %q", fields[3])
			}
			h, err := strconv.Atoi(fields[4])
			if err != nil {
				return VirtualOutputSpec{}, fmt.Errorf("invalid region h %q", fields[4])
			}
			spec.Region = geom.Rect{X: int32(x), Y: int32(y), W: int32(w), H: int32(h)}
			spec.HasRegion = true
		default:
			return VirtualOutputSpec{}, fmt.Errorf("unknown virtual_output option %q", fields[0])
		}
	}
	return spec, nil
}

func parseFloatArg(fields []string, at int) (float64, error) {
	if at >= len(fields) {
		return 0, fmt.Errorf("missing value")
	}
	return strconv.ParseFloat(fields[at], 64)
}

func parseIntPairArg(fields []string, at int) (int32, int32, error) {
	if at+1 >= len(fields) {
		return 0, 0, fmt.Errorf("missing pair")
	}
	x, err := strconv.Atoi(fields[at])
	if err != nil {
		return 0, 0, err
	}
	y, err := strconv.Atoi(fields[at+1])
	if err != nil {
		return 0, 0, err
	}
	return int32(x), int32(y), nil
}

func parseFloatPairArg(fields []string, at int) (float64, float64, error) {
	if at+1 >= len(fields) {
		return 0, 0, fmt.Errorf("missing pair")
	}
	x, err := strconv.ParseFloat(fields[at], 64)
	if err != nil {
		return 0, 0, err
	}
	y, err := strconv.ParseFloat(fields[at+1], 64)
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}
