package view

import (
	"bytes"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jroimartin/gocui"
	"github.com/logrusorgru/aurora"

	"lifegrid/src/universe"
)

//gocui view names and layout constants
const (
	viewHeader   = "header"
	viewSidebar  = "sidebar"
	viewGrid     = "grid"
	viewKeys     = "keys"
	sidebarWidth = 30
	minHeight    = 16
	title        = "Conway's Game of Life on a torus"
)

type keyBinding struct {
	key   interface{}
	label string
	descr string
	view  string //"" binds globally
	do    func(v *gocui.View) error
}

//ConsoleUI is the interactive terminal viewer
type ConsoleUI struct {
	u          universe.Universe
	g          *gocui.Gui
	keys       []keyBinding
	template   int //index of the next template in universe.Templates
	liveFiller string
	bornFiller string
	deadFiller string
}

var modeDescr = map[universe.RunningState]string{
	universe.RunningStateManual:   aurora.Blue("waiting").String(),
	universe.RunningStateStep:     "stepping",
	universe.RunningStateRun:      aurora.Cyan("running").String(),
	universe.RunningStateFinished: aurora.Red("finished").String(),
}

func newFillers() ConsoleUI {
	return ConsoleUI{
		liveFiller: aurora.Green("█").BgBrightGreen().String(),
		bornFiller: aurora.Yellow("█").BgBrightYellow().String(),
		deadFiller: "░",
	}
}

//NewViewTerminal creates the terminal UI, panics if the terminal can't be initialized
func NewViewTerminal() *ConsoleUI {
	t := newFillers()
	g, err := gocui.NewGui(gocui.OutputNormal)
	if err != nil {
		log.Panicln(err)
	}
	g.Mouse = true
	t.g = g

	t.keys = []keyBinding{
		{gocui.KeyCtrlC, "^C", "Exit", "", func(*gocui.View) error { return gocui.ErrQuit }},
		{'n', "N", "Next generation", "", func(*gocui.View) error { t.u.Step(); return nil }},
		{'r', "R", "Run", "", func(*gocui.View) error { t.u.Run(); return nil }},
		{'s', "S", "Stop", "", func(*gocui.View) error { t.u.Stop(); return nil }},
		{'c', "C", "Clear", "", func(*gocui.View) error { t.u.Clear(); return nil }},
		{'w', "W", "Random", "", func(*gocui.View) error { t.u.SettleWithRandomData(); return nil }},
		{'t', "T", "Add template", "", t.addTemplate},
		{gocui.MouseLeft, "MOUSE", "Toggle the cell", viewGrid, t.toggleCell},
	}
	g.SetManagerFunc(t.layout)
	for _, kb := range t.keys {
		do := kb.do
		if err := g.SetKeybinding(kb.view, kb.key, gocui.ModNone, func(_ *gocui.Gui, v *gocui.View) error { return do(v) }); err != nil {
			log.Panicln(err)
		}
	}
	return &t
}

func (t *ConsoleUI) Register(u universe.Universe) {
	t.u = u
	universe.AddTemplates(u)
}

//Start runs the gocui main loop until the user quits
func (t *ConsoleUI) Start() {
	defer t.g.Close()
	if err := t.g.MainLoop(); err != nil && err != gocui.ErrQuit {
		log.Panicln(err)
	}
}

//Refresh may be called from any goroutine
func (t *ConsoleUI) Refresh() {
	a := t.u.Area()
	t.g.Update(func(g *gocui.Gui) error {
		t.drawGrid(g, a)
		t.drawSidebar(g)
		return nil
	})
}

func (t *ConsoleUI) addTemplate(_ *gocui.View) error {
	tmpl := universe.Templates[t.template]
	t.template = (t.template + 1) % len(universe.Templates)
	t.u.SettleTemplate(tmpl.Name)
	return nil
}

func (t *ConsoleUI) toggleCell(v *gocui.View) error {
	cx, cy := v.Cursor()
	t.u.InverseCell(cx, cy)
	return nil
}

func (t *ConsoleUI) drawGrid(g *gocui.Gui, a universe.Area) {
	v, err := g.View(viewGrid)
	if err != nil {
		return
	}
	v.Clear()
	maxW, maxH := v.Size()
	_, _ = fmt.Fprint(v, t.renderArea(a, maxW, maxH))
}

//renderArea draws the cells fitting into maxW x maxH, the cells born by the last generation are highlighted
func (t *ConsoleUI) renderArea(a universe.Area, maxW int, maxH int) string {
	crop := a.Width > maxW || a.Height > maxH

	var b bytes.Buffer
	for y := 0; y < a.Height && y < maxH; y++ {
		if y != 0 {
			b.WriteByte('\n')
		}
		if crop && y == maxH-1 {
			b.WriteString(aurora.Red("The grid is larger than the view").BgBlack().String())
			break
		}
		for x := 0; x < a.Width && x < maxW; x++ {
			switch {
			case a.Born[y*a.Width+x]:
				b.WriteString(t.bornFiller)
			case a.Alive(x, y):
				b.WriteString(t.liveFiller)
			default:
				b.WriteString(t.deadFiller)
			}
		}
	}
	return b.String()
}

func (t *ConsoleUI) drawSidebar(g *gocui.Gui) {
	v, err := g.View(viewSidebar)
	if err != nil {
		return
	}
	v.Clear()
	_, _ = fmt.Fprint(v, t.renderSidebar(t.u.Options(), t.u.Status()))
}

func (t *ConsoleUI) renderSidebar(o universe.Options, s universe.Status) string {
	var b strings.Builder
	props := []struct {
		name  string
		value interface{}
	}{
		{"Grid", fmt.Sprintf("%v x %v", o.Width, o.Height)},
		{"Engine", o.Engine},
		{"Interval", o.Interval},
		{"Max steps", o.MaxSteps},
		{"", nil},
		{"Generation", s.IterationNum},
		{"Mode", modeDescr[s.RunningMode]},
		{"Live", s.LiveCells},
		{"Born", s.Born},
		{"Died", s.Died},
		{"Survived", s.Survived},
		{"Step time", s.IterationTime.Round(time.Microsecond)},
		{"", nil},
		{"Next template", universe.Templates[t.template].Name},
	}
	for _, p := range props {
		if p.name == "" {
			b.WriteByte('\n')
			continue
		}
		fmt.Fprintf(&b, " %s: %v\n", aurora.Green(p.name), p.value)
	}
	return b.String()
}

func (t *ConsoleUI) renderKeys() string {
	parts := make([]string, 0, len(t.keys))
	for _, k := range t.keys {
		parts = append(parts, aurora.Green(k.label).String()+": "+k.descr)
	}
	return "KEYS: " + strings.Join(parts, ", ")
}

func (t *ConsoleUI) layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()

	if maxY < minHeight || maxX < len(title) {
		for _, name := range []string{viewSidebar, viewGrid, viewKeys} {
			_ = g.DeleteView(name)
		}
		return t.header(g, maxX, maxY, "Terminal is too small")
	}
	if err := t.header(g, maxX, 3, title); err != nil {
		return err
	}

	if v, err := g.SetView(viewSidebar, 0, 3, sidebarWidth, maxY-3); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "Status"
		t.drawSidebar(g)
	}

	if v, err := g.SetView(viewGrid, sidebarWidth+1, 3, maxX-1, maxY-3); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "Grid"
	}
	t.drawGrid(g, t.u.Area())

	if v, err := g.SetView(viewKeys, -1, maxY-3, maxX, maxY-1); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Frame = false
		_, _ = fmt.Fprintln(v, t.renderKeys())
	}
	return nil
}

//header draws the centered text on the colored band of the given height
func (t *ConsoleUI) header(g *gocui.Gui, maxX int, height int, text string) error {
	v, err := g.SetView(viewHeader, -1, -1, maxX+1, height)
	if err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Frame = false
		v.BgColor = gocui.ColorCyan
		v.FgColor = gocui.ColorBlack
	}
	v.Clear()
	pad := 0
	if maxX > len(text) {
		pad = (maxX - len(text)) / 2
	}
	_, _ = fmt.Fprint(v, strings.Repeat("\n", height/2)+strings.Repeat(" ", pad)+text)
	return nil
}
