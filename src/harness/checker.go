package harness

import (
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/logrusorgru/aurora"

	"lifegrid/src/model"
)

//Model is the part of model.Model the checker drives
type Model interface {
	Init(pattern []int) error
	Next() model.ChangeSet
	Get(i int) (int, error)
	Size() int
}

//Factory creates an all-dead Model of the given size
type Factory func(cols int, rows int) (Model, error)

//ModelFactory returns the Factory building model.Model with the named engine
func ModelFactory(engine string) Factory {
	return func(cols int, rows int) (Model, error) {
		m, err := model.NewEngine(cols, rows, engine)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
}

//Mismatch describes the first generation which differs from the file
type Mismatch struct {
	Generation int
	What       string
	Expected   string
	Got        string
}

//Result is the outcome of checking one file
type Result struct {
	Name        string
	Generations int //generations in the file
	Checked     int //generations matched
	Mismatch    *Mismatch
	Err         error //the file could not be read or the model rejected it
}

func (r Result) Passed() bool {
	return r.Err == nil && r.Mismatch == nil
}

//Checker runs the test files against the models made by its Factory
type Checker struct {
	factory Factory
	out     io.Writer
	au      aurora.Aurora
}

func NewChecker(f Factory, out io.Writer, colors bool) *Checker {
	return &Checker{factory: f, out: out, au: aurora.NewAurora(colors)}
}

//Run checks every file, directories are expanded to their regular files
//the report is written to the output, returns the count of failed files
func (c *Checker) Run(paths []string) (failed int, err error) {
	files, err := Expand(paths)
	if err != nil {
		return 0, err
	}
	for _, f := range files {
		r := c.CheckFile(f)
		c.report(r)
		if !r.Passed() {
			failed++
		}
	}
	_, _ = fmt.Fprintf(c.out, "%d files, %d passed, %d failed\n", len(files), len(files)-failed, failed)
	return failed, nil
}

//CheckFile checks one file
func (c *Checker) CheckFile(path string) Result {
	f, err := os.Open(path)
	if err != nil {
		return Result{Name: path, Err: err}
	}
	defer f.Close()
	return c.Check(path, f)
}

//Check seeds the model with the first snapshot and compares every generation with the next ones
//stops at the first mismatch
func (c *Checker) Check(name string, r io.Reader) Result {
	res := Result{Name: name}
	grids, err := Parse(r)
	if err != nil {
		res.Err = err
		return res
	}
	res.Generations = len(grids) - 1

	m, err := c.factory(grids[0].Cols, grids[0].Rows)
	if err != nil {
		res.Err = err
		return res
	}
	if err := m.Init(grids[0].Cells); err != nil {
		res.Err = err
		return res
	}

	for gen := 1; gen < len(grids); gen++ {
		want := Diff(grids[gen-1], grids[gen])
		got := m.Next()
		if !got.Equal(want) {
			res.Mismatch = &Mismatch{gen, "change set", formatChangeSet(want), formatChangeSet(got)}
			return res
		}
		state, err := snapshot(m, grids[gen].Cols, grids[gen].Rows)
		if err != nil {
			res.Err = err
			return res
		}
		if !sameCells(state.Cells, grids[gen].Cells) {
			res.Mismatch = &Mismatch{gen, "state", grids[gen].String(), state.String()}
			return res
		}
		res.Checked++
	}
	return res
}

func (c *Checker) report(r Result) {
	switch {
	case r.Err != nil:
		_, _ = fmt.Fprintf(c.out, "%s %s: %v\n", c.au.Red("ERROR"), r.Name, r.Err)
	case r.Mismatch != nil:
		_, _ = fmt.Fprintf(c.out, "%s %s: generation %d: %s mismatch\n",
			c.au.Red("FAIL"), r.Name, r.Mismatch.Generation, r.Mismatch.What)
		_, _ = fmt.Fprintf(c.out, "%s\n%s", c.au.Green("expected:"), r.Mismatch.Expected)
		_, _ = fmt.Fprintf(c.out, "%s\n%s", c.au.Red("got:"), r.Mismatch.Got)
	default:
		_, _ = fmt.Fprintf(c.out, "%s %s (%d generations)\n", c.au.Green("PASS"), r.Name, r.Generations)
	}
}

//Expand replaces every directory with its regular files in name order
func Expand(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		fi, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !fi.IsDir() {
			files = append(files, p)
			continue
		}
		entries, err := ioutil.ReadDir(p)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.Mode().IsRegular() {
				files = append(files, filepath.Join(p, e.Name()))
			}
		}
	}
	return files, nil
}

//snapshot reads the whole model state back through Get
func snapshot(m Model, cols int, rows int) (Grid, error) {
	if m.Size() != cols*rows {
		return Grid{}, fmt.Errorf("model size is %d, want %d", m.Size(), cols*rows)
	}
	g := Grid{Cols: cols, Rows: rows, Cells: make([]int, m.Size())}
	for i := range g.Cells {
		v, err := m.Get(i)
		if err != nil {
			return g, err
		}
		g.Cells[i] = v
	}
	return g, nil
}

func sameCells(a []int, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func formatChangeSet(cs model.ChangeSet) string {
	cs.Sort()
	return fmt.Sprintf("born=%v died=%v survived=%v\n", cs.Born, cs.Died, cs.Survived)
}
