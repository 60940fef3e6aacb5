package harness

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"lifegrid/src/model"
)

var ErrFormat = errors.New("harness: bad format")

//maxLineBytes limits one grid row, a row of model.MaxCells cells fits
var maxLineBytes = 2 * model.MaxCells

//Grid is one snapshot read from a test file
type Grid struct {
	Cols  int
	Rows  int
	Cells []int //row-major
}

func (g Grid) String() string {
	var b strings.Builder
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			if c != 0 {
				b.WriteByte(' ')
			}
			fmt.Fprint(&b, g.Cells[r*g.Cols+c])
		}
		b.WriteByte('\n')
	}
	return b.String()
}

//Parse reads the blank line separated snapshots
//the first one is the seed, each next one is the expected next generation
func Parse(r io.Reader) ([]Grid, error) {
	var (
		grids []Grid
		cur   *Grid
		line  int
	)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			cur = nil
			continue
		}
		if cur == nil {
			grids = append(grids, Grid{Cols: len(fields)})
			cur = &grids[len(grids)-1]
		}
		if len(fields) != cur.Cols {
			return nil, fmt.Errorf("%w: line %d: got %d cells, want %d", ErrFormat, line, len(fields), cur.Cols)
		}
		for _, f := range fields {
			switch f {
			case "0":
				cur.Cells = append(cur.Cells, model.Dead)
			case "1":
				cur.Cells = append(cur.Cells, model.Alive)
			default:
				return nil, fmt.Errorf("%w: line %d: bad cell %q", ErrFormat, line, f)
			}
		}
		cur.Rows++
	}
	if err := sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, fmt.Errorf("%w: line %d: %v", ErrFormat, line+1, err)
		}
		return nil, err
	}
	if len(grids) < 2 {
		return nil, fmt.Errorf("%w: got %d snapshots, want the seed and at least one generation", ErrFormat, len(grids))
	}
	for i, g := range grids[1:] {
		if g.Cols != grids[0].Cols || g.Rows != grids[0].Rows {
			return nil, fmt.Errorf("%w: snapshot %d is %d x %d, seed is %d x %d",
				ErrFormat, i+2, g.Cols, g.Rows, grids[0].Cols, grids[0].Rows)
		}
	}
	return grids, nil
}

//Diff derives the change set between two consecutive snapshots of the same size
func Diff(prev Grid, next Grid) (cs model.ChangeSet) {
	for i, p := range prev.Cells {
		n := next.Cells[i]
		switch {
		case p == model.Dead && n == model.Alive:
			cs.Born = append(cs.Born, i)
		case p == model.Alive && n == model.Dead:
			cs.Died = append(cs.Died, i)
		case p == model.Alive:
			cs.Survived = append(cs.Survived, i)
		}
	}
	return
}
