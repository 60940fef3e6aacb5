package model

import (
	"errors"
	"fmt"
	"sort"
)

//Cell states
const (
	Dead  = 0
	Alive = 1
)

//EngineBuffer and EngineDelta are the names of the generation-advance strategies
const (
	EngineBuffer = "buffer"
	EngineDelta  = "delta"
	DefEngine    = EngineBuffer
)

//MaxCells limits rows*cols, the neighbor table takes 8 ints per cell
const MaxCells = 1 << 24

var (
	ErrInvalidDimension     = errors.New("model: invalid dimension")
	ErrInvalidPatternLength = errors.New("model: invalid pattern length")
	ErrInvalidCellValue     = errors.New("model: invalid cell value")
	ErrIndexOutOfRange      = errors.New("model: index out of range")
	ErrUnknownEngine        = errors.New("model: unknown engine")
)

//engines maps the engine name to the constructor of its next func
var engines = map[string]func(m *Model) func() ChangeSet{
	EngineBuffer: func(m *Model) func() ChangeSet {
		m.buff = make([]uint8, len(m.cells))
		return m.bufferNext
	},
	EngineDelta: func(m *Model) func() ChangeSet {
		return m.deltaNext
	},
}

//Model is the finite toroidal grid of cells
//it is not safe for concurrent use
type Model struct {
	cols      int
	rows      int
	engine    string
	cells     []uint8
	buff      []uint8
	neighbors []int //8 wrapped neighbor indices per cell
	next      func() ChangeSet
}

//New creates the Model with all cells dead using the default engine
func New(cols int, rows int) (*Model, error) {
	return NewEngine(cols, rows, DefEngine)
}

//NewEngine creates the Model with all cells dead using the named engine
func NewEngine(cols int, rows int, engine string) (*Model, error) {
	if cols <= 0 || rows <= 0 || cols > MaxCells/rows {
		return nil, fmt.Errorf("%w: %d x %d", ErrInvalidDimension, cols, rows)
	}
	newNext, ok := engines[engine]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, engine)
	}
	m := &Model{
		cols:   cols,
		rows:   rows,
		engine: engine,
		cells:  make([]uint8, cols*rows),
	}
	m.neighbors = neighborTable(cols, rows)
	m.next = newNext(m)
	return m, nil
}

//Engines returns the sorted list of the known engine names
func Engines() []string {
	names := make([]string, 0, len(engines))
	for k := range engines {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

//Init overwrites the whole grid with pattern (row-major, rows*cols values of 0 or 1)
//the grid is left untouched when the pattern is rejected
func (m *Model) Init(pattern []int) error {
	if len(pattern) != len(m.cells) {
		return fmt.Errorf("%w: got %d, want %d", ErrInvalidPatternLength, len(pattern), len(m.cells))
	}
	for i, v := range pattern {
		if v != Dead && v != Alive {
			return fmt.Errorf("%w: %d at index %d", ErrInvalidCellValue, v, i)
		}
	}
	for i, v := range pattern {
		m.cells[i] = uint8(v)
	}
	return nil
}

//Next advances the grid by one generation and reports the changes
func (m *Model) Next() ChangeSet {
	return m.next()
}

//Get returns the state of the cell at flat index i
func (m *Model) Get(i int) (int, error) {
	if i < 0 || i >= len(m.cells) {
		return 0, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, i, len(m.cells))
	}
	return int(m.cells[i]), nil
}

//Size returns rows*cols
func (m *Model) Size() int {
	return len(m.cells)
}

func (m *Model) Cols() int {
	return m.cols
}

func (m *Model) Rows() int {
	return m.rows
}

func (m *Model) Engine() string {
	return m.engine
}

//Cells returns a copy of the grid
func (m *Model) Cells() []int {
	c := make([]int, len(m.cells))
	for i, v := range m.cells {
		c[i] = int(v)
	}
	return c
}

//LiveCells returns the count of live cells
func (m *Model) LiveCells() int {
	n := 0
	for _, v := range m.cells {
		n += int(v)
	}
	return n
}

//bufferNext computes the whole next generation into the second buffer and swaps the buffers
func (m *Model) bufferNext() (cs ChangeSet) {
	for i, v := range m.cells {
		nextState := cellNextState(v, m.liveNeighbors(i))
		m.buff[i] = nextState
		cs.add(i, v, nextState)
	}
	m.cells, m.buff = m.buff, m.cells
	return
}

//deltaNext computes the ChangeSet against the current grid first, then applies it in place
func (m *Model) deltaNext() (cs ChangeSet) {
	for i, v := range m.cells {
		cs.add(i, v, cellNextState(v, m.liveNeighbors(i)))
	}
	for _, i := range cs.Born {
		m.cells[i] = Alive
	}
	for _, i := range cs.Died {
		m.cells[i] = Dead
	}
	return
}

func (m *Model) liveNeighbors(i int) (n int) {
	for _, j := range m.neighbors[i*8 : i*8+8] {
		n += int(m.cells[j])
	}
	return
}

//cellNextState applies the survival/birth rule
func cellNextState(state uint8, liveNeighbors int) uint8 {
	if liveNeighbors == 3 || (liveNeighbors == 2 && state == Alive) {
		return Alive
	}
	return Dead
}

//neighborTable builds the flat table of the 8 wrapped neighbor indices of every cell
func neighborTable(cols int, rows int) []int {
	t := make([]int, 0, cols*rows*8)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			for dr := -1; dr < 2; dr++ {
				for dc := -1; dc < 2; dc++ {
					//skip my position
					if dr == 0 && dc == 0 {
						continue
					}
					nr := (r + dr + rows) % rows
					nc := (c + dc + cols) % cols
					t = append(t, nr*cols+nc)
				}
			}
		}
	}
	return t
}
