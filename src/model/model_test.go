package model

import (
	"errors"
	"math/rand"
	"reflect"
	"sort"
	"testing"
)

func newModel(t *testing.T, engine string, cols int, rows int, alive ...int) *Model {
	t.Helper()
	m, err := NewEngine(cols, rows, engine)
	if err != nil {
		t.Fatalf("NewEngine(%d, %d, %q): %v", cols, rows, engine, err)
	}
	p := make([]int, cols*rows)
	for _, i := range alive {
		p[i] = Alive
	}
	if err := m.Init(p); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return m
}

func sorted(v []int) []int {
	s := append([]int{}, v...)
	sort.Ints(s)
	return s
}

func checkChangeSet(t *testing.T, got ChangeSet, born []int, died []int, survived []int) {
	t.Helper()
	if !reflect.DeepEqual(sorted(got.Born), sorted(born)) {
		t.Errorf("born: got %v, want %v", got.Born, born)
	}
	if !reflect.DeepEqual(sorted(got.Died), sorted(died)) {
		t.Errorf("died: got %v, want %v", got.Died, died)
	}
	if !reflect.DeepEqual(sorted(got.Survived), sorted(survived)) {
		t.Errorf("survived: got %v, want %v", got.Survived, survived)
	}
}

func TestNewInvalidDimension(t *testing.T) {
	for _, d := range [][2]int{{0, 3}, {3, 0}, {-1, 3}, {3, -5}} {
		m, err := New(d[0], d[1])
		if !errors.Is(err, ErrInvalidDimension) {
			t.Errorf("New(%d, %d): got err %v, want ErrInvalidDimension", d[0], d[1], err)
		}
		if m != nil {
			t.Errorf("New(%d, %d): got a partial model", d[0], d[1])
		}
	}
}

func TestNewTooLarge(t *testing.T) {
	maxInt := int(^uint(0) >> 1)
	for _, d := range [][2]int{{maxInt, 2}, {2, maxInt}, {MaxCells + 1, 1}, {MaxCells/2 + 1, 2}} {
		if _, err := New(d[0], d[1]); !errors.Is(err, ErrInvalidDimension) {
			t.Errorf("New(%d, %d): got err %v, want ErrInvalidDimension", d[0], d[1], err)
		}
	}
}

func TestNewUnknownEngine(t *testing.T) {
	if _, err := NewEngine(3, 3, "quantum"); !errors.Is(err, ErrUnknownEngine) {
		t.Fatalf("got err %v, want ErrUnknownEngine", err)
	}
}

func TestNewAllDead(t *testing.T) {
	m, err := New(4, 3)
	if err != nil {
		t.Fatal(err)
	}
	if m.Size() != 12 || m.Cols() != 4 || m.Rows() != 3 {
		t.Fatalf("got size %d (%d x %d), want 12 (4 x 3)", m.Size(), m.Cols(), m.Rows())
	}
	if m.LiveCells() != 0 {
		t.Fatalf("got %d live cells, want 0", m.LiveCells())
	}
	cs := m.Next()
	checkChangeSet(t, cs, nil, nil, nil)
}

func TestInitRoundTrip(t *testing.T) {
	pattern := []int{
		0, 1, 1, 0, 1,
		1, 0, 0, 0, 0,
		0, 0, 1, 1, 1,
	}
	m, _ := New(5, 3)
	if err := m.Init(pattern); err != nil {
		t.Fatal(err)
	}
	for i, want := range pattern {
		got, err := m.Get(i)
		if err != nil {
			t.Fatalf("Get(%d): %v", i, err)
		}
		if got != want {
			t.Errorf("Get(%d): got %d, want %d", i, got, want)
		}
	}
}

func TestInitRejectsBadPattern(t *testing.T) {
	seed := []int{1, 0, 0, 1}
	tests := []struct {
		name    string
		pattern []int
		err     error
	}{
		{"short", []int{1, 1, 1}, ErrInvalidPatternLength},
		{"long", []int{1, 1, 1, 1, 1}, ErrInvalidPatternLength},
		{"nil", nil, ErrInvalidPatternLength},
		{"two", []int{0, 1, 2, 1}, ErrInvalidCellValue},
		{"negative", []int{0, 1, 1, -1}, ErrInvalidCellValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := New(2, 2)
			if err := m.Init(seed); err != nil {
				t.Fatal(err)
			}
			if err := m.Init(tt.pattern); !errors.Is(err, tt.err) {
				t.Fatalf("got err %v, want %v", err, tt.err)
			}
			if got := m.Cells(); !reflect.DeepEqual(got, seed) {
				t.Fatalf("grid changed by a rejected Init: got %v, want %v", got, seed)
			}
		})
	}
}

func TestGetIndexOutOfRange(t *testing.T) {
	m, _ := New(3, 2)
	for _, i := range []int{-1, 6, 100} {
		if _, err := m.Get(i); !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("Get(%d): got err %v, want ErrIndexOutOfRange", i, err)
		}
	}
}

func TestNeighborTableWrapsCorner(t *testing.T) {
	//(0,0) on a 3x3 torus touches every other cell
	got := sorted(neighborTable(3, 3)[0:8])
	want := []int{1, 2, 3, 4, 5, 6, 7, 8}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestNeighborTableInterior(t *testing.T) {
	//(2,2) on a 5x5 grid
	got := sorted(neighborTable(5, 5)[12*8 : 12*8+8])
	want := []int{6, 7, 8, 11, 13, 16, 17, 18}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestCellNextState(t *testing.T) {
	for n := 0; n <= 8; n++ {
		wantLive := uint8(Dead)
		if n == 2 || n == 3 {
			wantLive = Alive
		}
		if got := cellNextState(Alive, n); got != wantLive {
			t.Errorf("alive with %d neighbors: got %d, want %d", n, got, wantLive)
		}
		wantDead := uint8(Dead)
		if n == 3 {
			wantDead = Alive
		}
		if got := cellNextState(Dead, n); got != wantDead {
			t.Errorf("dead with %d neighbors: got %d, want %d", n, got, wantDead)
		}
	}
}

func TestEngines(t *testing.T) {
	if got := Engines(); !reflect.DeepEqual(got, []string{EngineBuffer, EngineDelta}) {
		t.Fatalf("got %v", got)
	}
}

func TestBlock(t *testing.T) {
	for _, e := range Engines() {
		for _, size := range []int{4, 6} {
			m := newModel(t, e, size, size)
			block := []int{size + 1, size + 2, 2*size + 1, 2*size + 2}
			p := make([]int, size*size)
			for _, i := range block {
				p[i] = Alive
			}
			if err := m.Init(p); err != nil {
				t.Fatal(err)
			}
			cs := m.Next()
			checkChangeSet(t, cs, nil, nil, block)
			if !cs.Empty() {
				t.Errorf("%s %dx%d: block reported changes", e, size, size)
			}
			if got := m.Cells(); !reflect.DeepEqual(got, p) {
				t.Errorf("%s %dx%d: block moved: %v", e, size, size, got)
			}
		}
	}
}

func TestBlinker(t *testing.T) {
	for _, e := range Engines() {
		t.Run(e, func(t *testing.T) {
			m := newModel(t, e, 5, 5, 11, 12, 13)
			initial := m.Cells()

			cs := m.Next()
			checkChangeSet(t, cs, []int{7, 17}, []int{11, 13}, []int{12})
			for _, i := range []int{7, 12, 17} {
				if v, _ := m.Get(i); v != Alive {
					t.Errorf("cell %d: got %d, want alive", i, v)
				}
			}

			cs = m.Next()
			checkChangeSet(t, cs, []int{11, 13}, []int{7, 17}, []int{12})
			if got := m.Cells(); !reflect.DeepEqual(got, initial) {
				t.Fatalf("generation 2: got %v, want %v", got, initial)
			}
		})
	}
}

func TestBlinkerAcrossEdge(t *testing.T) {
	for _, e := range Engines() {
		t.Run(e, func(t *testing.T) {
			//vertical line in column 0 over rows 4, 0, 1
			m := newModel(t, e, 5, 5, 20, 0, 5)
			cs := m.Next()
			//horizontal line in row 0 over columns 4, 0, 1
			checkChangeSet(t, cs, []int{1, 4}, []int{5, 20}, []int{0})
		})
	}
}

func TestCornerBirthFromWrappedNeighbors(t *testing.T) {
	for _, e := range Engines() {
		//(2,2), (2,0) and (0,2) are all wrapped neighbors of (0,0)
		m := newModel(t, e, 3, 3, 8, 6, 2)
		cs := m.Next()
		if v, _ := m.Get(0); v != Alive {
			t.Errorf("%s: corner not born, changes %+v", e, cs)
		}
	}
}

func TestSingleCellDies(t *testing.T) {
	for _, e := range Engines() {
		m := newModel(t, e, 3, 3, 0)
		cs := m.Next()
		checkChangeSet(t, cs, nil, []int{0}, nil)
		if m.LiveCells() != 0 {
			t.Errorf("%s: got %d live cells", e, m.LiveCells())
		}
	}
}

func randomPattern(r *rand.Rand, size int) []int {
	p := make([]int, size)
	for i := range p {
		p[i] = r.Intn(2)
	}
	return p
}

func TestDeterminismAcrossEngines(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	const cols, rows = 17, 11
	p := randomPattern(r, cols*rows)
	models := make([]*Model, 0)
	for _, e := range append(Engines(), EngineBuffer) {
		m := newModel(t, e, cols, rows)
		if err := m.Init(p); err != nil {
			t.Fatal(err)
		}
		models = append(models, m)
	}
	for gen := 1; gen <= 30; gen++ {
		first := models[0].Next()
		for _, m := range models[1:] {
			cs := m.Next()
			if !cs.Equal(first) {
				t.Fatalf("generation %d: %s reported %+v, %s reported %+v", gen, m.Engine(), cs, models[0].Engine(), first)
			}
			if !reflect.DeepEqual(m.Cells(), models[0].Cells()) {
				t.Fatalf("generation %d: %s and %s grids differ", gen, m.Engine(), models[0].Engine())
			}
		}
	}
}

func TestChangeSetConsistency(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for _, e := range Engines() {
		m := newModel(t, e, 13, 9)
		if err := m.Init(randomPattern(r, m.Size())); err != nil {
			t.Fatal(err)
		}
		for gen := 1; gen <= 20; gen++ {
			prev := m.Cells()
			cs := m.Next()
			seen := map[int]string{}
			check := func(set string, idx []int, before int, after int) {
				for _, i := range idx {
					if other, ok := seen[i]; ok {
						t.Fatalf("%s gen %d: index %d in both %s and %s", e, gen, i, other, set)
					}
					seen[i] = set
					if got, _ := m.Get(i); prev[i] != before || got != after {
						t.Fatalf("%s gen %d: %s index %d went %d -> %d", e, gen, set, i, prev[i], got)
					}
				}
			}
			check("born", cs.Born, Dead, Alive)
			check("died", cs.Died, Alive, Dead)
			check("survived", cs.Survived, Alive, Alive)
			for i := 0; i < m.Size(); i++ {
				if _, ok := seen[i]; ok {
					continue
				}
				if got, _ := m.Get(i); prev[i] != Dead || got != Dead {
					t.Fatalf("%s gen %d: unreported index %d went %d -> %d", e, gen, i, prev[i], got)
				}
			}
		}
	}
}

func BenchmarkNext(b *testing.B) {
	r := rand.New(rand.NewSource(1))
	p := randomPattern(r, 200*200)
	for _, e := range Engines() {
		b.Run(e, func(b *testing.B) {
			m, _ := NewEngine(200, 200, e)
			_ = m.Init(p)
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				m.Next()
			}
		})
	}
}
