package universe

import (
	"math/rand"
	"sync"
	"time"

	"lifegrid/src/model"
)

//ModelUniverse drives one model.Model
//implements Universe interface
//all the commands are executed one by one by the main loop goroutine
type ModelUniverse struct {
	options Options
	state   struct {
		Status
		sync.Mutex
	}
	grid struct {
		*model.Model
		changes model.ChangeSet
		sync.Mutex
	}
	templates struct {
		m map[string]Template
		sync.Mutex
	}
	stateCh   chan Status
	views     struct {
		list []Viewer
		sync.Mutex
	}
	controlCh chan func()
	closeCh   chan bool
	done      chan struct{}
	rnd       *rand.Rand
}

//New creates the ModelUniverse instance and starts its main loop
//stateCh may be nil, the status updates are not published then
func New(o *Options, stateCh chan Status) (*ModelUniverse, error) {
	if o == nil {
		o = &DefaultUniverseOptions
	}
	m, err := model.NewEngine(o.Width, o.Height, o.Engine)
	if err != nil {
		return nil, err
	}

	u := ModelUniverse{
		options:   *o,
		controlCh: make(chan func(), 1),
		closeCh:   make(chan bool, 1),
		done:      make(chan struct{}),
		stateCh:   stateCh,
	}
	u.options.Advanced = map[string]interface{}{"engine": m.Engine()}
	for k, v := range o.Advanced {
		u.options.Advanced[k] = v
	}
	seed := o.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	u.rnd = rand.New(rand.NewSource(seed))
	u.templates.m = map[string]Template{}
	u.grid.Model = m

	go u.mainLoop()
	return &u, nil
}

//AddTemplate adds the seeding template to the internal storage
//the universe can be populated with this template by call SettleTemplate
func (u *ModelUniverse) AddTemplate(tmpl Template) {
	u.templates.Lock()
	u.templates.m[tmpl.Name] = tmpl
	u.templates.Unlock()
}

//Settle settles the universe with data
//vc - array of x,y coordinates
func (u *ModelUniverse) Settle(vc [][]int) {
	u.settle(vc)
	u.refreshView()
}

//SettleTemplate populates the universe with the seeding template
//returns false if the template is unknown
func (u *ModelUniverse) SettleTemplate(name string) bool {
	u.templates.Lock()
	tmpl, ok := u.templates.m[name]
	u.templates.Unlock()
	if !ok {
		return false
	}
	u.Settle(tmpl.Coordinates)
	return true
}

//SettleWithRandomData populates the universe with random data, returns immediately
func (u *ModelUniverse) SettleWithRandomData() {
	u.exec(func() {
		mode := u.runningMode()
		if mode != RunningStateManual && mode != RunningStateFinished {
			return
		}
		u.clear()
		u.grid.Lock()
		p := make([]int, u.grid.Size())
		for i := range p {
			p[i] = u.rnd.Intn(2)
		}
		_ = u.grid.Init(p)
		live := u.grid.LiveCells()
		u.grid.Unlock()
		u.setLiveCells(live)
		u.refreshView()
	})
}

//InverseCell inverses the cell state at point x, y
func (u *ModelUniverse) InverseCell(x int, y int) {
	if x < 0 || y < 0 || x >= u.options.Width || y >= u.options.Height {
		return
	}
	u.grid.Lock()
	cells := u.grid.Cells()
	i := y*u.options.Width + x
	cells[i] = model.Alive - cells[i]
	_ = u.grid.Init(cells)
	live := u.grid.LiveCells()
	u.grid.Unlock()
	u.setLiveCells(live)
	u.refreshView()
}

//RegisterViewer registers the viewer - the universe will call the viewer when the state is changed
//it is safe to call while the universe is running, the viewer is refreshed only after its Register returns
func (u *ModelUniverse) RegisterViewer(v Viewer) {
	v.Register(u)
	u.views.Lock()
	u.views.list = append(u.views.list, v)
	u.views.Unlock()
}

//StateCh returns the channel with the universe's status updates
func (u *ModelUniverse) StateCh() chan Status {
	return u.stateCh
}

//Status returns current universe status represented by Status struct
func (u *ModelUniverse) Status() Status {
	u.state.Lock()
	defer u.state.Unlock()
	return u.state.Status
}

//Options returns current universe configuration represented by Options struct
func (u *ModelUniverse) Options() Options {
	return u.options
}

//Area returns the snapshot of the field where cells are living
func (u *ModelUniverse) Area() Area {
	u.grid.Lock()
	defer u.grid.Unlock()
	a := Area{
		Width:  u.grid.Cols(),
		Height: u.grid.Rows(),
		Cells:  u.grid.Cells(),
		Born:   make([]bool, u.grid.Size()),
	}
	for _, i := range u.grid.changes.Born {
		a.Born[i] = true
	}
	return a
}

//Run starts the universe simulation, returns immediately
func (u *ModelUniverse) Run() {
	u.exec(u.run)
}

//Stop stops the universe simulation, returns immediately
//the Status struct will be written the stateCh on finish
func (u *ModelUniverse) Stop() {
	u.exec(u.stop)
}

//Step do one simulation step, returns immediately
//the Status struct will be written to the stateCh on start and on finish
func (u *ModelUniverse) Step() {
	u.exec(u.step)
}

//Clear clears the universe (kill all cells and reset all counters), returns immediately
//the Status struct will be written to the stateCh on finish
func (u *ModelUniverse) Clear() {
	u.exec(u.clear)
}

//Close stops the main loop, returns immediately
func (u *ModelUniverse) Close() {
	select {
	case u.closeCh <- true:
	case <-u.done:
	}
}

//exec queues the command for the main loop, drops it if the loop is closed
func (u *ModelUniverse) exec(cmd func()) {
	select {
	case u.controlCh <- cmd:
	case <-u.done:
	}
}

//mainLoop - the main cycle, should start as a goroutine
//waits for command and executes
func (u *ModelUniverse) mainLoop() {
	for {
		select {
		case cmd := <-u.controlCh:
			cmd()
		case <-u.closeCh:
			close(u.done)
			return
		}
	}
}

//settle places live cells at the x,y positions, positions outside the area are skipped
func (u *ModelUniverse) settle(vc [][]int) {
	u.grid.Lock()
	cells := u.grid.Cells()
	for _, v := range vc {
		if len(v) < 2 || v[0] < 0 || v[1] < 0 || v[0] >= u.grid.Cols() || v[1] >= u.grid.Rows() {
			continue
		}
		cells[v[1]*u.grid.Cols()+v[0]] = model.Alive
	}
	_ = u.grid.Init(cells)
	u.grid.changes = model.ChangeSet{}
	live := u.grid.LiveCells()
	u.grid.Unlock()
	u.setLiveCells(live)
}

func (u *ModelUniverse) setLiveCells(live int) {
	u.state.Lock()
	u.state.LiveCells = live
	u.state.Unlock()
}

func (u *ModelUniverse) runningMode() RunningState {
	u.state.Lock()
	defer u.state.Unlock()
	return u.state.RunningMode
}

//switchRunningState switch the state of the universe to RunningState
//also writes the new state to the stateCh to signal upper control software
func (u *ModelUniverse) switchRunningState(to RunningState) {
	u.state.Lock()
	u.state.RunningMode = to
	st := u.state.Status
	u.state.Unlock()
	if u.stateCh != nil {
		u.stateCh <- st
	}
}

//run starts the universe simulation
//simulation will stop on Stop() calling or when the boundary conditions are reached
func (u *ModelUniverse) run() {
	if u.runningMode() == RunningStateRun {
		return
	}
	u.switchRunningState(RunningStateRun)
	go func() {
		skipped := 0
		stepped := make(chan bool, 1)
		for {
			mode := u.runningMode()
			if mode != RunningStateRun && mode != RunningStateStep {
				break
			}
			if skipped > u.options.MaxSkippedTicks {
				u.exec(func() {
					u.switchRunningState(RunningStateFinished)
					u.refreshView()
				})
				break
			}
			//skip the tick if the universe is still in the calculation mode
			if mode != RunningStateStep {
				skipped = 0
				u.exec(func() {
					//Stop may be executed before this step
					if u.runningMode() == RunningStateRun {
						u.step()
					}
					stepped <- true
				})
				select {
				case <-stepped:
				case <-u.done:
					return
				}
			} else {
				skipped++
			}
			if u.options.Interval > 0 {
				time.Sleep(u.options.Interval)
			}
		}
	}()
}

//stop stops the universe running cycle
func (u *ModelUniverse) stop() {
	if u.runningMode() == RunningStateRun {
		u.switchRunningState(RunningStateManual)
	}
}

//step calculates one generation for the entire universe
func (u *ModelUniverse) step() {
	finished := false
	rm := u.runningMode()
	if rm == RunningStateFinished {
		rm = RunningStateManual
	}
	maxIter := u.options.MaxSteps
	defer func() {
		if finished {
			u.switchRunningState(RunningStateFinished)
		} else {
			u.switchRunningState(rm)
		}
		u.refreshView()
	}()

	if maxIter != 0 && u.Status().IterationNum >= maxIter {
		finished = true
		return
	}
	u.switchRunningState(RunningStateStep)
	isAlive, changed := u.nextIteration()
	if !isAlive || !changed || (maxIter != 0 && u.Status().IterationNum >= maxIter) {
		finished = true
	}
}

//clear kills all the cells, reset all counters
func (u *ModelUniverse) clear() {
	u.grid.Lock()
	_ = u.grid.Init(make([]int, u.grid.Size()))
	u.grid.changes = model.ChangeSet{}
	u.grid.Unlock()

	u.state.Lock()
	u.state.Status = Status{}
	u.state.Unlock()
	u.switchRunningState(RunningStateManual)
	u.refreshView()
}

//nextIteration advances the model by one generation and stores the change counters
func (u *ModelUniverse) nextIteration() (hasLiveEntities bool, changed bool) {
	u.grid.Lock()
	start := time.Now()
	cs := u.grid.Next()
	u.grid.changes = cs
	u.grid.Unlock()
	elapsed := time.Since(start)

	live := len(cs.Born) + len(cs.Survived)
	u.state.Lock()
	u.state.IterationNum++
	u.state.LiveCells = live
	u.state.Born = len(cs.Born)
	u.state.Died = len(cs.Died)
	u.state.Survived = len(cs.Survived)
	u.state.IterationTime = elapsed
	u.state.Unlock()
	return live > 0, !cs.Empty()
}

//refreshView calls Refresh event for all registered views
func (u *ModelUniverse) refreshView() {
	u.views.Lock()
	views := append([]Viewer(nil), u.views.list...)
	u.views.Unlock()
	for _, v := range views {
		v.Refresh()
	}
}
