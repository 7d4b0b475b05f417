package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/oscsim/internal/dynamo"
	"github.com/san-kum/oscsim/internal/integrators"
)

const (
	canvasWidth     = 60
	canvasHeight    = 20
	historyCapacity = 600
	trailLength     = 100
	chartWidth      = 30
)

// System is what the player animates.
type System interface {
	dynamo.VectorField
	dynamo.EnergyModel
	Kind() dynamo.ModelKind
}

// Snapshot is one drawn frame.
type Snapshot struct {
	T         float64
	State     dynamo.State
	Kinetic   float64
	Potential float64
}

func (s Snapshot) Total() float64 { return s.Kinetic + s.Potential }

type TickMsg time.Time

type pixel struct{ x, y int }

// Player steps sys in real time at fps frames per second.
type Player struct {
	title    string
	sys      System
	rk4      *integrators.RK4
	x0       dynamo.State
	t0, dt   float64
	fps      int
	steps    int
	speed    int
	current  Snapshot
	initialE float64
	history  []Snapshot
	playHead int
	running  bool
	showHelp bool
	err      error
	canvas   *Canvas
	trail    []pixel
}

func NewPlayer(title string, sys System, x0 dynamo.State, t0, dt float64, fps int) (*Player, error) {
	if dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return nil, dynamo.InvalidStep("step", dt)
	}
	if len(x0) != sys.StateDim() {
		return nil, dynamo.InvalidParam("state dimension", float64(len(x0)))
	}
	if fps <= 0 {
		fps = 30
	}

	p := &Player{
		title:  title,
		sys:    sys,
		rk4:    integrators.NewRK4(),
		x0:     x0.Clone(),
		t0:     t0,
		dt:     dt,
		fps:    fps,
		canvas: NewCanvas(canvasWidth, canvasHeight),
	}
	p.reset()
	return p, nil
}

// stepsPerFrame keeps simulated time in step with the wall clock at speed 0.
func (p *Player) stepsPerFrame() int {
	n := int(math.Round(1 / (float64(p.fps) * p.dt)))
	if n < 1 {
		n = 1
	}
	if p.speed > 0 {
		n <<= p.speed
	} else if p.speed < 0 {
		n >>= -p.speed
		if n < 1 {
			n = 1
		}
	}
	return n
}

func (p *Player) snapshot(t float64, x dynamo.State) Snapshot {
	ke, pe := p.sys.Energies(x)
	return Snapshot{T: t, State: x, Kinetic: ke, Potential: pe}
}

func (p *Player) reset() {
	p.current = p.snapshot(p.t0, p.x0.Clone())
	p.initialE = p.current.Total()
	p.history = append(p.history[:0], p.current)
	p.trail = p.trail[:0]
	p.steps = 0
	p.playHead = -1
	p.running = p.x0.IsValid()
	p.err = nil
	if !p.running {
		p.err = &dynamo.SimulationError{Step: 0, Time: p.t0, State: p.x0.Clone(), Wrapped: dynamo.ErrNonFiniteState}
	}
}

// advance integrates one frame. It stops the player at the first non-finite
// state and keeps the last finite one on screen.
func (p *Player) advance() {
	t, x := p.current.T, p.current.State
	n := p.stepsPerFrame()
	done := 0
	for ; done < n; done++ {
		next := p.rk4.Step(p.sys, t, x, p.dt)
		if !next.IsValid() {
			p.err = &dynamo.SimulationError{Step: p.steps + done + 1, Time: p.timeAt(done + 1), State: next, Wrapped: dynamo.ErrNonFiniteState}
			p.running = false
			break
		}
		t, x = p.timeAt(done+1), next
	}
	if done == 0 {
		return
	}

	p.steps += done
	p.current = p.snapshot(t, x)
	p.history = append(p.history, p.current)
	if len(p.history) > historyCapacity {
		p.history = p.history[1:]
	}
}

// timeAt is the time k steps past the current sample, kept on the t0+n*dt grid.
func (p *Player) timeAt(k int) float64 {
	return p.t0 + float64(p.steps+k)*p.dt
}

// scrub moves through history; it pauses playback on the first move.
func (p *Player) scrub(dir int) {
	if p.playHead == -1 {
		if len(p.history) == 0 {
			return
		}
		p.playHead = len(p.history) - 1
		p.running = false
	}
	p.playHead += dir
	if p.playHead < 0 {
		p.playHead = 0
	}
	if p.playHead >= len(p.history) {
		p.playHead = -1
	}
}

// Shown is the snapshot on screen.
func (p *Player) Shown() Snapshot {
	if p.playHead >= 0 {
		return p.history[p.playHead]
	}
	return p.current
}

func (p *Player) Running() bool { return p.running }
func (p *Player) Err() error    { return p.err }

func (p *Player) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(p.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (p *Player) Init() tea.Cmd {
	return p.tick()
}

func (p *Player) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return p, tea.Quit
		case " ", "p":
			if p.err == nil {
				p.running = !p.running
				if p.running {
					p.playHead = -1
				}
			}
		case "r":
			p.reset()
		case "[":
			p.scrub(-1)
		case "]":
			p.scrub(1)
		case "+", "=":
			if p.speed < 6 {
				p.speed++
			}
		case "-", "_":
			if p.speed > -6 {
				p.speed--
			}
		case "?":
			p.showHelp = !p.showHelp
		}
	case TickMsg:
		if p.running && p.playHead == -1 {
			p.advance()
		}
		return p, p.tick()
	}
	return p, nil
}

func (p *Player) View() string {
	shown := p.Shown()
	p.draw(shown.State)

	var s strings.Builder
	s.WriteString(HeaderStyle.Render(strings.ToUpper(p.title)) + "\n")
	s.WriteString(p.status() + "\n\n")

	if totals := p.totals(); len(totals) > 1 {
		chart := asciigraph.Plot(totals, asciigraph.Height(4), asciigraph.Width(chartWidth), asciigraph.Caption("Total energy"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	s.WriteString(Field("Time", "%.2fs", shown.T))
	s.WriteString(Field("Position", "%+.4f", shown.State.Position()))
	s.WriteString(Field("Velocity", "%+.4f", shown.State.Velocity()))
	s.WriteString(Field("Kinetic", "%.6f", shown.Kinetic))
	s.WriteString(Field("Potential", "%.6f", shown.Potential))
	s.WriteString(Field("Total", "%.6f", shown.Total()))
	s.WriteString(Field("Drift", "%.2e", relativeDrift(shown.Total(), p.initialE)))
	s.WriteString(Field("Steps/frame", "%d", p.stepsPerFrame()))
	if p.err != nil {
		s.WriteString("\n" + ErrorStyle.Render(p.err.Error()) + "\n")
	}
	s.WriteString(helpStyle.Render("SP:Pause R:Reset Q:Quit\n[ ]:Scrub +-:Speed ?:Help"))

	main := lipgloss.JoinHorizontal(lipgloss.Top, canvasStyle.Render(p.canvas.String()), statsStyle.Render(s.String()))
	if p.showHelp {
		return helpText + "\n" + main
	}
	return main
}

const helpText = `Space/P  pause or resume
R        reset to the initial state
[ ]      step through history (pauses)
+ -      double or halve playback speed
?        toggle this help
Q        quit`

func (p *Player) status() string {
	switch {
	case p.playHead >= 0:
		return statusPaused.Render(fmt.Sprintf("REPLAY (%.2fs)", p.history[p.playHead].T-p.current.T))
	case p.err != nil:
		return ErrorStyle.Render("STOPPED")
	case !p.running:
		return statusPaused.Render("PAUSED")
	default:
		return statusRunning.Render("RUNNING")
	}
}

func (p *Player) totals() []float64 {
	end := len(p.history)
	if p.playHead >= 0 {
		end = p.playHead + 1
	}
	out := make([]float64, 0, end)
	for _, s := range p.history[:end] {
		out = append(out, s.Total())
	}
	return out
}

func relativeDrift(e, e0 float64) float64 {
	if e0 == 0 {
		return math.Abs(e)
	}
	return math.Abs(e-e0) / math.Abs(e0)
}

func (p *Player) draw(x dynamo.State) {
	p.canvas.Clear()
	switch p.sys.Kind() {
	case dynamo.ModelPendulum:
		p.drawPendulum(x.Position())
	case dynamo.ModelSpring:
		p.drawSpring(x.Position())
	}
}

func (p *Player) drawPendulum(theta float64) {
	cx, cy := p.canvas.DotWidth()/2, 8
	length := float64(p.canvas.DotHeight()-cy) * 0.85
	bx := cx + int(math.Round(length*math.Sin(theta)))
	by := cy + int(math.Round(length*math.Cos(theta)))

	p.trail = append(p.trail, pixel{bx, by})
	if len(p.trail) > trailLength {
		p.trail = p.trail[1:]
	}
	for _, pt := range p.trail {
		p.canvas.Set(pt.x, pt.y)
	}
	p.canvas.FillBox(cx, cy, 0)
	p.canvas.DrawLine(cx, cy, bx, by)
	p.canvas.FillBox(bx, by, 1)
}

func (p *Player) drawSpring(pos float64) {
	cy := p.canvas.DotHeight() / 2
	wallX, rest, scale := 8, p.canvas.DotWidth()/2, 20.0
	p.canvas.DrawLine(wallX, cy-10, wallX, cy+10)

	massX := rest + int(math.Round(pos*scale))
	if massX < wallX+8 {
		massX = wallX + 8
	}
	p.canvas.FillBox(massX, cy, 4)

	const coils, amp = 10, 6
	step := float64(massX-4-wallX) / coils
	prevX, prevY := wallX, cy
	for i := 1; i <= coils; i++ {
		currX, currY := wallX+int(float64(i)*step), cy+amp
		if i%2 == 0 {
			currY = cy - amp
		}
		p.canvas.DrawLine(prevX, prevY, currX, currY)
		prevX, prevY = currX, currY
	}
	p.canvas.DrawLine(prevX, prevY, massX-4, cy)
}
