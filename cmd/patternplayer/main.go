// Command patternplayer is a bubbletea front end for the drum pattern
// player: it loads a pattern, polls a timing.PatternPlayer instead of
// the metronome scheduler, and opens a real speaker device through
// output.Device so every triggered voice is actually heard, not just
// advanced in memory.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lixenwraith/polyphonica/audio"
	"github.com/lixenwraith/polyphonica/output"
	"github.com/lixenwraith/polyphonica/timing"
)

const sampleRate = 44100

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	beatStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	onsetStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Bold(true)
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true)
)

// tickMsg drives the poll loop; bubbletea's own clock substitutes for a
// dedicated goroutine here since the player only needs ~100Hz polling.
type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(10*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// model is the bubbletea state for the pattern player screen.
type model struct {
	engine  *audio.Engine
	queue   *audio.CommandQueue
	player  *timing.PatternPlayer
	pattern timing.DrumPattern
	bpm     float64

	lastBeat int
	flash    map[int]bool
	err      error
}

func initialModel(engine *audio.Engine) model {
	queue := audio.NewCommandQueue(64)
	engine.AttachQueue(queue)

	clock := timing.NewMonotonicTimeProvider()
	player := timing.NewPatternPlayer(clock)
	pattern := timing.BasicRock()
	if err := player.Load(pattern); err != nil {
		panic(err) // BasicRock is a fixed, known-valid pattern
	}
	player.SetEnabled(true)

	return model{
		engine:  engine,
		queue:   queue,
		player:  player,
		pattern: pattern,
		bpm:     120,
		flash:   make(map[int]bool),
	}
}

func (m model) Init() tea.Cmd {
	return tick()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "+", "=":
			m.bpm = clampBPM(m.bpm + 5)
		case "-":
			m.bpm = clampBPM(m.bpm - 5)
		}
		return m, nil

	case tickMsg:
		// No explicit Drain here: engine.AttachQueue wires the queue so
		// the audio thread drains it itself inside ProcessStereoBuffer,
		// on every callback output.Device's speaker drives.
		if ev := m.player.Poll(m.bpm); ev != nil {
			m.lastBeat = ev.BeatNumber
			m.flash[m.lastBeat] = true
			for _, click := range ev.Samples {
				sound := click
				if ev.Accent {
					sound = click.AccentSubstitute()
				}
				waveform, freq, env := sound.SyntheticParams()
				m.queue.Submit(audio.TriggerCommand(waveform, freq, env, 1.0, nil))
			}
		}
		return m, tick()
	}
	return m, nil
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("pattern player — %d bpm", int(m.bpm))))
	b.WriteString("\n\n")

	for _, beat := range m.pattern.Beats {
		style := beatStyle
		if beat.Accent {
			style = accentStyle
		}
		if m.flash[int(beat.Position)] {
			style = onsetStyle
		}
		names := make([]string, len(beat.Samples))
		for i, s := range beat.Samples {
			names[i] = s.String()
		}
		b.WriteString(style.Render(fmt.Sprintf("%.1f  %s\n", beat.Position, strings.Join(names, "+"))))
	}

	b.WriteString("\n+/- change tempo, q to quit\n")
	return b.String()
}

func clampBPM(bpm float64) float64 {
	if bpm < 40 {
		return 40
	}
	if bpm > 240 {
		return 240
	}
	return bpm
}

func main() {
	engine := audio.NewEngine(sampleRate)
	if err := output.Device(engine, sampleRate, 50*time.Millisecond); err != nil {
		fmt.Fprintln(os.Stderr, "patternplayer: opening audio device:", err)
		os.Exit(1)
	}
	defer output.Close()

	p := tea.NewProgram(initialModel(engine), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "patternplayer:", err)
		os.Exit(1)
	}
}
