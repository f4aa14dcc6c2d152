// Command metronome is a terminal front end for the polyphonica engine:
// a flag-configured click track with a tcell display of the current
// beat and live precision stats. It owns no audio synthesis of its
// own — everything here is wiring around audio.Engine and
// timing.BeatScheduler through output.MetronomeService.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/polyphonica/config"
	"github.com/lixenwraith/polyphonica/core"
	"github.com/lixenwraith/polyphonica/output"
)

func main() {
	var (
		bpm       = flag.Float64("bpm", 120, "tempo in beats per minute")
		sig       = flag.String("time-signature", "4/4", "time signature, N/D")
		click     = flag.String("click", core.WoodBlock.String(), "click type for non-accented beats")
		accent    = flag.Bool("accent-first-beat", true, "accent the downbeat")
		sampRate  = flag.Int("sample-rate", 44100, "audio sample rate in Hz")
		cfgPath   = flag.String("config", "", "load settings from a metronome.toml file")
	)
	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			log.Fatalf("metronome: %v", err)
		}
		cfg = loaded
	} else {
		cfg.TempoBPM = *bpm
		cfg.TimeSignature = *sig
		cfg.ClickType = *click
		cfg.AccentFirstBeat = *accent
		if *sampRate > 0 {
			cfg.SampleRate = *sampRate
		}
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("metronome: invalid configuration: %v", err)
	}

	timeSig, err := config.ParseTimeSignature(cfg.TimeSignature)
	if err != nil {
		log.Fatalf("metronome: %v", err)
	}
	clickType, ok := core.ClickTypeByName(cfg.ClickType)
	if !ok {
		log.Fatalf("metronome: unknown click type %q", cfg.ClickType)
	}

	svc := output.NewMetronomeService(timeSig, clickType, cfg.TempoBPM, cfg.SampleRate)
	if err := svc.Start(); err != nil {
		log.Fatalf("metronome: %v", err)
	}
	defer svc.Stop()

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintln(os.Stderr, "metronome: no terminal available, running headless:", err)
		select {}
	}
	if err := screen.Init(); err != nil {
		log.Fatalf("metronome: %v", err)
	}
	defer screen.Fini()

	eventChan := make(chan tcell.Event, 16)
	go screen.ChannelEvents(eventChan, nil)

	redraw := time.NewTicker(33 * time.Millisecond)
	defer redraw.Stop()

	for {
		select {
		case ev := <-eventChan:
			switch e := ev.(type) {
			case *tcell.EventKey:
				if e.Key() == tcell.KeyEscape || e.Key() == tcell.KeyCtrlC ||
					(e.Key() == tcell.KeyRune && e.Rune() == 'q') {
					return
				}
			}
		case <-redraw.C:
			drawFrame(screen, svc, timeSig)
		}
	}
}

func drawFrame(screen tcell.Screen, svc *output.MetronomeService, sig core.TimeSignature) {
	screen.Clear()
	beat, accented := svc.Tracker().CurrentBeat()
	prec := svc.Tracker().Precision()

	style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	accentStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)

	for i := 1; i <= sig.BeatsPerMeasure; i++ {
		s := style
		if i == beat && accented {
			s = accentStyle
		} else if i == beat {
			s = tcell.StyleDefault.Foreground(tcell.ColorGreen)
		}
		screen.SetContent((i-1)*3, 1, '●', nil, s)
	}

	drawText(screen, 0, 3, style, fmt.Sprintf("beat %d  jitter %.2fms  n=%d", beat, prec.StdDevMs, prec.SampleCount))
	drawText(screen, 0, 5, style, "press q to quit")
	screen.Show()
}

func drawText(screen tcell.Screen, x, y int, style tcell.Style, text string) {
	for i, r := range text {
		screen.SetContent(x+i, y, r, nil, style)
	}
}
