package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	theremin "github.com/redoctopus/ThereminHero2"
)

const (
	windowW    = 1024
	windowH    = 768
	sampleRate = 48000

	titleScale = 4
	noteScale  = 3
	textScale  = 2
	charW      = 7
	lineH      = 14
)

// Normal and colorblind palettes.
var (
	bgColor       = color.RGBA{170, 200, 215, 255} // light blue
	cbBgColor     = color.RGBA{79, 54, 58, 255}    // dark brown
	fontColor     = color.RGBA{50, 170, 255, 255}  // darker blue
	cbFontColor   = color.RGBA{54, 79, 60, 255}    // weird green
	lineColor     = color.RGBA{54, 79, 60, 255}
	noteRectColor = color.RGBA{0, 0, 255, 255}
)

type game struct {
	ins        *theremin.Instrument
	colorblind bool
	textCache  map[string]*ebiten.Image
}

func newGame(ins *theremin.Instrument) *game {
	return &game{
		ins:       ins,
		textCache: make(map[string]*ebiten.Image, 64),
	}
}

func (g *game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) {
		g.ins.RaisePitch()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) {
		g.ins.LowerPitch()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyI) {
		g.ins.ToggleVoice()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyM) {
		g.ins.ToggleMute()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		g.colorblind = !g.colorblind
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	bg, fg := bgColor, fontColor
	title := "Theremin Hero!"
	if g.colorblind {
		bg, fg = cbBgColor, cbFontColor
		title = "Colorblind Mode ;D"
	}
	screen.Fill(bg)

	ebitenutil.DrawLine(screen, 5, 5, 340, 340, lineColor)

	g.drawText(screen, title, 150, 200, titleScale, fg)
	g.drawText(screen, g.ins.NoteName(), 210, 350, noteScale, fg)

	status := "voice: " + string(g.ins.Voice())
	if g.ins.Muted() {
		status += "  [muted]"
	}
	g.drawText(screen, status, 150, 420, textScale, fg)
	g.drawText(screen, "up/down: pitch  i: instrument  m: mute  backspace: palette  q: quit",
		20, windowH-lineH*textScale-8, textScale, fg)

	g.drawNoteRectangle(screen, g.ins.PitchIndex())
}

// drawNoteRectangle marks the current note on the track along the bottom
// of the window.
func (g *game) drawNoteRectangle(screen *ebiten.Image, index int) {
	x := float64(index*50 + 50)
	y := 5.0 / 6.0 * windowH
	ebitenutil.DrawRect(screen, x, y, 50, 50, noteRectColor)
}

func (g *game) Layout(outsideW, outsideH int) (int, int) {
	return windowW, windowH
}

func (g *game) Close() { _ = g.ins.Stop() }

func (g *game) drawText(screen *ebiten.Image, msg string, x, y int, scale float64, tint color.RGBA) {
	if msg == "" {
		return
	}
	img := g.textCache[msg]
	if img == nil {
		w := len([]rune(msg)) * charW
		if w < 1 {
			w = 1
		}
		img = ebiten.NewImage(w, lineH)
		ebitenutil.DebugPrintAt(img, msg, 0, 0)
		if len(g.textCache) > 512 {
			g.textCache = make(map[string]*ebiten.Image, 64)
		}
		g.textCache[msg] = img
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(float64(x), float64(y))
	op.ColorScale.ScaleWithColor(tint)
	screen.DrawImage(img, op)
}

func parseVoice(name string) (theremin.Voice, error) {
	switch name {
	case "piano":
		return theremin.VoicePiano, nil
	case "guitar":
		return theremin.VoiceGuitar, nil
	default:
		return "", fmt.Errorf("invalid -voice %q (expected piano|guitar)", name)
	}
}

func main() {
	var (
		voiceName = flag.String("voice", "piano", "starting voice: piano|guitar")
		noDecay   = flag.Bool("no-decay", false, "disable the modulation decay envelope")
		echo      = flag.Bool("echo", false, "add a feedback echo to the output")
	)
	flag.Parse()

	voice, err := parseVoice(*voiceName)
	if err != nil {
		log.Fatal(err)
	}
	opts := []theremin.Option{theremin.WithVoice(voice)}
	if *noDecay {
		opts = append(opts, theremin.WithDecayEnvelope(false))
	}
	if *echo {
		opts = append(opts, theremin.WithEcho(250, 0.4, 0.3))
	}

	ins, err := theremin.NewInstrument(sampleRate, opts...)
	if err != nil {
		log.Fatal(err)
	}
	if err := ins.Start(); err != nil {
		log.Fatalf("open audio device: %v", err)
	}

	g := newGame(ins)
	defer g.Close()

	ebiten.SetWindowSize(windowW, windowH)
	ebiten.SetWindowTitle("Theremin Hero")
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}
