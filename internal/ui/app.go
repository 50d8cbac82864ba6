package ui

import (
	"context"
	"log"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"PeerStudio/internal/engine"
	"PeerStudio/internal/export"
)

var languages = []string{"python", "javascript", "go", "java", "cpp"}

// App is the demo shell: one window hosting the shared whiteboard and the
// shared code editor, wired to the sync engines. Remote updates enter
// through Applied, which marshals the repaint onto the UI thread.
type App struct {
	fyneApp fyne.App
	window  fyne.Window

	board    *BoardWidget
	entry    *widget.Entry
	langSel  *widget.Select
	output   *widget.Label
	activity *widget.Label
	status   *widget.Label

	stroke   *engine.StrokeEngine
	settings *engine.SettingsEngine
	code     *engine.CodeEngine
	exec     *engine.ExecEngine

	exportDir string

	// applyingRemote suppresses the editor's OnChanged while a remote
	// snapshot is written into it, so the replay is not re-broadcast as a
	// local edit.
	applyingRemote bool
}

// Config carries everything the shell needs from main.
type Config struct {
	Title       string
	StarterCode string
	ExportDir   string
	ShareLink   string
}

func NewApp(cfg Config, boardW *BoardWidget, stroke *engine.StrokeEngine, settings *engine.SettingsEngine, code *engine.CodeEngine, exec *engine.ExecEngine) *App {
	a := &App{
		fyneApp:   app.New(),
		board:     boardW,
		stroke:    stroke,
		settings:  settings,
		code:      code,
		exec:      exec,
		exportDir: cfg.ExportDir,
	}
	a.window = a.fyneApp.NewWindow(cfg.Title)
	a.window.Resize(fyne.NewSize(1200, 800))

	a.buildWidgets(cfg)
	a.wireEngines()
	return a
}

func (a *App) buildWidgets(cfg Config) {
	a.entry = widget.NewMultiLineEntry()
	a.entry.SetPlaceHolder("Shared code document")
	a.entry.SetText(cfg.StarterCode)
	a.entry.OnChanged = func(text string) {
		if a.applyingRemote {
			return
		}
		a.code.SetText(text, engine.OriginLocal)
	}

	a.langSel = widget.NewSelect(languages, func(lang string) {
		if a.applyingRemote {
			return
		}
		a.code.SetLanguage(lang, engine.OriginLocal)
	})
	a.langSel.SetSelected(a.code.Language())

	a.output = widget.NewLabel("")
	a.output.Wrapping = fyne.TextWrapWord
	a.activity = widget.NewLabel("")
	a.status = widget.NewLabel("Ready")
	if cfg.ShareLink != "" {
		a.status.SetText("Share: " + cfg.ShareLink)
	}

	runBtn := widget.NewButton("Run", func() {
		go a.exec.Run(context.Background())
	})
	resetBtn := widget.NewButton("Reset", func() {
		a.code.Reset(cfg.StarterCode)
		a.applyingRemote = true
		a.entry.SetText(cfg.StarterCode)
		a.applyingRemote = false
	})

	toolbar := NewToolbar(a.stroke, a.settings,
		func() {
			a.stroke.Clear(engine.OriginLocal)
			a.board.Refresh()
		},
		a.exportBoard,
	)

	left := container.NewBorder(container.NewHBox(toolbar, a.activity), a.status, nil, nil, a.board)
	right := container.NewBorder(
		container.NewHBox(widget.NewLabel("Language:"), a.langSel, runBtn, resetBtn),
		a.output, nil, nil, a.entry,
	)
	a.window.SetContent(container.NewHSplit(left, right))
}

func (a *App) wireEngines() {
	a.code.OnChange = func(text, language string, origin engine.Origin) {
		if origin != engine.OriginRemote {
			return
		}
		fyne.Do(func() {
			a.applyingRemote = true
			if a.entry.Text != text {
				a.entry.SetText(text)
			}
			if a.langSel.Selected != language {
				a.langSel.SetSelected(language)
			}
			a.applyingRemote = false
		})
	}

	a.exec.OnOutput = func(output string, origin engine.Origin) {
		fyne.Do(func() { a.output.SetText(output) })
	}
}

// Applied is invoked from the channel goroutine after an inbound frame was
// dispatched; it repaints everything the frame may have touched.
func (a *App) Applied() {
	fyne.Do(func() {
		a.board.Refresh()
		if a.stroke.RemoteActive() {
			a.activity.SetText("peer drawing…")
		} else {
			a.activity.SetText("")
		}
	})
}

func (a *App) exportBoard() {
	ds := a.settings.Settings()
	size := a.window.Canvas().Size()
	opts := export.Options{
		Panel: export.Bounds{
			X: ds.Position.X, Y: ds.Position.Y,
			Width: ds.Size.Width, Height: ds.Size.Height,
		},
		ViewportWidth:  float64(size.Width),
		ViewportHeight: float64(size.Height),
		Page:           export.NewSilentCapturer(),
		Display:        export.NewPromptCapturer(),
	}
	img := export.Flatten(a.board.surface, opts)
	path, err := export.WritePNG(img, a.exportDir)
	if err != nil {
		log.Printf("[ui] export failed: %v", err)
		a.status.SetText("Export failed")
		return
	}
	// Printable handout next to the PNG, same base name.
	if err := export.WritePDF(img, strings.TrimSuffix(path, ".png")+".pdf"); err != nil {
		log.Printf("[ui] pdf export failed: %v", err)
	}
	a.status.SetText("Exported " + path)
}

// SetStatus updates the status bar from any goroutine.
func (a *App) SetStatus(text string) {
	fyne.Do(func() { a.status.SetText(text) })
}

// Run opens the panel, shows the window and blocks until it closes.
func (a *App) Run() {
	a.settings.Open()
	defer a.settings.Close()
	a.window.ShowAndRun()
}
