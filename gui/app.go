//go:build gui

// Package gui is the desktop front end: one window with the photo, the
// recognized lines and the four actions.
package gui

import (
	"context"
	"errors"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"snaptext/picker"
	"snaptext/pipeline"
)

// Actions is the part of the pipeline the window drives.
type Actions interface {
	SelectFromLibrary(ctx context.Context) error
	CaptureFromCamera(ctx context.Context) error
	Copy() error
	Speak(ctx context.Context) error
	SetViewportWidth(w int)
}

type App struct {
	fyneApp fyne.App
	window  fyne.Window
	dir     string
	actions Actions

	photo      *canvas.Image
	photoURI   string
	lines      *fyne.Container
	progress   *widget.ProgressBarInfinite
	status     *widget.Label
	selectBtn  *widget.Button
	cameraBtn  *widget.Button
	copyBtn    *widget.Button
	speakBtn   *widget.Button
	lastWidth  int
	widthMu    sync.Mutex
}

// NewApp creates the window model. dir is where the file dialog opens.
func NewApp(dir string) *App {
	return &App{dir: dir}
}

// Bind connects the buttons to a pipeline.
func (a *App) Bind(actions Actions) {
	a.actions = actions
}

func Run(a *App) error {
	if a.actions == nil {
		return errors.New("gui: no pipeline bound")
	}
	a.fyneApp = app.NewWithID("io.snaptext.gui")
	a.fyneApp.Settings().SetTheme(&snapTheme{})
	icon := fyne.NewStaticResource("icon.png", appIcon())
	a.fyneApp.SetIcon(icon)

	a.window = a.fyneApp.NewWindow("Text Recognition")
	a.window.SetContent(a.build())
	a.window.Resize(fyne.NewSize(480, 720))

	if desk, ok := a.fyneApp.(desktop.App); ok {
		menu := fyne.NewMenu("snaptext",
			fyne.NewMenuItem("Select Image", a.selectImage),
			fyne.NewMenuItem("Take Photo", a.takePhoto),
			fyne.NewMenuItem("Show", func() { a.window.Show() }),
		)
		desk.SetSystemTrayMenu(menu)
		desk.SetSystemTrayIcon(icon)
	}

	a.render(pipeline.State{})
	a.window.ShowAndRun()
	return nil
}

func (a *App) Quit() {
	if a.fyneApp != nil {
		a.fyneApp.Quit()
	}
}

func (a *App) build() fyne.CanvasObject {
	a.photo = canvas.NewImageFromResource(nil)
	a.photo.FillMode = canvas.ImageFillContain
	a.photo.Hide()

	a.lines = container.NewVBox()
	a.progress = widget.NewProgressBarInfinite()
	a.progress.Hide()
	a.status = widget.NewLabel("Select an image to begin")
	a.status.Importance = widget.LowImportance

	a.selectBtn = widget.NewButton("Select Image", a.selectImage)
	a.cameraBtn = widget.NewButton("Take Photo", a.takePhoto)
	a.copyBtn = widget.NewButton("Copy", func() { go a.actions.Copy() })
	a.speakBtn = widget.NewButton("Speak", func() { go a.actions.Speak(context.Background()) })
	a.copyBtn.Importance = widget.HighImportance

	body := container.New(&viewportLayout{onWidth: a.viewportChanged},
		container.NewVBox(a.photo, a.progress, a.status, a.lines))
	buttons := container.NewGridWithColumns(2, a.selectBtn, a.cameraBtn, a.copyBtn, a.speakBtn)
	return container.NewBorder(nil, container.NewPadded(buttons), nil, nil, container.NewVScroll(body))
}

func (a *App) selectImage() { go a.actions.SelectFromLibrary(context.Background()) }
func (a *App) takePhoto()   { go a.actions.CaptureFromCamera(context.Background()) }

func (a *App) viewportChanged(w int) {
	a.widthMu.Lock()
	changed := w != a.lastWidth
	a.lastWidth = w
	a.widthMu.Unlock()
	if changed {
		go a.actions.SetViewportWidth(w)
	}
}

// PickFromLibrary shows the file dialog and blocks until the user chooses or
// backs out. It must not be called from the UI goroutine.
func (a *App) PickFromLibrary(ctx context.Context, opts picker.Options) (picker.Result, error) {
	type pick struct {
		res picker.Result
		err error
	}
	done := make(chan pick, 1)
	fyne.Do(func() {
		d := dialog.NewFileOpen(func(r fyne.URIReadCloser, err error) {
			if err != nil {
				done <- pick{err: err}
				return
			}
			if r == nil {
				done <- pick{res: picker.Cancelled}
				return
			}
			path := r.URI().Path()
			r.Close()
			res, err := picker.Single(path)
			done <- pick{res: res, err: err}
		}, a.window)
		d.SetFilter(storage.NewExtensionFileFilter(picker.Extensions()))
		if lister, err := storage.ListerForURI(storage.NewFileURI(a.dir)); err == nil {
			d.SetLocation(lister)
		}
		d.Show()
	})
	select {
	case p := <-done:
		return p.res, p.err
	case <-ctx.Done():
		return picker.Cancelled, nil
	}
}

// StateChanged redraws from a pipeline snapshot.
func (a *App) StateChanged(s pipeline.State) {
	if a.window == nil {
		return
	}
	fyne.Do(func() { a.render(s) })
}

func (a *App) Notice(n pipeline.Notice) {
	fyne.Do(func() {
		if n.Error {
			dialog.ShowError(errors.New(n.Message), a.window)
			return
		}
		dialog.ShowInformation(n.Title, n.Message, a.window)
	})
}

func (a *App) render(s pipeline.State) {
	if s.Image == nil {
		a.photo.Hide()
		a.photoURI = ""
	} else {
		if s.Image.URI != a.photoURI {
			a.photoURI = s.Image.URI
			if path, err := picker.PathFromURI(s.Image.URI); err == nil {
				a.photo.File = path
				a.photo.Refresh()
			}
		}
		h := float32(s.DisplayHeight())
		a.photo.SetMinSize(fyne.NewSize(float32(s.ViewportWidth), h))
		if h > 0 {
			a.photo.Show()
		} else {
			a.photo.Hide()
		}
	}

	if s.Recognizing {
		a.progress.Show()
		a.progress.Start()
	} else {
		a.progress.Stop()
		a.progress.Hide()
	}

	a.lines.RemoveAll()
	for _, l := range s.Text.Lines() {
		label := widget.NewLabel(l)
		label.Wrapping = fyne.TextWrapWord
		a.lines.Add(label)
	}

	switch {
	case s.Recognizing:
		a.status.SetText("Recognizing…")
	case s.Image == nil:
		a.status.SetText("Select an image to begin")
	case !s.Text.HasContent():
		a.status.SetText("No text recognized")
	case s.Playback == pipeline.Playing:
		a.status.SetText("Speaking…")
	default:
		a.status.SetText("")
	}
	if a.status.Text == "" {
		a.status.Hide()
	} else {
		a.status.Show()
	}

	setEnabled(a.copyBtn, s.CanCopy())
	setEnabled(a.speakBtn, s.CanSpeak())
}

func setEnabled(b *widget.Button, on bool) {
	if on {
		b.Enable()
	} else {
		b.Disable()
	}
}
