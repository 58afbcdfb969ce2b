//go:build gui

package gui

import "fyne.io/fyne/v2"

// viewportLayout stacks its children at full width and reports that width,
// which the pipeline scales the photo to.
type viewportLayout struct {
	onWidth func(int)
}

func (l *viewportLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	if l.onWidth != nil {
		l.onWidth(int(size.Width))
	}
	for _, o := range objects {
		o.Move(fyne.NewPos(0, 0))
		o.Resize(fyne.NewSize(size.Width, o.MinSize().Height))
	}
}

func (l *viewportLayout) MinSize(objects []fyne.CanvasObject) fyne.Size {
	var size fyne.Size
	for _, o := range objects {
		size = size.Max(o.MinSize())
	}
	return fyne.NewSize(0, size.Height)
}
