package main

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// HoldButton completes its action only after being held down continuously,
// so a half-asleep user cannot dismiss an alarm with an accidental click.
// The owner drives the fill via SetProgress while the hold is active.
type HoldButton struct {
	widget.BaseWidget
	Text        string
	OnHoldStart func()
	OnHoldEnd   func()

	holding  bool
	hovered  bool
	progress float64
}

func NewHoldButton(text string, onHoldStart, onHoldEnd func()) *HoldButton {
	b := &HoldButton{
		Text:        text,
		OnHoldStart: onHoldStart,
		OnHoldEnd:   onHoldEnd,
	}
	b.ExtendBaseWidget(b)
	return b
}

// SetProgress updates the fill fraction, 0..1.
func (b *HoldButton) SetProgress(progress float64) {
	b.progress = progress
	b.Refresh()
}

func (b *HoldButton) beginHold() {
	if b.holding {
		return
	}
	b.holding = true
	b.Refresh()
	if b.OnHoldStart != nil {
		b.OnHoldStart()
	}
}

func (b *HoldButton) endHold() {
	if !b.holding {
		return
	}
	b.holding = false
	b.Refresh()
	if b.OnHoldEnd != nil {
		b.OnHoldEnd()
	}
}

// Tapped is ignored; only press-and-hold counts.
func (b *HoldButton) Tapped(*fyne.PointEvent)          {}
func (b *HoldButton) TappedSecondary(*fyne.PointEvent) {}

func (b *HoldButton) MouseDown(*desktop.MouseEvent) { b.beginHold() }
func (b *HoldButton) MouseUp(*desktop.MouseEvent)   { b.endHold() }

func (b *HoldButton) MouseIn(*desktop.MouseEvent) {
	b.hovered = true
	b.Refresh()
}

func (b *HoldButton) MouseMoved(*desktop.MouseEvent) {}

// MouseOut releases an active hold; dragging off the button cancels it.
func (b *HoldButton) MouseOut() {
	b.hovered = false
	b.endHold()
}

func (b *HoldButton) CreateRenderer() fyne.WidgetRenderer {
	label := canvas.NewText(b.Text, theme.ForegroundColor())
	label.Alignment = fyne.TextAlignCenter

	return &holdButtonRenderer{
		button: b,
		label:  label,
		bg:     canvas.NewRectangle(theme.ButtonColor()),
		fill:   canvas.NewRectangle(theme.PrimaryColor()),
	}
}

type holdButtonRenderer struct {
	button *HoldButton
	label  *canvas.Text
	bg     *canvas.Rectangle
	fill   *canvas.Rectangle
}

func (r *holdButtonRenderer) layoutFill(size fyne.Size) {
	r.fill.Resize(fyne.NewSize(size.Width*float32(r.button.progress), size.Height))
	r.fill.Move(fyne.NewPos(0, 0))
}

func (r *holdButtonRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)
	r.label.Resize(size)
	r.layoutFill(size)
}

func (r *holdButtonRenderer) MinSize() fyne.Size {
	min := r.label.MinSize()
	w := min.Width + theme.Padding()*4
	h := min.Height + theme.Padding()*2

	// Big enough to hit with eyes closed.
	if w < 300 {
		w = 300
	}
	if h < 80 {
		h = 80
	}
	return fyne.NewSize(w, h)
}

func (r *holdButtonRenderer) Refresh() {
	r.label.Text = r.button.Text
	r.label.Color = theme.ForegroundColor()

	if r.button.hovered {
		r.bg.FillColor = theme.HoverColor()
	} else {
		r.bg.FillColor = theme.ButtonColor()
	}

	r.layoutFill(r.bg.Size())

	r.bg.Refresh()
	r.fill.Refresh()
	r.label.Refresh()
}

func (r *holdButtonRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.bg, r.fill, r.label}
}

func (r *holdButtonRenderer) Destroy() {}
