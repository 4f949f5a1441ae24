// Package editor provides the interactive annotation window. It owns one
// editing session: pointer input on the canvas is translated to normalized
// coordinates and fed to the session's gesture interpreter, while each frame
// re-renders the committed and in-progress entities over a preview of the
// photo. Saving hands off to the session's compositor in the background and
// the window closes once the annotated file is written.
package editor

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log"
	"math"
	"time"

	xdraw "golang.org/x/image/draw"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/example/fieldmark/internal/annotate"
	"github.com/example/fieldmark/internal/clipboard"
	"github.com/example/fieldmark/internal/compose"
	"github.com/example/fieldmark/internal/session"
)

const (
	toolbarWidth = 72
	bottomHeight = 24
	maxWindowW   = 1280
	maxWindowH   = 800
)

// Editor runs the annotation window over a single photo.
type Editor struct {
	photoPath string
	photo     *image.RGBA

	outDir      string
	jpegQuality int
	onCopy      func(detail string)

	initialColor    *color.RGBA
	initialWidth    int
	initialTextSize float64

	sess *Session
	win  screen.Window

	result    *session.Result
	cancelled bool
}

// Session aliases the controller type the editor drives.
type Session = session.Session

// Option configures an Editor during creation.
type Option func(*Editor)

// WithOutDir overrides where the annotated photo is written.
func WithOutDir(dir string) Option { return func(e *Editor) { e.outDir = dir } }

// WithJPEGQuality sets the encoder quality used for JPEG sources.
func WithJPEGQuality(q int) Option { return func(e *Editor) { e.jpegQuality = q } }

// WithOnCopy registers a callback fired after the preview is copied to the
// clipboard.
func WithOnCopy(fn func(detail string)) Option { return func(e *Editor) { e.onCopy = fn } }

// WithInitialColor sets the color the session starts drawing with.
func WithInitialColor(c color.RGBA) Option { return func(e *Editor) { e.initialColor = &c } }

// WithInitialWidth sets the stroke width the session starts with.
func WithInitialWidth(w int) Option { return func(e *Editor) { e.initialWidth = w } }

// WithInitialTextSize sets the label size the session starts with.
func WithInitialTextSize(s float64) Option { return func(e *Editor) { e.initialTextSize = s } }

// New creates an editor for the decoded photo at photoPath.
func New(photoPath string, photo *image.RGBA, opts ...Option) *Editor {
	e := &Editor{photoPath: photoPath, photo: photo}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Events delivered from the compositing goroutine back to the window loop.
type composeDone struct{ result session.Result }
type composeFailed struct{ err error }

// Run opens the window and blocks until the session finishes. It returns the
// session result, or nil when the user cancelled.
func (e *Editor) Run() (*session.Result, error) {
	e.sess = session.New(e.photoPath,
		session.WithComposer(&compose.Compositor{OutDir: e.outDir, JPEGQuality: e.jpegQuality}),
		session.WithOnComplete(func(r session.Result) { e.send(composeDone{result: r}) }),
		session.WithOnError(func(err error) { e.send(composeFailed{err: err}) }),
		session.WithOnCancel(func() { e.cancelled = true }),
	)
	if e.initialColor != nil {
		e.sess.SetColor(*e.initialColor)
	}
	if e.initialWidth > 0 {
		e.sess.SetWidth(e.initialWidth)
	}
	if e.initialTextSize > 0 {
		e.sess.SetTextSize(e.initialTextSize)
	}
	driver.Main(e.main)
	if e.cancelled {
		return nil, nil
	}
	return e.result, nil
}

func (e *Editor) send(event any) {
	if e.win != nil {
		e.win.Send(event)
	}
}

func (e *Editor) main(s screen.Screen) {
	b := e.photo.Bounds()
	zoom := fitZoom(b, maxWindowW-toolbarWidth, maxWindowH-bottomHeight)
	width := int(float64(b.Dx())*zoom) + toolbarWidth
	height := int(float64(b.Dy())*zoom) + bottomHeight

	w, err := s.NewWindow(&screen.NewWindowOptions{Width: width, Height: height, Title: "Fieldmark"})
	if err != nil {
		log.Fatalf("new window: %v", err)
	}
	defer w.Release()
	e.win = w

	var (
		dragging  bool
		textInput string
		textMode  bool
		message   string
		msgUntil  time.Time
		saving    bool
	)

	setMessage := func(msg string) {
		message = msg
		msgUntil = time.Now().Add(2 * time.Second)
		log.Print(msg)
	}

	bar := newToolbar(e.sess)

	for {
		switch ev := w.NextEvent().(type) {
		case lifecycle.Event:
			if ev.To == lifecycle.StageDead {
				if e.sess.CurrentState() == session.StateEditing {
					if err := e.sess.Cancel(); err != nil {
						log.Printf("cancel: %v", err)
					}
				}
				return
			}
		case size.Event:
			width = ev.WidthPx
			height = ev.HeightPx
			w.Send(paint.Event{})
		case composeDone:
			r := ev.result
			e.result = &r
			return
		case composeFailed:
			saving = false
			setMessage(fmt.Sprintf("save failed: %v", ev.err))
			w.Send(paint.Event{})
		case mouse.Event:
			if saving {
				continue
			}
			p := image.Pt(int(ev.X), int(ev.Y))
			if p.X < toolbarWidth {
				if ev.Button == mouse.ButtonLeft && ev.Direction == mouse.DirPress {
					if bar.click(p) {
						dragging = false
						textMode = false
						textInput = ""
						w.Send(paint.Event{})
					}
				}
				continue
			}
			canvas := e.canvasRect(width, height, zoom)
			np := normalize(p, canvas)
			if ev.Button == mouse.ButtonLeft && ev.Direction == mouse.DirPress {
				if textMode {
					// A click elsewhere abandons the pending label.
					e.sess.CancelText()
					textMode = false
					textInput = ""
				}
				if e.sess.ActiveTool() == annotate.ToolText {
					if e.sess.Tap(np) {
						textMode = true
						textInput = ""
					}
				} else {
					e.sess.PointerDown(np)
					dragging = true
				}
				w.Send(paint.Event{})
			} else if dragging && ev.Direction == mouse.DirNone {
				e.sess.PointerMove(np)
				w.Send(paint.Event{})
			} else if dragging && ev.Button == mouse.ButtonLeft && ev.Direction == mouse.DirRelease {
				e.sess.PointerMove(np)
				e.sess.PointerUp()
				dragging = false
				w.Send(paint.Event{})
			}
		case key.Event:
			if ev.Direction != key.DirPress {
				continue
			}
			if saving {
				continue
			}
			if textMode {
				switch ev.Code {
				case key.CodeReturnEnter:
					e.sess.ConfirmText(textInput)
					textMode = false
					textInput = ""
				case key.CodeEscape:
					e.sess.CancelText()
					textMode = false
					textInput = ""
				case key.CodeDeleteBackspace:
					if len(textInput) > 0 {
						textInput = textInput[:len(textInput)-1]
					}
				default:
					if ev.Rune > 0 {
						textInput += string(ev.Rune)
					}
				}
				w.Send(paint.Event{})
				continue
			}
			switch ev.Rune {
			case 'd', 'D':
				e.sess.SelectTool(annotate.ToolDraw)
				dragging = false
			case 'a', 'A':
				e.sess.SelectTool(annotate.ToolArrow)
				dragging = false
			case 't', 'T':
				e.sess.SelectTool(annotate.ToolText)
				dragging = false
			case 'z', 'Z', 'u', 'U':
				if !e.sess.Undo() {
					setMessage("nothing to undo")
				}
			case 'c', 'C':
				frame, err := e.renderAnnotated()
				if err != nil {
					setMessage(fmt.Sprintf("copy failed: %v", err))
					break
				}
				if err := clipboard.WriteImage(frame); err != nil {
					setMessage(fmt.Sprintf("copy failed: %v", err))
					break
				}
				setMessage("copied preview to clipboard")
				if e.onCopy != nil {
					e.onCopy(e.photoPath)
				}
			case 'q', 'Q':
				if err := e.sess.Cancel(); err == nil {
					return
				}
			case -1:
				switch ev.Code {
				case key.CodeReturnEnter:
					if err := e.sess.Done(); err != nil {
						setMessage(fmt.Sprintf("save: %v", err))
						break
					}
					saving = true
					setMessage("saving...")
				case key.CodeEscape:
					if err := e.sess.Cancel(); err == nil {
						return
					}
				}
			}
			w.Send(paint.Event{})
		case paint.Event:
			e.drawFrame(s, w, width, height, zoom, bar, frameState{
				textMode:  textMode,
				textInput: textInput,
				message:   message,
				msgUntil:  msgUntil,
				saving:    saving,
			})
		}
	}
}

// canvasRect is the window region the photo occupies.
func (e *Editor) canvasRect(width, height int, zoom float64) image.Rectangle {
	b := e.photo.Bounds()
	w := int(float64(b.Dx()) * zoom)
	h := int(float64(b.Dy()) * zoom)
	return image.Rect(toolbarWidth, 0, toolbarWidth+w, h)
}

// normalize maps a window point to canvas-normalized coordinates.
func normalize(p image.Point, canvas image.Rectangle) annotate.Point {
	if canvas.Dx() == 0 || canvas.Dy() == 0 {
		return annotate.Point{}
	}
	return annotate.Point{
		X: float64(p.X-canvas.Min.X) / float64(canvas.Dx()),
		Y: float64(p.Y-canvas.Min.Y) / float64(canvas.Dy()),
	}.Clamp()
}

func fitZoom(b image.Rectangle, availW, availH int) float64 {
	zx := float64(availW) / float64(b.Dx())
	zy := float64(availH) / float64(b.Dy())
	z := math.Min(zx, zy)
	if z > 1 {
		z = 1
	}
	if z < 0.05 {
		z = 0.05
	}
	return z
}

// renderAnnotated paints the committed entities over a copy of the photo at
// native resolution, the same surface the compositor would produce.
func (e *Editor) renderAnnotated() (*image.RGBA, error) {
	out := image.NewRGBA(e.photo.Bounds())
	draw.Draw(out, out.Bounds(), e.photo, e.photo.Bounds().Min, draw.Src)
	if err := compose.RenderEntities(out, e.sess.Entities()); err != nil {
		return nil, err
	}
	return out, nil
}

type frameState struct {
	textMode  bool
	textInput string
	message   string
	msgUntil  time.Time
	saving    bool
}

func (e *Editor) drawFrame(s screen.Screen, w screen.Window, width, height int, zoom float64, bar *toolbar, st frameState) {
	buf, err := s.NewBuffer(image.Point{width, height})
	if err != nil {
		log.Printf("new buffer: %v", err)
		return
	}
	defer buf.Release()
	dst := buf.RGBA()

	drawBackdrop(dst)

	// Preview: photo plus annotations rendered at preview resolution. The
	// normalized entity geometry makes the preview and the final composite
	// agree without sharing pixel coordinates.
	canvas := e.canvasRect(width, height, zoom)
	preview := image.NewRGBA(image.Rect(0, 0, canvas.Dx(), canvas.Dy()))
	xdraw.ApproxBiLinear.Scale(preview, preview.Bounds(), e.photo, e.photo.Bounds(), draw.Src, nil)
	if err := compose.RenderEntities(preview, e.sess.Entities()); err != nil {
		log.Printf("render entities: %v", err)
	}
	if ip := e.sess.InProgress(); ip != nil {
		if err := compose.RenderEntity(preview, *ip); err != nil {
			log.Printf("render in-progress: %v", err)
		}
	}
	draw.Draw(dst, canvas, preview, image.Point{}, draw.Src)

	bar.draw(dst, height)
	drawBottomBar(dst, width, height, st.textMode)

	if st.textMode {
		if pos, ok := e.sess.PendingLabel(); ok {
			px := canvas.Min.X + int(pos.X*float64(canvas.Dx()))
			py := canvas.Min.Y + int(pos.Y*float64(canvas.Dy()))
			drawLabelPreview(dst, px, py, st.textInput+"|", e.sess.Color())
		}
	}

	if st.saving {
		drawCenteredMessage(dst, width, height, "saving...")
	} else if st.message != "" && time.Now().Before(st.msgUntil) {
		drawCenteredMessage(dst, width, height, st.message)
	}

	w.Upload(image.Point{}, buf, buf.Bounds())
	w.Publish()
}
