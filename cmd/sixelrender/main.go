// Command sixelrender is a minimal demo host for the rendering core: it
// puts the controlling terminal into raw mode, spawns a shell under a PTY
// via vtsource, composites its output as a single full-screen Canvas every
// time new PTY output arrives, and flushes the differential update through
// the sixel-capable escape-sequence pipeline.
package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"golang.org/x/term"

	"termcore/cellgrid"
	"termcore/compositor"
	"termcore/diffrender"
	"termcore/egc"
	"termcore/escseq"
	"termcore/outbuf"
	"termcore/region"
	"termcore/vtsource"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "sixelrender: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	inFd := int(os.Stdin.Fd())
	if !term.IsTerminal(inFd) {
		return fmt.Errorf("stdin is not a terminal")
	}

	oldState, err := term.MakeRaw(inFd)
	if err != nil {
		return err
	}
	defer term.Restore(inFd, oldState)

	cols, rows, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		cols, rows = 80, 24
	}

	pool := egc.New()
	geometry := cellgrid.Geometry{
		Cols: cols, Rows: rows,
		CellPixelW: 10, CellPixelH: 20,
		AspectW: 1, AspectH: 1,
	}
	fb := cellgrid.New(geometry)
	emitter := diffrender.New(pool)
	out := outbuf.New()

	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/sh"
	}

	var mu sync.Mutex
	needsRender := make(chan struct{}, 1)
	notify := func() {
		select {
		case needsRender <- struct{}{}:
		default:
		}
	}

	src, err := vtsource.Start(pool, shell, rows, cols, notify)
	if err != nil {
		return err
	}
	defer src.Close()
	notify()

	resized := make(chan os.Signal, 1)
	signal.Notify(resized, syscall.SIGWINCH)
	go func() {
		for range resized {
			mu.Lock()
			newCols, newRows, err := term.GetSize(int(os.Stdout.Fd()))
			mu.Unlock()
			if err != nil {
				continue
			}
			src.Resize(newRows, newCols)
			notify()
		}
	}()

	go io.Copy(src, os.Stdin)

	os.Stdout.WriteString(escseq.AltScreenEnter)
	defer os.Stdout.WriteString(escseq.AltScreenExit)

	for range needsRender {
		mu.Lock()
		cells, srcW := src.Snapshot()
		newCols, newRows, sizeErr := term.GetSize(int(os.Stdout.Fd()))
		mu.Unlock()
		var didResize bool
		if sizeErr == nil && (newCols != geometry.Cols || newRows != geometry.Rows) {
			geometry.Cols, geometry.Rows = newCols, newRows
			didResize = fb.Resize(geometry)
		}

		canvas := compositor.Canvas{
			Header: compositor.Header{Region: region.FromRect(region.Point{Y: 0, X: 0}, region.Size{H: fb.Geometry.Rows, W: fb.Geometry.Cols})},
			Source: cells, SrcW: srcW,
		}
		if err := compositor.RenderCanvas(fb, canvas); err != nil {
			return err
		}

		if err := emitter.Emit(fb, out, didResize); err != nil {
			return err
		}
		if err := out.Flush(os.Stdout); err != nil {
			return err
		}
		fb.Swap()
	}
	return nil
}
