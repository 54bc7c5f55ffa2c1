// Package sink implements the output-file, output-device and output-log
// node types: the three OUTPUT_* polymorphic containers that retype
// themselves to the first upstream category they observe.
package sink

import (
	"zikichombo.org/noisegraph/node"
	"zikichombo.org/noisegraph/pin"
	"zikichombo.org/noisegraph/sample"
)

// wavWriter is the capability File needs from package wavfile, declared
// locally for the same import-cycle reason node/services.go's interfaces
// exist.
type wavWriter interface {
	WriteMono(samples []sample.Uniform, sampleRate int) error
	WriteStereo(left, right []sample.Uniform, sampleRate int) error
	Close() error
}

// File accumulates its polymorphic OUTPUT_FILE input across ticks and, once
// every predecessor has finished, resamples to the declared output rate (if
// different) and writes one WAV file via wavWriter.
type File struct {
	ctl *node.Control
	w   wavWriter
	svc node.ResampleService

	outputRate int
	accMono    []sample.Uniform
	accLeft    []sample.Uniform
	accRight   []sample.Uniform
	sourceRate int
	finalized  bool
}

// NewFile constructs a file sink writing through w, resampling to
// outputRate via svc if the upstream rate differs (svc may be nil if no
// resample is ever required by the graph this node belongs to).
func NewFile(w wavWriter, svc node.ResampleService, outputRate int) *File {
	in := pin.NewInput("in", pin.BufferMono|pin.BufferStereo, pin.KindOutputFile)
	return &File{
		ctl: node.NewControl(node.SpecOutputFile, node.Normal, map[string]*pin.Pin{"in": in}, nil),
		w:   w, svc: svc, outputRate: outputRate,
	}
}

func (f *File) Control() *node.Control { return f.ctl }
func (f *File) IsFinished() bool       { return f.ctl.State == node.Finished }
func (f *File) CanProcess() bool       { return true }

func (f *File) TryProcess(in *node.CommonInput) error {
	c := f.ctl
	c.ElapsedTime = in.ElapsedTime
	if err := c.ProcessInputPins(); err != nil {
		return err
	}
	if c.State == node.Finished {
		return nil
	}
	p := c.Inputs["in"]
	switch p.ResolvedCategory() {
	case pin.BufferMono:
		if rate, ok := p.SampleRate(); ok {
			f.sourceRate = rate
		}
		view := p.Dynamic()
		f.accMono = append(f.accMono, view.Drain(view.Frames())...)
		if len(f.accMono) > 0 && c.State == node.Stopped {
			c.SetState(node.Playing)
		}
	case pin.BufferStereo:
		if rate, ok := p.SampleRate(); ok {
			f.sourceRate = rate
		}
		view := p.StereoDynamic()
		f.accLeft = append(f.accLeft, view.DrainLeft(view.Frames())...)
		f.accRight = append(f.accRight, view.DrainRight(view.Frames())...)
		if len(f.accLeft) > 0 && c.State == node.Stopped {
			c.SetState(node.Playing)
		}
	}

	if in.AllChildrenFinished() && !f.finalized {
		f.finalized = true
		if err := f.flush(); err != nil {
			return err
		}
		c.SetState(node.Finished)
	}
	return nil
}

func (f *File) flush() error {
	rate := f.sourceRate
	if rate == 0 {
		rate = f.outputRate
	}
	resampleIfNeeded := func(s []sample.Uniform) []sample.Uniform {
		if f.svc == nil || f.outputRate == 0 || rate == f.outputRate || len(s) == 0 {
			return s
		}
		out, _, _ := f.svc.Resample(rate, f.outputRate, true, s, 0)
		return out
	}
	writeRate := rate
	if f.outputRate != 0 {
		writeRate = f.outputRate
	}
	switch p := f.ctl.Inputs["in"]; p.ResolvedCategory() {
	case pin.BufferStereo:
		return f.w.WriteStereo(resampleIfNeeded(f.accLeft), resampleIfNeeded(f.accRight), writeRate)
	default:
		return f.w.WriteMono(resampleIfNeeded(f.accMono), writeRate)
	}
}
