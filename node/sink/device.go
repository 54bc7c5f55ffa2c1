package sink

import (
	"zikichombo.org/noisegraph/node"
	"zikichombo.org/noisegraph/pin"
)

// Device hands each tick's accumulated samples to the realtime audio
// device proxy, required_channel_samples per channel at a time. Its
// process category is node.BusMasterOutput (see node/specifier.go), so the
// scheduler always runs it after the Normal group has produced this tick's
// audio.
type Device struct {
	ctl      *node.Control
	proxy    node.AudioDeviceProxy
	channels int
}

// NewDevice constructs a device sink bound to proxy. channels is stored but
// not consulted: the number of channels sent follows the resolved input
// (one for mono, two for stereo), and no mixdown is performed.
func NewDevice(proxy node.AudioDeviceProxy, channels int) *Device {
	in := pin.NewInput("in", pin.BufferMono|pin.BufferStereo, pin.KindOutputDevice)
	return &Device{
		ctl:      node.NewControl(node.SpecOutputDevice, node.BusMasterOutput, map[string]*pin.Pin{"in": in}, nil),
		proxy:    proxy,
		channels: channels,
	}
}

func (d *Device) Control() *node.Control { return d.ctl }
func (d *Device) IsFinished() bool       { return d.ctl.State == node.Finished }
func (d *Device) CanProcess() bool       { return d.proxy != nil }

func (d *Device) TryProcess(in *node.CommonInput) error {
	c := d.ctl
	c.ElapsedTime = in.ElapsedTime
	if err := c.ProcessInputPins(); err != nil {
		return err
	}
	if c.State == node.Finished {
		return nil
	}
	p := c.Inputs["in"]
	var channels [][]float32
	switch p.ResolvedCategory() {
	case pin.BufferMono:
		view := p.Dynamic()
		samples := view.Drain(view.Frames())
		if len(samples) == 0 {
			break
		}
		f32 := make([]float32, len(samples))
		for i, s := range samples {
			f32[i] = float32(s.Clamp())
		}
		channels = [][]float32{f32}
	case pin.BufferStereo:
		view := p.StereoDynamic()
		left := view.DrainLeft(view.Frames())
		right := view.DrainRight(view.Frames())
		if len(left) == 0 {
			break
		}
		l32 := make([]float32, len(left))
		r32 := make([]float32, len(right))
		for i, s := range left {
			l32[i] = float32(s.Clamp())
		}
		for i, s := range right {
			r32[i] = float32(s.Clamp())
		}
		channels = [][]float32{l32, r32}
	}
	if len(channels) > 0 {
		if c.State == node.Stopped {
			c.SetState(node.Playing)
		}
		if err := d.proxy.SendSampleBuffer(in.RequiredChannelSamples, channels); err != nil {
			return err
		}
	}
	if in.AllChildrenFinished() {
		c.SetState(node.Finished)
	}
	return nil
}
