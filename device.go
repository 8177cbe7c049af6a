package shaderlink

import (
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// Window owns the GLFW window a Device presents into.
type Window struct {
	windowGlfw *glfw.Window
	Width      int
	Height     int
	title      string
}

// NewWindow initializes GLFW and opens a window without an OpenGL context.
// Must be called from the main goroutine.
func NewWindow(width int, height int, title string) (*Window, error) {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("shaderlink: glfw init: %w", err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // Important: tell GLFW we don't want OpenGL
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("shaderlink: create window: %w", err)
	}

	return &Window{
		windowGlfw: win,
		Width:      width,
		Height:     height,
		title:      title,
	}, nil
}

func (w *Window) Raw() *glfw.Window { return w.windowGlfw }

func (w *Window) ShouldClose() bool { return w.windowGlfw.ShouldClose() }

// Destroy closes the window and tears GLFW down.
func (w *Window) Destroy() {
	w.windowGlfw.Destroy()
	glfw.Terminate()
}

// Device bundles the wgpu objects every draw call needs: the surface the
// window presents, the logical device, and its command queue.
type Device struct {
	surface       *wgpu.Surface
	adapter       *wgpu.Adapter
	device        *wgpu.Device
	queue         *wgpu.Queue
	surfaceConfig *wgpu.SurfaceConfiguration
	logger        Logger
}

// NewDevice requests an adapter and device for the window's surface and
// configures the swapchain. A nil logger is replaced with a no-op one.
func NewDevice(w *Window, logger Logger) (*Device, error) {
	if nil == logger {
		logger = NewNopLogger()
	}

	instance := wgpu.CreateInstance(nil)
	defer instance.Release()
	// wraps the GLFW window into a wgpu surface
	surface := instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(w.windowGlfw))
	// finds a suitable GPU (discrete GPU preferred)
	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		surface.Release()
		return nil, fmt.Errorf("shaderlink: request adapter: %w", err)
	}
	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label:            "shaderlink device",
		RequiredFeatures: nil,
		RequiredLimits:   nil,
	})
	if err != nil {
		adapter.Release()
		surface.Release()
		return nil, fmt.Errorf("shaderlink: request device: %w", err)
	}
	queue := device.GetQueue()

	caps := surface.GetCapabilities(adapter)
	// defines how the swapchain behaves (size, format, vsync)
	surfaceConfig := wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      caps.Formats[0],
		Width:       uint32(w.Width),
		Height:      uint32(w.Height),
		PresentMode: wgpu.PresentModeFifo, // vsync
		AlphaMode:   caps.AlphaModes[0],
	}
	surface.Configure(adapter, device, &surfaceConfig)
	logger.Infof("device ready, surface format %v", surfaceConfig.Format)

	return &Device{
		surface:       surface,
		adapter:       adapter,
		device:        device,
		queue:         queue,
		surfaceConfig: &surfaceConfig,
		logger:        logger,
	}, nil
}

func (d *Device) WGPU() *wgpu.Device { return d.device }

func (d *Device) Queue() *wgpu.Queue { return d.queue }

// SurfaceFormat is the texture format render pipelines must target.
func (d *Device) SurfaceFormat() wgpu.TextureFormat { return d.surfaceConfig.Format }

// Resize reconfigures the swapchain after a window size change. Zero
// dimensions (minimized window) are ignored.
func (d *Device) Resize(width int, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	d.surfaceConfig.Width = uint32(width)
	d.surfaceConfig.Height = uint32(height)
	d.surface.Configure(d.adapter, d.device, d.surfaceConfig)
}

// RenderFrame acquires the next swapchain texture, runs draw inside a render
// pass cleared to the given color, then submits and presents. An outdated
// surface (mid-resize) is reported as an error; callers usually just skip
// the frame.
func (d *Device) RenderFrame(clear wgpu.Color, draw func(pass *wgpu.RenderPassEncoder)) error {
	nextTexture, err := d.surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("shaderlink: acquire surface texture: %w", err)
	}
	view, err := nextTexture.CreateView(nil)
	if err != nil {
		return fmt.Errorf("shaderlink: create surface view: %w", err)
	}
	defer view.Release()
	encoder, err := d.device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("shaderlink: create command encoder: %w", err)
	}
	defer encoder.Release()

	renderPass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       view,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: clear,
			},
		},
	})
	defer renderPass.Release()

	draw(renderPass)

	if err := renderPass.End(); err != nil {
		return fmt.Errorf("shaderlink: end render pass: %w", err)
	}
	cmdBuffer, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("shaderlink: finish encoder: %w", err)
	}
	defer cmdBuffer.Release()

	d.queue.Submit(cmdBuffer)
	d.surface.Present()
	return nil
}

// Release frees the GPU objects. The window is destroyed separately.
func (d *Device) Release() {
	d.queue.Release()
	d.device.Release()
	d.adapter.Release()
	d.surface.Release()
}
