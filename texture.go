package shaderlink

import (
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/cogentcore/webgpu/wgpu"
)

// TextureData is decoded texel data waiting to be uploaded.
type TextureData struct {
	texels []uint8
	width  uint32
	height uint32
	format wgpu.TextureFormat
}

func NewTextureData(texels []uint8, width uint32, height uint32, format wgpu.TextureFormat) *TextureData {
	return &TextureData{
		texels: texels,
		width:  width,
		height: height,
		format: format,
	}
}

func (t *TextureData) Width() uint32              { return t.width }
func (t *TextureData) Height() uint32             { return t.height }
func (t *TextureData) Format() wgpu.TextureFormat { return t.format }

// DecodeTexture reads a PNG and returns its pixels as tightly packed RGBA.
func DecodeTexture(r io.Reader) (*TextureData, error) {
	img, err := png.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("shaderlink: decode texture: %w", err)
	}

	bounds := img.Bounds()

	rgbaImg, ok := img.(*image.RGBA)
	if !ok {
		rgbaImg = image.NewRGBA(bounds)
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				rgbaImg.Set(x, y, img.At(x, y))
			}
		}
	}

	return &TextureData{
		texels: rgbaImg.Pix,
		width:  uint32(bounds.Dx()),
		height: uint32(bounds.Dy()),
		format: wgpu.TextureFormatRGBA8Unorm,
	}, nil
}

// NewTexture uploads the texels to a 2D texture and returns its view.
func NewTexture(dev *Device, data *TextureData) (*wgpu.TextureView, error) {
	bpp, err := bytesPerPixel(data.format)
	if err != nil {
		return nil, err
	}
	textureExtent := wgpu.Extent3D{
		Width:              data.width,
		Height:             data.height,
		DepthOrArrayLayers: 1,
	}
	texture, err := dev.WGPU().CreateTexture(&wgpu.TextureDescriptor{
		Size:          textureExtent,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        data.format,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("shaderlink: create texture: %w", err)
	}
	defer texture.Release()

	textureView, err := texture.CreateView(nil)
	if err != nil {
		return nil, fmt.Errorf("shaderlink: create texture view: %w", err)
	}

	err = dev.Queue().WriteTexture(
		texture.AsImageCopy(),
		data.texels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  data.width * bpp,
			RowsPerImage: data.height,
		},
		&textureExtent,
	)
	if err != nil {
		textureView.Release()
		return nil, fmt.Errorf("shaderlink: write texture: %w", err)
	}
	return textureView, nil
}

func bytesPerPixel(format wgpu.TextureFormat) (uint32, error) {
	switch format {
	case wgpu.TextureFormatR8Unorm, wgpu.TextureFormatR8Snorm,
		wgpu.TextureFormatR8Uint, wgpu.TextureFormatR8Sint:
		return 1, nil
	case wgpu.TextureFormatR16Uint, wgpu.TextureFormatR16Sint, wgpu.TextureFormatR16Float,
		wgpu.TextureFormatRG8Unorm, wgpu.TextureFormatRG8Snorm,
		wgpu.TextureFormatRG8Uint, wgpu.TextureFormatRG8Sint:
		return 2, nil
	case wgpu.TextureFormatR32Float, wgpu.TextureFormatR32Uint, wgpu.TextureFormatR32Sint,
		wgpu.TextureFormatRG16Uint, wgpu.TextureFormatRG16Sint, wgpu.TextureFormatRG16Float,
		wgpu.TextureFormatRGBA8Unorm, wgpu.TextureFormatRGBA8UnormSrgb, wgpu.TextureFormatRGBA8Snorm,
		wgpu.TextureFormatRGBA8Uint, wgpu.TextureFormatRGBA8Sint,
		wgpu.TextureFormatBGRA8Unorm, wgpu.TextureFormatBGRA8UnormSrgb:
		return 4, nil
	case wgpu.TextureFormatRG32Float, wgpu.TextureFormatRG32Uint, wgpu.TextureFormatRG32Sint,
		wgpu.TextureFormatRGBA16Uint, wgpu.TextureFormatRGBA16Sint, wgpu.TextureFormatRGBA16Float:
		return 8, nil
	case wgpu.TextureFormatRGBA32Float, wgpu.TextureFormatRGBA32Uint, wgpu.TextureFormatRGBA32Sint:
		return 16, nil
	}
	return 0, fmt.Errorf("shaderlink: no byte size known for texture format %v", format)
}

// NewSampler creates a sampler with the same mode on all three axes.
func NewSampler(dev *Device, wrap wgpu.AddressMode, filter wgpu.FilterMode) (*wgpu.Sampler, error) {
	sampler, err := dev.WGPU().CreateSampler(&wgpu.SamplerDescriptor{
		AddressModeU:  wrap,
		AddressModeV:  wrap,
		AddressModeW:  wrap,
		MagFilter:     filter,
		MinFilter:     filter,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("shaderlink: create sampler: %w", err)
	}
	return sampler, nil
}

// NewLinearSampler is the usual choice for color textures.
func NewLinearSampler(dev *Device) (*wgpu.Sampler, error) {
	return NewSampler(dev, wgpu.AddressModeRepeat, wgpu.FilterModeLinear)
}

// BufferEntry, TextureEntry and SamplerEntry build the bind group entries
// NewBindGroup consumes.
func BufferEntry(binding uint32, buf *wgpu.Buffer) wgpu.BindGroupEntry {
	return wgpu.BindGroupEntry{
		Binding: binding,
		Buffer:  buf,
		Size:    wgpu.WholeSize,
	}
}

func TextureEntry(binding uint32, view *wgpu.TextureView) wgpu.BindGroupEntry {
	return wgpu.BindGroupEntry{
		Binding:     binding,
		TextureView: view,
		Size:        wgpu.WholeSize,
	}
}

func SamplerEntry(binding uint32, sampler *wgpu.Sampler) wgpu.BindGroupEntry {
	return wgpu.BindGroupEntry{
		Binding: binding,
		Sampler: sampler,
		Size:    wgpu.WholeSize,
	}
}

// NewBindGroup creates a bind group against the pipeline's layout for the
// given group index.
func NewBindGroup(dev *Device, pipeline *Pipeline, group uint32, entries []wgpu.BindGroupEntry) (*wgpu.BindGroup, error) {
	bindGroupLayout := pipeline.WGPU().GetBindGroupLayout(group)
	defer bindGroupLayout.Release()

	bindGroup, err := dev.WGPU().CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout:  bindGroupLayout,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("shaderlink: create bind group %d: %w", group, err)
	}
	return bindGroup, nil
}
