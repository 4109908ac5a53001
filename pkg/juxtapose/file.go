package juxtapose

import (
	"fmt"
	"image"

	"github.com/user/sceneshow/pkg/ports"
)

// Files combines image files into one sheet file. The output format follows
// the output extension.
//
// Example:
//
//	err := juxtapose.Files(ggrenderer.New(), osfilesystem.New(),
//	    []string{"minimal.png", "bold.png"}, "compare.png", ports.FormatPNG, juxtapose.DefaultOptions())
func Files(renderer ports.Renderer, fs ports.FileSystem, inputs []string, output string, format ports.ImageFormat, opts Options) error {
	images := make([]image.Image, 0, len(inputs))
	for _, path := range inputs {
		data, err := fs.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		img, err := renderer.DecodeImage(data, ports.FormatAuto)
		if err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
		images = append(images, img)
	}

	sheet, err := Combine(images, opts)
	if err != nil {
		return err
	}

	data, err := renderer.EncodeImage(sheet, format, 90)
	if err != nil {
		return fmt.Errorf("encode sheet: %w", err)
	}
	if err := fs.WriteFile(output, data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
