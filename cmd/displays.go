package cmd

import (
	"github.com/bnema/stilch/internal/config"
	"github.com/bnema/stilch/internal/voutput"
)

// defaultPixelSize stands in for the pixel geometry a real DRM/KMS mode
// query would report (out of scope, spec §1): every display this
// process wires up gets this pixel and logical size, since OutputSpec
// carries no mode information of its own; a config file's scale,
// position and physical_size_mm settings leave it unchanged.
var defaultPixelSize = struct{ W, H int32 }{1920, 1080}

// resolveDisplays builds the []*voutput.PhysicalDisplay New needs,
// either one stand-in display per output block the config file names,
// or a single stand-in display when the process has no config file at
// all (e.g. --test with no --config).
func resolveDisplays(layoutCfg *config.Layout) []*voutput.PhysicalDisplay {
	if layoutCfg == nil || len(layoutCfg.Outputs) == 0 {
		return []*voutput.PhysicalDisplay{defaultDisplay("eDP-1")}
	}

	displays := make([]*voutput.PhysicalDisplay, 0, len(layoutCfg.Outputs))
	for _, spec := range layoutCfg.Outputs {
		d := defaultDisplay(spec.Name)
		if spec.HasScale {
			d.Scale = spec.Scale
		}
		if spec.HasPosition {
			d.LogicalPosition.X, d.LogicalPosition.Y = spec.PositionX, spec.PositionY
		}
		if spec.HasPhysicalSizeMM {
			d.PhysicalSizeMM.W, d.PhysicalSizeMM.H = spec.PhysicalSizeMM.W, spec.PhysicalSizeMM.H
		}
		if spec.HasPhysicalPositionMM {
			d.PhysicalPositionMM.X, d.PhysicalPositionMM.Y = spec.PhysicalPositionMM.X, spec.PhysicalPositionMM.Y
		}
		displays = append(displays, d)
	}
	return displays
}

func defaultDisplay(name string) *voutput.PhysicalDisplay {
	d := &voutput.PhysicalDisplay{Name: name, Scale: 1}
	d.PixelSize.W, d.PixelSize.H = defaultPixelSize.W, defaultPixelSize.H
	d.LogicalSize.W, d.LogicalSize.H = defaultPixelSize.W, defaultPixelSize.H
	return d
}
