package view

import "github.com/jonathan-r-thorpe/nmos-js/internal/version"

// rational formats {"numerator": n, "denominator": d} as "n/d"; the
// denominator defaults to 1.
func rational(v Value) Value {
	m, ok := v.Map()
	if !ok {
		return v
	}
	num := Of(m["numerator"])
	if num.Missing() {
		return Absent
	}
	den := Of(m["denominator"])
	if den.Missing() {
		return Of(num.Text() + "/1")
	}
	return Of(num.Text() + "/" + den.Text())
}

var sourceRules = append(commonRules(),
	Rule{Path: "format", Label: "Format", Renderer: RenderText},
	Rule{Path: "caps", Label: "Capabilities", Renderer: RenderJSON},
	Rule{Path: "grain_rate", Label: "Grain Rate", Since: version.V1_1, Renderer: RenderText, OmitIfAbsent: true, Transform: rational},
	Rule{Path: "clock_name", Label: "Clock Name", Since: version.V1_1, Renderer: RenderText},
	Rule{Path: "channels", Label: "Channels", Since: version.V1_1, Renderer: RenderTable, Columns: []Rule{
		{Path: "label", Label: "Label", Renderer: RenderText},
		{Path: "symbol", Label: "Symbol", Renderer: RenderText},
	}},
	Rule{Path: "parents", Label: "Parents", Renderer: RenderItems},
	Rule{Path: "device_id", Label: "Device", Renderer: RenderReference, Reference: "devices"},
	Rule{Path: "source_id", Label: "Flows", Renderer: RenderBackReference, Reference: "flows"},
)

var flowRules = append(commonRules(),
	Rule{Path: "format", Label: "Format", Renderer: RenderText},
	Rule{Path: "media_type", Label: "Media Type", Since: version.V1_1, Renderer: RenderText},
	Rule{Path: "grain_rate", Label: "Grain Rate", Since: version.V1_1, Renderer: RenderText, OmitIfAbsent: true, Transform: rational},
	Rule{Path: "sample_rate", Label: "Sample Rate", Since: version.V1_1, Renderer: RenderText, OmitIfAbsent: true, Transform: rational},
	Rule{Path: "bit_depth", Label: "Bit Depth", Since: version.V1_1, Renderer: RenderText, OmitIfAbsent: true},
	Rule{Path: "frame_width", Label: "Frame Width", Since: version.V1_1, Renderer: RenderText, OmitIfAbsent: true},
	Rule{Path: "frame_height", Label: "Frame Height", Since: version.V1_1, Renderer: RenderText, OmitIfAbsent: true},
	Rule{Path: "interlace_mode", Label: "Interlace Mode", Since: version.V1_1, Renderer: RenderText, OmitIfAbsent: true},
	Rule{Path: "colorspace", Label: "Colorspace", Since: version.V1_1, Renderer: RenderText, OmitIfAbsent: true},
	Rule{Path: "transfer_characteristic", Label: "Transfer Characteristic", Since: version.V1_1, Renderer: RenderText, OmitIfAbsent: true},
	Rule{Path: "components", Label: "Components", Since: version.V1_1, Renderer: RenderTable, Columns: []Rule{
		{Path: "name", Label: "Name", Renderer: RenderText},
		{Path: "width", Label: "Width", Renderer: RenderText},
		{Path: "height", Label: "Height", Renderer: RenderText},
		{Path: "bit_depth", Label: "Bit Depth", Renderer: RenderText},
	}},
	Rule{Path: "parents", Label: "Parents", Renderer: RenderItems},
	Rule{Path: "source_id", Label: "Source", Renderer: RenderReference, Reference: "sources"},
	Rule{Path: "device_id", Label: "Device", Since: version.V1_1, Renderer: RenderReference, Reference: "devices"},
	Rule{Path: "flow_id", Label: "Senders", Renderer: RenderBackReference, Reference: "senders"},
)
