package view

import "github.com/jonathan-r-thorpe/nmos-js/internal/version"

// endpointLink builds protocol://host:port from an API endpoint entry.
func endpointLink(v Value) Value {
	m, ok := v.Map()
	if !ok {
		return Absent
	}
	proto, host, port := Of(m["protocol"]), Of(m["host"]), Of(m["port"])
	if proto.Missing() || host.Missing() || port.Missing() {
		return Absent
	}
	return Of(proto.Text() + "://" + host.Text() + ":" + port.Text())
}

// commonRules are the leading fields every IS-04 resource shares.
func commonRules() []Rule {
	return []Rule{
		{Path: "id", Label: "ID", Renderer: RenderText},
		{Path: "version", Label: "Version", Renderer: RenderTimestamp},
		{Path: "label", Label: "Label", Renderer: RenderText},
		{Path: "description", Label: "Description", Since: version.V1_1, Renderer: RenderText},
		{Path: "tags", Label: "Tags", Since: version.V1_1, Renderer: RenderTags},
	}
}

var nodeRules = append(commonRules(),
	Rule{Path: "href", Label: "Address", Renderer: RenderURL},
	Rule{Path: "hostname", Label: "Hostname", Renderer: RenderText},
	Rule{Path: "api.versions", Label: "API Versions", Since: version.V1_1, Renderer: RenderItems},
	Rule{Path: "api.endpoints", Label: "API Endpoints", Since: version.V1_1, Renderer: RenderTable, Columns: []Rule{
		{Path: "host", Label: "Host", Renderer: RenderText},
		{Path: "port", Label: "Port", Renderer: RenderText},
		{Path: "protocol", Label: "Protocol", Renderer: RenderText},
		{Path: "authorization", Label: "Authorization", Since: version.V1_3, Renderer: RenderBoolean},
		{Path: "", Label: "Link", Renderer: RenderURL, Transform: endpointLink},
	}},
	Rule{Path: "clocks", Label: "Clocks", Since: version.V1_1, Renderer: RenderTable, Columns: []Rule{
		{Path: "name", Label: "Name", Renderer: RenderText},
		{Path: "ref_type", Label: "Ref Type", Renderer: RenderText},
	}},
	Rule{Path: "services", Label: "Services", Renderer: RenderTable, Columns: []Rule{
		{Path: "href", Label: "Address", Renderer: RenderURL},
		{Path: "type", Label: "Type", Renderer: RenderText},
		{Path: "authorization", Label: "Authorization", Since: version.V1_3, Renderer: RenderBoolean},
	}},
	Rule{Path: "interfaces", Label: "Interfaces", Since: version.V1_2, Renderer: RenderTable, Columns: []Rule{
		{Path: "name", Label: "Name", Renderer: RenderText},
		{Path: "chassis_id", Label: "Local Chassis ID", Renderer: RenderText},
		{Path: "port_id", Label: "Local Port ID", Renderer: RenderText},
		{Path: "attached_network_device.chassis_id", Label: "Remote Chassis ID", Since: version.V1_3, Renderer: RenderText},
		{Path: "attached_network_device.port_id", Label: "Remote Port ID", Since: version.V1_3, Renderer: RenderText},
	}},
	Rule{Path: "node_id", Label: "Devices", Renderer: RenderBackReference, Reference: "devices"},
)

var deviceRules = append(commonRules(),
	Rule{Path: "type", Label: "Type", Renderer: RenderText},
	Rule{Path: "controls", Label: "Controls", Since: version.V1_1, Renderer: RenderTable, Columns: []Rule{
		{Path: "href", Label: "Address", Renderer: RenderURL},
		{Path: "type", Label: "Type", Renderer: RenderText},
		{Path: "authorization", Label: "Authorization", Since: version.V1_3, Renderer: RenderBoolean},
	}},
	Rule{Path: "node_id", Label: "Node", Renderer: RenderReference, Reference: "nodes"},
	Rule{Path: "device_id", Label: "Senders", Renderer: RenderBackReference, Reference: "senders"},
	Rule{Path: "device_id", Label: "Receivers", Renderer: RenderBackReference, Reference: "receivers"},
)
