package view

import "github.com/jonathan-r-thorpe/nmos-js/internal/version"

var senderRules = []Rule{
	{Path: "id", Label: "ID", Renderer: RenderText},
	{Path: "version", Label: "Version", Renderer: RenderTimestamp},
	{Path: "label", Label: "Label", Renderer: RenderText},
	{Path: "description", Label: "Description", Renderer: RenderText},
	{Path: "tags", Label: "Tags", Renderer: RenderTags},
	{Path: "transport", Label: "Transport", Renderer: RenderText},
	{Path: "manifest_href", Label: "Manifest Address", Renderer: RenderURL},
	{Path: "interface_bindings", Label: "Interface Bindings", Since: version.V1_2, Renderer: RenderItems},
	{Path: "subscription.active", Label: "Subscription Active", Since: version.V1_2, Renderer: RenderBoolean},
	{Path: "flow_id", Label: "Flow", Renderer: RenderReference, Reference: "flows"},
	{Path: "device_id", Label: "Device", Renderer: RenderReference, Reference: "devices"},
	{Path: "subscription.receiver_id", Label: "Receiver", Since: version.V1_2, Renderer: RenderReference, Reference: "receivers", OmitIfAbsent: true},
}

var receiverRules = []Rule{
	{Path: "id", Label: "ID", Renderer: RenderText},
	{Path: "version", Label: "Version", Renderer: RenderTimestamp},
	{Path: "label", Label: "Label", Renderer: RenderText},
	{Path: "description", Label: "Description", Renderer: RenderText},
	{Path: "tags", Label: "Tags", Renderer: RenderTags},
	{Path: "format", Label: "Format", Renderer: RenderText},
	{Path: "caps.media_types", Label: "Media Types", Since: version.V1_1, Renderer: RenderItems},
	{Path: "transport", Label: "Transport", Renderer: RenderText},
	{Path: "interface_bindings", Label: "Interface Bindings", Since: version.V1_2, Renderer: RenderItems},
	{Path: "subscription.active", Label: "Subscription Active", Since: version.V1_2, Renderer: RenderBoolean},
	{Path: "device_id", Label: "Device", Renderer: RenderReference, Reference: "devices"},
	{Path: "subscription.sender_id", Label: "Sender", Renderer: RenderReference, Reference: "senders", OmitIfAbsent: true},
}

// activationRules are shared by the Active and Staged tabs of senders and
// receivers. endpoint is "$active" or "$staged".
func activationRules(endpoint string) []Rule {
	return []Rule{
		{Path: endpoint + ".master_enable", Label: "Master Enable", Renderer: RenderBoolean},
		{Path: endpoint + ".activation.mode", Label: "Mode", Renderer: RenderText},
		{Path: endpoint + ".activation.requested_time", Label: "Requested Time", Renderer: RenderTimestamp},
		{Path: endpoint + ".activation.activation_time", Label: "Activation Time", Renderer: RenderTimestamp},
		{Path: "$transporttype", Label: "Transport Type", Renderer: RenderText},
		{Path: endpoint + ".transport_params", Label: "Transport Parameters", Renderer: RenderTable},
	}
}

func senderEndpointRules(endpoint string) []Rule {
	rules := []Rule{
		{Path: "id", Label: "ID", Renderer: RenderText},
		{Path: endpoint + ".receiver_id", Label: "Receiver ID", Renderer: RenderText},
	}
	rules = append(rules, activationRules(endpoint)...)
	return append(rules, Rule{Path: endpoint, Label: "JSON", Renderer: RenderJSON})
}

func receiverEndpointRules(endpoint string) []Rule {
	rules := []Rule{
		{Path: "id", Label: "ID", Renderer: RenderText},
		{Path: endpoint + ".sender_id", Label: "Sender ID", Renderer: RenderText},
	}
	rules = append(rules, activationRules(endpoint)...)
	return append(rules,
		Rule{Path: endpoint + ".transport_file.type", Label: "Transport File Type", Renderer: RenderText, OmitIfAbsent: true},
		Rule{Path: endpoint + ".transport_file.data", Label: "Transport File", Renderer: RenderVerbatim},
		Rule{Path: endpoint, Label: "JSON", Renderer: RenderJSON},
	)
}

var transportFileRules = []Rule{
	{Path: "$transportfile", Label: "Transport File", Renderer: RenderVerbatim},
}

// connectRules show a receiver's current connection above the senders it
// can be connected to.
var connectRules = []Rule{
	{Path: "id", Label: "ID", Renderer: RenderText},
	{Path: "$active.sender_id", Label: "Connected Sender", Renderer: RenderReference, Reference: "senders"},
	{Path: "$active.master_enable", Label: "Master Enable", Renderer: RenderBoolean},
	{Path: "$active.activation.activation_time", Label: "Activation Time", Renderer: RenderTimestamp},
}
