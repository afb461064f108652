package service

// Layer describes where a component sits in the request path.
type Layer string

const (
	LayerCore     Layer = "core"
	LayerBoundary Layer = "boundary"
	LayerRuntime  Layer = "runtime"
)

// Descriptor advertises a component's placement and capabilities. Health
// reporting lists the descriptors of every registered service.
type Descriptor struct {
	Name         string   `json:"name"`
	Domain       string   `json:"domain"`
	Layer        Layer    `json:"layer"`
	Capabilities []string `json:"capabilities,omitempty"`
}

// WithCapabilities returns a copy of the descriptor with additional
// capabilities appended.
func (d Descriptor) WithCapabilities(caps ...string) Descriptor {
	if len(caps) == 0 {
		return d
	}
	combined := make([]string, 0, len(d.Capabilities)+len(caps))
	combined = append(combined, d.Capabilities...)
	combined = append(combined, caps...)
	d.Capabilities = combined
	return d
}
