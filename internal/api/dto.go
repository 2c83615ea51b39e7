package api

// LaunchRequest is the request body for launching an item or action.
type LaunchRequest struct {
	ID   string `json:"id"`
	Path string `json:"path"`
}

// LaunchResponse acknowledges a successful launch.
type LaunchResponse struct {
	Launched bool `json:"launched"`
}

// ProviderReport is one provider's share of a rebuild.
type ProviderReport struct {
	Provider   string `json:"provider"`
	Discovered int    `json:"discovered"`
	ElapsedMS  int64  `json:"elapsed_ms"`
	Error      string `json:"error,omitempty"`
}

// RebuildResponse summarizes a rebuild run.
type RebuildResponse struct {
	IndexedTotal int              `json:"indexed_total"`
	RemovedTotal int              `json:"removed_total"`
	Providers    []ProviderReport `json:"providers"`
}

// StatusResponse reports service health basics.
type StatusResponse struct {
	ConfigVersion  int      `json:"config_version"`
	IndexedItems   int      `json:"indexed_items"`
	PluginWarnings []string `json:"plugin_warnings,omitempty"`
}
