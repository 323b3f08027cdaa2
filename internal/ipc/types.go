package ipc

// Request is one line of the test channel's request/response protocol
// (§6). Type is the command discriminator; only the fields relevant to
// Type are populated by the client.
type Request struct {
	Type string `json:"type"`

	ID        uint64 `json:"id,omitempty"`
	Index     int    `json:"index,omitempty"`
	Direction string `json:"direction,omitempty"`
	WindowID  uint64 `json:"window_id,omitempty"`
	Workspace int    `json:"workspace,omitempty"`
	Mode      string `json:"mode,omitempty"`
	X         int32  `json:"x,omitempty"`
	Y         int32  `json:"y,omitempty"`
	ShowIDs   bool   `json:"show_ids,omitempty"`
	ShowFocus bool   `json:"show_focus,omitempty"`
}

// Response is one line sent back for a Request. Only the fields
// relevant to the request's Type are populated.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`

	Snapshot string `json:"snapshot,omitempty"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`

	X int32 `json:"x,omitempty"`
	Y int32 `json:"y,omitempty"`

	Windows    []WindowInfo    `json:"windows,omitempty"`
	Workspaces []WorkspaceInfo `json:"workspaces,omitempty"`
	Outputs    []OutputInfo    `json:"outputs,omitempty"`
}

// WindowInfo is one entry of the GetWindows response.
type WindowInfo struct {
	ID         uint64 `json:"id"`
	X          int32  `json:"x"`
	Y          int32  `json:"y"`
	W          int32  `json:"w"`
	H          int32  `json:"h"`
	Workspace  int    `json:"workspace"`
	Focused    bool   `json:"focused"`
	Floating   bool   `json:"floating"`
	Fullscreen bool   `json:"fullscreen"`
	Title      string `json:"title"`
	Visible    bool   `json:"visible"`
}

// WorkspaceInfo is one entry of the GetWorkspaces response.
type WorkspaceInfo struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Visible     bool   `json:"visible"`
	Output      uint64 `json:"output"`
	WindowCount int    `json:"window_count"`
	Focused     bool   `json:"focused"`
}

// OutputInfo is one entry of the GetOutputs response.
type OutputInfo struct {
	ID   uint64 `json:"id"`
	X    int32  `json:"x"`
	Y    int32  `json:"y"`
	W    int32  `json:"w"`
	H    int32  `json:"h"`
	Name string `json:"name"`
}

// WorkspaceSummary is one entry of a control-channel workspace_update
// broadcast's workspaces list — a narrower view than WorkspaceInfo,
// matching §6's event payload exactly.
type WorkspaceSummary struct {
	ID      int  `json:"id"`
	Active  bool `json:"active"`
	Windows int  `json:"windows"`
	Urgent  bool `json:"urgent"`
}

// WorkspaceUpdate is the one outbound event type §6 names for the
// control channel.
type WorkspaceUpdate struct {
	Type          string             `json:"type"`
	VirtualOutput uint32             `json:"virtual_output"`
	Workspaces    []WorkspaceSummary `json:"workspaces"`
}
