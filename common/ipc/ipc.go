package ipc

// Message envelopes for tool-mode queries against a running compositor.

type (
	// A request to list the available Outputs
	OutputRequest struct {
		// Whether to include the modes an output supports
		IncludeModes bool `json:"include_modes"`
		// Target one specific output
		SpecifiesOutput bool `json:"specifies_output"`
		// Name of the output you want info on. Only matters if SpecifiesOutput is set
		TargetOutput string `json:"target_output"`
	}

	// A mode an output supports
	OutputMode struct {
		// Mode height in pixel
		Height int
		// Mode width in pixel
		Width int
		// Refresh rate of the mode in millihertz
		RefreshRate int
	}

	// Response to a OutputRequest message
	OutputResponse struct {
		// List of all outputs. Only contains target output if specified
		Outputs []string
		// A list of modes an output supports. Only set if IncludeModes is true
		OutputModes map[string][]OutputMode
		// Nr of outputs found
		OutputsFound int
	}

	// A request to list the containers of a workspace
	ContainerRequest struct {
		// Workspace to list, 0 for the active one
		Workspace int `json:"workspace"`
		// Name of the output to query; empty for the focused one
		Output string `json:"output"`
	}

	// One container in a ContainerResponse
	ContainerInfo struct {
		X, Y          int
		Width, Height int
		Workspace     int
		Tag           uint32
		Floating      bool
		Fullscreen    bool
		Maximized     bool
		Minimized     bool
	}

	// Response to a ContainerRequest message
	ContainerResponse struct {
		Containers []ContainerInfo
	}
)
