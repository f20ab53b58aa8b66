package deps

import (
	"os/exec"
	"strings"
)

// Status represents the installation status of a dependency
type Status struct {
	Name      string
	Purpose   string
	Required  bool
	Installed bool
	Path      string
	Version   string
}

// Tool describes an external program hyprsubs shells out to.
type Tool struct {
	Name        string
	Purpose     string
	Required    bool
	VersionArgs []string
}

// Tools lists the external programs used at runtime.
var Tools = []Tool{
	{Name: "pw-record", Purpose: "microphone capture", Required: true, VersionArgs: []string{"--version"}},
	{Name: "pw-cli", Purpose: "PipeWire availability check", Required: true, VersionArgs: []string{"--version"}},
	{Name: "notify-send", Purpose: "desktop notifications", VersionArgs: []string{"--version"}},
}

// Check looks tool up in PATH and asks it for a version line.
func Check(tool Tool) Status {
	status := Status{Name: tool.Name, Purpose: tool.Purpose, Required: tool.Required}

	path, err := exec.LookPath(tool.Name)
	if err != nil {
		return status
	}
	status.Installed = true
	status.Path = path

	if len(tool.VersionArgs) == 0 {
		return status
	}
	output, err := exec.Command(path, tool.VersionArgs...).Output()
	if err == nil {
		status.Version = firstLine(string(output))
	}
	return status
}

// CheckAll checks every entry of Tools.
func CheckAll() []Status {
	out := make([]Status, len(Tools))
	for i, t := range Tools {
		out[i] = Check(t)
	}
	return out
}

// Missing returns the required tools that are not installed.
func Missing(statuses []Status) []string {
	var missing []string
	for _, s := range statuses {
		if s.Required && !s.Installed {
			missing = append(missing, s.Name)
		}
	}
	return missing
}

func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
