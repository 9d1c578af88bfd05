// Package prerequisites checks for optional local client tools.
package prerequisites

import (
	"fmt"
	"os/exec"
	"strings"
)

// Tool represents a client tool that may be required.
type Tool struct {
	// Name is the binary name to look for in PATH.
	Name string

	// Required indicates if this tool is mandatory.
	Required bool

	// Description explains what the tool is used for.
	Description string

	// InstallURL provides a URL for installation instructions.
	InstallURL string

	// VersionArgs print the tool version on the first line of stdout.
	VersionArgs []string
}

// DoctorTools returns the tools doctor reports on. mysqlset talks to the API
// server directly, so none of them is required.
func DoctorTools() []Tool {
	return []Tool{
		{
			Name:        "kubectl",
			Description: "Useful for inspecting pods and port-forwarding to mysql-0",
			InstallURL:  "https://kubernetes.io/docs/tasks/tools/",
			VersionArgs: []string{"version", "--client"},
		},
		{
			Name:        "mysql",
			Description: "Local client for port-forwarded sessions",
			InstallURL:  "https://dev.mysql.com/downloads/shell/",
			VersionArgs: []string{"--version"},
		},
	}
}

// CheckResult contains the result of checking a single tool.
type CheckResult struct {
	Tool    Tool
	Found   bool
	Path    string
	Version string
}

// CheckResults contains the results of checking multiple tools.
type CheckResults struct {
	Results []CheckResult
	Missing []Tool
}

// HasErrors returns true if any required tools are missing.
func (r *CheckResults) HasErrors() bool {
	for _, tool := range r.Missing {
		if tool.Required {
			return true
		}
	}
	return false
}

// Error returns an error if any required tools are missing.
func (r *CheckResults) Error() error {
	var missing []string
	for _, tool := range r.Missing {
		if tool.Required {
			missing = append(missing, fmt.Sprintf("%s (%s)", tool.Name, tool.InstallURL))
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("missing required tools: %s", strings.Join(missing, ", "))
}

// Check verifies that the specified tools are available.
func Check(tools []Tool) *CheckResults {
	results := &CheckResults{}

	for _, tool := range tools {
		result := CheckResult{Tool: tool}

		path, err := exec.LookPath(tool.Name)
		if err == nil {
			result.Found = true
			result.Path = path
			result.Version = toolVersion(path, tool.VersionArgs)
		} else {
			results.Missing = append(results.Missing, tool)
		}

		results.Results = append(results.Results, result)
	}

	return results
}

// CheckDoctor checks the tools listed by DoctorTools.
func CheckDoctor() *CheckResults {
	return Check(DoctorTools())
}

// toolVersion returns the first output line of the version command, or ""
// when it cannot be determined.
func toolVersion(path string, args []string) string {
	if len(args) == 0 {
		return ""
	}
	// #nosec G204 - path and args come from trusted Tool definitions
	output, err := exec.Command(path, args...).Output()
	if err != nil {
		return ""
	}
	first, _, _ := strings.Cut(string(output), "\n")
	return strings.TrimSpace(first)
}
