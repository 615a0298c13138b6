package api

import (
	"fmt"
	"strings"
)

// StackState mirrors the backend's StackState enum.
type StackState string

const (
	StackRunning    StackState = "RUNNING"
	StackStopped    StackState = "STOPPED"
	StackRestarting StackState = "RESTARTING"
	StackPaused     StackState = "PAUSED"
)

// Label is the human form of a state.
func (s StackState) Label() string {
	switch s {
	case StackRunning:
		return "Running"
	case StackStopped:
		return "Stopped"
	case StackRestarting:
		return "Restarting"
	case StackPaused:
		return "Paused"
	case "":
		return "Unknown"
	default:
		return strings.ToUpper(string(s[:1])) + strings.ToLower(string(s[1:]))
	}
}

type Container struct {
	ID      string `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	Image   string `json:"image" yaml:"image"`
	Service string `json:"service" yaml:"service"`
	State   string `json:"state" yaml:"state"`
}

type Dashboard struct {
	Version       string      `json:"version" yaml:"version"`
	DockerVersion string      `json:"dockerVersion" yaml:"docker_version"`
	StackCount    int         `json:"stackCount" yaml:"stack_count"`
	Containers    []Container `json:"containers" yaml:"containers"`
}

type Stack struct {
	Name  string     `json:"name" yaml:"name"`
	State StackState `json:"state" yaml:"state"`
}

// StackEvent is one container lifecycle event pushed by the backend.
type StackEvent struct {
	ID            string `json:"id"`
	Action        string `json:"action"`
	ImageFrom     string `json:"imageFrom"`
	ContainerID   string `json:"containerId"`
	ContainerName string `json:"containerName"`
	StackName     string `json:"stackName"`
	ServiceName   string `json:"serviceName"`
}

// StackAction is a lifecycle mutation on a stack.
type StackAction string

const (
	ActionStart   StackAction = "start"
	ActionStop    StackAction = "stop"
	ActionRestart StackAction = "restart"
)

// StackActionError is the error variant of a stack mutation's result union.
// The call itself succeeded; the backend refused the action.
type StackActionError struct {
	Action  StackAction
	Stack   string
	Message string
}

func (e *StackActionError) Error() string {
	return fmt.Sprintf("%s stack %q: %s", e.Action, e.Stack, e.Message)
}

// stackActionResult decodes any of the Start/Stop/RestartStack unions.
type stackActionResult struct {
	Typename string `json:"__typename"`
	Name     string `json:"name"`
	Message  string `json:"message"`
}

func (r stackActionResult) failed() bool {
	return strings.HasSuffix(r.Typename, "Error")
}
