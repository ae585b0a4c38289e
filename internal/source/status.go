package source

import (
	"time"

	"github.com/rmirandamx/agentspend/internal/model"
)

const (
	activeWindow = 5 * time.Minute
	idleWindow   = 60 * time.Minute
)

// AgentStatus derives a presence view for one agent from the modification
// time of its most recent session file. Liveness only, never billing input.
func AgentStatus(sessionsDir, agent string, now time.Time) model.AgentActivity {
	latest, ok := LatestSessionFile(sessionsDir, agent)
	if !ok {
		return model.AgentActivity{Agent: agent, Status: model.StatusOffline}
	}

	last := latest.ModTime
	age := now.Sub(last)

	status := model.StatusOffline
	switch {
	case age < activeWindow:
		status = model.StatusActive
	case age < idleWindow:
		status = model.StatusIdle
	}

	return model.AgentActivity{
		Agent:      agent,
		Status:     status,
		LastActive: &last,
		SessionLog: latest.Path,
	}
}

// FleetStatus derives the presence view for every agent under the root.
func FleetStatus(sessionsDir string, now time.Time) ([]model.AgentActivity, error) {
	agents, err := ListAgents(sessionsDir)
	if err != nil {
		return nil, err
	}

	statuses := make([]model.AgentActivity, 0, len(agents))
	for _, agent := range agents {
		statuses = append(statuses, AgentStatus(sessionsDir, agent, now))
	}
	return statuses, nil
}
