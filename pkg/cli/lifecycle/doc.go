// Package lifecycle builds the RunE handlers behind the dev cluster
// commands. Each command describes itself as a Config (titles, activity and
// success text, the provisioner action to run) and the helpers here take
// care of config loading, dependency resolution, and consistent messaging.
package lifecycle
