package config

import "path/filepath"

// All managed directories live under home (~/.agentwire or AGENTWIRE_HOME)
// so an installation can be moved or backed up as one tree.

// Home returns the root directory (ResolveHome()).
func Home() string {
	return ResolveHome()
}

// DataDir returns the data directory, fixed at home/data.
func DataDir() string {
	return filepath.Join(Home(), "data")
}

// ScheduleDir returns the scheduler data directory, fixed at home/data/schedule.
func ScheduleDir() string {
	return filepath.Join(DataDir(), "schedule")
}

// ScheduleJobsPath returns the scheduler job file, fixed at home/data/schedule/jobs.json.
func ScheduleJobsPath() string {
	return filepath.Join(ScheduleDir(), "jobs.json")
}

// LogsDir returns the log directory, fixed at home/logs.
func LogsDir() string {
	return filepath.Join(Home(), "logs")
}
