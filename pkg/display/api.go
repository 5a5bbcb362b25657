package display

// Task represents one transfer being monitored.
type Task interface {
	// Log adds a log message associated with this task.
	Log(msg string)
	// Progress updates the byte counts. total may be -1 when unknown.
	Progress(received, total int64)
	// Done marks the task as completed and removes it from the display.
	Done()
}

// Display handles the visualization of tasks and logs.
type Display interface {
	// StartTask creates and returns a new tracked Task.
	StartTask(name string) Task
	// Log adds a direct log message to the display (verbose only).
	Log(msg string)
	// Print adds a primary output message to the display.
	Print(msg string)
	// SetVerbose enables or disables verbose logging.
	SetVerbose(v bool)
	// Close cleans up any resources and ensures final output is rendered.
	Close()
}
