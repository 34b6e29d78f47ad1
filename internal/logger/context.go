package logger

// Component-specific logger functions

// CLI returns a logger for CLI operations
func CLI() Logger {
	return WithField("component", "cli")
}

// DB returns a logger for connection pool operations
func DB() Logger {
	return WithField("component", "db")
}

// SQL returns a logger for statement execution
func SQL() Logger {
	return WithField("component", "sql")
}

// Service returns a logger for comment service operations
func Service() Logger {
	return WithField("component", "service")
}

// HTTP returns a logger for request handling
func HTTP() Logger {
	return WithField("component", "http")
}
