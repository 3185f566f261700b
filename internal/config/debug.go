package config

import "os"

func IsDebug() bool {
	return os.Getenv("BOKJI_DEBUG") == "1"
}

// IsJSONLog switches the console writer off for log shippers.
func IsJSONLog() bool {
	return os.Getenv("BOKJI_LOG_FORMAT") == "json"
}
