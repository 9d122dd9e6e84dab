package config

import "os"

func IsDebug() bool {
	return os.Getenv("MINDSTASH_DEBUG") == "1"
}
